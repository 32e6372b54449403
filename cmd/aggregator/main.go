// Command aggregator streams a consolidated top-of-book view for one
// trading pair across Bitstamp, Binance, Kraken, and Coinbase.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"google.golang.org/grpc"

	"github.com/lilwiggy/orderbook-aggregator/internal/driver"
	"github.com/lilwiggy/orderbook-aggregator/internal/driver/binance"
	"github.com/lilwiggy/orderbook-aggregator/internal/driver/bitstamp"
	"github.com/lilwiggy/orderbook-aggregator/internal/driver/coinbase"
	"github.com/lilwiggy/orderbook-aggregator/internal/driver/kraken"
	"github.com/lilwiggy/orderbook-aggregator/internal/streampb"
	"github.com/lilwiggy/orderbook-aggregator/internal/streamservice"
	"github.com/lilwiggy/orderbook-aggregator/internal/supervisor"
	"github.com/lilwiggy/orderbook-aggregator/pkg/config"
	"github.com/lilwiggy/orderbook-aggregator/pkg/domain"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	symbol := pflag.String("symbol", config.DefaultSymbol, "trading pair, e.g. ETH/BTC")
	port := pflag.Int("port", config.DefaultPort, "stream service listen port")
	noBitstamp := pflag.Bool("no-bitstamp", false, "disable the bitstamp venue")
	noBinance := pflag.Bool("no-binance", false, "disable the binance venue")
	noKraken := pflag.Bool("no-kraken", false, "disable the kraken venue")
	noCoinbase := pflag.Bool("no-coinbase", false, "disable the coinbase venue")
	pflag.Parse()

	builder := config.NewBuilder().Symbol(*symbol).Port(*port)
	if *noBitstamp {
		builder = builder.Disable(domain.VenueBitstamp)
	}
	if *noBinance {
		builder = builder.Disable(domain.VenueBinance)
	}
	if *noKraken {
		builder = builder.Disable(domain.VenueKraken)
	}
	if *noCoinbase {
		builder = builder.Disable(domain.VenueCoinbase)
	}

	cfg, err := builder.Build()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("aggregator exited with error")
	}
}

func run(cfg config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	adapters := buildAdapters(cfg)

	disabled := disabledVenues(cfg)
	if len(disabled) == len(adapters) {
		return fmt.Errorf("no venues enabled")
	}

	sup := supervisor.New(adapters, cfg.ControlVenue, cfg.ControlLinesPerSecond, disabled...)

	lis, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return err
	}

	grpcServer := grpc.NewServer()
	streampb.RegisterOrderbookAggregatorServer(grpcServer, streamservice.New(sup.Slot()))

	errCh := make(chan error, 2)
	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("stream service listening")
		errCh <- grpcServer.Serve(lis)
	}()
	go func() {
		errCh <- sup.Run(ctx, os.Stdin)
	}()

	select {
	case <-ctx.Done():
		grpcServer.GracefulStop()
		return nil
	case err := <-errCh:
		grpcServer.GracefulStop()
		return err
	}
}

// buildAdapters constructs one adapter per venue regardless of
// --no-<venue> toggles: a disabled venue's session is still opened and
// drained, it just never reaches the aggregator (see disabledVenues).
func buildAdapters(cfg config.Config) []driver.Adapter {
	return []driver.Adapter{
		bitstamp.NewAdapter(bitstamp.Config{
			PingInterval: cfg.Connection.PingInterval,
			DialTimeout:  cfg.Connection.DialTimeout,
		}, cfg.Symbol),
		binance.NewAdapter(binance.Config{
			PingInterval: cfg.Connection.PingInterval,
			DialTimeout:  cfg.Connection.DialTimeout,
		}, cfg.Symbol),
		kraken.NewAdapter(kraken.Config{
			PingInterval: cfg.Connection.PingInterval,
			DialTimeout:  cfg.Connection.DialTimeout,
			Depth:        domain.Depth,
		}, cfg.Symbol),
		coinbase.NewAdapter(coinbase.Config{
			PingInterval: cfg.Connection.PingInterval,
			DialTimeout:  cfg.Connection.DialTimeout,
		}, cfg.Symbol),
	}
}

// disabledVenues lists the venues toggled off via --no-<venue>.
func disabledVenues(cfg config.Config) []domain.Venue {
	var venues []domain.Venue
	for _, v := range []domain.Venue{domain.VenueBitstamp, domain.VenueBinance, domain.VenueKraken, domain.VenueCoinbase} {
		if !cfg.Disabled.Enabled(v) {
			venues = append(venues, v)
		}
	}
	return venues
}
