// Package config provides the command-line configuration surface for the
// order book aggregator process.
package config

import (
	"fmt"
	"time"

	"github.com/lilwiggy/orderbook-aggregator/pkg/domain"
	"github.com/lilwiggy/orderbook-aggregator/pkg/errors"
)

// DefaultSymbol is the trading pair used when --symbol is not given.
const DefaultSymbol = "ETH/BTC"

// DefaultPort is the stream service listen port used when --port is not given.
const DefaultPort = 50051

// VenueToggles records which venues are disabled via --no-<venue>.
// A disabled venue's session is still established and drained, and its
// adapter still decodes frames into InputTicks; the supervisor drops those
// ticks before they reach the aggregator.
type VenueToggles struct {
	Bitstamp bool
	Binance  bool
	Kraken   bool
	Coinbase bool
}

// Enabled reports whether the given venue is enabled.
func (t VenueToggles) Enabled(v domain.Venue) bool {
	switch v {
	case domain.VenueBitstamp:
		return !t.Bitstamp
	case domain.VenueBinance:
		return !t.Binance
	case domain.VenueKraken:
		return !t.Kraken
	case domain.VenueCoinbase:
		return !t.Coinbase
	default:
		return false
	}
}

// Connection contains shared per-venue connection tuning.
type Connection struct {
	PingInterval time.Duration // WebSocket ping interval
	DialTimeout  time.Duration // Upstream dial timeout
}

// DefaultConnection returns the default connection configuration.
func DefaultConnection() Connection {
	return Connection{
		PingInterval: 20 * time.Second,
		DialTimeout:  10 * time.Second,
	}
}

// Config contains the full process configuration.
type Config struct {
	// Symbol is the trading pair, e.g. "ETH/BTC"
	Symbol string

	// Port is the listening port for the stream service
	Port int

	// Disabled records which venues' ticks are excluded from aggregation
	Disabled VenueToggles

	// Connection holds shared per-venue connection tuning
	Connection Connection

	// ControlVenue is the venue that receives forwarded stdin control lines
	ControlVenue domain.Venue

	// ControlLinesPerSecond bounds the stdin forwarding rate
	ControlLinesPerSecond int
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !domain.IsSymbolValid(c.Symbol) {
		return errors.NewBadDataError("config", "invalid symbol", c.Symbol, nil)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return errors.NewBadAddrError(fmt.Sprintf(":%d", c.Port), "port must be between 1 and 65535")
	}
	if !c.ControlVenue.IsValid() {
		return errors.NewBadDataError("config", "invalid control venue", string(c.ControlVenue), nil)
	}
	return nil
}

// Addr returns the listen address derived from Port.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Builder provides a fluent interface for building Config.
type Builder struct {
	config Config
	errs   []error
}

// NewBuilder creates a new configuration builder seeded with defaults.
func NewBuilder() *Builder {
	return &Builder{
		config: Config{
			Symbol:                 DefaultSymbol,
			Port:                   DefaultPort,
			Connection:             DefaultConnection(),
			ControlVenue:           domain.VenueBitstamp,
			ControlLinesPerSecond:  5,
		},
	}
}

// Symbol sets the trading pair.
func (b *Builder) Symbol(symbol string) *Builder {
	if symbol != "" {
		b.config.Symbol = symbol
	}
	return b
}

// Port sets the listen port.
func (b *Builder) Port(port int) *Builder {
	b.config.Port = port
	return b
}

// Disable marks one venue as disabled, so its ticks are dropped before
// aggregation. It does not stop the venue's adapter from decoding frames.
func (b *Builder) Disable(v domain.Venue) *Builder {
	switch v {
	case domain.VenueBitstamp:
		b.config.Disabled.Bitstamp = true
	case domain.VenueBinance:
		b.config.Disabled.Binance = true
	case domain.VenueKraken:
		b.config.Disabled.Kraken = true
	case domain.VenueCoinbase:
		b.config.Disabled.Coinbase = true
	default:
		b.errs = append(b.errs, errors.NewBadDataError("config", "cannot disable unknown venue", string(v), nil))
	}
	return b
}

// ControlVenue sets the venue that receives forwarded stdin lines.
func (b *Builder) ControlVenue(v domain.Venue) *Builder {
	b.config.ControlVenue = v
	return b
}

// Build validates and returns the configuration.
func (b *Builder) Build() (Config, error) {
	if err := b.config.Validate(); err != nil {
		b.errs = append(b.errs, err)
	}

	if len(b.errs) > 0 {
		return Config{}, fmt.Errorf("configuration errors: %v", b.errs)
	}

	return b.config, nil
}

// MustBuild validates and returns the configuration, panicking on error.
func (b *Builder) MustBuild() Config {
	cfg, err := b.Build()
	if err != nil {
		panic(err)
	}
	return cfg
}
