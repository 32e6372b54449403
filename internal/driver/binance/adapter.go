// Package binance implements the Binance venue adapter: a single
// depth10@100ms WebSocket stream decoded into domain.InputTick snapshots.
package binance

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/lxzan/gws"

	"github.com/lilwiggy/orderbook-aggregator/internal/driver"
	"github.com/lilwiggy/orderbook-aggregator/pkg/domain"
	"github.com/lilwiggy/orderbook-aggregator/pkg/errors"
)

const venueName = domain.VenueBinance

const wsBaseURL = "wss://stream.binance.com:9443/ws/"

// Config holds per-connection tuning for the Binance adapter.
type Config struct {
	PingInterval time.Duration
	DialTimeout  time.Duration
}

// Adapter is the Binance venue adapter. It subscribes to a single
// <symbol>@depth10@100ms stream, which Binance republishes as a full
// top-10 snapshot roughly every 100ms.
type Adapter struct {
	driver.Session

	cfg    Config
	symbol string

	ctx   context.Context
	ticks chan<- domain.InputTick
}

// NewAdapter creates a Binance adapter for the given normalized symbol
// (e.g. "ETH/BTC").
func NewAdapter(cfg Config, symbol string) *Adapter {
	if cfg.PingInterval == 0 {
		cfg.PingInterval = 20 * time.Second
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	a := &Adapter{cfg: cfg, symbol: symbol}
	a.Session.PingInterval = cfg.PingInterval
	a.Session.Venue = venueName
	return a
}

// Venue returns domain.VenueBinance.
func (a *Adapter) Venue() domain.Venue { return venueName }

// HealthURL returns Binance's REST connectivity check endpoint.
func (a *Adapter) HealthURL() string { return "https://api.binance.com/api/v3/ping" }

// Run dials the depth10 stream and decodes frames until ctx is cancelled;
// failures after the dial are reported on errs.
func (a *Adapter) Run(ctx context.Context, ticks chan<- domain.InputTick, errs chan<- error) error {
	a.ctx = ctx
	a.ticks = ticks

	stream := strings.ToLower(domain.ExchangeSymbol(a.symbol)) + "@depth10@100ms"
	url := wsBaseURL + stream

	return a.Session.Dial(ctx, a, url, a.cfg.DialTimeout, errs)
}

// Forward is a no-op: Binance's public depth stream takes no control
// input, its subscription is fixed at dial time.
func (a *Adapter) Forward(line string) error { return nil }

// OnOpen implements gws.EventHandler.
func (a *Adapter) OnOpen(socket *gws.Conn) {
	a.Deadline(socket)
}

// depthFrame is the wire shape of a single depth10 push.
type depthFrame struct {
	LastUpdateID int64      `json:"lastUpdateId"`
	Bids         [][]string `json:"bids"`
	Asks         [][]string `json:"asks"`
}

// OnMessage implements gws.EventHandler, decoding a depth10 snapshot into
// an InputTick and pushing it to the shared ticks channel.
func (a *Adapter) OnMessage(socket *gws.Conn, message *gws.Message) {
	defer message.Close()
	a.Deadline(socket)

	data := message.Bytes()
	if len(data) == 0 {
		return
	}

	var frame depthFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		a.Report(errors.NewBadDataError(string(venueName), "malformed depth frame", string(data), err))
		return
	}

	bids, err := driver.LevelsFromPairs(frame.Bids, domain.SideBid, venueName)
	if err != nil {
		a.Report(errors.NewBadDataError(string(venueName), "malformed bid level", string(data), err))
		return
	}
	asks, err := driver.LevelsFromPairs(frame.Asks, domain.SideAsk, venueName)
	if err != nil {
		a.Report(errors.NewBadDataError(string(venueName), "malformed ask level", string(data), err))
		return
	}

	driver.SendTick(a.ctx, a.ticks, domain.InputTick{Venue: venueName, Bids: bids, Asks: asks})
}
