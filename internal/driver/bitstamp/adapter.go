// Package bitstamp implements the Bitstamp venue adapter: a Pusher-style
// WebSocket channel that republishes the full order book on every change.
package bitstamp

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

const venueName = domain.VenueBitstamp

const wsURL = "wss://ws.bitstamp.net"

// Config holds per-connection tuning for the Bitstamp adapter.
type Config struct {
	PingInterval time.Duration
	DialTimeout  time.Duration
}

// Adapter is the Bitstamp venue adapter. It subscribes to the
// order_book_<pair> channel, which carries a full snapshot of the book on
// every push.
type Adapter struct {
	driver.Session

	cfg     Config
	channel string

	ctx   context.Context
	ticks chan<- domain.InputTick
}

// NewAdapter creates a Bitstamp adapter for the given normalized symbol
// (e.g. "ETH/BTC").
func NewAdapter(cfg Config, symbol string) *Adapter {
	if cfg.PingInterval == 0 {
		cfg.PingInterval = 20 * time.Second
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	pair := strings.ToLower(domain.ExchangeSymbol(symbol))
	a := &Adapter{cfg: cfg, channel: "order_book_" + pair}
	a.Session.PingInterval = cfg.PingInterval
	a.Session.Venue = venueName
	return a
}

// Venue returns domain.VenueBitstamp.
func (a *Adapter) Venue() domain.Venue { return venueName }

// HealthURL returns Bitstamp's REST trading-pairs-info endpoint.
func (a *Adapter) HealthURL() string { return "https://www.bitstamp.net/api/v2/trading-pairs-info/" }

type subscribeFrame struct {
	Event string `json:"event"`
	Data  struct {
		Channel string `json:"channel"`
	} `json:"data"`
}

type dataFrame struct {
	Event   string `json:"event"`
	Channel string `json:"channel"`
	Data    struct {
		Bids [][]string `json:"bids"`
		Asks [][]string `json:"asks"`
	} `json:"data"`
}

// Run dials the Pusher WebSocket endpoint, subscribes to the order book
// channel, and decodes frames until ctx is cancelled; failures after the
// dial are reported on errs.
func (a *Adapter) Run(ctx context.Context, ticks chan<- domain.InputTick, errs chan<- error) error {
	a.ctx = ctx
	a.ticks = ticks

	return a.Session.Dial(ctx, a, wsURL, a.cfg.DialTimeout, errs)
}

// Forward is a no-op: the order book channel takes no runtime control input.
func (a *Adapter) Forward(line string) error { return nil }

// OnOpen implements gws.EventHandler, sending the bts:subscribe frame.
func (a *Adapter) OnOpen(socket *gws.Conn) {
	a.Deadline(socket)

	var frame subscribeFrame
	frame.Event = "bts:subscribe"
	frame.Data.Channel = a.channel
	if err := driver.SendJSON(socket, venueName, frame); err != nil {
		a.Report(err)
	}
}

// OnMessage implements gws.EventHandler. Bitstamp pushes "bts:subscription_succeeded"
// and "bts:error" control events alongside "data" events on the channel;
// only "data" carries a book snapshot.
func (a *Adapter) OnMessage(socket *gws.Conn, message *gws.Message) {
	defer message.Close()
	a.Deadline(socket)

	data := message.Bytes()
	if len(data) == 0 {
		return
	}

	var envelope struct {
		Event string `json:"event"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		a.Report(errors.NewBadDataError(string(venueName), "malformed frame", string(data), err))
		return
	}

	switch envelope.Event {
	case "data":
		a.handleData(data)
	case "bts:subscription_succeeded":
		return
	case "bts:error":
		a.Report(errors.NewBadDataError(string(venueName), "venue reported error", string(data), nil))
	default:
		// unrecognized but structurally valid event, ignore
	}
}

func (a *Adapter) handleData(raw []byte) {
	var frame dataFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		a.Report(errors.NewBadDataError(string(venueName), "malformed data frame", string(raw), err))
		return
	}

	bids, err := driver.LevelsFromPairs(frame.Data.Bids, domain.SideBid, venueName)
	if err != nil {
		a.Report(errors.NewBadDataError(string(venueName), "malformed bid level", string(raw), err))
		return
	}
	asks, err := driver.LevelsFromPairs(frame.Data.Asks, domain.SideAsk, venueName)
	if err != nil {
		a.Report(errors.NewBadDataError(string(venueName), "malformed ask level", string(raw), err))
		return
	}

	bids, asks = driver.CapSnapshotDepth(bids, asks)

	driver.SendTick(a.ctx, a.ticks, domain.InputTick{Venue: venueName, Bids: bids, Asks: asks})
}
