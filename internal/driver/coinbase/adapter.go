// Package coinbase implements the Coinbase venue adapter: a level2 channel
// that pushes one snapshot followed by incremental l2update changes.
package coinbase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lxzan/gws"

	"github.com/lilwiggy/orderbook-aggregator/internal/driver"
	"github.com/lilwiggy/orderbook-aggregator/pkg/domain"
	"github.com/lilwiggy/orderbook-aggregator/pkg/errors"
)

const venueName = domain.VenueCoinbase

const wsURL = "wss://ws-feed.exchange.coinbase.com"

// Config holds per-connection tuning for the Coinbase adapter.
type Config struct {
	PingInterval time.Duration
	DialTimeout  time.Duration
}

// Adapter is the Coinbase venue adapter. It subscribes to the level2
// channel: the first message is a "snapshot" with the full book, every
// message after that is an "l2update" with a list of (side, price, size)
// changes, where a zero size deletes that price.
type Adapter struct {
	driver.Session

	cfg       Config
	productID string

	ctx   context.Context
	ticks chan<- domain.InputTick
}

// NewAdapter creates a Coinbase adapter for the given normalized symbol
// (e.g. "ETH/BTC").
func NewAdapter(cfg Config, symbol string) *Adapter {
	if cfg.PingInterval == 0 {
		cfg.PingInterval = 20 * time.Second
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	a := &Adapter{cfg: cfg, productID: domain.DashedSymbol(symbol)}
	a.Session.PingInterval = cfg.PingInterval
	a.Session.Venue = venueName
	return a
}

// Venue returns domain.VenueCoinbase.
func (a *Adapter) Venue() domain.Venue { return venueName }

// HealthURL returns Coinbase Exchange's REST server time endpoint.
func (a *Adapter) HealthURL() string { return "https://api.exchange.coinbase.com/time" }

type subscribeFrame struct {
	Type       string   `json:"type"`
	ProductIDs []string `json:"product_ids"`
	Channels   []string `json:"channels"`
}

// Run dials the Coinbase WebSocket feed, subscribes to the level2
// channel, and decodes frames until ctx is cancelled; failures after the
// dial are reported on errs.
func (a *Adapter) Run(ctx context.Context, ticks chan<- domain.InputTick, errs chan<- error) error {
	a.ctx = ctx
	a.ticks = ticks

	return a.Session.Dial(ctx, a, wsURL, a.cfg.DialTimeout, errs)
}

// Forward is a no-op: this adapter keeps a fixed single-product subscription.
func (a *Adapter) Forward(line string) error { return nil }

// OnOpen implements gws.EventHandler, sending the level2 subscribe frame.
func (a *Adapter) OnOpen(socket *gws.Conn) {
	a.Deadline(socket)

	frame := subscribeFrame{
		Type:       "subscribe",
		ProductIDs: []string{a.productID},
		Channels:   []string{"level2", "heartbeat"},
	}
	if err := driver.SendJSON(socket, venueName, frame); err != nil {
		a.Report(err)
	}
}

type snapshotFrame struct {
	Type      string     `json:"type"`
	ProductID string     `json:"product_id"`
	Bids      [][]string `json:"bids"`
	Asks      [][]string `json:"asks"`
}

type l2updateFrame struct {
	Type      string     `json:"type"`
	ProductID string     `json:"product_id"`
	Changes   [][]string `json:"changes"`
}

// OnMessage implements gws.EventHandler. Coinbase also pushes
// "subscriptions" acks and "error" frames on the same connection; only
// "snapshot" and "l2update" carry book data.
func (a *Adapter) OnMessage(socket *gws.Conn, message *gws.Message) {
	defer message.Close()
	a.Deadline(socket)

	data := message.Bytes()
	if len(data) == 0 {
		return
	}

	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		a.Report(errors.NewBadDataError(string(venueName), "malformed frame", string(data), err))
		return
	}

	switch envelope.Type {
	case "snapshot":
		a.handleSnapshot(data)
	case "l2update":
		a.handleL2Update(data)
	case "subscriptions":
		return
	case "error":
		a.Report(errors.NewBadDataError(string(venueName), "venue reported error", string(data), nil))
	default:
		// unrecognized but structurally valid event, ignore
	}
}

func (a *Adapter) handleSnapshot(raw []byte) {
	var frame snapshotFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		a.Report(errors.NewBadDataError(string(venueName), "malformed snapshot frame", string(raw), err))
		return
	}

	bids, err := driver.LevelsFromPairs(frame.Bids, domain.SideBid, venueName)
	if err != nil {
		a.Report(errors.NewBadDataError(string(venueName), "malformed bid level", string(raw), err))
		return
	}
	asks, err := driver.LevelsFromPairs(frame.Asks, domain.SideAsk, venueName)
	if err != nil {
		a.Report(errors.NewBadDataError(string(venueName), "malformed ask level", string(raw), err))
		return
	}

	bids, asks = driver.CapSnapshotDepth(bids, asks)

	driver.SendTick(a.ctx, a.ticks, domain.InputTick{Venue: venueName, Bids: bids, Asks: asks})
}

func (a *Adapter) handleL2Update(raw []byte) {
	var frame l2updateFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		a.Report(errors.NewBadDataError(string(venueName), "malformed l2update frame", string(raw), err))
		return
	}

	var bids, asks []domain.Level
	for _, change := range frame.Changes {
		if len(change) != 3 {
			a.Report(errors.NewBadDataError(string(venueName), "malformed change entry", string(raw), nil))
			return
		}
		side, priceStr, sizeStr := change[0], change[1], change[2]

		price, err := domain.NewDecimal(priceStr)
		if err != nil {
			a.Report(errors.NewBadDataError(string(venueName), "malformed change price", string(raw), err))
			return
		}
		size, err := domain.NewDecimal(sizeStr)
		if err != nil {
			a.Report(errors.NewBadDataError(string(venueName), "malformed change size", string(raw), err))
			return
		}

		switch side {
		case "buy":
			bids = append(bids, domain.Level{Side: domain.SideBid, Price: price, Amount: size, Venue: venueName})
		case "sell":
			asks = append(asks, domain.Level{Side: domain.SideAsk, Price: price, Amount: size, Venue: venueName})
		default:
			a.Report(errors.NewBadDataError(string(venueName), fmt.Sprintf("unknown change side %q", side), string(raw), nil))
			return
		}
	}

	if len(bids) == 0 && len(asks) == 0 {
		return
	}
	driver.SendTick(a.ctx, a.ticks, domain.InputTick{Venue: venueName, Bids: bids, Asks: asks})
}
