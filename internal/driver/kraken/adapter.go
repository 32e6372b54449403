// Package kraken implements the Kraken venue adapter: a book channel that
// pushes one snapshot followed by incremental updates, both carried as
// positional JSON arrays.
package kraken

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/lxzan/gws"

	"github.com/lilwiggy/orderbook-aggregator/internal/driver"
	"github.com/lilwiggy/orderbook-aggregator/pkg/domain"
	"github.com/lilwiggy/orderbook-aggregator/pkg/errors"
)

const venueName = domain.VenueKraken

const wsURL = "wss://ws.kraken.com"

// Config holds per-connection tuning for the Kraken adapter.
type Config struct {
	PingInterval time.Duration
	DialTimeout  time.Duration
	Depth        int
}

// Adapter is the Kraken venue adapter. It subscribes to the book channel
// at Config.Depth (default 10): the first push for the channel is a full
// snapshot ("as"/"bs" keys), every push after that is an incremental
// update ("a"/"b" keys, a zero volume meaning delete that price).
type Adapter struct {
	driver.Session

	cfg  Config
	pair string

	ctx   context.Context
	ticks chan<- domain.InputTick
}

// NewAdapter creates a Kraken adapter for the given normalized symbol
// (e.g. "ETH/BTC", which Kraken's REST-style pair notation accepts as-is).
func NewAdapter(cfg Config, symbol string) *Adapter {
	if cfg.PingInterval == 0 {
		cfg.PingInterval = 20 * time.Second
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	if cfg.Depth == 0 {
		cfg.Depth = 10
	}
	a := &Adapter{cfg: cfg, pair: symbol}
	a.Session.PingInterval = cfg.PingInterval
	a.Session.Venue = venueName
	return a
}

// Venue returns domain.VenueKraken.
func (a *Adapter) Venue() domain.Venue { return venueName }

// HealthURL returns Kraken's REST server time endpoint.
func (a *Adapter) HealthURL() string { return "https://api.kraken.com/0/public/Time" }

type subscribeFrame struct {
	Event        string       `json:"event"`
	Pair         []string     `json:"pair"`
	Subscription subscription `json:"subscription"`
}

type subscription struct {
	Name  string `json:"name"`
	Depth int    `json:"depth"`
}

// Run dials the Kraken WebSocket endpoint, subscribes to the book
// channel, and decodes frames until ctx is cancelled; failures after the
// dial are reported on errs.
func (a *Adapter) Run(ctx context.Context, ticks chan<- domain.InputTick, errs chan<- error) error {
	a.ctx = ctx
	a.ticks = ticks

	return a.Session.Dial(ctx, a, wsURL, a.cfg.DialTimeout, errs)
}

// Forward is a no-op: this adapter keeps a fixed single-pair subscription.
func (a *Adapter) Forward(line string) error { return nil }

// OnOpen implements gws.EventHandler, sending the book-channel subscribe frame.
func (a *Adapter) OnOpen(socket *gws.Conn) {
	a.Deadline(socket)

	frame := subscribeFrame{
		Event: "subscribe",
		Pair:  []string{a.pair},
		Subscription: subscription{
			Name:  "book",
			Depth: a.cfg.Depth,
		},
	}
	if err := driver.SendJSON(socket, venueName, frame); err != nil {
		a.Report(err)
	}
}

// bookPayload is one of the positional objects in a book channel frame.
// Kraken names a snapshot's sides "as"/"bs" and an update's sides "a"/"b";
// an update frame may carry one payload object with both keys, or two
// separate payload objects (one per side) back to back before the channel
// name and pair fields. "r" marks a republished (already-seen) update and
// is accepted but otherwise ignored here: deletions are still expressed
// by a zero volume regardless of the republish marker.
type bookPayload struct {
	AskSnapshot [][]string `json:"as"`
	BidSnapshot [][]string `json:"bs"`
	AskUpdate   [][]string `json:"a"`
	BidUpdate   [][]string `json:"b"`
}

func (p bookPayload) isEmpty() bool {
	return len(p.AskSnapshot) == 0 && len(p.BidSnapshot) == 0 && len(p.AskUpdate) == 0 && len(p.BidUpdate) == 0
}

// OnMessage implements gws.EventHandler. Kraken multiplexes status events
// (JSON objects) and channel data (JSON arrays) on the same connection;
// only arrays carry book payloads.
func (a *Adapter) OnMessage(socket *gws.Conn, message *gws.Message) {
	defer message.Close()
	a.Deadline(socket)

	data := message.Bytes()
	if len(data) == 0 {
		return
	}

	trimmed := bytes.TrimLeft(data, " \t\n\r")
	if len(trimmed) == 0 || trimmed[0] != '[' {
		// status/heartbeat/subscriptionStatus object, not a book payload
		return
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		a.Report(errors.NewBadDataError(string(venueName), "malformed channel frame", string(data), err))
		return
	}
	if len(raw) < 4 {
		a.Report(errors.NewBadDataError(string(venueName), "channel frame too short", string(data), nil))
		return
	}

	var bids, asks []domain.Level

	// Every element between the channel ID (index 0) and the trailing
	// channel-name/pair strings (last two elements) is a payload object.
	// A snapshot's levels apply the same way an update's do: the
	// aggregator always merges Kraken levels one at a time keyed by
	// price, so the only difference between "as"/"bs" and "a"/"b" is
	// which JSON keys carry the levels.
	for _, elem := range raw[1 : len(raw)-2] {
		var payload bookPayload
		if err := json.Unmarshal(elem, &payload); err != nil {
			continue
		}
		if payload.isEmpty() {
			continue
		}

		if len(payload.AskSnapshot) > 0 || len(payload.BidSnapshot) > 0 {
			b, err := driver.LevelsFromPairs(payload.BidSnapshot, domain.SideBid, venueName)
			if err != nil {
				a.Report(errors.NewBadDataError(string(venueName), "malformed bid snapshot", string(data), err))
				return
			}
			k, err := driver.LevelsFromPairs(payload.AskSnapshot, domain.SideAsk, venueName)
			if err != nil {
				a.Report(errors.NewBadDataError(string(venueName), "malformed ask snapshot", string(data), err))
				return
			}
			bids = append(bids, b...)
			asks = append(asks, k...)
			continue
		}

		b, err := driver.LevelsFromPairs(payload.BidUpdate, domain.SideBid, venueName)
		if err != nil {
			a.Report(errors.NewBadDataError(string(venueName), "malformed bid update", string(data), err))
			return
		}
		k, err := driver.LevelsFromPairs(payload.AskUpdate, domain.SideAsk, venueName)
		if err != nil {
			a.Report(errors.NewBadDataError(string(venueName), "malformed ask update", string(data), err))
			return
		}
		bids = append(bids, b...)
		asks = append(asks, k...)
	}

	if len(bids) == 0 && len(asks) == 0 {
		return
	}

	driver.SendTick(a.ctx, a.ticks, domain.InputTick{Venue: venueName, Bids: bids, Asks: asks})
}
