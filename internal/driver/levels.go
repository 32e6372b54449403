package driver

import (
	"context"
	"fmt"

	"github.com/lilwiggy/orderbook-aggregator/pkg/domain"
)

// LevelsFromPairs parses a venue's [price, amount, ...] string tuples (the
// common wire shape for snapshot and delta sides on Binance, Bitstamp, and
// Coinbase, and Kraken's [price, volume, timestamp] triples) into
// domain.Level values. Only the first two fields are used; any trailing
// fields are ignored.
func LevelsFromPairs(pairs [][]string, side domain.Side, venue domain.Venue) ([]domain.Level, error) {
	levels := make([]domain.Level, 0, len(pairs))
	for _, pair := range pairs {
		if len(pair) < 2 {
			return nil, fmt.Errorf("expected [price, amount, ...] tuple, got %v", pair)
		}
		price, err := domain.NewDecimal(pair[0])
		if err != nil {
			return nil, err
		}
		amount, err := domain.NewDecimal(pair[1])
		if err != nil {
			return nil, err
		}
		levels = append(levels, domain.Level{Side: side, Price: price, Amount: amount, Venue: venue})
	}
	return levels, nil
}

// CapSnapshotDepth sorts bids/asks into best-first order and truncates each
// side to domain.Depth. A full-book snapshot push (Bitstamp's order_book
// channel, Coinbase's level2 snapshot) can carry far more than ten resting
// levels per side; only the top ones ever survive into the merged view.
func CapSnapshotDepth(bids, asks []domain.Level) ([]domain.Level, []domain.Level) {
	domain.SortBids(bids)
	domain.SortAsks(asks)
	return domain.TopN(bids, domain.Depth), domain.TopN(asks, domain.Depth)
}

// SendTick delivers tick on ticks, or gives up once ctx is done. Without the
// ctx case, a gws.EventHandler callback still decoding a message after the
// supervisor's dispatch loop has stopped reading ticks would block on this
// send forever, leaking the adapter's read-loop goroutine on every shutdown.
func SendTick(ctx context.Context, ticks chan<- domain.InputTick, tick domain.InputTick) {
	select {
	case ticks <- tick:
	case <-ctx.Done():
	}
}
