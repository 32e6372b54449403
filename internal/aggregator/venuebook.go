// Package aggregator merges per-venue order book state into a single
// consolidated top-of-book view.
package aggregator

import "github.com/lilwiggy/orderbook-aggregator/pkg/domain"

// VenueBook holds one venue's current view of the book for a single
// symbol, keyed by price so repeated updates at the same price level are
// cheap to apply regardless of whether the venue speaks snapshots or
// deltas.
//
// Bitstamp and Binance are snapshot venues: every message is the full book
// and Replace clears and reinserts it. Kraken and Coinbase are delta
// venues: a message carries only the levels that changed and Apply
// upserts or deletes accordingly. Both converge on the same Bids/Asks
// read path.
type VenueBook struct {
	bids map[string]domain.Level
	asks map[string]domain.Level
}

// NewVenueBook creates an empty VenueBook.
func NewVenueBook() *VenueBook {
	return &VenueBook{
		bids: make(map[string]domain.Level),
		asks: make(map[string]domain.Level),
	}
}

// ReplaceBids discards the current bid side and installs levels as the new
// one, capped to the top domain.Depth entries.
func (b *VenueBook) ReplaceBids(levels []domain.Level) {
	b.bids = make(map[string]domain.Level, len(levels))
	for _, l := range levels {
		if l.IsDeletion() {
			continue
		}
		b.bids[l.Price.String()] = l
	}
	b.bids = capSide(b.bids, domain.SortBids)
}

// ReplaceAsks discards the current ask side and installs levels as the new
// one, capped to the top domain.Depth entries.
func (b *VenueBook) ReplaceAsks(levels []domain.Level) {
	b.asks = make(map[string]domain.Level, len(levels))
	for _, l := range levels {
		if l.IsDeletion() {
			continue
		}
		b.asks[l.Price.String()] = l
	}
	b.asks = capSide(b.asks, domain.SortAsks)
}

// ApplyBids upserts or deletes individual bid levels and re-caps the side to
// domain.Depth entries. A level with a zero amount deletes the price it
// names. Without the cap, a long-running delta feed would grow this side
// unbounded even though only the top entries ever reach the merged view.
func (b *VenueBook) ApplyBids(levels []domain.Level) {
	applyLevels(b.bids, levels)
	b.bids = capSide(b.bids, domain.SortBids)
}

// ApplyAsks upserts or deletes individual ask levels and re-caps the side to
// domain.Depth entries.
func (b *VenueBook) ApplyAsks(levels []domain.Level) {
	applyLevels(b.asks, levels)
	b.asks = capSide(b.asks, domain.SortAsks)
}

func applyLevels(side map[string]domain.Level, levels []domain.Level) {
	for _, l := range levels {
		key := l.Price.String()
		if l.IsDeletion() {
			delete(side, key)
			continue
		}
		side[key] = l
	}
}

// capSide trims side down to its best domain.Depth levels per the given
// sort order, leaving it unchanged if it's already within bounds.
func capSide(side map[string]domain.Level, sortFn func([]domain.Level)) map[string]domain.Level {
	if len(side) <= domain.Depth {
		return side
	}
	levels := values(side)
	sortFn(levels)
	levels = domain.TopN(levels, domain.Depth)

	capped := make(map[string]domain.Level, len(levels))
	for _, l := range levels {
		capped[l.Price.String()] = l
	}
	return capped
}

// Bids returns every resting bid level, unsorted.
func (b *VenueBook) Bids() []domain.Level {
	return values(b.bids)
}

// Asks returns every resting ask level, unsorted.
func (b *VenueBook) Asks() []domain.Level {
	return values(b.asks)
}

func values(m map[string]domain.Level) []domain.Level {
	out := make([]domain.Level, 0, len(m))
	for _, l := range m {
		out = append(out, l)
	}
	return out
}
