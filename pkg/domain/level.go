// Package domain provides core domain types for the order book aggregator.
package domain

import "sort"

// Venue identifies the source of a price level or tick.
type Venue string

const (
	VenueBitstamp Venue = "bitstamp"
	VenueBinance  Venue = "binance"
	VenueKraken   Venue = "kraken"
	VenueCoinbase Venue = "coinbase"
)

// IsValid returns true if v is one of the four supported venues.
func (v Venue) IsValid() bool {
	switch v {
	case VenueBitstamp, VenueBinance, VenueKraken, VenueCoinbase:
		return true
	default:
		return false
	}
}

// String returns the stable lowercase venue name used on the wire.
func (v Venue) String() string {
	return string(v)
}

// Side identifies which side of the book a Level belongs to.
type Side string

const (
	SideBid Side = "bid"
	SideAsk Side = "ask"
)

// Level is one price level from some venue.
type Level struct {
	Side   Side
	Price  Decimal
	Amount Decimal
	Venue  Venue
}

// IsDeletion reports whether this level is a zero-amount deletion marker.
func (l Level) IsDeletion() bool {
	return l.Amount == nil || IsZero(l.Amount)
}

// InputTick is one normalized snapshot or update from a venue adapter.
type InputTick struct {
	Venue Venue
	Bids  []Level
	Asks  []Level
}

// OutputTick is the published consolidated view across all venues.
type OutputTick struct {
	Spread Decimal
	Bids   []Level
	Asks   []Level
}

// Depth is the published depth per side of an OutputTick.
const Depth = 10

// SortBids sorts levels in place per the bid ordering rule: strictly
// non-increasing by price, ties broken by descending amount, further ties
// broken by venue identity.
func SortBids(levels []Level) {
	sort.SliceStable(levels, func(i, j int) bool {
		return lessBid(levels[i], levels[j])
	})
}

// SortAsks sorts levels in place per the ask ordering rule: strictly
// non-decreasing by price, ties broken by descending amount, further ties
// broken by venue identity.
func SortAsks(levels []Level) {
	sort.SliceStable(levels, func(i, j int) bool {
		return lessAsk(levels[i], levels[j])
	})
}

// lessBid reports whether a sorts before b in the bid ordering.
func lessBid(a, b Level) bool {
	if c := Cmp(a.Price, b.Price); c != 0 {
		return c > 0 // descending price
	}
	if c := Cmp(a.Amount, b.Amount); c != 0 {
		return c > 0 // descending amount: larger resting size wins the tie
	}
	return a.Venue < b.Venue
}

// lessAsk reports whether a sorts before b in the ask ordering.
func lessAsk(a, b Level) bool {
	if c := Cmp(a.Price, b.Price); c != 0 {
		return c < 0 // ascending price
	}
	if c := Cmp(a.Amount, b.Amount); c != 0 {
		return c > 0 // descending amount: larger resting size wins the tie
	}
	return a.Venue < b.Venue
}

// TopN returns the first n levels of a sorted slice, or all of it if shorter.
func TopN(levels []Level, n int) []Level {
	if len(levels) <= n {
		return levels
	}
	return levels[:n]
}

// ComputeSpread returns asks[0].Price - bids[0].Price, or zero if either
// side is empty.
func ComputeSpread(bids, asks []Level) Decimal {
	if len(bids) == 0 || len(asks) == 0 {
		return Zero()
	}
	return Sub(asks[0].Price, bids[0].Price)
}

// Merge concatenates per-venue top-N levels across all venues and returns
// the sorted, depth-capped OutputTick sides plus spread.
func Merge(bidsByVenue, asksByVenue [][]Level) OutputTick {
	var bids, asks []Level
	for _, vb := range bidsByVenue {
		bids = append(bids, vb...)
	}
	for _, va := range asksByVenue {
		asks = append(asks, va...)
	}

	SortBids(bids)
	SortAsks(asks)

	bids = TopN(bids, Depth)
	asks = TopN(asks, Depth)

	return OutputTick{
		Spread: ComputeSpread(bids, asks),
		Bids:   bids,
		Asks:   asks,
	}
}
