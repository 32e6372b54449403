package aggregator

import "github.com/lilwiggy/orderbook-aggregator/pkg/domain"

// Aggregator owns one VenueBook per venue and folds incoming ticks into a
// single consolidated OutputTick capped at domain.Depth levels per side.
//
// Aggregator is not safe for concurrent use; callers run it from a single
// goroutine (the supervisor's dispatch loop) and publish its output
// through a broadcast.Slot for fan-out to subscribers.
type Aggregator struct {
	books map[domain.Venue]*VenueBook
}

// New creates an Aggregator with an empty book for each given venue.
func New(venues ...domain.Venue) *Aggregator {
	a := &Aggregator{books: make(map[domain.Venue]*VenueBook, len(venues))}
	for _, v := range venues {
		a.books[v] = NewVenueBook()
	}
	return a
}

// Apply folds a single venue's tick into its book and returns the
// resulting consolidated view across all venues.
//
// Bitstamp and Binance ticks always carry a full snapshot and replace the
// prior side outright. Kraken and Coinbase ticks carry incremental
// changes and are applied level-by-level. Which behavior a tick gets is
// determined by its Venue, not by any flag on the tick itself, mirroring
// how each venue's wire protocol is fixed at subscribe time.
func (a *Aggregator) Apply(tick domain.InputTick) domain.OutputTick {
	book, ok := a.books[tick.Venue]
	if !ok {
		book = NewVenueBook()
		a.books[tick.Venue] = book
	}

	switch tick.Venue {
	case domain.VenueBitstamp, domain.VenueBinance:
		if tick.Bids != nil {
			book.ReplaceBids(tick.Bids)
		}
		if tick.Asks != nil {
			book.ReplaceAsks(tick.Asks)
		}
	default:
		book.ApplyBids(tick.Bids)
		book.ApplyAsks(tick.Asks)
	}

	return a.Snapshot()
}

// Snapshot recomputes the consolidated top-of-book view from every
// venue's current book, without mutating any of them.
func (a *Aggregator) Snapshot() domain.OutputTick {
	bidsByVenue := make([][]domain.Level, 0, len(a.books))
	asksByVenue := make([][]domain.Level, 0, len(a.books))
	for _, book := range a.books {
		bidsByVenue = append(bidsByVenue, book.Bids())
		asksByVenue = append(asksByVenue, book.Asks())
	}
	return domain.Merge(bidsByVenue, asksByVenue)
}
