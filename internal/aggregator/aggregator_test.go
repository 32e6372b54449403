package aggregator

import (
	"fmt"
	"testing"

	"github.com/lilwiggy/orderbook-aggregator/pkg/domain"
)

func level(t *testing.T, side domain.Side, price, amount string, venue domain.Venue) domain.Level {
	t.Helper()
	p, err := domain.NewDecimal(price)
	if err != nil {
		t.Fatalf("NewDecimal(%q): %v", price, err)
	}
	a, err := domain.NewDecimal(amount)
	if err != nil {
		t.Fatalf("NewDecimal(%q): %v", amount, err)
	}
	return domain.Level{Side: side, Price: p, Amount: a, Venue: venue}
}

// TestBitstampSnapshotProducesTopOfBook reproduces scenario 1: a single
// bitstamp snapshot whose best bid/ask/spread are known exactly.
func TestBitstampSnapshotProducesTopOfBook(t *testing.T) {
	a := New(domain.VenueBitstamp)

	out := a.Apply(domain.InputTick{
		Venue: domain.VenueBitstamp,
		Bids: []domain.Level{
			level(t, domain.SideBid, "0.07358322", "0.465", domain.VenueBitstamp),
		},
		Asks: []domain.Level{
			level(t, domain.SideAsk, "0.07366569", "0.465", domain.VenueBitstamp),
		},
	})

	if len(out.Bids) != 1 || domain.Compare(out.Bids[0].Price, mustDecimal(t, "0.07358322")) != 0 {
		t.Fatalf("unexpected top bid: %+v", out.Bids)
	}
	if len(out.Asks) != 1 || domain.Compare(out.Asks[0].Price, mustDecimal(t, "0.07366569")) != 0 {
		t.Fatalf("unexpected top ask: %+v", out.Asks)
	}
	if domain.Compare(out.Spread, mustDecimal(t, "0.00008247")) != 0 {
		t.Fatalf("spread = %s, want 0.00008247", domain.String(out.Spread))
	}
}

// TestTwoVenueMergeKeepsBestAcrossVenues reproduces scenario 2: ticks from
// two distinct venues interleave into one consolidated top-of-book.
func TestTwoVenueMergeKeepsBestAcrossVenues(t *testing.T) {
	a := New(domain.VenueBitstamp, domain.VenueBinance)

	a.Apply(domain.InputTick{
		Venue: domain.VenueBitstamp,
		Bids:  []domain.Level{level(t, domain.SideBid, "10.0", "1", domain.VenueBitstamp)},
		Asks:  []domain.Level{level(t, domain.SideAsk, "10.5", "1", domain.VenueBitstamp)},
	})
	out := a.Apply(domain.InputTick{
		Venue: domain.VenueBinance,
		Bids:  []domain.Level{level(t, domain.SideBid, "10.2", "1", domain.VenueBinance)},
		Asks:  []domain.Level{level(t, domain.SideAsk, "10.4", "1", domain.VenueBinance)},
	})

	if domain.Compare(out.Bids[0].Price, mustDecimal(t, "10.2")) != 0 {
		t.Fatalf("top bid = %s, want 10.2", domain.String(out.Bids[0].Price))
	}
	if domain.Compare(out.Asks[0].Price, mustDecimal(t, "10.4")) != 0 {
		t.Fatalf("top ask = %s, want 10.4", domain.String(out.Asks[0].Price))
	}
	if domain.Compare(out.Spread, mustDecimal(t, "0.2")) != 0 {
		t.Fatalf("spread = %s, want 0.2", domain.String(out.Spread))
	}
}

// TestKrakenDeletionFallsBackToNextBest reproduces scenario 3: deleting
// Kraken's best bid exposes the next-best resting bid.
func TestKrakenDeletionFallsBackToNextBest(t *testing.T) {
	a := New(domain.VenueKraken)

	a.Apply(domain.InputTick{
		Venue: domain.VenueKraken,
		Bids: []domain.Level{
			level(t, domain.SideBid, "10.00", "5", domain.VenueKraken),
			level(t, domain.SideBid, "9.75", "3", domain.VenueKraken),
		},
	})

	out := a.Apply(domain.InputTick{
		Venue: domain.VenueKraken,
		Bids: []domain.Level{
			level(t, domain.SideBid, "10.00", "0", domain.VenueKraken),
		},
	})

	if len(out.Bids) != 1 {
		t.Fatalf("expected 1 resting bid after deletion, got %d", len(out.Bids))
	}
	if domain.Compare(out.Bids[0].Price, mustDecimal(t, "9.75")) != 0 {
		t.Fatalf("top bid = %s, want 9.75", domain.String(out.Bids[0].Price))
	}
}

// TestCoinbaseL2UpdateInsertsNewBestBid reproduces scenario 4.
func TestCoinbaseL2UpdateInsertsNewBestBid(t *testing.T) {
	a := New(domain.VenueCoinbase)

	a.Apply(domain.InputTick{
		Venue: domain.VenueCoinbase,
		Bids: []domain.Level{
			level(t, domain.SideBid, "0.067990", "2.0", domain.VenueCoinbase),
		},
	})

	out := a.Apply(domain.InputTick{
		Venue: domain.VenueCoinbase,
		Bids: []domain.Level{
			level(t, domain.SideBid, "0.067995", "1.0", domain.VenueCoinbase),
		},
	})

	if domain.Compare(out.Bids[0].Price, mustDecimal(t, "0.067995")) != 0 {
		t.Fatalf("top bid = %s, want 0.067995", domain.String(out.Bids[0].Price))
	}
}

// TestSamePriceTieBreaksByDescendingAmountThenVenue reproduces scenario 6:
// three of the four registered venues resting at the same price, ranked by
// descending amount.
func TestSamePriceTieBreaksByDescendingAmountThenVenue(t *testing.T) {
	a := New(domain.VenueBitstamp, domain.VenueBinance, domain.VenueKraken, domain.VenueCoinbase)

	a.Apply(domain.InputTick{Venue: domain.VenueBitstamp, Bids: []domain.Level{level(t, domain.SideBid, "10.5", "1", domain.VenueBitstamp)}})
	a.Apply(domain.InputTick{Venue: domain.VenueBinance, Bids: []domain.Level{level(t, domain.SideBid, "10.5", "2", domain.VenueBinance)}})
	out := a.Apply(domain.InputTick{Venue: domain.VenueKraken, Bids: []domain.Level{level(t, domain.SideBid, "10.5", "3", domain.VenueKraken)}})

	if out.Bids[0].Venue != domain.VenueKraken {
		t.Fatalf("rank 0 venue = %s, want kraken", out.Bids[0].Venue)
	}
	if out.Bids[1].Venue != domain.VenueBinance {
		t.Fatalf("rank 1 venue = %s, want binance", out.Bids[1].Venue)
	}
	if out.Bids[2].Venue != domain.VenueBitstamp {
		t.Fatalf("rank 2 venue = %s, want bitstamp", out.Bids[2].Venue)
	}
}

func TestSnapshotCapsDepthAtTen(t *testing.T) {
	a := New(domain.VenueBitstamp)

	var bids []domain.Level
	for i := 0; i < 15; i++ {
		bids = append(bids, level(t, domain.SideBid, fmt.Sprintf("10.%02d", i), "1", domain.VenueBitstamp))
	}

	out := a.Apply(domain.InputTick{Venue: domain.VenueBitstamp, Bids: bids})
	if len(out.Bids) != domain.Depth {
		t.Fatalf("len(Bids) = %d, want %d", len(out.Bids), domain.Depth)
	}
}

func mustDecimal(t *testing.T, s string) domain.Decimal {
	t.Helper()
	d, err := domain.NewDecimal(s)
	if err != nil {
		t.Fatalf("NewDecimal(%q): %v", s, err)
	}
	return d
}
