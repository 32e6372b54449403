package domain

import "testing"

func lvl(t *testing.T, price, amount string, venue Venue) Level {
	t.Helper()
	p, err := NewDecimal(price)
	if err != nil {
		t.Fatalf("price %q: %v", price, err)
	}
	a, err := NewDecimal(amount)
	if err != nil {
		t.Fatalf("amount %q: %v", amount, err)
	}
	return Level{Price: p, Amount: a, Venue: venue}
}

func TestSortBidsDescendingPrice(t *testing.T) {
	levels := []Level{
		lvl(t, "10", "1", VenueBitstamp),
		lvl(t, "10.5", "2", VenueBinance),
		lvl(t, "9.75", "3", VenueKraken),
	}
	SortBids(levels)

	want := []string{"10.5", "10", "9.75"}
	for i, w := range want {
		if levels[i].Price.String() != w {
			t.Fatalf("bid[%d] = %s, want %s", i, levels[i].Price.String(), w)
		}
	}
}

func TestSortAsksAscendingPrice(t *testing.T) {
	levels := []Level{
		lvl(t, "11.5", "2", VenueBinance),
		lvl(t, "11", "1", VenueBitstamp),
		lvl(t, "20.5", "2", VenueBinance),
	}
	SortAsks(levels)

	want := []string{"11", "11.5", "20.5"}
	for i, w := range want {
		if levels[i].Price.String() != w {
			t.Fatalf("ask[%d] = %s, want %s", i, levels[i].Price.String(), w)
		}
	}
}

// TestBidTieBreakByAmountThenVenue reproduces scenario 6: same best bid price
// from three venues at different amounts resolves by descending amount.
func TestBidTieBreakByAmountThenVenue(t *testing.T) {
	levels := []Level{
		lvl(t, "10.5", "1", VenueBitstamp),
		lvl(t, "10.5", "2", VenueBinance),
		lvl(t, "10.5", "3", VenueKraken),
	}
	SortBids(levels)

	if levels[0].Venue != VenueKraken {
		t.Fatalf("best bid venue = %s, want kraken (amount 3)", levels[0].Venue)
	}
	if levels[1].Venue != VenueBinance {
		t.Fatalf("second bid venue = %s, want binance (amount 2)", levels[1].Venue)
	}
	if levels[2].Venue != VenueBitstamp {
		t.Fatalf("third bid venue = %s, want bitstamp (amount 1)", levels[2].Venue)
	}
}

func TestComputeSpread(t *testing.T) {
	bids := []Level{lvl(t, "0.07358322", "0.465", VenueBitstamp)}
	asks := []Level{lvl(t, "0.07366569", "0.465", VenueBitstamp)}

	spread := ComputeSpread(bids, asks)
	if spread.String() != "0.00008247" {
		t.Fatalf("spread = %s, want 0.00008247", spread.String())
	}
}

func TestComputeSpreadEmptySide(t *testing.T) {
	if s := ComputeSpread(nil, []Level{lvl(t, "1", "1", VenueBinance)}); !IsZero(s) {
		t.Fatalf("spread with no bids = %s, want 0", s.String())
	}
	if s := ComputeSpread([]Level{lvl(t, "1", "1", VenueBinance)}, nil); !IsZero(s) {
		t.Fatalf("spread with no asks = %s, want 0", s.String())
	}
}

func TestMergeCapsDepthAtTen(t *testing.T) {
	var bidsByVenue [][]Level
	var levels []Level
	for i := 0; i < 15; i++ {
		levels = append(levels, lvl(t, "1", "1", VenueBitstamp))
	}
	bidsByVenue = append(bidsByVenue, levels)

	out := Merge(bidsByVenue, nil)
	if len(out.Bids) != Depth {
		t.Fatalf("len(bids) = %d, want %d", len(out.Bids), Depth)
	}
}

func TestLevelIsDeletion(t *testing.T) {
	zero := lvl(t, "1", "0", VenueKraken)
	if !zero.IsDeletion() {
		t.Fatal("zero-amount level should be a deletion marker")
	}
	nonZero := lvl(t, "1", "0.5", VenueKraken)
	if nonZero.IsDeletion() {
		t.Fatal("non-zero amount level should not be a deletion marker")
	}
}
