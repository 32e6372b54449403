package supervisor

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/lilwiggy/orderbook-aggregator/internal/driver"
	"github.com/lilwiggy/orderbook-aggregator/pkg/domain"
)

// fakeAdapter feeds a fixed sequence of ticks onto the shared channel
// and waits for ctx to be cancelled before returning, mirroring a real
// adapter's Run contract without touching the network.
type fakeAdapter struct {
	venue   domain.Venue
	ticks   []domain.InputTick
	forward []string
}

func (f *fakeAdapter) Venue() domain.Venue { return f.venue }

func (f *fakeAdapter) Run(ctx context.Context, ticks chan<- domain.InputTick, errs chan<- error) error {
	for _, t := range f.ticks {
		select {
		case ticks <- t:
		case <-ctx.Done():
			return nil
		}
	}
	<-ctx.Done()
	return nil
}

func (f *fakeAdapter) Forward(line string) error {
	f.forward = append(f.forward, line)
	return nil
}

func (f *fakeAdapter) Close() error { return nil }

func (f *fakeAdapter) HealthURL() string { return "" }

func level(t *testing.T, price, amount string, venue domain.Venue) domain.Level {
	t.Helper()
	p, err := domain.NewDecimal(price)
	if err != nil {
		t.Fatalf("NewDecimal(%q): %v", price, err)
	}
	a, err := domain.NewDecimal(amount)
	if err != nil {
		t.Fatalf("NewDecimal(%q): %v", amount, err)
	}
	return domain.Level{Price: p, Amount: a, Venue: venue}
}

// TestLateJoiningSubscriberSeesCurrentState reproduces scenario 5: a
// subscriber that starts after ticks have already flowed still sees the
// latest consolidated view, not an empty one.
func TestLateJoiningSubscriberSeesCurrentState(t *testing.T) {
	a := &fakeAdapter{
		venue: domain.VenueBitstamp,
		ticks: []domain.InputTick{
			{
				Venue: domain.VenueBitstamp,
				Bids:  []domain.Level{level(t, "10.0", "1", domain.VenueBitstamp)},
				Asks:  []domain.Level{level(t, "10.5", "1", domain.VenueBitstamp)},
			},
		},
	}

	sup := New([]driver.Adapter{a}, domain.VenueBitstamp, 5)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Run stops on stdin EOF, so stdin is a pipe that stays open for the
	// whole test instead of an empty reader.
	stdin, stdinWriter := io.Pipe()
	defer stdinWriter.Close()

	done := make(chan struct{})
	go func() {
		_ = sup.Run(ctx, stdin)
		close(done)
	}()

	deadline := time.After(time.Second)
	for {
		tick, _ := sup.Slot().Load()
		if len(tick.Bids) > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("tick was never published")
		case <-time.After(5 * time.Millisecond):
		}
	}

	tick, _ := sup.Slot().Load()
	if domain.Compare(tick.Bids[0].Price, mustDecimal(t, "10.0")) != 0 {
		t.Fatalf("top bid = %s, want 10.0", domain.String(tick.Bids[0].Price))
	}

	cancel()
	<-done
}

func mustDecimal(t *testing.T, s string) domain.Decimal {
	t.Helper()
	d, err := domain.NewDecimal(s)
	if err != nil {
		t.Fatalf("NewDecimal(%q): %v", s, err)
	}
	return d
}
