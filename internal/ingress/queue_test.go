package ingress

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestQueuePreservesOrderPerProducer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewQueue[int](ctx)
	for i := 0; i < 5; i++ {
		q.Send(ctx, i)
	}

	for i := 0; i < 5; i++ {
		select {
		case v := <-q.Receive():
			if v != i {
				t.Fatalf("Receive() = %d, want %d", v, i)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for item")
		}
	}
}

func TestQueueAcceptsConcurrentProducers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewQueue[int](ctx)
	const producers, perProducer = 8, 50

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Send(ctx, i)
			}
		}()
	}

	go func() {
		wg.Wait()
	}()

	received := 0
	timeout := time.After(2 * time.Second)
	for received < producers*perProducer {
		select {
		case <-q.Receive():
			received++
		case <-timeout:
			t.Fatalf("received only %d of %d items", received, producers*perProducer)
		}
	}
}

func TestQueueStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := NewQueue[int](ctx)
	cancel()

	select {
	case _, ok := <-q.Receive():
		if ok {
			t.Fatal("expected closed channel after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("queue did not close after context cancel")
	}
}
