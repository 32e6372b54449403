package broadcast

import (
	"testing"
	"time"
)

func TestSlotLoadReturnsInitialValue(t *testing.T) {
	s := NewSlot(42)
	v, _ := s.Load()
	if v != 42 {
		t.Fatalf("Load() = %d, want 42", v)
	}
}

func TestSlotPublishWakesWaiter(t *testing.T) {
	s := NewSlot(0)
	_, changed := s.Load()

	done := make(chan int, 1)
	go func() {
		<-changed
		v, _ := s.Load()
		done <- v
	}()

	s.Publish(7)

	select {
	case v := <-done:
		if v != 7 {
			t.Fatalf("woken waiter saw %d, want 7", v)
		}
	case <-time.After(time.Second):
		t.Fatal("waiter was never woken")
	}
}

func TestSubscribeEmitsCurrentThenUpdates(t *testing.T) {
	s := NewSlot(1)
	done := make(chan struct{})
	var seen []int

	go func() {
		_ = Subscribe(done, s, func(v int) error {
			seen = append(seen, v)
			if len(seen) == 3 {
				close(done)
			}
			return nil
		})
	}()

	time.Sleep(10 * time.Millisecond)
	s.Publish(2)
	time.Sleep(10 * time.Millisecond)
	s.Publish(3)

	<-done
	if len(seen) != 3 || seen[0] != 1 || seen[1] != 2 || seen[2] != 3 {
		t.Fatalf("seen = %v, want [1 2 3]", seen)
	}
}
