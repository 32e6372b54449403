package errors

import (
	"errors"
	"testing"
	"time"
)

func TestBadConnectionErrorMessage(t *testing.T) {
	err := NewBadConnectionError("kraken", "wss://ws.kraken.com", "unexpected close frame", nil)
	want := "[kraken] bad connection to wss://ws.kraken.com: unexpected close frame"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestBadDataErrorUnwrap(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := NewBadDataError("coinbase", "could not decode l2update", `{"type":"l2update"`, cause)

	if !errors.Is(err, cause) {
		t.Fatal("errors.Is should see through Unwrap to the cause")
	}
}

func TestCircuitBreakerErrorIsRetryable(t *testing.T) {
	open := NewCircuitBreakerError("binance", "open", "too many consecutive failures", 5, 30*time.Second)
	if !IsRetryable(open) {
		t.Fatal("open circuit breaker with a positive reset window should be retryable")
	}

	closed := NewCircuitBreakerError("binance", "closed", "reset", 0, 0)
	if IsRetryable(closed) {
		t.Fatal("a closed circuit breaker error should not report retryable")
	}
}
