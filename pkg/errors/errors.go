// Package errors provides typed errors for the order book aggregator.
// All errors support Go 1.13+ error wrapping with errors.Is and errors.As.
package errors

import "errors"

// IsRetryable returns true if the error is transient and the operation can
// be retried. Only the circuit breaker guarding a venue's health probe
// currently produces a retryable error in this system.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var circuitErr *CircuitBreakerError
	if errors.As(err, &circuitErr) {
		return circuitErr.IsRetryable()
	}

	return false
}

// Is is an alias for errors.Is for convenience.
var Is = errors.Is

// As is an alias for errors.As for convenience.
var As = errors.As

// New creates a new error with the given message.
var New = errors.New
