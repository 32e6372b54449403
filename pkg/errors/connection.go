// Package errors provides typed errors for the order book aggregator.
package errors

import (
	"fmt"
	"time"
)

// BadConnectionError represents an upstream transport failure: a handshake
// failure, an unexpected close frame, or a dropped socket.
type BadConnectionError struct {
	// Venue is the name of the venue whose transport failed
	Venue string `json:"venue"`

	// Endpoint is the endpoint that failed
	Endpoint string `json:"endpoint,omitempty"`

	// Message is a human-readable error message
	Message string `json:"message"`

	// Underlying error that caused this error
	cause error `json:"-"`
}

// Error implements the error interface.
func (e *BadConnectionError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("[%s] bad connection to %s: %s", e.Venue, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("[%s] bad connection: %s", e.Venue, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *BadConnectionError) Unwrap() error {
	return e.cause
}

// NewBadConnectionError creates a new BadConnectionError.
func NewBadConnectionError(venue, endpoint, message string, cause error) *BadConnectionError {
	return &BadConnectionError{Venue: venue, Endpoint: endpoint, Message: message, cause: cause}
}

// BadDataError represents a payload that did not decode against a venue's
// documented schema.
type BadDataError struct {
	// Venue is the name of the venue that sent the payload
	Venue string `json:"venue"`

	// Message is a human-readable error message
	Message string `json:"message"`

	// Payload is a bounded excerpt of the offending payload, for diagnostics
	Payload string `json:"payload,omitempty"`

	// Underlying error that caused this error
	cause error `json:"-"`
}

// Error implements the error interface.
func (e *BadDataError) Error() string {
	return fmt.Sprintf("[%s] bad data: %s", e.Venue, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *BadDataError) Unwrap() error {
	return e.cause
}

// NewBadDataError creates a new BadDataError.
func NewBadDataError(venue, message, payload string, cause error) *BadDataError {
	return &BadDataError{Venue: venue, Message: message, Payload: payload, cause: cause}
}

// IoError represents a local I/O failure: standard input or the log sink.
type IoError struct {
	// Source names the local I/O source that failed (e.g. "stdin")
	Source string `json:"source"`

	// Message is a human-readable error message
	Message string `json:"message"`

	// Underlying error that caused this error
	cause error `json:"-"`
}

// Error implements the error interface.
func (e *IoError) Error() string {
	return fmt.Sprintf("[%s] io error: %s", e.Source, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *IoError) Unwrap() error {
	return e.cause
}

// NewIoError creates a new IoError.
func NewIoError(source, message string, cause error) *IoError {
	return &IoError{Source: source, Message: message, cause: cause}
}

// ServerError represents a failure of the downstream stream service's
// transport layer to bind or serve.
type ServerError struct {
	// Message is a human-readable error message
	Message string `json:"message"`

	// Underlying error that caused this error
	cause error `json:"-"`
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: %s", e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *ServerError) Unwrap() error {
	return e.cause
}

// NewServerError creates a new ServerError.
func NewServerError(message string, cause error) *ServerError {
	return &ServerError{Message: message, cause: cause}
}

// BadAddrError represents an invalid listen address derived from the port
// argument.
type BadAddrError struct {
	// Addr is the invalid address
	Addr string `json:"addr"`

	// Message is a human-readable error message
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *BadAddrError) Error() string {
	return fmt.Sprintf("bad listen address %q: %s", e.Addr, e.Message)
}

// NewBadAddrError creates a new BadAddrError.
func NewBadAddrError(addr, message string) *BadAddrError {
	return &BadAddrError{Addr: addr, Message: message}
}

// CircuitBreakerError represents a circuit breaker open error.
type CircuitBreakerError struct {
	// Venue is the name of the venue
	Venue string `json:"venue"`

	// State is the current state of the circuit breaker
	State string `json:"state"`

	// Message is a human-readable error message
	Message string `json:"message"`

	// Failures is the number of consecutive failures
	Failures int `json:"failures"`

	// LastFailure is the time of the last failure
	LastFailure time.Time `json:"last_failure"`

	// ResetAfter is the time until the circuit breaker resets
	ResetAfter time.Duration `json:"reset_after"`
}

// Error implements the error interface.
func (e *CircuitBreakerError) Error() string {
	return fmt.Sprintf("[%s] circuit breaker %s: %s (failures: %d, reset after: %v)",
		e.Venue, e.State, e.Message, e.Failures, e.ResetAfter)
}

// IsRetryable returns true if the circuit breaker will reset and allow retries.
func (e *CircuitBreakerError) IsRetryable() bool {
	return e.ResetAfter > 0
}

// NewCircuitBreakerError creates a new CircuitBreakerError.
func NewCircuitBreakerError(venue, state, message string, failures int, resetAfter time.Duration) *CircuitBreakerError {
	return &CircuitBreakerError{
		Venue:       venue,
		State:       state,
		Message:     message,
		Failures:    failures,
		ResetAfter:  resetAfter,
		LastFailure: time.Now(),
	}
}
