// Package ratelimit provides token-bucket rate limiting for the operator
// debug control channel (standard input lines forwarded to a venue).
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// DefaultLinesPerSecond is the default sustained rate at which stdin
// control lines are forwarded to the nominated venue.
const DefaultLinesPerSecond = 5

// ControlLimiter rate-limits the forwarding of standard-input control lines
// to a venue adapter, so a pasted block of text cannot flood the upstream
// session with subscribe/unsubscribe churn.
//
// Key features:
//   - Token bucket via golang.org/x/time/rate
//   - Thread-safe for concurrent use
type ControlLimiter struct {
	limiter *rate.Limiter
}

// NewControlLimiter creates a new control-line limiter.
// linesPerSecond is the sustained rate and also the burst size: up to
// linesPerSecond lines are allowed immediately. linesPerSecond <= 0 falls
// back to DefaultLinesPerSecond.
func NewControlLimiter(linesPerSecond int) *ControlLimiter {
	if linesPerSecond <= 0 {
		linesPerSecond = DefaultLinesPerSecond
	}
	return &ControlLimiter{
		limiter: rate.NewLimiter(rate.Limit(linesPerSecond), linesPerSecond),
	}
}

// Wait blocks until a line may be forwarded or the context is cancelled.
func (l *ControlLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
