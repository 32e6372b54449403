// Package driver defines the shared contract every venue adapter
// implements, plus the wiring-level pieces (session lifecycle, dial
// options, level decoding) they all need.
package driver

import (
	"context"

	"github.com/lilwiggy/orderbook-aggregator/pkg/domain"
)

// Adapter is a single venue's live order-book feed.
//
// Run dials the venue, subscribes to the configured symbol, and decodes
// incoming frames into domain.InputTick values pushed onto ticks. A failed
// dial is returned from Run; after a successful dial, decode and connection
// failures are reported on errs and Run keeps blocking until ctx is
// cancelled. Per this system's error policy any single adapter's fatal
// error is fatal to the whole process (the supervisor cancels ctx), so Run
// does not retry or reconnect on its own.
//
// Forward delivers an operator control line (read from standard input) to
// the venue session, for venues that support runtime resubscription. An
// adapter that has no use for control lines implements it as a no-op
// returning nil.
type Adapter interface {
	Venue() domain.Venue
	Run(ctx context.Context, ticks chan<- domain.InputTick, errs chan<- error) error
	Forward(line string) error
	Close() error

	// HealthURL is a lightweight REST endpoint used only for the
	// advisory startup health probe (see internal/circuit); it has
	// no bearing on the WS subscription itself.
	HealthURL() string
}
