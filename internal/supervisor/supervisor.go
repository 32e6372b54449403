// Package supervisor runs the venue adapters, folds their ticks through
// the aggregator, publishes the result, and owns the process's single
// cooperative wait loop: adapter ticks, adapter errors, and operator
// stdin control lines are all serviced from one select so that none of
// them can starve the others.
package supervisor

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lilwiggy/orderbook-aggregator/internal/aggregator"
	"github.com/lilwiggy/orderbook-aggregator/internal/broadcast"
	"github.com/lilwiggy/orderbook-aggregator/internal/circuit"
	"github.com/lilwiggy/orderbook-aggregator/internal/driver"
	"github.com/lilwiggy/orderbook-aggregator/internal/ingress"
	"github.com/lilwiggy/orderbook-aggregator/internal/ratelimit"
	"github.com/lilwiggy/orderbook-aggregator/pkg/domain"
)

// Supervisor owns the adapters, the aggregator, and the published output
// slot for a single symbol.
type Supervisor struct {
	adapters     []driver.Adapter
	agg          *aggregator.Aggregator
	slot         *broadcast.Slot[domain.OutputTick]
	controlVenue domain.Venue
	limiter      *ratelimit.ControlLimiter
	disabled     map[domain.Venue]bool
}

// New creates a Supervisor over the given adapters. controlVenue names
// which adapter receives stdin control lines that don't name a venue of
// their own. disabled lists venues whose session still connects and is
// drained but whose ticks are dropped before reaching the aggregator.
func New(adapters []driver.Adapter, controlVenue domain.Venue, linesPerSecond int, disabled ...domain.Venue) *Supervisor {
	venues := make([]domain.Venue, 0, len(adapters))
	for _, a := range adapters {
		venues = append(venues, a.Venue())
	}
	agg := aggregator.New(venues...)

	disabledSet := make(map[domain.Venue]bool, len(disabled))
	for _, v := range disabled {
		disabledSet[v] = true
	}

	return &Supervisor{
		adapters:     adapters,
		agg:          agg,
		slot:         broadcast.NewSlot(agg.Snapshot()),
		controlVenue: controlVenue,
		limiter:      ratelimit.NewControlLimiter(linesPerSecond),
		disabled:     disabledSet,
	}
}

// Slot returns the published output slot, for wiring into the stream service.
func (s *Supervisor) Slot() *broadcast.Slot[domain.OutputTick] {
	return s.slot
}

// Run starts every adapter and services the dispatch loop until ctx is
// cancelled, stdin reaches EOF or a "/exit" line, or any adapter reports a
// fatal error. Any single adapter's fatal error ends the whole loop: the
// process does not continue serving a partial venue set.
func (s *Supervisor) Run(ctx context.Context, stdin io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ticks := make(chan domain.InputTick)
	errs := make(chan error, len(s.adapters))
	lines := s.readLines(ctx, stdin)
	queue := ingress.NewQueue[domain.InputTick](ctx)

	for _, a := range s.adapters {
		a := a
		go s.probeHealth(a)
		go func() {
			if err := a.Run(ctx, ticks, errs); err != nil {
				select {
				case errs <- err:
				default:
				}
			}
		}()
	}

	go func() {
		for {
			select {
			case t := <-ticks:
				queue.Send(ctx, t)
			case <-ctx.Done():
				return
			}
		}
	}()

	defer s.closeAll()

	for {
		select {
		case <-ctx.Done():
			return nil

		case line, ok := <-lines:
			if !ok {
				log.Info().Msg("stdin closed, shutting down")
				return nil
			}
			if s.handleControlLine(ctx, line) {
				log.Info().Msg("received /exit control line, shutting down")
				return nil
			}

		case tick, ok := <-queue.Receive():
			if !ok {
				return nil
			}
			if s.disabled[tick.Venue] {
				continue
			}
			out := s.agg.Apply(tick)
			s.slot.Publish(out)

		case err := <-errs:
			log.Error().Err(err).Msg("adapter reported fatal error, shutting down")
			return err
		}
	}
}

// handleControlLine forwards a single stdin line to the venue it names
// (or the supervisor's default control venue). It reports true when the
// line is the "/exit" sentinel, telling the caller to stop the dispatch
// loop.
func (s *Supervisor) handleControlLine(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if line == "/exit" {
		return true
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return false
	}

	venue, text := splitControlLine(line, s.controlVenue)
	for _, a := range s.adapters {
		if a.Venue() != venue {
			continue
		}
		if err := a.Forward(text); err != nil {
			log.Warn().Err(err).Str("venue", string(venue)).Msg("failed to forward control line")
		}
		return false
	}
	return false
}

// splitControlLine accepts "<venue>: <text>" or a bare line, which is
// forwarded to defaultVenue.
func splitControlLine(line string, defaultVenue domain.Venue) (domain.Venue, string) {
	if venue, text, ok := strings.Cut(line, ":"); ok {
		v := domain.Venue(strings.TrimSpace(venue))
		if v.IsValid() {
			return v, strings.TrimSpace(text)
		}
	}
	return defaultVenue, line
}

// readLines streams stdin lines on a channel, closing it on EOF, read
// error, or ctx cancellation.
func (s *Supervisor) readLines(ctx context.Context, stdin io.Reader) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(stdin)
		for scanner.Scan() {
			select {
			case out <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// probeHealth runs a single circuit-breaker-guarded REST reachability
// check for a venue. Run starts it on its own goroutine alongside the
// adapter's WS subscription, not ahead of it. This is advisory only: a
// failed or skipped probe never stops Run from dialing the WS endpoint,
// it only gets logged.
func (s *Supervisor) probeHealth(a driver.Adapter) {
	url := a.HealthURL()
	if url == "" {
		return
	}

	breaker := circuit.NewBreaker(string(a.Venue()), circuit.DefaultConfig())
	client := &http.Client{Timeout: 5 * time.Second}

	err := breaker.Execute(func() error {
		resp, err := client.Get(url)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Str("venue", string(a.Venue())).Msg("venue health probe failed")
	}
}

func (s *Supervisor) closeAll() {
	for _, a := range s.adapters {
		if err := a.Close(); err != nil {
			log.Warn().Err(err).Str("venue", string(a.Venue())).Msg("error closing adapter")
		}
	}
}
