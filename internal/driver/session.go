package driver

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lxzan/gws"

	"github.com/lilwiggy/orderbook-aggregator/pkg/domain"
	"github.com/lilwiggy/orderbook-aggregator/pkg/errors"
)

// Session holds the WebSocket connection lifecycle every venue adapter
// needs: the live gws.Conn, a close-once guard, a periodic ping ticker, and
// the gws.EventHandler callbacks (OnClose/OnPing/OnPong) that behave
// identically across venues. Adapters embed it anonymously, which promotes
// these methods to satisfy gws.EventHandler directly; only OnOpen and
// OnMessage, which carry venue-specific wire formats, stay adapter-local.
type Session struct {
	Venue        domain.Venue
	PingInterval time.Duration

	conn     *gws.Conn
	connMu   sync.RWMutex
	closed   atomic.Bool
	pingT    *time.Ticker
	pingDone chan struct{}
	pingMu   sync.Mutex
	errs     chan<- error
}

// DialTimeout runs dial (typically gws.NewClient bound to a handler) on its
// own goroutine and fails if it hasn't returned within timeout or ctx is
// cancelled first, whichever comes first. gws.NewClient blocks on the
// opening handshake with no deadline or ctx parameter of its own, so every
// adapter bounds it the same way rather than risking Run hanging forever on
// an unresponsive venue, or outliving a supervisor shutdown that happened
// to land mid-dial.
func DialTimeout(ctx context.Context, timeout time.Duration, dial func() (*gws.Conn, *http.Response, error)) (*gws.Conn, error) {
	type result struct {
		conn *gws.Conn
		err  error
	}
	done := make(chan result, 1)
	go func() {
		conn, _, err := dial()
		done <- result{conn, err}
	}()

	drainLate := func() {
		// The dial may still succeed after we give up on it; drain the
		// goroutine's result in the background and close the connection
		// rather than leaking it.
		go func() {
			if r := <-done; r.conn != nil {
				r.conn.WriteClose(1000, nil)
			}
		}()
	}

	select {
	case r := <-done:
		return r.conn, r.err
	case <-ctx.Done():
		drainLate()
		return nil, ctx.Err()
	case <-time.After(timeout):
		drainLate()
		return nil, fmt.Errorf("dial timed out after %s", timeout)
	}
}

// Bind stores the dialed connection, the channel OnClose reports fatal
// errors on, and starts the ping ticker.
func (s *Session) Bind(conn *gws.Conn, errs chan<- error) {
	s.connMu.Lock()
	s.conn = conn
	s.connMu.Unlock()
	s.errs = errs
	s.startPing()
}

// Serve dials addr with dial (bounded by dialTimeout via DialTimeout), binds
// the resulting connection, starts its read loop, and blocks until ctx is
// cancelled. Every adapter's Run does exactly this around a venue-specific
// gws.ClientOption, so Run itself only needs to build that option and hand
// its dial closure here.
func (s *Session) Serve(ctx context.Context, dialTimeout time.Duration, addr string, dial func() (*gws.Conn, *http.Response, error), errs chan<- error) error {
	conn, err := DialTimeout(ctx, dialTimeout, dial)
	if err != nil {
		return errors.NewBadConnectionError(string(s.Venue), addr, "dial failed", err)
	}

	s.Bind(conn, errs)
	go conn.ReadLoop()

	<-ctx.Done()
	return s.Close()
}

// Dial builds the plain-TLS gws.ClientOption every adapter dials with,
// connects handler (normally the adapter itself, embedding this Session) to
// addr, and runs Serve against it. Every adapter's Run built this same
// ClientOption and Serve call by hand, differing only in addr; Run now only
// needs to resolve addr and call Dial.
func (s *Session) Dial(ctx context.Context, handler gws.EventHandler, addr string, dialTimeout time.Duration, errs chan<- error) error {
	option := &gws.ClientOption{
		Addr:      addr,
		TlsConfig: &tls.Config{InsecureSkipVerify: false},
	}
	return s.Serve(ctx, dialTimeout, addr, func() (*gws.Conn, *http.Response, error) {
		return gws.NewClient(handler, option)
	}, errs)
}

// SendJSON marshals frame and writes it on socket, wrapping either failure
// in the venue's error taxonomy. Every adapter's OnOpen builds and sends its
// subscribe frame this same way.
func SendJSON(socket *gws.Conn, venue domain.Venue, frame any) error {
	payload, err := json.Marshal(frame)
	if err != nil {
		return errors.NewBadDataError(string(venue), "failed to encode subscribe frame", "", err)
	}
	if err := socket.WriteString(string(payload)); err != nil {
		return errors.NewBadConnectionError(string(venue), "", "failed to send subscribe frame", err)
	}
	return nil
}

func (s *Session) startPing() {
	s.pingMu.Lock()
	defer s.pingMu.Unlock()
	s.pingT = time.NewTicker(s.PingInterval)
	s.pingDone = make(chan struct{})
	ticker, done := s.pingT, s.pingDone
	go func() {
		for {
			select {
			case <-ticker.C:
				s.connMu.RLock()
				conn := s.conn
				s.connMu.RUnlock()
				if conn != nil {
					if err := conn.WritePing(nil); err != nil && !s.Closed() {
						s.Report(errors.NewBadConnectionError(string(s.Venue), "", "ping write failed", err))
					}
				}
			case <-done:
				return
			}
		}
	}()
}

// stopPing stops the ticker and signals the ping goroutine to exit.
// Ticker.Stop does not close Ticker.C, so a goroutine waiting only on it
// would block forever; pingDone is the actual exit signal.
func (s *Session) stopPing() {
	s.pingMu.Lock()
	defer s.pingMu.Unlock()
	if s.pingT != nil {
		s.pingT.Stop()
		s.pingT = nil
	}
	if s.pingDone != nil {
		close(s.pingDone)
		s.pingDone = nil
	}
}

// Deadline resets socket's read deadline to twice the ping interval. Call
// it from every gws.EventHandler callback to keep the connection alive.
func (s *Session) Deadline(socket *gws.Conn) {
	socket.SetDeadline(time.Now().Add(s.PingInterval * 2))
}

// Closed reports whether Close has already run, so OnClose can tell a
// requested close apart from an unexpected one.
func (s *Session) Closed() bool {
	return s.closed.Load()
}

// Close sends a normal close frame and stops the ping ticker. Safe to call
// more than once.
func (s *Session) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.stopPing()

	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.conn != nil {
		s.conn.WriteClose(1000, nil)
	}
	return nil
}

// Report sends err on the errs channel bound in Bind without blocking the
// caller if nobody is currently receiving.
func (s *Session) Report(err error) {
	select {
	case s.errs <- err:
	default:
	}
}

// OnClose implements gws.EventHandler. Any close that wasn't requested by
// Close() is reported as a fatal BadConnectionError.
func (s *Session) OnClose(socket *gws.Conn, err error) {
	if s.Closed() {
		return
	}
	s.Report(errors.NewBadConnectionError(string(s.Venue), "", "connection closed", err))
}

// OnPing implements gws.EventHandler.
func (s *Session) OnPing(socket *gws.Conn, payload []byte) {
	s.Deadline(socket)
	socket.WritePong(payload)
}

// OnPong implements gws.EventHandler.
func (s *Session) OnPong(socket *gws.Conn, payload []byte) {
	s.Deadline(socket)
}
