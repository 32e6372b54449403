// Package streamservice implements the OrderbookAggregator gRPC server,
// fanning out consolidated book summaries from a broadcast.Slot to any
// number of streaming subscribers.
package streamservice

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lilwiggy/orderbook-aggregator/internal/broadcast"
	"github.com/lilwiggy/orderbook-aggregator/pkg/domain"
	"github.com/lilwiggy/orderbook-aggregator/internal/streampb"
)

// Server implements streampb.OrderbookAggregatorServer over a
// broadcast.Slot of domain.OutputTick. It never mutates the slot; the
// supervisor's dispatch loop is the sole publisher.
type Server struct {
	slot *broadcast.Slot[domain.OutputTick]
}

// New creates a Server reading from the given slot.
func New(slot *broadcast.Slot[domain.OutputTick]) *Server {
	return &Server{slot: slot}
}

// Check returns the currently published consolidated book summary, once.
func (s *Server) Check(ctx context.Context, _ *streampb.Empty) (*streampb.BookSummary, error) {
	tick, _ := s.slot.Load()
	return toProto(tick), nil
}

// BookSummary streams the consolidated top-of-book to stream, starting
// with whatever is currently published, and sends again on every update
// until the client disconnects.
func (s *Server) BookSummary(_ *streampb.Empty, stream streampb.OrderbookAggregator_BookSummaryServer) error {
	subscriberID := uuid.NewString()
	log.Info().Str("subscriber", subscriberID).Msg("book summary subscriber connected")
	defer log.Info().Str("subscriber", subscriberID).Msg("book summary subscriber disconnected")

	ctx := stream.Context()
	return broadcast.Subscribe(ctx.Done(), s.slot, func(tick domain.OutputTick) error {
		return stream.Send(toProto(tick))
	})
}

func toProto(tick domain.OutputTick) *streampb.BookSummary {
	return &streampb.BookSummary{
		Spread: domain.String(tick.Spread),
		Bids:   toProtoLevels(tick.Bids),
		Asks:   toProtoLevels(tick.Asks),
	}
}

func toProtoLevels(levels []domain.Level) []streampb.Level {
	out := make([]streampb.Level, 0, len(levels))
	for _, l := range levels {
		out = append(out, streampb.Level{
			Price:    domain.String(l.Price),
			Amount:   domain.String(l.Amount),
			Exchange: string(l.Venue),
		})
	}
	return out
}
