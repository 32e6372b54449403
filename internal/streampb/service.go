// Package streampb defines the OrderbookAggregator gRPC service: a unary
// Check call returning the current book summary and a server-streaming
// book summary feed.
//
// There is no .proto file in this repository; the types below and the
// ServiceDesc they're registered under are hand-written to the shape
// protoc-gen-go-grpc would generate, so the service rides on a real
// google.golang.org/grpc server and transport instead of a bespoke RPC
// framing. Wire encoding is JSON (see codec.go), not protobuf, since the
// message types here are plain structs rather than generated proto.Message
// implementations.
package streampb

import (
	"context"

	"google.golang.org/grpc"
)

// Empty is sent by Check; it carries no fields.
type Empty struct{}

// Level is a single price level in a BookSummary.
type Level struct {
	Price    string `json:"price"`
	Amount   string `json:"amount"`
	Exchange string `json:"exchange"`
}

// BookSummary is the consolidated top-of-book view streamed to subscribers.
type BookSummary struct {
	Spread string  `json:"spread"`
	Bids   []Level `json:"bids"`
	Asks   []Level `json:"asks"`
}

// OrderbookAggregatorServer is the server API for the OrderbookAggregator service.
type OrderbookAggregatorServer interface {
	// Check returns the current consolidated book summary once.
	Check(context.Context, *Empty) (*BookSummary, error)
	// BookSummary streams consolidated top-of-book updates until the
	// client disconnects or the stream is cancelled.
	BookSummary(*Empty, OrderbookAggregator_BookSummaryServer) error
}

// OrderbookAggregator_BookSummaryServer is the server-side stream handle
// for BookSummary, mirroring what protoc-gen-go-grpc would generate for a
// single server-streaming RPC.
type OrderbookAggregator_BookSummaryServer interface {
	Send(*BookSummary) error
	grpc.ServerStream
}

type orderbookAggregatorBookSummaryServer struct {
	grpc.ServerStream
}

func (s *orderbookAggregatorBookSummaryServer) Send(m *BookSummary) error {
	return s.ServerStream.SendMsg(m)
}

func _OrderbookAggregator_Check_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderbookAggregatorServer).Check(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/orderbook.OrderbookAggregator/Check",
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(OrderbookAggregatorServer).Check(ctx, req.(*Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _OrderbookAggregator_BookSummary_Handler(srv any, stream grpc.ServerStream) error {
	in := new(Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(OrderbookAggregatorServer).BookSummary(in, &orderbookAggregatorBookSummaryServer{stream})
}

// ServiceDesc is the grpc.ServiceDesc for OrderbookAggregator; it's the
// registration shape protoc-gen-go-grpc emits, written out by hand here.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: "orderbook.OrderbookAggregator",
	HandlerType: (*OrderbookAggregatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Check",
			Handler:    _OrderbookAggregator_Check_Handler,
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "BookSummary",
			Handler:       _OrderbookAggregator_BookSummary_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "orderbook.proto",
}

// RegisterOrderbookAggregatorServer registers srv with s under ServiceDesc.
func RegisterOrderbookAggregatorServer(s grpc.ServiceRegistrar, srv OrderbookAggregatorServer) {
	s.RegisterService(&ServiceDesc, srv)
}
