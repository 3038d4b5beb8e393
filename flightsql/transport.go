// © Copyright 2025-2026, Qualithm - https://qualithm.dev
// SPDX-License-Identifier: Apache-2.0

package flightsql

import "context"

// CallOption is an opaque per-call option passed through to the transport
// without interpretation. Concrete transports decide which option types they
// honor; the gRPC binding accepts grpc.CallOption values.
type CallOption any

// Transport is the capability surface this package needs from the underlying
// Flight client. Connection lifecycle, authentication, flow control, and
// stream multiplexing all live behind it; this package only constructs and
// interprets the messages that travel across.
//
// The facade holds a Transport by reference rather than extending a client
// type, so any implementation (the bundled gRPC binding, a mock, a proxy)
// can serve.
type Transport interface {
	// GetFlightInfo issues a single descriptor-bearing request and returns
	// the response descriptor whose endpoints carry retrieval tickets.
	GetFlightInfo(ctx context.Context, desc *FlightDescriptor, opts ...CallOption) (*FlightInfo, error)

	// DoPut opens a write stream. The caller sends descriptor-bearing
	// messages, closes the sending side, then collects the server's control
	// messages.
	DoPut(ctx context.Context, opts ...CallOption) (PutStream, error)

	// DoAction invokes a generic action and returns its response stream.
	DoAction(ctx context.Context, action *Action, opts ...CallOption) (ResultStream, error)

	// DoGet redeems a ticket and returns the resulting data stream.
	DoGet(ctx context.Context, ticket *Ticket, opts ...CallOption) (DataStream, error)
}

// PutStream is a write stream opened by Transport.DoPut.
type PutStream interface {
	Send(*FlightData) error
	// CloseSend closes the writing side; the server may still respond.
	CloseSend() error
	// Results drains and returns every control message the server sent back.
	// It must only be called after CloseSend.
	Results() ([]*PutResult, error)
}

// ResultStream yields action results. Recv returns io.EOF when the stream is
// exhausted.
type ResultStream interface {
	Recv() (*Result, error)
}

// DataStream yields data chunks. Recv returns io.EOF when the stream is
// exhausted.
type DataStream interface {
	Recv() (*FlightData, error)
}
