// © Copyright 2025-2026, Qualithm - https://qualithm.dev
// SPDX-License-Identifier: Apache-2.0

// Package grpctransport binds the flightsql.Transport capability interface to
// a gRPC connection speaking the standard arrow.flight.protocol.FlightService
// methods. It owns no connection lifecycle: the caller dials, configures, and
// closes the *grpc.ClientConn.
package grpctransport

import (
	"context"
	"io"

	"google.golang.org/grpc"

	"github.com/qualithm/arrow-flight-sql-go/flightsql"
)

// Fully qualified FlightService method names.
const (
	methodGetFlightInfo = "/arrow.flight.protocol.FlightService/GetFlightInfo"
	methodDoPut         = "/arrow.flight.protocol.FlightService/DoPut"
	methodDoAction      = "/arrow.flight.protocol.FlightService/DoAction"
	methodDoGet         = "/arrow.flight.protocol.FlightService/DoGet"
)

var (
	doPutDesc = &grpc.StreamDesc{
		StreamName:    "DoPut",
		ClientStreams: true,
		ServerStreams: true,
	}
	doActionDesc = &grpc.StreamDesc{
		StreamName:    "DoAction",
		ServerStreams: true,
	}
	doGetDesc = &grpc.StreamDesc{
		StreamName:    "DoGet",
		ServerStreams: true,
	}
)

// Transport implements flightsql.Transport over a gRPC client connection.
type Transport struct {
	conn     grpc.ClientConnInterface
	callOpts []grpc.CallOption
}

var _ flightsql.Transport = (*Transport)(nil)

// New wraps a gRPC connection. The given call options apply to every call,
// before any per-call options.
func New(conn grpc.ClientConnInterface, opts ...grpc.CallOption) *Transport {
	return &Transport{conn: conn, callOpts: opts}
}

// grpcOpts assembles the call option list: the raw codec first, then the
// transport-wide options, then any grpc.CallOption values found among the
// opaque per-call options. Non-gRPC options are skipped.
func (t *Transport) grpcOpts(opts []flightsql.CallOption) []grpc.CallOption {
	out := make([]grpc.CallOption, 0, len(t.callOpts)+len(opts)+1)
	out = append(out, grpc.ForceCodec(flightCodec{}))
	out = append(out, t.callOpts...)
	for _, o := range opts {
		if g, ok := o.(grpc.CallOption); ok {
			out = append(out, g)
		}
	}
	return out
}

func (t *Transport) GetFlightInfo(ctx context.Context, desc *flightsql.FlightDescriptor, opts ...flightsql.CallOption) (*flightsql.FlightInfo, error) {
	out := &flightsql.FlightInfo{}
	if err := t.conn.Invoke(ctx, methodGetFlightInfo, desc, out, t.grpcOpts(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (t *Transport) DoPut(ctx context.Context, opts ...flightsql.CallOption) (flightsql.PutStream, error) {
	s, err := t.conn.NewStream(ctx, doPutDesc, methodDoPut, t.grpcOpts(opts)...)
	if err != nil {
		return nil, err
	}
	return &putStream{stream: s}, nil
}

func (t *Transport) DoAction(ctx context.Context, action *flightsql.Action, opts ...flightsql.CallOption) (flightsql.ResultStream, error) {
	s, err := t.conn.NewStream(ctx, doActionDesc, methodDoAction, t.grpcOpts(opts)...)
	if err != nil {
		return nil, err
	}
	if err := s.SendMsg(action); err != nil {
		return nil, err
	}
	if err := s.CloseSend(); err != nil {
		return nil, err
	}
	return &resultStream{stream: s}, nil
}

func (t *Transport) DoGet(ctx context.Context, ticket *flightsql.Ticket, opts ...flightsql.CallOption) (flightsql.DataStream, error) {
	s, err := t.conn.NewStream(ctx, doGetDesc, methodDoGet, t.grpcOpts(opts)...)
	if err != nil {
		return nil, err
	}
	if err := s.SendMsg(ticket); err != nil {
		return nil, err
	}
	if err := s.CloseSend(); err != nil {
		return nil, err
	}
	return &dataStream{stream: s}, nil
}

type putStream struct {
	stream grpc.ClientStream
}

func (p *putStream) Send(d *flightsql.FlightData) error {
	return p.stream.SendMsg(d)
}

func (p *putStream) CloseSend() error {
	return p.stream.CloseSend()
}

func (p *putStream) Results() ([]*flightsql.PutResult, error) {
	var results []*flightsql.PutResult
	for {
		r := &flightsql.PutResult{}
		err := p.stream.RecvMsg(r)
		if err == io.EOF {
			return results, nil
		}
		if err != nil {
			return results, err
		}
		results = append(results, r)
	}
}

type resultStream struct {
	stream grpc.ClientStream
}

func (r *resultStream) Recv() (*flightsql.Result, error) {
	out := &flightsql.Result{}
	if err := r.stream.RecvMsg(out); err != nil {
		return nil, err
	}
	return out, nil
}

type dataStream struct {
	stream grpc.ClientStream
}

func (d *dataStream) Recv() (*flightsql.FlightData, error) {
	out := &flightsql.FlightData{}
	if err := d.stream.RecvMsg(out); err != nil {
		return nil, err
	}
	return out, nil
}
