// © Copyright 2025-2026, Qualithm - https://qualithm.dev
// SPDX-License-Identifier: Apache-2.0

package flightsql

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
)

// ReadTable retrieves and materializes the full result set described by a
// FlightInfo. For every endpoint carrying a ticket, the data stream's chunks
// are concatenated (header bytes then body bytes, in arrival order) and the
// full concatenation is decoded as an Arrow IPC stream. Endpoints without a
// ticket refer to external locations and are skipped.
//
// The caller owns the returned table and must Release it.
func (c *Client) ReadTable(ctx context.Context, fi *FlightInfo, opts ...CallOption) (arrow.Table, error) {
	info := CallInfo{Operation: "ReadTable", CallType: CallTypeGet}
	ctx, token := c.startCall(ctx, info)
	stats := &CallStatistics{}

	tbl, err := func() (arrow.Table, error) {
		var buf bytes.Buffer
		for _, ep := range fi.Endpoint {
			if ep.Ticket == nil {
				continue
			}
			if err := c.collectTicketBytes(ctx, &buf, ep.Ticket, stats, opts); err != nil {
				return nil, err
			}
		}
		return c.decodeTable(buf.Bytes())
	}()
	c.endCall(ctx, token, info, stats, err)
	return tbl, err
}

// ReadTicketTable retrieves and materializes the data behind a single ticket.
func (c *Client) ReadTicketTable(ctx context.Context, ticket *Ticket, opts ...CallOption) (arrow.Table, error) {
	info := CallInfo{Operation: "ReadTicketTable", CallType: CallTypeGet}
	ctx, token := c.startCall(ctx, info)
	stats := &CallStatistics{}

	tbl, err := func() (arrow.Table, error) {
		var buf bytes.Buffer
		if err := c.collectTicketBytes(ctx, &buf, ticket, stats, opts); err != nil {
			return nil, err
		}
		return c.decodeTable(buf.Bytes())
	}()
	c.endCall(ctx, token, info, stats, err)
	return tbl, err
}

// collectTicketBytes drains one ticket's data stream into buf.
func (c *Client) collectTicketBytes(ctx context.Context, buf *bytes.Buffer, ticket *Ticket, stats *CallStatistics, opts []CallOption) error {
	stream, err := c.Transport.DoGet(ctx, ticket, opts...)
	if err != nil {
		return err
	}
	for {
		d, err := stream.Recv()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		buf.Write(d.DataHeader)
		buf.Write(d.DataBody)
		stats.RecordChunk(int64(len(d.DataHeader) + len(d.DataBody)))
	}
}

// decodeTable hands the concatenated bytes to the columnar decoder. Zero
// collected bytes is the empty-result error case.
func (c *Client) decodeTable(data []byte) (arrow.Table, error) {
	if len(data) == 0 {
		return nil, resultError("no data returned from query")
	}
	rdr, err := ipc.NewReader(bytes.NewReader(data), ipc.WithAllocator(c.allocator()))
	if err != nil {
		return nil, fmt.Errorf("reading result IPC stream: %w", err)
	}
	defer rdr.Release()

	var recs []arrow.Record
	for rdr.Next() {
		rec := rdr.Record()
		rec.Retain()
		recs = append(recs, rec)
	}
	if err := rdr.Err(); err != nil && err != io.EOF {
		for _, r := range recs {
			r.Release()
		}
		return nil, fmt.Errorf("reading result batch: %w", err)
	}

	tbl := array.NewTableFromRecords(rdr.Schema(), recs)
	for _, r := range recs {
		r.Release()
	}
	return tbl, nil
}

// ChunkReader is a lazy, finite, non-restartable reader over the raw data
// chunks of a result set. Chunks preserve endpoint order and, within an
// endpoint, arrival order. Use it instead of ReadTable when a result is too
// large to materialize at once.
type ChunkReader struct {
	ctx       context.Context
	client    *Client
	endpoints []*FlightEndpoint
	opts      []CallOption

	cur   DataStream
	chunk *FlightData
	err   error
	done  bool
}

// ReadChunks returns a ChunkReader over the FlightInfo's ticket-bearing
// endpoints. No network activity happens until the first Next call.
func (c *Client) ReadChunks(ctx context.Context, fi *FlightInfo, opts ...CallOption) *ChunkReader {
	return &ChunkReader{
		ctx:       ctx,
		client:    c,
		endpoints: fi.Endpoint,
		opts:      opts,
	}
}

// Next advances to the next chunk. It returns false when the reader is
// exhausted or an error occurred; check Err afterwards.
func (r *ChunkReader) Next() bool {
	if r.done {
		return false
	}
	for {
		if r.cur == nil {
			ep := r.nextTicketEndpoint()
			if ep == nil {
				r.done = true
				return false
			}
			stream, err := r.client.Transport.DoGet(r.ctx, ep.Ticket, r.opts...)
			if err != nil {
				r.err = err
				r.done = true
				return false
			}
			r.cur = stream
		}
		d, err := r.cur.Recv()
		if err == io.EOF {
			r.cur = nil
			continue
		}
		if err != nil {
			r.err = err
			r.done = true
			return false
		}
		r.chunk = d
		return true
	}
}

// nextTicketEndpoint pops endpoints until one carries a ticket.
func (r *ChunkReader) nextTicketEndpoint() *FlightEndpoint {
	for len(r.endpoints) > 0 {
		ep := r.endpoints[0]
		r.endpoints = r.endpoints[1:]
		if ep.Ticket != nil {
			return ep
		}
	}
	return nil
}

// Chunk returns the chunk read by the last successful Next call.
func (r *ChunkReader) Chunk() *FlightData {
	return r.chunk
}

// Err returns the error that terminated iteration, if any. io.EOF is never
// surfaced.
func (r *ChunkReader) Err() error {
	return r.err
}
