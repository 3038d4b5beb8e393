package flightsql

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDataStream yields canned chunks then io.EOF, or a configured error once
// the chunks run out.
type fakeDataStream struct {
	chunks []*FlightData
	err    error
}

func (s *fakeDataStream) Recv() (*FlightData, error) {
	if len(s.chunks) == 0 {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}
	d := s.chunks[0]
	s.chunks = s.chunks[1:]
	return d, nil
}

// ipcStreamBytes serializes one single-column int64 batch per values slice
// into an Arrow IPC stream.
func ipcStreamBytes(t *testing.T, batches ...[]int64) []byte {
	t.Helper()
	schema := arrow.NewSchema([]arrow.Field{{Name: "v", Type: arrow.PrimitiveTypes.Int64}}, nil)

	var buf bytes.Buffer
	w := ipc.NewWriter(&buf, ipc.WithSchema(schema), ipc.WithAllocator(memory.DefaultAllocator))
	for _, vals := range batches {
		bldr := array.NewRecordBuilder(memory.DefaultAllocator, schema)
		bldr.Field(0).(*array.Int64Builder).AppendValues(vals, nil)
		rec := bldr.NewRecord()
		require.NoError(t, w.Write(rec))
		rec.Release()
		bldr.Release()
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestReadTable(t *testing.T) {
	stream := ipcStreamBytes(t, []int64{1, 2, 3}, []int64{4, 5})

	// Split the stream across header and body of two chunks; only the
	// concatenation is a valid IPC stream.
	mid := len(stream) / 2
	ds := &fakeDataStream{chunks: []*FlightData{
		{DataHeader: stream[:mid/2], DataBody: stream[mid/2 : mid]},
		{DataBody: stream[mid:]},
	}}

	var gotTickets [][]byte
	tr := &fakeTransport{t: t}
	tr.doGetFn = func(ticket *Ticket) (DataStream, error) {
		gotTickets = append(gotTickets, ticket.Ticket)
		return ds, nil
	}

	fi := &FlightInfo{Endpoint: []*FlightEndpoint{
		{Location: []Location{{URI: "grpc+tcp://elsewhere:1"}}},
		{Ticket: &Ticket{Ticket: []byte("t0")}},
	}}

	c := NewClient(tr)
	tbl, err := c.ReadTable(context.Background(), fi)
	require.NoError(t, err)
	defer tbl.Release()

	assert.Equal(t, int64(5), tbl.NumRows())
	assert.Equal(t, int64(1), tbl.NumCols())
	// The ticketless endpoint is skipped, not fetched.
	assert.Equal(t, [][]byte{[]byte("t0")}, gotTickets)
}

func TestReadTableNoEndpoints(t *testing.T) {
	tr := &fakeTransport{t: t}
	c := NewClient(tr)

	_, err := c.ReadTable(context.Background(), &FlightInfo{})
	assertResultError(t, err, "no data returned from query")
	assert.Empty(t, tr.calls)
}

func TestReadTableEmptyStream(t *testing.T) {
	// Chunks arrive but carry zero bytes; that is still "no data".
	tr := &fakeTransport{t: t}
	tr.doGetFn = func(_ *Ticket) (DataStream, error) {
		return &fakeDataStream{chunks: []*FlightData{{}, {}}}, nil
	}

	fi := &FlightInfo{Endpoint: []*FlightEndpoint{
		{Ticket: &Ticket{Ticket: []byte("t0")}},
	}}

	c := NewClient(tr)
	_, err := c.ReadTable(context.Background(), fi)
	assertResultError(t, err, "no data returned from query")
}

func TestReadTicketTable(t *testing.T) {
	stream := ipcStreamBytes(t, []int64{7})
	tr := &fakeTransport{t: t}
	tr.doGetFn = func(ticket *Ticket) (DataStream, error) {
		assert.Equal(t, []byte("t9"), ticket.Ticket)
		return &fakeDataStream{chunks: []*FlightData{{DataBody: stream}}}, nil
	}

	c := NewClient(tr)
	tbl, err := c.ReadTicketTable(context.Background(), &Ticket{Ticket: []byte("t9")})
	require.NoError(t, err)
	defer tbl.Release()
	assert.Equal(t, int64(1), tbl.NumRows())
}

func TestChunkReaderOrder(t *testing.T) {
	chunkA1 := &FlightData{DataBody: []byte("a1")}
	chunkA2 := &FlightData{DataBody: []byte("a2")}
	chunkB1 := &FlightData{DataBody: []byte("b1")}

	streams := map[string]*fakeDataStream{
		"ta": {chunks: []*FlightData{chunkA1, chunkA2}},
		"tb": {chunks: []*FlightData{chunkB1}},
	}
	tr := &fakeTransport{t: t}
	tr.doGetFn = func(ticket *Ticket) (DataStream, error) {
		s, ok := streams[string(ticket.Ticket)]
		require.True(t, ok)
		return s, nil
	}

	fi := &FlightInfo{Endpoint: []*FlightEndpoint{
		{Ticket: &Ticket{Ticket: []byte("ta")}},
		{},
		{Ticket: &Ticket{Ticket: []byte("tb")}},
	}}

	c := NewClient(tr)
	rdr := c.ReadChunks(context.Background(), fi)

	// Lazy: nothing fetched before the first Next.
	assert.Empty(t, tr.calls)

	var got []*FlightData
	for rdr.Next() {
		got = append(got, rdr.Chunk())
	}
	require.NoError(t, rdr.Err())
	assert.Equal(t, []*FlightData{chunkA1, chunkA2, chunkB1}, got)

	// Exhausted readers stay exhausted.
	assert.False(t, rdr.Next())
}

func TestChunkReaderStreamError(t *testing.T) {
	boom := errors.New("stream reset")
	tr := &fakeTransport{t: t}
	tr.doGetFn = func(_ *Ticket) (DataStream, error) {
		return &fakeDataStream{
			chunks: []*FlightData{{DataBody: []byte("c1")}},
			err:    boom,
		}, nil
	}

	fi := &FlightInfo{Endpoint: []*FlightEndpoint{
		{Ticket: &Ticket{Ticket: []byte("t0")}},
	}}

	c := NewClient(tr)
	rdr := c.ReadChunks(context.Background(), fi)
	require.True(t, rdr.Next())
	assert.Equal(t, []byte("c1"), rdr.Chunk().DataBody)

	assert.False(t, rdr.Next())
	assert.Same(t, boom, rdr.Err())
	assert.False(t, rdr.Next())
}

func TestChunkReaderNoTickets(t *testing.T) {
	tr := &fakeTransport{t: t}
	c := NewClient(tr)
	rdr := c.ReadChunks(context.Background(), &FlightInfo{Endpoint: []*FlightEndpoint{{}}})
	assert.False(t, rdr.Next())
	assert.NoError(t, rdr.Err())
}
