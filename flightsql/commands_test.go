package flightsql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

// unpackTypeURL extracts field 1 from a packed Any for assertions.
func unpackTypeURL(t *testing.T, env []byte) string {
	t.Helper()
	for len(env) > 0 {
		num, typ, n := protowire.ConsumeTag(env)
		require.GreaterOrEqual(t, n, 0)
		env = env[n:]
		if num == 1 && typ == protowire.BytesType {
			v, n := protowire.ConsumeBytes(env)
			require.GreaterOrEqual(t, n, 0)
			return string(v)
		}
		n = protowire.ConsumeFieldValue(num, typ, env)
		require.GreaterOrEqual(t, n, 0)
		env = env[n:]
	}
	return ""
}

func TestCommandStatementQueryRoundTrip(t *testing.T) {
	in := &CommandStatementQuery{Query: "SELECT * FROM t", TransactionID: []byte("txn-1")}
	data, err := in.MarshalBinary()
	require.NoError(t, err)

	var out CommandStatementQuery
	require.NoError(t, out.UnmarshalBinary(data))
	assert.Equal(t, in.Query, out.Query)
	assert.Equal(t, in.TransactionID, out.TransactionID)
}

func TestCommandGetTablesRoundTrip(t *testing.T) {
	catalog := "main"
	pattern := "pub%"
	in := &CommandGetTables{
		Catalog:                &catalog,
		TableNameFilterPattern: &pattern,
		TableTypes:             []string{"TABLE", "VIEW"},
		IncludeSchema:          true,
	}
	data, err := in.MarshalBinary()
	require.NoError(t, err)

	var out CommandGetTables
	require.NoError(t, out.UnmarshalBinary(data))
	require.NotNil(t, out.Catalog)
	assert.Equal(t, "main", *out.Catalog)
	assert.Nil(t, out.DbSchemaFilterPattern)
	require.NotNil(t, out.TableNameFilterPattern)
	assert.Equal(t, "pub%", *out.TableNameFilterPattern)
	assert.Equal(t, []string{"TABLE", "VIEW"}, out.TableTypes)
	assert.True(t, out.IncludeSchema)
}

func TestCommandGetSqlInfoPacked(t *testing.T) {
	in := &CommandGetSqlInfo{Info: []uint32{0, 1, 500, 1<<32 - 1}}
	data, err := in.MarshalBinary()
	require.NoError(t, err)

	var out CommandGetSqlInfo
	require.NoError(t, out.UnmarshalBinary(data))
	assert.Equal(t, in.Info, out.Info)
}

func TestCommandGetCrossReferenceRoundTrip(t *testing.T) {
	pkSchema := "s1"
	in := &CommandGetCrossReference{
		PkDbSchema: &pkSchema,
		PkTable:    "orders",
		FkTable:    "order_items",
	}
	data, err := in.MarshalBinary()
	require.NoError(t, err)

	var out CommandGetCrossReference
	require.NoError(t, out.UnmarshalBinary(data))
	assert.Nil(t, out.PkCatalog)
	require.NotNil(t, out.PkDbSchema)
	assert.Equal(t, "s1", *out.PkDbSchema)
	assert.Equal(t, "orders", out.PkTable)
	assert.Equal(t, "order_items", out.FkTable)
}

func TestActionCreatePreparedStatementResultRoundTrip(t *testing.T) {
	in := &ActionCreatePreparedStatementResult{
		PreparedStatementHandle: []byte("h"),
		DatasetSchema:           []byte{0x01},
	}
	data, err := in.MarshalBinary()
	require.NoError(t, err)

	var out ActionCreatePreparedStatementResult
	require.NoError(t, out.UnmarshalBinary(data))
	assert.Equal(t, []byte("h"), out.PreparedStatementHandle)
	assert.Equal(t, []byte{0x01}, out.DatasetSchema)
	assert.Nil(t, out.ParameterSchema)
}

func TestDoPutUpdateResultNegativeCount(t *testing.T) {
	// -1 is the "count unknown" sentinel and must survive the varint.
	in := &DoPutUpdateResult{RecordCount: -1}
	data, err := in.MarshalBinary()
	require.NoError(t, err)

	var out DoPutUpdateResult
	require.NoError(t, out.UnmarshalBinary(data))
	assert.Equal(t, int64(-1), out.RecordCount)
}

func TestActionEndTransactionRequestRoundTrip(t *testing.T) {
	in := &ActionEndTransactionRequest{TransactionID: []byte("t1"), Action: EndTransactionRollback}
	data, err := in.MarshalBinary()
	require.NoError(t, err)

	var out ActionEndTransactionRequest
	require.NoError(t, out.UnmarshalBinary(data))
	assert.Equal(t, []byte("t1"), out.TransactionID)
	assert.Equal(t, EndTransactionRollback, out.Action)
}

func TestCommandDecodeToleratesUnknownFields(t *testing.T) {
	in := &CommandStatementQuery{Query: "SELECT 1"}
	data, err := in.MarshalBinary()
	require.NoError(t, err)

	// Append a future field the codec does not know.
	data = protowire.AppendTag(data, 9, protowire.VarintType)
	data = protowire.AppendVarint(data, 77)

	var out CommandStatementQuery
	require.NoError(t, out.UnmarshalBinary(data))
	assert.Equal(t, "SELECT 1", out.Query)
}

func TestCommandDescriptor(t *testing.T) {
	cmd := &CommandStatementQuery{Query: "SELECT 1"}
	desc, err := commandDescriptor("CommandStatementQuery", cmd)
	require.NoError(t, err)
	assert.Equal(t, DescriptorCmd, desc.Type)

	assert.Equal(t,
		"type.googleapis.com/arrow.flight.protocol.sql.CommandStatementQuery",
		unpackTypeURL(t, desc.Cmd))

	payload, err := UnpackAny(desc.Cmd)
	require.NoError(t, err)
	var out CommandStatementQuery
	require.NoError(t, out.UnmarshalBinary(payload))
	assert.Equal(t, "SELECT 1", out.Query)
}

func TestFlightInfoRoundTrip(t *testing.T) {
	in := &FlightInfo{
		Schema: []byte{0xAA},
		Endpoint: []*FlightEndpoint{
			{Ticket: &Ticket{Ticket: []byte("t0")}, Location: []Location{{URI: "grpc+tcp://a:1"}}},
			{},
		},
		TotalRecords: 10,
		TotalBytes:   -1,
		Ordered:      true,
	}
	data, err := in.MarshalBinary()
	require.NoError(t, err)

	var out FlightInfo
	require.NoError(t, out.UnmarshalBinary(data))
	assert.Equal(t, []byte{0xAA}, out.Schema)
	require.Len(t, out.Endpoint, 2)
	require.NotNil(t, out.Endpoint[0].Ticket)
	assert.Equal(t, []byte("t0"), out.Endpoint[0].Ticket.Ticket)
	require.Len(t, out.Endpoint[0].Location, 1)
	assert.Equal(t, "grpc+tcp://a:1", out.Endpoint[0].Location[0].URI)
	assert.Nil(t, out.Endpoint[1].Ticket)
	assert.Equal(t, int64(10), out.TotalRecords)
	assert.Equal(t, int64(-1), out.TotalBytes)
	assert.True(t, out.Ordered)
}

func TestFlightDataRoundTrip(t *testing.T) {
	in := &FlightData{
		FlightDescriptor: &FlightDescriptor{Type: DescriptorCmd, Cmd: []byte{0x01}},
		DataHeader:       []byte{0x02},
		AppMetadata:      []byte{0x03},
		DataBody:         []byte{0x04, 0x05},
	}
	data, err := in.MarshalBinary()
	require.NoError(t, err)

	var out FlightData
	require.NoError(t, out.UnmarshalBinary(data))
	require.NotNil(t, out.FlightDescriptor)
	assert.Equal(t, DescriptorCmd, out.FlightDescriptor.Type)
	assert.Equal(t, []byte{0x02}, out.DataHeader)
	assert.Equal(t, []byte{0x03}, out.AppMetadata)
	assert.Equal(t, []byte{0x04, 0x05}, out.DataBody)
}
