package grpctransport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qualithm/arrow-flight-sql-go/flightsql"
)

func TestFlightCodecRoundTrip(t *testing.T) {
	in := &flightsql.FlightData{
		DataHeader: []byte{0x01},
		DataBody:   []byte{0x02, 0x03},
	}
	data, err := flightCodec{}.Marshal(in)
	require.NoError(t, err)

	out := &flightsql.FlightData{}
	require.NoError(t, flightCodec{}.Unmarshal(data, out))
	assert.Equal(t, in.DataHeader, out.DataHeader)
	assert.Equal(t, in.DataBody, out.DataBody)
}

func TestFlightCodecRejectsForeignTypes(t *testing.T) {
	_, err := flightCodec{}.Marshal(struct{}{})
	require.Error(t, err)

	err = flightCodec{}.Unmarshal([]byte{0x00}, struct{}{})
	require.Error(t, err)
}
