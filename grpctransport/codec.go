// © Copyright 2025-2026, Qualithm - https://qualithm.dev
// SPDX-License-Identifier: Apache-2.0

package grpctransport

import (
	"encoding"
	"fmt"
)

// CodecName identifies the raw Flight codec in gRPC content subtypes.
const CodecName = "flight-raw"

// flightCodec marshals this module's message types directly via their binary
// codecs, bypassing generated protobuf types entirely. The bytes on the wire
// are identical to what a generated FlightService stub would produce.
type flightCodec struct{}

func (flightCodec) Name() string { return CodecName }

func (flightCodec) Marshal(v any) ([]byte, error) {
	m, ok := v.(encoding.BinaryMarshaler)
	if !ok {
		return nil, fmt.Errorf("grpctransport: cannot marshal %T", v)
	}
	return m.MarshalBinary()
}

func (flightCodec) Unmarshal(data []byte, v any) error {
	m, ok := v.(encoding.BinaryUnmarshaler)
	if !ok {
		return fmt.Errorf("grpctransport: cannot unmarshal into %T", v)
	}
	return m.UnmarshalBinary(data)
}
