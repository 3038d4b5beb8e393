// © Copyright 2025-2026, Qualithm - https://qualithm.dev
// SPDX-License-Identifier: Apache-2.0

package flightsql

import "fmt"

// Protobuf wire types used by the Any envelope. Only these four appear in
// practice; group markers are rejected.
const (
	wireVarint  = 0
	wireFixed64 = 1
	wireBytes   = 2
	wireFixed32 = 5
)

// maxUvarintLen is the longest encoding of a 64-bit varint. Reads past this
// many bytes never terminate a valid value and are rejected.
const maxUvarintLen = 10

// uvarintLen returns the number of bytes the varint encoding of v occupies.
func uvarintLen(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// putUvarint writes v at buf[offset:] using base-128 varint encoding and
// returns the offset past the last byte written. The caller must have sized
// buf using uvarintLen.
func putUvarint(buf []byte, offset int, v uint64) int {
	for v >= 0x80 {
		buf[offset] = byte(v) | 0x80
		v >>= 7
		offset++
	}
	buf[offset] = byte(v)
	return offset + 1
}

// readUvarint decodes a varint starting at buf[offset]. It returns the value
// and the number of bytes consumed. The read is bounded: a varint that runs
// past the end of buf or past maxUvarintLen bytes is a decode error rather
// than undefined behavior.
func readUvarint(buf []byte, offset int) (uint64, int, error) {
	var v uint64
	var shift uint
	for i := 0; ; i++ {
		if i >= maxUvarintLen {
			return 0, 0, &ProtocolError{Kind: KindResult, Message: "varint exceeds 10 bytes"}
		}
		if offset+i >= len(buf) {
			return 0, 0, &ProtocolError{Kind: KindResult, Message: "truncated varint"}
		}
		b := buf[offset+i]
		v |= uint64(b&0x7f) << shift
		if b < 0x80 {
			return v, i + 1, nil
		}
		shift += 7
	}
}

// PackAny wraps a type URL and an opaque payload into a serialized
// google.protobuf.Any: field 1 (tag 0x0A) carries the UTF-8 type URL, field 2
// (tag 0x12) carries the payload verbatim. Any standard protobuf decoder can
// read the result; no other fields are emitted.
func PackAny(typeURL string, payload []byte) []byte {
	n := 1 + uvarintLen(uint64(len(typeURL))) + len(typeURL) +
		1 + uvarintLen(uint64(len(payload))) + len(payload)
	buf := make([]byte, n)

	offset := 0
	buf[offset] = 0x0A // field 1, length-delimited
	offset = putUvarint(buf, offset+1, uint64(len(typeURL)))
	offset += copy(buf[offset:], typeURL)

	buf[offset] = 0x12 // field 2, length-delimited
	offset = putUvarint(buf, offset+1, uint64(len(payload)))
	copy(buf[offset:], payload)
	return buf
}

// UnpackAny extracts the payload (field 2) from a serialized Any. Unknown
// fields of the varint, fixed, and length-delimited wire types are skipped by
// their declared length so that future envelope revisions do not corrupt the
// scan. The deprecated group wire types carry no declared length and are
// rejected as a decode error. A missing field 2 yields an empty payload, not
// an error; callers decide whether that is acceptable.
func UnpackAny(data []byte) ([]byte, error) {
	offset := 0
	for offset < len(data) {
		tag, n, err := readUvarint(data, offset)
		if err != nil {
			return nil, err
		}
		offset += n
		fieldNum := tag >> 3

		switch tag & 0x7 {
		case wireVarint:
			_, n, err := readUvarint(data, offset)
			if err != nil {
				return nil, err
			}
			offset += n
		case wireFixed64:
			offset += 8
		case wireFixed32:
			offset += 4
		case wireBytes:
			length, n, err := readUvarint(data, offset)
			if err != nil {
				return nil, err
			}
			offset += n
			if uint64(len(data)-offset) < length {
				return nil, &ProtocolError{Kind: KindResult, Message: "truncated length-delimited field"}
			}
			if fieldNum == 2 {
				return data[offset : offset+int(length)], nil
			}
			offset += int(length)
		default:
			return nil, &ProtocolError{
				Kind:    KindResult,
				Message: fmt.Sprintf("unsupported wire type %d in envelope", tag&0x7),
			}
		}
	}
	return nil, nil
}
