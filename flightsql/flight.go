// © Copyright 2025-2026, Qualithm - https://qualithm.dev
// SPDX-License-Identifier: Apache-2.0

package flightsql

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// DescriptorType discriminates the two FlightDescriptor addressing modes.
type DescriptorType int32

const (
	DescriptorUnknown DescriptorType = 0
	DescriptorPath    DescriptorType = 1
	DescriptorCmd     DescriptorType = 2
)

// FlightDescriptor names a request to the transport. Command descriptors
// built by this package always use DescriptorCmd with a packed Any envelope
// in Cmd.
type FlightDescriptor struct {
	Type DescriptorType
	Cmd  []byte
	Path []string
}

func (d *FlightDescriptor) MarshalBinary() ([]byte, error) {
	var b []byte
	if d.Type != DescriptorUnknown {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(d.Type))
	}
	if len(d.Cmd) > 0 {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, d.Cmd)
	}
	for _, p := range d.Path {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendString(b, p)
	}
	return b, nil
}

func (d *FlightDescriptor) UnmarshalBinary(data []byte) error {
	*d = FlightDescriptor{}
	return eachField(data, func(num protowire.Number, typ protowire.Type, data []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			d.Type = DescriptorType(v)
			return n, nil
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			d.Cmd = cloneBytes(v)
			return n, nil
		case num == 3 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			d.Path = append(d.Path, string(v))
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, data), nil
	})
}

// Ticket is an opaque token identifying one retrievable portion of a result
// set. It is issued by the server inside a FlightEndpoint and redeemed via
// Transport.DoGet.
type Ticket struct {
	Ticket []byte
}

func (t *Ticket) MarshalBinary() ([]byte, error) {
	var b []byte
	if len(t.Ticket) > 0 {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, t.Ticket)
	}
	return b, nil
}

func (t *Ticket) UnmarshalBinary(data []byte) error {
	*t = Ticket{}
	return eachField(data, func(num protowire.Number, typ protowire.Type, data []byte) (int, error) {
		if num == 1 && typ == protowire.BytesType {
			v, n := protowire.ConsumeBytes(data)
			t.Ticket = cloneBytes(v)
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, data), nil
	})
}

// Location is a URI at which an endpoint's data may be retrieved. Endpoints
// carrying only locations (no ticket) refer to external services and are
// skipped by the materialization helpers.
type Location struct {
	URI string
}

func (l *Location) MarshalBinary() ([]byte, error) {
	var b []byte
	if l.URI != "" {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, l.URI)
	}
	return b, nil
}

func (l *Location) UnmarshalBinary(data []byte) error {
	*l = Location{}
	return eachField(data, func(num protowire.Number, typ protowire.Type, data []byte) (int, error) {
		if num == 1 && typ == protowire.BytesType {
			v, n := protowire.ConsumeBytes(data)
			l.URI = string(v)
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, data), nil
	})
}

// FlightEndpoint describes where and how to retrieve one portion of a result.
type FlightEndpoint struct {
	Ticket      *Ticket
	Location    []Location
	AppMetadata []byte
}

func (e *FlightEndpoint) MarshalBinary() ([]byte, error) {
	var b []byte
	if e.Ticket != nil {
		sub, err := e.Ticket.MarshalBinary()
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, sub)
	}
	for i := range e.Location {
		sub, err := e.Location[i].MarshalBinary()
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, sub)
	}
	if len(e.AppMetadata) > 0 {
		b = protowire.AppendTag(b, 4, protowire.BytesType)
		b = protowire.AppendBytes(b, e.AppMetadata)
	}
	return b, nil
}

func (e *FlightEndpoint) UnmarshalBinary(data []byte) error {
	*e = FlightEndpoint{}
	return eachField(data, func(num protowire.Number, typ protowire.Type, data []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n >= 0 {
				e.Ticket = &Ticket{}
				if err := e.Ticket.UnmarshalBinary(v); err != nil {
					return n, err
				}
			}
			return n, nil
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n >= 0 {
				var loc Location
				if err := loc.UnmarshalBinary(v); err != nil {
					return n, err
				}
				e.Location = append(e.Location, loc)
			}
			return n, nil
		case num == 4 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			e.AppMetadata = cloneBytes(v)
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, data), nil
	})
}

// FlightInfo is the transport's response to a descriptor-bearing request. The
// data it describes arrives later, out of band, by redeeming each endpoint's
// ticket.
type FlightInfo struct {
	Schema           []byte
	FlightDescriptor *FlightDescriptor
	Endpoint         []*FlightEndpoint
	TotalRecords     int64
	TotalBytes       int64
	Ordered          bool
	AppMetadata      []byte
}

func (f *FlightInfo) MarshalBinary() ([]byte, error) {
	var b []byte
	if len(f.Schema) > 0 {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, f.Schema)
	}
	if f.FlightDescriptor != nil {
		sub, err := f.FlightDescriptor.MarshalBinary()
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, sub)
	}
	for _, e := range f.Endpoint {
		sub, err := e.MarshalBinary()
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendBytes(b, sub)
	}
	if f.TotalRecords != 0 {
		b = protowire.AppendTag(b, 4, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(f.TotalRecords))
	}
	if f.TotalBytes != 0 {
		b = protowire.AppendTag(b, 5, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(f.TotalBytes))
	}
	if f.Ordered {
		b = protowire.AppendTag(b, 6, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	if len(f.AppMetadata) > 0 {
		b = protowire.AppendTag(b, 7, protowire.BytesType)
		b = protowire.AppendBytes(b, f.AppMetadata)
	}
	return b, nil
}

func (f *FlightInfo) UnmarshalBinary(data []byte) error {
	*f = FlightInfo{}
	return eachField(data, func(num protowire.Number, typ protowire.Type, data []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			f.Schema = cloneBytes(v)
			return n, nil
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n >= 0 {
				f.FlightDescriptor = &FlightDescriptor{}
				if err := f.FlightDescriptor.UnmarshalBinary(v); err != nil {
					return n, err
				}
			}
			return n, nil
		case num == 3 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n >= 0 {
				e := &FlightEndpoint{}
				if err := e.UnmarshalBinary(v); err != nil {
					return n, err
				}
				f.Endpoint = append(f.Endpoint, e)
			}
			return n, nil
		case num == 4 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			f.TotalRecords = int64(v)
			return n, nil
		case num == 5 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			f.TotalBytes = int64(v)
			return n, nil
		case num == 6 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			f.Ordered = v != 0
			return n, nil
		case num == 7 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			f.AppMetadata = cloneBytes(v)
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, data), nil
	})
}

// FlightData is one message on a data stream. DataHeader carries columnar
// framing metadata, DataBody the row data; the materialization helpers
// concatenate the two in order.
type FlightData struct {
	FlightDescriptor *FlightDescriptor
	DataHeader       []byte
	AppMetadata      []byte
	DataBody         []byte
}

func (d *FlightData) MarshalBinary() ([]byte, error) {
	var b []byte
	if d.FlightDescriptor != nil {
		sub, err := d.FlightDescriptor.MarshalBinary()
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, sub)
	}
	if len(d.DataHeader) > 0 {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, d.DataHeader)
	}
	if len(d.AppMetadata) > 0 {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendBytes(b, d.AppMetadata)
	}
	if len(d.DataBody) > 0 {
		b = protowire.AppendTag(b, 1000, protowire.BytesType)
		b = protowire.AppendBytes(b, d.DataBody)
	}
	return b, nil
}

func (d *FlightData) UnmarshalBinary(data []byte) error {
	*d = FlightData{}
	return eachField(data, func(num protowire.Number, typ protowire.Type, data []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n >= 0 {
				d.FlightDescriptor = &FlightDescriptor{}
				if err := d.FlightDescriptor.UnmarshalBinary(v); err != nil {
					return n, err
				}
			}
			return n, nil
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			d.DataHeader = cloneBytes(v)
			return n, nil
		case num == 3 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			d.AppMetadata = cloneBytes(v)
			return n, nil
		case num == 1000 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			d.DataBody = cloneBytes(v)
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, data), nil
	})
}

// PutResult is the control message a server sends back on a write stream. Its
// AppMetadata side channel carries the enveloped operation result.
type PutResult struct {
	AppMetadata []byte
}

func (p *PutResult) MarshalBinary() ([]byte, error) {
	var b []byte
	if len(p.AppMetadata) > 0 {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, p.AppMetadata)
	}
	return b, nil
}

func (p *PutResult) UnmarshalBinary(data []byte) error {
	*p = PutResult{}
	return eachField(data, func(num protowire.Number, typ protowire.Type, data []byte) (int, error) {
		if num == 1 && typ == protowire.BytesType {
			v, n := protowire.ConsumeBytes(data)
			p.AppMetadata = cloneBytes(v)
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, data), nil
	})
}

// Action is a generic transport action invocation: a well-known type string
// and an opaque, usually enveloped, body.
type Action struct {
	Type string
	Body []byte
}

func (a *Action) MarshalBinary() ([]byte, error) {
	var b []byte
	if a.Type != "" {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, a.Type)
	}
	if len(a.Body) > 0 {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, a.Body)
	}
	return b, nil
}

func (a *Action) UnmarshalBinary(data []byte) error {
	*a = Action{}
	return eachField(data, func(num protowire.Number, typ protowire.Type, data []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			a.Type = string(v)
			return n, nil
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			a.Body = cloneBytes(v)
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, data), nil
	})
}

// Result is one item on an action's response stream.
type Result struct {
	Body []byte
}

func (r *Result) MarshalBinary() ([]byte, error) {
	var b []byte
	if len(r.Body) > 0 {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, r.Body)
	}
	return b, nil
}

func (r *Result) UnmarshalBinary(data []byte) error {
	*r = Result{}
	return eachField(data, func(num protowire.Number, typ protowire.Type, data []byte) (int, error) {
		if num == 1 && typ == protowire.BytesType {
			v, n := protowire.ConsumeBytes(data)
			r.Body = cloneBytes(v)
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, data), nil
	})
}

// eachField drives a protowire field scan, delegating known fields to fn and
// treating a negative length from fn (or the tag parser) as a parse error.
func eachField(data []byte, fn func(num protowire.Number, typ protowire.Type, data []byte) (int, error)) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		n, err := fn(num, typ, data)
		if err != nil {
			return err
		}
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
	}
	return nil
}

// cloneBytes copies a protowire subslice so decoded messages do not alias the
// input buffer.
func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
