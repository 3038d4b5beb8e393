// © Copyright 2025-2026, Qualithm - https://qualithm.dev
// SPDX-License-Identifier: Apache-2.0

package flightsql

// Fixed-schema codecs for the arrow.flight.protocol.sql command and action
// messages. These are mechanical protowire records: field numbers follow the
// FlightSql.proto schema, optional string fields use pointer presence, and
// bytes fields are emitted only when non-empty.

import (
	"google.golang.org/protobuf/encoding/protowire"
)

func appendString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendOptString(b []byte, num protowire.Number, s *string) []byte {
	if s == nil {
		return b
	}
	return appendString(b, num, *s)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

// CommandStatementQuery requests execution of an ad hoc query whose results
// arrive out of band via the returned endpoints.
type CommandStatementQuery struct {
	Query         string
	TransactionID []byte
}

func (c *CommandStatementQuery) MarshalBinary() ([]byte, error) {
	var b []byte
	if c.Query != "" {
		b = appendString(b, 1, c.Query)
	}
	b = appendBytes(b, 2, c.TransactionID)
	return b, nil
}

func (c *CommandStatementQuery) UnmarshalBinary(data []byte) error {
	*c = CommandStatementQuery{}
	return eachField(data, func(num protowire.Number, typ protowire.Type, data []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			c.Query = string(v)
			return n, nil
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			c.TransactionID = cloneBytes(v)
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, data), nil
	})
}

// CommandStatementUpdate requests execution of an ad hoc update; the affected
// row count comes back on the write stream's control message.
type CommandStatementUpdate struct {
	Query         string
	TransactionID []byte
}

func (c *CommandStatementUpdate) MarshalBinary() ([]byte, error) {
	var b []byte
	if c.Query != "" {
		b = appendString(b, 1, c.Query)
	}
	b = appendBytes(b, 2, c.TransactionID)
	return b, nil
}

func (c *CommandStatementUpdate) UnmarshalBinary(data []byte) error {
	*c = CommandStatementUpdate{}
	return eachField(data, func(num protowire.Number, typ protowire.Type, data []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			c.Query = string(v)
			return n, nil
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			c.TransactionID = cloneBytes(v)
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, data), nil
	})
}

// CommandPreparedStatementQuery executes a previously prepared query.
type CommandPreparedStatementQuery struct {
	PreparedStatementHandle []byte
}

func (c *CommandPreparedStatementQuery) MarshalBinary() ([]byte, error) {
	return appendBytes(nil, 1, c.PreparedStatementHandle), nil
}

func (c *CommandPreparedStatementQuery) UnmarshalBinary(data []byte) error {
	*c = CommandPreparedStatementQuery{}
	return eachField(data, func(num protowire.Number, typ protowire.Type, data []byte) (int, error) {
		if num == 1 && typ == protowire.BytesType {
			v, n := protowire.ConsumeBytes(data)
			c.PreparedStatementHandle = cloneBytes(v)
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, data), nil
	})
}

// CommandPreparedStatementUpdate executes a previously prepared update.
type CommandPreparedStatementUpdate struct {
	PreparedStatementHandle []byte
}

func (c *CommandPreparedStatementUpdate) MarshalBinary() ([]byte, error) {
	return appendBytes(nil, 1, c.PreparedStatementHandle), nil
}

func (c *CommandPreparedStatementUpdate) UnmarshalBinary(data []byte) error {
	*c = CommandPreparedStatementUpdate{}
	return eachField(data, func(num protowire.Number, typ protowire.Type, data []byte) (int, error) {
		if num == 1 && typ == protowire.BytesType {
			v, n := protowire.ConsumeBytes(data)
			c.PreparedStatementHandle = cloneBytes(v)
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, data), nil
	})
}

// CommandGetCatalogs lists the catalogs available on the server.
type CommandGetCatalogs struct{}

func (c *CommandGetCatalogs) MarshalBinary() ([]byte, error) { return nil, nil }
func (c *CommandGetCatalogs) UnmarshalBinary(_ []byte) error { return nil }

// CommandGetDbSchemas lists database schemas, optionally filtered.
type CommandGetDbSchemas struct {
	Catalog               *string
	DbSchemaFilterPattern *string
}

func (c *CommandGetDbSchemas) MarshalBinary() ([]byte, error) {
	var b []byte
	b = appendOptString(b, 1, c.Catalog)
	b = appendOptString(b, 2, c.DbSchemaFilterPattern)
	return b, nil
}

func (c *CommandGetDbSchemas) UnmarshalBinary(data []byte) error {
	*c = CommandGetDbSchemas{}
	return eachField(data, func(num protowire.Number, typ protowire.Type, data []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			s := string(v)
			c.Catalog = &s
			return n, nil
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			s := string(v)
			c.DbSchemaFilterPattern = &s
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, data), nil
	})
}

// CommandGetTables lists tables, optionally filtered, optionally including
// each table's serialized schema.
type CommandGetTables struct {
	Catalog                *string
	DbSchemaFilterPattern  *string
	TableNameFilterPattern *string
	TableTypes             []string
	IncludeSchema          bool
}

func (c *CommandGetTables) MarshalBinary() ([]byte, error) {
	var b []byte
	b = appendOptString(b, 1, c.Catalog)
	b = appendOptString(b, 2, c.DbSchemaFilterPattern)
	b = appendOptString(b, 3, c.TableNameFilterPattern)
	for _, t := range c.TableTypes {
		b = appendString(b, 4, t)
	}
	if c.IncludeSchema {
		b = protowire.AppendTag(b, 5, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	return b, nil
}

func (c *CommandGetTables) UnmarshalBinary(data []byte) error {
	*c = CommandGetTables{}
	return eachField(data, func(num protowire.Number, typ protowire.Type, data []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			s := string(v)
			c.Catalog = &s
			return n, nil
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			s := string(v)
			c.DbSchemaFilterPattern = &s
			return n, nil
		case num == 3 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			s := string(v)
			c.TableNameFilterPattern = &s
			return n, nil
		case num == 4 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			c.TableTypes = append(c.TableTypes, string(v))
			return n, nil
		case num == 5 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			c.IncludeSchema = v != 0
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, data), nil
	})
}

// CommandGetTableTypes lists the table types the server knows about.
type CommandGetTableTypes struct{}

func (c *CommandGetTableTypes) MarshalBinary() ([]byte, error) { return nil, nil }
func (c *CommandGetTableTypes) UnmarshalBinary(_ []byte) error { return nil }

// CommandGetPrimaryKeys describes the primary keys of one table.
type CommandGetPrimaryKeys struct {
	Catalog  *string
	DbSchema *string
	Table    string
}

func (c *CommandGetPrimaryKeys) MarshalBinary() ([]byte, error) {
	var b []byte
	b = appendOptString(b, 1, c.Catalog)
	b = appendOptString(b, 2, c.DbSchema)
	if c.Table != "" {
		b = appendString(b, 3, c.Table)
	}
	return b, nil
}

func (c *CommandGetPrimaryKeys) UnmarshalBinary(data []byte) error {
	*c = CommandGetPrimaryKeys{}
	return unmarshalTableRefFields(data, &c.Catalog, &c.DbSchema, &c.Table)
}

// CommandGetExportedKeys describes foreign keys referencing one table.
type CommandGetExportedKeys struct {
	Catalog  *string
	DbSchema *string
	Table    string
}

func (c *CommandGetExportedKeys) MarshalBinary() ([]byte, error) {
	var b []byte
	b = appendOptString(b, 1, c.Catalog)
	b = appendOptString(b, 2, c.DbSchema)
	if c.Table != "" {
		b = appendString(b, 3, c.Table)
	}
	return b, nil
}

func (c *CommandGetExportedKeys) UnmarshalBinary(data []byte) error {
	*c = CommandGetExportedKeys{}
	return unmarshalTableRefFields(data, &c.Catalog, &c.DbSchema, &c.Table)
}

// CommandGetImportedKeys describes foreign keys held by one table.
type CommandGetImportedKeys struct {
	Catalog  *string
	DbSchema *string
	Table    string
}

func (c *CommandGetImportedKeys) MarshalBinary() ([]byte, error) {
	var b []byte
	b = appendOptString(b, 1, c.Catalog)
	b = appendOptString(b, 2, c.DbSchema)
	if c.Table != "" {
		b = appendString(b, 3, c.Table)
	}
	return b, nil
}

func (c *CommandGetImportedKeys) UnmarshalBinary(data []byte) error {
	*c = CommandGetImportedKeys{}
	return unmarshalTableRefFields(data, &c.Catalog, &c.DbSchema, &c.Table)
}

// unmarshalTableRefFields decodes the shared catalog/db_schema/table field
// layout of the key-lookup commands.
func unmarshalTableRefFields(data []byte, catalog, dbSchema **string, table *string) error {
	return eachField(data, func(num protowire.Number, typ protowire.Type, data []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			s := string(v)
			*catalog = &s
			return n, nil
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			s := string(v)
			*dbSchema = &s
			return n, nil
		case num == 3 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			*table = string(v)
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, data), nil
	})
}

// CommandGetCrossReference describes the foreign key relationship between a
// primary-key table and a foreign-key table.
type CommandGetCrossReference struct {
	PkCatalog  *string
	PkDbSchema *string
	PkTable    string
	FkCatalog  *string
	FkDbSchema *string
	FkTable    string
}

func (c *CommandGetCrossReference) MarshalBinary() ([]byte, error) {
	var b []byte
	b = appendOptString(b, 1, c.PkCatalog)
	b = appendOptString(b, 2, c.PkDbSchema)
	if c.PkTable != "" {
		b = appendString(b, 3, c.PkTable)
	}
	b = appendOptString(b, 4, c.FkCatalog)
	b = appendOptString(b, 5, c.FkDbSchema)
	if c.FkTable != "" {
		b = appendString(b, 6, c.FkTable)
	}
	return b, nil
}

func (c *CommandGetCrossReference) UnmarshalBinary(data []byte) error {
	*c = CommandGetCrossReference{}
	return eachField(data, func(num protowire.Number, typ protowire.Type, data []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			s := string(v)
			c.PkCatalog = &s
			return n, nil
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			s := string(v)
			c.PkDbSchema = &s
			return n, nil
		case num == 3 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			c.PkTable = string(v)
			return n, nil
		case num == 4 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			s := string(v)
			c.FkCatalog = &s
			return n, nil
		case num == 5 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			s := string(v)
			c.FkDbSchema = &s
			return n, nil
		case num == 6 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			c.FkTable = string(v)
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, data), nil
	})
}

// CommandGetSqlInfo requests server capability metadata by info code. An
// empty Info slice asks for everything the server publishes.
type CommandGetSqlInfo struct {
	Info []uint32
}

func (c *CommandGetSqlInfo) MarshalBinary() ([]byte, error) {
	if len(c.Info) == 0 {
		return nil, nil
	}
	var packed []byte
	for _, v := range c.Info {
		packed = protowire.AppendVarint(packed, uint64(v))
	}
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendBytes(b, packed)
	return b, nil
}

func (c *CommandGetSqlInfo) UnmarshalBinary(data []byte) error {
	*c = CommandGetSqlInfo{}
	return eachField(data, func(num protowire.Number, typ protowire.Type, data []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			packed, n := protowire.ConsumeBytes(data)
			for len(packed) > 0 {
				v, m := protowire.ConsumeVarint(packed)
				if m < 0 {
					return n, protowire.ParseError(m)
				}
				c.Info = append(c.Info, uint32(v))
				packed = packed[m:]
			}
			return n, nil
		case num == 1 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			c.Info = append(c.Info, uint32(v))
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, data), nil
	})
}

// CommandGetXdbcTypeInfo requests XDBC type metadata, optionally narrowed to
// a single data type code.
type CommandGetXdbcTypeInfo struct {
	DataType *int32
}

func (c *CommandGetXdbcTypeInfo) MarshalBinary() ([]byte, error) {
	if c.DataType == nil {
		return nil, nil
	}
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(uint32(*c.DataType)))
	return b, nil
}

func (c *CommandGetXdbcTypeInfo) UnmarshalBinary(data []byte) error {
	*c = CommandGetXdbcTypeInfo{}
	return eachField(data, func(num protowire.Number, typ protowire.Type, data []byte) (int, error) {
		if num == 1 && typ == protowire.VarintType {
			v, n := protowire.ConsumeVarint(data)
			dt := int32(v)
			c.DataType = &dt
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, data), nil
	})
}

// ActionCreatePreparedStatementRequest asks the server to prepare a query.
type ActionCreatePreparedStatementRequest struct {
	Query         string
	TransactionID []byte
}

func (a *ActionCreatePreparedStatementRequest) MarshalBinary() ([]byte, error) {
	var b []byte
	if a.Query != "" {
		b = appendString(b, 1, a.Query)
	}
	b = appendBytes(b, 2, a.TransactionID)
	return b, nil
}

func (a *ActionCreatePreparedStatementRequest) UnmarshalBinary(data []byte) error {
	*a = ActionCreatePreparedStatementRequest{}
	return eachField(data, func(num protowire.Number, typ protowire.Type, data []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			a.Query = string(v)
			return n, nil
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			a.TransactionID = cloneBytes(v)
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, data), nil
	})
}

// ActionCreatePreparedStatementResult carries the server-issued statement
// handle and its optional dataset/parameter schemas. A zero-length schema
// means the server did not provide one; absent and empty are not
// distinguished.
type ActionCreatePreparedStatementResult struct {
	PreparedStatementHandle []byte
	DatasetSchema           []byte
	ParameterSchema         []byte
}

func (a *ActionCreatePreparedStatementResult) MarshalBinary() ([]byte, error) {
	var b []byte
	b = appendBytes(b, 1, a.PreparedStatementHandle)
	b = appendBytes(b, 2, a.DatasetSchema)
	b = appendBytes(b, 3, a.ParameterSchema)
	return b, nil
}

func (a *ActionCreatePreparedStatementResult) UnmarshalBinary(data []byte) error {
	*a = ActionCreatePreparedStatementResult{}
	return eachField(data, func(num protowire.Number, typ protowire.Type, data []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			a.PreparedStatementHandle = cloneBytes(v)
			return n, nil
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			a.DatasetSchema = cloneBytes(v)
			return n, nil
		case num == 3 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			a.ParameterSchema = cloneBytes(v)
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, data), nil
	})
}

// ActionClosePreparedStatementRequest releases a prepared statement handle.
type ActionClosePreparedStatementRequest struct {
	PreparedStatementHandle []byte
}

func (a *ActionClosePreparedStatementRequest) MarshalBinary() ([]byte, error) {
	return appendBytes(nil, 1, a.PreparedStatementHandle), nil
}

func (a *ActionClosePreparedStatementRequest) UnmarshalBinary(data []byte) error {
	*a = ActionClosePreparedStatementRequest{}
	return eachField(data, func(num protowire.Number, typ protowire.Type, data []byte) (int, error) {
		if num == 1 && typ == protowire.BytesType {
			v, n := protowire.ConsumeBytes(data)
			a.PreparedStatementHandle = cloneBytes(v)
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, data), nil
	})
}

// ActionBeginTransactionRequest starts a transaction. It has no fields.
type ActionBeginTransactionRequest struct{}

func (a *ActionBeginTransactionRequest) MarshalBinary() ([]byte, error) { return nil, nil }
func (a *ActionBeginTransactionRequest) UnmarshalBinary(_ []byte) error { return nil }

// ActionBeginTransactionResult carries the server-issued transaction id.
type ActionBeginTransactionResult struct {
	TransactionID []byte
}

func (a *ActionBeginTransactionResult) MarshalBinary() ([]byte, error) {
	return appendBytes(nil, 1, a.TransactionID), nil
}

func (a *ActionBeginTransactionResult) UnmarshalBinary(data []byte) error {
	*a = ActionBeginTransactionResult{}
	return eachField(data, func(num protowire.Number, typ protowire.Type, data []byte) (int, error) {
		if num == 1 && typ == protowire.BytesType {
			v, n := protowire.ConsumeBytes(data)
			a.TransactionID = cloneBytes(v)
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, data), nil
	})
}

// EndTransactionOutcome selects commit or rollback in an end-transaction
// request.
type EndTransactionOutcome int32

const (
	EndTransactionUnspecified EndTransactionOutcome = 0
	EndTransactionCommit      EndTransactionOutcome = 1
	EndTransactionRollback    EndTransactionOutcome = 2
)

// ActionEndTransactionRequest terminates a transaction with the given
// outcome. The handle is invalid afterwards; the client does not guard reuse.
type ActionEndTransactionRequest struct {
	TransactionID []byte
	Action        EndTransactionOutcome
}

func (a *ActionEndTransactionRequest) MarshalBinary() ([]byte, error) {
	var b []byte
	b = appendBytes(b, 1, a.TransactionID)
	if a.Action != EndTransactionUnspecified {
		b = protowire.AppendTag(b, 2, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(a.Action))
	}
	return b, nil
}

func (a *ActionEndTransactionRequest) UnmarshalBinary(data []byte) error {
	*a = ActionEndTransactionRequest{}
	return eachField(data, func(num protowire.Number, typ protowire.Type, data []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			a.TransactionID = cloneBytes(v)
			return n, nil
		case num == 2 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			a.Action = EndTransactionOutcome(v)
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, data), nil
	})
}

// DoPutUpdateResult reports the rows affected by an update. RecordCount is -1
// when the server cannot determine the count.
type DoPutUpdateResult struct {
	RecordCount int64
}

func (d *DoPutUpdateResult) MarshalBinary() ([]byte, error) {
	var b []byte
	if d.RecordCount != 0 {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(d.RecordCount))
	}
	return b, nil
}

func (d *DoPutUpdateResult) UnmarshalBinary(data []byte) error {
	*d = DoPutUpdateResult{}
	return eachField(data, func(num protowire.Number, typ protowire.Type, data []byte) (int, error) {
		if num == 1 && typ == protowire.VarintType {
			v, n := protowire.ConsumeVarint(data)
			d.RecordCount = int64(v)
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, data), nil
	})
}

// DoPutPreparedStatementResult optionally carries an updated statement handle
// after binding parameters. Servers predating this message return nothing;
// a zero-length handle means "keep using the original handle".
type DoPutPreparedStatementResult struct {
	PreparedStatementHandle []byte
}

func (d *DoPutPreparedStatementResult) MarshalBinary() ([]byte, error) {
	return appendBytes(nil, 1, d.PreparedStatementHandle), nil
}

func (d *DoPutPreparedStatementResult) UnmarshalBinary(data []byte) error {
	*d = DoPutPreparedStatementResult{}
	return eachField(data, func(num protowire.Number, typ protowire.Type, data []byte) (int, error) {
		if num == 1 && typ == protowire.BytesType {
			v, n := protowire.ConsumeBytes(data)
			d.PreparedStatementHandle = cloneBytes(v)
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, data), nil
	})
}
