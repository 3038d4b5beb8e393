// © Copyright 2025-2026, Qualithm - https://qualithm.dev
// SPDX-License-Identifier: Apache-2.0

package flightsql

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Client is the Flight SQL operation facade. It sequences logical database
// operations (queries, updates, prepared statements, transactions, catalog
// lookups) over a generic Flight transport. It holds no per-operation state:
// handles are server-issued values the caller passes back in, and every call
// re-encodes its command from scratch.
//
// A Client is safe for concurrent use as long as its Transport is.
type Client struct {
	// Transport performs all network activity on the client's behalf.
	Transport Transport
	// Alloc is the allocator used when materializing results. Defaults to
	// memory.DefaultAllocator.
	Alloc memory.Allocator

	hook CallHook
}

// NewClient returns a Client operating over the given transport.
func NewClient(tr Transport) *Client {
	return &Client{Transport: tr, Alloc: memory.DefaultAllocator}
}

// SetCallHook installs an observability hook invoked around every logical
// call. Pass nil to remove.
func (c *Client) SetCallHook(h CallHook) {
	c.hook = h
}

func (c *Client) allocator() memory.Allocator {
	if c.Alloc != nil {
		return c.Alloc
	}
	return memory.DefaultAllocator
}

// startCall fires the hook's start callpoint. Hook panics are logged and
// swallowed so observability cannot fail a call; the results are named so a
// recovered panic leaves the caller's context in place rather than nil.
func (c *Client) startCall(ctx context.Context, info CallInfo) (outCtx context.Context, token HookToken) {
	outCtx = ctx
	if c.hook == nil {
		return outCtx, nil
	}
	defer func() {
		if rv := recover(); rv != nil {
			slog.Error("call hook start panic", "err", rv)
			outCtx, token = ctx, nil
		}
	}()
	outCtx, token = c.hook.OnCallStart(ctx, info)
	return outCtx, token
}

func (c *Client) endCall(ctx context.Context, token HookToken, info CallInfo, stats *CallStatistics, err error) {
	if c.hook == nil {
		return
	}
	defer func() {
		if rv := recover(); rv != nil {
			slog.Error("call hook end panic", "err", rv)
		}
	}()
	c.hook.OnCallEnd(ctx, token, info, stats, err)
}

// Input validation. All of these run before any network activity.

func validateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return validationError("query cannot be empty")
	}
	return nil
}

func validateHandle(handle []byte) error {
	if len(handle) == 0 {
		return validationError("prepared statement handle cannot be empty")
	}
	return nil
}

func validateTransactionID(id []byte) error {
	if len(id) == 0 {
		return validationError("transaction id cannot be empty")
	}
	return nil
}

// getFlightInfo is the single-request sequencing shared by queries and all
// metadata lookups. The response payload is not decoded here; the real data
// arrives later via the endpoints' tickets.
func (c *Client) getFlightInfo(ctx context.Context, op, msgName string, msg commandMessage, opts []CallOption) (*FlightInfo, error) {
	desc, err := commandDescriptor(msgName, msg)
	if err != nil {
		return nil, err
	}
	info := CallInfo{Operation: op, CallType: CallTypeInfo}
	ctx, token := c.startCall(ctx, info)
	fi, err := c.Transport.GetFlightInfo(ctx, desc, opts...)
	c.endCall(ctx, token, info, nil, err)
	return fi, err
}

// doPut is the write-stream sequencing: send exactly one descriptor-bearing
// message (header/body are only set for bind-parameters), close the sending
// side, then collect every control message the server returns. The call never
// resolves while a response is still outstanding.
func (c *Client) doPut(ctx context.Context, op, msgName string, msg commandMessage, header, body []byte, opts []CallOption) ([]*PutResult, error) {
	desc, err := commandDescriptor(msgName, msg)
	if err != nil {
		return nil, err
	}
	info := CallInfo{Operation: op, CallType: CallTypePut}
	ctx, token := c.startCall(ctx, info)
	stats := &CallStatistics{}

	results, err := func() ([]*PutResult, error) {
		stream, err := c.Transport.DoPut(ctx, opts...)
		if err != nil {
			return nil, err
		}
		data := &FlightData{FlightDescriptor: desc, DataHeader: header, DataBody: body}
		if err := stream.Send(data); err != nil {
			return nil, err
		}
		if err := stream.CloseSend(); err != nil {
			return nil, err
		}
		return stream.Results()
	}()
	stats.ResponseItems = int64(len(results))
	c.endCall(ctx, token, info, stats, err)
	return results, err
}

// decodePutResult enforces the write-stream result contract: a first control
// message must exist and carry non-empty side-channel metadata, which is then
// unwrapped and decoded into out.
func decodePutResult(results []*PutResult, missingMsg, emptyMsg string, out commandMessage) error {
	if len(results) == 0 {
		return resultError(missingMsg)
	}
	first := results[0]
	if len(first.AppMetadata) == 0 {
		return resultError(emptyMsg)
	}
	payload, err := UnpackAny(first.AppMetadata)
	if err != nil {
		return err
	}
	return out.UnmarshalBinary(payload)
}

// doAction is the action sequencing: invoke the generic action with the
// packed request as its body and take the first yielded item. Remaining items
// are drained but ignored; close/end style operations expect none at all.
func (c *Client) doAction(ctx context.Context, op, actionType, msgName string, msg commandMessage, opts []CallOption) (*Result, error) {
	body, err := packCommand(msgName, msg)
	if err != nil {
		return nil, err
	}
	info := CallInfo{Operation: op, CallType: CallTypeAction}
	ctx, token := c.startCall(ctx, info)
	stats := &CallStatistics{}

	first, err := func() (*Result, error) {
		stream, err := c.Transport.DoAction(ctx, &Action{Type: actionType, Body: body}, opts...)
		if err != nil {
			return nil, err
		}
		var first *Result
		for {
			r, err := stream.Recv()
			if err == io.EOF {
				return first, nil
			}
			if err != nil {
				return first, err
			}
			stats.RecordItem()
			if first == nil {
				first = r
			}
		}
	}()
	c.endCall(ctx, token, info, stats, err)
	return first, err
}

// Query executes an ad hoc query. The returned FlightInfo carries the
// endpoints from which the result set is retrieved; use ReadTable or
// ReadChunks to materialize it.
func (c *Client) Query(ctx context.Context, query string, opts ...CallOption) (*FlightInfo, error) {
	return c.queryWithTxn(ctx, query, nil, opts)
}

// QueryWithTransaction executes a query scoped to an open transaction.
func (c *Client) QueryWithTransaction(ctx context.Context, query string, transactionID []byte, opts ...CallOption) (*FlightInfo, error) {
	if err := validateTransactionID(transactionID); err != nil {
		return nil, err
	}
	return c.queryWithTxn(ctx, query, transactionID, opts)
}

func (c *Client) queryWithTxn(ctx context.Context, query string, txnID []byte, opts []CallOption) (*FlightInfo, error) {
	if err := validateQuery(query); err != nil {
		return nil, err
	}
	cmd := &CommandStatementQuery{Query: query, TransactionID: txnID}
	return c.getFlightInfo(ctx, "Query", "CommandStatementQuery", cmd, opts)
}

// ExecuteUpdate executes an ad hoc update statement and returns the affected
// record count. A count of -1 means the server could not determine it.
func (c *Client) ExecuteUpdate(ctx context.Context, query string, opts ...CallOption) (int64, error) {
	return c.executeUpdateWithTxn(ctx, query, nil, opts)
}

// ExecuteUpdateWithTransaction executes an update scoped to an open
// transaction.
func (c *Client) ExecuteUpdateWithTransaction(ctx context.Context, query string, transactionID []byte, opts ...CallOption) (int64, error) {
	if err := validateTransactionID(transactionID); err != nil {
		return 0, err
	}
	return c.executeUpdateWithTxn(ctx, query, transactionID, opts)
}

func (c *Client) executeUpdateWithTxn(ctx context.Context, query string, txnID []byte, opts []CallOption) (int64, error) {
	if err := validateQuery(query); err != nil {
		return 0, err
	}
	cmd := &CommandStatementUpdate{Query: query, TransactionID: txnID}
	results, err := c.doPut(ctx, "ExecuteUpdate", "CommandStatementUpdate", cmd, nil, nil, opts)
	if err != nil {
		return 0, err
	}
	var update DoPutUpdateResult
	if err := decodePutResult(results,
		"no result returned from update",
		"update result missing app metadata",
		&update); err != nil {
		return 0, err
	}
	return update.RecordCount, nil
}

// PreparedStatement holds the server-issued handle for a prepared query plus
// the optional dataset and parameter schemas. Zero-length schemas mean the
// server provided none.
type PreparedStatement struct {
	Handle          []byte
	DatasetSchema   []byte
	ParameterSchema []byte
}

// Prepare creates a prepared statement for the given query.
func (c *Client) Prepare(ctx context.Context, query string, opts ...CallOption) (*PreparedStatement, error) {
	return c.prepareWithTxn(ctx, query, nil, opts)
}

// PrepareWithTransaction creates a prepared statement scoped to an open
// transaction.
func (c *Client) PrepareWithTransaction(ctx context.Context, query string, transactionID []byte, opts ...CallOption) (*PreparedStatement, error) {
	if err := validateTransactionID(transactionID); err != nil {
		return nil, err
	}
	return c.prepareWithTxn(ctx, query, transactionID, opts)
}

func (c *Client) prepareWithTxn(ctx context.Context, query string, txnID []byte, opts []CallOption) (*PreparedStatement, error) {
	if err := validateQuery(query); err != nil {
		return nil, err
	}
	req := &ActionCreatePreparedStatementRequest{Query: query, TransactionID: txnID}
	first, err := c.doAction(ctx, "Prepare", ActionTypeCreatePreparedStatement, "ActionCreatePreparedStatementRequest", req, opts)
	if err != nil {
		return nil, err
	}
	if first == nil {
		return nil, resultError("no result returned from create prepared statement")
	}
	if len(first.Body) == 0 {
		return nil, resultError("create prepared statement result missing body")
	}
	payload, err := UnpackAny(first.Body)
	if err != nil {
		return nil, err
	}
	var res ActionCreatePreparedStatementResult
	if err := res.UnmarshalBinary(payload); err != nil {
		return nil, err
	}
	return &PreparedStatement{
		Handle:          res.PreparedStatementHandle,
		DatasetSchema:   res.DatasetSchema,
		ParameterSchema: res.ParameterSchema,
	}, nil
}

// ClosePreparedStatement releases a prepared statement handle. The server
// sends no meaningful result; the response stream is drained. Reusing the
// handle afterwards is server-dependent and not guarded here.
func (c *Client) ClosePreparedStatement(ctx context.Context, handle []byte, opts ...CallOption) error {
	if err := validateHandle(handle); err != nil {
		return err
	}
	req := &ActionClosePreparedStatementRequest{PreparedStatementHandle: handle}
	_, err := c.doAction(ctx, "ClosePreparedStatement", ActionTypeClosePreparedStatement, "ActionClosePreparedStatementRequest", req, opts)
	return err
}

// ExecutePreparedQuery executes a prepared query. Results arrive out of band
// via the returned FlightInfo's endpoints.
func (c *Client) ExecutePreparedQuery(ctx context.Context, handle []byte, opts ...CallOption) (*FlightInfo, error) {
	if err := validateHandle(handle); err != nil {
		return nil, err
	}
	cmd := &CommandPreparedStatementQuery{PreparedStatementHandle: handle}
	return c.getFlightInfo(ctx, "ExecutePreparedQuery", "CommandPreparedStatementQuery", cmd, opts)
}

// ExecutePreparedUpdate executes a prepared update statement and returns the
// affected record count (-1 when unknown).
func (c *Client) ExecutePreparedUpdate(ctx context.Context, handle []byte, opts ...CallOption) (int64, error) {
	if err := validateHandle(handle); err != nil {
		return 0, err
	}
	cmd := &CommandPreparedStatementUpdate{PreparedStatementHandle: handle}
	results, err := c.doPut(ctx, "ExecutePreparedUpdate", "CommandPreparedStatementUpdate", cmd, nil, nil, opts)
	if err != nil {
		return 0, err
	}
	var update DoPutUpdateResult
	if err := decodePutResult(results,
		"no result returned from prepared statement update",
		"prepared statement update result missing app metadata",
		&update); err != nil {
		return 0, err
	}
	return update.RecordCount, nil
}

// BindParametersResult optionally carries a replacement statement handle. A
// zero-length UpdatedHandle means the original handle remains valid; servers
// predating the updated-handle feature return nothing at all, which is
// treated the same way.
type BindParametersResult struct {
	UpdatedHandle []byte
}

// BindParameters sends parameter values for a prepared statement: the
// serialized parameter schema travels in the message header, the encoded
// parameter data in the body. Unlike every other write-stream operation, an
// absent or empty response is success, not an error.
func (c *Client) BindParameters(ctx context.Context, handle, parameterSchema, parameterData []byte, opts ...CallOption) (*BindParametersResult, error) {
	if err := validateHandle(handle); err != nil {
		return nil, err
	}
	if len(parameterSchema) == 0 {
		return nil, validationError("parameter schema cannot be empty")
	}
	if len(parameterData) == 0 {
		return nil, validationError("parameter data cannot be empty")
	}
	cmd := &CommandPreparedStatementQuery{PreparedStatementHandle: handle}
	results, err := c.doPut(ctx, "BindParameters", "CommandPreparedStatementQuery", cmd, parameterSchema, parameterData, opts)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 || len(results[0].AppMetadata) == 0 {
		return &BindParametersResult{}, nil
	}
	payload, err := UnpackAny(results[0].AppMetadata)
	if err != nil {
		return nil, err
	}
	var res DoPutPreparedStatementResult
	if err := res.UnmarshalBinary(payload); err != nil {
		return nil, err
	}
	return &BindParametersResult{UpdatedHandle: res.PreparedStatementHandle}, nil
}

// Transaction holds a server-issued transaction id. The client tracks no
// transaction state; validity is enforced entirely by the server.
type Transaction struct {
	ID []byte
}

// BeginTransaction starts a transaction and returns its server-issued id.
func (c *Client) BeginTransaction(ctx context.Context, opts ...CallOption) (*Transaction, error) {
	req := &ActionBeginTransactionRequest{}
	first, err := c.doAction(ctx, "BeginTransaction", ActionTypeBeginTransaction, "ActionBeginTransactionRequest", req, opts)
	if err != nil {
		return nil, err
	}
	if first == nil {
		return nil, resultError("no result returned from begin transaction")
	}
	if len(first.Body) == 0 {
		return nil, resultError("begin transaction result missing body")
	}
	payload, err := UnpackAny(first.Body)
	if err != nil {
		return nil, err
	}
	var res ActionBeginTransactionResult
	if err := res.UnmarshalBinary(payload); err != nil {
		return nil, err
	}
	if len(res.TransactionID) == 0 {
		return nil, resultError("begin transaction returned empty transaction id")
	}
	return &Transaction{ID: res.TransactionID}, nil
}

// CommitTransaction commits the transaction. The id is invalid afterwards.
func (c *Client) CommitTransaction(ctx context.Context, transactionID []byte, opts ...CallOption) error {
	return c.endTransaction(ctx, "CommitTransaction", transactionID, EndTransactionCommit, opts)
}

// RollbackTransaction rolls the transaction back. The id is invalid
// afterwards.
func (c *Client) RollbackTransaction(ctx context.Context, transactionID []byte, opts ...CallOption) error {
	return c.endTransaction(ctx, "RollbackTransaction", transactionID, EndTransactionRollback, opts)
}

func (c *Client) endTransaction(ctx context.Context, op string, txnID []byte, outcome EndTransactionOutcome, opts []CallOption) error {
	if err := validateTransactionID(txnID); err != nil {
		return err
	}
	req := &ActionEndTransactionRequest{TransactionID: txnID, Action: outcome}
	_, err := c.doAction(ctx, op, ActionTypeEndTransaction, "ActionEndTransactionRequest", req, opts)
	return err
}

// TableRef identifies one table for the key-lookup operations. Catalog and
// DBSchema are nil when not filtering by them.
type TableRef struct {
	Catalog  *string
	DBSchema *string
	Table    string
}

// CrossTableRef pairs the primary-key and foreign-key tables for
// GetCrossReference.
type CrossTableRef struct {
	PKRef TableRef
	FKRef TableRef
}

// GetDbSchemasOpts narrows a GetDbSchemas lookup.
type GetDbSchemasOpts = CommandGetDbSchemas

// GetTablesOpts narrows a GetTables lookup.
type GetTablesOpts = CommandGetTables

// GetCatalogs lists the catalogs available on the server.
func (c *Client) GetCatalogs(ctx context.Context, opts ...CallOption) (*FlightInfo, error) {
	return c.getFlightInfo(ctx, "GetCatalogs", "CommandGetCatalogs", &CommandGetCatalogs{}, opts)
}

// GetDbSchemas lists database schemas matching the given options. A nil opts
// lists everything.
func (c *Client) GetDbSchemas(ctx context.Context, cmdOpts *GetDbSchemasOpts, opts ...CallOption) (*FlightInfo, error) {
	if cmdOpts == nil {
		cmdOpts = &GetDbSchemasOpts{}
	}
	return c.getFlightInfo(ctx, "GetDbSchemas", "CommandGetDbSchemas", cmdOpts, opts)
}

// GetTables lists tables matching the given options. A nil opts lists
// everything.
func (c *Client) GetTables(ctx context.Context, cmdOpts *GetTablesOpts, opts ...CallOption) (*FlightInfo, error) {
	if cmdOpts == nil {
		cmdOpts = &GetTablesOpts{}
	}
	return c.getFlightInfo(ctx, "GetTables", "CommandGetTables", cmdOpts, opts)
}

// GetTableTypes lists the table types the server knows about.
func (c *Client) GetTableTypes(ctx context.Context, opts ...CallOption) (*FlightInfo, error) {
	return c.getFlightInfo(ctx, "GetTableTypes", "CommandGetTableTypes", &CommandGetTableTypes{}, opts)
}

// GetPrimaryKeys describes the primary keys of the referenced table.
func (c *Client) GetPrimaryKeys(ctx context.Context, ref TableRef, opts ...CallOption) (*FlightInfo, error) {
	cmd := &CommandGetPrimaryKeys{Catalog: ref.Catalog, DbSchema: ref.DBSchema, Table: ref.Table}
	return c.getFlightInfo(ctx, "GetPrimaryKeys", "CommandGetPrimaryKeys", cmd, opts)
}

// GetExportedKeys describes foreign keys referencing the referenced table.
func (c *Client) GetExportedKeys(ctx context.Context, ref TableRef, opts ...CallOption) (*FlightInfo, error) {
	cmd := &CommandGetExportedKeys{Catalog: ref.Catalog, DbSchema: ref.DBSchema, Table: ref.Table}
	return c.getFlightInfo(ctx, "GetExportedKeys", "CommandGetExportedKeys", cmd, opts)
}

// GetImportedKeys describes foreign keys held by the referenced table.
func (c *Client) GetImportedKeys(ctx context.Context, ref TableRef, opts ...CallOption) (*FlightInfo, error) {
	cmd := &CommandGetImportedKeys{Catalog: ref.Catalog, DbSchema: ref.DBSchema, Table: ref.Table}
	return c.getFlightInfo(ctx, "GetImportedKeys", "CommandGetImportedKeys", cmd, opts)
}

// GetCrossReference describes the foreign key relationship between the
// primary-key table and the foreign-key table.
func (c *Client) GetCrossReference(ctx context.Context, ref CrossTableRef, opts ...CallOption) (*FlightInfo, error) {
	cmd := &CommandGetCrossReference{
		PkCatalog:  ref.PKRef.Catalog,
		PkDbSchema: ref.PKRef.DBSchema,
		PkTable:    ref.PKRef.Table,
		FkCatalog:  ref.FKRef.Catalog,
		FkDbSchema: ref.FKRef.DBSchema,
		FkTable:    ref.FKRef.Table,
	}
	return c.getFlightInfo(ctx, "GetCrossReference", "CommandGetCrossReference", cmd, opts)
}

// GetSqlInfo requests server capability metadata by info code. An empty slice
// asks for everything the server publishes.
func (c *Client) GetSqlInfo(ctx context.Context, info []uint32, opts ...CallOption) (*FlightInfo, error) {
	return c.getFlightInfo(ctx, "GetSqlInfo", "CommandGetSqlInfo", &CommandGetSqlInfo{Info: info}, opts)
}

// GetXdbcTypeInfo requests XDBC type metadata, optionally narrowed to a
// single data type code.
func (c *Client) GetXdbcTypeInfo(ctx context.Context, dataType *int32, opts ...CallOption) (*FlightInfo, error) {
	return c.getFlightInfo(ctx, "GetXdbcTypeInfo", "CommandGetXdbcTypeInfo", &CommandGetXdbcTypeInfo{DataType: dataType}, opts)
}
