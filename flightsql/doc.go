// © Copyright 2025-2026, Qualithm - https://qualithm.dev
// SPDX-License-Identifier: Apache-2.0

// Package flightsql implements a Go client adapter for the Arrow Flight SQL
// protocol: a relational-database-style API (queries, updates, prepared
// statements, transactions, catalog introspection) expressed over the generic
// Flight transport primitives.
//
// The package's job is message construction and interpretation. Each logical
// operation is encoded into a self-describing Any envelope, wrapped in a
// command descriptor or action, and handed to a [Transport]; responses are
// unwrapped and decoded into typed results. The package performs no SQL
// parsing, no execution, and no connection management.
//
// # Operation shapes
//
// Three sequencing shapes cover every operation:
//
//   - Single-request: queries and all metadata lookups issue one GetFlightInfo
//     call. The response carries endpoints whose tickets are redeemed later
//     via [Client.ReadTable] or [Client.ReadChunks].
//   - Write-stream: updates and parameter binding send one descriptor-bearing
//     message on a DoPut stream, close it, and decode the affected-row count
//     (or updated handle) from the control message's metadata side channel.
//   - Action: prepared statement and transaction lifecycle calls invoke a
//     generic DoAction and take the first (or, for close/end, no) result.
//
// # Transports
//
// [Transport] is the capability surface the client needs; the grpctransport
// package binds it to a gRPC connection speaking the standard
// arrow.flight.protocol.FlightService methods. Tests substitute mocks.
//
// # Errors
//
// Invalid inputs fail before any network activity with a *[ProtocolError] of
// kind ValidationError. Missing or empty required responses fail with kind
// ResultError and a fixed per-operation message. Transport errors propagate
// untouched. BindParameters is the one operation where an absent response is
// success, to support servers predating the updated-handle feature.
package flightsql
