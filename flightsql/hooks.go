// © Copyright 2025-2026, Qualithm - https://qualithm.dev
// SPDX-License-Identifier: Apache-2.0

package flightsql

import "context"

// Call type string constants for CallInfo.CallType.
const (
	CallTypeInfo   = "info"
	CallTypePut    = "put"
	CallTypeAction = "action"
	CallTypeGet    = "get"
)

// CallHook provides observability callpoints around logical client calls.
// Implementations must be safe for concurrent use (callers may issue
// operations in parallel against one client).
type CallHook interface {
	OnCallStart(ctx context.Context, info CallInfo) (context.Context, HookToken)
	OnCallEnd(ctx context.Context, token HookToken, info CallInfo, stats *CallStatistics, err error)
}

// HookToken is an opaque value returned by OnCallStart and passed back to
// OnCallEnd. Only meaningful to the CallHook that created it.
type HookToken interface{}

// CallInfo carries operation metadata passed to hooks.
type CallInfo struct {
	Operation string // logical operation name, e.g. "ExecuteUpdate"
	CallType  string // one of the CallType constants
}

// CallStatistics holds per-call I/O counters.
type CallStatistics struct {
	ResponseItems int64 // control/action items received
	DataChunks    int64 // data chunks received
	DataBytes     int64 // header + body bytes received
}

// RecordItem records one control or action response item.
func (s *CallStatistics) RecordItem() {
	s.ResponseItems++
}

// RecordChunk records one received data chunk of the given size.
func (s *CallStatistics) RecordChunk(sizeBytes int64) {
	s.DataChunks++
	s.DataBytes += sizeBytes
}
