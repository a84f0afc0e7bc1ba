// Copyright 2026 The rtorrent-rpc Authors
// SPDX-License-Identifier: Apache-2.0

package rtrpc

import "context"

// CallHook provides observability callpoints around RPC round trips.
// Implementations must be safe for concurrent use; independent invokes may
// run in parallel.
type CallHook interface {
	OnCallStart(ctx context.Context, info CallInfo) (context.Context, HookToken)
	OnCallEnd(ctx context.Context, token HookToken, info CallInfo, stats *CallStatistics, err error)
}

// HookToken is an opaque value returned by OnCallStart and passed back to
// OnCallEnd. Only meaningful to the CallHook that created it.
type HookToken interface{}

// CallInfo carries call metadata passed to hooks.
type CallInfo struct {
	Endpoint string // server endpoint URI
	Method   string // remote method name
	Batched  bool   // true for multicall round trips
	Columns  int    // declared column count (multicalls only)
}

// CallStatistics holds per-call counters reported to OnCallEnd.
type CallStatistics struct {
	Rows    int64 // decoded entity rows (1 for single-field calls)
	Columns int64 // declared columns (1 for single-field calls)
}
