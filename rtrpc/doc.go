// Copyright 2026 The rtorrent-rpc Authors
// SPDX-License-Identifier: Apache-2.0

// Package rtrpc provides strongly-typed Go bindings for the rtorrent
// XML-RPC API.
//
// The top-level type is [Server], a handle to one rtorrent endpoint. It
// opens no connection at construction; every call is a single synchronous
// round trip through a [Transport].
//
//	server := rtrpc.NewServer("http://10.0.0.2/RPC2")
//	host, err := server.Hostname(ctx)
//
// # Multicalls
//
// Reading one field of one download costs one round trip, so inventory-style
// queries ("ratio of every active download") are batched into a single
// "multicall": one RPC that reads an ordered set of named fields across every
// entity in a named collection and returns one row per entity.
//
// A [Query] accumulates typed columns for one entity kind — downloads, files,
// peers, or trackers — and the Invoke1 through Invoke6 functions bind the
// declared columns to a typed row shape at the call site:
//
//	q := rtrpc.NewDownloadQuery(server, "default")
//	rows, err := rtrpc.Invoke2(ctx, q, rtrpc.DName, rtrpc.DRatio)
//	for _, r := range rows {
//		fmt.Printf("%s: ratio %.2f\n", r.V1, r.V2)
//	}
//
// Column descriptors are namespaced by entity kind: a download field
// ([DName]) cannot be added to a file query — that is a compile error, not a
// runtime surprise. For column sets whose arity is only known at runtime,
// [Query.Append] accumulates type-erased [Column] values and
// [Query.Invoke] returns a runtime-checked [ResultSet].
//
// Either way the contract is the same: exactly one round trip, and a response
// whose rows must match the declared columns in width and wire type. A
// mismatch fails the whole call with [ErrUnexpectedStructure] — no partial
// results.
//
// # Transports
//
// The default transport is [HTTPTransport], which posts XML-RPC over HTTP(S)
// with context support and transparent zstd/gzip response decompression.
// [SCGITransport] speaks rtorrent's native SCGI framing over TCP or unix
// sockets; endpoints of the form "scgi://host:port" and "unix:///path"
// select it automatically. Any [Transport] implementation can be injected
// with [WithTransport].
//
// # Observability
//
// A [CallHook] installed via [Server.SetCallHook] is invoked around every
// round trip with method metadata and per-call statistics. The
// rtrpc/otel submodule implements the hook with OpenTelemetry tracing and
// metrics.
//
// # Errors
//
// All failures are surfaced as [Error] values with one of two kinds: transport
// (the round trip itself failed, including XML-RPC faults reported by the
// remote) or unexpected structure (the response shape disagrees with the
// declared columns). Use errors.Is with [ErrTransport] and
// [ErrUnexpectedStructure] to distinguish them.
package rtrpc
