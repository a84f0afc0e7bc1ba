// Copyright 2026 The rtorrent-rpc Authors
// SPDX-License-Identifier: Apache-2.0

// Package conformance provides an in-process fake rtorrent endpoint for the
// client conformance test suite. An [Instance] is seeded with download
// fixtures and answers the XML-RPC surface the client exercises: system.*
// introspection, download_list, the four multicall families, single-field
// getters, and state-changing d.* commands.
//
// An Instance serves over HTTP (it is an http.Handler) and over rtorrent's
// native SCGI framing (see [Instance.ServeSCGI]), so both client transports
// can be tested against the same behavior.
package conformance
