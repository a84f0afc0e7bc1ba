// Copyright 2026 The rtorrent-rpc Authors
// SPDX-License-Identifier: Apache-2.0

package rtrpc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Transport executes one XML-RPC method call against a remote endpoint and
// returns the single response value in untyped form. Implementations must be
// safe for concurrent use; each call is independent and owns its own request
// and response.
type Transport interface {
	Call(ctx context.Context, method string, args ...any) (any, error)
}

// HTTPTransport posts XML-RPC requests to an rtorrent HTTP(S) endpoint,
// typically a web server proxying /RPC2 to the rtorrent SCGI socket.
//
// Responses compressed with zstd or gzip are decompressed transparently;
// both encodings are advertised on every request.
type HTTPTransport struct {
	// Endpoint is the full URL of the XML-RPC entry point.
	Endpoint string
	// Client is the HTTP client used for requests. Defaults to
	// http.DefaultClient.
	Client *http.Client
}

// NewHTTPTransport creates an HTTP transport for the given endpoint URL.
func NewHTTPTransport(endpoint string) *HTTPTransport {
	return &HTTPTransport{Endpoint: endpoint}
}

// Call implements [Transport].
func (t *HTTPTransport) Call(ctx context.Context, method string, args ...any) (any, error) {
	body, err := MarshalCall(method, args...)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, transportError("building request", err)
	}
	req.Header.Set("Content-Type", "text/xml")
	req.Header.Set("Accept-Encoding", "zstd, gzip")

	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, transportError("request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, transportError(fmt.Sprintf("unexpected HTTP status %s", resp.Status), nil)
	}

	var rd io.Reader = resp.Body
	switch resp.Header.Get("Content-Encoding") {
	case "zstd":
		zr, err := zstd.NewReader(resp.Body)
		if err != nil {
			return nil, transportError("zstd response", err)
		}
		defer zr.Close()
		rd = zr
	case "gzip":
		gr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, transportError("gzip response", err)
		}
		defer gr.Close()
		rd = gr
	}

	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, transportError("reading response", err)
	}
	slog.Debug("xmlrpc call", "method", method, "request_bytes", len(body), "response_bytes", len(data))

	return UnmarshalResponse(data)
}
