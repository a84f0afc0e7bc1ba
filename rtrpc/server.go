// Copyright 2026 The rtorrent-rpc Authors
// SPDX-License-Identifier: Apache-2.0

package rtrpc

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// Server is a handle to one rtorrent instance, identified by its endpoint
// URI. Construction opens no connection; every call dials through the
// transport independently, so a Server may be shared freely across
// goroutines.
type Server struct {
	endpoint   string
	transport  Transport
	hook       CallHook
	httpClient *http.Client
}

// ServerOption configures a Server at construction.
type ServerOption func(*Server)

// WithTransport replaces the endpoint-derived default transport.
func WithTransport(t Transport) ServerOption {
	return func(s *Server) { s.transport = t }
}

// WithHTTPClient sets the HTTP client used by the default HTTP transport.
// Ignored when WithTransport is also given.
func WithHTTPClient(c *http.Client) ServerOption {
	return func(s *Server) { s.httpClient = c }
}

// WithCallHook installs an observability hook (see also [Server.SetCallHook]).
func WithCallHook(h CallHook) ServerOption {
	return func(s *Server) { s.hook = h }
}

// NewServer creates a handle for the rtorrent instance at the given
// endpoint. It never fails and opens no connection.
//
// The transport is chosen by endpoint scheme: "scgi://host:port" and
// "unix:///path" select [SCGITransport]; anything else is treated as an
// HTTP(S) URL and uses [HTTPTransport].
func NewServer(endpoint string, opts ...ServerOption) *Server {
	s := &Server{endpoint: endpoint}
	for _, opt := range opts {
		opt(s)
	}
	if s.transport == nil {
		s.transport = defaultTransport(endpoint, s.httpClient)
	}
	return s
}

func defaultTransport(endpoint string, client *http.Client) Transport {
	switch {
	case strings.HasPrefix(endpoint, "scgi://"):
		return NewSCGITransport("tcp", strings.TrimPrefix(endpoint, "scgi://"))
	case strings.HasPrefix(endpoint, "unix://"):
		return NewSCGITransport("unix", strings.TrimPrefix(endpoint, "unix://"))
	default:
		t := NewHTTPTransport(endpoint)
		t.Client = client
		return t
	}
}

// Endpoint returns the endpoint URI the handle was created with.
func (s *Server) Endpoint() string { return s.endpoint }

// SetCallHook registers a hook that is called around each round trip.
func (s *Server) SetCallHook(h CallHook) { s.hook = h }

// call performs one single-value RPC through the transport, with hooks.
func (s *Server) call(ctx context.Context, method string, args ...any) (any, error) {
	info := CallInfo{Endpoint: s.endpoint, Method: method}
	ctx, token, active := s.startCall(ctx, info)
	v, err := s.transport.Call(ctx, method, args...)
	err = asPackageError(err)
	s.endCall(ctx, token, active, info, &CallStatistics{Rows: 1, Columns: 1}, err)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// startCall and endCall shield the client from misbehaving hooks: a panic in
// a hook is logged, never propagated into the call path.

func (s *Server) startCall(ctx context.Context, info CallInfo) (context.Context, HookToken, bool) {
	if s.hook == nil {
		return ctx, nil, false
	}
	var token HookToken
	var active bool
	func() {
		defer func() {
			if rv := recover(); rv != nil {
				slog.Error("call hook start panic", "err", rv)
			}
		}()
		var hookCtx context.Context
		hookCtx, token = s.hook.OnCallStart(ctx, info)
		if hookCtx != nil {
			ctx = hookCtx
		}
		active = true
	}()
	return ctx, token, active
}

func (s *Server) endCall(ctx context.Context, token HookToken, active bool, info CallInfo, stats *CallStatistics, err error) {
	if s.hook == nil || !active {
		return
	}
	defer func() {
		if rv := recover(); rv != nil {
			slog.Error("call hook end panic", "err", rv)
		}
	}()
	s.hook.OnCallEnd(ctx, token, info, stats, err)
}

// callAs pairs a single-value call with the declared result type.

func callText(ctx context.Context, s *Server, method string, args ...any) (string, error) {
	return callAs[string](ctx, s, FieldString, method, args...)
}

func callInt(ctx context.Context, s *Server, method string, args ...any) (int64, error) {
	return callAs[int64](ctx, s, FieldInt, method, args...)
}

func callFloat(ctx context.Context, s *Server, method string, args ...any) (float64, error) {
	return callAs[float64](ctx, s, FieldFloat, method, args...)
}

func callBool(ctx context.Context, s *Server, method string, args ...any) (bool, error) {
	return callAs[bool](ctx, s, FieldBool, method, args...)
}

func callAs[T FieldValue](ctx context.Context, s *Server, t FieldType, method string, args ...any) (T, error) {
	var zero T
	raw, err := s.call(ctx, method, args...)
	if err != nil {
		return zero, err
	}
	v, err := convertValue(raw, t)
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

// System-level accessors. Each is a single synchronous round trip.

// Hostname returns the hostname of the machine running rtorrent.
func (s *Server) Hostname(ctx context.Context) (string, error) {
	return callText(ctx, s, "system.hostname")
}

// ClientVersion returns the rtorrent version string.
func (s *Server) ClientVersion(ctx context.Context) (string, error) {
	return callText(ctx, s, "system.client_version")
}

// LibraryVersion returns the libtorrent version string.
func (s *Server) LibraryVersion(ctx context.Context) (string, error) {
	return callText(ctx, s, "system.library_version")
}

// APIVersion returns the XML-RPC API version.
func (s *Server) APIVersion(ctx context.Context) (string, error) {
	return callText(ctx, s, "system.api_version")
}

// ProcessID returns the PID of the rtorrent process.
func (s *Server) ProcessID(ctx context.Context) (int64, error) {
	return callInt(ctx, s, "system.pid")
}

// ListenPort returns the port rtorrent listens on for peer connections.
func (s *Server) ListenPort(ctx context.Context) (int64, error) {
	return callInt(ctx, s, "network.listen.port")
}

// DownRate returns the current global download rate in bytes per second.
func (s *Server) DownRate(ctx context.Context) (int64, error) {
	return callInt(ctx, s, "throttle.global_down.rate")
}

// UpRate returns the current global upload rate in bytes per second.
func (s *Server) UpRate(ctx context.Context) (int64, error) {
	return callInt(ctx, s, "throttle.global_up.rate")
}

// ListMethods returns the names of all methods the remote exposes
// (system.listMethods introspection).
func (s *Server) ListMethods(ctx context.Context) ([]string, error) {
	raw, err := s.call(ctx, "system.listMethods")
	if err != nil {
		return nil, err
	}
	arr, ok := raw.([]any)
	if !ok {
		return nil, structureErrorf("expected array of method names, got %s", wireKind(raw))
	}
	names := make([]string, len(arr))
	for i, e := range arr {
		name, ok := e.(string)
		if !ok {
			return nil, structureErrorf("method name %d: expected string, got %s", i, wireKind(e))
		}
		names[i] = name
	}
	return names, nil
}

// DownloadList returns a handle for every download in the given view.
// An empty view selects "default".
func (s *Server) DownloadList(ctx context.Context, view string) ([]Download, error) {
	if view == "" {
		view = "default"
	}
	raw, err := s.call(ctx, "download_list", view)
	if err != nil {
		return nil, err
	}
	arr, ok := raw.([]any)
	if !ok {
		return nil, structureErrorf("expected array of infohashes, got %s", wireKind(raw))
	}
	downloads := make([]Download, len(arr))
	for i, e := range arr {
		hash, ok := e.(string)
		if !ok {
			return nil, structureErrorf("infohash %d: expected string, got %s", i, wireKind(e))
		}
		downloads[i] = Download{s: s, hash: hash}
	}
	return downloads, nil
}

// Download returns a handle to the download with the given infohash.
// No remote call is made; the hash is not validated.
func (s *Server) Download(hash string) Download {
	return Download{s: s, hash: hash}
}

// AddTorrent loads a torrent metafile into rtorrent and starts it.
func (s *Server) AddTorrent(ctx context.Context, metafile []byte) error {
	_, err := s.call(ctx, "load.raw_start", "", metafile)
	return err
}

// AddTorrentStopped loads a torrent metafile without starting it.
func (s *Server) AddTorrentStopped(ctx context.Context, metafile []byte) error {
	_, err := s.call(ctx, "load.raw", "", metafile)
	return err
}
