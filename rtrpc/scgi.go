// Copyright 2026 The rtorrent-rpc Authors
// SPDX-License-Identifier: Apache-2.0

package rtrpc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
)

// SCGITransport speaks rtorrent's native SCGI framing: a netstring of
// CGI-style headers followed by the XML-RPC body, one request per
// connection. This is the protocol rtorrent itself listens on
// (scgi_port / scgi_local), with no web server in between.
type SCGITransport struct {
	// Network is "tcp" or "unix".
	Network string
	// Addr is a host:port for tcp, or a socket path for unix.
	Addr string
	// Dialer controls connection establishment.
	Dialer net.Dialer
}

// NewSCGITransport creates an SCGI transport for the given network and
// address.
func NewSCGITransport(network, addr string) *SCGITransport {
	return &SCGITransport{Network: network, Addr: addr}
}

// Call implements [Transport].
func (t *SCGITransport) Call(ctx context.Context, method string, args ...any) (any, error) {
	body, err := MarshalCall(method, args...)
	if err != nil {
		return nil, err
	}

	conn, err := t.Dialer.DialContext(ctx, t.Network, t.Addr)
	if err != nil {
		return nil, transportError("dial failed", err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if _, err := conn.Write(scgiFrame(body)); err != nil {
		return nil, transportError("writing request", err)
	}
	raw, err := io.ReadAll(conn)
	if err != nil {
		return nil, transportError("reading response", err)
	}

	payload, err := scgiBody(raw)
	if err != nil {
		return nil, err
	}
	return UnmarshalResponse(payload)
}

// scgiFrame wraps an XML-RPC body in SCGI netstring framing.
func scgiFrame(body []byte) []byte {
	var hdr bytes.Buffer
	hdr.WriteString("CONTENT_LENGTH")
	hdr.WriteByte(0)
	hdr.WriteString(strconv.Itoa(len(body)))
	hdr.WriteByte(0)
	hdr.WriteString("SCGI")
	hdr.WriteByte(0)
	hdr.WriteString("1")
	hdr.WriteByte(0)

	var frame bytes.Buffer
	frame.WriteString(strconv.Itoa(hdr.Len()))
	frame.WriteByte(':')
	frame.Write(hdr.Bytes())
	frame.WriteByte(',')
	frame.Write(body)
	return frame.Bytes()
}

// scgiBody strips the CGI response headers, checking the Status line when
// present.
func scgiBody(raw []byte) ([]byte, error) {
	sep := bytes.Index(raw, []byte("\r\n\r\n"))
	if sep < 0 {
		return nil, transportError("malformed SCGI response: missing header separator", nil)
	}
	headers, body := raw[:sep], raw[sep+4:]
	for _, line := range strings.Split(string(headers), "\r\n") {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(name), "Status") {
			status := strings.TrimSpace(value)
			if !strings.HasPrefix(status, "200") {
				return nil, transportError(fmt.Sprintf("unexpected SCGI status %q", status), nil)
			}
		}
	}
	return body, nil
}
