// Copyright 2026 The rtorrent-rpc Authors
// SPDX-License-Identifier: Apache-2.0

package conformance

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net"
	"strconv"
)

// ServeSCGI accepts connections on the listener and answers one SCGI-framed
// XML-RPC request per connection, the way rtorrent's scgi_port and
// scgi_local endpoints do. It returns when the listener is closed.
func (in *Instance) ServeSCGI(l net.Listener) error {
	for {
		conn, err := l.Accept()
		if err != nil {
			return err
		}
		in.serveSCGIConn(conn)
		conn.Close()
	}
}

func (in *Instance) serveSCGIConn(conn net.Conn) {
	body, err := readSCGIRequest(conn)
	if err != nil {
		return
	}
	payload := in.Handle(body)
	fmt.Fprintf(conn, "Status: 200 OK\r\nContent-Type: text/xml\r\nContent-Length: %d\r\n\r\n", len(payload))
	conn.Write(payload)
}

// readSCGIRequest parses the netstring header block and reads the body.
func readSCGIRequest(r io.Reader) ([]byte, error) {
	br := bufio.NewReader(r)

	lenStr, err := br.ReadString(':')
	if err != nil {
		return nil, err
	}
	headerLen, err := strconv.Atoi(lenStr[:len(lenStr)-1])
	if err != nil || headerLen < 0 {
		return nil, fmt.Errorf("malformed netstring length %q", lenStr)
	}
	headers := make([]byte, headerLen+1) // header block plus trailing comma
	if _, err := io.ReadFull(br, headers); err != nil {
		return nil, err
	}
	if headers[headerLen] != ',' {
		return nil, fmt.Errorf("missing netstring terminator")
	}

	contentLength := 0
	fields := bytes.Split(headers[:headerLen], []byte{0})
	for i := 0; i+1 < len(fields); i += 2 {
		if string(fields[i]) == "CONTENT_LENGTH" {
			contentLength, err = strconv.Atoi(string(fields[i+1]))
			if err != nil {
				return nil, err
			}
		}
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(br, body); err != nil {
		return nil, err
	}
	return body, nil
}
