// Copyright 2026 The rtorrent-rpc Authors
// SPDX-License-Identifier: Apache-2.0

package rtrpc

import "fmt"

// ErrorKind classifies an Error.
type ErrorKind int

const (
	// KindTransport covers connection failures, HTTP-level faults, and
	// XML-RPC faults reported by the remote.
	KindTransport ErrorKind = iota
	// KindUnexpectedStructure covers responses whose shape disagrees with
	// the declared columns: wrong row width, or a wire value whose type does
	// not match the column's declared type.
	KindUnexpectedStructure
)

func (k ErrorKind) String() string {
	if k == KindTransport {
		return "transport"
	}
	return "unexpected structure"
}

// Sentinels for use with errors.Is to check which kind of failure occurred.
var (
	ErrTransport           = &Error{Kind: KindTransport}
	ErrUnexpectedStructure = &Error{Kind: KindUnexpectedStructure}
)

// Error is the unified error type for this package.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error // underlying transport error, if any
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is supports errors.Is by matching any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func transportError(msg string, err error) *Error {
	return &Error{Kind: KindTransport, Message: msg, Err: err}
}

func structureErrorf(format string, args ...any) *Error {
	return &Error{Kind: KindUnexpectedStructure, Message: fmt.Sprintf(format, args...)}
}

// asPackageError guarantees the error surfaced to callers is an *Error,
// wrapping foreign transport errors as KindTransport.
func asPackageError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*Error); ok {
		return err
	}
	return transportError("call failed", err)
}
