// Copyright 2026 The rtorrent-rpc Authors
// SPDX-License-Identifier: Apache-2.0

package rtrpc

// FieldType identifies the declared wire type of a remote field.
type FieldType int

const (
	// FieldString is UTF-8 text.
	FieldString FieldType = iota
	// FieldInt is a 64-bit signed integer (the <i8> wire extension).
	FieldInt
	// FieldFloat is a double-precision float.
	FieldFloat
	// FieldBool is a boolean. The remote encodes booleans as the integers 0
	// and 1, which are accepted alongside native <boolean> values.
	FieldBool
	// FieldBytes is a raw byte sequence (base64 on the wire).
	FieldBytes
)

func (t FieldType) String() string {
	switch t {
	case FieldString:
		return "string"
	case FieldInt:
		return "i8"
	case FieldFloat:
		return "double"
	case FieldBool:
		return "boolean"
	case FieldBytes:
		return "base64"
	default:
		return "unknown"
	}
}

// FieldValue is the closed set of Go types a remote field decodes to.
type FieldValue interface {
	~string | ~int64 | ~float64 | ~bool | ~[]byte
}

// EntityKind constrains field descriptors and queries to one of the four
// remote collection kinds. Fields are not interchangeable across kinds.
type EntityKind interface {
	Download | File | Peer | Tracker
}

// Field describes one remote operation: its fully qualified command name and
// its declared result type. E pins the entity kind the field belongs to and
// T the Go type it decodes to, so a query for one kind rejects fields of
// another at compile time.
//
// Fields are pure data, constructed once as package-level vars (see the
// D*, F*, P*, and T* catalogs); equality is by remote name.
type Field[E EntityKind, T FieldValue] struct {
	name string
	typ  FieldType
}

// RemoteName returns the fully qualified command name, e.g. "d.name".
func (f Field[E, T]) RemoteName() string { return f.name }

// Type returns the declared result type.
func (f Field[E, T]) Type() FieldType { return f.typ }

// Column erases the static type for use with [Query.Append].
func (f Field[E, T]) Column() Column { return Column{Name: f.name, Type: f.typ} }

// Column is a type-erased multicall column: a remote command name paired
// with its declared result type.
type Column struct {
	Name string
	Type FieldType
}

// The typed constructors below pair each Go result type with its wire tag
// exactly once, so a descriptor's static type and its runtime tag cannot
// disagree.

func textField[E EntityKind](prefix, short string) Field[E, string] {
	return Field[E, string]{name: prefix + short, typ: FieldString}
}

func intField[E EntityKind](prefix, short string) Field[E, int64] {
	return Field[E, int64]{name: prefix + short, typ: FieldInt}
}

func floatField[E EntityKind](prefix, short string) Field[E, float64] {
	return Field[E, float64]{name: prefix + short, typ: FieldFloat}
}

func boolField[E EntityKind](prefix, short string) Field[E, bool] {
	return Field[E, bool]{name: prefix + short, typ: FieldBool}
}
