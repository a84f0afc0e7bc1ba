// Copyright 2026 The rtorrent-rpc Authors
// SPDX-License-Identifier: Apache-2.0

package rtrpc

// Value conversion between untyped wire values (as produced by the XML-RPC
// decoder: string, int64, float64, bool, []byte, []any, map[string]any) and
// the declared field types. Conversion is exact; a wire value whose type does
// not match the declared type fails with KindUnexpectedStructure. This layer
// knows nothing about entity kinds or command names.

// convertValue checks an untyped wire value against the declared type and
// returns it in canonical Go form (string, int64, float64, bool, or []byte).
func convertValue(v any, t FieldType) (any, error) {
	switch t {
	case FieldString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case FieldInt:
		if i, ok := v.(int64); ok {
			return i, nil
		}
	case FieldFloat:
		// Several remote fields declared floating point arrive as integers
		// (d.ratio among them); integers promote losslessly enough here.
		switch f := v.(type) {
		case float64:
			return f, nil
		case int64:
			return float64(f), nil
		}
	case FieldBool:
		// The remote reports most boolean fields as 0/1 integers.
		switch b := v.(type) {
		case bool:
			return b, nil
		case int64:
			if b == 0 {
				return false, nil
			}
			if b == 1 {
				return true, nil
			}
			return nil, structureErrorf("expected boolean, got integer %d", b)
		}
	case FieldBytes:
		if b, ok := v.([]byte); ok {
			return b, nil
		}
	default:
		return nil, structureErrorf("unknown field type %d", int(t))
	}
	return nil, structureErrorf("expected %s, got %s", t, wireKind(v))
}

// wireKind names the wire-level type of an untyped value for error messages.
func wireKind(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case string:
		return "string"
	case int64:
		return "i8"
	case float64:
		return "double"
	case bool:
		return "boolean"
	case []byte:
		return "base64"
	case []any:
		return "array"
	case map[string]any:
		return "struct"
	default:
		return "unsupported value"
	}
}

// As returns the value of column i in row as type T, verifying that T matches
// the column's declared type. Decoded rows hold canonical values, so the
// assertion only fails when T disagrees with the declaration.
func As[T FieldValue](row Row, i int) (T, error) {
	var zero T
	if i < 0 || i >= len(row.vals) {
		return zero, structureErrorf("column index %d out of range (row has %d columns)", i, len(row.vals))
	}
	v, ok := row.vals[i].(T)
	if !ok {
		return zero, structureErrorf("column %d (%s) is %s, not the requested type",
			i, row.cols[i].Name, row.cols[i].Type)
	}
	return v, nil
}
