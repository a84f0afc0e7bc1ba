// Copyright 2026 The rtorrent-rpc Authors
// SPDX-License-Identifier: Apache-2.0

package rtrpc

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Arrow export. A decoded ResultSet is already columnar in spirit (a fixed
// column list over homogeneous rows), so it maps directly onto an Arrow
// record batch for handoff to analytical tooling.

// arrowType maps a declared field type to its Arrow data type.
func arrowType(t FieldType) arrow.DataType {
	switch t {
	case FieldString:
		return arrow.BinaryTypes.String
	case FieldInt:
		return arrow.PrimitiveTypes.Int64
	case FieldFloat:
		return arrow.PrimitiveTypes.Float64
	case FieldBool:
		return arrow.FixedWidthTypes.Boolean
	case FieldBytes:
		return arrow.BinaryTypes.Binary
	default:
		panic("rtrpc: unknown field type")
	}
}

// Schema returns the Arrow schema matching the given columns, named by
// remote command name.
func Schema(cols []Column) *arrow.Schema {
	fields := make([]arrow.Field, len(cols))
	for i, c := range cols {
		fields[i] = arrow.Field{Name: c.Name, Type: arrowType(c.Type)}
	}
	return arrow.NewSchema(fields, nil)
}

// RecordBatch converts a ResultSet into an Arrow record batch. Decoded rows
// hold canonical values, so conversion cannot fail. The caller owns the
// returned batch and must Release it.
func RecordBatch(rs *ResultSet) arrow.RecordBatch {
	mem := memory.NewGoAllocator()
	cols := rs.Columns()
	schema := Schema(cols)
	n := rs.Len()

	arrs := make([]arrow.Array, len(cols))
	for j, c := range cols {
		switch c.Type {
		case FieldString:
			b := array.NewStringBuilder(mem)
			for i := 0; i < n; i++ {
				b.Append(rs.rows[i][j].(string))
			}
			arrs[j] = b.NewArray()
			b.Release()
		case FieldInt:
			b := array.NewInt64Builder(mem)
			for i := 0; i < n; i++ {
				b.Append(rs.rows[i][j].(int64))
			}
			arrs[j] = b.NewArray()
			b.Release()
		case FieldFloat:
			b := array.NewFloat64Builder(mem)
			for i := 0; i < n; i++ {
				b.Append(rs.rows[i][j].(float64))
			}
			arrs[j] = b.NewArray()
			b.Release()
		case FieldBool:
			b := array.NewBooleanBuilder(mem)
			for i := 0; i < n; i++ {
				b.Append(rs.rows[i][j].(bool))
			}
			arrs[j] = b.NewArray()
			b.Release()
		case FieldBytes:
			b := array.NewBinaryBuilder(mem, arrow.BinaryTypes.Binary)
			for i := 0; i < n; i++ {
				b.Append(rs.rows[i][j].([]byte))
			}
			arrs[j] = b.NewArray()
			b.Release()
		}
	}
	for _, a := range arrs {
		defer a.Release()
	}

	return array.NewRecordBatch(schema, arrs, int64(n))
}
