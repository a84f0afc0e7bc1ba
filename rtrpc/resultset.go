// Copyright 2026 The rtorrent-rpc Authors
// SPDX-License-Identifier: Apache-2.0

package rtrpc

import "iter"

// Row is one decoded entity row. Values are held in canonical Go form
// matching the declared column types; use [As] for checked typed access.
type Row struct {
	cols []Column
	vals []any
}

// Len returns the number of columns in the row.
func (r Row) Len() int { return len(r.vals) }

// Value returns the untyped value of column i.
func (r Row) Value(i int) any { return r.vals[i] }

// Column returns the declaration of column i.
func (r Row) Column(i int) Column { return r.cols[i] }

// ResultSet holds the fully decoded rows of one multicall, one per remote
// entity, in the order the server returned them. It is read-only: decoding
// happens once at invoke time, and the set may be indexed and iterated any
// number of times.
type ResultSet struct {
	cols []Column
	rows [][]any
}

// Len returns the number of entity rows.
func (rs *ResultSet) Len() int { return len(rs.rows) }

// Columns returns the declared columns in order.
func (rs *ResultSet) Columns() []Column {
	out := make([]Column, len(rs.cols))
	copy(out, rs.cols)
	return out
}

// At returns row i in server order.
func (rs *ResultSet) At(i int) Row {
	return Row{cols: rs.cols, vals: rs.rows[i]}
}

// Rows returns a restartable iterator over all rows in server order.
func (rs *ResultSet) Rows() iter.Seq[Row] {
	return func(yield func(Row) bool) {
		for i := range rs.rows {
			if !yield(rs.At(i)) {
				return
			}
		}
	}
}

// decodeRows checks the raw multicall response against the declared columns
// and converts every value. Decoding is all-or-nothing: the first width or
// type mismatch fails the whole response.
func decodeRows(raw any, cols []Column) (*ResultSet, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, structureErrorf("expected array of rows, got %s", wireKind(raw))
	}
	rows := make([][]any, len(list))
	for i, rr := range list {
		rowVals, ok := rr.([]any)
		if !ok {
			return nil, structureErrorf("row %d: expected array, got %s", i, wireKind(rr))
		}
		if len(rowVals) != len(cols) {
			return nil, structureErrorf("row %d: expected %d columns, got %d", i, len(cols), len(rowVals))
		}
		vals := make([]any, len(cols))
		for j, c := range cols {
			v, err := convertValue(rowVals[j], c.Type)
			if err != nil {
				return nil, structureErrorf("row %d, column %d (%s): %v", i, j, c.Name, err)
			}
			vals[j] = v
		}
		rows[i] = vals
	}
	return &ResultSet{cols: cols, rows: rows}, nil
}
