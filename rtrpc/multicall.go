// Copyright 2026 The rtorrent-rpc Authors
// SPDX-License-Identifier: Apache-2.0

package rtrpc

import "context"

// Query accumulates an ordered set of declared columns for one batched call
// over a collection of entities of kind E, then performs exactly one round
// trip when invoked.
//
// A Query is exclusively owned by the call site that builds it and is
// consumed by Invoke; it must not be shared or reused. Invoking a consumed
// query panics.
type Query[E EntityKind] struct {
	server  *Server
	method  string
	prefix  []any // leading arguments before the column commands
	columns []Column
	done    bool
}

// NewDownloadQuery starts a multicall over the downloads in the named view
// (d.multicall2). Views usually include "main", "default", "started",
// "stopped", "complete", "incomplete", "seeding", "leeching", "active", and
// "hashing".
func NewDownloadQuery(s *Server, view string) *Query[Download] {
	// The leading empty argument is the protocol-mandated placeholder.
	return &Query[Download]{server: s, method: "d.multicall2", prefix: []any{"", view}}
}

// NewFileQuery starts a multicall over the files of the download with the
// given infohash (f.multicall).
func NewFileQuery(s *Server, hash string) *Query[File] {
	return &Query[File]{server: s, method: "f.multicall", prefix: []any{hash, ""}}
}

// NewPeerQuery starts a multicall over the connected peers of the download
// with the given infohash (p.multicall).
func NewPeerQuery(s *Server, hash string) *Query[Peer] {
	return &Query[Peer]{server: s, method: "p.multicall", prefix: []any{hash, ""}}
}

// NewTrackerQuery starts a multicall over the trackers of the download with
// the given infohash (t.multicall).
func NewTrackerQuery(s *Server, hash string) *Query[Tracker] {
	return &Query[Tracker]{server: s, method: "t.multicall", prefix: []any{hash, ""}}
}

// Append adds type-erased columns to the query, preserving order. It exists
// for column sets whose arity is only known at runtime; prefer the typed
// Invoke1 through Invoke6 for fixed column sets.
func (q *Query[E]) Append(cols ...Column) *Query[E] {
	if q.done {
		panic("rtrpc: query already invoked")
	}
	q.columns = append(q.columns, cols...)
	return q
}

// Columns returns the declared columns in order.
func (q *Query[E]) Columns() []Column {
	out := make([]Column, len(q.columns))
	copy(out, q.columns)
	return out
}

// Method returns the batched remote method name, e.g. "d.multicall2".
func (q *Query[E]) Method() string { return q.method }

// Invoke issues the single batched round trip and decodes the response
// against the declared columns. It consumes the query. A query with zero
// columns is legal and yields one empty row per entity.
//
// On failure no partial results are returned: the error is either transport
// (the round trip failed) or unexpected structure (a response row's width or
// a value's wire type disagrees with the declaration).
func (q *Query[E]) Invoke(ctx context.Context) (*ResultSet, error) {
	if q.done {
		panic("rtrpc: query already invoked")
	}
	q.done = true

	args := make([]any, 0, len(q.prefix)+len(q.columns))
	args = append(args, q.prefix...)
	for _, c := range q.columns {
		// Trailing "=" is the no-argument command form multicalls require.
		args = append(args, c.Name+"=")
	}

	s := q.server
	info := CallInfo{Endpoint: s.endpoint, Method: q.method, Batched: true, Columns: len(q.columns)}
	ctx, token, active := s.startCall(ctx, info)

	raw, err := s.transport.Call(ctx, q.method, args...)
	err = asPackageError(err)
	var rs *ResultSet
	if err == nil {
		rs, err = decodeRows(raw, q.Columns())
	}

	stats := &CallStatistics{Columns: int64(len(q.columns))}
	if rs != nil {
		stats.Rows = int64(rs.Len())
	}
	s.endCall(ctx, token, active, info, stats, err)

	if err != nil {
		return nil, err
	}
	return rs, nil
}

// The InvokeN functions bind N typed columns to the query and perform the
// round trip, returning one typed row per entity in server order. The
// declared column list and the decoded row shape cannot drift apart: both
// are fixed by the same arguments before the network call happens.

// Invoke1 performs the round trip with a single typed column.
func Invoke1[E EntityKind, A FieldValue](ctx context.Context, q *Query[E], fa Field[E, A]) ([]A, error) {
	base := len(q.columns)
	rs, err := q.Append(fa.Column()).Invoke(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]A, rs.Len())
	for i := range out {
		if out[i], err = As[A](rs.At(i), base); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Row2 is a typed two-column multicall row.
type Row2[A, B FieldValue] struct {
	V1 A
	V2 B
}

// Invoke2 performs the round trip with two typed columns.
func Invoke2[E EntityKind, A, B FieldValue](ctx context.Context, q *Query[E], fa Field[E, A], fb Field[E, B]) ([]Row2[A, B], error) {
	base := len(q.columns)
	rs, err := q.Append(fa.Column(), fb.Column()).Invoke(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Row2[A, B], rs.Len())
	for i := range out {
		row := rs.At(i)
		if out[i].V1, err = As[A](row, base); err != nil {
			return nil, err
		}
		if out[i].V2, err = As[B](row, base+1); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Row3 is a typed three-column multicall row.
type Row3[A, B, C FieldValue] struct {
	V1 A
	V2 B
	V3 C
}

// Invoke3 performs the round trip with three typed columns.
func Invoke3[E EntityKind, A, B, C FieldValue](ctx context.Context, q *Query[E],
	fa Field[E, A], fb Field[E, B], fc Field[E, C]) ([]Row3[A, B, C], error) {
	base := len(q.columns)
	rs, err := q.Append(fa.Column(), fb.Column(), fc.Column()).Invoke(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Row3[A, B, C], rs.Len())
	for i := range out {
		row := rs.At(i)
		if out[i].V1, err = As[A](row, base); err != nil {
			return nil, err
		}
		if out[i].V2, err = As[B](row, base+1); err != nil {
			return nil, err
		}
		if out[i].V3, err = As[C](row, base+2); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Row4 is a typed four-column multicall row.
type Row4[A, B, C, D FieldValue] struct {
	V1 A
	V2 B
	V3 C
	V4 D
}

// Invoke4 performs the round trip with four typed columns.
func Invoke4[E EntityKind, A, B, C, D FieldValue](ctx context.Context, q *Query[E],
	fa Field[E, A], fb Field[E, B], fc Field[E, C], fd Field[E, D]) ([]Row4[A, B, C, D], error) {
	base := len(q.columns)
	rs, err := q.Append(fa.Column(), fb.Column(), fc.Column(), fd.Column()).Invoke(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Row4[A, B, C, D], rs.Len())
	for i := range out {
		row := rs.At(i)
		if out[i].V1, err = As[A](row, base); err != nil {
			return nil, err
		}
		if out[i].V2, err = As[B](row, base+1); err != nil {
			return nil, err
		}
		if out[i].V3, err = As[C](row, base+2); err != nil {
			return nil, err
		}
		if out[i].V4, err = As[D](row, base+3); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Row5 is a typed five-column multicall row.
type Row5[A, B, C, D, F FieldValue] struct {
	V1 A
	V2 B
	V3 C
	V4 D
	V5 F
}

// Invoke5 performs the round trip with five typed columns.
func Invoke5[E EntityKind, A, B, C, D, F FieldValue](ctx context.Context, q *Query[E],
	fa Field[E, A], fb Field[E, B], fc Field[E, C], fd Field[E, D], ff Field[E, F]) ([]Row5[A, B, C, D, F], error) {
	base := len(q.columns)
	rs, err := q.Append(fa.Column(), fb.Column(), fc.Column(), fd.Column(), ff.Column()).Invoke(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Row5[A, B, C, D, F], rs.Len())
	for i := range out {
		row := rs.At(i)
		if out[i].V1, err = As[A](row, base); err != nil {
			return nil, err
		}
		if out[i].V2, err = As[B](row, base+1); err != nil {
			return nil, err
		}
		if out[i].V3, err = As[C](row, base+2); err != nil {
			return nil, err
		}
		if out[i].V4, err = As[D](row, base+3); err != nil {
			return nil, err
		}
		if out[i].V5, err = As[F](row, base+4); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Row6 is a typed six-column multicall row.
type Row6[A, B, C, D, F, G FieldValue] struct {
	V1 A
	V2 B
	V3 C
	V4 D
	V5 F
	V6 G
}

// Invoke6 performs the round trip with six typed columns.
func Invoke6[E EntityKind, A, B, C, D, F, G FieldValue](ctx context.Context, q *Query[E],
	fa Field[E, A], fb Field[E, B], fc Field[E, C], fd Field[E, D], ff Field[E, F], fg Field[E, G]) ([]Row6[A, B, C, D, F, G], error) {
	base := len(q.columns)
	rs, err := q.Append(fa.Column(), fb.Column(), fc.Column(), fd.Column(), ff.Column(), fg.Column()).Invoke(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Row6[A, B, C, D, F, G], rs.Len())
	for i := range out {
		row := rs.At(i)
		if out[i].V1, err = As[A](row, base); err != nil {
			return nil, err
		}
		if out[i].V2, err = As[B](row, base+1); err != nil {
			return nil, err
		}
		if out[i].V3, err = As[C](row, base+2); err != nil {
			return nil, err
		}
		if out[i].V4, err = As[D](row, base+3); err != nil {
			return nil, err
		}
		if out[i].V5, err = As[F](row, base+4); err != nil {
			return nil, err
		}
		if out[i].V6, err = As[G](row, base+5); err != nil {
			return nil, err
		}
	}
	return out, nil
}
