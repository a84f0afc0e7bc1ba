// Copyright 2026 The rtorrent-rpc Authors
// SPDX-License-Identifier: Apache-2.0

package rtrpc

import (
	"context"
	"strconv"
)

// File is a handle to one file within a download, addressed by the
// download's infohash and the file's index.
type File struct {
	s     *Server
	hash  string
	index int
}

// Index returns the file's index within its download.
func (f File) Index() int { return f.index }

// target is the "<infohash>:f<index>" form f.* single-target commands take.
func (f File) target() string {
	return f.hash + ":f" + strconv.Itoa(f.index)
}

// File field descriptors (f.* commands).
var (
	FPath            = textField[File]("f.", "path")
	FFrozenPath      = textField[File]("f.", "frozen_path")
	FSizeBytes       = intField[File]("f.", "size_bytes")
	FSizeChunks      = intField[File]("f.", "size_chunks")
	FCompletedChunks = intField[File]("f.", "completed_chunks")
	FPriority        = intField[File]("f.", "priority")
	FOffset          = intField[File]("f.", "offset")
	FLastTouched     = intField[File]("f.", "last_touched")
	FIsCreated       = boolField[File]("f.", "is_created")
	FIsOpen          = boolField[File]("f.", "is_open")
)

// Path returns the file's path relative to the download's base directory.
func (f File) Path(ctx context.Context) (string, error) {
	return callText(ctx, f.s, FPath.RemoteName(), f.target())
}

// SizeBytes returns the file's size.
func (f File) SizeBytes(ctx context.Context) (int64, error) {
	return callInt(ctx, f.s, FSizeBytes.RemoteName(), f.target())
}

// CompletedChunks returns the number of completed chunks touching the file.
func (f File) CompletedChunks(ctx context.Context) (int64, error) {
	return callInt(ctx, f.s, FCompletedChunks.RemoteName(), f.target())
}

// Priority returns the file's download priority (0 off, 1 normal, 2 high).
func (f File) Priority(ctx context.Context) (int64, error) {
	return callInt(ctx, f.s, FPriority.RemoteName(), f.target())
}

// SetPriority sets the file's download priority (0 off, 1 normal, 2 high).
func (f File) SetPriority(ctx context.Context, priority int64) error {
	_, err := f.s.call(ctx, "f.priority.set", f.target(), priority)
	return err
}
