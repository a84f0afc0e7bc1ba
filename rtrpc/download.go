// Copyright 2026 The rtorrent-rpc Authors
// SPDX-License-Identifier: Apache-2.0

package rtrpc

import "context"

// Download is a handle to one download on a server, identified by its
// infohash. The zero value is not usable; obtain handles from
// [Server.Download] or [Server.DownloadList].
type Download struct {
	s    *Server
	hash string
}

// Hash returns the download's infohash.
func (d Download) Hash() string { return d.hash }

// Server returns the server the handle belongs to.
func (d Download) Server() *Server { return d.s }

// Download field descriptors. Each is the d.* command of the same name;
// rarely used fields can be reached by declaring additional descriptors with
// the remote command name, these cover the common inventory.
var (
	DHash            = textField[Download]("d.", "hash")
	DName            = textField[Download]("d.", "name")
	DBaseFilename    = textField[Download]("d.", "base_filename")
	DBasePath        = textField[Download]("d.", "base_path")
	DDirectory       = textField[Download]("d.", "directory")
	DDirectoryBase   = textField[Download]("d.", "directory_base")
	DChunkSize       = intField[Download]("d.", "chunk_size")
	DComplete        = intField[Download]("d.", "complete")
	DIncomplete      = intField[Download]("d.", "incomplete")
	DCompletedBytes  = intField[Download]("d.", "completed_bytes")
	DCompletedChunks = intField[Download]("d.", "completed_chunks")
	DDownRate        = intField[Download]("d.", "down.rate")
	DDownTotal       = intField[Download]("d.", "down.total")
	DUpRate          = intField[Download]("d.", "up.rate")
	DUpTotal         = intField[Download]("d.", "up.total")
	DIsActive        = boolField[Download]("d.", "is_active")
	DIsOpen          = boolField[Download]("d.", "is_open")
	DIsClosed        = boolField[Download]("d.", "is_closed")
	DLoadedFile      = textField[Download]("d.", "loaded_file")
	DMessage         = textField[Download]("d.", "message")
	DRatio           = floatField[Download]("d.", "ratio")
	DSizeBytes       = intField[Download]("d.", "size_bytes")
	DSizeFiles       = intField[Download]("d.", "size_files")
	DState           = boolField[Download]("d.", "state")
	DTiedToFile      = textField[Download]("d.", "tied_to_file")
	DTrackerSize     = intField[Download]("d.", "tracker_size")
)

// Single-field accessors. Each is one synchronous round trip; when reading
// several fields, or reading across many downloads, prefer a multicall.

// Name returns the download's display name.
func (d Download) Name(ctx context.Context) (string, error) {
	return callText(ctx, d.s, DName.RemoteName(), d.hash)
}

// BasePath returns the absolute path of the download's data.
func (d Download) BasePath(ctx context.Context) (string, error) {
	return callText(ctx, d.s, DBasePath.RemoteName(), d.hash)
}

// Directory returns the download's base directory.
func (d Download) Directory(ctx context.Context) (string, error) {
	return callText(ctx, d.s, DDirectory.RemoteName(), d.hash)
}

// Message returns the most recent tracker or error message.
func (d Download) Message(ctx context.Context) (string, error) {
	return callText(ctx, d.s, DMessage.RemoteName(), d.hash)
}

// SizeBytes returns the total size of the download's data.
func (d Download) SizeBytes(ctx context.Context) (int64, error) {
	return callInt(ctx, d.s, DSizeBytes.RemoteName(), d.hash)
}

// CompletedBytes returns the number of bytes already downloaded.
func (d Download) CompletedBytes(ctx context.Context) (int64, error) {
	return callInt(ctx, d.s, DCompletedBytes.RemoteName(), d.hash)
}

// DownRate returns the download rate in bytes per second.
func (d Download) DownRate(ctx context.Context) (int64, error) {
	return callInt(ctx, d.s, DDownRate.RemoteName(), d.hash)
}

// UpRate returns the upload rate in bytes per second.
func (d Download) UpRate(ctx context.Context) (int64, error) {
	return callInt(ctx, d.s, DUpRate.RemoteName(), d.hash)
}

// Ratio returns the upload/download ratio as the remote reports it. Most
// rtorrent builds report thousandths, so 1500 means a ratio of 1.5.
func (d Download) Ratio(ctx context.Context) (float64, error) {
	return callFloat(ctx, d.s, DRatio.RemoteName(), d.hash)
}

// IsActive reports whether the download is currently active.
func (d Download) IsActive(ctx context.Context) (bool, error) {
	return callBool(ctx, d.s, DIsActive.RemoteName(), d.hash)
}

// IsOpen reports whether the download is open.
func (d Download) IsOpen(ctx context.Context) (bool, error) {
	return callBool(ctx, d.s, DIsOpen.RemoteName(), d.hash)
}

// Complete reports whether the download has all its data.
func (d Download) Complete(ctx context.Context) (bool, error) {
	return callBool(ctx, d.s, DComplete.RemoteName(), d.hash)
}

// Actions. Each issues the corresponding d.* command and discards the
// integer status the remote returns.

// Start activates the download.
func (d Download) Start(ctx context.Context) error {
	_, err := d.s.call(ctx, "d.start", d.hash)
	return err
}

// Stop deactivates the download without closing its files.
func (d Download) Stop(ctx context.Context) error {
	_, err := d.s.call(ctx, "d.stop", d.hash)
	return err
}

// Open opens the download's files.
func (d Download) Open(ctx context.Context) error {
	_, err := d.s.call(ctx, "d.open", d.hash)
	return err
}

// Close closes the download's files.
func (d Download) Close(ctx context.Context) error {
	_, err := d.s.call(ctx, "d.close", d.hash)
	return err
}

// Erase removes the download from the session. Downloaded data is left on
// disk.
func (d Download) Erase(ctx context.Context) error {
	_, err := d.s.call(ctx, "d.erase", d.hash)
	return err
}

// CheckHash queues a hash check of the downloaded data.
func (d Download) CheckHash(ctx context.Context) error {
	_, err := d.s.call(ctx, "d.check_hash", d.hash)
	return err
}

// Files returns a query over the download's files.
func (d Download) Files() *Query[File] { return NewFileQuery(d.s, d.hash) }

// Peers returns a query over the download's connected peers.
func (d Download) Peers() *Query[Peer] { return NewPeerQuery(d.s, d.hash) }

// Trackers returns a query over the download's trackers.
func (d Download) Trackers() *Query[Tracker] { return NewTrackerQuery(d.s, d.hash) }

// File returns a handle to the file at the given index within the download.
func (d Download) File(index int) File { return File{s: d.s, hash: d.hash, index: index} }

// Tracker returns a handle to the tracker at the given index within the
// download.
func (d Download) Tracker(index int) Tracker { return Tracker{s: d.s, hash: d.hash, index: index} }
