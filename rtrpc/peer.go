// Copyright 2026 The rtorrent-rpc Authors
// SPDX-License-Identifier: Apache-2.0

package rtrpc

import "context"

// Peer is a handle to one connected peer of a download, addressed by the
// download's infohash and the peer's id.
type Peer struct {
	s    *Server
	hash string
	id   string
}

// ID returns the peer's id within its download.
func (p Peer) ID() string { return p.id }

// target is the "<infohash>:p<id>" form p.* single-target commands take.
func (p Peer) target() string {
	return p.hash + ":p" + p.id
}

// Peer field descriptors (p.* commands).
var (
	PID               = textField[Peer]("p.", "id")
	PAddress          = textField[Peer]("p.", "address")
	PPort             = intField[Peer]("p.", "port")
	PClientVersion    = textField[Peer]("p.", "client_version")
	PCompletedPercent = intField[Peer]("p.", "completed_percent")
	PDownRate         = intField[Peer]("p.", "down_rate")
	PDownTotal        = intField[Peer]("p.", "down_total")
	PUpRate           = intField[Peer]("p.", "up_rate")
	PUpTotal          = intField[Peer]("p.", "up_total")
	PIsEncrypted      = boolField[Peer]("p.", "is_encrypted")
	PIsIncoming       = boolField[Peer]("p.", "is_incoming")
	PBanned           = boolField[Peer]("p.", "banned")
)

// Address returns the peer's IP address.
func (p Peer) Address(ctx context.Context) (string, error) {
	return callText(ctx, p.s, PAddress.RemoteName(), p.target())
}

// ClientVersion returns the peer's reported client name and version.
func (p Peer) ClientVersion(ctx context.Context) (string, error) {
	return callText(ctx, p.s, PClientVersion.RemoteName(), p.target())
}

// CompletedPercent returns how much of the download the peer reports having,
// in whole percent.
func (p Peer) CompletedPercent(ctx context.Context) (int64, error) {
	return callInt(ctx, p.s, PCompletedPercent.RemoteName(), p.target())
}

// DownRate returns the transfer rate from the peer in bytes per second.
func (p Peer) DownRate(ctx context.Context) (int64, error) {
	return callInt(ctx, p.s, PDownRate.RemoteName(), p.target())
}

// IsEncrypted reports whether the connection to the peer is encrypted.
func (p Peer) IsEncrypted(ctx context.Context) (bool, error) {
	return callBool(ctx, p.s, PIsEncrypted.RemoteName(), p.target())
}

// Peer returns a handle to the peer with the given id within the download.
func (d Download) Peer(id string) Peer { return Peer{s: d.s, hash: d.hash, id: id} }
