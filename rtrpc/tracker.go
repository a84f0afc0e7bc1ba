// Copyright 2026 The rtorrent-rpc Authors
// SPDX-License-Identifier: Apache-2.0

package rtrpc

import (
	"context"
	"strconv"
)

// Tracker is a handle to one tracker of a download, addressed by the
// download's infohash and the tracker's index.
type Tracker struct {
	s     *Server
	hash  string
	index int
}

// Index returns the tracker's index within its download.
func (t Tracker) Index() int { return t.index }

// target is the "<infohash>:t<index>" form t.* single-target commands take.
func (t Tracker) target() string {
	return t.hash + ":t" + strconv.Itoa(t.index)
}

// Tracker field descriptors (t.* commands). TType is 1 for HTTP, 2 for UDP,
// 3 for DHT.
var (
	TURL              = textField[Tracker]("t.", "url")
	TID               = textField[Tracker]("t.", "id")
	TType             = intField[Tracker]("t.", "type")
	TGroup            = intField[Tracker]("t.", "group")
	TIsEnabled        = boolField[Tracker]("t.", "is_enabled")
	TScrapeComplete   = intField[Tracker]("t.", "scrape_complete")
	TScrapeIncomplete = intField[Tracker]("t.", "scrape_incomplete")
	TScrapeDownloaded = intField[Tracker]("t.", "scrape_downloaded")
	TSuccessCounter   = intField[Tracker]("t.", "success_counter")
	TFailedCounter    = intField[Tracker]("t.", "failed_counter")
)

// URL returns the tracker's announce URL.
func (t Tracker) URL(ctx context.Context) (string, error) {
	return callText(ctx, t.s, TURL.RemoteName(), t.target())
}

// IsEnabled reports whether the tracker is enabled.
func (t Tracker) IsEnabled(ctx context.Context) (bool, error) {
	return callBool(ctx, t.s, TIsEnabled.RemoteName(), t.target())
}

// ScrapeComplete returns the seeder count from the last scrape.
func (t Tracker) ScrapeComplete(ctx context.Context) (int64, error) {
	return callInt(ctx, t.s, TScrapeComplete.RemoteName(), t.target())
}

// ScrapeIncomplete returns the leecher count from the last scrape.
func (t Tracker) ScrapeIncomplete(ctx context.Context) (int64, error) {
	return callInt(ctx, t.s, TScrapeIncomplete.RemoteName(), t.target())
}

// SetEnabled enables or disables the tracker.
func (t Tracker) SetEnabled(ctx context.Context, enabled bool) error {
	v := int64(0)
	if enabled {
		v = 1
	}
	_, err := t.s.call(ctx, "t.is_enabled.set", t.target(), v)
	return err
}
