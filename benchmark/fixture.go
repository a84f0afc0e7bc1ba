// Copyright 2026 The rtorrent-rpc Authors
// SPDX-License-Identifier: Apache-2.0

// Package benchmark holds fixtures and benchmarks for the multicall hot
// path: request encoding, response decoding, typed row extraction, and
// Arrow export.
package benchmark

import (
	"context"
	"fmt"

	"github.com/rtorrentlib/rtorrent-rpc/conformance"
	"github.com/rtorrentlib/rtorrent-rpc/rtrpc"
)

// NewFixtureInstance builds a fake endpoint holding n downloads with a
// realistic field spread, so multicall benchmarks see rows of mixed types.
func NewFixtureInstance(n int) *conformance.Instance {
	fixtures := make([]conformance.DownloadFixture, n)
	for i := range fixtures {
		fixtures[i] = conformance.DownloadFixture{
			Hash:           fmt.Sprintf("%040X", i),
			Name:           fmt.Sprintf("download-%06d.iso", i),
			SizeBytes:      int64(i) * 1 << 20,
			CompletedBytes: int64(i) * 1 << 19,
			DownRate:       int64(i % 4096),
			UpRate:         int64(i % 1024),
			Ratio:          float64(i%4000) / 1000,
			IsActive:       i%3 != 0,
			IsOpen:         true,
			Complete:       i%2 == 0,
		}
	}
	return conformance.NewInstance(fixtures...)
}

// localTransport dispatches calls straight into a conformance instance,
// going through the full XML codec but no socket, isolating encode and
// decode cost from network noise.
type localTransport struct {
	instance *conformance.Instance
}

// NewLocalTransport wraps an instance as an rtrpc.Transport.
func NewLocalTransport(in *conformance.Instance) rtrpc.Transport {
	return &localTransport{instance: in}
}

func (t *localTransport) Call(_ context.Context, method string, args ...any) (any, error) {
	body, err := rtrpc.MarshalCall(method, args...)
	if err != nil {
		return nil, err
	}
	m, decoded, err := rtrpc.UnmarshalCall(body)
	if err != nil {
		return nil, err
	}
	result, err := t.instance.Dispatch(m, decoded)
	if err != nil {
		return nil, err
	}
	payload, err := rtrpc.MarshalResponse(result)
	if err != nil {
		return nil, err
	}
	return rtrpc.UnmarshalResponse(payload)
}
