// Copyright 2026 The rtorrent-rpc Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rtorrentlib/rtorrent-rpc/conformance"
)

func seeded() *conformance.Instance {
	return conformance.NewInstance(
		conformance.DownloadFixture{
			Hash:      "9F86D081884C7D659A2FEAA0C55AD015A3BF4F1B",
			Name:      "Ubuntu.iso",
			SizeBytes: 4_500_000_000,
			Ratio:     1.5,
			IsActive:  true,
			IsOpen:    true,
			State:     true,
			Files: []conformance.FileFixture{
				{Path: "ubuntu.iso", SizeBytes: 4_500_000_000, Priority: 1, IsCreated: true, IsOpen: true},
			},
			Trackers: []conformance.TrackerFixture{
				{URL: "https://torrent.ubuntu.com/announce", Type: 1, IsEnabled: true},
			},
		},
		conformance.DownloadFixture{
			Hash:      "60303AE22B998861BCE3B28F33EEC1BE758A213C",
			Name:      "Debian.iso",
			SizeBytes: 3_700_000_000,
		},
	)
}

func main() {
	instance := seeded()

	if len(os.Args) > 1 && os.Args[1] == "--http" {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to listen: %v\n", err)
			os.Exit(1)
		}
		port := listener.Addr().(*net.TCPAddr).Port
		fmt.Printf("PORT:%d\n", port)
		os.Stdout.Sync()

		srv := &http.Server{Handler: instance}

		// Catch SIGTERM/SIGINT so the process exits cleanly and flushes
		// coverage data when built with -cover.
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		go func() {
			<-sigCh
			srv.Shutdown(context.Background())
		}()

		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "http serve error: %v\n", err)
			os.Exit(1)
		}
	} else if len(os.Args) > 2 && os.Args[1] == "--unix" {
		path := os.Args[2]
		os.Remove(path)

		listener, err := net.Listen("unix", path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to listen on unix socket: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("UNIX:%s\n", path)
		os.Stdout.Sync()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		go func() {
			<-sigCh
			listener.Close()
		}()

		instance.ServeSCGI(listener)
		os.Remove(path)
	} else {
		fmt.Fprintln(os.Stderr, "usage: rtorrent-rpc-conformance --http | --unix <socket-path>")
		os.Exit(2)
	}
}
