// Copyright 2026 The rtorrent-rpc Authors
// SPDX-License-Identifier: Apache-2.0

package conformance

import (
	"context"
	"errors"
	"net"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rtorrentlib/rtorrent-rpc/rtrpc"
)

func seedInstance() *Instance {
	return NewInstance(
		DownloadFixture{
			Hash:      "9F86D081884C7D659A2FEAA0C55AD015A3BF4F1B",
			Name:      "Ubuntu.iso",
			SizeBytes: 4_500_000_000,
			Ratio:     1.5,
			IsActive:  true,
			IsOpen:    true,
			Complete:  true,
			Files: []FileFixture{
				{Path: "ubuntu.iso", SizeBytes: 4_500_000_000, Priority: 1, IsCreated: true, IsOpen: true},
				{Path: "README", SizeBytes: 2048, Priority: 1},
			},
			Peers: []PeerFixture{
				{ID: "PEER1", Address: "10.0.0.1", Port: 51413, ClientVersion: "libTorrent 0.13.8", CompletedPercent: 100, IsEncrypted: true},
			},
			Trackers: []TrackerFixture{
				{URL: "https://torrent.ubuntu.com/announce", Type: 1, IsEnabled: true, ScrapeComplete: 1200, ScrapeIncomplete: 34},
			},
		},
		DownloadFixture{
			Hash:      "60303AE22B998861BCE3B28F33EEC1BE758A213C",
			Name:      "Debian.iso",
			SizeBytes: 3_700_000_000,
		},
	)
}

func httpServer(t *testing.T, in *Instance) *rtrpc.Server {
	t.Helper()
	srv := httptest.NewServer(in)
	t.Cleanup(srv.Close)
	return rtrpc.NewServer(srv.URL)
}

func TestSystemGetters(t *testing.T) {
	server := httpServer(t, seedInstance())
	ctx := context.Background()

	host, err := server.Hostname(ctx)
	if err != nil || host != "rtorrent-conformance" {
		t.Fatalf("Hostname = %q, %v", host, err)
	}
	version, err := server.ClientVersion(ctx)
	if err != nil || version != "0.9.8" {
		t.Fatalf("ClientVersion = %q, %v", version, err)
	}
	pid, err := server.ProcessID(ctx)
	if err != nil || pid != 4242 {
		t.Fatalf("ProcessID = %d, %v", pid, err)
	}
	port, err := server.ListenPort(ctx)
	if err != nil || port != 50000 {
		t.Fatalf("ListenPort = %d, %v", port, err)
	}

	methods, err := server.ListMethods(ctx)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, m := range methods {
		if m == "d.multicall2" {
			found = true
		}
	}
	if !found {
		t.Errorf("d.multicall2 missing from %d methods", len(methods))
	}
}

func TestDownloadMulticall(t *testing.T) {
	server := httpServer(t, seedInstance())

	rows, err := rtrpc.Invoke3(context.Background(), rtrpc.NewDownloadQuery(server, "default"),
		rtrpc.DName, rtrpc.DRatio, rtrpc.DIsActive)
	if err != nil {
		t.Fatal(err)
	}
	want := []rtrpc.Row3[string, float64, bool]{
		{V1: "Ubuntu.iso", V2: 1.5, V3: true},
		{V1: "Debian.iso", V2: 0.0, V3: false},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %#v, want %#v", rows, want)
	}
}

func TestDownloadMulticallViews(t *testing.T) {
	server := httpServer(t, seedInstance())
	ctx := context.Background()

	started, err := rtrpc.Invoke1(ctx, rtrpc.NewDownloadQuery(server, "started"), rtrpc.DName)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(started, []string{"Ubuntu.iso"}) {
		t.Errorf("started = %v", started)
	}

	stopped, err := rtrpc.Invoke1(ctx, rtrpc.NewDownloadQuery(server, "stopped"), rtrpc.DName)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(stopped, []string{"Debian.iso"}) {
		t.Errorf("stopped = %v", stopped)
	}
}

func TestSubEntityMulticalls(t *testing.T) {
	server := httpServer(t, seedInstance())
	ctx := context.Background()
	hash := "9F86D081884C7D659A2FEAA0C55AD015A3BF4F1B"
	d := server.Download(hash)

	files, err := rtrpc.Invoke2(ctx, d.Files(), rtrpc.FPath, rtrpc.FSizeBytes)
	if err != nil {
		t.Fatal(err)
	}
	wantFiles := []rtrpc.Row2[string, int64]{
		{V1: "ubuntu.iso", V2: 4_500_000_000},
		{V1: "README", V2: 2048},
	}
	if !reflect.DeepEqual(files, wantFiles) {
		t.Errorf("files = %#v", files)
	}

	peers, err := rtrpc.Invoke3(ctx, d.Peers(), rtrpc.PAddress, rtrpc.PCompletedPercent, rtrpc.PIsEncrypted)
	if err != nil {
		t.Fatal(err)
	}
	if len(peers) != 1 || peers[0].V1 != "10.0.0.1" || peers[0].V2 != 100 || !peers[0].V3 {
		t.Errorf("peers = %#v", peers)
	}

	trackers, err := rtrpc.Invoke2(ctx, d.Trackers(), rtrpc.TURL, rtrpc.TScrapeComplete)
	if err != nil {
		t.Fatal(err)
	}
	if len(trackers) != 1 || trackers[0].V1 != "https://torrent.ubuntu.com/announce" || trackers[0].V2 != 1200 {
		t.Errorf("trackers = %#v", trackers)
	}
}

func TestSubEntityMulticallUnknownHash(t *testing.T) {
	server := httpServer(t, seedInstance())
	_, err := rtrpc.Invoke1(context.Background(),
		rtrpc.NewFileQuery(server, "DOESNOTEXIST"), rtrpc.FPath)
	if !errors.Is(err, rtrpc.ErrTransport) {
		t.Errorf("error = %v", err)
	}
}

func TestDeclaredTypeMismatchFailsWholeCall(t *testing.T) {
	// d.name is text on the wire; declaring it as an integer column must
	// fail the whole decode, not yield partial rows.
	server := httpServer(t, seedInstance())
	_, err := rtrpc.NewDownloadQuery(server, "default").
		Append(rtrpc.Column{Name: "d.name", Type: rtrpc.FieldInt}).
		Invoke(context.Background())
	if !errors.Is(err, rtrpc.ErrUnexpectedStructure) {
		t.Errorf("error = %v", err)
	}
}

func TestDownloadLifecycle(t *testing.T) {
	server := httpServer(t, seedInstance())
	ctx := context.Background()
	d := server.Download("60303AE22B998861BCE3B28F33EEC1BE758A213C")

	if err := d.Start(ctx); err != nil {
		t.Fatal(err)
	}
	active, err := d.IsActive(ctx)
	if err != nil || !active {
		t.Fatalf("IsActive after Start = %v, %v", active, err)
	}

	if err := d.Stop(ctx); err != nil {
		t.Fatal(err)
	}
	active, err = d.IsActive(ctx)
	if err != nil || active {
		t.Fatalf("IsActive after Stop = %v, %v", active, err)
	}

	if err := d.Erase(ctx); err != nil {
		t.Fatal(err)
	}
	downloads, err := server.DownloadList(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(downloads) != 1 {
		t.Errorf("after erase: %d downloads", len(downloads))
	}
	if _, err := d.Name(ctx); !errors.Is(err, rtrpc.ErrTransport) {
		t.Errorf("erased download getter error = %v", err)
	}
}

func TestAddTorrentRegistersDownload(t *testing.T) {
	server := httpServer(t, seedInstance())
	ctx := context.Background()

	if err := server.AddTorrent(ctx, []byte("metafile-bytes")); err != nil {
		t.Fatal(err)
	}
	downloads, err := server.DownloadList(ctx, "started")
	if err != nil {
		t.Fatal(err)
	}
	if len(downloads) != 2 {
		t.Errorf("started view has %d downloads, want 2", len(downloads))
	}
}

func TestFilePriorityRoundTrip(t *testing.T) {
	server := httpServer(t, seedInstance())
	ctx := context.Background()
	f := server.Download("9F86D081884C7D659A2FEAA0C55AD015A3BF4F1B").File(1)

	if err := f.SetPriority(ctx, 2); err != nil {
		t.Fatal(err)
	}
	prio, err := f.Priority(ctx)
	if err != nil || prio != 2 {
		t.Fatalf("Priority = %d, %v", prio, err)
	}
}

func TestCompressedHTTPResponses(t *testing.T) {
	for _, encoding := range []string{"gzip", "zstd"} {
		t.Run(encoding, func(t *testing.T) {
			in := seedInstance()
			in.Compression = encoding
			server := httpServer(t, in)

			names, err := rtrpc.Invoke1(context.Background(),
				rtrpc.NewDownloadQuery(server, "default"), rtrpc.DName)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(names, []string{"Ubuntu.iso", "Debian.iso"}) {
				t.Errorf("names = %v", names)
			}
		})
	}
}

func TestSCGIUnixSocket(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "rtorrent.sock")
	l, err := net.Listen("unix", sock)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	go seedInstance().ServeSCGI(l)

	server := rtrpc.NewServer("unix://" + sock)
	ctx := context.Background()

	host, err := server.Hostname(ctx)
	if err != nil || host != "rtorrent-conformance" {
		t.Fatalf("Hostname over SCGI = %q, %v", host, err)
	}
	names, err := rtrpc.Invoke1(ctx, rtrpc.NewDownloadQuery(server, "default"), rtrpc.DName)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(names, []string{"Ubuntu.iso", "Debian.iso"}) {
		t.Errorf("names = %v", names)
	}
}
