// Copyright 2026 The rtorrent-rpc Authors
// SPDX-License-Identifier: Apache-2.0

package rtrpc

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestDefaultTransportScheme(t *testing.T) {
	tests := []struct {
		endpoint string
		network  string
		addr     string
		http     bool
	}{
		{"http://localhost:8080/RPC2", "", "", true},
		{"https://seedbox.example.com/RPC2", "", "", true},
		{"scgi://127.0.0.1:5000", "tcp", "127.0.0.1:5000", false},
		{"unix:///run/rtorrent/rpc.sock", "unix", "/run/rtorrent/rpc.sock", false},
	}
	for _, tt := range tests {
		s := NewServer(tt.endpoint)
		if tt.http {
			if _, ok := s.transport.(*HTTPTransport); !ok {
				t.Errorf("%s: transport is %T, want HTTP", tt.endpoint, s.transport)
			}
			continue
		}
		scgi, ok := s.transport.(*SCGITransport)
		if !ok {
			t.Errorf("%s: transport is %T, want SCGI", tt.endpoint, s.transport)
			continue
		}
		if scgi.Network != tt.network || scgi.Addr != tt.addr {
			t.Errorf("%s: got %s/%s, want %s/%s", tt.endpoint, scgi.Network, scgi.Addr, tt.network, tt.addr)
		}
	}
}

func TestServerGetters(t *testing.T) {
	tr := &stubTransport{}
	s := NewServer("http://stub/RPC2", WithTransport(tr))
	ctx := context.Background()

	tr.result = "bigbox"
	host, err := s.Hostname(ctx)
	if err != nil || host != "bigbox" {
		t.Fatalf("Hostname = %q, %v", host, err)
	}
	if tr.method != "system.hostname" {
		t.Errorf("method = %q", tr.method)
	}

	tr.result = int64(1234)
	pid, err := s.ProcessID(ctx)
	if err != nil || pid != 1234 {
		t.Fatalf("ProcessID = %d, %v", pid, err)
	}

	tr.result = int64(2048)
	rate, err := s.DownRate(ctx)
	if err != nil || rate != 2048 {
		t.Fatalf("DownRate = %d, %v", rate, err)
	}
	if tr.method != "throttle.global_down.rate" {
		t.Errorf("method = %q", tr.method)
	}

	// A getter whose wire type disagrees with the declaration fails loudly.
	tr.result = "not a number"
	if _, err := s.UpRate(ctx); !errors.Is(err, ErrUnexpectedStructure) {
		t.Errorf("UpRate error = %v", err)
	}
}

func TestListMethods(t *testing.T) {
	tr := &stubTransport{result: []any{"system.hostname", "d.multicall2"}}
	s := NewServer("http://stub/RPC2", WithTransport(tr))
	names, err := s.ListMethods(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(names, []string{"system.hostname", "d.multicall2"}) {
		t.Errorf("names = %v", names)
	}
}

func TestDownloadList(t *testing.T) {
	tr := &stubTransport{result: []any{"AAAA", "BBBB"}}
	s := NewServer("http://stub/RPC2", WithTransport(tr))

	downloads, err := s.DownloadList(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if want := []any{"default"}; !reflect.DeepEqual(tr.args, want) {
		t.Errorf("empty view: args = %#v, want %#v", tr.args, want)
	}
	if len(downloads) != 2 || downloads[0].Hash() != "AAAA" || downloads[1].Hash() != "BBBB" {
		t.Errorf("downloads = %#v", downloads)
	}

	if _, err := s.DownloadList(context.Background(), "seeding"); err != nil {
		t.Fatal(err)
	}
	if want := []any{"seeding"}; !reflect.DeepEqual(tr.args, want) {
		t.Errorf("args = %#v, want %#v", tr.args, want)
	}

	tr.result = []any{"AAAA", int64(2)}
	if _, err := s.DownloadList(context.Background(), ""); !errors.Is(err, ErrUnexpectedStructure) {
		t.Errorf("mixed list error = %v", err)
	}
}

func TestDownloadAccessorsAndActions(t *testing.T) {
	tr := &stubTransport{}
	s := NewServer("http://stub/RPC2", WithTransport(tr))
	d := s.Download("CAFEBABE")
	ctx := context.Background()

	tr.result = "Ubuntu.iso"
	name, err := d.Name(ctx)
	if err != nil || name != "Ubuntu.iso" {
		t.Fatalf("Name = %q, %v", name, err)
	}
	if tr.method != "d.name" || !reflect.DeepEqual(tr.args, []any{"CAFEBABE"}) {
		t.Errorf("call = %q %#v", tr.method, tr.args)
	}

	tr.result = int64(1)
	active, err := d.IsActive(ctx)
	if err != nil || !active {
		t.Fatalf("IsActive = %v, %v", active, err)
	}

	tr.result = int64(1500)
	ratio, err := d.Ratio(ctx)
	if err != nil || ratio != 1500.0 {
		t.Fatalf("Ratio = %v, %v", ratio, err)
	}

	tr.result = int64(0)
	if err := d.Stop(ctx); err != nil {
		t.Fatal(err)
	}
	if tr.method != "d.stop" {
		t.Errorf("method = %q", tr.method)
	}
}

func TestSubEntitySingleTargets(t *testing.T) {
	tr := &stubTransport{}
	s := NewServer("http://stub/RPC2", WithTransport(tr))
	d := s.Download("CAFEBABE")
	ctx := context.Background()

	tr.result = "ubuntu.iso"
	if _, err := d.File(2).Path(ctx); err != nil {
		t.Fatal(err)
	}
	if tr.method != "f.path" || !reflect.DeepEqual(tr.args, []any{"CAFEBABE:f2"}) {
		t.Errorf("call = %q %#v", tr.method, tr.args)
	}

	tr.result = int64(0)
	if err := d.File(2).SetPriority(ctx, 2); err != nil {
		t.Fatal(err)
	}
	if tr.method != "f.priority.set" || !reflect.DeepEqual(tr.args, []any{"CAFEBABE:f2", int64(2)}) {
		t.Errorf("call = %q %#v", tr.method, tr.args)
	}

	tr.result = "10.1.2.3"
	if _, err := d.Peer("PEERID").Address(ctx); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(tr.args, []any{"CAFEBABE:pPEERID"}) {
		t.Errorf("args = %#v", tr.args)
	}

	tr.result = "https://tracker.example.com/announce"
	if _, err := d.Tracker(0).URL(ctx); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(tr.args, []any{"CAFEBABE:t0"}) {
		t.Errorf("args = %#v", tr.args)
	}
}

func TestAddTorrent(t *testing.T) {
	tr := &stubTransport{result: int64(0)}
	s := NewServer("http://stub/RPC2", WithTransport(tr))
	meta := []byte("d8:announce3:url4:infod4:name4:teste e")

	if err := s.AddTorrent(context.Background(), meta); err != nil {
		t.Fatal(err)
	}
	if tr.method != "load.raw_start" || !reflect.DeepEqual(tr.args, []any{"", meta}) {
		t.Errorf("call = %q %#v", tr.method, tr.args)
	}

	if err := s.AddTorrentStopped(context.Background(), meta); err != nil {
		t.Fatal(err)
	}
	if tr.method != "load.raw" {
		t.Errorf("method = %q", tr.method)
	}
}

// recordingHook records hook invocations in order.
type recordingHook struct {
	events []string
	infos  []CallInfo
	stats  []*CallStatistics
	errs   []error
}

func (h *recordingHook) OnCallStart(ctx context.Context, info CallInfo) (context.Context, HookToken) {
	h.events = append(h.events, "start:"+info.Method)
	h.infos = append(h.infos, info)
	return ctx, len(h.events)
}

func (h *recordingHook) OnCallEnd(_ context.Context, token HookToken, info CallInfo, stats *CallStatistics, err error) {
	h.events = append(h.events, "end:"+info.Method)
	h.stats = append(h.stats, stats)
	h.errs = append(h.errs, err)
}

func TestCallHookAroundMulticall(t *testing.T) {
	hook := &recordingHook{}
	tr := &stubTransport{result: []any{[]any{"a"}, []any{"b"}}}
	s := NewServer("http://stub/RPC2", WithTransport(tr), WithCallHook(hook))

	if _, err := Invoke1(context.Background(), NewDownloadQuery(s, "default"), DName); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(hook.events, []string{"start:d.multicall2", "end:d.multicall2"}) {
		t.Errorf("events = %v", hook.events)
	}
	info := hook.infos[0]
	if !info.Batched || info.Columns != 1 || info.Endpoint != "http://stub/RPC2" {
		t.Errorf("info = %+v", info)
	}
	stats := hook.stats[0]
	if stats.Rows != 2 || stats.Columns != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if hook.errs[0] != nil {
		t.Errorf("err = %v", hook.errs[0])
	}
}

func TestCallHookSeesErrors(t *testing.T) {
	hook := &recordingHook{}
	tr := &stubTransport{err: errors.New("boom")}
	s := NewServer("http://stub/RPC2", WithTransport(tr))
	s.SetCallHook(hook)

	if _, err := s.Hostname(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if len(hook.errs) != 1 || !errors.Is(hook.errs[0], ErrTransport) {
		t.Errorf("hook errs = %v", hook.errs)
	}
	if hook.infos[0].Batched {
		t.Error("single-field call reported as batched")
	}
}

// panickyHook misbehaves in both callbacks.
type panickyHook struct{}

func (panickyHook) OnCallStart(ctx context.Context, _ CallInfo) (context.Context, HookToken) {
	panic("start")
}

func (panickyHook) OnCallEnd(context.Context, HookToken, CallInfo, *CallStatistics, error) {
	panic("end")
}

func TestCallHookPanicsAreShielded(t *testing.T) {
	tr := &stubTransport{result: "ok"}
	s := NewServer("http://stub/RPC2", WithTransport(tr), WithCallHook(panickyHook{}))

	host, err := s.Hostname(context.Background())
	if err != nil || host != "ok" {
		t.Fatalf("call failed under panicking hook: %q, %v", host, err)
	}
}
