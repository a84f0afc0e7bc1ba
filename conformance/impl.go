// Copyright 2026 The rtorrent-rpc Authors
// SPDX-License-Identifier: Apache-2.0

package conformance

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/rtorrentlib/rtorrent-rpc/rtrpc"
)

// Instance is a fake rtorrent endpoint. The zero value is not usable; create
// one with NewInstance. All exported fields must be set before serving.
type Instance struct {
	Hostname       string
	ClientVersion  string
	LibraryVersion string
	APIVersion     string
	PID            int64
	ListenPort     int64
	GlobalDownRate int64
	GlobalUpRate   int64

	// Compression selects the Content-Encoding of HTTP responses: "",
	// "gzip", or "zstd". Applied only when the request accepts it.
	Compression string

	mu        sync.Mutex
	downloads []*DownloadFixture
}

// NewInstance creates a fake endpoint seeded with the given downloads.
func NewInstance(fixtures ...DownloadFixture) *Instance {
	in := &Instance{
		Hostname:       "rtorrent-conformance",
		ClientVersion:  "0.9.8",
		LibraryVersion: "0.13.8",
		APIVersion:     "10",
		PID:            4242,
		ListenPort:     50000,
	}
	for i := range fixtures {
		f := fixtures[i]
		in.downloads = append(in.downloads, &f)
	}
	return in
}

// faultError is returned by dispatch to signal an XML-RPC fault.
type faultError struct {
	code int64
	msg  string
}

func (e *faultError) Error() string { return fmt.Sprintf("fault %d: %s", e.code, e.msg) }

func methodNotFound(method string) *faultError {
	return &faultError{code: -506, msg: fmt.Sprintf("Method '%s' not defined", method)}
}

var errUnknownHash = &faultError{code: -501, msg: "Could not find info-hash."}

// rtorrent reports boolean fields as 0/1 integers on the wire.
func wireBool(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// Field getter tables. Each entry maps a fully qualified command name to the
// value the fake reports, in the wire form rtorrent uses.

var downloadFields = map[string]func(*DownloadFixture) any{
	"d.hash":             func(d *DownloadFixture) any { return d.Hash },
	"d.name":             func(d *DownloadFixture) any { return d.Name },
	"d.base_filename":    func(d *DownloadFixture) any { return d.BaseFilename },
	"d.base_path":        func(d *DownloadFixture) any { return d.BasePath },
	"d.directory":        func(d *DownloadFixture) any { return d.Directory },
	"d.directory_base":   func(d *DownloadFixture) any { return d.DirectoryBase },
	"d.chunk_size":       func(d *DownloadFixture) any { return d.ChunkSize },
	"d.complete":         func(d *DownloadFixture) any { return wireBool(d.Complete) },
	"d.incomplete":       func(d *DownloadFixture) any { return wireBool(!d.Complete) },
	"d.completed_bytes":  func(d *DownloadFixture) any { return d.CompletedBytes },
	"d.completed_chunks": func(d *DownloadFixture) any { return d.CompletedChunks },
	"d.down.rate":        func(d *DownloadFixture) any { return d.DownRate },
	"d.down.total":       func(d *DownloadFixture) any { return d.DownTotal },
	"d.up.rate":          func(d *DownloadFixture) any { return d.UpRate },
	"d.up.total":         func(d *DownloadFixture) any { return d.UpTotal },
	"d.is_active":        func(d *DownloadFixture) any { return wireBool(d.IsActive) },
	"d.is_open":          func(d *DownloadFixture) any { return wireBool(d.IsOpen) },
	"d.is_closed":        func(d *DownloadFixture) any { return wireBool(!d.IsOpen) },
	"d.loaded_file":      func(d *DownloadFixture) any { return d.LoadedFile },
	"d.message":          func(d *DownloadFixture) any { return d.Message },
	"d.ratio":            func(d *DownloadFixture) any { return d.Ratio },
	"d.size_bytes":       func(d *DownloadFixture) any { return d.SizeBytes },
	"d.size_files":       func(d *DownloadFixture) any { return d.SizeFiles },
	"d.state":            func(d *DownloadFixture) any { return wireBool(d.State) },
	"d.tied_to_file":     func(d *DownloadFixture) any { return d.TiedToFile },
	"d.tracker_size":     func(d *DownloadFixture) any { return d.TrackerSize },
}

var fileFields = map[string]func(*FileFixture) any{
	"f.path":             func(f *FileFixture) any { return f.Path },
	"f.frozen_path":      func(f *FileFixture) any { return f.FrozenPath },
	"f.size_bytes":       func(f *FileFixture) any { return f.SizeBytes },
	"f.size_chunks":      func(f *FileFixture) any { return f.SizeChunks },
	"f.completed_chunks": func(f *FileFixture) any { return f.CompletedChunks },
	"f.priority":         func(f *FileFixture) any { return f.Priority },
	"f.offset":           func(f *FileFixture) any { return f.Offset },
	"f.last_touched":     func(f *FileFixture) any { return f.LastTouched },
	"f.is_created":       func(f *FileFixture) any { return wireBool(f.IsCreated) },
	"f.is_open":          func(f *FileFixture) any { return wireBool(f.IsOpen) },
}

var peerFields = map[string]func(*PeerFixture) any{
	"p.id":                func(p *PeerFixture) any { return p.ID },
	"p.address":           func(p *PeerFixture) any { return p.Address },
	"p.port":              func(p *PeerFixture) any { return p.Port },
	"p.client_version":    func(p *PeerFixture) any { return p.ClientVersion },
	"p.completed_percent": func(p *PeerFixture) any { return p.CompletedPercent },
	"p.down_rate":         func(p *PeerFixture) any { return p.DownRate },
	"p.down_total":        func(p *PeerFixture) any { return p.DownTotal },
	"p.up_rate":           func(p *PeerFixture) any { return p.UpRate },
	"p.up_total":          func(p *PeerFixture) any { return p.UpTotal },
	"p.is_encrypted":      func(p *PeerFixture) any { return wireBool(p.IsEncrypted) },
	"p.is_incoming":       func(p *PeerFixture) any { return wireBool(p.IsIncoming) },
	"p.banned":            func(p *PeerFixture) any { return wireBool(p.Banned) },
}

var trackerFields = map[string]func(*TrackerFixture) any{
	"t.url":               func(t *TrackerFixture) any { return t.URL },
	"t.id":                func(t *TrackerFixture) any { return t.ID },
	"t.type":              func(t *TrackerFixture) any { return t.Type },
	"t.group":             func(t *TrackerFixture) any { return t.Group },
	"t.is_enabled":        func(t *TrackerFixture) any { return wireBool(t.IsEnabled) },
	"t.scrape_complete":   func(t *TrackerFixture) any { return t.ScrapeComplete },
	"t.scrape_incomplete": func(t *TrackerFixture) any { return t.ScrapeIncomplete },
	"t.scrape_downloaded": func(t *TrackerFixture) any { return t.ScrapeDownloaded },
	"t.success_counter":   func(t *TrackerFixture) any { return t.SuccessCounter },
	"t.failed_counter":    func(t *TrackerFixture) any { return t.FailedCounter },
}

// find returns the fixture with the given infohash.
func (in *Instance) find(hash string) (*DownloadFixture, bool) {
	for _, d := range in.downloads {
		if d.Hash == hash {
			return d, true
		}
	}
	return nil, false
}

// inView reports view membership the way rtorrent's built-in views behave.
func inView(d *DownloadFixture, view string) bool {
	switch view {
	case "", "default", "main":
		return true
	case "started", "active":
		return d.IsActive
	case "stopped":
		return !d.IsActive
	case "complete":
		return d.Complete
	case "incomplete":
		return !d.Complete
	}
	for _, v := range d.Views {
		if v == view {
			return true
		}
	}
	return false
}

// Dispatch handles one decoded XML-RPC call and returns its result value.
// Failures are *faultError values, rendered as XML-RPC faults by the
// transport front ends.
func (in *Instance) Dispatch(method string, args []any) (any, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	switch method {
	case "system.hostname":
		return in.Hostname, nil
	case "system.client_version":
		return in.ClientVersion, nil
	case "system.library_version":
		return in.LibraryVersion, nil
	case "system.api_version":
		return in.APIVersion, nil
	case "system.pid":
		return in.PID, nil
	case "network.listen.port":
		return in.ListenPort, nil
	case "throttle.global_down.rate":
		return in.GlobalDownRate, nil
	case "throttle.global_up.rate":
		return in.GlobalUpRate, nil
	case "system.listMethods":
		return in.listMethods(), nil
	case "download_list":
		view := ""
		if len(args) > 0 {
			view, _ = args[0].(string)
		}
		hashes := []any{}
		for _, d := range in.downloads {
			if inView(d, view) {
				hashes = append(hashes, d.Hash)
			}
		}
		return hashes, nil
	case "d.multicall2":
		return in.downloadMulticall(args)
	case "f.multicall", "p.multicall", "t.multicall":
		return in.subMulticall(method, args)
	case "load.raw_start", "load.raw":
		return in.loadRaw(method, args)
	}

	switch {
	case strings.HasPrefix(method, "d."):
		return in.downloadCommand(method, args)
	case strings.HasPrefix(method, "f."):
		return in.fileCommand(method, args)
	case strings.HasPrefix(method, "p."):
		return in.peerCommand(method, args)
	case strings.HasPrefix(method, "t."):
		return in.trackerCommand(method, args)
	}
	return nil, methodNotFound(method)
}

func (in *Instance) listMethods() []any {
	names := []any{
		"system.hostname", "system.client_version", "system.library_version",
		"system.api_version", "system.pid", "system.listMethods", "network.listen.port",
		"throttle.global_down.rate", "throttle.global_up.rate",
		"download_list", "d.multicall2", "f.multicall", "p.multicall", "t.multicall",
		"load.raw", "load.raw_start",
		"d.start", "d.stop", "d.open", "d.close", "d.erase", "d.check_hash",
		"f.priority.set", "t.is_enabled.set",
	}
	for name := range downloadFields {
		names = append(names, name)
	}
	for name := range fileFields {
		names = append(names, name)
	}
	for name := range peerFields {
		names = append(names, name)
	}
	for name := range trackerFields {
		names = append(names, name)
	}
	return names
}

// stripCommand removes the trailing "=" the multicall command form carries.
func stripCommand(arg any) (string, error) {
	s, ok := arg.(string)
	if !ok || !strings.HasSuffix(s, "=") {
		return "", &faultError{code: -503, msg: "Unsupported target type found."}
	}
	return strings.TrimSuffix(s, "="), nil
}

func (in *Instance) downloadMulticall(args []any) (any, error) {
	if len(args) < 2 {
		return nil, &faultError{code: -503, msg: "Wrong object type."}
	}
	view, _ := args[1].(string)
	rows := []any{}
	for _, d := range in.downloads {
		if !inView(d, view) {
			continue
		}
		row := []any{}
		for _, a := range args[2:] {
			name, err := stripCommand(a)
			if err != nil {
				return nil, err
			}
			get, ok := downloadFields[name]
			if !ok {
				return nil, methodNotFound(name)
			}
			row = append(row, get(d))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (in *Instance) subMulticall(method string, args []any) (any, error) {
	if len(args) < 2 {
		return nil, &faultError{code: -503, msg: "Wrong object type."}
	}
	hash, _ := args[0].(string)
	d, ok := in.find(hash)
	if !ok {
		return nil, errUnknownHash
	}

	appendRow := func(rows []any, get func(string) (any, bool)) ([]any, error) {
		row := []any{}
		for _, a := range args[2:] {
			name, err := stripCommand(a)
			if err != nil {
				return nil, err
			}
			v, ok := get(name)
			if !ok {
				return nil, methodNotFound(name)
			}
			row = append(row, v)
		}
		return append(rows, row), nil
	}

	rows := []any{}
	var err error
	switch method {
	case "f.multicall":
		for i := range d.Files {
			f := &d.Files[i]
			rows, err = appendRow(rows, func(name string) (any, bool) {
				get, ok := fileFields[name]
				if !ok {
					return nil, false
				}
				return get(f), true
			})
			if err != nil {
				return nil, err
			}
		}
	case "p.multicall":
		for i := range d.Peers {
			p := &d.Peers[i]
			rows, err = appendRow(rows, func(name string) (any, bool) {
				get, ok := peerFields[name]
				if !ok {
					return nil, false
				}
				return get(p), true
			})
			if err != nil {
				return nil, err
			}
		}
	case "t.multicall":
		for i := range d.Trackers {
			t := &d.Trackers[i]
			rows, err = appendRow(rows, func(name string) (any, bool) {
				get, ok := trackerFields[name]
				if !ok {
					return nil, false
				}
				return get(t), true
			})
			if err != nil {
				return nil, err
			}
		}
	}
	return rows, nil
}

// loadRaw registers a new download for a metafile. The fake does not parse
// bencode; the infohash is derived from the raw bytes so repeated loads of
// the same metafile collide the way real loads would.
func (in *Instance) loadRaw(method string, args []any) (any, error) {
	if len(args) < 2 {
		return nil, &faultError{code: -503, msg: "Wrong object type."}
	}
	data, ok := args[1].([]byte)
	if !ok {
		return nil, &faultError{code: -503, msg: "Wrong object type."}
	}
	sum := sha1.Sum(data)
	hash := strings.ToUpper(hex.EncodeToString(sum[:]))
	if _, exists := in.find(hash); exists {
		return int64(0), nil
	}
	in.downloads = append(in.downloads, &DownloadFixture{
		Hash:      hash,
		SizeBytes: int64(len(data)),
		IsOpen:    true,
		IsActive:  method == "load.raw_start",
	})
	return int64(0), nil
}

func (in *Instance) downloadCommand(method string, args []any) (any, error) {
	if len(args) < 1 {
		return nil, errUnknownHash
	}
	hash, _ := args[0].(string)
	d, ok := in.find(hash)
	if !ok {
		return nil, errUnknownHash
	}
	switch method {
	case "d.start":
		d.IsActive = true
		d.State = true
		return int64(0), nil
	case "d.stop":
		d.IsActive = false
		d.State = false
		return int64(0), nil
	case "d.open":
		d.IsOpen = true
		return int64(0), nil
	case "d.close":
		d.IsOpen = false
		d.IsActive = false
		return int64(0), nil
	case "d.erase":
		for i, e := range in.downloads {
			if e == d {
				in.downloads = append(in.downloads[:i], in.downloads[i+1:]...)
				break
			}
		}
		return int64(0), nil
	case "d.check_hash":
		return int64(0), nil
	}
	if get, ok := downloadFields[method]; ok {
		return get(d), nil
	}
	return nil, methodNotFound(method)
}

// splitTarget parses the "<infohash>:<kind><index>" single-target form.
func (in *Instance) splitTarget(args []any, kind byte) (*DownloadFixture, string, error) {
	if len(args) < 1 {
		return nil, "", errUnknownHash
	}
	target, _ := args[0].(string)
	hash, rest, ok := strings.Cut(target, ":")
	if !ok || len(rest) < 1 || rest[0] != kind {
		return nil, "", &faultError{code: -503, msg: "Unsupported target type found."}
	}
	d, found := in.find(hash)
	if !found {
		return nil, "", errUnknownHash
	}
	return d, rest[1:], nil
}

func (in *Instance) fileCommand(method string, args []any) (any, error) {
	d, idxStr, err := in.splitTarget(args, 'f')
	if err != nil {
		return nil, err
	}
	idx, convErr := strconv.Atoi(idxStr)
	if convErr != nil || idx < 0 || idx >= len(d.Files) {
		return nil, &faultError{code: -503, msg: "invalid file index"}
	}
	f := &d.Files[idx]
	if method == "f.priority.set" {
		if len(args) < 2 {
			return nil, &faultError{code: -503, msg: "Wrong object type."}
		}
		prio, _ := args[1].(int64)
		f.Priority = prio
		return int64(0), nil
	}
	if get, ok := fileFields[method]; ok {
		return get(f), nil
	}
	return nil, methodNotFound(method)
}

func (in *Instance) peerCommand(method string, args []any) (any, error) {
	d, id, err := in.splitTarget(args, 'p')
	if err != nil {
		return nil, err
	}
	for i := range d.Peers {
		if d.Peers[i].ID == id {
			if get, ok := peerFields[method]; ok {
				return get(&d.Peers[i]), nil
			}
			return nil, methodNotFound(method)
		}
	}
	return nil, &faultError{code: -503, msg: "invalid peer id"}
}

func (in *Instance) trackerCommand(method string, args []any) (any, error) {
	d, idxStr, err := in.splitTarget(args, 't')
	if err != nil {
		return nil, err
	}
	idx, convErr := strconv.Atoi(idxStr)
	if convErr != nil || idx < 0 || idx >= len(d.Trackers) {
		return nil, &faultError{code: -503, msg: "invalid tracker index"}
	}
	t := &d.Trackers[idx]
	if method == "t.is_enabled.set" {
		if len(args) < 2 {
			return nil, &faultError{code: -503, msg: "Wrong object type."}
		}
		v, _ := args[1].(int64)
		t.IsEnabled = v != 0
		return int64(0), nil
	}
	if get, ok := trackerFields[method]; ok {
		return get(t), nil
	}
	return nil, methodNotFound(method)
}

// Handle decodes one XML-RPC request body and encodes the response,
// including fault rendering. Shared by the HTTP and SCGI front ends.
func (in *Instance) Handle(body []byte) []byte {
	method, args, err := rtrpc.UnmarshalCall(body)
	if err != nil {
		return rtrpc.MarshalFault(-503, "Could not parse XML-RPC request.")
	}
	result, err := in.Dispatch(method, args)
	if err != nil {
		var fault *faultError
		if f, ok := err.(*faultError); ok {
			fault = f
		} else {
			fault = &faultError{code: -500, msg: err.Error()}
		}
		return rtrpc.MarshalFault(fault.code, fault.msg)
	}
	resp, err := rtrpc.MarshalResponse(result)
	if err != nil {
		return rtrpc.MarshalFault(-500, err.Error())
	}
	return resp
}

// ServeHTTP implements http.Handler, answering XML-RPC POSTs the way an
// rtorrent behind a web server would.
func (in *Instance) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	payload := in.Handle(body)

	w.Header().Set("Content-Type", "text/xml")
	if in.Compression != "" && strings.Contains(r.Header.Get("Accept-Encoding"), in.Compression) {
		w.Header().Set("Content-Encoding", in.Compression)
		switch in.Compression {
		case "gzip":
			gw := gzip.NewWriter(w)
			gw.Write(payload)
			gw.Close()
			return
		case "zstd":
			zw, _ := zstd.NewWriter(w)
			zw.Write(payload)
			zw.Close()
			return
		}
	}
	w.Write(payload)
}
