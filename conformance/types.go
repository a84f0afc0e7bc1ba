// Copyright 2026 The rtorrent-rpc Authors
// SPDX-License-Identifier: Apache-2.0

package conformance

// FileFixture seeds one file of a download fixture.
type FileFixture struct {
	Path            string
	FrozenPath      string
	SizeBytes       int64
	SizeChunks      int64
	CompletedChunks int64
	Priority        int64
	Offset          int64
	LastTouched     int64
	IsCreated       bool
	IsOpen          bool
}

// PeerFixture seeds one connected peer of a download fixture.
type PeerFixture struct {
	ID               string
	Address          string
	Port             int64
	ClientVersion    string
	CompletedPercent int64
	DownRate         int64
	DownTotal        int64
	UpRate           int64
	UpTotal          int64
	IsEncrypted      bool
	IsIncoming       bool
	Banned           bool
}

// TrackerFixture seeds one tracker of a download fixture.
type TrackerFixture struct {
	URL              string
	ID               string
	Type             int64
	Group            int64
	IsEnabled        bool
	ScrapeComplete   int64
	ScrapeIncomplete int64
	ScrapeDownloaded int64
	SuccessCounter   int64
	FailedCounter    int64
}

// DownloadFixture seeds one download with its sub-collections. Hash and Name
// are the only fields most tests care about; the rest default to zero
// values, which the fake reports as-is.
type DownloadFixture struct {
	Hash            string
	Name            string
	BaseFilename    string
	BasePath        string
	Directory       string
	DirectoryBase   string
	ChunkSize       int64
	Complete        bool
	CompletedBytes  int64
	CompletedChunks int64
	DownRate        int64
	DownTotal       int64
	UpRate          int64
	UpTotal         int64
	IsActive        bool
	IsOpen          bool
	LoadedFile      string
	Message         string
	Ratio           float64
	SizeBytes       int64
	SizeFiles       int64
	State           bool
	TiedToFile      string
	TrackerSize     int64

	Files    []FileFixture
	Peers    []PeerFixture
	Trackers []TrackerFixture

	// Views the download belongs to besides "default" and "main".
	Views []string
}
