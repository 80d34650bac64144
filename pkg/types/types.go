package types

import (
	"time"
)

type FileID string

// FileRecord holds the registry's metadata for one discovered file.
// Identity is the full content digest; ID is its display-truncated prefix
// used in URLs and cache directory names.
type FileRecord struct {
	ID            FileID
	Digest        string // full blake3 digest, hex
	Name          string
	Path          string
	Size          int64
	EncodedSize   int64 // estimated, for the default codec; actual after materialization
	DefaultChunks int64 // estimated chunk count at the default chunk size
	RegisteredAt  time.Time
}

// Chunk is one caller-requested slice of the encoded stream, as returned by
// the cache. Chunk boundaries are independent of on-disk segment boundaries.
type Chunk struct {
	Index       int64
	TotalChunks int64
	Data        []byte
	IsLast      bool
	ActualSize  int64
}

// EncodingInfo describes one (file, codec, mode) encoding. While the cache
// is not materialized yet the encoded length and chunk count are estimates
// derived from the codec's overhead factor; IsReady distinguishes the two.
type EncodingInfo struct {
	FileID         FileID
	TotalChunks    int64
	OriginalLength int64
	EncodedLength  int64
	IsReady        bool
}
