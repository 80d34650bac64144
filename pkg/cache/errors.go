package cache

import "errors"

var (
	// ErrChunkNotFound is returned for a chunk index at or past the total
	// chunk count. The stream is never padded or wrapped.
	ErrChunkNotFound = errors.New("chunk not found")

	// ErrSegmentMissing indicates cache corruption: the manifest names a
	// segment whose file is gone.
	ErrSegmentMissing = errors.New("segment file missing")

	// ErrInvalidChunkSize is returned when the requested chunk size is
	// outside [MinChunkSize, MaxChunkSize].
	ErrInvalidChunkSize = errors.New("chunk size out of range")

	// ErrUnknownMode is returned for a mode value other than stream or full.
	ErrUnknownMode = errors.New("unknown mode")

	// ErrMaterialization wraps I/O failures while building a segment set.
	// The failed key is left absent; the next request may retry from scratch.
	ErrMaterialization = errors.New("materialization failed")
)
