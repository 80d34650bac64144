package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"chunkserve/pkg/codec"
	"chunkserve/pkg/registry"
	"chunkserve/pkg/types"

	"go.uber.org/zap"
)

const (
	// MinChunkSize and MaxChunkSize bound the chunk size accepted at the
	// request boundary. The core itself only requires a positive size; the
	// bounds are the service contract, enforced by the HTTP layer.
	MinChunkSize = 1024
	MaxChunkSize = 10 * 1024 * 1024
)

// Store is the on-disk segment cache. Each (file, codec, mode) key owns one
// directory of immutable encoded segments, materialized lazily on first
// request and written exactly once.
type Store struct {
	root     string
	registry *registry.Registry
	logger   *zap.Logger
	locks    *keyLocks
}

func NewStore(root string, reg *registry.Registry, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache root: %w", err)
	}

	return &Store{
		root:     root,
		registry: reg,
		logger:   logger,
		locks:    newKeyLocks(),
	}, nil
}

// keyDir returns the self-describing directory for an encoding key:
// {root}/{file_id}_{codec} for streaming, with a _full suffix for monolithic
// materialization.
func (s *Store) keyDir(fileID types.FileID, c codec.Codec, m Mode) string {
	name := fmt.Sprintf("%s_%s", fileID, c)
	if m == Full {
		name += "_full"
	}
	return filepath.Join(s.root, name)
}

func segmentPath(dir string, index int, c codec.Codec) string {
	return filepath.Join(dir, fmt.Sprintf("segment_%d.%s", index, c.Ext()))
}

func validateChunkSize(chunkSize int64) error {
	if chunkSize < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidChunkSize, chunkSize)
	}
	return nil
}

// GetChunk returns the chunk at index of the encoded stream for fileID,
// where chunks are chunkSize-byte slices of the logical stream. The first
// call for an encoding key materializes it; concurrent callers for the same
// key block until the segment set is complete.
func (s *Store) GetChunk(fileID types.FileID, index int64, chunkSize int64, c codec.Codec, m Mode) (types.Chunk, error) {
	if err := validateChunkSize(chunkSize); err != nil {
		return types.Chunk{}, err
	}

	record, err := s.registry.Resolve(fileID)
	if err != nil {
		return types.Chunk{}, err
	}

	mf, err := s.ensure(record, c, m, chunkSize, nil)
	if err != nil {
		return types.Chunk{}, err
	}

	total := ceilDiv(mf.EncodedLength, chunkSize)
	if index < 0 || index >= total {
		return types.Chunk{}, fmt.Errorf("%w: index %d, total %d", ErrChunkNotFound, index, total)
	}

	start := index * chunkSize
	end := start + chunkSize
	if end > mf.EncodedLength {
		end = mf.EncodedLength
	}

	data, err := s.readRange(s.keyDir(fileID, c, m), c, mf, start, end)
	if err != nil {
		return types.Chunk{}, err
	}

	return types.Chunk{
		Index:       index,
		TotalChunks: total,
		Data:        data,
		IsLast:      index == total-1,
		ActualSize:  int64(len(data)),
	}, nil
}

// GetInfo describes the encoding without triggering materialization. Until
// the key is ready the encoded length and chunk count are estimates derived
// from the codec's overhead factor, flagged by IsReady=false.
func (s *Store) GetInfo(fileID types.FileID, chunkSize int64, c codec.Codec, m Mode) (types.EncodingInfo, error) {
	if err := validateChunkSize(chunkSize); err != nil {
		return types.EncodingInfo{}, err
	}

	record, err := s.registry.Resolve(fileID)
	if err != nil {
		return types.EncodingInfo{}, err
	}

	info := types.EncodingInfo{
		FileID:         fileID,
		OriginalLength: record.Size,
	}

	mf, err := loadManifest(s.keyDir(fileID, c, m))
	switch {
	case err == nil:
		info.IsReady = true
		info.EncodedLength = mf.EncodedLength
	case os.IsNotExist(err):
		info.EncodedLength = c.EncodedSizeEstimate(record.Size)
	default:
		return types.EncodingInfo{}, err
	}

	info.TotalChunks = ceilDiv(info.EncodedLength, chunkSize)
	return info, nil
}

// Ready reports whether the encoding key has a complete segment set.
func (s *Store) Ready(fileID types.FileID, c codec.Codec, m Mode) bool {
	_, err := loadManifest(s.keyDir(fileID, c, m))
	return err == nil
}

// Materialize builds the segment set for an encoding key ahead of any chunk
// request, reporting binary bytes consumed through progress (which may be
// nil). It is a no-op for a key that is already complete.
func (s *Store) Materialize(fileID types.FileID, c codec.Codec, m Mode, targetSegmentSize int64, progress func(int64)) error {
	if err := validateChunkSize(targetSegmentSize); err != nil {
		return err
	}

	record, err := s.registry.Resolve(fileID)
	if err != nil {
		return err
	}

	_, err = s.ensure(record, c, m, targetSegmentSize, progress)
	return err
}

// Purge removes every segment directory owned by fileID, across all codecs
// and modes. Directory names are self-describing, so ownership is the
// {file_id}_ prefix.
func (s *Store) Purge(fileID types.FileID) error {
	// Take each known key's guard so a purge cannot race an in-flight
	// materialization for the same file.
	for c := range codec.Names() {
		for _, m := range []Mode{Stream, Full} {
			dir := s.keyDir(fileID, codec.Codec(c), m)
			lock := s.locks.get(dir)
			lock.Lock()
			err := os.RemoveAll(dir)
			lock.Unlock()
			if err != nil {
				return fmt.Errorf("failed to purge %s: %w", dir, err)
			}
		}
	}

	// Sweep anything else carrying the file's prefix (stale layouts, older
	// codec sets).
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return fmt.Errorf("failed to read cache root: %w", err)
	}
	prefix := string(fileID) + "_"
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(s.root, entry.Name())); err != nil {
			return fmt.Errorf("failed to purge %s: %w", entry.Name(), err)
		}
	}

	s.logger.Info("purged cache entries", zap.String("file_id", string(fileID)))
	return nil
}

// ensure implements the check-then-materialize sequence under the per-key
// guard. A caller arriving while another materializes the same key blocks
// here and then reads the completed manifest.
func (s *Store) ensure(record types.FileRecord, c codec.Codec, m Mode, targetSegmentSize int64, progress func(int64)) (manifest, error) {
	dir := s.keyDir(record.ID, c, m)
	lock := s.locks.get(dir)
	lock.Lock()
	defer lock.Unlock()

	mf, err := loadManifest(dir)
	if err == nil {
		return mf, nil
	}
	if !os.IsNotExist(err) {
		return manifest{}, err
	}

	mf, err = s.materialize(record, c, m, dir, targetSegmentSize, progress)
	if err != nil {
		// Leave the key absent: a half-written segment set must never be
		// observable after the guard is released.
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			s.logger.Error("failed to clean up after materialization failure",
				zap.String("dir", dir),
				zap.Error(rmErr))
		}
		return manifest{}, fmt.Errorf("%w: %s: %v", ErrMaterialization, dir, err)
	}

	return mf, nil
}

func ceilDiv(a, b int64) int64 {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
