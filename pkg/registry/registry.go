package registry

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"chunkserve/pkg/codec"
	"chunkserve/pkg/types"

	"github.com/zeebo/blake3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrNotFound = errors.New("file not found")

// IDLength is the number of hex digits of the content digest used as the
// public file id. The full digest stays on the record; the prefix is what
// appears in URLs and cache directory names.
const IDLength = 16

// scanParallelism bounds concurrent file hashing during folder scans.
const scanParallelism = 4

// Registry owns file metadata. Files are identified by content hash, so the
// same bytes dropped under two names register once.
type Registry struct {
	inputDir         string
	defaultCodec     codec.Codec
	defaultChunkSize int64
	logger           *zap.Logger

	mu    sync.RWMutex
	files map[types.FileID]types.FileRecord
}

func New(inputDir string, defaultChunkSize int64, logger *zap.Logger) (*Registry, error) {
	if err := os.MkdirAll(inputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create input directory: %w", err)
	}

	return &Registry{
		inputDir:         inputDir,
		defaultCodec:     codec.Base64,
		defaultChunkSize: defaultChunkSize,
		logger:           logger,
		files:            make(map[types.FileID]types.FileRecord),
	}, nil
}

// InputDir is the folder watched for new files.
func (r *Registry) InputDir() string {
	return r.inputDir
}

// Register hashes the file at path and adds it to the registry. Registering
// content that is already known returns the existing record.
func (r *Registry) Register(path string) (types.FileRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return types.FileRecord{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return types.FileRecord{}, fmt.Errorf("failed to stat file: %w", err)
	}

	hasher := blake3.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return types.FileRecord{}, fmt.Errorf("failed to hash file: %w", err)
	}
	digest := hex.EncodeToString(hasher.Sum(nil))

	encodedSize := r.defaultCodec.EncodedSizeEstimate(info.Size())
	record := types.FileRecord{
		ID:            types.FileID(digest[:IDLength]),
		Digest:        digest,
		Name:          filepath.Base(path),
		Path:          path,
		Size:          info.Size(),
		EncodedSize:   encodedSize,
		DefaultChunks: ceilDiv(encodedSize, r.defaultChunkSize),
		RegisteredAt:  time.Now(),
	}

	r.mu.Lock()
	existing, ok := r.files[record.ID]
	if !ok {
		r.files[record.ID] = record
	}
	r.mu.Unlock()

	if ok {
		return existing, nil
	}

	r.logger.Info("registered file",
		zap.String("file_id", string(record.ID)),
		zap.String("name", record.Name),
		zap.Int64("size", record.Size),
		zap.Int64("estimated_encoded_size", record.EncodedSize))

	return record, nil
}

// RegisterBytes stores uploaded content into the input folder and registers
// it. The stored name is sanitized to its base component.
func (r *Registry) RegisterBytes(name string, data []byte) (types.FileRecord, error) {
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) {
		return types.FileRecord{}, fmt.Errorf("invalid file name %q", name)
	}

	path := filepath.Join(r.inputDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return types.FileRecord{}, fmt.Errorf("failed to write uploaded file: %w", err)
	}

	return r.Register(path)
}

// Resolve returns a copy of the record for id. Callers never hold a pointer
// into the registry's map.
func (r *Registry) Resolve(id types.FileID) (types.FileRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.files[id]
	if !ok {
		return types.FileRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return record, nil
}

// List returns all records ordered by name.
func (r *Registry) List() []types.FileRecord {
	r.mu.RLock()
	records := make([]types.FileRecord, 0, len(r.files))
	for _, record := range r.files {
		records = append(records, record)
	}
	r.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		if records[i].Name != records[j].Name {
			return records[i].Name < records[j].Name
		}
		return records[i].ID < records[j].ID
	})
	return records
}

// Count returns the number of registered files.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.files)
}

// Delete removes the record and returns it so the caller can purge any
// cache state owned by the file.
func (r *Registry) Delete(id types.FileID) (types.FileRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.files[id]
	if !ok {
		return types.FileRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(r.files, id)

	r.logger.Info("deleted file record",
		zap.String("file_id", string(id)),
		zap.String("name", record.Name))

	return record, nil
}

// ScanFolder walks the input folder and registers any file whose content is
// not yet known. Hashing runs with bounded parallelism. Returns the number
// of newly registered files.
func (r *Registry) ScanFolder(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(r.inputDir)
	if err != nil {
		return 0, fmt.Errorf("failed to read input directory: %w", err)
	}

	before := r.Count()

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(scanParallelism)
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		path := filepath.Join(r.inputDir, entry.Name())
		g.Go(func() error {
			if _, err := r.Register(path); err != nil {
				r.logger.Warn("failed to register file during scan",
					zap.String("path", path),
					zap.Error(err))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	return r.Count() - before, nil
}

func ceilDiv(a, b int64) int64 {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
