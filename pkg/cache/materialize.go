package cache

import (
	"fmt"
	"io"
	"os"

	"chunkserve/pkg/codec"
	"chunkserve/pkg/types"

	"go.uber.org/zap"
)

// materialize runs the selected strategy and commits the manifest as the
// last step. The caller holds the key guard and cleans up the directory if
// an error comes back.
func (s *Store) materialize(record types.FileRecord, c codec.Codec, m Mode, dir string, targetSegmentSize int64, progress func(int64)) (manifest, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return manifest{}, fmt.Errorf("failed to create segment directory: %w", err)
	}

	var (
		mf  manifest
		err error
	)
	switch m {
	case Stream:
		mf, err = s.materializeStreaming(record, c, dir, targetSegmentSize, progress)
	case Full:
		mf, err = s.materializeMonolithic(record, c, dir, targetSegmentSize, progress)
	default:
		err = fmt.Errorf("%w: %d", ErrUnknownMode, m)
	}
	if err != nil {
		return manifest{}, err
	}

	mf.Codec = c.String()
	mf.Mode = m.String()
	mf.OriginalLength = record.Size
	if err := writeManifest(dir, mf); err != nil {
		return manifest{}, err
	}

	s.logger.Info("materialized encoding",
		zap.String("file_id", string(record.ID)),
		zap.String("codec", c.String()),
		zap.String("mode", m.String()),
		zap.Int("segments", len(mf.SegmentSizes)),
		zap.Int64("encoded_length", mf.EncodedLength))

	return mf, nil
}

// materializeStreaming reads one quantum-aligned binary block at a time,
// encodes it independently and writes it as the next segment. Peak memory is
// one block plus its encoding.
func (s *Store) materializeStreaming(record types.FileRecord, c codec.Codec, dir string, targetSegmentSize int64, progress func(int64)) (manifest, error) {
	f, err := os.Open(record.Path)
	if err != nil {
		return manifest{}, fmt.Errorf("failed to open source file: %w", err)
	}
	defer f.Close()

	blockSize := c.BinaryBlockSize(int(targetSegmentSize))
	buf := make([]byte, blockSize)

	var mf manifest
	mf.SegmentSizes = []int64{}
	for index := 0; ; index++ {
		n, err := io.ReadFull(f, buf)
		if err == io.EOF {
			break
		}
		if err != nil && err != io.ErrUnexpectedEOF {
			return manifest{}, fmt.Errorf("failed to read source block %d: %w", index, err)
		}

		encoded := c.Encode(buf[:n])
		if writeErr := os.WriteFile(segmentPath(dir, index, c), encoded, 0644); writeErr != nil {
			return manifest{}, fmt.Errorf("failed to write segment %d: %w", index, writeErr)
		}

		mf.SegmentSizes = append(mf.SegmentSizes, int64(len(encoded)))
		mf.EncodedLength += int64(len(encoded))
		if progress != nil {
			progress(int64(n))
		}

		if err == io.ErrUnexpectedEOF {
			break
		}
	}

	return mf, nil
}

// materializeMonolithic encodes the whole file in one pass and splits the
// encoded buffer into target-sized segments. The result is byte-identical to
// encoding the file directly, at O(file size) peak memory.
func (s *Store) materializeMonolithic(record types.FileRecord, c codec.Codec, dir string, targetSegmentSize int64, progress func(int64)) (manifest, error) {
	data, err := os.ReadFile(record.Path)
	if err != nil {
		return manifest{}, fmt.Errorf("failed to read source file: %w", err)
	}

	encoded := c.Encode(data)
	if progress != nil {
		progress(int64(len(data)))
	}

	var mf manifest
	mf.SegmentSizes = []int64{}
	for index, off := 0, int64(0); off < int64(len(encoded)); index++ {
		end := off + targetSegmentSize
		if end > int64(len(encoded)) {
			end = int64(len(encoded))
		}

		if err := os.WriteFile(segmentPath(dir, index, c), encoded[off:end], 0644); err != nil {
			return manifest{}, fmt.Errorf("failed to write segment %d: %w", index, err)
		}

		mf.SegmentSizes = append(mf.SegmentSizes, end-off)
		off = end
	}
	mf.EncodedLength = int64(len(encoded))

	return mf, nil
}
