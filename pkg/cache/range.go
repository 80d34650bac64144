package cache

import (
	"fmt"
	"os"

	"chunkserve/pkg/codec"
)

// readRange returns logical_stream[start:end] for a materialized key by
// slicing only the segments that overlap the range, one segment in memory at
// a time. end past the stream length truncates.
func (s *Store) readRange(dir string, c codec.Codec, mf manifest, start, end int64) ([]byte, error) {
	if start < 0 || end < start {
		return nil, fmt.Errorf("invalid range [%d, %d)", start, end)
	}
	if end > mf.EncodedLength {
		end = mf.EncodedLength
	}
	if start >= end {
		return []byte{}, nil
	}

	result := make([]byte, 0, end-start)
	offset := int64(0)
	for index, size := range mf.SegmentSizes {
		if offset >= end {
			break
		}
		if offset+size <= start {
			offset += size
			continue
		}

		segment, err := os.ReadFile(segmentPath(dir, index, c))
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: segment %d in %s", ErrSegmentMissing, index, dir)
			}
			return nil, fmt.Errorf("failed to read segment %d: %w", index, err)
		}
		if int64(len(segment)) != size {
			return nil, fmt.Errorf("%w: segment %d in %s has size %d, manifest says %d",
				ErrSegmentMissing, index, dir, len(segment), size)
		}

		from := int64(0)
		if start > offset {
			from = start - offset
		}
		to := size
		if end-offset < to {
			to = end - offset
		}
		result = append(result, segment[from:to]...)
		offset += size
	}

	return result, nil
}
