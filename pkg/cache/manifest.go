package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const manifestName = "manifest.json"

// manifest records what materialization actually produced for one encoding
// key. It is written atomically as the final step, so its presence is the
// completeness marker: no directory scan ever decides how many segments
// exist.
type manifest struct {
	Codec          string  `json:"codec"`
	Mode           string  `json:"mode"`
	OriginalLength int64   `json:"original_length"`
	EncodedLength  int64   `json:"encoded_length"`
	SegmentSizes   []int64 `json:"segment_sizes"`
}

func loadManifest(dir string) (manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestName))
	if err != nil {
		return manifest{}, err
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return manifest{}, fmt.Errorf("failed to parse manifest in %s: %w", dir, err)
	}
	return m, nil
}

func writeManifest(dir string, m manifest) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	tmp := filepath.Join(dir, manifestName+".tmp")
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(dir, manifestName)); err != nil {
		return fmt.Errorf("failed to commit manifest: %w", err)
	}
	return nil
}
