package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"listen_addr": ":9000",
		"input_dir": "/tmp/in",
		"cache_dir": "/tmp/cache"
	}`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "/tmp/in", cfg.InputDir)
	assert.Equal(t, "/tmp/cache", cfg.CacheDir)
	// Unset fields keep their defaults.
	assert.EqualValues(t, DefaultChunkSize, cfg.DefaultChunkSize)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"default_chunk_size": -5}`), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CHUNKSERVE_LISTEN_ADDR", ":7777")
	t.Setenv("CHUNKSERVE_CHUNK_SIZE", "4096")

	cfg := LoadFromEnv()
	assert.Equal(t, ":7777", cfg.ListenAddr)
	assert.EqualValues(t, 4096, cfg.DefaultChunkSize)
	assert.Equal(t, DefaultInputDir, cfg.InputDir)
}
