package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

const (
	DefaultListenAddr = ":8000"
	DefaultInputDir   = "input_files"
	DefaultCacheDir   = "chunk_cache"
	DefaultChunkSize  = 1024 * 1024
)

type Config struct {
	ListenAddr       string `json:"listen_addr"`
	InputDir         string `json:"input_dir"`
	CacheDir         string `json:"cache_dir"`
	DefaultChunkSize int64  `json:"default_chunk_size"`
}

func Default() *Config {
	return &Config{
		ListenAddr:       DefaultListenAddr,
		InputDir:         DefaultInputDir,
		CacheDir:         DefaultCacheDir,
		DefaultChunkSize: DefaultChunkSize,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv builds a config from CHUNKSERVE_* environment variables,
// falling back to defaults.
func LoadFromEnv() *Config {
	cfg := &Config{
		ListenAddr:       getEnv("CHUNKSERVE_LISTEN_ADDR", DefaultListenAddr),
		InputDir:         getEnv("CHUNKSERVE_INPUT_DIR", DefaultInputDir),
		CacheDir:         getEnv("CHUNKSERVE_CACHE_DIR", DefaultCacheDir),
		DefaultChunkSize: DefaultChunkSize,
	}

	if raw := os.Getenv("CHUNKSERVE_CHUNK_SIZE"); raw != "" {
		if size, err := strconv.ParseInt(raw, 10, 64); err == nil && size > 0 {
			cfg.DefaultChunkSize = size
		}
	}

	return cfg
}

func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}
	if c.InputDir == "" {
		return fmt.Errorf("input_dir must not be empty")
	}
	if c.CacheDir == "" {
		return fmt.Errorf("cache_dir must not be empty")
	}
	if c.DefaultChunkSize <= 0 {
		return fmt.Errorf("default_chunk_size must be positive, got %d", c.DefaultChunkSize)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
