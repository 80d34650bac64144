package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"512", 512},
		{"4KB", 4000},
		{"4KiB", 4096},
		{"1M", 1024 * 1024},
		{"1.5MiB", 1536 * 1024},
		{"2GB", 2_000_000_000},
		{" 64 KiB ", 64 * 1024},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			size, err := ParseSize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, size)
		})
	}
}

func TestParseSizeInvalid(t *testing.T) {
	for _, input := range []string{"", "MB", "12XB", "-1KB", "1.2.3MB"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseSize(input)
			assert.Error(t, err)
		})
	}
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "0 B", FormatSize(0))
	assert.Equal(t, "512 B", FormatSize(512))
	assert.Equal(t, "1 KB", FormatSize(1024))
	assert.Equal(t, "1.5 KB", FormatSize(1536))
	assert.Equal(t, "4 MB", FormatSize(4*1024*1024))
	assert.Equal(t, "invalid", FormatSize(-1))
}
