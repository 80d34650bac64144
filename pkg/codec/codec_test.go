package codec

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allCodecs() []Codec {
	return []Codec{Base64, Hex, Base32, Base85, UUEncode, YEnc}
}

func TestParse(t *testing.T) {
	for _, c := range allCodecs() {
		parsed, err := Parse(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}

	_, err := Parse("rot13")
	assert.ErrorIs(t, err, ErrUnknown)
}

func TestRoundTrip(t *testing.T) {
	inputs := map[string][]byte{
		"empty":     {},
		"one":       {0x42},
		"hello":     []byte("HelloWorld"),
		"all_bytes": allByteValues(),
	}

	// Random payloads at sizes that are not multiples of any quantum.
	for _, size := range []int{7, 1023, 64*1024 + 1} {
		data := make([]byte, size)
		_, err := rand.Read(data)
		require.NoError(t, err)
		inputs[fmt.Sprintf("random_%d", size)] = data
	}

	for _, c := range allCodecs() {
		for name, data := range inputs {
			t.Run(fmt.Sprintf("%s/%s", c, name), func(t *testing.T) {
				encoded := c.Encode(data)
				decoded, err := c.Decode(encoded)
				require.NoError(t, err)
				assert.Equal(t, data, decoded)
			})
		}
	}
}

func TestEncodeEmptyIsEmpty(t *testing.T) {
	for _, c := range allCodecs() {
		assert.Empty(t, c.Encode(nil), c.String())
	}
}

func TestHexKnownOutput(t *testing.T) {
	encoded := Hex.Encode([]byte("HelloWorld"))
	assert.Equal(t, "48656c6c6f576f726c64", string(encoded))
}

func TestYEncEscapedValues(t *testing.T) {
	// Bytes whose shifted value lands on NUL, LF, CR or '=' must be escaped
	// and still decode to the original.
	for _, b := range []byte{214, 224, 227, 19} {
		encoded := YEnc.Encode([]byte{b})
		require.Len(t, encoded, 2, "byte %d should be escaped", b)
		assert.EqualValues(t, '=', encoded[0])

		decoded, err := YEnc.Decode(encoded)
		require.NoError(t, err)
		assert.Equal(t, []byte{b}, decoded)
	}

	// Escape-prone source values 0x00, 0x0a, 0x0d, 0x3d themselves.
	src := []byte{0x00, 0x0a, 0x0d, 0x3d}
	decoded, err := YEnc.Decode(YEnc.Encode(src))
	require.NoError(t, err)
	assert.Equal(t, src, decoded)
}

func TestYEncDanglingEscape(t *testing.T) {
	_, err := YEnc.Decode([]byte{'='})
	assert.Error(t, err)
}

func TestUUEncodePartialGroups(t *testing.T) {
	for size := 0; size <= 9; size++ {
		data := bytes.Repeat([]byte{0xa5}, size)
		decoded, err := UUEncode.Decode(UUEncode.Encode(data))
		require.NoError(t, err)
		assert.Equal(t, data, decoded, "size %d", size)
	}

	_, err := UUEncode.Decode([]byte("!"))
	assert.Error(t, err)
}

func TestBinaryBlockSize(t *testing.T) {
	// The worked example: hex at a 4-byte target reads 2 binary bytes.
	assert.Equal(t, 2, Hex.BinaryBlockSize(4))

	assert.Equal(t, 768, Base64.BinaryBlockSize(1024))

	// A target below one quantum's output is raised to the quantum.
	for _, c := range allCodecs() {
		assert.Equal(t, c.Quantum(), c.BinaryBlockSize(1), c.String())
	}

	// Block size never exceeds target/overhead and is quantum-aligned.
	for _, c := range allCodecs() {
		for _, target := range []int{1024, 4096, 1 << 20} {
			b := c.BinaryBlockSize(target)
			assert.Zero(t, b%c.Quantum(), "%s target %d", c, target)
			assert.LessOrEqual(t, float64(b)*c.Overhead(), float64(target)+1, "%s target %d", c, target)
		}
	}
}

// Quantum-aligned blocks must encode independently: concatenating per-block
// encodings equals encoding the whole input. This is what lets streaming and
// monolithic materialization produce the same logical stream.
func TestBlockDecomposability(t *testing.T) {
	data := make([]byte, 4096)
	_, err := rand.Read(data)
	require.NoError(t, err)

	for _, c := range allCodecs() {
		block := c.Quantum() * 16
		var streamed []byte
		for off := 0; off < len(data); off += block {
			end := off + block
			if end > len(data) {
				end = len(data)
			}
			streamed = append(streamed, c.Encode(data[off:end])...)
		}
		assert.Equal(t, c.Encode(data), streamed, c.String())
	}
}

func TestEncodedSizeEstimate(t *testing.T) {
	assert.EqualValues(t, 20, Hex.EncodedSizeEstimate(10))
	assert.EqualValues(t, 14, Base64.EncodedSizeEstimate(10))
	assert.EqualValues(t, 0, Base64.EncodedSizeEstimate(0))
}

func allByteValues() []byte {
	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}
	return data
}
