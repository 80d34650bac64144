package codec

import (
	"encoding/ascii85"
	"encoding/base32"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
)

// Codec identifies one supported binary-to-text transform. The zero value is
// Base64, the system default.
type Codec int

const (
	Base64 Codec = iota
	Hex
	Base32
	Base85
	UUEncode
	YEnc
)

var ErrUnknown = errors.New("unknown codec")

type codecInfo struct {
	name string
	ext  string
	// overhead is encoded length / binary length. For Base85 it is an upper
	// bound (ascii85 folds all-zero groups) and for YEnc an average; both are
	// only ever used for estimates.
	overhead float64
	// quantum is the smallest binary byte count that encodes to a whole
	// number of output symbols. Segment boundaries are kept on quantum
	// multiples so each segment decodes on its own.
	quantum int
	binary  bool
}

var table = [...]codecInfo{
	Base64:   {name: "base64", ext: "b64", overhead: 4.0 / 3.0, quantum: 3},
	Hex:      {name: "hex", ext: "hex", overhead: 2.0, quantum: 1},
	Base32:   {name: "base32", ext: "b32", overhead: 8.0 / 5.0, quantum: 5},
	Base85:   {name: "base85", ext: "a85", overhead: 5.0 / 4.0, quantum: 4},
	UUEncode: {name: "uuencode", ext: "uue", overhead: 4.0 / 3.0, quantum: 3},
	YEnc:     {name: "yenc", ext: "ync", overhead: 1.02, quantum: 1, binary: true},
}

// Parse maps a codec name from a request or CLI flag to its Codec value.
func Parse(name string) (Codec, error) {
	for c, info := range table {
		if info.name == name {
			return Codec(c), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknown, name)
}

// Names lists all supported codec names in declaration order.
func Names() []string {
	names := make([]string, len(table))
	for c, info := range table {
		names[c] = info.name
	}
	return names
}

func (c Codec) String() string { return table[c].name }

// Ext is the file extension used for segment files of this codec.
func (c Codec) Ext() string { return table[c].ext }

// Overhead is the ratio of encoded length to binary length.
func (c Codec) Overhead() float64 { return table[c].overhead }

// Quantum is the codec's alignment quantum in binary bytes.
func (c Codec) Quantum() int { return table[c].quantum }

// Binary reports whether encoded output is 8-bit data rather than text.
func (c Codec) Binary() bool { return table[c].binary }

// EncodedSizeEstimate returns ceil(n * overhead), the registry's estimate of
// the encoded stream length before materialization has measured it.
func (c Codec) EncodedSizeEstimate(n int64) int64 {
	return int64(math.Ceil(float64(n) * table[c].overhead))
}

// BinaryBlockSize returns how many binary bytes to read per streaming
// segment so the encoded segment approaches target without exceeding it,
// rounded down to a quantum multiple so no encoding unit ever spans two
// segments. Targets smaller than one quantum's output are raised to a single
// quantum; callers must tolerate the resulting oversized segment.
func (c Codec) BinaryBlockSize(target int) int {
	q := table[c].quantum
	b := int(float64(target)/table[c].overhead) / q * q
	if b < q {
		b = q
	}
	return b
}

// Encode transforms src. It is pure and total: every input including the
// empty slice has a defined output.
func (c Codec) Encode(src []byte) []byte {
	switch c {
	case Base64:
		dst := make([]byte, base64.StdEncoding.EncodedLen(len(src)))
		base64.StdEncoding.Encode(dst, src)
		return dst
	case Hex:
		dst := make([]byte, hex.EncodedLen(len(src)))
		hex.Encode(dst, src)
		return dst
	case Base32:
		dst := make([]byte, base32.StdEncoding.EncodedLen(len(src)))
		base32.StdEncoding.Encode(dst, src)
		return dst
	case Base85:
		dst := make([]byte, ascii85.MaxEncodedLen(len(src)))
		n := ascii85.Encode(dst, src)
		return dst[:n]
	case UUEncode:
		return uuEncode(src)
	case YEnc:
		return yencEncode(src)
	}
	panic(fmt.Sprintf("codec: encode on invalid codec %d", c))
}

// Decode inverts Encode.
func (c Codec) Decode(src []byte) ([]byte, error) {
	switch c {
	case Base64:
		dst := make([]byte, base64.StdEncoding.DecodedLen(len(src)))
		n, err := base64.StdEncoding.Decode(dst, src)
		if err != nil {
			return nil, err
		}
		return dst[:n], nil
	case Hex:
		dst := make([]byte, hex.DecodedLen(len(src)))
		n, err := hex.Decode(dst, src)
		if err != nil {
			return nil, err
		}
		return dst[:n], nil
	case Base32:
		dst := make([]byte, base32.StdEncoding.DecodedLen(len(src)))
		n, err := base32.StdEncoding.Decode(dst, src)
		if err != nil {
			return nil, err
		}
		return dst[:n], nil
	case Base85:
		dst := make([]byte, 4*len(src))
		n, _, err := ascii85.Decode(dst, src, true)
		if err != nil {
			return nil, err
		}
		return dst[:n], nil
	case UUEncode:
		return uuDecode(src)
	case YEnc:
		return yencDecode(src)
	}
	panic(fmt.Sprintf("codec: decode on invalid codec %d", c))
}
