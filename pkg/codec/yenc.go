package codec

import "errors"

// yEnc shifts every byte by 42 and escapes the handful of values that would
// collide with NNTP framing. Output is binary-safe 8-bit data, not text, so
// its overhead is close to 1 and depends on the input.

const yencEscape = '='

func yencCritical(b byte) bool {
	return b == 0x00 || b == 0x0a || b == 0x0d || b == yencEscape
}

func yencEncode(src []byte) []byte {
	dst := make([]byte, 0, len(src)+len(src)/50)
	for _, b := range src {
		o := b + 42
		if yencCritical(o) {
			dst = append(dst, yencEscape, o+64)
			continue
		}
		dst = append(dst, o)
	}
	return dst
}

func yencDecode(src []byte) ([]byte, error) {
	dst := make([]byte, 0, len(src))
	for i := 0; i < len(src); i++ {
		b := src[i]
		if b == yencEscape {
			i++
			if i == len(src) {
				return nil, errors.New("yenc: dangling escape byte")
			}
			dst = append(dst, src[i]-64-42)
			continue
		}
		dst = append(dst, b-42)
	}
	return dst, nil
}
