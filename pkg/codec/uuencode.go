package codec

import (
	"errors"
	"fmt"
)

// uuencode here is the bare 6-bit body encoding: every 3 binary bytes become
// 4 characters from the classic alphabet, with '`' standing in for zero the
// way historical uuencoders emit it. Line headers, length prefixes and the
// begin/end framing are deliberately absent; partial trailing groups encode
// to 2 or 3 characters so the binary length is recoverable without a length
// prefix.

func uuChar(v byte) byte {
	if v == 0 {
		return '`'
	}
	return ' ' + v
}

func uuVal(c byte) (byte, error) {
	if c < ' ' || c > '`' {
		return 0, fmt.Errorf("uuencode: invalid character %q", c)
	}
	return (c - ' ') & 0x3f, nil
}

func uuEncode(src []byte) []byte {
	dst := make([]byte, 0, (len(src)+2)/3*4)
	for len(src) >= 3 {
		b0, b1, b2 := src[0], src[1], src[2]
		dst = append(dst,
			uuChar(b0>>2),
			uuChar(b0<<4&0x3f|b1>>4),
			uuChar(b1<<2&0x3f|b2>>6),
			uuChar(b2&0x3f))
		src = src[3:]
	}
	switch len(src) {
	case 1:
		dst = append(dst, uuChar(src[0]>>2), uuChar(src[0]<<4&0x3f))
	case 2:
		dst = append(dst,
			uuChar(src[0]>>2),
			uuChar(src[0]<<4&0x3f|src[1]>>4),
			uuChar(src[1]<<2&0x3f))
	}
	return dst
}

func uuDecode(src []byte) ([]byte, error) {
	if len(src)%4 == 1 {
		return nil, errors.New("uuencode: truncated input")
	}
	dst := make([]byte, 0, len(src)/4*3+2)
	vals := make([]byte, 0, 4)
	for _, c := range src {
		v, err := uuVal(c)
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
		if len(vals) == 4 {
			dst = append(dst, vals[0]<<2|vals[1]>>4, vals[1]<<4|vals[2]>>2, vals[2]<<6|vals[3])
			vals = vals[:0]
		}
	}
	switch len(vals) {
	case 2:
		dst = append(dst, vals[0]<<2|vals[1]>>4)
	case 3:
		dst = append(dst, vals[0]<<2|vals[1]>>4, vals[1]<<4|vals[2]>>2)
	}
	return dst, nil
}
