package semigroup

import "github.com/rony4d/magma/varint"

// Bytes is a byte string under concatenation. It exercises a
// variable-length CanonicalEncoding (length-prefixed, in the style of the
// teacher's cser.SliceBytes) where EncodingLength is not a compile-time
// constant.
type Bytes []byte

// EncodingLength is the varint-prefixed length of the string.
func (b Bytes) EncodingLength() int {
	return varint.Len(uint64(len(b))) + len(b)
}

// Encode writes varint(len(b)) followed by the raw bytes.
func (b Bytes) Encode(buf []byte) (int, error) {
	n := b.EncodingLength()
	if len(buf) < n {
		return 0, ErrBufferTooSmall
	}
	out := varint.AppendUint64(buf[:0], uint64(len(b)))
	out = append(out, b...)
	return len(out), nil
}

// DecodeBytes reads a length-prefixed Bytes value from the front of buf.
func DecodeBytes(buf []byte) (Bytes, []byte, error) {
	size, n, err := varint.ReadUint64(buf)
	if err != nil {
		return nil, nil, err
	}
	rest := buf[n:]
	if uint64(len(rest)) < size {
		return nil, nil, ErrBufferTooSmall
	}
	v := make(Bytes, size)
	copy(v, rest[:size])
	return v, rest[size:], nil
}

// concat combines two Bytes values by concatenation; combine is
// associative because slice concatenation is associative.
func concat(a, b Bytes) Bytes {
	out := make(Bytes, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

// BytesSemigroup is Bytes under concatenation.
var BytesSemigroup = Semigroup[Bytes]{
	Combine: concat,
	Decode:  DecodeBytes,
}
