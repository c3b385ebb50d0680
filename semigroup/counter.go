package semigroup

import "encoding/binary"

// Counter is the minimal associative semigroup: a uint64 under addition.
// It exists as a reference CanonicalEncoding implementation and the
// default fixture used by the replication, server and client test suites.
type Counter uint64

// EncodingLength is always 8: Counter uses a fixed-width big-endian
// encoding, so no length varint is needed inside the value itself (the
// surrounding event carries delta_size separately).
func (c Counter) EncodingLength() int { return 8 }

// Encode writes c as 8 big-endian bytes.
func (c Counter) Encode(buf []byte) (int, error) {
	if len(buf) < 8 {
		return 0, ErrBufferTooSmall
	}
	binary.BigEndian.PutUint64(buf, uint64(c))
	return 8, nil
}

// DecodeCounter reads a Counter from the front of buf.
func DecodeCounter(buf []byte) (Counter, []byte, error) {
	if len(buf) < 8 {
		return 0, nil, ErrBufferTooSmall
	}
	return Counter(binary.BigEndian.Uint64(buf)), buf[8:], nil
}

// CounterSemigroup is Counter under addition.
var CounterSemigroup = Semigroup[Counter]{
	Combine: func(a, b Counter) Counter { return a + b },
	Decode:  DecodeCounter,
}
