// Package semigroup defines the CanonicalEncoding contract (spec §4.B)
// that every delta value attached to a magma event must satisfy, plus the
// associative Combine operation the client uses to fold a chain of
// deltas into an accumulated state.
package semigroup

import "errors"

// ErrBufferTooSmall is returned by Encode when the destination buffer is
// shorter than EncodingLength().
var ErrBufferTooSmall = errors.New("semigroup: buffer too small")

// CanonicalEncoding is the byte codec every semigroup value type must
// implement. The round-trip law (spec §4.B) requires that decoding the
// result of Encode into a buffer of exactly EncodingLength() bytes yields
// an equal value and an empty remainder.
type CanonicalEncoding interface {
	// EncodingLength returns the exact number of bytes Encode will write.
	EncodingLength() int
	// Encode writes the canonical encoding into buf, returning the number
	// of bytes written. It fails with ErrBufferTooSmall if
	// len(buf) < EncodingLength().
	Encode(buf []byte) (int, error)
}

// Semigroup pairs a type's CanonicalEncoding with its associative combine
// operation and decoder. Decode is a function rather than a method on the
// value because decoding produces a value rather than operating on one.
type Semigroup[S CanonicalEncoding] struct {
	// Combine must be associative: Combine(Combine(a,b),c) ==
	// Combine(a,Combine(b,c)) for all a,b,c.
	Combine func(a, b S) S
	// Decode reads a value of type S from the front of buf, returning the
	// value and the unconsumed remainder.
	Decode func(buf []byte) (S, []byte, error)
}
