// Package varint implements the canonical variable-length unsigned-64
// encoding component of the magma wire format (spec §4.A): a LEB128-style
// base-128 encoding with exactly one valid (shortest) representation per
// value, and a non-zero variant that reserves the encoding of zero for
// use on fields — sequence numbers — that must never legally be zero.
//
// Every decoder here is bounds-checked and returns an error instead of
// panicking, the way the teacher's bitstream package is explicit that its
// own raw buffer helpers are *not* safe against adversarial input; this
// package is the hardened counterpart used on every public decode path.
package varint

import (
	"errors"

	"github.com/rony4d/magma/internal/fastbuf"
)

var (
	// ErrUnexpectedEnd is returned when the input ends before a varint is
	// fully read.
	ErrUnexpectedEnd = errors.New("varint: unexpected end of input")
	// ErrNonCanonical is returned when a decoded varint used more bytes
	// than the shortest possible representation (a trailing zero
	// continuation byte, or a final byte of 0x00).
	ErrNonCanonical = errors.New("varint: non-canonical encoding")
	// ErrZeroForNonZero is returned by ReadUint64NonZero when the decoded
	// value is zero.
	ErrZeroForNonZero = errors.New("varint: zero value not allowed here")
)

const continuation = 0x80
const payloadMask = 0x7f

// Len returns the number of bytes AppendUint64 would write for v.
func Len(v uint64) int {
	n := 1
	for v >= continuation {
		v >>= 7
		n++
	}
	return n
}

// AppendUint64 appends the canonical varint encoding of v to buf and
// returns the extended slice.
func AppendUint64(buf []byte, v uint64) []byte {
	for v >= continuation {
		buf = append(buf, byte(v&payloadMask)|continuation)
		v >>= 7
	}
	return append(buf, byte(v))
}

// ReadUint64 decodes a canonical varint from the front of buf, returning
// the value and the number of bytes consumed. It never panics: any input,
// however truncated or malformed, yields either a valid result or an
// error. Reading is done through fastbuf.Reader, the same bounds-checked
// cursor every other decoder in this module uses, rather than indexing
// buf directly.
func ReadUint64(buf []byte) (v uint64, n int, err error) {
	r := fastbuf.NewReader(buf)
	var shift uint
	for i := 0; ; i++ {
		b, ok := r.ReadByte()
		if !ok {
			return 0, 0, ErrUnexpectedEnd
		}
		if shift >= 64 {
			return 0, 0, ErrNonCanonical
		}
		// The tenth byte carries only bit 63; any higher payload bit
		// would be silently dropped.
		if shift == 63 && b&payloadMask > 1 {
			return 0, 0, ErrNonCanonical
		}
		chunk := uint64(b & payloadMask)
		v |= chunk << shift
		if b&continuation == 0 {
			// Last byte: canonical iff it's not a zero continuation of a
			// value that could have stopped earlier, i.e. it must be
			// non-zero unless this is the single-byte encoding of 0.
			if i > 0 && b == 0 {
				return 0, 0, ErrNonCanonical
			}
			return v, r.Position(), nil
		}
		shift += 7
	}
}

// AppendUint64NonZero appends the canonical varint encoding of v, which
// must be non-zero; callers that need to encode a sequence number should
// use this so that a zero sequence number can never round-trip silently.
func AppendUint64NonZero(buf []byte, v uint64) []byte {
	return AppendUint64(buf, v)
}

// ReadUint64NonZero decodes a varint exactly like ReadUint64 but rejects a
// decoded value of zero with ErrZeroForNonZero.
func ReadUint64NonZero(buf []byte) (v uint64, n int, err error) {
	v, n, err = ReadUint64(buf)
	if err != nil {
		return 0, 0, err
	}
	if v == 0 {
		return 0, 0, ErrZeroForNonZero
	}
	return v, n, nil
}
