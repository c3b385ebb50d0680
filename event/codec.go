package event

import (
	"errors"
	"fmt"

	"github.com/rony4d/magma/digest"
	"github.com/rony4d/magma/internal/fastbuf"
	"github.com/rony4d/magma/varint"
)

// Encoder/decoder error kinds (spec §4.D, §7). Every decode error is one
// of these; none of them can ever be a panic escaping Decode.
var (
	ErrBufferTooSmall              = errors.New("event: buffer too small")
	ErrInputEmpty                  = errors.New("event: input empty")
	ErrDecodeRootSize              = errors.New("event: failed to decode root delta_size")
	ErrDecodeSequenceNumber        = errors.New("event: failed to decode sequence_number")
	ErrDecodeDeltaSize             = errors.New("event: failed to decode delta_size")
	ErrDecodeSkipDeltaSize         = errors.New("event: failed to decode skip_delta_size")
	ErrSequenceNumberNotAtLeastTwo = errors.New("event: sequence_number must be >= 2")
	// ErrMalformedEvent is returned by DecodeSafe when Decode itself
	// panics; this is the documented exception in spec §7 for a buggy
	// caller-supplied encoding, surfaced here as a value rather than a
	// crash.
	ErrMalformedEvent = errors.New("event: malformed event (recovered panic)")

	rootTag byte = 0x00
)

// EncodingLength returns the exact number of bytes Encode will write for
// e under digest family fam.
func EncodingLength(e Event, fam digest.Family) int {
	d := fam.Size()
	switch v := e.(type) {
	case *Root:
		return 1 + d + varint.Len(v.Size)
	case *Child:
		n := varint.Len(v.SequenceNumber) + d + d + varint.Len(v.Size)
		if v.HasIndependentSkip() {
			n += d + d + varint.Len(v.SkipSize)
		}
		return n
	default:
		return 0
	}
}

// Encode writes e's canonical encoding into out under digest family fam.
// If len(out) >= EncodingLength(e, fam), it writes exactly that many
// bytes and returns the count; it never reads or writes outside out and
// never panics. It returns ErrBufferTooSmall when out is too short.
func Encode(e Event, out []byte, fam digest.Family) (int, error) {
	need := EncodingLength(e, fam)
	if len(out) < need {
		return 0, ErrBufferTooSmall
	}

	switch v := e.(type) {
	case *Root:
		buf := out[:0]
		buf = append(buf, rootTag)
		buf = append(buf, v.Digest...)
		buf = varint.AppendUint64(buf, v.Size)
		return len(buf), nil
	case *Child:
		buf := out[:0]
		buf = varint.AppendUint64NonZero(buf, v.SequenceNumber)
		buf = append(buf, v.PredecessorEventLink...)
		buf = append(buf, v.Digest...)
		buf = varint.AppendUint64(buf, v.Size)
		if v.HasIndependentSkip() {
			buf = append(buf, v.SkipEventLink...)
			buf = append(buf, v.SkipDigest...)
			buf = varint.AppendUint64(buf, v.SkipSize)
		}
		return len(buf), nil
	default:
		return 0, fmt.Errorf("event: unknown event type %T", e)
	}
}

// readDigest copies the next d bytes of in into a fresh Digest, returning
// the remainder. It goes through fastbuf.Reader for its bounds check
// rather than slicing in directly.
func readDigest(in []byte, d int) (digest.Digest, []byte, error) {
	r := fastbuf.NewReader(in)
	chunk, ok := r.Read(d)
	if !ok {
		return nil, nil, ErrBufferTooSmall
	}
	out := make(digest.Digest, d)
	copy(out, chunk)
	return out, in[r.Position():], nil
}

// Decode reads a canonical Event encoding from the front of in under
// digest family fam. It returns either an Event or an error; it never
// panics and never reads outside in, per spec §4.D's decoder contract.
//
// Root decoding stops after the delta_size varint. Child decoding
// consumes the skip block iff bytes remain after delta_size; otherwise
// the skip fields are synthesized equal to the predecessor fields (I2).
func Decode(in []byte, fam digest.Family) (Event, error) {
	if len(in) == 0 {
		return nil, ErrInputEmpty
	}

	d := fam.Size()

	if in[0] == rootTag {
		rest := in[1:]
		deltaDigest, rest, err := readDigest(rest, d)
		if err != nil {
			return nil, err
		}
		deltaSize, _, err := varint.ReadUint64(rest)
		if err != nil {
			return nil, errWrap(ErrDecodeRootSize, err)
		}
		return &Root{Digest: deltaDigest, Size: deltaSize}, nil
	}

	seq, n, err := varint.ReadUint64NonZero(in)
	if err != nil {
		return nil, errWrap(ErrDecodeSequenceNumber, err)
	}
	if seq < 2 {
		return nil, ErrSequenceNumberNotAtLeastTwo
	}
	rest := in[n:]

	predecessor, rest, err := readDigest(rest, d)
	if err != nil {
		return nil, err
	}
	deltaDigest, rest, err := readDigest(rest, d)
	if err != nil {
		return nil, err
	}
	deltaSize, n, err := varint.ReadUint64(rest)
	if err != nil {
		return nil, errWrap(ErrDecodeDeltaSize, err)
	}
	rest = rest[n:]

	if len(rest) == 0 {
		// No-skip canonical form (I2): skip fields mirror the
		// predecessor's.
		return &Child{
			SequenceNumber:       seq,
			PredecessorEventLink: predecessor,
			Digest:               deltaDigest,
			Size:                 deltaSize,
			SkipEventLink:        predecessor,
			SkipDigest:           deltaDigest,
			SkipSize:             deltaSize,
		}, nil
	}

	skipLink, rest, err := readDigest(rest, d)
	if err != nil {
		return nil, err
	}
	skipDigest, rest, err := readDigest(rest, d)
	if err != nil {
		return nil, err
	}
	skipSize, _, err := varint.ReadUint64(rest)
	if err != nil {
		return nil, errWrap(ErrDecodeSkipDeltaSize, err)
	}

	return &Child{
		SequenceNumber:       seq,
		PredecessorEventLink: predecessor,
		Digest:               deltaDigest,
		Size:                 deltaSize,
		SkipEventLink:        skipLink,
		SkipDigest:           skipDigest,
		SkipSize:             skipSize,
	}, nil
}

// DecodeSafe wraps Decode with a recover guard, the same
// "safety catch for panics" idiom the teacher's
// cser.UnmarshalBinaryAdapter uses around its own raw bitstream decode.
// Decode is written to need no such catch — every read is
// bounds-checked — but this wrapper is the documented backstop against a
// latent bug surfacing as a process panic on adversarial input (spec §8,
// panic-freedom property).
func DecodeSafe(in []byte, fam digest.Family) (e Event, err error) {
	defer func() {
		if r := recover(); r != nil {
			e, err = nil, ErrMalformedEvent
		}
	}()
	return Decode(in, fam)
}

// Hash returns the event's identity: the digest of its canonical encoding
// under fam (I3).
func Hash(e Event, fam digest.Family) digest.Digest {
	buf := make([]byte, EncodingLength(e, fam))
	Encode(e, buf, fam)
	return fam.Sum(buf)
}

func errWrap(sentinel, cause error) error {
	return fmt.Errorf("%w: %v", sentinel, cause)
}
