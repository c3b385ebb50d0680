package event

import (
	"errors"
	"fmt"

	"github.com/rony4d/magma/digest"
)

// EventDTO is a wire-safe mirror of Event (spec §4.E) for host
// serializers (JSON, protobuf, whatever the transport speaks) that
// cannot round-trip the typed Event interface directly. Digest fields
// are raw byte slices rather than the validated digest.Digest type until
// ToEvent checks their length.
type EventDTO struct {
	IsRoot bool `json:"is_root"`

	// Root fields.
	DeltaDigest []byte `json:"delta_digest"`
	DeltaSize   uint64 `json:"delta_size"`

	// Child-only fields; zero values when IsRoot.
	SequenceNumber       uint64 `json:"sequence_number,omitempty"`
	PredecessorEventLink []byte `json:"predecessor_event_link,omitempty"`
	SkipEventLink        []byte `json:"skip_event_link,omitempty"`
	SkipDeltaDigest      []byte `json:"skip_delta_digest,omitempty"`
	SkipDeltaSize        uint64 `json:"skip_delta_size,omitempty"`
}

// ErrInvalidDigestLength is returned by ToEvent when a digest field in
// the DTO does not have exactly fam.Size() bytes.
type ErrInvalidDigestLength struct {
	Field    string
	Expected int
	Actual   int
}

func (e *ErrInvalidDigestLength) Error() string {
	return fmt.Sprintf("event: dto field %q: invalid digest length: expected %d, got %d", e.Field, e.Expected, e.Actual)
}

// Is reports whether target is an *ErrInvalidDigestLength, so callers can
// use errors.Is against the sentinel-style check without caring about
// field or lengths.
func (e *ErrInvalidDigestLength) Is(target error) bool {
	_, ok := target.(*ErrInvalidDigestLength)
	return ok
}

// ErrInvalidSequenceNumber is returned by ToEvent when a Child DTO's
// SequenceNumber is less than 2 (I1).
var ErrInvalidSequenceNumber = errors.New("event: dto: sequence_number must be >= 2")

func checkDigestLen(field string, b []byte, fam digest.Family) error {
	if len(b) != fam.Size() {
		return &ErrInvalidDigestLength{Field: field, Expected: fam.Size(), Actual: len(b)}
	}
	return nil
}

// ToEvent validates and converts a DTO into a typed Event under digest
// family fam. Every digest field must be exactly fam.Size() bytes; any
// Child must carry SequenceNumber >= 2.
func (dto *EventDTO) ToEvent(fam digest.Family) (Event, error) {
	if dto.IsRoot {
		if err := checkDigestLen("delta_digest", dto.DeltaDigest, fam); err != nil {
			return nil, err
		}
		return &Root{
			Digest: digest.Digest(append([]byte(nil), dto.DeltaDigest...)),
			Size:   dto.DeltaSize,
		}, nil
	}

	if dto.SequenceNumber < 2 {
		return nil, ErrInvalidSequenceNumber
	}
	for field, b := range map[string][]byte{
		"predecessor_event_link": dto.PredecessorEventLink,
		"delta_digest":           dto.DeltaDigest,
		"skip_event_link":        dto.SkipEventLink,
		"skip_delta_digest":      dto.SkipDeltaDigest,
	} {
		if err := checkDigestLen(field, b, fam); err != nil {
			return nil, err
		}
	}

	return &Child{
		SequenceNumber:       dto.SequenceNumber,
		PredecessorEventLink: digest.Digest(append([]byte(nil), dto.PredecessorEventLink...)),
		Digest:               digest.Digest(append([]byte(nil), dto.DeltaDigest...)),
		Size:                 dto.DeltaSize,
		SkipEventLink:        digest.Digest(append([]byte(nil), dto.SkipEventLink...)),
		SkipDigest:           digest.Digest(append([]byte(nil), dto.SkipDeltaDigest...)),
		SkipSize:             dto.SkipDeltaSize,
	}, nil
}

// FromEvent builds a DTO mirroring e.
func FromEvent(e Event) *EventDTO {
	switch v := e.(type) {
	case *Root:
		return &EventDTO{
			IsRoot:      true,
			DeltaDigest: append([]byte(nil), v.Digest...),
			DeltaSize:   v.Size,
		}
	case *Child:
		return &EventDTO{
			IsRoot:               false,
			DeltaDigest:          append([]byte(nil), v.Digest...),
			DeltaSize:            v.Size,
			SequenceNumber:       v.SequenceNumber,
			PredecessorEventLink: append([]byte(nil), v.PredecessorEventLink...),
			SkipEventLink:        append([]byte(nil), v.SkipEventLink...),
			SkipDeltaDigest:      append([]byte(nil), v.SkipDigest...),
			SkipDeltaSize:        v.SkipSize,
		}
	default:
		return nil
	}
}

// EncodeToBytes encodes the event to its canonical wire bytes using codec
// Encode, sizing the buffer from EncodingLength. Encoding failures here
// indicate a bug in EncodingLength/Encode, not bad input, per spec §4.G's
// description of the UnvalidatedResponse -> DTO direction.
func EncodeToBytes(e Event, fam digest.Family) []byte {
	buf := make([]byte, EncodingLength(e, fam))
	n, err := Encode(e, buf, fam)
	if err != nil {
		panic(fmt.Sprintf("event: internal invariant violation: %v", err))
	}
	return buf[:n]
}
