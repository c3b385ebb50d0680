package replication

import (
	"errors"
	"fmt"

	"github.com/rony4d/magma/digest"
	"github.com/rony4d/magma/event"
	"github.com/rony4d/magma/semigroup"
)

// ResponseKind distinguishes the two Response variants (spec §4.G).
type ResponseKind int

const (
	KindUnknownEvent ResponseKind = iota
	KindData
)

// EventValuePair is one (Event, optional decoded value) entry of a Data
// response, generic over the semigroup value type S.
type EventValuePair[S semigroup.CanonicalEncoding] struct {
	Event event.Event
	// Value is nil when the server did not include a payload for this
	// event.
	Value *S
}

// UnvalidatedResponse is a decoded response whose hashes and links have
// not yet been checked against the originating Request (spec §3, §4.H).
// It exclusively owns its event/value pairs.
type UnvalidatedResponse[S semigroup.CanonicalEncoding] struct {
	Kind  ResponseKind
	Pairs []EventValuePair[S]
}

// EventValuePairDTO is the wire form of one EventValuePair (spec §6).
type EventValuePairDTO struct {
	Event   []byte `json:"event"`
	Payload []byte `json:"payload,omitempty"`
}

// ResponseDTO is the transport-neutral wire form of Response (spec §6).
type ResponseDTO struct {
	UnknownEvent bool                `json:"unknown_event"`
	Pairs        []EventValuePairDTO `json:"pairs,omitempty"`
}

// ErrDecodeEvent wraps an event.Decode failure encountered while
// converting a ResponseDTO to an UnvalidatedResponse.
var ErrDecodeEvent = errors.New("replication: failed to decode event")

// ErrDecodePayload wraps a CanonicalEncoding decode failure encountered
// while converting a ResponseDTO to an UnvalidatedResponse.
var ErrDecodePayload = errors.New("replication: failed to decode payload")

// ToUnvalidatedResponse decodes dto's events (via the event codec,
// component D) and payloads (via sg's CanonicalEncoding decoder,
// component B) into an UnvalidatedResponse[S].
func ToUnvalidatedResponse[S semigroup.CanonicalEncoding](dto *ResponseDTO, fam digest.Family, sg semigroup.Semigroup[S]) (*UnvalidatedResponse[S], error) {
	if dto.UnknownEvent {
		return &UnvalidatedResponse[S]{Kind: KindUnknownEvent}, nil
	}

	pairs := make([]EventValuePair[S], 0, len(dto.Pairs))
	for i, p := range dto.Pairs {
		e, err := event.Decode(p.Event, fam)
		if err != nil {
			return nil, fmt.Errorf("%w: pair %d: %v", ErrDecodeEvent, i, err)
		}

		var valPtr *S
		if p.Payload != nil {
			v, rest, err := sg.Decode(p.Payload)
			if err != nil {
				return nil, fmt.Errorf("%w: pair %d: %v", ErrDecodePayload, i, err)
			}
			if len(rest) != 0 {
				return nil, fmt.Errorf("%w: pair %d: %d trailing bytes", ErrDecodePayload, i, len(rest))
			}
			valPtr = &v
		}

		pairs = append(pairs, EventValuePair[S]{Event: e, Value: valPtr})
	}

	return &UnvalidatedResponse[S]{Kind: KindData, Pairs: pairs}, nil
}

// ErrInternalEncodingInvariant is panicked (not returned) by
// FromUnvalidatedResponse when EncodingLength/Encode disagree with each
// other. Per spec §4.G this direction assumes caller-constructed data is
// honest; a mismatch here is a local bug, not bad input.
var ErrInternalEncodingInvariant = errors.New("replication: encoding_length/encode invariant violated")

// FromUnvalidatedResponse encodes resp's events and payloads into a fresh
// ResponseDTO.
func FromUnvalidatedResponse[S semigroup.CanonicalEncoding](resp *UnvalidatedResponse[S], fam digest.Family) *ResponseDTO {
	if resp.Kind == KindUnknownEvent {
		return &ResponseDTO{UnknownEvent: true}
	}

	dto := &ResponseDTO{Pairs: make([]EventValuePairDTO, 0, len(resp.Pairs))}
	for _, p := range resp.Pairs {
		eventBytes := event.EncodeToBytes(p.Event, fam)

		var payload []byte
		if p.Value != nil {
			v := *p.Value
			buf := make([]byte, v.EncodingLength())
			n, err := v.Encode(buf)
			if err != nil {
				panic(fmt.Errorf("%w: %v", ErrInternalEncodingInvariant, err))
			}
			payload = buf[:n]
		}

		dto.Pairs = append(dto.Pairs, EventValuePairDTO{Event: eventBytes, Payload: payload})
	}
	return dto
}
