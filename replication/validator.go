package replication

import (
	"errors"
	"fmt"

	"github.com/rony4d/magma/digest"
	"github.com/rony4d/magma/event"
	"github.com/rony4d/magma/semigroup"
	"github.com/sirupsen/logrus"
)

// Validator error kinds (spec §4.H).
var (
	ErrUnknownEvent                       = errors.New("replication: unknown event")
	ErrExpectedAtLeastOneEventInEvents     = errors.New("replication: expected at least one event in events")
	ErrFirstEventHashDidNotMatchRequestNew = errors.New("replication: first event hash did not match hash of request.new")
	ErrLinkInconsistent                    = errors.New("replication: predecessor/skip link did not match claimed neighbor")
	ErrSequenceNumberInconsistent          = errors.New("replication: sequence number did not decrease as required")
	ErrOldNotFound                         = errors.New("replication: chain did not terminate at or link to request.old")
	ErrPayloadHashMismatch                 = errors.New("replication: payload hash did not match event delta_digest")
	ErrPayloadLengthMismatch               = errors.New("replication: payload length did not match event delta_size")
	ErrOrderingViolation                   = errors.New("replication: event ordering did not match request.ordering")
)

// ValidResponse is an UnvalidatedResponse that has passed every
// obligation in spec §4.H. It is terminal: there is no path back to
// UnvalidatedResponse.
type ValidResponse[S semigroup.CanonicalEncoding] struct {
	Events []event.Event
	// Values[i] is the decoded payload aligned with Events[i], or nil if
	// the response carried none for that event.
	Values []*S
}

// CombineValues folds every present payload using sg.Combine, in the
// order given by Values, and returns nil if no payload is present.
// Because Combine is required to be associative, the result is
// independent of whether the implementation left- or right-folds.
func (vr *ValidResponse[S]) CombineValues(sg semigroup.Semigroup[S]) *S {
	var acc *S
	for _, v := range vr.Values {
		if v == nil {
			continue
		}
		if acc == nil {
			val := *v
			acc = &val
			continue
		}
		combined := sg.Combine(*acc, *v)
		acc = &combined
	}
	return acc
}

// seqNumber returns an event's logical sequence number: 1 for Root (the
// implicit root position, I1) and Child.SequenceNumber otherwise.
func seqNumber(e event.Event) uint64 {
	if c, ok := e.(*event.Child); ok {
		return c.SequenceNumber
	}
	return 1
}

// Validate promotes resp into a ValidResponse by checking it against req
// under digest family fam, per spec §4.H obligations 1-9. logger may be
// nil; when non-nil it receives a debug line naming which obligation
// failed, purely for observability — the returned error is unaffected.
func Validate[S semigroup.CanonicalEncoding](resp *UnvalidatedResponse[S], req Request, fam digest.Family, logger *logrus.Entry) (*ValidResponse[S], error) {
	fail := func(err error, detail string) (*ValidResponse[S], error) {
		if logger != nil {
			logger.WithError(err).Debug(detail)
		}
		return nil, err
	}

	// 1.
	if resp.Kind == KindUnknownEvent {
		return fail(ErrUnknownEvent, "server reported unknown event")
	}

	// 2.
	if len(resp.Pairs) == 0 {
		return fail(ErrExpectedAtLeastOneEventInEvents, "empty pair list")
	}

	// 9 (checked early against the raw, as-received order).
	if err := checkRawOrdering(resp.Pairs, req.Ordering); err != nil {
		return fail(err, "raw ordering did not match request.ordering")
	}

	// hashes for every event, in original array order.
	hashes := make([]digest.Digest, len(resp.Pairs))
	for i, p := range resp.Pairs {
		hashes[i] = event.Hash(p.Event, fam)
	}

	// View the chain in descending-depth order (newest first) regardless
	// of how the caller requested it be transmitted.
	descIdx := descendingIndices(len(resp.Pairs), req.Ordering)

	// 4. Anchor check.
	anchor := descIdx[0]
	if !hashes[anchor].Equal(req.New) {
		return fail(ErrFirstEventHashDidNotMatchRequestNew, "anchor hash mismatch")
	}

	// 5 & 6. Walk descending-depth adjacent pairs, checking link
	// consistency and sequence-number deltas.
	for i := 0; i+1 < len(descIdx); i++ {
		a := resp.Pairs[descIdx[i]].Event
		b := resp.Pairs[descIdx[i+1]].Event
		bHash := hashes[descIdx[i+1]]

		child, ok := a.(*event.Child)
		if !ok {
			return fail(ErrLinkInconsistent, "non-terminal event carried no predecessor/skip link")
		}

		usedPredecessor := child.PredecessorEventLink.Equal(bHash)
		usedSkip := child.SkipEventLink.Equal(bHash)
		if !usedPredecessor && !usedSkip {
			return fail(ErrLinkInconsistent, "neither predecessor_event_link nor skip_event_link matched claimed neighbor")
		}

		aSeq, bSeq := seqNumber(a), seqNumber(b)
		if aSeq <= bSeq {
			return fail(ErrSequenceNumberInconsistent, "sequence number did not decrease")
		}
		if usedPredecessor {
			if aSeq-bSeq != 1 {
				return fail(ErrSequenceNumberInconsistent, "predecessor edge did not decrease sequence number by exactly 1")
			}
		} else if aSeq-bSeq <= 1 {
			return fail(ErrSequenceNumberInconsistent, "skip edge did not decrease sequence number by more than 1")
		}
	}

	// 7. Terminal / old check.
	if req.Old != nil {
		terminal := resp.Pairs[descIdx[len(descIdx)-1]].Event
		terminalHash := hashes[descIdx[len(descIdx)-1]]
		matched := terminalHash.Equal(req.Old)
		if !matched {
			if child, ok := terminal.(*event.Child); ok {
				matched = child.PredecessorEventLink.Equal(req.Old) || child.SkipEventLink.Equal(req.Old)
			}
		}
		if !matched {
			return fail(ErrOldNotFound, "chain did not reach request.old")
		}
	}

	// 8. Payload checks, plus assembling the aligned Events/Values
	// output in original array order.
	events := make([]event.Event, len(resp.Pairs))
	values := make([]*S, len(resp.Pairs))
	for i, p := range resp.Pairs {
		events[i] = p.Event
		values[i] = p.Value
		if p.Value == nil {
			continue
		}
		v := *p.Value
		if uint64(v.EncodingLength()) != p.Event.DeltaSize() {
			return fail(ErrPayloadLengthMismatch, fmt.Sprintf("pair %d: payload length mismatch", i))
		}
		buf := make([]byte, v.EncodingLength())
		n, err := v.Encode(buf)
		if err != nil {
			return fail(ErrPayloadLengthMismatch, fmt.Sprintf("pair %d: payload failed to re-encode: %v", i, err))
		}
		got := fam.Sum(buf[:n])
		if !got.Equal(p.Event.DeltaDigest()) {
			return fail(ErrPayloadHashMismatch, fmt.Sprintf("pair %d: payload hash mismatch", i))
		}
	}

	return &ValidResponse[S]{Events: events, Values: values}, nil
}

// descendingIndices returns the indices of a pairs slice of length n in
// descending-depth order (newest first), given how the pairs were
// actually ordered on the wire.
func descendingIndices(n int, ordering Ordering) []int {
	idx := make([]int, n)
	if ordering == Descending {
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	for i := range idx {
		idx[i] = n - 1 - i
	}
	return idx
}

// checkRawOrdering verifies the as-received pairs' sequence numbers are
// monotonic in the direction implied by ordering (spec §4.H obligation
// 9): strictly decreasing for Descending, strictly increasing for
// Ascending.
func checkRawOrdering[S semigroup.CanonicalEncoding](pairs []EventValuePair[S], ordering Ordering) error {
	for i := 0; i+1 < len(pairs); i++ {
		a := seqNumber(pairs[i].Event)
		b := seqNumber(pairs[i+1].Event)
		switch ordering {
		case Descending:
			if a <= b {
				return ErrOrderingViolation
			}
		case Ascending:
			if a >= b {
				return ErrOrderingViolation
			}
		}
	}
	return nil
}
