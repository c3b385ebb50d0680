// Package event implements the magma event model (spec §3, §4.C) and its
// binary codec (spec §4.D): a sum type over Root and Child nodes of the
// evolution graph, each carrying the digest and size of its own
// semigroup delta, plus — for Child — the predecessor and skip links that
// make the graph traversable.
package event

import (
	"bytes"

	"github.com/rony4d/magma/digest"
)

// Event is the sum type {Root, Child} described in spec §3. Both variants
// are immutable once constructed.
type Event interface {
	// DeltaDigest returns the hash of this event's own semigroup value,
	// regardless of variant (spec §4.C).
	DeltaDigest() digest.Digest
	// DeltaSize returns the byte length of this event's own semigroup
	// value.
	DeltaSize() uint64
	// Equal reports structural, field-by-field equality (spec I3: equal
	// events imply equal canonical encodings).
	Equal(other Event) bool

	isEvent()
}

// Root is the implicit first event of a log (sequence number 1).
type Root struct {
	Digest digest.Digest // delta_digest
	Size   uint64        // delta_size
}

func (r *Root) isEvent() {}

// DeltaDigest implements Event.
func (r *Root) DeltaDigest() digest.Digest { return r.Digest }

// DeltaSize implements Event.
func (r *Root) DeltaSize() uint64 { return r.Size }

// Equal implements Event.
func (r *Root) Equal(other Event) bool {
	o, ok := other.(*Root)
	if !ok {
		return false
	}
	return r.Digest.Equal(o.Digest) && r.Size == o.Size
}

// Child is any non-root event. Sequence numbers start at 2 (I1): the
// implicit root occupies position 1.
type Child struct {
	SequenceNumber uint64

	PredecessorEventLink digest.Digest

	Digest digest.Digest // delta_digest
	Size   uint64        // delta_size

	// SkipEventLink is the hash of a skip-ancestor event. When the event
	// carries no independent skip link, SkipEventLink equals
	// PredecessorEventLink and SkipDigest/SkipSize equal Digest/Size (I2).
	SkipEventLink digest.Digest
	SkipDigest    digest.Digest // skip_delta_digest
	SkipSize      uint64        // skip_delta_size
}

func (c *Child) isEvent() {}

// DeltaDigest implements Event.
func (c *Child) DeltaDigest() digest.Digest { return c.Digest }

// DeltaSize implements Event.
func (c *Child) DeltaSize() uint64 { return c.Size }

// HasIndependentSkip reports whether this Child carries a skip link
// distinct from its predecessor link (I2). When false, the wire encoding
// omits the skip block entirely (spec §4.D).
func (c *Child) HasIndependentSkip() bool {
	return !bytes.Equal(c.SkipEventLink, c.PredecessorEventLink)
}

// Equal implements Event.
func (c *Child) Equal(other Event) bool {
	o, ok := other.(*Child)
	if !ok {
		return false
	}
	return c.SequenceNumber == o.SequenceNumber &&
		c.PredecessorEventLink.Equal(o.PredecessorEventLink) &&
		c.Digest.Equal(o.Digest) &&
		c.Size == o.Size &&
		c.SkipEventLink.Equal(o.SkipEventLink) &&
		c.SkipDigest.Equal(o.SkipDigest) &&
		c.SkipSize == o.SkipSize
}

// NewRootEvent constructs a Root from a delta digest and size.
func NewRootEvent(deltaDigest digest.Digest, deltaSize uint64) *Root {
	return &Root{Digest: deltaDigest, Size: deltaSize}
}

// NewChildEvent constructs a Child with an independent skip link. Use
// NewChildEventNoSkip when the skip-ancestor coincides with the
// predecessor.
func NewChildEvent(seq uint64, predecessor, deltaDigest digest.Digest, deltaSize uint64, skipLink, skipDigest digest.Digest, skipSize uint64) *Child {
	return &Child{
		SequenceNumber:       seq,
		PredecessorEventLink: predecessor,
		Digest:               deltaDigest,
		Size:                 deltaSize,
		SkipEventLink:        skipLink,
		SkipDigest:           skipDigest,
		SkipSize:             skipSize,
	}
}

// NewChildEventNoSkip constructs a Child whose skip-ancestor is its
// immediate predecessor (the collapsed, no-independent-skip form).
func NewChildEventNoSkip(seq uint64, predecessor, deltaDigest digest.Digest, deltaSize uint64) *Child {
	return &Child{
		SequenceNumber:       seq,
		PredecessorEventLink: predecessor,
		Digest:               deltaDigest,
		Size:                 deltaSize,
		SkipEventLink:        predecessor,
		SkipDigest:           deltaDigest,
		SkipSize:             deltaSize,
	}
}
