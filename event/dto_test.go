package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDTORoundTrip(t *testing.T) {
	c := NewChildEvent(4, hashOf("p"), hashOf("d"), 2, hashOf("s"), hashOf("sd"), 6)
	dto := FromEvent(c)
	back, err := dto.ToEvent(fam)
	require.NoError(t, err)
	assert.True(t, c.Equal(back))

	r := NewRootEvent(hashOf("r"), 1)
	rdto := FromEvent(r)
	rback, err := rdto.ToEvent(fam)
	require.NoError(t, err)
	assert.True(t, r.Equal(rback))
}

func TestDTOInvalidDigestLength(t *testing.T) {
	dto := &EventDTO{IsRoot: true, DeltaDigest: []byte{1, 2, 3}, DeltaSize: 0}
	_, err := dto.ToEvent(fam)
	var lenErr *ErrInvalidDigestLength
	require.ErrorAs(t, err, &lenErr)
	assert.Equal(t, fam.Size(), lenErr.Expected)
	assert.Equal(t, 3, lenErr.Actual)
}

func TestDTOInvalidSequenceNumber(t *testing.T) {
	dto := &EventDTO{
		IsRoot:               false,
		SequenceNumber:       1,
		DeltaDigest:          hashOf("d"),
		PredecessorEventLink: hashOf("p"),
		SkipEventLink:        hashOf("p"),
		SkipDeltaDigest:      hashOf("d"),
	}
	_, err := dto.ToEvent(fam)
	assert.ErrorIs(t, err, ErrInvalidSequenceNumber)
}
