package replication

import (
	"testing"

	"github.com/rony4d/magma/event"
	"github.com/rony4d/magma/semigroup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseDTORoundTrip(t *testing.T) {
	ch := buildChain(t)
	resp := &UnvalidatedResponse[semigroup.Counter]{
		Kind: KindData,
		Pairs: []EventValuePair[semigroup.Counter]{
			{Event: ch.c3, Value: counterPtr(2)},
			{Event: ch.root, Value: nil},
		},
	}

	dto := FromUnvalidatedResponse[semigroup.Counter](resp, fam)
	require.False(t, dto.UnknownEvent)
	require.Len(t, dto.Pairs, 2)
	assert.NotNil(t, dto.Pairs[0].Payload)
	assert.Nil(t, dto.Pairs[1].Payload)

	back, err := ToUnvalidatedResponse[semigroup.Counter](dto, fam, semigroup.CounterSemigroup)
	require.NoError(t, err)
	require.Len(t, back.Pairs, 2)
	assert.True(t, back.Pairs[0].Event.Equal(ch.c3))
	require.NotNil(t, back.Pairs[0].Value)
	assert.Equal(t, semigroup.Counter(2), *back.Pairs[0].Value)
	assert.Nil(t, back.Pairs[1].Value)
}

func TestResponseDTOUnknownEvent(t *testing.T) {
	resp := &UnvalidatedResponse[semigroup.Counter]{Kind: KindUnknownEvent}
	dto := FromUnvalidatedResponse[semigroup.Counter](resp, fam)
	assert.True(t, dto.UnknownEvent)

	back, err := ToUnvalidatedResponse[semigroup.Counter](dto, fam, semigroup.CounterSemigroup)
	require.NoError(t, err)
	assert.Equal(t, KindUnknownEvent, back.Kind)
}

func TestResponseDTODecodeEventError(t *testing.T) {
	dto := &ResponseDTO{Pairs: []EventValuePairDTO{{Event: []byte{0x01}}}}
	_, err := ToUnvalidatedResponse[semigroup.Counter](dto, fam, semigroup.CounterSemigroup)
	assert.ErrorIs(t, err, ErrDecodeEvent)
}

func TestResponseDTODecodePayloadError(t *testing.T) {
	root := event.NewRootEvent(fam.Sum([]byte("v")), 1)
	dto := &ResponseDTO{Pairs: []EventValuePairDTO{{Event: event.EncodeToBytes(root, fam), Payload: []byte{}}}}
	_, err := ToUnvalidatedResponse[semigroup.Counter](dto, fam, semigroup.CounterSemigroup)
	assert.ErrorIs(t, err, ErrDecodePayload)
}
