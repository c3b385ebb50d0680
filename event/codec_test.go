package event

import (
	"math/rand"
	"testing"

	"github.com/rony4d/magma/digest"
	"github.com/rony4d/magma/varint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fam = digest.Keccak256

func hashOf(s string) digest.Digest {
	return fam.Sum([]byte(s))
}

// S1: Root round-trip.
func TestRootRoundTrip(t *testing.T) {
	root := NewRootEvent(hashOf(""), 0)
	length := EncodingLength(root, fam)
	assert.Equal(t, 1+fam.Size()+1, length) // varint(0) is one byte

	buf := make([]byte, length)
	n, err := Encode(root, buf, fam)
	require.NoError(t, err)
	assert.Equal(t, length, n)
	assert.Equal(t, byte(0x00), buf[0])

	got, err := Decode(buf, fam)
	require.NoError(t, err)
	assert.True(t, root.Equal(got))
}

// S2: Child with collapsed skip.
func TestChildCollapsedSkip(t *testing.T) {
	h := hashOf("predecessor")
	g := hashOf("delta")
	c := NewChildEventNoSkip(2, h, g, 3)

	length := EncodingLength(c, fam)
	assert.Equal(t, 1+fam.Size()+fam.Size()+1, length)

	buf := make([]byte, length)
	n, err := Encode(c, buf, fam)
	require.NoError(t, err)
	assert.Equal(t, length, n)
	assert.NotEqual(t, byte(0x00), buf[0])

	got, err := Decode(buf, fam)
	require.NoError(t, err)
	gotChild := got.(*Child)
	assert.False(t, gotChild.HasIndependentSkip())
	assert.True(t, gotChild.SkipEventLink.Equal(h))
	assert.True(t, gotChild.SkipDigest.Equal(g))
	assert.Equal(t, uint64(3), gotChild.SkipSize)
	assert.True(t, c.Equal(got))
}

// S3: Child with independent skip.
func TestChildIndependentSkip(t *testing.T) {
	c := NewChildEvent(7, hashOf("pred"), hashOf("delta"), 5, hashOf("skip"), hashOf("skipdelta"), 9)

	length := EncodingLength(c, fam)
	buf := make([]byte, length)
	n, err := Encode(c, buf, fam)
	require.NoError(t, err)
	assert.Equal(t, length, n)

	got, err := Decode(buf, fam)
	require.NoError(t, err)
	gotChild := got.(*Child)
	assert.True(t, gotChild.HasIndependentSkip())
	assert.True(t, c.Equal(got))
}

// S4: malformed one-byte input never panics.
func TestMalformedOneByte(t *testing.T) {
	_, err := Decode([]byte{0x01}, fam)
	assert.Error(t, err)
}

func TestBufferTooSmall(t *testing.T) {
	root := NewRootEvent(hashOf(""), 0)
	buf := make([]byte, EncodingLength(root, fam)-1)
	_, err := Encode(root, buf, fam)
	assert.ErrorIs(t, err, ErrBufferTooSmall)
}

func TestSequenceNumberNotAtLeastTwo(t *testing.T) {
	h := hashOf("pred")
	g := hashOf("delta")
	c := &Child{SequenceNumber: 1, PredecessorEventLink: h, Digest: g, Size: 1, SkipEventLink: h, SkipDigest: g, SkipSize: 1}
	buf := make([]byte, EncodingLength(c, fam))
	_, err := Encode(c, buf, fam)
	require.NoError(t, err)

	_, err = Decode(buf, fam)
	assert.ErrorIs(t, err, ErrSequenceNumberNotAtLeastTwo)
}

func TestRootDiscriminationAndPlacement(t *testing.T) {
	root := NewRootEvent(hashOf("x"), 42)
	buf := EncodeToBytes(root, fam)
	assert.Equal(t, byte(0x00), buf[0])
	assert.Equal(t, []byte(root.Digest), buf[1:1+fam.Size()])
	size, _, err := varint.ReadUint64(buf[1+fam.Size():])
	require.NoError(t, err)
	assert.Equal(t, uint64(42), size)
}

func TestPrefixStability(t *testing.T) {
	c := NewChildEvent(9, hashOf("a"), hashOf("b"), 11, hashOf("c"), hashOf("d"), 13)
	encoded := EncodeToBytes(c, fam)
	extra := append(append([]byte(nil), encoded...), 0xFF, 0xEE, 0xDD)

	decoded, err := Decode(extra, fam)
	require.NoError(t, err)
	length := EncodingLength(decoded, fam)
	reEncoded := EncodeToBytes(decoded, fam)
	assert.Equal(t, encoded, reEncoded)
	assert.Equal(t, encoded, extra[:length])
}

func TestDecodeNeverPanics(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for i := 0; i < 5000; i++ {
		n := r.Intn(200)
		buf := make([]byte, n)
		r.Read(buf)
		assert.NotPanics(t, func() {
			_, _ = Decode(buf, fam)
		})
	}
}

func TestDecodeSafeNeverPanics(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	for i := 0; i < 2000; i++ {
		n := r.Intn(200)
		buf := make([]byte, n)
		r.Read(buf)
		assert.NotPanics(t, func() {
			_, _ = DecodeSafe(buf, fam)
		})
	}
}
