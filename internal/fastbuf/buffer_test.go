package fastbuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	w := NewWriter(nil)
	w.WriteByte(0x01)
	w.Write([]byte{0x02, 0x03, 0x04})

	r := NewReader(w.Bytes())
	b, ok := r.ReadByte()
	require.True(t, ok)
	assert.Equal(t, byte(0x01), b)

	chunk, ok := r.Read(3)
	require.True(t, ok)
	assert.Equal(t, []byte{0x02, 0x03, 0x04}, chunk)
	assert.True(t, r.Empty())
}

func TestReaderShortReadsFailGracefully(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02})
	_, ok := r.Read(3)
	assert.False(t, ok)

	_, ok = r.ReadByte()
	assert.True(t, ok)
	_, ok = r.ReadByte()
	assert.True(t, ok)
	_, ok = r.ReadByte()
	assert.False(t, ok)
}

func TestReaderNegativeReadFails(t *testing.T) {
	r := NewReader([]byte{0x01})
	_, ok := r.Read(-1)
	assert.False(t, ok)
}

func TestRemainingAndPosition(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x03})
	assert.Equal(t, 3, r.Remaining())
	_, _ = r.Read(2)
	assert.Equal(t, 2, r.Position())
	assert.Equal(t, 1, r.Remaining())
}
