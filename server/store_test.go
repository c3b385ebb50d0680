package server

import (
	"testing"

	"github.com/rony4d/magma/digest"
	"github.com/rony4d/magma/event"
	"github.com/rony4d/magma/replication"
	"github.com/rony4d/magma/semigroup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fam = digest.Keccak256

func encode(t *testing.T, c semigroup.Counter) []byte {
	buf := make([]byte, c.EncodingLength())
	n, err := c.Encode(buf)
	require.NoError(t, err)
	return buf[:n]
}

// buildSkipChain creates root -> c2 -> c3 -> c4, where c4 also carries an
// independent skip link straight back to root, so ShortestPath and
// LongestPath queries diverge.
func buildSkipChain(t *testing.T, s *Store) (rootHash, c4Hash digest.Digest) {
	rootVal := encode(t, semigroup.Counter(1))
	root := event.NewRootEvent(fam.Sum(rootVal), uint64(len(rootVal)))
	rootHash = s.Put(root, rootVal)

	c2Val := encode(t, semigroup.Counter(2))
	c2 := event.NewChildEventNoSkip(2, rootHash, fam.Sum(c2Val), uint64(len(c2Val)))
	c2Hash := s.Put(c2, c2Val)

	c3Val := encode(t, semigroup.Counter(3))
	c3 := event.NewChildEventNoSkip(3, c2Hash, fam.Sum(c3Val), uint64(len(c3Val)))
	c3Hash := s.Put(c3, c3Val)

	// c4's skip-ancestor is the root: combining root+c2+c3+c4's deltas,
	// hashed together, stands in for "everything from root to c4".
	skipVal := encode(t, semigroup.Counter(1+2+3+4))
	c4Val := encode(t, semigroup.Counter(4))
	c4 := event.NewChildEvent(4, c3Hash, fam.Sum(c4Val), uint64(len(c4Val)), rootHash, fam.Sum(skipVal), uint64(len(skipVal)))
	c4Hash = s.Put(c4, c4Val)

	return rootHash, c4Hash
}

func TestQueryShortestPathUsesSkipLink(t *testing.T) {
	s := NewStore(fam, nil)
	_, c4Hash := buildSkipChain(t, s)

	req := replication.Request{New: c4Hash, Ordering: replication.Descending, PathLength: replication.ShortestPath}
	resp, err := s.Query(req)
	require.NoError(t, err)
	require.False(t, resp.UnknownEvent)
	assert.Len(t, resp.Pairs, 2) // c4, then straight to root via skip link
}

func TestQueryLongestPathIgnoresSkipLink(t *testing.T) {
	s := NewStore(fam, nil)
	_, c4Hash := buildSkipChain(t, s)

	req := replication.Request{New: c4Hash, Ordering: replication.Descending, PathLength: replication.LongestPath}
	resp, err := s.Query(req)
	require.NoError(t, err)
	assert.Len(t, resp.Pairs, 4) // c4, c3, c2, root
}

func TestQueryUnknownNew(t *testing.T) {
	s := NewStore(fam, nil)
	req := replication.Request{New: fam.Sum([]byte("nope")), Ordering: replication.Descending, PathLength: replication.ShortestPath}
	resp, err := s.Query(req)
	require.NoError(t, err)
	assert.True(t, resp.UnknownEvent)
}

func TestQueryRejectsResume(t *testing.T) {
	s := NewStore(fam, nil)
	offset := uint8(1)
	req := replication.Request{New: fam.Sum([]byte("x")), OffsetValue: &offset}
	_, err := s.Query(req)
	assert.ErrorIs(t, err, replication.ErrResumeNotSupported)
}

func TestQueryIncludeValues(t *testing.T) {
	s := NewStore(fam, nil)
	_, c4Hash := buildSkipChain(t, s)

	req := replication.Request{New: c4Hash, Ordering: replication.Descending, PathLength: replication.LongestPath, IncludeValues: true}
	resp, err := s.Query(req)
	require.NoError(t, err)
	for _, p := range resp.Pairs {
		assert.NotNil(t, p.Payload)
	}
}
