// Package server provides a minimal in-memory event DAG store that
// answers replication.Request queries. Spec §1 lists "server-side
// storage of the event DAG" as an external collaborator the core does
// not define; this package is a reference implementation good enough to
// demonstrate and test the protocol end to end (the same role the
// teacher's integration/presets.go plays for its fakenet), not a
// production storage engine.
package server

import (
	"github.com/rony4d/magma/digest"
	"github.com/rony4d/magma/event"
	"github.com/rony4d/magma/replication"
	"github.com/sirupsen/logrus"
)

// Store holds events and their (optional) raw encoded payload bytes,
// keyed by event hash.
type Store struct {
	fam    digest.Family
	log    *logrus.Entry
	events map[string]event.Event
	values map[string][]byte
}

// NewStore creates an empty Store under digest family fam. log may be
// nil.
func NewStore(fam digest.Family, log *logrus.Entry) *Store {
	return &Store{
		fam:    fam,
		log:    log,
		events: make(map[string]event.Event),
		values: make(map[string][]byte),
	}
}

// Put stores e (and, if non-nil, its raw encoded payload bytes) and
// returns its hash.
func (s *Store) Put(e event.Event, payload []byte) digest.Digest {
	h := event.Hash(e, s.fam)
	s.events[h.String()] = e
	if payload != nil {
		s.values[h.String()] = payload
	}
	return h
}

func (s *Store) lookup(h digest.Digest) (event.Event, bool) {
	e, ok := s.events[h.String()]
	return e, ok
}

// Query answers req by walking the predecessor/skip chain from New back
// to Old (or to the root if Old is absent), honoring PathLength and
// Ordering, and attaching payload bytes when IncludeValues is set and the
// store has them. The Open Question resolution from SPEC_FULL.md §9
// applies: New unknown and Old unknown both produce UnknownEvent.
func (s *Store) Query(req replication.Request) (*replication.ResponseDTO, error) {
	if err := replication.RejectIfResumeRequested(req); err != nil {
		return nil, err
	}

	newEvent, ok := s.lookup(req.New)
	if !ok {
		s.debugf("query: new event %s unknown", req.New)
		return &replication.ResponseDTO{UnknownEvent: true}, nil
	}
	if req.Old != nil {
		if _, ok := s.lookup(req.Old); !ok {
			s.debugf("query: old event %s unknown", req.Old)
			return &replication.ResponseDTO{UnknownEvent: true}, nil
		}
	}

	path, hashes := s.walk(newEvent, req)

	if req.Ordering == replication.Ascending {
		reverseEvents(path)
		reverseDigests(hashes)
	}

	pairs := make([]replication.EventValuePairDTO, 0, len(path))
	for i, e := range path {
		dto := replication.EventValuePairDTO{Event: event.EncodeToBytes(e, s.fam)}
		if req.IncludeValues {
			if payload, ok := s.values[hashes[i].String()]; ok {
				dto.Payload = payload
			}
		}
		pairs = append(pairs, dto)
	}
	return &replication.ResponseDTO{Pairs: pairs}, nil
}

// walk returns the chain from cur back to req.Old (or the root),
// descending-depth order (newest first), choosing skip links over
// predecessor links when req.PathLength is ShortestPath and a skip link
// is available.
func (s *Store) walk(cur event.Event, req replication.Request) ([]event.Event, []digest.Digest) {
	var path []event.Event
	var hashes []digest.Digest

	curHash := req.New
	for {
		path = append(path, cur)
		hashes = append(hashes, curHash)

		if req.Old != nil && curHash.Equal(req.Old) {
			break
		}

		child, ok := cur.(*event.Child)
		if !ok {
			break // reached the root
		}

		next := child.PredecessorEventLink
		if req.PathLength == replication.ShortestPath && child.HasIndependentSkip() {
			next = child.SkipEventLink
		}

		nextEvent, ok := s.lookup(next)
		if !ok {
			break
		}
		cur = nextEvent
		curHash = next
	}
	return path, hashes
}

func reverseEvents(s []event.Event) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func reverseDigests(s []digest.Digest) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func (s *Store) debugf(format string, args ...interface{}) {
	if s.log != nil {
		s.log.Debugf(format, args...)
	}
}
