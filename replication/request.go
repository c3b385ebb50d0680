// Package replication implements the client/server protocol layered on
// top of the event codec: Request/Response models and DTOs (spec §4.F,
// §4.G) and the response validator that promotes an UnvalidatedResponse
// into a trusted ValidResponse (spec §4.H).
package replication

import (
	"errors"
	"fmt"

	"github.com/rony4d/magma/digest"
)

// Ordering is the transmission order by depth (spec §4.F).
type Ordering int

const (
	Ascending Ordering = iota
	Descending
)

func (o Ordering) String() string {
	if o == Ascending {
		return "Ascending"
	}
	return "Descending"
}

// PathLength selects which path to traverse in the evolution DAG.
type PathLength int

const (
	ShortestPath PathLength = iota
	LongestPath
)

func (p PathLength) String() string {
	if p == ShortestPath {
		return "ShortestPath"
	}
	return "LongestPath"
}

// Request carries a client's query parameters (spec §4.F).
//
// Historical Mode enum. Earlier drafts folded Ordering/PathLength/
// IncludeValues into one enum:
//
//	None           -> Old == New (nothing to fetch)
//	Ascending      -> Ordering=Ascending,  PathLength=ShortestPath, IncludeValues=false
//	Descending     -> Ordering=Descending, PathLength=ShortestPath, IncludeValues=false
//	AllAscending   -> Ordering=Ascending,  PathLength=ShortestPath, IncludeValues=true
//	AllDescending  -> Ordering=Descending, PathLength=ShortestPath, IncludeValues=true
//
// The cross-product form below is canonical; Mode is not implemented as a
// type here.
type Request struct {
	New digest.Digest
	// Old is nil when the client has no prior event.
	Old digest.Digest

	Ordering      Ordering
	PathLength    PathLength
	IncludeValues bool

	// OffsetEvent/OffsetValue are the historical resumable-transfer
	// fields (spec §9). This implementation does not support resuming a
	// prior transfer; see RejectIfResumeRequested.
	OffsetEvent uint8
	OffsetValue *uint8
}

// ErrResumeNotSupported is returned when a Request sets OffsetEvent or
// OffsetValue but the server does not implement resumable transfers.
// Spec §9 requires a distinguished rejection rather than silently
// ignoring the fields.
var ErrResumeNotSupported = errors.New("replication: resumable transfer (offset_event/offset_value) is not supported")

// RejectIfResumeRequested returns ErrResumeNotSupported if req asks for a
// resumed transfer.
func RejectIfResumeRequested(req Request) error {
	if req.OffsetEvent != 0 || req.OffsetValue != nil {
		return ErrResumeNotSupported
	}
	return nil
}

// RequestDTO is the transport-neutral wire form of Request (spec §6).
type RequestDTO struct {
	New           []byte `json:"new"`
	Old           []byte `json:"old,omitempty"`
	Ordering      string `json:"ordering"`
	PathLength    string `json:"path_length"`
	IncludeValues bool   `json:"include_values"`
	OffsetEvent   uint8  `json:"offset_event,omitempty"`
	OffsetValue   *uint8 `json:"offset_value,omitempty"`
}

// ErrNewWasIncorrectLength is returned when RequestDTO.New is not exactly
// fam.Size() bytes.
var ErrNewWasIncorrectLength = errors.New("replication: new was incorrect length")

// ErrOldWasIncorrectLength is returned when RequestDTO.Old is present but
// not exactly fam.Size() bytes.
var ErrOldWasIncorrectLength = errors.New("replication: old was incorrect length")

// ToRequest validates and converts a RequestDTO into a typed Request
// under digest family fam.
func (dto *RequestDTO) ToRequest(fam digest.Family) (Request, error) {
	if len(dto.New) != fam.Size() {
		return Request{}, ErrNewWasIncorrectLength
	}
	var old digest.Digest
	if dto.Old != nil {
		if len(dto.Old) != fam.Size() {
			return Request{}, ErrOldWasIncorrectLength
		}
		old = digest.Digest(append([]byte(nil), dto.Old...))
	}

	ordering, err := parseOrdering(dto.Ordering)
	if err != nil {
		return Request{}, err
	}
	pathLength, err := parsePathLength(dto.PathLength)
	if err != nil {
		return Request{}, err
	}

	return Request{
		New:           digest.Digest(append([]byte(nil), dto.New...)),
		Old:           old,
		Ordering:      ordering,
		PathLength:    pathLength,
		IncludeValues: dto.IncludeValues,
		OffsetEvent:   dto.OffsetEvent,
		OffsetValue:   dto.OffsetValue,
	}, nil
}

// FromRequest builds a RequestDTO mirroring req.
func FromRequest(req Request) *RequestDTO {
	var old []byte
	if req.Old != nil {
		old = append([]byte(nil), req.Old...)
	}
	return &RequestDTO{
		New:           append([]byte(nil), req.New...),
		Old:           old,
		Ordering:      req.Ordering.String(),
		PathLength:    req.PathLength.String(),
		IncludeValues: req.IncludeValues,
		OffsetEvent:   req.OffsetEvent,
		OffsetValue:   req.OffsetValue,
	}
}

func parseOrdering(s string) (Ordering, error) {
	switch s {
	case "Ascending":
		return Ascending, nil
	case "Descending":
		return Descending, nil
	default:
		return 0, fmt.Errorf("replication: unknown ordering %q", s)
	}
}

func parsePathLength(s string) (PathLength, error) {
	switch s {
	case "ShortestPath":
		return ShortestPath, nil
	case "LongestPath":
		return LongestPath, nil
	default:
		return 0, fmt.Errorf("replication: unknown path_length %q", s)
	}
}
