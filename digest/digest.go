// Package digest defines the digest-family abstraction that parameterizes
// the rest of magma: every event link, payload hash, and canonical
// encoding is checked against a fixed-size output produced by whichever
// Family a deployment chooses at construction time.
package digest

import (
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
)

// Digest is a hash output. Its length is always Family.Size() for the
// family that produced it; callers that receive a Digest from untrusted
// input must validate its length against the family in use before relying
// on it.
type Digest []byte

// Equal reports whether two digests hold the same bytes.
func (d Digest) Equal(o Digest) bool {
	if len(d) != len(o) {
		return false
	}
	for i := range d {
		if d[i] != o[i] {
			return false
		}
	}
	return true
}

func (d Digest) String() string {
	return fmt.Sprintf("%x", []byte(d))
}

// Family is the capability set described in spec §9: a fixed output size
// and a hash function over arbitrary bytes. Implementations are expected
// to be stateless and safe for concurrent use.
type Family interface {
	// Name identifies the family, e.g. for config files and logs.
	Name() string
	// Size is |D|, the fixed digest length in bytes.
	Size() int
	// Sum returns the Size()-byte digest of data.
	Sum(data []byte) Digest
}

// keccak256Family implements Family using go-ethereum's Keccak256, the
// hash primitive already wired through the rest of the Fantom/Opera stack
// this module descends from.
type keccak256Family struct{}

// Keccak256 is the default digest family: |D| = 32.
var Keccak256 Family = keccak256Family{}

func (keccak256Family) Name() string { return "keccak256" }
func (keccak256Family) Size() int    { return 32 }

func (keccak256Family) Sum(data []byte) Digest {
	h := crypto.Keccak256(data)
	return Digest(h)
}

// ValidateLength checks that d has exactly fam.Size() bytes, returning
// ErrInvalidLength{expected,actual} otherwise. DTO conversions call this
// whenever a digest arrives from untrusted wire bytes.
func ValidateLength(fam Family, d []byte) error {
	if len(d) != fam.Size() {
		return &ErrInvalidLength{Expected: fam.Size(), Actual: len(d)}
	}
	return nil
}

// ErrInvalidLength is returned when a wire-supplied digest does not match
// the configured family's size.
type ErrInvalidLength struct {
	Expected int
	Actual   int
}

func (e *ErrInvalidLength) Error() string {
	return fmt.Sprintf("digest: invalid length: expected %d bytes, got %d", e.Expected, e.Actual)
}
