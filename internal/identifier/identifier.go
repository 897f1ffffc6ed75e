// Package identifier reconciles the three participant-numbering spaces
// this driver has to juggle: the local slot index a host assigns a
// session (0-based), the global index shared across the whole group
// (1-based, G = L+1), and the FROST scalar identifier lifted from it
// (I = G, as a nonzero curve.Scalar). It also implements the one piece of
// arithmetic every round transition needs: recovering the global index a
// peer message at a given position in an inbound batch belongs to, given
// that the sender's own slot is never included in its own inbound batch.
package identifier

import (
	"fmt"

	"github.com/luxfi/frost-driver/internal/curve"
)

// Identifier is a validated, nonzero FROST participant identifier: the
// global index lifted into the scalar field.
type Identifier struct {
	scalar *curve.Scalar
	global uint32
}

// FromUint32 builds an Identifier from a global index. Per the resolved
// Open Question, the zero index is reported as an error rather than
// causing a panic; any nonzero index is accepted.
func FromUint32(global uint32) (Identifier, error) {
	if global < 1 {
		return Identifier{}, fmt.Errorf("identifier: global index %d is not a valid participant identifier: %w", global, ErrInvalidIdentifier)
	}
	return Identifier{scalar: curve.ScalarFromUint32(global), global: global}, nil
}

// ErrInvalidIdentifier is returned by FromUint32 and SetBytes when the
// supplied data does not denote a valid nonzero identifier.
var ErrInvalidIdentifier = fmt.Errorf("identifier: invalid identifier")

// Global returns the 1-based global index this identifier denotes.
func (id Identifier) Global() uint32 {
	return id.global
}

// Scalar returns the identifier lifted into the curve's scalar field.
// The returned Scalar must be treated as read-only by callers.
func (id Identifier) Scalar() *curve.Scalar {
	return id.scalar
}

// Equal reports whether id and other denote the same participant.
func (id Identifier) Equal(other Identifier) bool {
	if id.scalar == nil || other.scalar == nil {
		return id.global == other.global
	}
	return id.scalar.Equal(other.scalar)
}

// Bytes returns the canonical scalar encoding of id, suitable for the
// wire and for snapshots.
func (id Identifier) Bytes() []byte {
	return id.scalar.Bytes()
}

// SetBytes decodes a canonical scalar encoding into an Identifier,
// rejecting the zero scalar (no participant is ever identifier 0).
func SetBytes(data []byte) (Identifier, error) {
	s, err := curve.NewScalar().SetBytes(data)
	if err != nil {
		return Identifier{}, fmt.Errorf("identifier: %w: %w", ErrInvalidIdentifier, err)
	}
	if s.IsZero() {
		return Identifier{}, fmt.Errorf("identifier: zero is not a valid identifier: %w", ErrInvalidIdentifier)
	}
	return Identifier{scalar: s, global: s.Uint32()}, nil
}

// IdentifierAt computes the global index that the message at position
// pos (0-based) within an inbound batch of P-1 peer messages belongs to,
// given the receiving participant's own local slot localSlot. Because a
// participant's own message is never present in its own inbound batch,
// the mapping must skip over localSlot's global index:
//
//	global = pos + 1
//	if global >= localSlot's global index (localSlot+1): global++
//
// at, when non-nil, is consulted to resolve a caller-supplied
// position-to-raw-index mapping (the sign session maps positions onto
// its signing subset's indices, which need not be contiguous); when at
// is nil the plain skip-self arithmetic above is used directly.
func IdentifierAt(pos, localSlot int, at func(int) uint32) (Identifier, error) {
	if pos < 0 || localSlot < 0 {
		return Identifier{}, fmt.Errorf("identifier: negative position or slot: %w", ErrInvalidIdentifier)
	}

	var raw uint32
	if at != nil {
		raw = at(pos)
	} else {
		global := uint32(pos + 1)
		selfGlobal := uint32(localSlot + 1)
		if global >= selfGlobal {
			global++
		}
		raw = global
	}
	return FromUint32(raw)
}
