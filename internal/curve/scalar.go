package curve

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Scalar is an element of the secp256k1 scalar field (integers modulo the
// group order). The zero value is the scalar 0.
type Scalar struct {
	v secp256k1.ModNScalar
}

// NewScalar returns the scalar 0.
func NewScalar() *Scalar {
	return &Scalar{}
}

// ScalarFromUint32 lifts a small non-negative integer into the scalar
// field. Participant identifiers and polynomial-index arithmetic go
// through this path rather than through ModNScalar.SetInt directly, so
// that the conversion is expressed over saferith.Nat the way the rest of
// this dependency's call sites in the retrieval pack do.
func ScalarFromUint32(n uint32) *Scalar {
	nat := new(saferith.Nat).SetUint64(uint64(n))
	raw := nat.Bytes()
	var buf [32]byte
	copy(buf[32-len(raw):], raw)
	s := &Scalar{}
	s.v.SetByteSlice(buf[:])
	return s
}

// ScalarFromHash reduces an arbitrary-length hash digest into a scalar.
// Unlike SetBytes, this never rejects its input: reduction mod the group
// order is the expected behavior for hash-to-scalar use (challenge and
// binding-factor derivation).
func ScalarFromHash(digest []byte) *Scalar {
	s := &Scalar{}
	s.v.SetByteSlice(digest)
	return s
}

// RandomScalar draws a uniformly random nonzero scalar from rng, using
// rejection sampling so the result is unbiased.
func RandomScalar(rng io.Reader) (*Scalar, error) {
	if rng == nil {
		rng = rand.Reader
	}
	var buf [32]byte
	for {
		if _, err := io.ReadFull(rng, buf[:]); err != nil {
			return nil, fmt.Errorf("curve: reading randomness: %w", err)
		}
		var v secp256k1.ModNScalar
		overflow := v.SetByteSlice(buf[:])
		if overflow || v.IsZero() {
			continue
		}
		return &Scalar{v: v}, nil
	}
}

// Set copies a into s and returns s.
func (s *Scalar) Set(a *Scalar) *Scalar {
	s.v = a.v
	return s
}

// Add sets s = a + b and returns s.
func (s *Scalar) Add(a, b *Scalar) *Scalar {
	s.v.Add2(&a.v, &b.v)
	return s
}

// Sub sets s = a - b and returns s.
func (s *Scalar) Sub(a, b *Scalar) *Scalar {
	neg := b.v
	neg.Negate()
	s.v.Add2(&a.v, &neg)
	return s
}

// Mul sets s = a * b and returns s.
func (s *Scalar) Mul(a, b *Scalar) *Scalar {
	s.v.Mul2(&a.v, &b.v)
	return s
}

// Negate sets s = -a and returns s.
func (s *Scalar) Negate(a *Scalar) *Scalar {
	s.v = a.v
	s.v.Negate()
	return s
}

// Invert sets s = a^-1 and returns s. Inverting the zero scalar is an
// error: it has no multiplicative inverse.
func (s *Scalar) Invert(a *Scalar) (*Scalar, error) {
	if a.v.IsZero() {
		return nil, fmt.Errorf("curve: cannot invert zero scalar")
	}
	s.v = a.v
	s.v.InverseNonConst()
	return s, nil
}

// Equal reports whether s and b denote the same field element.
func (s *Scalar) Equal(b *Scalar) bool {
	return s.v.Equals(&b.v)
}

// IsZero reports whether s is the additive identity.
func (s *Scalar) IsZero() bool {
	return s.v.IsZero()
}

// Bytes returns the big-endian canonical encoding of s, always 32 bytes.
func (s *Scalar) Bytes() []byte {
	b := s.v.Bytes()
	out := make([]byte, 32)
	copy(out, b[:])
	return out
}

// SetBytes decodes a canonical 32-byte big-endian scalar encoding into s.
// Encodings at or above the group order are rejected: scalars arriving
// over the wire (signature shares, commitments) must be canonical.
func (s *Scalar) SetBytes(data []byte) (*Scalar, error) {
	var v secp256k1.ModNScalar
	overflow := v.SetByteSlice(data)
	if overflow {
		return nil, fmt.Errorf("curve: scalar out of range")
	}
	s.v = v
	return s, nil
}

// Uint32 returns the low 32 bits of s's canonical big-endian encoding as
// an unsigned integer. Used to recover a participant's global index from
// its scalar identifier, which by construction never holds a value
// exceeding the group's participant count.
func (s *Scalar) Uint32() uint32 {
	b := s.Bytes()
	return uint32(b[28])<<24 | uint32(b[29])<<16 | uint32(b[30])<<8 | uint32(b[31])
}

// EvalPolynomial evaluates coeffs (constant term first) at x using Horner's
// method and returns the result in a freshly allocated Scalar.
func EvalPolynomial(coeffs []*Scalar, x *Scalar) *Scalar {
	result := NewScalar().Set(coeffs[len(coeffs)-1])
	for i := len(coeffs) - 2; i >= 0; i-- {
		result.Mul(result, x)
		result.Add(result, coeffs[i])
	}
	return result
}

// LagrangeCoefficient computes the Lagrange basis coefficient for self
// evaluated at x=0, over the participant set all (self must appear in
// all). This is the weight applied to self's signing share / DKG
// contribution when interpolating the secret at the origin.
func LagrangeCoefficient(self *Scalar, all []*Scalar) (*Scalar, error) {
	num := ScalarFromUint32(1)
	den := ScalarFromUint32(1)
	for _, other := range all {
		if other.Equal(self) {
			continue
		}
		num = NewScalar().Mul(num, other)
		diff := NewScalar().Sub(other, self)
		den = NewScalar().Mul(den, diff)
	}
	denInv, err := NewScalar().Invert(den)
	if err != nil {
		return nil, fmt.Errorf("curve: degenerate participant set, duplicate identifiers: %w", err)
	}
	return NewScalar().Mul(num, denInv), nil
}
