package curve

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Point is an element of the secp256k1 group. The zero value is the point
// at infinity (the group identity).
type Point struct {
	p secp256k1.JacobianPoint
}

// NewPoint returns the identity point.
func NewPoint() *Point {
	return &Point{}
}

// Generator returns the secp256k1 base point.
func Generator() *Point {
	p := &Point{}
	one := ScalarFromUint32(1)
	secp256k1.ScalarBaseMultNonConst(&one.v, &p.p)
	return p
}

// Set copies a into p and returns p.
func (p *Point) Set(a *Point) *Point {
	p.p.Set(&a.p)
	return p
}

// Add sets p = a + b and returns p.
func (p *Point) Add(a, b *Point) *Point {
	secp256k1.AddNonConst(&a.p, &b.p, &p.p)
	return p
}

// Negate sets p = -a and returns p.
func (p *Point) Negate(a *Point) *Point {
	minusOne := ScalarFromUint32(1)
	minusOne.v.Negate()
	secp256k1.ScalarMultNonConst(&minusOne.v, &a.p, &p.p)
	return p
}

// Sub sets p = a - b and returns p.
func (p *Point) Sub(a, b *Point) *Point {
	var nb Point
	nb.Negate(b)
	secp256k1.AddNonConst(&a.p, &nb.p, &p.p)
	return p
}

// ScalarMult sets p = s*a and returns p.
func (p *Point) ScalarMult(s *Scalar, a *Point) *Point {
	secp256k1.ScalarMultNonConst(&s.v, &a.p, &p.p)
	return p
}

// ScalarBaseMult sets p = s*G, where G is the curve generator, and
// returns p.
func (p *Point) ScalarBaseMult(s *Scalar) *Point {
	secp256k1.ScalarBaseMultNonConst(&s.v, &p.p)
	return p
}

// IsIdentity reports whether p is the point at infinity.
func (p *Point) IsIdentity() bool {
	var z secp256k1.FieldVal
	z.Set(&p.p.Z)
	z.Normalize()
	return z.IsZero()
}

// Equal reports whether p and b denote the same group element.
func (p *Point) Equal(b *Point) bool {
	var pa, pb secp256k1.JacobianPoint
	pa.Set(&p.p)
	pa.ToAffine()
	pb.Set(&b.p)
	pb.ToAffine()
	return pa.X.Equals(&pb.X) && pa.Y.Equals(&pb.Y) && pa.Z.Equals(&pb.Z)
}

// Bytes returns the SEC1 compressed encoding of p (33 bytes), or a single
// zero byte for the identity point.
func (p *Point) Bytes() []byte {
	if p.IsIdentity() {
		return []byte{0x00}
	}
	var a secp256k1.JacobianPoint
	a.Set(&p.p)
	a.ToAffine()
	pub := secp256k1.NewPublicKey(&a.X, &a.Y)
	return pub.SerializeCompressed()
}

// BytesUncompressed returns the SEC1 uncompressed encoding of p (65
// bytes). Used only at the smart-card boundary: internal storage and the
// wire codec always use the compressed form.
func (p *Point) BytesUncompressed() []byte {
	var a secp256k1.JacobianPoint
	a.Set(&p.p)
	a.ToAffine()
	pub := secp256k1.NewPublicKey(&a.X, &a.Y)
	return pub.SerializeUncompressed()
}

// SetBytes decodes a SEC1 point encoding (compressed, uncompressed, or
// the single-byte identity marker produced by Bytes) into p.
func (p *Point) SetBytes(data []byte) (*Point, error) {
	if len(data) == 1 && data[0] == 0x00 {
		p.p = secp256k1.JacobianPoint{}
		return p, nil
	}
	pub, err := secp256k1.ParsePubKey(data)
	if err != nil {
		return nil, fmt.Errorf("curve: invalid point encoding: %w", err)
	}
	pub.AsJacobian(&p.p)
	return p, nil
}
