package curve

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScalarArithmetic(t *testing.T) {
	a := ScalarFromUint32(5)
	b := ScalarFromUint32(7)

	sum := NewScalar().Add(a, b)
	require.True(t, sum.Equal(ScalarFromUint32(12)))

	diff := NewScalar().Sub(b, a)
	require.True(t, diff.Equal(ScalarFromUint32(2)))

	prod := NewScalar().Mul(a, b)
	require.True(t, prod.Equal(ScalarFromUint32(35)))

	inv, err := NewScalar().Invert(a)
	require.NoError(t, err)
	one := NewScalar().Mul(a, inv)
	require.True(t, one.Equal(ScalarFromUint32(1)))

	neg := NewScalar().Negate(a)
	require.True(t, NewScalar().Add(a, neg).IsZero())
}

func TestScalarInvertZero(t *testing.T) {
	_, err := NewScalar().Invert(NewScalar())
	require.Error(t, err)
}

func TestScalarBytesRoundTrip(t *testing.T) {
	s := ScalarFromUint32(424242)
	data := s.Bytes()
	require.Len(t, data, 32)

	restored, err := NewScalar().SetBytes(data)
	require.NoError(t, err)
	require.True(t, s.Equal(restored))
}

func TestScalarSetBytesRejectsOverflow(t *testing.T) {
	overflow := make([]byte, 32)
	for i := range overflow {
		overflow[i] = 0xFF
	}
	_, err := NewScalar().SetBytes(overflow)
	require.Error(t, err)
}

func TestPointScalarBaseMultMatchesGenerator(t *testing.T) {
	one := ScalarFromUint32(1)
	g := NewPoint().ScalarBaseMult(one)
	require.True(t, g.Equal(Generator()))
}

func TestPointAddSubIdentity(t *testing.T) {
	g := Generator()
	two := ScalarFromUint32(2)
	doubled := NewPoint().ScalarBaseMult(two)

	sum := NewPoint().Add(g, g)
	require.True(t, sum.Equal(doubled))

	back := NewPoint().Sub(sum, g)
	require.True(t, back.Equal(g))

	zero := NewPoint().Sub(g, g)
	require.True(t, zero.IsIdentity())
}

func TestPointBytesRoundTrip(t *testing.T) {
	s := ScalarFromUint32(99)
	p := NewPoint().ScalarBaseMult(s)

	compressed := p.Bytes()
	require.Len(t, compressed, 33)

	restored, err := NewPoint().SetBytes(compressed)
	require.NoError(t, err)
	require.True(t, p.Equal(restored))

	uncompressed := p.BytesUncompressed()
	require.Len(t, uncompressed, 65)

	restoredUncompressed, err := NewPoint().SetBytes(uncompressed)
	require.NoError(t, err)
	require.True(t, p.Equal(restoredUncompressed))
}

func TestPointIdentityEncoding(t *testing.T) {
	id := NewPoint()
	require.True(t, id.IsIdentity())
	require.Equal(t, []byte{0x00}, id.Bytes())

	restored, err := NewPoint().SetBytes([]byte{0x00})
	require.NoError(t, err)
	require.True(t, restored.IsIdentity())
}

func TestEvalPolynomialConstantTerm(t *testing.T) {
	coeffs := []*Scalar{ScalarFromUint32(3), ScalarFromUint32(5)}
	at0 := EvalPolynomial(coeffs, NewScalar())
	require.True(t, at0.Equal(ScalarFromUint32(3)))

	at1 := EvalPolynomial(coeffs, ScalarFromUint32(1))
	require.True(t, at1.Equal(ScalarFromUint32(8)))
}

func TestLagrangeCoefficientReconstructsSecret(t *testing.T) {
	secret := ScalarFromUint32(42)
	coeffA := ScalarFromUint32(11)
	coeffs := []*Scalar{secret, coeffA}

	ids := []*Scalar{ScalarFromUint32(1), ScalarFromUint32(2), ScalarFromUint32(3)}
	shares := make([]*Scalar, len(ids))
	for i, id := range ids {
		shares[i] = EvalPolynomial(coeffs, id)
	}

	reconstructed := NewScalar()
	for i, id := range ids {
		lambda, err := LagrangeCoefficient(id, ids)
		require.NoError(t, err)
		term := NewScalar().Mul(lambda, shares[i])
		reconstructed.Add(reconstructed, term)
	}

	require.True(t, reconstructed.Equal(secret))
}
