// Package curve wraps github.com/decred/dcrd/dcrec/secp256k1/v4 behind a
// small Scalar/Point API tailored to what FROST needs: field arithmetic,
// polynomial evaluation, and Lagrange interpolation. Unlike a
// curve-agnostic abstraction, this package is concrete to secp256k1 — the
// only curve this driver ever signs over — so it stays small.
//
// All arithmetic methods use a mutable-receiver pattern: they set the
// receiver to the result and return it, so expressions can be chained
// without hidden allocations:
//
//	z := NewScalar().Mul(a, b)
//	z = NewScalar().Add(z, c)
package curve
