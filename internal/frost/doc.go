// Package frost implements the FROST distributed key generation and
// threshold Schnorr signing primitives this driver's round-by-round
// state machines delegate to. It plays the role of the external FROST
// cryptographic library: callers (internal/driver) use internal/curve
// only to encode and decode wire bytes, and hand this package round
// inputs to get back round outputs.
//
// DKG is a three-round Pedersen scheme with Feldman verifiable secret
// sharing: Part1 samples a secret polynomial and broadcasts its
// coefficient commitments plus a Schnorr proof of knowledge of the
// constant term; Part2 verifies peers' proofs and issues one secret
// share per peer; Part3 verifies the Feldman check on every received
// share, sums them into this participant's signing share, and derives
// the shared group verifying key and per-participant verifying shares.
//
// Signing is the standard two-round FROST protocol: Commit derives a
// pair of hiding/binding nonces and publishes their public commitments;
// Sign computes per-participant binding factors, the group commitment,
// and this participant's signature share; Aggregate verifies every
// share against its participant's verifying share before summing them
// into the final Schnorr signature.
package frost
