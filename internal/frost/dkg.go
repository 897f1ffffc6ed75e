package frost

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/zeebo/blake3"

	"github.com/luxfi/frost-driver/internal/curve"
	"github.com/luxfi/frost-driver/internal/identifier"
)

// Round1Secret is the output of Part1 that must be kept private and fed
// back into Part2: the participant's secret polynomial coefficients.
type Round1Secret struct {
	ID           identifier.Identifier
	Coefficients []*curve.Scalar
}

// Round1Package is the broadcast output of Part1: commitments to the
// secret polynomial's coefficients plus a proof of knowledge of the
// constant term, preventing rogue-key attacks.
type Round1Package struct {
	Sender     identifier.Identifier
	Commitment []*curve.Point
	ProofR     *curve.Point
	ProofZ     *curve.Scalar
}

// Round2Package is the unicast output of Part2: the secret share this
// participant's polynomial evaluates to at the recipient's identifier.
type Round2Package struct {
	Sender    identifier.Identifier
	Recipient identifier.Identifier
	Share     *curve.Scalar
}

// Round2Secret carries state from Part2 into Part3: the original secret
// polynomial plus every peer's round-1 commitment vector, needed to
// Feldman-check their round-2 shares.
type Round2Secret struct {
	Round1Secret
	Round1Packages map[uint32]Round1Package
}

// KeyPackage is this participant's share of a completed DKG: its signing
// share, its own verifying share, and the shared group verifying key.
type KeyPackage struct {
	ID             identifier.Identifier
	SigningShare   *curve.Scalar
	VerifyingShare *curve.Point
	VerifyingKey   *curve.Point
	Threshold      int
}

// PublicKeyPackage is the public output of a completed DKG, identical
// across every participant: the group verifying key and every
// participant's individual verifying share.
type PublicKeyPackage struct {
	VerifyingKey    *curve.Point
	VerifyingShares map[uint32]*curve.Point
}

// Part1 samples a fresh secret polynomial of degree threshold-1 and
// returns the private coefficients alongside the broadcast package: the
// coefficient commitments and a Schnorr proof of knowledge of the
// constant term (this participant's raw secret contribution).
func Part1(id identifier.Identifier, threshold int, rng io.Reader) (*Round1Secret, *Round1Package, error) {
	if rng == nil {
		rng = rand.Reader
	}
	if threshold < 1 {
		return nil, nil, fmt.Errorf("frost: dkg part1: threshold must be at least 1")
	}

	coeffs := make([]*curve.Scalar, threshold)
	for i := range coeffs {
		c, err := curve.RandomScalar(rng)
		if err != nil {
			return nil, nil, fmt.Errorf("frost: dkg part1: sampling coefficient: %w", err)
		}
		coeffs[i] = c
	}

	commitment := commitmentFromCoeffs(coeffs)

	k, err := curve.RandomScalar(rng)
	if err != nil {
		return nil, nil, fmt.Errorf("frost: dkg part1: sampling proof nonce: %w", err)
	}
	r := curve.NewPoint().ScalarBaseMult(k)
	c := pokChallenge(id, commitment[0], r)
	z := curve.NewScalar().Add(k, curve.NewScalar().Mul(coeffs[0], c))

	secret := &Round1Secret{ID: id, Coefficients: coeffs}
	pkg := &Round1Package{Sender: id, Commitment: commitment, ProofR: r, ProofZ: z}
	return secret, pkg, nil
}

// Part2 verifies every peer's round-1 proof of knowledge and issues one
// secret share per peer, evaluating this participant's polynomial at
// each peer's identifier.
func Part2(secret *Round1Secret, received map[uint32]Round1Package) (*Round2Secret, map[uint32]Round2Package, error) {
	for g, pkg := range received {
		if err := verifyPoK(pkg); err != nil {
			return nil, nil, fmt.Errorf("frost: dkg part2: sender %d: %w", g, err)
		}
	}

	out := make(map[uint32]Round2Package, len(received))
	for g, pkg := range received {
		share := curve.EvalPolynomial(secret.Coefficients, pkg.Sender.Scalar())
		out[g] = Round2Package{Sender: secret.ID, Recipient: pkg.Sender, Share: share}
	}

	round1Packages := make(map[uint32]Round1Package, len(received))
	for g, pkg := range received {
		round1Packages[g] = pkg
	}

	round2Secret := &Round2Secret{Round1Secret: *secret, Round1Packages: round1Packages}
	return round2Secret, out, nil
}

// Part3 Feldman-checks every received round-2 share against its sender's
// round-1 commitment, sums the shares (plus this participant's own
// evaluation of its own polynomial) into a signing share, and derives
// the group verifying key and every participant's verifying share.
func Part3(secret *Round2Secret, received map[uint32]Round2Package, threshold int) (*KeyPackage, *PublicKeyPackage, error) {
	selfGlobal := secret.ID.Global()

	signingShare := curve.EvalPolynomial(secret.Coefficients, secret.ID.Scalar())

	for g, pkg := range received {
		commitment, ok := secret.Round1Packages[g]
		if !ok {
			return nil, nil, fmt.Errorf("frost: dkg part3: no round1 commitment on file for sender %d: %w", g, ErrCrypto)
		}
		expected := EvalCommitment(commitment.Commitment, secret.ID.Scalar())
		actual := curve.NewPoint().ScalarBaseMult(pkg.Share)
		if !actual.Equal(expected) {
			return nil, nil, fmt.Errorf("frost: dkg part3: feldman check failed for sender %d: %w", g, ErrCrypto)
		}
		signingShare = curve.NewScalar().Add(signingShare, pkg.Share)
	}

	allCommitments := make(map[uint32][]*curve.Point, len(secret.Round1Packages)+1)
	for g, pkg := range secret.Round1Packages {
		allCommitments[g] = pkg.Commitment
	}
	allCommitments[selfGlobal] = commitmentFromCoeffs(secret.Coefficients)

	verifyingKey := curve.NewPoint()
	for _, commitment := range allCommitments {
		verifyingKey.Add(verifyingKey, commitment[0])
	}

	verifyingShares := make(map[uint32]*curve.Point, len(allCommitments))
	for g := range allCommitments {
		id, err := identifier.FromUint32(g)
		if err != nil {
			return nil, nil, fmt.Errorf("frost: dkg part3: %w", err)
		}
		share := curve.NewPoint()
		for _, commitment := range allCommitments {
			share.Add(share, EvalCommitment(commitment, id.Scalar()))
		}
		verifyingShares[g] = share
	}

	keyPkg := &KeyPackage{
		ID:             secret.ID,
		SigningShare:   signingShare,
		VerifyingShare: verifyingShares[selfGlobal],
		VerifyingKey:   verifyingKey,
		Threshold:      threshold,
	}
	pubPkg := &PublicKeyPackage{VerifyingKey: verifyingKey, VerifyingShares: verifyingShares}
	return keyPkg, pubPkg, nil
}

// EvalCommitment evaluates a coefficient-commitment vector (points, not
// scalars) at x using the same Horner's-method structure as
// curve.EvalPolynomial. This is what makes the Feldman check and
// verifying-share derivation possible without ever reconstructing a
// peer's secret polynomial.
func EvalCommitment(commitment []*curve.Point, x *curve.Scalar) *curve.Point {
	result := curve.NewPoint().Set(commitment[len(commitment)-1])
	for i := len(commitment) - 2; i >= 0; i-- {
		result = curve.NewPoint().ScalarMult(x, result)
		result.Add(result, commitment[i])
	}
	return result
}

func commitmentFromCoeffs(coeffs []*curve.Scalar) []*curve.Point {
	out := make([]*curve.Point, len(coeffs))
	for i, c := range coeffs {
		out[i] = curve.NewPoint().ScalarBaseMult(c)
	}
	return out
}

func pokChallenge(id identifier.Identifier, commitment0, r *curve.Point) *curve.Scalar {
	h := blake3.New()
	h.Write([]byte("frost-driver/dkg/pok/v1"))
	h.Write(id.Bytes())
	h.Write(commitment0.Bytes())
	h.Write(r.Bytes())
	return curve.ScalarFromHash(h.Sum(nil))
}

func verifyPoK(pkg Round1Package) error {
	c := pokChallenge(pkg.Sender, pkg.Commitment[0], pkg.ProofR)
	lhs := curve.NewPoint().ScalarBaseMult(pkg.ProofZ)
	rhs := curve.NewPoint().Add(pkg.ProofR, curve.NewPoint().ScalarMult(c, pkg.Commitment[0]))
	if !lhs.Equal(rhs) {
		return fmt.Errorf("frost: invalid proof of knowledge from participant %d: %w", pkg.Sender.Global(), ErrCrypto)
	}
	return nil
}
