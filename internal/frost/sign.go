package frost

import (
	"crypto/rand"
	"fmt"
	"io"
	"sort"

	"github.com/zeebo/blake3"

	"github.com/luxfi/frost-driver/internal/curve"
	"github.com/luxfi/frost-driver/internal/identifier"
)

// SigningNonces is the private output of Commit: the hiding and binding
// nonce scalars, which must be kept secret and used exactly once.
type SigningNonces struct {
	Hiding  *curve.Scalar
	Binding *curve.Scalar
}

// SigningCommitments is the broadcast output of Commit: the public
// points corresponding to a participant's hiding and binding nonces.
type SigningCommitments struct {
	Sender  identifier.Identifier
	Hiding  *curve.Point
	Binding *curve.Point
}

// SigningPackage is the coordinator-assembled input to Sign: the message
// to sign and every participating signer's commitments, keyed by global
// index.
type SigningPackage struct {
	Message     []byte
	Commitments map[uint32]SigningCommitments
}

// SignatureShare is this participant's contribution to the aggregated
// signature.
type SignatureShare struct {
	Sender identifier.Identifier
	Z      *curve.Scalar
}

// Signature is a completed Schnorr signature over secp256k1.
type Signature struct {
	R *curve.Point
	Z *curve.Scalar
}

// Commit derives a fresh pair of signing nonces and their public
// commitments. Nonce derivation is hedged: it mixes the participant's
// signing share with fresh randomness through a keyed hash, so a faulty
// RNG degrades to deterministic-but-still-share-bound nonces rather than
// an outright nonce leak.
func Commit(keyPkg *KeyPackage, rng io.Reader) (*SigningNonces, *SigningCommitments, error) {
	if rng == nil {
		rng = rand.Reader
	}
	shareBytes := keyPkg.SigningShare.Bytes()

	hashKey := make([]byte, 32)
	if _, err := io.ReadFull(rng, hashKey); err != nil {
		return nil, nil, fmt.Errorf("frost: sign commit: %w", err)
	}
	randomness := make([]byte, 32)
	if _, err := io.ReadFull(rng, randomness); err != nil {
		return nil, nil, fmt.Errorf("frost: sign commit: %w", err)
	}

	hiding := hedgedNonce(shareBytes, hashKey, randomness, "hiding")
	binding := hedgedNonce(shareBytes, hashKey, randomness, "binding")

	nonces := &SigningNonces{Hiding: hiding, Binding: binding}
	commitments := &SigningCommitments{
		Sender:  keyPkg.ID,
		Hiding:  curve.NewPoint().ScalarBaseMult(hiding),
		Binding: curve.NewPoint().ScalarBaseMult(binding),
	}
	return nonces, commitments, nil
}

func hedgedNonce(shareBytes, hashKey, randomness []byte, label string) *curve.Scalar {
	derivedKey := blake3.DeriveKey("frost-driver/sign/nonce/"+label+"/v1", hashKey)
	h := blake3.New()
	h.Write(derivedKey)
	h.Write(shareBytes)
	h.Write(randomness)
	return curve.ScalarFromHash(h.Sum(nil))
}

// Sign computes this participant's signature share over pkg.Message,
// using the binding factors derived from every signer's commitments in
// pkg.Commitments.
func Sign(keyPkg *KeyPackage, nonces *SigningNonces, pkg *SigningPackage, pubPkg *PublicKeyPackage) (*SignatureShare, error) {
	selfGlobal := keyPkg.ID.Global()
	if _, ok := pkg.Commitments[selfGlobal]; !ok {
		return nil, fmt.Errorf("frost: sign: own commitment missing from signing package: %w", ErrCrypto)
	}

	factors := computeBindingFactors(pkg)
	r := groupCommitment(pkg, factors)
	c := computeChallenge(r, pubPkg.VerifyingKey, pkg.Message)

	ids, err := commitmentIdentifiers(pkg)
	if err != nil {
		return nil, err
	}
	lambda, err := curve.LagrangeCoefficient(keyPkg.ID.Scalar(), ids)
	if err != nil {
		return nil, fmt.Errorf("frost: sign: %w", err)
	}

	rho := factors[selfGlobal]
	z := curve.NewScalar().Add(nonces.Hiding, curve.NewScalar().Mul(nonces.Binding, rho))
	lambdaShare := curve.NewScalar().Mul(lambda, keyPkg.SigningShare)
	z.Add(z, curve.NewScalar().Mul(lambdaShare, c))

	return &SignatureShare{Sender: keyPkg.ID, Z: z}, nil
}

// Aggregate verifies every signature share against its participant's
// verifying share and sums them into a final signature, re-verifying the
// result against the group verifying key before returning it.
func Aggregate(pkg *SigningPackage, shares map[uint32]SignatureShare, pubPkg *PublicKeyPackage) (*Signature, error) {
	factors := computeBindingFactors(pkg)
	r := groupCommitment(pkg, factors)
	c := computeChallenge(r, pubPkg.VerifyingKey, pkg.Message)

	ids, err := commitmentIdentifiers(pkg)
	if err != nil {
		return nil, err
	}

	z := curve.NewScalar()
	for g, share := range shares {
		if err := verifyShare(pkg, share, ids, factors, c, pubPkg); err != nil {
			return nil, fmt.Errorf("frost: aggregate: sender %d: %w", g, err)
		}
		z.Add(z, share.Z)
	}

	sig := &Signature{R: r, Z: z}
	if !Verify(sig, pubPkg.VerifyingKey, pkg.Message) {
		return nil, fmt.Errorf("frost: aggregate: aggregated signature failed verification: %w", ErrCrypto)
	}
	return sig, nil
}

// Verify reports whether sig is a valid Schnorr signature over message
// under groupPublicKey.
func Verify(sig *Signature, groupPublicKey *curve.Point, message []byte) bool {
	c := computeChallenge(sig.R, groupPublicKey, message)
	lhs := curve.NewPoint().ScalarBaseMult(sig.Z)
	rhs := curve.NewPoint().Add(sig.R, curve.NewPoint().ScalarMult(c, groupPublicKey))
	return lhs.Equal(rhs)
}

func verifyShare(pkg *SigningPackage, share SignatureShare, ids []*curve.Scalar, factors map[uint32]*curve.Scalar, c *curve.Scalar, pubPkg *PublicKeyPackage) error {
	g := share.Sender.Global()
	commitment, ok := pkg.Commitments[g]
	if !ok {
		return fmt.Errorf("no matching commitment: %w", ErrCrypto)
	}
	verifyingShare, ok := pubPkg.VerifyingShares[g]
	if !ok {
		return fmt.Errorf("no verifying share on file: %w", ErrCrypto)
	}

	lambda, err := curve.LagrangeCoefficient(share.Sender.Scalar(), ids)
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	rho := factors[g]
	lhs := curve.NewPoint().ScalarBaseMult(share.Z)
	nonceTerm := curve.NewPoint().Add(commitment.Hiding, curve.NewPoint().ScalarMult(rho, commitment.Binding))
	lambdaC := curve.NewScalar().Mul(lambda, c)
	rhs := curve.NewPoint().Add(nonceTerm, curve.NewPoint().ScalarMult(lambdaC, verifyingShare))

	if !lhs.Equal(rhs) {
		return fmt.Errorf("invalid signature share: %w", ErrCrypto)
	}
	return nil
}

func computeBindingFactors(pkg *SigningPackage) map[uint32]*curve.Scalar {
	ids := sortedGlobalIndices(pkg.Commitments)

	h := blake3.New()
	h.Write([]byte("frost-driver/sign/binding/v1"))
	h.Write(pkg.Message)
	for _, g := range ids {
		c := pkg.Commitments[g]
		h.Write(c.Sender.Bytes())
		h.Write(c.Hiding.Bytes())
		h.Write(c.Binding.Bytes())
	}
	base := h.Sum(nil)

	factors := make(map[uint32]*curve.Scalar, len(ids))
	for _, g := range ids {
		hp := blake3.New()
		hp.Write(base)
		hp.Write(pkg.Commitments[g].Sender.Bytes())
		factors[g] = curve.ScalarFromHash(hp.Sum(nil))
	}
	return factors
}

func groupCommitment(pkg *SigningPackage, factors map[uint32]*curve.Scalar) *curve.Point {
	r := curve.NewPoint()
	for g, c := range pkg.Commitments {
		term := curve.NewPoint().Add(c.Hiding, curve.NewPoint().ScalarMult(factors[g], c.Binding))
		r.Add(r, term)
	}
	return r
}

func computeChallenge(r, groupPublicKey *curve.Point, message []byte) *curve.Scalar {
	h := blake3.New()
	h.Write([]byte("frost-driver/sign/challenge/v1"))
	h.Write(r.Bytes())
	h.Write(groupPublicKey.Bytes())
	h.Write(message)
	return curve.ScalarFromHash(h.Sum(nil))
}

func commitmentIdentifiers(pkg *SigningPackage) ([]*curve.Scalar, error) {
	ids := make([]*curve.Scalar, 0, len(pkg.Commitments))
	for _, g := range sortedGlobalIndices(pkg.Commitments) {
		id, err := identifier.FromUint32(g)
		if err != nil {
			return nil, fmt.Errorf("frost: sign: %w", err)
		}
		ids = append(ids, id.Scalar())
	}
	return ids, nil
}

func sortedGlobalIndices(commitments map[uint32]SigningCommitments) []uint32 {
	ids := make([]uint32, 0, len(commitments))
	for g := range commitments {
		ids = append(ids, g)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
