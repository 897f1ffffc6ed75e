package driver

import (
	"fmt"

	"github.com/luxfi/frost-driver/internal/codec"
	"github.com/luxfi/frost-driver/internal/curve"
	"github.com/luxfi/frost-driver/internal/frost"
	"github.com/luxfi/frost-driver/internal/identifier"
)

func round1PackageToWire(pkg *frost.Round1Package) codec.Round1PackageWire {
	commitment := make([][]byte, len(pkg.Commitment))
	for i, c := range pkg.Commitment {
		commitment[i] = c.Bytes()
	}
	return codec.Round1PackageWire{
		Sender:     pkg.Sender.Bytes(),
		Commitment: commitment,
		ProofR:     pkg.ProofR.Bytes(),
		ProofZ:     pkg.ProofZ.Bytes(),
	}
}

// wireToRound1Package decodes a round-1 package and cross-checks that
// the sender it claims matches expectedSender, the identifier the
// skip-self positional rule computed for its slot in the inbound batch.
func wireToRound1Package(w codec.Round1PackageWire, expectedSender identifier.Identifier) (frost.Round1Package, error) {
	sender, err := identifier.SetBytes(w.Sender)
	if err != nil {
		return frost.Round1Package{}, newError(InvalidIdentifier, "round1 package sender", err)
	}
	if !sender.Equal(expectedSender) {
		return frost.Round1Package{}, newError(DecodeError, "round1 package sender does not match its position in the inbound batch", nil)
	}

	commitment := make([]*curve.Point, len(w.Commitment))
	for i, raw := range w.Commitment {
		p, err := curve.NewPoint().SetBytes(raw)
		if err != nil {
			return frost.Round1Package{}, newError(InvalidPointEncoding, "round1 commitment", err)
		}
		commitment[i] = p
	}
	r, err := curve.NewPoint().SetBytes(w.ProofR)
	if err != nil {
		return frost.Round1Package{}, newError(InvalidPointEncoding, "round1 proof commitment", err)
	}
	z, err := curve.NewScalar().SetBytes(w.ProofZ)
	if err != nil {
		return frost.Round1Package{}, newError(CryptoError, "round1 proof response", err)
	}
	return frost.Round1Package{Sender: sender, Commitment: commitment, ProofR: r, ProofZ: z}, nil
}

func round2PackageToWire(pkg frost.Round2Package) codec.Round2PackageWire {
	return codec.Round2PackageWire{Sender: pkg.Sender.Bytes(), Share: pkg.Share.Bytes()}
}

func wireToRound2Package(w codec.Round2PackageWire, expectedSender, recipient identifier.Identifier) (frost.Round2Package, error) {
	sender, err := identifier.SetBytes(w.Sender)
	if err != nil {
		return frost.Round2Package{}, newError(InvalidIdentifier, "round2 package sender", err)
	}
	if !sender.Equal(expectedSender) {
		return frost.Round2Package{}, newError(DecodeError, "round2 package sender does not match its position in the inbound batch", nil)
	}
	share, err := curve.NewScalar().SetBytes(w.Share)
	if err != nil {
		return frost.Round2Package{}, newError(CryptoError, "round2 share", err)
	}
	return frost.Round2Package{Sender: sender, Recipient: recipient, Share: share}, nil
}

func keyPackageToWire(kp *frost.KeyPackage) codec.KeyPackageWire {
	return codec.KeyPackageWire{
		ID:             kp.ID.Bytes(),
		SigningShare:   kp.SigningShare.Bytes(),
		VerifyingShare: kp.VerifyingShare.Bytes(),
		VerifyingKey:   kp.VerifyingKey.Bytes(),
		Threshold:      uint32(kp.Threshold),
	}
}

func wireToKeyPackage(w codec.KeyPackageWire) (*frost.KeyPackage, error) {
	id, err := identifier.SetBytes(w.ID)
	if err != nil {
		return nil, newError(InvalidIdentifier, "key package id", err)
	}
	signingShare, err := curve.NewScalar().SetBytes(w.SigningShare)
	if err != nil {
		return nil, newError(CryptoError, "key package signing share", err)
	}
	verifyingShare, err := curve.NewPoint().SetBytes(w.VerifyingShare)
	if err != nil {
		return nil, newError(InvalidPointEncoding, "key package verifying share", err)
	}
	verifyingKey, err := curve.NewPoint().SetBytes(w.VerifyingKey)
	if err != nil {
		return nil, newError(InvalidPointEncoding, "key package verifying key", err)
	}
	return &frost.KeyPackage{
		ID:             id,
		SigningShare:   signingShare,
		VerifyingShare: verifyingShare,
		VerifyingKey:   verifyingKey,
		Threshold:      int(w.Threshold),
	}, nil
}

func publicKeyPackageToWire(pp *frost.PublicKeyPackage) codec.PublicKeyPackageWire {
	shares := make(map[uint32][]byte, len(pp.VerifyingShares))
	for g, p := range pp.VerifyingShares {
		shares[g] = p.Bytes()
	}
	return codec.PublicKeyPackageWire{VerifyingKey: pp.VerifyingKey.Bytes(), VerifyingShares: shares}
}

func wireToPublicKeyPackage(w codec.PublicKeyPackageWire) (*frost.PublicKeyPackage, error) {
	verifyingKey, err := curve.NewPoint().SetBytes(w.VerifyingKey)
	if err != nil {
		return nil, newError(InvalidPointEncoding, "public key package verifying key", err)
	}
	shares := make(map[uint32]*curve.Point, len(w.VerifyingShares))
	for g, raw := range w.VerifyingShares {
		p, err := curve.NewPoint().SetBytes(raw)
		if err != nil {
			return nil, newError(InvalidPointEncoding, fmt.Sprintf("verifying share for participant %d", g), err)
		}
		shares[g] = p
	}
	return &frost.PublicKeyPackage{VerifyingKey: verifyingKey, VerifyingShares: shares}, nil
}

func signingCommitmentsToWire(c *frost.SigningCommitments) codec.SigningCommitmentsWire {
	return codec.SigningCommitmentsWire{Sender: c.Sender.Bytes(), Hiding: c.Hiding.Bytes(), Binding: c.Binding.Bytes()}
}

func wireToSigningCommitments(w codec.SigningCommitmentsWire, expectedSender identifier.Identifier) (frost.SigningCommitments, error) {
	sender, err := identifier.SetBytes(w.Sender)
	if err != nil {
		return frost.SigningCommitments{}, newError(InvalidIdentifier, "signing commitments sender", err)
	}
	if !sender.Equal(expectedSender) {
		return frost.SigningCommitments{}, newError(DecodeError, "signing commitments sender does not match its position in the inbound batch", nil)
	}
	hiding, err := curve.NewPoint().SetBytes(w.Hiding)
	if err != nil {
		return frost.SigningCommitments{}, newError(InvalidPointEncoding, "hiding commitment", err)
	}
	binding, err := curve.NewPoint().SetBytes(w.Binding)
	if err != nil {
		return frost.SigningCommitments{}, newError(InvalidPointEncoding, "binding commitment", err)
	}
	return frost.SigningCommitments{Sender: sender, Hiding: hiding, Binding: binding}, nil
}

func signatureShareToWire(s *frost.SignatureShare) codec.SignatureShareWire {
	return codec.SignatureShareWire{Sender: s.Sender.Bytes(), Z: s.Z.Bytes()}
}

func wireToSignatureShare(w codec.SignatureShareWire, expectedSender identifier.Identifier) (frost.SignatureShare, error) {
	sender, err := identifier.SetBytes(w.Sender)
	if err != nil {
		return frost.SignatureShare{}, newError(InvalidIdentifier, "signature share sender", err)
	}
	if !sender.Equal(expectedSender) {
		return frost.SignatureShare{}, newError(DecodeError, "signature share sender does not match its position in the inbound batch", nil)
	}
	z, err := curve.NewScalar().SetBytes(w.Z)
	if err != nil {
		return frost.SignatureShare{}, newError(CryptoError, "signature share z", err)
	}
	return frost.SignatureShare{Sender: sender, Z: z}, nil
}

func signatureToWire(s *frost.Signature) codec.SignatureWire {
	return codec.SignatureWire{R: s.R.Bytes(), Z: s.Z.Bytes()}
}

func wireToSignature(w codec.SignatureWire) (*frost.Signature, error) {
	r, err := curve.NewPoint().SetBytes(w.R)
	if err != nil {
		return nil, newError(InvalidPointEncoding, "signature R", err)
	}
	z, err := curve.NewScalar().SetBytes(w.Z)
	if err != nil {
		return nil, newError(CryptoError, "signature z", err)
	}
	return &frost.Signature{R: r, Z: z}, nil
}
