package driver

import (
	"crypto/rand"
	"fmt"

	"github.com/luxfi/frost-driver/internal/codec"
	"github.com/luxfi/frost-driver/internal/curve"
	"github.com/luxfi/frost-driver/internal/frost"
	"github.com/luxfi/frost-driver/internal/identifier"
)

type signRound uint8

const (
	signR0 signRound = iota
	signR1
	signR2
	signDone
)

// SignSession drives one participant's three-round FROST signing protocol
// to completion over a signing subset loaded from a prior DKG's key
// material.
type SignSession struct {
	kind   codec.ProtocolType
	round  signRound
	keyPkg *frost.KeyPackage
	pubPkg *frost.PublicKeyPackage

	indices  []uint32
	localIdx int
	message  []byte

	nonces        *frost.SigningNonces
	myCommitments *frost.SigningCommitments
	signingPkg    *frost.SigningPackage
	myShare       *frost.SignatureShare
	signature     *frost.Signature
}

// NewSignSession starts a sign session from persisted DKG key material,
// in R0, awaiting an Init envelope as its first inbound.
func NewSignSession(kind codec.ProtocolType, keyMaterial []byte) (*SignSession, error) {
	material, err := codec.DecodeKeyMaterial(keyMaterial)
	if err != nil {
		return nil, classify("decoding key material", err)
	}
	keyPkg, err := wireToKeyPackage(material.KeyPackage)
	if err != nil {
		return nil, err
	}
	pubPkg, err := wireToPublicKeyPackage(material.PublicKeyPackage)
	if err != nil {
		return nil, err
	}
	return &SignSession{kind: kind, round: signR0, keyPkg: keyPkg, pubPkg: pubPkg}, nil
}

// Advance feeds one round's inbound bytes and returns the next round's
// outbound bytes.
func (s *SignSession) Advance(inbound []byte) ([]byte, error) {
	switch s.round {
	case signR0:
		return s.advanceR0(inbound)
	case signR1:
		return s.advanceR1(inbound)
	case signR2:
		return s.advanceR2(inbound)
	case signDone:
		return nil, newError(AlreadyFinished, "sign session already reached Done", nil)
	default:
		return nil, newError(NotInitialized, "sign session in an unknown round", nil)
	}
}

// zeroNonces discards the round-1 signing nonces once they have been
// consumed by advanceR1, mirroring the nonce-clearing used by the
// retrieval pack's own session layer. Best-effort: Go gives no memory
// zeroing guarantee, but this at least drops the only live reference.
func (s *SignSession) zeroNonces() {
	s.nonces = nil
}

func (s *SignSession) advanceR0(inbound []byte) ([]byte, error) {
	init, err := codec.DecodeInit(inbound, s.kind)
	if err != nil {
		return nil, classify("decoding init", err)
	}
	if len(init.Indices) < s.keyPkg.Threshold {
		return nil, newError(InsufficientSigners,
			fmt.Sprintf("signing subset has %d members, threshold is %d", len(init.Indices), s.keyPkg.Threshold), nil)
	}
	for i := 1; i < len(init.Indices); i++ {
		if init.Indices[i] <= init.Indices[i-1] {
			return nil, newError(DecodeError, "indices must be strictly increasing", nil)
		}
	}
	if len(init.Indices) > 0 && init.Indices[0] < 1 {
		return nil, newError(InvalidIdentifier, "signing index out of range", nil)
	}

	localIdx := -1
	selfGlobal := s.keyPkg.ID.Global()
	for i, g := range init.Indices {
		if g == selfGlobal {
			localIdx = i
			break
		}
	}
	if localIdx == -1 {
		return nil, newError(ParticipantNotIncluded, "this participant's identifier is not in the signing subset", nil)
	}

	s.indices = init.Indices
	s.localIdx = localIdx
	s.message = init.Data

	nonces, commitments, err := frost.Commit(s.keyPkg, rand.Reader)
	if err != nil {
		return nil, classify("sign commit", err)
	}
	s.nonces = nonces
	s.myCommitments = commitments

	batch, err := codec.SerializeBcast(signingCommitmentsToWire(commitments), len(s.indices)-1)
	if err != nil {
		return nil, classify("serializing commitments", err)
	}
	outbound, err := codec.Pack(batch, s.kind)
	if err != nil {
		return nil, classify("packing round1 outbound", err)
	}

	s.round = signR1
	return outbound, nil
}

// identifierAtPosition resolves the global index of the peer at
// position pos within this session's inbound vector, walking the stored
// signing indices and skipping this participant's own position — the
// sign-side instance of the skip-self rule.
func (s *SignSession) identifierAtPosition(pos int) (identifier.Identifier, error) {
	return identifier.IdentifierAt(pos, s.localIdx, func(p int) uint32 {
		if p >= s.localIdx {
			return s.indices[p+1]
		}
		return s.indices[p]
	})
}

func (s *SignSession) advanceR1(inbound []byte) ([]byte, error) {
	batch, err := codec.Unpack(inbound, s.kind)
	if err != nil {
		return nil, classify("unpacking commitments batch", err)
	}
	if len(batch) != len(s.indices)-1 {
		return nil, newError(DecodeError, fmt.Sprintf("expected %d commitments, got %d", len(s.indices)-1, len(batch)), nil)
	}
	wires, err := codec.DeserializeVec[codec.SigningCommitmentsWire](batch)
	if err != nil {
		return nil, classify("deserializing commitments batch", err)
	}

	commitments := make(map[uint32]frost.SigningCommitments, len(s.indices))
	for i, w := range wires {
		peerID, err := s.identifierAtPosition(i)
		if err != nil {
			return nil, classify("resolving peer identifier", err)
		}
		c, err := wireToSigningCommitments(w, peerID)
		if err != nil {
			return nil, err
		}
		commitments[peerID.Global()] = c
	}
	commitments[s.keyPkg.ID.Global()] = *s.myCommitments

	signingPkg := &frost.SigningPackage{Message: s.message, Commitments: commitments}
	myShare, err := frost.Sign(s.keyPkg, s.nonces, signingPkg, s.pubPkg)
	if err != nil {
		return nil, classify("sign", err)
	}
	s.signingPkg = signingPkg
	s.myShare = myShare
	s.zeroNonces()

	batchOut, err := codec.SerializeBcast(signatureShareToWire(myShare), len(s.indices)-1)
	if err != nil {
		return nil, classify("serializing signature share", err)
	}
	outbound, err := codec.Pack(batchOut, s.kind)
	if err != nil {
		return nil, classify("packing round2 outbound", err)
	}

	s.round = signR2
	return outbound, nil
}

func (s *SignSession) advanceR2(inbound []byte) ([]byte, error) {
	batch, err := codec.Unpack(inbound, s.kind)
	if err != nil {
		return nil, classify("unpacking shares batch", err)
	}
	if len(batch) != len(s.indices)-1 {
		return nil, newError(DecodeError, fmt.Sprintf("expected %d shares, got %d", len(s.indices)-1, len(batch)), nil)
	}
	wires, err := codec.DeserializeVec[codec.SignatureShareWire](batch)
	if err != nil {
		return nil, classify("deserializing shares batch", err)
	}

	shares := make(map[uint32]frost.SignatureShare, len(s.indices))
	for i, w := range wires {
		peerID, err := s.identifierAtPosition(i)
		if err != nil {
			return nil, classify("resolving peer identifier", err)
		}
		share, err := wireToSignatureShare(w, peerID)
		if err != nil {
			return nil, err
		}
		shares[peerID.Global()] = share
	}
	shares[s.keyPkg.ID.Global()] = *s.myShare

	sig, err := frost.Aggregate(s.signingPkg, shares, s.pubPkg)
	if err != nil {
		return nil, classify("aggregate", err)
	}
	s.signature = sig

	batchOut, err := codec.SerializeBcast(signatureToWire(sig), len(s.indices)-1)
	if err != nil {
		return nil, classify("serializing signature broadcast", err)
	}
	outbound, err := codec.Pack(batchOut, s.kind)
	if err != nil {
		return nil, classify("packing done outbound", err)
	}

	s.round = signDone
	return outbound, nil
}

// Finish returns the serialized aggregated signature. Only valid once
// the session has reached Done.
func (s *SignSession) Finish() ([]byte, error) {
	if s.round != signDone {
		return nil, newError(NotInitialized, "sign session has not reached Done", nil)
	}
	out, err := codec.EncodeSignature(signatureToWire(s.signature))
	if err != nil {
		return nil, classify("encoding signature", err)
	}
	return out, nil
}

// Serialize encodes the session's complete in-progress or terminal
// state into an opaque, tagged snapshot. Round-1 nonces are only ever
// present in the snapshot while the session is sitting in R1 awaiting
// peer commitments: advanceR1 zeroes them the moment they are consumed,
// so a snapshot taken from R2 onward carries no secret nonce material.
func (s *SignSession) Serialize() ([]byte, error) {
	snap := codec.SignSnapshotWire{
		Kind:             s.kind,
		Round:            uint8(s.round),
		KeyPackage:       keyPackageToWire(s.keyPkg),
		PublicKeyPackage: publicKeyPackageToWire(s.pubPkg),
		Indices:          s.indices,
		LocalIdx:         int32(s.localIdx),
		Message:          s.message,
	}
	if s.myCommitments != nil {
		commitments := signingCommitmentsToWire(s.myCommitments)
		snap.MyCommitments = &commitments
	}
	if s.nonces != nil {
		snap.NonceHiding = s.nonces.Hiding.Bytes()
		snap.NonceBinding = s.nonces.Binding.Bytes()
	}
	if s.round > signR1 {
		commitments := make(map[uint32]codec.SigningCommitmentsWire, len(s.signingPkg.Commitments))
		for g, c := range s.signingPkg.Commitments {
			cc := c
			commitments[g] = signingCommitmentsToWire(&cc)
		}
		snap.SigningPackageCommitments = commitments
		share := signatureShareToWire(s.myShare)
		snap.MyShare = &share
	}
	if s.round == signDone {
		sig := signatureToWire(s.signature)
		snap.Signature = &sig
	}

	payload, err := codec.EncodeSignSnapshot(snap)
	if err != nil {
		return nil, classify("encoding sign snapshot", err)
	}
	return codec.EncodeSnapshotEnvelope(codec.SessionKindSign, payload)
}

// RestoreSignSession reconstructs a SignSession from a snapshot payload
// (the inner payload of a SnapshotEnvelopeWire, not the full envelope).
func RestoreSignSession(payload []byte) (*SignSession, error) {
	snap, err := codec.DecodeSignSnapshot(payload)
	if err != nil {
		return nil, classify("decoding sign snapshot", err)
	}

	keyPkg, err := wireToKeyPackage(snap.KeyPackage)
	if err != nil {
		return nil, err
	}
	pubPkg, err := wireToPublicKeyPackage(snap.PublicKeyPackage)
	if err != nil {
		return nil, err
	}

	s := &SignSession{
		kind:     snap.Kind,
		round:    signRound(snap.Round),
		keyPkg:   keyPkg,
		pubPkg:   pubPkg,
		indices:  snap.Indices,
		localIdx: int(snap.LocalIdx),
		message:  snap.Message,
	}

	if snap.MyCommitments != nil {
		commitments, err := wireToSigningCommitments(*snap.MyCommitments, keyPkg.ID)
		if err != nil {
			return nil, err
		}
		s.myCommitments = &commitments
	}

	if len(snap.NonceHiding) > 0 {
		hiding, err := curve.NewScalar().SetBytes(snap.NonceHiding)
		if err != nil {
			return nil, classify("restoring nonces", err)
		}
		binding, err := curve.NewScalar().SetBytes(snap.NonceBinding)
		if err != nil {
			return nil, classify("restoring nonces", err)
		}
		s.nonces = &frost.SigningNonces{Hiding: hiding, Binding: binding}
	}

	if s.round > signR1 {
		commitments := make(map[uint32]frost.SigningCommitments, len(snap.SigningPackageCommitments))
		for g, w := range snap.SigningPackageCommitments {
			sender, err := identifier.SetBytes(w.Sender)
			if err != nil {
				return nil, classify("restoring signing package", err)
			}
			c, err := wireToSigningCommitments(w, sender)
			if err != nil {
				return nil, err
			}
			commitments[g] = c
		}
		s.signingPkg = &frost.SigningPackage{Message: s.message, Commitments: commitments}

		share, err := wireToSignatureShare(*snap.MyShare, keyPkg.ID)
		if err != nil {
			return nil, err
		}
		s.myShare = &share
	}

	if s.round == signDone {
		sig, err := wireToSignature(*snap.Signature)
		if err != nil {
			return nil, err
		}
		s.signature = sig
	}

	return s, nil
}
