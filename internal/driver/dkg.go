package driver

import (
	"crypto/rand"
	"fmt"
	"sort"

	"github.com/luxfi/frost-driver/internal/codec"
	"github.com/luxfi/frost-driver/internal/curve"
	"github.com/luxfi/frost-driver/internal/frost"
	"github.com/luxfi/frost-driver/internal/identifier"
)

type dkgRound uint8

const (
	dkgR0 dkgRound = iota
	dkgR1
	dkgR2
	dkgDone
)

// DkgSession drives one participant's three-round Pedersen DKG to
// completion: R0 decodes the group init envelope and runs part1; R1
// rebuilds the peer commitment map and runs part2; R2 rebuilds the peer
// share map, runs part3, and broadcasts the resulting verifying key for
// cross-check.
type DkgSession struct {
	kind      codec.ProtocolType
	round     dkgRound
	parties   int
	threshold int
	localSlot int
	id        identifier.Identifier

	round1Secret *frost.Round1Secret
	round2Secret *frost.Round2Secret

	keyPkg *frost.KeyPackage
	pubPkg *frost.PublicKeyPackage
}

// NewDkgSession starts a fresh DKG session in R0, awaiting a GroupInit
// envelope as its first inbound.
func NewDkgSession(kind codec.ProtocolType) *DkgSession {
	return &DkgSession{kind: kind, round: dkgR0}
}

// Advance feeds one round's inbound bytes and returns the next round's
// outbound bytes.
func (s *DkgSession) Advance(inbound []byte) ([]byte, error) {
	switch s.round {
	case dkgR0:
		return s.advanceR0(inbound)
	case dkgR1:
		return s.advanceR1(inbound)
	case dkgR2:
		return s.advanceR2(inbound)
	case dkgDone:
		return nil, newError(AlreadyFinished, "dkg session already reached Done", nil)
	default:
		return nil, newError(NotInitialized, "dkg session in an unknown round", nil)
	}
}

func (s *DkgSession) advanceR0(inbound []byte) ([]byte, error) {
	gi, err := codec.DecodeGroupInit(inbound, s.kind)
	if err != nil {
		return nil, classify("decoding group init", err)
	}
	if gi.Threshold < 2 {
		return nil, newError(DecodeError, "threshold must be at least 2", nil)
	}
	if gi.Parties < gi.Threshold {
		return nil, newError(DecodeError, "parties must be at least threshold", nil)
	}
	if gi.Index < 1 || gi.Index > gi.Parties {
		return nil, newError(InvalidIdentifier, "index out of range", nil)
	}

	id, err := identifier.FromUint32(gi.Index)
	if err != nil {
		return nil, classify("validating own identifier", err)
	}

	secret, pkg, err := frost.Part1(id, int(gi.Threshold), rand.Reader)
	if err != nil {
		return nil, classify("dkg part1", err)
	}

	s.parties = int(gi.Parties)
	s.threshold = int(gi.Threshold)
	s.localSlot = int(gi.Index) - 1
	s.id = id
	s.round1Secret = secret

	batch, err := codec.SerializeBcast(round1PackageToWire(pkg), s.parties-1)
	if err != nil {
		return nil, classify("serializing round1 package", err)
	}
	outbound, err := codec.Pack(batch, s.kind)
	if err != nil {
		return nil, classify("packing round1 outbound", err)
	}

	s.round = dkgR1
	return outbound, nil
}

func (s *DkgSession) advanceR1(inbound []byte) ([]byte, error) {
	batch, err := codec.Unpack(inbound, s.kind)
	if err != nil {
		return nil, classify("unpacking round1 batch", err)
	}
	if len(batch) != s.parties-1 {
		return nil, newError(DecodeError, fmt.Sprintf("expected %d round1 packages, got %d", s.parties-1, len(batch)), nil)
	}
	wires, err := codec.DeserializeVec[codec.Round1PackageWire](batch)
	if err != nil {
		return nil, classify("deserializing round1 batch", err)
	}

	received := make(map[uint32]frost.Round1Package, len(wires))
	for i, w := range wires {
		peerID, err := identifier.IdentifierAt(i, s.localSlot, nil)
		if err != nil {
			return nil, classify("resolving peer identifier", err)
		}
		pkg, err := wireToRound1Package(w, peerID)
		if err != nil {
			return nil, err
		}
		received[peerID.Global()] = pkg
	}

	secret, round2Out, err := frost.Part2(s.round1Secret, received)
	if err != nil {
		return nil, classify("dkg part2", err)
	}
	s.round2Secret = secret

	recipients := make([]uint32, 0, len(round2Out))
	for g := range round2Out {
		recipients = append(recipients, g)
	}
	sort.Slice(recipients, func(i, j int) bool { return recipients[i] < recipients[j] })

	values := make([]any, len(recipients))
	for i, g := range recipients {
		pkg := round2Out[g]
		values[i] = round2PackageToWire(pkg)
	}
	batchOut, err := codec.SerializeUni(values)
	if err != nil {
		return nil, classify("serializing round2 packages", err)
	}
	outbound, err := codec.Pack(batchOut, s.kind)
	if err != nil {
		return nil, classify("packing round2 outbound", err)
	}

	s.round = dkgR2
	return outbound, nil
}

func (s *DkgSession) advanceR2(inbound []byte) ([]byte, error) {
	batch, err := codec.Unpack(inbound, s.kind)
	if err != nil {
		return nil, classify("unpacking round2 batch", err)
	}
	if len(batch) != s.parties-1 {
		return nil, newError(DecodeError, fmt.Sprintf("expected %d round2 packages, got %d", s.parties-1, len(batch)), nil)
	}
	wires, err := codec.DeserializeVec[codec.Round2PackageWire](batch)
	if err != nil {
		return nil, classify("deserializing round2 batch", err)
	}

	received := make(map[uint32]frost.Round2Package, len(wires))
	for i, w := range wires {
		peerID, err := identifier.IdentifierAt(i, s.localSlot, nil)
		if err != nil {
			return nil, classify("resolving peer identifier", err)
		}
		pkg, err := wireToRound2Package(w, peerID, s.id)
		if err != nil {
			return nil, err
		}
		received[peerID.Global()] = pkg
	}

	keyPkg, pubPkg, err := frost.Part3(s.round2Secret, received, s.threshold)
	if err != nil {
		return nil, classify("dkg part3", err)
	}
	s.keyPkg = keyPkg
	s.pubPkg = pubPkg

	batchOut, err := codec.SerializeBcast(keyPkg.VerifyingKey.Bytes(), s.parties-1)
	if err != nil {
		return nil, classify("serializing verifying key broadcast", err)
	}
	outbound, err := codec.Pack(batchOut, s.kind)
	if err != nil {
		return nil, classify("packing done outbound", err)
	}

	s.round = dkgDone
	return outbound, nil
}

// Finish returns the persisted key material: the tuple (key package,
// public key package) in the exact self-describing encoding Init
// expects when starting a sign session from it. Only valid once the
// session has reached Done.
func (s *DkgSession) Finish() ([]byte, error) {
	if s.round != dkgDone {
		return nil, newError(NotInitialized, "dkg session has not reached Done", nil)
	}
	material := codec.KeyMaterialWire{
		KeyPackage:       keyPackageToWire(s.keyPkg),
		PublicKeyPackage: publicKeyPackageToWire(s.pubPkg),
	}
	out, err := codec.EncodeKeyMaterial(material)
	if err != nil {
		return nil, classify("encoding key material", err)
	}
	return out, nil
}

// Serialize encodes the session's complete in-progress or terminal
// state into an opaque, tagged snapshot.
func (s *DkgSession) Serialize() ([]byte, error) {
	snap := codec.DkgSnapshotWire{
		Kind:      s.kind,
		Round:     uint8(s.round),
		Parties:   uint32(s.parties),
		Threshold: uint32(s.threshold),
		LocalSlot: int32(s.localSlot),
	}
	if s.round > dkgR0 {
		snap.ID = s.id.Bytes()
		coeffs := make([][]byte, len(s.round1Secret.Coefficients))
		for i, c := range s.round1Secret.Coefficients {
			coeffs[i] = c.Bytes()
		}
		snap.Round1Coefficients = coeffs
	}
	if s.round > dkgR1 {
		pkgs := make(map[uint32]codec.Round1PackageWire, len(s.round2Secret.Round1Packages))
		for g, pkg := range s.round2Secret.Round1Packages {
			p := pkg
			pkgs[g] = round1PackageToWire(&p)
		}
		snap.Round1Packages = pkgs
	}
	if s.round == dkgDone {
		kp := keyPackageToWire(s.keyPkg)
		pp := publicKeyPackageToWire(s.pubPkg)
		snap.KeyPackage = &kp
		snap.PublicKeyPackage = &pp
	}

	payload, err := codec.EncodeDkgSnapshot(snap)
	if err != nil {
		return nil, classify("encoding dkg snapshot", err)
	}
	return codec.EncodeSnapshotEnvelope(codec.SessionKindDkg, payload)
}

// RestoreDkgSession reconstructs a DkgSession from a snapshot payload
// (the inner payload of a SnapshotEnvelopeWire, not the full envelope).
func RestoreDkgSession(payload []byte) (*DkgSession, error) {
	snap, err := codec.DecodeDkgSnapshot(payload)
	if err != nil {
		return nil, classify("decoding dkg snapshot", err)
	}

	s := &DkgSession{
		kind:      snap.Kind,
		round:     dkgRound(snap.Round),
		parties:   int(snap.Parties),
		threshold: int(snap.Threshold),
		localSlot: int(snap.LocalSlot),
	}

	if s.round > dkgR0 {
		id, err := identifier.SetBytes(snap.ID)
		if err != nil {
			return nil, classify("restoring session identifier", err)
		}
		s.id = id

		coeffs := make([]*curve.Scalar, len(snap.Round1Coefficients))
		for i, raw := range snap.Round1Coefficients {
			c, err := curve.NewScalar().SetBytes(raw)
			if err != nil {
				return nil, classify("restoring round1 coefficients", err)
			}
			coeffs[i] = c
		}
		s.round1Secret = &frost.Round1Secret{ID: id, Coefficients: coeffs}
	}

	if s.round > dkgR1 {
		pkgs := make(map[uint32]frost.Round1Package, len(snap.Round1Packages))
		for g, w := range snap.Round1Packages {
			sender, err := identifier.SetBytes(w.Sender)
			if err != nil {
				return nil, classify("restoring round1 package sender", err)
			}
			pkg, err := wireToRound1Package(w, sender)
			if err != nil {
				return nil, err
			}
			pkgs[g] = pkg
		}
		s.round2Secret = &frost.Round2Secret{Round1Secret: *s.round1Secret, Round1Packages: pkgs}
	}

	if s.round == dkgDone {
		keyPkg, err := wireToKeyPackage(*snap.KeyPackage)
		if err != nil {
			return nil, err
		}
		pubPkg, err := wireToPublicKeyPackage(*snap.PublicKeyPackage)
		if err != nil {
			return nil, err
		}
		s.keyPkg = keyPkg
		s.pubPkg = pubPkg
	}

	return s, nil
}
