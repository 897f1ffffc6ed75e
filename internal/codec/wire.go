package codec

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Wire DTOs for DKG/sign round payloads. internal/driver marshals
// internal/frost's opaque scalar/point types through these shapes
// rather than exposing curve internals to the wire format directly.

// Round1PackageWire is the DKG round-1 broadcast: coefficient
// commitments plus a proof of knowledge of the constant term.
type Round1PackageWire struct {
	Sender     []byte   `cbor:"1,keyasint"`
	Commitment [][]byte `cbor:"2,keyasint"`
	ProofR     []byte   `cbor:"3,keyasint"`
	ProofZ     []byte   `cbor:"4,keyasint"`
}

// Round2PackageWire is a DKG round-2 unicast secret share.
type Round2PackageWire struct {
	Sender []byte `cbor:"1,keyasint"`
	Share  []byte `cbor:"2,keyasint"`
}

// SigningCommitmentsWire is a sign round-1 broadcast.
type SigningCommitmentsWire struct {
	Sender  []byte `cbor:"1,keyasint"`
	Hiding  []byte `cbor:"2,keyasint"`
	Binding []byte `cbor:"3,keyasint"`
}

// SignatureShareWire is a sign round-2 broadcast.
type SignatureShareWire struct {
	Sender []byte `cbor:"1,keyasint"`
	Z      []byte `cbor:"2,keyasint"`
}

// SignatureWire is the final aggregated signature, broadcast once at the
// end of a sign session and returned verbatim from Finish.
type SignatureWire struct {
	R []byte `cbor:"1,keyasint"`
	Z []byte `cbor:"2,keyasint"`
}

// KeyPackageWire is the persisted-key-material encoding of a DKG
// participant's KeyPackage.
type KeyPackageWire struct {
	ID             []byte `cbor:"1,keyasint"`
	SigningShare   []byte `cbor:"2,keyasint"`
	VerifyingShare []byte `cbor:"3,keyasint"`
	VerifyingKey   []byte `cbor:"4,keyasint"`
	Threshold      uint32 `cbor:"5,keyasint"`
}

// PublicKeyPackageWire is the persisted-key-material encoding of a DKG's
// PublicKeyPackage.
type PublicKeyPackageWire struct {
	VerifyingKey    []byte            `cbor:"1,keyasint"`
	VerifyingShares map[uint32][]byte `cbor:"2,keyasint"`
}

// KeyMaterialWire bundles KeyPackage and PublicKeyPackage together: the
// exact self-describing byte string Finish returns after DKG and Init
// accepts to start a sign session.
type KeyMaterialWire struct {
	KeyPackage       KeyPackageWire       `cbor:"1,keyasint"`
	PublicKeyPackage PublicKeyPackageWire `cbor:"2,keyasint"`
}

// EncodeKeyMaterial serializes persisted key material for long-term
// storage and for handing to Init at the start of a sign session.
func EncodeKeyMaterial(m KeyMaterialWire) ([]byte, error) {
	out, err := cbor.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("codec: encode key material: %w", err)
	}
	return out, nil
}

// DecodeKeyMaterial decodes persisted key material.
func DecodeKeyMaterial(data []byte) (KeyMaterialWire, error) {
	var m KeyMaterialWire
	if err := cbor.Unmarshal(data, &m); err != nil {
		return KeyMaterialWire{}, fmt.Errorf("codec: decode key material: %w: %w", ErrDecode, err)
	}
	return m, nil
}

// EncodeSignature serializes a completed signature for Finish.
func EncodeSignature(s SignatureWire) ([]byte, error) {
	out, err := cbor.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("codec: encode signature: %w", err)
	}
	return out, nil
}

// DecodeSignature decodes a signature previously produced by
// EncodeSignature.
func DecodeSignature(data []byte) (SignatureWire, error) {
	var s SignatureWire
	if err := cbor.Unmarshal(data, &s); err != nil {
		return SignatureWire{}, fmt.Errorf("codec: decode signature: %w: %w", ErrDecode, err)
	}
	return s, nil
}

// SessionKind discriminates a snapshot's concrete session type: a
// DkgSession and a SignSession serialize to unrelated shapes, so a
// restoring host must know which decoder to invoke.
type SessionKind uint8

const (
	SessionKindDkg  SessionKind = 1
	SessionKindSign SessionKind = 2
)

// SnapshotEnvelopeWire is the outermost shape of every snapshot blob:
// a session-kind tag plus the kind-specific encoded payload.
type SnapshotEnvelopeWire struct {
	SessionKind SessionKind `cbor:"1,keyasint"`
	Payload     []byte      `cbor:"2,keyasint"`
}

// EncodeSnapshotEnvelope wraps a kind-specific snapshot payload with its
// discriminator tag.
func EncodeSnapshotEnvelope(kind SessionKind, payload []byte) ([]byte, error) {
	out, err := cbor.Marshal(SnapshotEnvelopeWire{SessionKind: kind, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("codec: encode snapshot envelope: %w", err)
	}
	return out, nil
}

// DecodeSnapshotEnvelope unwraps a snapshot blob's discriminator tag and
// kind-specific payload.
func DecodeSnapshotEnvelope(data []byte) (SnapshotEnvelopeWire, error) {
	var env SnapshotEnvelopeWire
	if err := cbor.Unmarshal(data, &env); err != nil {
		return SnapshotEnvelopeWire{}, fmt.Errorf("codec: decode snapshot envelope: %w: %w", ErrDecode, err)
	}
	return env, nil
}

// DkgSnapshotWire is the complete in-progress or terminal state of a
// DkgSession, including whichever round-scoped secrets are live.
type DkgSnapshotWire struct {
	Kind      ProtocolType `cbor:"1,keyasint"`
	Round     uint8        `cbor:"2,keyasint"`
	Parties   uint32       `cbor:"3,keyasint"`
	Threshold uint32       `cbor:"4,keyasint"`
	LocalSlot int32        `cbor:"5,keyasint"`
	ID        []byte       `cbor:"6,keyasint"`

	Round1Coefficients [][]byte                     `cbor:"7,keyasint"`
	Round1Packages     map[uint32]Round1PackageWire `cbor:"8,keyasint"`

	KeyPackage       *KeyPackageWire       `cbor:"9,keyasint"`
	PublicKeyPackage *PublicKeyPackageWire `cbor:"10,keyasint"`
}

// EncodeDkgSnapshot serializes a DkgSnapshotWire.
func EncodeDkgSnapshot(s DkgSnapshotWire) ([]byte, error) {
	out, err := cbor.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("codec: encode dkg snapshot: %w", err)
	}
	return out, nil
}

// DecodeDkgSnapshot decodes a DkgSnapshotWire.
func DecodeDkgSnapshot(data []byte) (DkgSnapshotWire, error) {
	var s DkgSnapshotWire
	if err := cbor.Unmarshal(data, &s); err != nil {
		return DkgSnapshotWire{}, fmt.Errorf("codec: decode dkg snapshot: %w: %w", ErrDecode, err)
	}
	return s, nil
}

// SignSnapshotWire is the complete in-progress or terminal state of a
// SignSession, including round-1 nonces: per the driver's snapshot
// contract, nonces are captured verbatim even though they are sensitive,
// because resuming a sign session requires them.
type SignSnapshotWire struct {
	Kind             ProtocolType         `cbor:"1,keyasint"`
	Round            uint8                `cbor:"2,keyasint"`
	KeyPackage       KeyPackageWire       `cbor:"3,keyasint"`
	PublicKeyPackage PublicKeyPackageWire `cbor:"4,keyasint"`
	Indices          []uint32             `cbor:"5,keyasint"`
	LocalIdx         int32                `cbor:"6,keyasint"`
	Message          []byte               `cbor:"7,keyasint"`

	NonceHiding   []byte                  `cbor:"8,keyasint"`
	NonceBinding  []byte                  `cbor:"9,keyasint"`
	MyCommitments *SigningCommitmentsWire `cbor:"10,keyasint"`

	SigningPackageCommitments map[uint32]SigningCommitmentsWire `cbor:"11,keyasint"`
	MyShare                   *SignatureShareWire                `cbor:"12,keyasint"`

	Signature *SignatureWire `cbor:"13,keyasint"`
}

// EncodeSignSnapshot serializes a SignSnapshotWire.
func EncodeSignSnapshot(s SignSnapshotWire) ([]byte, error) {
	out, err := cbor.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("codec: encode sign snapshot: %w", err)
	}
	return out, nil
}

// DecodeSignSnapshot decodes a SignSnapshotWire.
func DecodeSignSnapshot(data []byte) (SignSnapshotWire, error) {
	var s SignSnapshotWire
	if err := cbor.Unmarshal(data, &s); err != nil {
		return SignSnapshotWire{}, fmt.Errorf("codec: decode sign snapshot: %w: %w", ErrDecode, err)
	}
	return s, nil
}
