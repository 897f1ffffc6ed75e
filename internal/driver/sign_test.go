package driver_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/frost-driver/internal/codec"
	"github.com/luxfi/frost-driver/internal/curve"
	"github.com/luxfi/frost-driver/internal/driver"
	"github.com/luxfi/frost-driver/internal/frost"
	"github.com/luxfi/frost-driver/internal/relay"
)

// dkgKeyMaterials drives parties local DkgSessions through the relay to
// completion and returns each participant's serialized key material.
func dkgKeyMaterials(t *testing.T, parties, threshold int) [][]byte {
	t.Helper()
	sessions := make([]relay.Participant, parties)
	dkgSessions := make([]*driver.DkgSession, parties)
	initial := make([][]byte, parties)
	for p := 0; p < parties; p++ {
		s := driver.NewDkgSession(codec.ProtocolTypeFROST)
		dkgSessions[p] = s
		sessions[p] = s
		initial[p] = groupInitFor(t, parties, threshold, p+1)
	}

	_, err := relay.Run(context.Background(), sessions, codec.ProtocolTypeFROST, initial, 3)
	require.NoError(t, err)

	materials := make([][]byte, parties)
	for p, s := range dkgSessions {
		m, err := s.Finish()
		require.NoError(t, err)
		materials[p] = m
	}
	return materials
}

func initFor(t *testing.T, indices []uint32, message []byte) []byte {
	t.Helper()
	init := codec.Init{Kind: codec.ProtocolTypeFROST, Indices: indices, Data: message}
	enc, err := init.Encode()
	require.NoError(t, err)
	return enc
}

func TestSignSessionTwoOfTwoProducesVerifiableSignature(t *testing.T) {
	materials := dkgKeyMaterials(t, 2, 2)
	message := []byte("the treasury moves at dawn")
	indices := []uint32{1, 2}

	a, err := driver.NewSignSession(codec.ProtocolTypeFROST, materials[0])
	require.NoError(t, err)
	b, err := driver.NewSignSession(codec.ProtocolTypeFROST, materials[1])
	require.NoError(t, err)

	sessions := []relay.Participant{a, b}
	initial := [][]byte{initFor(t, indices, message), initFor(t, indices, message)}

	_, err = relay.Run(context.Background(), sessions, codec.ProtocolTypeFROST, initial, 3)
	require.NoError(t, err)

	sigBytesA, err := a.Finish()
	require.NoError(t, err)
	sigBytesB, err := b.Finish()
	require.NoError(t, err)
	require.Equal(t, sigBytesA, sigBytesB)

	sigWire, err := codec.DecodeSignature(sigBytesA)
	require.NoError(t, err)
	r, err := curve.NewPoint().SetBytes(sigWire.R)
	require.NoError(t, err)
	z, err := curve.NewScalar().SetBytes(sigWire.Z)
	require.NoError(t, err)

	m0, err := codec.DecodeKeyMaterial(materials[0])
	require.NoError(t, err)
	groupKey, err := curve.NewPoint().SetBytes(m0.PublicKeyPackage.VerifyingKey)
	require.NoError(t, err)

	require.True(t, frost.Verify(&frost.Signature{R: r, Z: z}, groupKey, message))
}

func TestSignSessionRejectsParticipantNotIncluded(t *testing.T) {
	materials := dkgKeyMaterials(t, 3, 2)

	s, err := driver.NewSignSession(codec.ProtocolTypeFROST, materials[0])
	require.NoError(t, err)

	_, err = s.Advance(initFor(t, []uint32{2, 3}, []byte("hello")))
	require.Error(t, err)

	var derr *driver.Error
	require.True(t, errors.As(err, &derr))
	require.Equal(t, driver.ParticipantNotIncluded, derr.Kind)
}

func TestSignSessionRejectsInsufficientSigners(t *testing.T) {
	materials := dkgKeyMaterials(t, 3, 2)

	s, err := driver.NewSignSession(codec.ProtocolTypeFROST, materials[0])
	require.NoError(t, err)

	_, err = s.Advance(initFor(t, []uint32{1}, []byte("hello")))
	require.Error(t, err)

	var derr *driver.Error
	require.True(t, errors.As(err, &derr))
	require.Equal(t, driver.InsufficientSigners, derr.Kind)
}

func TestSignSessionAlreadyFinishedAfterDone(t *testing.T) {
	materials := dkgKeyMaterials(t, 2, 2)
	indices := []uint32{1, 2}
	message := []byte("msg")

	a, err := driver.NewSignSession(codec.ProtocolTypeFROST, materials[0])
	require.NoError(t, err)
	b, err := driver.NewSignSession(codec.ProtocolTypeFROST, materials[1])
	require.NoError(t, err)

	sessions := []relay.Participant{a, b}
	initial := [][]byte{initFor(t, indices, message), initFor(t, indices, message)}
	_, err = relay.Run(context.Background(), sessions, codec.ProtocolTypeFROST, initial, 3)
	require.NoError(t, err)

	_, err = a.Advance([]byte("anything"))
	require.Error(t, err)

	var derr *driver.Error
	require.True(t, errors.As(err, &derr))
	require.Equal(t, driver.AlreadyFinished, derr.Kind)
}

// TestSignSessionSnapshotRestoreMidProtocol drives two signers by hand
// through round 1, snapshots and discards one of them mid-protocol
// (after its round-1 nonces have been generated but before they are
// consumed), restores it, and continues to a signature that verifies
// against the group key — directly exercising the sign-side analogue of
// deserialize(serialize(s)).advance(b) at the driver level.
func TestSignSessionSnapshotRestoreMidProtocol(t *testing.T) {
	materials := dkgKeyMaterials(t, 2, 2)
	indices := []uint32{1, 2}
	message := []byte("resume me")

	a, err := driver.NewSignSession(codec.ProtocolTypeFROST, materials[0])
	require.NoError(t, err)
	b, err := driver.NewSignSession(codec.ProtocolTypeFROST, materials[1])
	require.NoError(t, err)

	outA1, err := a.Advance(initFor(t, indices, message))
	require.NoError(t, err)
	outB1, err := b.Advance(initFor(t, indices, message))
	require.NoError(t, err)

	blob, err := a.Serialize()
	require.NoError(t, err)
	env, err := codec.DecodeSnapshotEnvelope(blob)
	require.NoError(t, err)
	require.Equal(t, codec.SessionKindSign, env.SessionKind)

	restoredA, err := driver.RestoreSignSession(env.Payload)
	require.NoError(t, err)

	outA2, err := restoredA.Advance(outB1)
	require.NoError(t, err)
	outB2, err := b.Advance(outA1)
	require.NoError(t, err)

	_, err = restoredA.Advance(outB2)
	require.NoError(t, err)
	_, err = b.Advance(outA2)
	require.NoError(t, err)

	sigBytesA, err := restoredA.Finish()
	require.NoError(t, err)
	sigBytesB, err := b.Finish()
	require.NoError(t, err)
	require.Equal(t, sigBytesA, sigBytesB)

	sigWire, err := codec.DecodeSignature(sigBytesA)
	require.NoError(t, err)
	r, err := curve.NewPoint().SetBytes(sigWire.R)
	require.NoError(t, err)
	z, err := curve.NewScalar().SetBytes(sigWire.Z)
	require.NoError(t, err)

	m0, err := codec.DecodeKeyMaterial(materials[0])
	require.NoError(t, err)
	groupKey, err := curve.NewPoint().SetBytes(m0.PublicKeyPackage.VerifyingKey)
	require.NoError(t, err)
	require.True(t, frost.Verify(&frost.Signature{R: r, Z: z}, groupKey, message))
}
