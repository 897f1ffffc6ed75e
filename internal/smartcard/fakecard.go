package smartcard

import (
	"crypto/rand"

	"github.com/luxfi/frost-driver/internal/curve"
	"github.com/luxfi/frost-driver/internal/frost"
	"github.com/luxfi/frost-driver/internal/identifier"
)

// swGeneralFailure is returned by FakeCard for any malformed or
// out-of-sequence command, standing in for whatever status word a real
// card would report.
var swGeneralFailure = []byte{0x6f, 0x00}

// FakeCard is an in-process Transceiver double that runs the same
// SETUP/COMMIT/COMMITMENT/SIGN sequence a physical card would, holding
// its signing share in memory instead of in hardware. It lets this
// package's tests exercise Bridge without a reader attached.
type FakeCard struct {
	threshold         int
	parties           int
	id                identifier.Identifier
	signingShare      *curve.Scalar
	groupVerifyingKey *curve.Point

	nonces          *frost.SigningNonces
	myCommitments   *frost.SigningCommitments
	peerCommitments map[uint32]frost.SigningCommitments
}

// NewFakeCard returns an unprovisioned card awaiting SETUP.
func NewFakeCard() *FakeCard {
	return &FakeCard{peerCommitments: make(map[uint32]frost.SigningCommitments)}
}

// Transmit implements Transceiver.
func (c *FakeCard) Transmit(apdu []byte) ([]byte, error) {
	if len(apdu) < 5 {
		return swGeneralFailure, nil
	}
	cla, ins, p1, p2, lc := apdu[0], apdu[1], apdu[2], apdu[3], apdu[4]
	body := apdu[5:]
	if cla != claFrost || len(body) != int(lc) {
		return swGeneralFailure, nil
	}
	switch ins {
	case insSetup:
		return c.setup(p1, p2, body)
	case insCommit:
		return c.commit()
	case insCommitment:
		return c.commitment(p1, body)
	case insSign:
		return c.sign(p1, body)
	default:
		return swGeneralFailure, nil
	}
}

func (c *FakeCard) ok(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data)+2)
	out = append(out, data...)
	out = append(out, swSuccess[0], swSuccess[1])
	return out, nil
}

func (c *FakeCard) setup(t, n byte, body []byte) ([]byte, error) {
	if len(body) < 1+32 {
		return swGeneralFailure, nil
	}
	id, err := identifier.FromUint32(uint32(body[0]))
	if err != nil {
		return swGeneralFailure, nil
	}
	share, err := curve.NewScalar().SetBytes(body[1:33])
	if err != nil {
		return swGeneralFailure, nil
	}
	groupKey, err := curve.NewPoint().SetBytes(body[33:])
	if err != nil {
		return swGeneralFailure, nil
	}

	c.threshold = int(t)
	c.parties = int(n)
	c.id = id
	c.signingShare = share
	c.groupVerifyingKey = groupKey
	return c.ok(nil)
}

func (c *FakeCard) commit() ([]byte, error) {
	if c.signingShare == nil {
		return swGeneralFailure, nil
	}
	keyPkg := &frost.KeyPackage{ID: c.id, SigningShare: c.signingShare, Threshold: c.threshold}
	nonces, commitments, err := frost.Commit(keyPkg, rand.Reader)
	if err != nil {
		return swGeneralFailure, nil
	}
	c.nonces = nonces
	c.myCommitments = commitments
	c.peerCommitments = make(map[uint32]frost.SigningCommitments)

	data := append(append([]byte{}, commitments.Hiding.BytesUncompressed()...), commitments.Binding.BytesUncompressed()...)
	return c.ok(data)
}

func (c *FakeCard) commitment(p1 byte, body []byte) ([]byte, error) {
	if c.signingShare == nil || len(body)%2 != 0 {
		return swGeneralFailure, nil
	}
	half := len(body) / 2
	peerID, err := identifier.FromUint32(uint32(p1))
	if err != nil {
		return swGeneralFailure, nil
	}
	hiding, err := curve.NewPoint().SetBytes(body[:half])
	if err != nil {
		return swGeneralFailure, nil
	}
	binding, err := curve.NewPoint().SetBytes(body[half:])
	if err != nil {
		return swGeneralFailure, nil
	}
	c.peerCommitments[peerID.Global()] = frost.SigningCommitments{Sender: peerID, Hiding: hiding, Binding: binding}
	return c.ok(nil)
}

func (c *FakeCard) sign(p1 byte, body []byte) ([]byte, error) {
	if c.nonces == nil || c.myCommitments == nil || int(p1) > len(body) {
		return swGeneralFailure, nil
	}
	message := body[:int(p1)]

	commitments := make(map[uint32]frost.SigningCommitments, len(c.peerCommitments)+1)
	for g, pc := range c.peerCommitments {
		commitments[g] = pc
	}
	commitments[c.id.Global()] = *c.myCommitments

	keyPkg := &frost.KeyPackage{ID: c.id, SigningShare: c.signingShare, Threshold: c.threshold}
	pubPkg := &frost.PublicKeyPackage{VerifyingKey: c.groupVerifyingKey}
	pkg := &frost.SigningPackage{Message: message, Commitments: commitments}

	share, err := frost.Sign(keyPkg, c.nonces, pkg, pubPkg)
	if err != nil {
		return swGeneralFailure, nil
	}
	return c.ok(share.Z.Bytes())
}
