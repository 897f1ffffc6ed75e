package smartcard

import (
	"fmt"

	"github.com/luxfi/frost-driver/internal/curve"
	"github.com/luxfi/frost-driver/internal/identifier"
)

// Transceiver sends one APDU to a card and returns its response
// (data plus trailing status word). Implementations typically wrap a
// PC/SC reader session; FakeCard provides an in-process test double.
type Transceiver interface {
	Transmit(apdu []byte) (response []byte, err error)
}

// Bridge drives a single card through the SETUP/COMMIT/COMMITMENT/SIGN
// command sequence on behalf of one FROST participant whose signing
// share never leaves the card.
type Bridge struct {
	tx Transceiver
}

// NewBridge wraps a Transceiver in the FROST APDU command set.
func NewBridge(tx Transceiver) *Bridge {
	return &Bridge{tx: tx}
}

// Setup provisions the card with its participant identifier, signing
// share, and the group's verifying key. The card must be set up exactly
// once before it will service COMMIT/COMMITMENT/SIGN.
func (b *Bridge) Setup(threshold, parties int, id identifier.Identifier, signingShare *curve.Scalar, groupVerifyingKey *curve.Point) error {
	global := id.Global()
	if global == 0 || global > 255 {
		return fmt.Errorf("smartcard: identifier %d does not fit a one-byte card slot", global)
	}
	cmd := NewCommand(claFrost, insSetup).
		P1(byte(threshold)).
		P2(byte(parties)).
		Push(byte(global)).
		Extend(signingShare.Bytes()).
		Extend(groupVerifyingKey.BytesUncompressed()).
		Build()
	raw, err := b.tx.Transmit(cmd)
	if err != nil {
		return fmt.Errorf("smartcard: setup: %w", err)
	}
	if _, err := parseResponse(raw); err != nil {
		return fmt.Errorf("smartcard: setup: %w", err)
	}
	return nil
}

// Commit asks the card to draw a fresh nonce pair and returns the
// corresponding public commitments.
func (b *Bridge) Commit() (hiding, binding *curve.Point, err error) {
	cmd := NewCommand(claFrost, insCommit).Build()
	raw, err := b.tx.Transmit(cmd)
	if err != nil {
		return nil, nil, fmt.Errorf("smartcard: commit: %w", err)
	}
	data, err := parseResponse(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("smartcard: commit: %w", err)
	}
	if len(data)%2 != 0 {
		return nil, nil, fmt.Errorf("smartcard: commit: response has odd length: %w", ErrCardStatus)
	}
	half := len(data) / 2
	hidingRaw, bindingRaw := data[:half], data[half:]

	hiding, err = curve.NewPoint().SetBytes(hidingRaw)
	if err != nil {
		return nil, nil, fmt.Errorf("smartcard: commit: hiding point: %w", err)
	}
	binding, err = curve.NewPoint().SetBytes(bindingRaw)
	if err != nil {
		return nil, nil, fmt.Errorf("smartcard: commit: binding point: %w", err)
	}
	return hiding, binding, nil
}

// Commitment hands the card a peer's published commitments so the card
// can fold them into its own binding-factor computation at SIGN time.
func (b *Bridge) Commitment(peer identifier.Identifier, hiding, binding *curve.Point) error {
	global := peer.Global()
	if global == 0 || global > 255 {
		return fmt.Errorf("smartcard: identifier %d does not fit a one-byte card slot", global)
	}
	cmd := NewCommand(claFrost, insCommitment).
		P1(byte(global)).
		Extend(hiding.BytesUncompressed()).
		Extend(binding.BytesUncompressed()).
		Build()
	raw, err := b.tx.Transmit(cmd)
	if err != nil {
		return fmt.Errorf("smartcard: commitment: %w", err)
	}
	if _, err := parseResponse(raw); err != nil {
		return fmt.Errorf("smartcard: commitment: %w", err)
	}
	return nil
}

// Sign asks the card to produce its signature share over message, using
// every commitment previously registered via Commitment plus the nonce
// pair from the most recent Commit.
func (b *Bridge) Sign(message []byte) (*curve.Scalar, error) {
	if len(message) > 255 {
		return nil, fmt.Errorf("smartcard: message of %d bytes does not fit a one-byte length field", len(message))
	}
	cmd := NewCommand(claFrost, insSign).
		P1(byte(len(message))).
		Extend(message).
		Build()
	raw, err := b.tx.Transmit(cmd)
	if err != nil {
		return nil, fmt.Errorf("smartcard: sign: %w", err)
	}
	data, err := parseResponse(raw)
	if err != nil {
		return nil, fmt.Errorf("smartcard: sign: %w", err)
	}
	share, err := curve.NewScalar().SetBytes(data)
	if err != nil {
		return nil, fmt.Errorf("smartcard: sign: signature share: %w", err)
	}
	return share, nil
}
