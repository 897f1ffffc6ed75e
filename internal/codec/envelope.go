package codec

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// ProtocolType discriminates the protocol family an envelope or batch
// belongs to, so a host wiring up multiple protocol drivers against the
// same relay can reject cross-wired messages early.
type ProtocolType uint32

const (
	ProtocolTypeGG18    ProtocolType = 1
	ProtocolTypeElgamal ProtocolType = 2
	// ProtocolTypeFROST is this driver's fixed protocol-kind value.
	ProtocolTypeFROST ProtocolType = 3
)

// GroupInit is the envelope consumed once, at DKG round 0.
type GroupInit struct {
	Kind      ProtocolType `cbor:"1,keyasint"`
	Parties   uint32       `cbor:"2,keyasint"`
	Threshold uint32       `cbor:"3,keyasint"`
	Index     uint32       `cbor:"4,keyasint"`
}

// Encode serializes g for transport.
func (g GroupInit) Encode() ([]byte, error) {
	out, err := cbor.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("codec: encode group init: %w", err)
	}
	return out, nil
}

// DecodeGroupInit decodes a GroupInit envelope, rejecting anything whose
// protocol kind does not match expectedKind.
func DecodeGroupInit(data []byte, expectedKind ProtocolType) (GroupInit, error) {
	var g GroupInit
	if err := cbor.Unmarshal(data, &g); err != nil {
		return GroupInit{}, fmt.Errorf("codec: decode group init: %w: %w", ErrDecode, err)
	}
	if g.Kind != expectedKind {
		return GroupInit{}, fmt.Errorf("codec: decode group init: %w", ErrWrongProtocol)
	}
	return g, nil
}

// Init is the envelope consumed once, at sign round 0.
type Init struct {
	Kind    ProtocolType `cbor:"1,keyasint"`
	Indices []uint32     `cbor:"2,keyasint"`
	Data    []byte       `cbor:"3,keyasint"`
}

// Encode serializes i for transport.
func (i Init) Encode() ([]byte, error) {
	out, err := cbor.Marshal(i)
	if err != nil {
		return nil, fmt.Errorf("codec: encode init: %w", err)
	}
	return out, nil
}

// DecodeInit decodes an Init envelope, rejecting anything whose protocol
// kind does not match expectedKind.
func DecodeInit(data []byte, expectedKind ProtocolType) (Init, error) {
	var i Init
	if err := cbor.Unmarshal(data, &i); err != nil {
		return Init{}, fmt.Errorf("codec: decode init: %w: %w", ErrDecode, err)
	}
	if i.Kind != expectedKind {
		return Init{}, fmt.Errorf("codec: decode init: %w", ErrWrongProtocol)
	}
	return i, nil
}
