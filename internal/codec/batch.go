package codec

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

type batchFrame struct {
	Kind ProtocolType `cbor:"1,keyasint"`
	Msgs [][]byte     `cbor:"2,keyasint"`
}

// Pack frames a per-peer payload vector for the relay, tagging it with
// kind so it can be rejected by a differently-kinded driver without
// being partially decoded first.
func Pack(msgs [][]byte, kind ProtocolType) ([]byte, error) {
	out, err := cbor.Marshal(batchFrame{Kind: kind, Msgs: msgs})
	if err != nil {
		return nil, fmt.Errorf("codec: pack: %w", err)
	}
	return out, nil
}

// Unpack decodes a packed batch back into its per-peer payload vector,
// checking the frame's protocol kind against expectedKind.
func Unpack(data []byte, expectedKind ProtocolType) ([][]byte, error) {
	var frame batchFrame
	if err := cbor.Unmarshal(data, &frame); err != nil {
		return nil, fmt.Errorf("codec: unpack: %w: %w", ErrDecode, err)
	}
	if frame.Kind != expectedKind {
		return nil, fmt.Errorf("codec: unpack: %w", ErrWrongProtocol)
	}
	return frame.Msgs, nil
}

// SerializeBcast encodes value once and replicates it n times: the
// helper for rounds where every peer receives the identical payload.
func SerializeBcast(value any, n int) ([][]byte, error) {
	encoded, err := cbor.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("codec: serialize_bcast: %w", err)
	}
	return Inflate(encoded, n), nil
}

// SerializeUni encodes one distinct payload per peer, in the order
// given.
func SerializeUni(values []any) ([][]byte, error) {
	out := make([][]byte, len(values))
	for i, v := range values {
		encoded, err := cbor.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("codec: serialize_uni: index %d: %w", i, err)
		}
		out[i] = encoded
	}
	return out, nil
}

// Inflate replicates a raw byte string n times, each entry an
// independent copy.
func Inflate(data []byte, n int) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		dup := make([]byte, len(data))
		copy(dup, data)
		out[i] = dup
	}
	return out
}

// DeserializeVec decodes each entry of a payload vector into T.
func DeserializeVec[T any](batch [][]byte) ([]T, error) {
	out := make([]T, len(batch))
	for i, raw := range batch {
		if err := cbor.Unmarshal(raw, &out[i]); err != nil {
			return nil, fmt.Errorf("codec: deserialize_vec: index %d: %w: %w", i, ErrDecode, err)
		}
	}
	return out, nil
}
