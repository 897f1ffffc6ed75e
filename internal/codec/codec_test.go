package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGroupInitRoundTrip(t *testing.T) {
	g := GroupInit{Kind: ProtocolTypeFROST, Parties: 5, Threshold: 3, Index: 2}
	data, err := g.Encode()
	require.NoError(t, err)

	decoded, err := DecodeGroupInit(data, ProtocolTypeFROST)
	require.NoError(t, err)
	require.Equal(t, g, decoded)
}

func TestDecodeGroupInitWrongProtocol(t *testing.T) {
	g := GroupInit{Kind: ProtocolTypeGG18, Parties: 3, Threshold: 2, Index: 1}
	data, err := g.Encode()
	require.NoError(t, err)

	_, err = DecodeGroupInit(data, ProtocolTypeFROST)
	require.ErrorIs(t, err, ErrWrongProtocol)
}

func TestInitRoundTrip(t *testing.T) {
	i := Init{Kind: ProtocolTypeFROST, Indices: []uint32{1, 3, 4}, Data: []byte("hello")}
	data, err := i.Encode()
	require.NoError(t, err)

	decoded, err := DecodeInit(data, ProtocolTypeFROST)
	require.NoError(t, err)
	require.Equal(t, i, decoded)
}

func TestPackUnpackRoundTrip(t *testing.T) {
	msgs := [][]byte{[]byte("a"), []byte("bb"), []byte("ccc")}
	data, err := Pack(msgs, ProtocolTypeFROST)
	require.NoError(t, err)

	decoded, err := Unpack(data, ProtocolTypeFROST)
	require.NoError(t, err)
	require.Equal(t, msgs, decoded)
}

func TestUnpackWrongProtocol(t *testing.T) {
	data, err := Pack([][]byte{[]byte("x")}, ProtocolTypeElgamal)
	require.NoError(t, err)

	_, err = Unpack(data, ProtocolTypeFROST)
	require.ErrorIs(t, err, ErrWrongProtocol)
}

func TestSerializeBcastAllIdentical(t *testing.T) {
	type payload struct {
		A int `cbor:"1,keyasint"`
	}
	out, err := SerializeBcast(payload{A: 7}, 4)
	require.NoError(t, err)
	require.Len(t, out, 4)
	for _, b := range out {
		require.Equal(t, out[0], b)
	}
}

func TestSerializeUniDistinctPayloads(t *testing.T) {
	type payload struct {
		A int `cbor:"1,keyasint"`
	}
	out, err := SerializeUni([]any{payload{A: 1}, payload{A: 2}, payload{A: 3}})
	require.NoError(t, err)
	require.Len(t, out, 3)
	require.NotEqual(t, out[0], out[1])
}

func TestInflateCopies(t *testing.T) {
	original := []byte("shared")
	out := Inflate(original, 3)
	require.Len(t, out, 3)
	out[0][0] = 'S'
	require.NotEqual(t, out[0], out[1])
}

func TestDeserializeVecDecodesEachEntry(t *testing.T) {
	type payload struct {
		A int `cbor:"1,keyasint"`
	}
	batch, err := SerializeUni([]any{payload{A: 5}, payload{A: 9}})
	require.NoError(t, err)

	decoded, err := DeserializeVec[payload](batch)
	require.NoError(t, err)
	require.Equal(t, []payload{{A: 5}, {A: 9}}, decoded)
}
