package codec

import "errors"

var (
	// ErrDecode marks a malformed envelope or batch payload.
	ErrDecode = errors.New("codec: decode error")
	// ErrWrongProtocol marks a protocol-kind discriminator mismatch.
	ErrWrongProtocol = errors.New("codec: wrong protocol")
)
