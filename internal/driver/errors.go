package driver

import (
	"errors"
	"fmt"

	"github.com/luxfi/frost-driver/internal/codec"
	"github.com/luxfi/frost-driver/internal/frost"
	"github.com/luxfi/frost-driver/internal/identifier"
)

// ErrorKind discriminates the single error sum this package returns. All
// kinds are fatal to the session: there is no intra-session recovery.
type ErrorKind int

const (
	DecodeError ErrorKind = iota + 1
	WrongProtocol
	NotInitialized
	AlreadyFinished
	ParticipantNotIncluded
	InvalidIdentifier
	CryptoError
	InvalidPointEncoding
	InsufficientSigners
)

func (k ErrorKind) String() string {
	switch k {
	case DecodeError:
		return "DecodeError"
	case WrongProtocol:
		return "WrongProtocol"
	case NotInitialized:
		return "NotInitialized"
	case AlreadyFinished:
		return "AlreadyFinished"
	case ParticipantNotIncluded:
		return "ParticipantNotIncluded"
	case InvalidIdentifier:
		return "InvalidIdentifier"
	case CryptoError:
		return "CryptoError"
	case InvalidPointEncoding:
		return "InvalidPointEncoding"
	case InsufficientSigners:
		return "InsufficientSigners"
	default:
		return "Unknown"
	}
}

// Error is the single fatal error type every driver operation returns.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("driver: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("driver: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// classify maps an error surfaced by a collaborator package (codec,
// identifier, frost) onto the matching ErrorKind, so callers at the
// state-machine level never need to know which package originated a
// failure.
func classify(context string, err error) error {
	switch {
	case errors.Is(err, codec.ErrWrongProtocol):
		return newError(WrongProtocol, context, err)
	case errors.Is(err, codec.ErrDecode):
		return newError(DecodeError, context, err)
	case errors.Is(err, identifier.ErrInvalidIdentifier):
		return newError(InvalidIdentifier, context, err)
	case errors.Is(err, frost.ErrCrypto):
		return newError(CryptoError, context, err)
	default:
		return newError(CryptoError, context, err)
	}
}
