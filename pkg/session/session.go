// Package session is the host-facing entry point to this driver: one
// Session interface behind which a DkgHandle or a SignHandle runs,
// dispatched transparently by Deserialize so a host that persists a
// snapshot blob across a process restart never needs to know which kind
// of session it is resuming.
package session

import (
	"fmt"

	"github.com/luxfi/frost-driver/internal/codec"
	"github.com/luxfi/frost-driver/internal/driver"
)

// ProtocolKind is the host-facing analogue of the wire-level
// codec.ProtocolType: today only KindFrost is implemented, but the type
// is a sum so a sibling driver for a different threshold protocol can
// share this same dispatch shape without reopening this package.
type ProtocolKind uint32

// KindFrost is this driver's only supported protocol kind.
const KindFrost ProtocolKind = ProtocolKind(codec.ProtocolTypeFROST)

func (k ProtocolKind) wire() codec.ProtocolType { return codec.ProtocolType(k) }

// Recipient names who an outbound payload is addressed to. This driver
// always routes outbound bytes back through the relay/server rather
// than directly to a peer, so RecipientServer is the only value in use
// today; the type exists so a future direct-peer transport can be added
// without changing Session's signature.
type Recipient int

// RecipientServer is the only Recipient value this driver ever returns.
const RecipientServer Recipient = 0

// Session is the uniform host-facing handle for a running or completed
// protocol session, regardless of whether it wraps a DKG or a signing
// run underneath.
type Session interface {
	Advance(inbound []byte) (outbound []byte, recipient Recipient, err error)
	Finish() ([]byte, error)
	// Serialize returns an opaque snapshot of the session. The snapshot
	// carries secret material (the signing share, DKG polynomial
	// coefficients, and a sign session's round-1 nonces while it sits in
	// R1), so the blob is as sensitive as the key material itself and
	// its confidential storage is the caller's responsibility.
	Serialize() ([]byte, error)
}

// DkgHandle adapts an internal/driver.DkgSession to Session.
type DkgHandle struct {
	inner *driver.DkgSession
}

// Keygen starts a fresh DKG session. parties and threshold are validated
// immediately so misconfiguration is reported before any bytes are ever
// exchanged, even though the session itself re-derives and re-validates
// both from the first inbound GroupInit envelope.
func Keygen(kind ProtocolKind, parties, threshold int) (*DkgHandle, error) {
	if threshold < 2 {
		return nil, fmt.Errorf("session: threshold must be at least 2")
	}
	if parties < threshold {
		return nil, fmt.Errorf("session: parties must be at least threshold")
	}
	return &DkgHandle{inner: driver.NewDkgSession(kind.wire())}, nil
}

// Advance implements Session.
func (h *DkgHandle) Advance(inbound []byte) ([]byte, Recipient, error) {
	out, err := h.inner.Advance(inbound)
	if err != nil {
		return nil, RecipientServer, err
	}
	return out, RecipientServer, nil
}

// Finish implements Session.
func (h *DkgHandle) Finish() ([]byte, error) { return h.inner.Finish() }

// Serialize implements Session.
func (h *DkgHandle) Serialize() ([]byte, error) { return h.inner.Serialize() }

// SignHandle adapts an internal/driver.SignSession to Session.
type SignHandle struct {
	inner *driver.SignSession
}

// Init starts a signing session from persisted DKG key material
// (the bytes a prior DkgHandle's Finish returned).
func Init(kind ProtocolKind, groupBytes []byte) (*SignHandle, error) {
	inner, err := driver.NewSignSession(kind.wire(), groupBytes)
	if err != nil {
		return nil, err
	}
	return &SignHandle{inner: inner}, nil
}

// Advance implements Session.
func (h *SignHandle) Advance(inbound []byte) ([]byte, Recipient, error) {
	out, err := h.inner.Advance(inbound)
	if err != nil {
		return nil, RecipientServer, err
	}
	return out, RecipientServer, nil
}

// Finish implements Session.
func (h *SignHandle) Finish() ([]byte, error) { return h.inner.Finish() }

// Serialize implements Session.
func (h *SignHandle) Serialize() ([]byte, error) { return h.inner.Serialize() }

// Deserialize restores whichever session kind a snapshot blob encodes,
// dispatching on the envelope's session-kind tag.
func Deserialize(blob []byte) (Session, error) {
	env, err := codec.DecodeSnapshotEnvelope(blob)
	if err != nil {
		return nil, err
	}
	switch env.SessionKind {
	case codec.SessionKindDkg:
		inner, err := driver.RestoreDkgSession(env.Payload)
		if err != nil {
			return nil, err
		}
		return &DkgHandle{inner: inner}, nil
	case codec.SessionKindSign:
		inner, err := driver.RestoreSignSession(env.Payload)
		if err != nil {
			return nil, err
		}
		return &SignHandle{inner: inner}, nil
	default:
		return nil, fmt.Errorf("session: unknown session kind %d", env.SessionKind)
	}
}
