package frost

import "errors"

// ErrCrypto wraps every cryptographic verification failure this package
// can detect: a bad Schnorr proof of knowledge in DKG round 1, a failed
// Feldman check in DKG round 3, a missing commitment in signing, or an
// invalid signature share at aggregation. internal/driver maps it onto
// its own CryptoError kind.
var ErrCrypto = errors.New("frost: cryptographic verification failed")
