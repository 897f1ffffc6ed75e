// Package smartcard bridges a FROST signer's state to a JavaCard-style
// smart card over a four-command APDU protocol: SETUP provisions the
// card with its signing share and the group's public key, COMMIT asks
// the card to generate a fresh nonce pair, COMMITMENT hands the card a
// peer's published commitments, and SIGN asks it to produce its
// signature share over a message. The card, not this package, holds the
// signing share; every point this package sends the card is uncompressed
// SEC1, and every point it receives back is re-encoded to this module's
// canonical compressed form before use.
package smartcard
