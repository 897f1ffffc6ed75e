package smartcard

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// pairingPrefix domain-separates the pairing hash from any other use of
// blake2b in this module, the same domain-separation-by-prefix idiom the
// driver's blake3 transcripts use elsewhere.
const pairingPrefix = "frost-driver/smartcard/pairing/v1"

// PairingCode hashes a SETUP command into a short hex code an operator
// can read off a card's screen (or a reader's companion app) and compare
// against the code computed from the SETUP APDU the host actually sent,
// to confirm the card was provisioned for the intended session before
// it is trusted in a signing ceremony.
func PairingCode(setupAPDU []byte) (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", fmt.Errorf("smartcard: pairing hash: %w", err)
	}
	h.Write([]byte(pairingPrefix))
	h.Write(setupAPDU)
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:6]), nil
}
