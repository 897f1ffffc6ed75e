package smartcard

import "fmt"

const (
	claFrost = 0x00

	insSetup      = 0x01
	insCommit     = 0x02
	insCommitment = 0x03
	insSign       = 0x04
)

// swSuccess is the ISO 7816-4 status word trailer for a successful
// command.
var swSuccess = [2]byte{0x90, 0x00}

// ErrCardStatus is returned when a card responds with anything other
// than a success status word, or with a response too short to carry
// one.
var ErrCardStatus = fmt.Errorf("smartcard: non-success status word")

// CommandBuilder assembles a CLA/INS/P1/P2/Lc/data APDU one field at a
// time.
type CommandBuilder struct {
	cla, ins, p1, p2 byte
	data             []byte
}

// NewCommand starts building an APDU for the given class and
// instruction bytes.
func NewCommand(cla, ins byte) *CommandBuilder {
	return &CommandBuilder{cla: cla, ins: ins}
}

// P1 sets the command's first parameter byte.
func (b *CommandBuilder) P1(v byte) *CommandBuilder {
	b.p1 = v
	return b
}

// P2 sets the command's second parameter byte.
func (b *CommandBuilder) P2(v byte) *CommandBuilder {
	b.p2 = v
	return b
}

// Push appends a single byte to the command body.
func (b *CommandBuilder) Push(v byte) *CommandBuilder {
	b.data = append(b.data, v)
	return b
}

// Extend appends a byte slice to the command body.
func (b *CommandBuilder) Extend(v []byte) *CommandBuilder {
	b.data = append(b.data, v...)
	return b
}

// Build renders the finished APDU, prefixing the body with a one-byte
// length field. Bodies longer than 255 bytes do not fit this module's
// short-APDU encoding and are rejected by the caller's field-size
// expectations, not by this builder.
func (b *CommandBuilder) Build() []byte {
	apdu := make([]byte, 0, 5+len(b.data))
	apdu = append(apdu, b.cla, b.ins, b.p1, b.p2, byte(len(b.data)))
	apdu = append(apdu, b.data...)
	return apdu
}

// parseResponse strips and validates a response's trailing status word,
// returning the response data that precedes it.
func parseResponse(raw []byte) ([]byte, error) {
	if len(raw) < 2 {
		return nil, fmt.Errorf("smartcard: response shorter than a status word: %w", ErrCardStatus)
	}
	data, sw := raw[:len(raw)-2], raw[len(raw)-2:]
	if sw[0] != swSuccess[0] || sw[1] != swSuccess[1] {
		return nil, fmt.Errorf("smartcard: status word %02x%02x: %w", sw[0], sw[1], ErrCardStatus)
	}
	return data, nil
}
