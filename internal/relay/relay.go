package relay

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/luxfi/frost-driver/internal/codec"
	"github.com/luxfi/frost-driver/internal/identifier"
)

// Participant is anything that can be driven one round at a time: both
// internal/driver.DkgSession and internal/driver.SignSession satisfy it
// directly.
type Participant interface {
	Advance(inbound []byte) ([]byte, error)
}

// Run drives every participant through numRounds rounds. initial[p] is
// fed to participant p as its very first inbound (the GroupInit or Init
// envelope, which differs per participant). Every round thereafter, each
// participant's outbound batch of len(parties)-1 payloads is unpacked,
// reshuffled across the whole group using the skip-self positional rule,
// and repacked into the next round's per-participant inbound. The final
// round's outbound batches are returned unconsumed, since nothing
// downstream needs to unpack them further.
func Run(ctx context.Context, parties []Participant, kind codec.ProtocolType, initial [][]byte, numRounds int) ([][]byte, error) {
	n := len(parties)
	if len(initial) != n {
		return nil, fmt.Errorf("relay: initial inbound count %d does not match %d participants", len(initial), n)
	}

	inbound := initial
	var outbound [][]byte
	for round := 0; round < numRounds; round++ {
		var err error
		outbound, err = runOneRound(ctx, parties, inbound)
		if err != nil {
			return nil, fmt.Errorf("relay: round %d: %w", round, err)
		}
		if round == numRounds-1 {
			break
		}
		inbound, err = reshuffle(outbound, n, kind)
		if err != nil {
			return nil, fmt.Errorf("relay: round %d: %w", round, err)
		}
	}
	return outbound, nil
}

func runOneRound(ctx context.Context, parties []Participant, inbound [][]byte) ([][]byte, error) {
	n := len(parties)
	outbound := make([][]byte, n)
	g, _ := errgroup.WithContext(ctx)
	for p := 0; p < n; p++ {
		p := p
		g.Go(func() error {
			out, err := parties[p].Advance(inbound[p])
			if err != nil {
				return fmt.Errorf("participant %d: %w", p, err)
			}
			outbound[p] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outbound, nil
}

// reshuffle unpacks every sender's outbound batch into a pairwise
// sender-to-recipient table, then rebuilds every recipient's inbound
// batch in the position order its own Advance call expects.
func reshuffle(outbound [][]byte, n int, kind codec.ProtocolType) ([][]byte, error) {
	pairwise := make([]map[uint32][]byte, n)
	for p := 0; p < n; p++ {
		msgs, err := codec.Unpack(outbound[p], kind)
		if err != nil {
			return nil, fmt.Errorf("unpacking outbound from participant %d: %w", p, err)
		}
		if len(msgs) != n-1 {
			return nil, fmt.Errorf("participant %d sent %d payloads, expected %d", p, len(msgs), n-1)
		}
		table := make(map[uint32][]byte, len(msgs))
		for i, msg := range msgs {
			recipient, err := identifier.IdentifierAt(i, p, nil)
			if err != nil {
				return nil, fmt.Errorf("resolving recipient for participant %d position %d: %w", p, i, err)
			}
			table[recipient.Global()] = msg
		}
		pairwise[p] = table
	}

	inbound := make([][]byte, n)
	for r := 0; r < n; r++ {
		vec := make([][]byte, n-1)
		for j := 0; j < n-1; j++ {
			sender, err := identifier.IdentifierAt(j, r, nil)
			if err != nil {
				return nil, fmt.Errorf("resolving sender for participant %d position %d: %w", r, j, err)
			}
			senderSlot := int(sender.Global()) - 1
			msg, ok := pairwise[senderSlot][uint32(r+1)]
			if !ok {
				return nil, fmt.Errorf("no message from participant %d addressed to participant %d", senderSlot, r)
			}
			vec[j] = msg
		}
		packed, err := codec.Pack(vec, kind)
		if err != nil {
			return nil, fmt.Errorf("packing inbound for participant %d: %w", r, err)
		}
		inbound[r] = packed
	}
	return inbound, nil
}
