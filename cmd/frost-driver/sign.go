package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/luxfi/frost-driver/internal/codec"
	"github.com/luxfi/frost-driver/internal/driver"
	"github.com/luxfi/frost-driver/internal/identifier"
	"github.com/luxfi/frost-driver/internal/relay"
)

func runSign(cmd *cobra.Command, args []string) error {
	keyFiles, _ := cmd.Flags().GetStringSlice("key-files")
	message, _ := cmd.Flags().GetString("message")
	output, _ := cmd.Flags().GetString("output")

	materials := make([][]byte, len(keyFiles))
	for i, path := range keyFiles {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		materials[i] = data
	}

	sig, err := sign(materials, []byte(message))
	if err != nil {
		return err
	}

	if err := os.WriteFile(output, sig, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	fmt.Printf("signature written to %s\n", output)
	return nil
}

// sign drives a signing subset's local SignSessions through the relay
// to completion and returns the serialized aggregated signature.
// Key material may be supplied in any order; sign derives each
// participant's global index from its own key material and sorts
// materials, handles, and indices together before driving the relay,
// since internal/relay's position-based reshuffle requires the
// participant slice to be ordered by ascending global index.
func sign(materials [][]byte, message []byte) ([]byte, error) {
	n := len(materials)
	if n == 0 {
		return nil, fmt.Errorf("no signers supplied")
	}

	type signer struct {
		material []byte
		session  *driver.SignSession
		index    uint32
	}
	signers := make([]signer, n)
	for i, material := range materials {
		s, err := driver.NewSignSession(codec.ProtocolTypeFROST, material)
		if err != nil {
			return nil, fmt.Errorf("initializing signer %d: %w", i, err)
		}

		km, err := codec.DecodeKeyMaterial(material)
		if err != nil {
			return nil, err
		}
		id, err := identifier.SetBytes(km.KeyPackage.ID)
		if err != nil {
			return nil, err
		}
		signers[i] = signer{material: material, session: s, index: id.Global()}
	}
	sort.Slice(signers, func(i, j int) bool { return signers[i].index < signers[j].index })

	indices := make([]uint32, n)
	sessions := make([]relay.Participant, n)
	initial := make([][]byte, n)
	for i, sg := range signers {
		indices[i] = sg.index
		sessions[i] = sg.session
	}
	for i := range signers {
		init := codec.Init{Kind: codec.ProtocolTypeFROST, Indices: indices, Data: message}
		enc, err := init.Encode()
		if err != nil {
			return nil, err
		}
		initial[i] = enc
	}

	if _, err := relay.Run(context.Background(), sessions, codec.ProtocolTypeFROST, initial, 3); err != nil {
		return nil, fmt.Errorf("running signing: %w", err)
	}

	return signers[0].session.Finish()
}
