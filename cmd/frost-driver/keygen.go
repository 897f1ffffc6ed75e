package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/luxfi/frost-driver/internal/codec"
	"github.com/luxfi/frost-driver/internal/driver"
	"github.com/luxfi/frost-driver/internal/relay"
)

func runKeygen(cmd *cobra.Command, args []string) error {
	outputDir, _ := cmd.Flags().GetString("output-dir")
	if parties < threshold {
		return fmt.Errorf("parties must be at least threshold")
	}
	if threshold < 2 {
		return fmt.Errorf("threshold must be at least 2")
	}

	materials, err := keygen(parties, threshold)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	for p, material := range materials {
		path := filepath.Join(outputDir, fmt.Sprintf("participant-%d.cbor", p+1))
		if err := os.WriteFile(path, material, 0600); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		if verbose {
			fmt.Printf("wrote %s\n", path)
		}
	}

	first, err := codec.DecodeKeyMaterial(materials[0])
	if err != nil {
		return err
	}
	fmt.Printf("keygen complete: %d participants, threshold %d\n", parties, threshold)
	fmt.Printf("group verifying key: %x\n", first.PublicKeyPackage.VerifyingKey)
	return nil
}

// keygen drives parties local DkgSessions through the relay to
// completion and returns each participant's serialized key material.
func keygen(parties, threshold int) ([][]byte, error) {
	sessions := make([]relay.Participant, parties)
	dkgSessions := make([]*driver.DkgSession, parties)
	initial := make([][]byte, parties)
	for p := 0; p < parties; p++ {
		s := driver.NewDkgSession(codec.ProtocolTypeFROST)
		dkgSessions[p] = s
		sessions[p] = s

		gi := codec.GroupInit{
			Kind:      codec.ProtocolTypeFROST,
			Parties:   uint32(parties),
			Threshold: uint32(threshold),
			Index:     uint32(p + 1),
		}
		enc, err := gi.Encode()
		if err != nil {
			return nil, err
		}
		initial[p] = enc
	}

	if _, err := relay.Run(context.Background(), sessions, codec.ProtocolTypeFROST, initial, 3); err != nil {
		return nil, fmt.Errorf("running dkg: %w", err)
	}

	materials := make([][]byte, parties)
	for p, s := range dkgSessions {
		m, err := s.Finish()
		if err != nil {
			return nil, fmt.Errorf("finishing participant %d: %w", p+1, err)
		}
		materials[p] = m
	}
	return materials, nil
}
