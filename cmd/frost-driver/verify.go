package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luxfi/frost-driver/internal/codec"
	"github.com/luxfi/frost-driver/internal/curve"
	"github.com/luxfi/frost-driver/internal/frost"
)

func runVerify(cmd *cobra.Command, args []string) error {
	sigFile, _ := cmd.Flags().GetString("signature")
	keyFile, _ := cmd.Flags().GetString("key-file")
	message, _ := cmd.Flags().GetString("message")

	sigData, err := os.ReadFile(sigFile)
	if err != nil {
		return fmt.Errorf("reading %s: %w", sigFile, err)
	}
	keyData, err := os.ReadFile(keyFile)
	if err != nil {
		return fmt.Errorf("reading %s: %w", keyFile, err)
	}

	ok, err := verify(sigData, keyData, []byte(message))
	if err != nil {
		return fmt.Errorf("verification error: %w", err)
	}
	if ok {
		fmt.Println("signature is VALID")
		return nil
	}
	fmt.Println("signature is INVALID")
	return fmt.Errorf("invalid signature")
}

func verify(sigData, keyData, message []byte) (bool, error) {
	sigWire, err := codec.DecodeSignature(sigData)
	if err != nil {
		return false, err
	}
	km, err := codec.DecodeKeyMaterial(keyData)
	if err != nil {
		return false, err
	}

	r, err := curve.NewPoint().SetBytes(sigWire.R)
	if err != nil {
		return false, err
	}
	z, err := curve.NewScalar().SetBytes(sigWire.Z)
	if err != nil {
		return false, err
	}
	groupKey, err := curve.NewPoint().SetBytes(km.PublicKeyPackage.VerifyingKey)
	if err != nil {
		return false, err
	}

	sig := &frost.Signature{R: r, Z: z}
	return frost.Verify(sig, groupKey, message), nil
}
