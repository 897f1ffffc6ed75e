package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func runBench(cmd *cobra.Command, args []string) error {
	sizes, _ := cmd.Flags().GetIntSlice("sizes")
	iterations, _ := cmd.Flags().GetInt("iterations")

	for _, n := range sizes {
		t := n/2 + 1
		if t < 2 {
			t = 2
		}

		var keygenTotal, signTotal time.Duration
		var materials [][]byte
		for i := 0; i < iterations; i++ {
			start := time.Now()
			m, err := keygen(n, t)
			if err != nil {
				return fmt.Errorf("keygen benchmark (n=%d, t=%d): %w", n, t, err)
			}
			keygenTotal += time.Since(start)
			materials = m
		}

		signers := make([][]byte, t)
		copy(signers, materials[:t])
		message := []byte("benchmark message")
		for i := 0; i < iterations; i++ {
			start := time.Now()
			if _, err := sign(signers, message); err != nil {
				return fmt.Errorf("sign benchmark (n=%d, t=%d): %w", n, t, err)
			}
			signTotal += time.Since(start)
		}

		fmt.Printf("n=%d t=%d: keygen avg %s, sign avg %s\n",
			n, t, keygenTotal/time.Duration(iterations), signTotal/time.Duration(iterations))
	}
	return nil
}
