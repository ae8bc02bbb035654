//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package prg

import (
	"fmt"

	"github.com/markkurossi/spdz2k/comm"
	"github.com/markkurossi/spdz2k/commit"
)

// SharedSeed agrees on a fresh public seed. Every party contributes
// a random seed under commit-and-open and the contributions are
// XOR-combined, so the result is uniform as long as one party is
// honest.
func SharedSeed(c *comm.Communicator, tag string) (Seed, error) {
	var result Seed

	own, err := NewSeed()
	if err != nil {
		return result, err
	}
	parts, err := commit.Open(c, tag, own[:])
	if err != nil {
		return result, err
	}
	for peer, data := range parts {
		if len(data) != SeedSize {
			return result, fmt.Errorf(
				"prg: invalid seed contribution from %v: %v bytes",
				peer, len(data))
		}
		var s Seed
		copy(s[:], data)
		result.Xor(s)
	}
	return result, nil
}

// Shared creates a PRG from a fresh shared seed. All parties end
// with the same stream.
func Shared(c *comm.Communicator, tag string) (*PRG, error) {
	seed, err := SharedSeed(c, tag)
	if err != nil {
		return nil, err
	}
	return New(seed), nil
}
