//
// open.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package beaver

import (
	"fmt"

	"github.com/markkurossi/spdz2k/comm"
	"github.com/markkurossi/spdz2k/commit"
	"github.com/markkurossi/spdz2k/prg"
	"github.com/markkurossi/spdz2k/ring"
)

// publicCoin draws n public random ring elements from a freshly
// commit-opened seed. Unlike the synced public stream, the coin is
// unpredictable until all parties have committed their
// contributions.
func (g *Generator[T]) publicCoin(n int) ([]T, error) {
	seed, err := prg.SharedSeed(g.comm, g.tag("coin"))
	if err != nil {
		return nil, err
	}
	return prg.Elements[T](prg.New(seed), n), nil
}

// BatchOpen opens the shares: the parties all-reduce their value
// shares with the high bits drowned under a fresh authenticated
// mask. The low k bits of the result are the opened values; the
// returned MAC shares cover the masked values and must still pass
// BatchMacCheck before the opened values may be used:
//
//	Procedure BatchCheck, 3.2 Batch MAC Checking with Random Linear
//	Combinations, SPDZ2k: Efficient MPC mod 2k for Dishonest Majority
//	 - https://eprint.iacr.org/2018/482.pdf
//
// Opening is one-shot per element vector; the inputs are not
// modified.
func (g *Generator[T]) BatchOpen(value, mac []T, k, s uint) (
	[]T, []T, error) {

	if len(value) != len(mac) {
		panic("beaver: BatchOpen: value and MAC length mismatch")
	}
	r, err := g.authRandom(len(value))
	if err != nil {
		return nil, nil, fmt.Errorf("beaver: BatchOpen: %w", err)
	}

	masked := ring.Add(value, ring.LShift(r.Val, k))
	maskedMac := ring.Add(mac, ring.LShift(r.Mac, k))

	opened, err := comm.AllReduce(g.comm, "batch_open", masked)
	if err != nil {
		return nil, nil, fmt.Errorf("beaver: BatchOpen: %w", err)
	}
	return opened, maskedMac, nil
}

// BatchMacCheck verifies the MAC shares of opened values: a random
// linear combination of the local MACs, with s-bit public
// coefficients, is commit-opened and the sum must vanish in the k+s
// low bits. An error is session-fatal.
func (g *Generator[T]) BatchMacCheck(opened, mac []T, k, s uint) error {
	if len(opened) != len(mac) {
		panic("beaver: BatchMacCheck: value and MAC length mismatch")
	}
	n := len(opened)

	coef, err := g.publicCoin(n)
	if err != nil {
		return fmt.Errorf("beaver: BatchMacCheck: %w", err)
	}
	ring.MaskTo(coef, s)

	checkValue := ring.MatMul(coef, opened, 1, 1, n)
	checkMac := ring.MatMul(coef, mac, 1, 1, n)
	local := checkMac[0] - checkValue[0]*g.spdzKey

	openings, err := commit.Open(g.comm, g.tag("maccheck"),
		ring.Encode([]T{local}))
	if err != nil {
		return fmt.Errorf("beaver: BatchMacCheck: %w", err)
	}
	var sum T
	for _, data := range openings {
		m, err := ring.Decode[T](data)
		if err != nil || len(m) != 1 {
			return fmt.Errorf("beaver: BatchMacCheck: %w", ErrMacCheck)
		}
		sum += m[0]
	}
	if sum&ring.MaskBits[T](k+s) != 0 {
		return fmt.Errorf("beaver: BatchMacCheck: %w", ErrMacCheck)
	}
	return nil
}
