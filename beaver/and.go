//
// and.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package beaver

import (
	"fmt"

	"github.com/markkurossi/spdz2k/ot"
	"github.com/markkurossi/spdz2k/prg"
	"github.com/markkurossi/spdz2k/ring"
	"github.com/markkurossi/spdz2k/tinyot"
)

// sigma is the number of extra random bits folded into the AuthAnd
// conversion check.
const sigma = 64

// AuthAnd generates size authenticated bit triples c = a & b. The
// triples come from the two-party TinyOT sub-protocol and are
// converted into the ring MAC domain:
//
//	Figure 2: TinyOT share to binary SPDZ2K share conversion,
//	New Primitives for Actively-Secure MPC over Rings
//	 - https://eprint.iacr.org/2019/599.pdf
//
// The conversion is checked with sigma random linear combinations
// that must pass both the TinyOT MAC check and the ring MAC check.
func (g *Generator[T]) AuthAnd(size int) (*Triple[T], error) {
	if g.tiny == nil {
		return nil, fmt.Errorf(
			"beaver: AuthAnd: TinyOT conversion needs two parties, have %v",
			g.comm.Size())
	}
	s := g.params.S
	next := g.comm.NextRank()
	g.comm.Debugf("AuthAnd: size=%v\n", size)

	triple, err := g.tiny.TinyMul(size)
	if err != nil {
		return nil, fmt.Errorf("beaver: AuthAnd: %w", err)
	}
	check, err := g.tiny.RandomBits(sigma)
	if err != nil {
		return nil, fmt.Errorf("beaver: AuthAnd: %w", err)
	}

	// Flatten a, b, c, and the check bits into one authenticated
	// vector.
	total := 3*size + sigma
	bits := make([]bool, total)
	macs := make([]ot.Label, total)
	for i := 0; i < size; i++ {
		bits[i] = triple.A.Bits[i]
		bits[size+i] = triple.B.Bits[i]
		bits[2*size+i] = triple.C.Bits[i]
		macs[i] = triple.A.Macs[i]
		macs[size+i] = triple.B.Macs[i]
		macs[2*size+i] = triple.C.Macs[i]
	}
	for i := 0; i < sigma; i++ {
		bits[3*size+i] = check.Bits[i]
		macs[3*size+i] = check.Macs[i]
	}

	choices := make([]T, total)
	for i, bit := range bits {
		if bit {
			choices[i] = 1
		}
	}

	// Bridge the bits into the ring MAC domain with random OTs: the
	// receiver role contributes t + choices*recv, the sender role
	// corrects with its key difference.
	extKey := make([]T, total)
	for i := range extKey {
		extKey[i] = g.spdzKey
	}

	var t, mask0 []T
	var recv []T
	if g.comm.Rank() == 0 {
		t, err = g.rotRecv(next, bits)
		if err != nil {
			return nil, fmt.Errorf("beaver: AuthAnd: %w", err)
		}
		recv, err = g.recvDiff(next, total)
		if err != nil {
			return nil, fmt.Errorf("beaver: AuthAnd: %w", err)
		}
		mask0, err = g.sendDiff(next, extKey)
		if err != nil {
			return nil, fmt.Errorf("beaver: AuthAnd: %w", err)
		}
	} else {
		mask0, err = g.sendDiff(next, extKey)
		if err != nil {
			return nil, fmt.Errorf("beaver: AuthAnd: %w", err)
		}
		t, err = g.rotRecv(next, bits)
		if err != nil {
			return nil, fmt.Errorf("beaver: AuthAnd: %w", err)
		}
		recv, err = g.recvDiff(next, total)
		if err != nil {
			return nil, fmt.Errorf("beaver: AuthAnd: %w", err)
		}
	}

	spdzMac := ring.Add(t, ring.Mul(choices, recv))
	ring.SubTo(spdzMac, mask0)
	ring.AddTo(spdzMac, ring.Mul(choices, extKey))

	// Fold sigma random linear combinations over the converted bits
	// and check them in both MAC domains.
	checkTinyMac := make([]ot.Label, sigma)
	checkBit := ring.Zeros[T](sigma)
	checkMac := ring.Zeros[T](sigma)
	for i := 0; i < sigma; i++ {
		checkTinyMac[i] = macs[3*size+i]
		checkBit[i] = choices[3*size+i]
		checkMac[i] = spdzMac[3*size+i]
	}
	seed, err := prg.SharedSeed(g.comm, g.tag("and/coin"))
	if err != nil {
		return nil, fmt.Errorf("beaver: AuthAnd: %w", err)
	}
	coin := prg.New(seed)
	for j := 0; j < 3*size; j++ {
		coef := coin.Uint64()
		for i := 0; i < sigma; i++ {
			if coef&1 == 1 {
				checkTinyMac[i].Xor(macs[j])
				checkBit[i] += choices[j]
				checkMac[i] += spdzMac[j]
			}
			coef >>= 1
		}
	}

	openBit, zeroMac, err := g.BatchOpen(checkBit, checkMac, 1, s)
	if err != nil {
		return nil, fmt.Errorf("beaver: AuthAnd: %w", err)
	}
	opened := ring.LowBits(openBit)

	err = g.tiny.MacCheck(opened, &tinyot.AuthBits{
		Bits: opened,
		Macs: checkTinyMac,
	})
	if err != nil {
		return nil, fmt.Errorf("beaver: AuthAnd: %w", err)
	}
	if err := g.BatchMacCheck(openBit, zeroMac, s, s); err != nil {
		return nil, fmt.Errorf("beaver: AuthAnd: %w", err)
	}

	g.sample("AuthAnd")
	return &Triple[T]{
		A: Auth[T]{
			Val: ring.Clone(choices[:size]),
			Mac: ring.Clone(spdzMac[:size]),
		},
		B: Auth[T]{
			Val: ring.Clone(choices[size : 2*size]),
			Mac: ring.Clone(spdzMac[size : 2*size]),
		},
		C: Auth[T]{
			Val: ring.Clone(choices[2*size : 3*size]),
			Mac: ring.Clone(spdzMac[2*size : 3*size]),
		},
	}, nil
}

// sendDiff extends random OT pairs with the peer and sends the
// correction q0-q1+key, returning the q0 masks.
func (g *Generator[T]) sendDiff(peer int, key []T) ([]T, error) {
	q0, q1, err := g.rotSend(peer, len(key))
	if err != nil {
		return nil, err
	}
	diff := make([]T, len(key))
	for i := range diff {
		diff[i] = q0[i] - q1[i] + key[i]
	}
	err = g.comm.SendAsync(peer, "and/diff", ring.Encode(diff))
	if err != nil {
		return nil, err
	}
	return q0, nil
}

// recvDiff receives the peer's key correction.
func (g *Generator[T]) recvDiff(peer, n int) ([]T, error) {
	data, err := g.comm.Recv(peer, "and/diff")
	if err != nil {
		return nil, err
	}
	d, err := ring.Decode[T](data)
	if err != nil {
		return nil, err
	}
	if len(d) != n {
		return nil, fmt.Errorf("invalid key correction")
	}
	return d, nil
}
