//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"encoding/hex"
	"testing"
)

// AES-128 with the all-zero key over the all-zero block. The first
// MITCCRH key with a zero seed is the zero label so the first hashed
// zero block must match.
const aesZeroZero = "66e94bd4ef8a2c3b884cfa59ca342b2e"

func TestMITCCRHFirstBlock(t *testing.T) {
	const (
		batchSize = 8
		k         = 8
		h         = 2
	)
	var s Label
	mitccrh := NewMITCCRH(s, batchSize)

	blks := make([]Label, k*h)
	mitccrh.Hash(blks, k, h)

	expected, err := hex.DecodeString(aesZeroZero)
	if err != nil {
		t.Fatal(err)
	}
	var exp Label
	exp.SetBytes(expected)

	if !blks[0].Equal(exp) {
		t.Errorf("first block: got %v, expected %v", blks[0], exp)
	}
	if !blks[1].Equal(exp) {
		t.Errorf("second block of first key: got %v, expected %v",
			blks[1], exp)
	}
}

func TestMITCCRHDeterministic(t *testing.T) {
	const batchSize = 8

	seed := Label{
		D0: 0x0123456789abcdef,
		D1: 0xfedcba9876543210,
	}

	a := NewMITCCRH(seed, batchSize)
	b := NewMITCCRH(seed, batchSize)

	blksA := make([]Label, 2*batchSize)
	blksB := make([]Label, 2*batchSize)
	for round := 0; round < 4; round++ {
		a.Hash(blksA, batchSize, 2)
		b.Hash(blksB, batchSize, 2)
		for i := range blksA {
			if !blksA[i].Equal(blksB[i]) {
				t.Fatalf("round %d: block %d mismatch", round, i)
			}
		}
	}
}

func TestMITCCRHKeysDiffer(t *testing.T) {
	const batchSize = 8

	var s Label
	mitccrh := NewMITCCRH(s, batchSize)

	blks := make([]Label, batchSize)
	mitccrh.Hash(blks, batchSize, 1)

	for i := 1; i < batchSize; i++ {
		if blks[i].Equal(blks[0]) {
			t.Errorf("key %d produced the same hash as key 0", i)
		}
	}
}

func BenchmarkMITCCRH(b *testing.B) {
	const batchSize = 8

	var s Label
	mitccrh := NewMITCCRH(s, batchSize)

	var pad [2 * batchSize]Label

	for i := 0; i < b.N; i++ {
		mitccrh.Hash(pad[:], batchSize, 2)
	}
}
