//
// prg.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package prg implements the deterministic pseudo-random generators
// of the preprocessing protocols: private per-party streams and
// seed-synced public streams that yield the same values at every
// party. The streams are ChaCha20 keystreams; a given seed always
// produces the same sequence, and the protocols rely on all parties
// consuming their public stream in the same order.
package prg

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/chacha20"

	"github.com/markkurossi/spdz2k/ring"
)

// SeedSize is the PRG seed size in bytes.
const SeedSize = chacha20.KeySize

// Seed is a PRG seed.
type Seed [SeedSize]byte

// Xor combines the argument seed into this seed.
func (s *Seed) Xor(o Seed) {
	for i := range s {
		s[i] ^= o[i]
	}
}

// NewSeed creates a new cryptographically random seed.
func NewSeed() (Seed, error) {
	var seed Seed
	if _, err := rand.Read(seed[:]); err != nil {
		return seed, fmt.Errorf("prg: seed: %w", err)
	}
	return seed, nil
}

// PRG is a deterministic pseudo-random stream.
type PRG struct {
	stream *chacha20.Cipher
}

// New creates a PRG producing the keystream of the seed.
func New(seed Seed) *PRG {
	var nonce [chacha20.NonceSize]byte
	stream, err := chacha20.NewUnauthenticatedCipher(seed[:], nonce[:])
	if err != nil {
		// The key and nonce sizes are correct by construction.
		panic(err)
	}
	return &PRG{
		stream: stream,
	}
}

// NewRandom creates a PRG from a fresh random seed.
func NewRandom() (*PRG, error) {
	seed, err := NewSeed()
	if err != nil {
		return nil, err
	}
	return New(seed), nil
}

// Fill fills buf with pseudo-random bytes.
func (g *PRG) Fill(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
	g.stream.XORKeyStream(buf, buf)
}

// Uint64 returns the next 64 pseudo-random bits.
func (g *PRG) Uint64() uint64 {
	var buf [8]byte
	g.Fill(buf[:])
	return binary.LittleEndian.Uint64(buf[:])
}

// Elements returns n pseudo-random ring elements.
func Elements[T ring.Elem](g *PRG, n int) []T {
	buf := make([]byte, n*ring.Size[T]())
	g.Fill(buf)
	x, err := ring.Decode[T](buf)
	if err != nil {
		panic(err)
	}
	return x
}

// Bits returns n pseudo-random 0/1 ring elements.
func Bits[T ring.Elem](g *PRG, n int) []T {
	buf := make([]byte, (n+7)/8)
	g.Fill(buf)
	x := make([]T, n)
	for i := range x {
		x[i] = T((buf[i/8] >> (i % 8)) & 1)
	}
	return x
}

// Bools returns n pseudo-random booleans.
func (g *PRG) Bools(n int) []bool {
	buf := make([]byte, (n+7)/8)
	g.Fill(buf)
	r := make([]bool, n)
	for i := range r {
		r[i] = (buf[i/8]>>(i%8))&1 == 1
	}
	return r
}
