//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//
// TinyOT-style XOR-authenticated bits:
//
// An Empirical Study and some Improvements of the MiniMac Protocol
// for Secure Computation / A New Approach to Practical Active-Secure
// Two-Party Computation
//  - https://eprint.iacr.org/2011/091.pdf
//
// SPDZ2k: Efficient MPC mod 2^k for Dishonest Majority
//  - https://eprint.iacr.org/2018/482.pdf

// Package tinyot implements two-party XOR-authenticated bits over
// fixed-delta correlated OT. A bit x = x0 xor x1 is authenticated by
// per-party MAC labels satisfying mac0 xor mac1 = x * (delta0 xor
// delta1); the MACs are XOR-homomorphic so linear combinations of
// authenticated bits stay authenticated.
package tinyot

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/markkurossi/spdz2k/ot"
	"github.com/markkurossi/spdz2k/prg"
)

// ErrMacCheck signals a failed TinyOT MAC check. The session must
// abort.
var ErrMacCheck = errors.New("tinyot: MAC check failed")

// Party implements the two-party TinyOT endpoint with one peer. The
// sender store authenticates the peer's bits under this party's
// delta; the receiver store obtains MACs on this party's bits under
// the peer's delta. The lower party acts first on the shared
// connection.
type Party struct {
	lower    bool
	delta    ot.Label
	sender   *ot.COTSender
	receiver *ot.COTReceiver
	priv     *prg.PRG
	io       ot.IO
}

// NewParty creates a TinyOT endpoint. The delta must be the fixed
// correlation delta of the sender store.
func NewParty(lower bool, sender *ot.COTSender, receiver *ot.COTReceiver,
	priv *prg.PRG, io ot.IO) *Party {

	return &Party{
		lower:    lower,
		delta:    sender.Delta(),
		sender:   sender,
		receiver: receiver,
		priv:     priv,
		io:       io,
	}
}

// Delta returns this party's global bit-authentication key.
func (p *Party) Delta() ot.Label {
	return p.delta
}

// AuthBits holds one party's share of authenticated bits: the local
// bit shares and the local MAC labels.
type AuthBits struct {
	Bits []bool
	Macs []ot.Label
}

// XorTo xors the authenticated bits o into ab elementwise.
func (ab *AuthBits) XorTo(o *AuthBits) {
	if len(ab.Bits) != len(o.Bits) {
		panic("tinyot: authenticated bit length mismatch")
	}
	for i := range ab.Bits {
		ab.Bits[i] = ab.Bits[i] != o.Bits[i]
		ab.Macs[i].Xor(o.Macs[i])
	}
}

// AuthBits authenticates the argument local bits in both directions.
func (p *Party) AuthBits(bits []bool) (*AuthBits, error) {
	n := len(bits)

	var macs, keys []ot.Label
	var err error

	if p.lower {
		keys, err = p.sender.Correlated(n)
		if err != nil {
			return nil, err
		}
		macs, err = p.receiver.Correlated(bits)
		if err != nil {
			return nil, err
		}
	} else {
		macs, err = p.receiver.Correlated(bits)
		if err != nil {
			return nil, err
		}
		keys, err = p.sender.Correlated(n)
		if err != nil {
			return nil, err
		}
	}

	// Fold the received MAC, the issued key, and the local delta
	// correction into one label per bit so that the two parties'
	// labels XOR to x*(delta0 xor delta1).
	result := &AuthBits{
		Bits: bits,
		Macs: macs,
	}
	for i := 0; i < n; i++ {
		result.Macs[i].Xor(keys[i])
		if bits[i] {
			result.Macs[i].Xor(p.delta)
		}
	}
	return result, nil
}

// RandomBits authenticates n fresh random local bits.
func (p *Party) RandomBits(n int) (*AuthBits, error) {
	return p.AuthBits(p.priv.Bools(n))
}

// MacCheck verifies the MACs of authenticated bits against their
// opened values. Both parties must call it with the same opened
// array.
func (p *Party) MacCheck(opened []bool, ab *AuthBits) error {
	if len(opened) != len(ab.Bits) {
		panic("tinyot: MacCheck length mismatch")
	}

	// With the key and delta corrections folded in, the two parties'
	// check labels must be equal.
	z := make([]ot.Label, len(opened))
	for i := range opened {
		z[i] = ab.Macs[i]
		if opened[i] {
			z[i].Xor(p.delta)
		}
	}

	hasher := blake3.New()
	var ld ot.LabelData
	for i := range z {
		hasher.Write(z[i].Bytes(&ld))
	}
	zsum := hasher.Sum(nil)

	// Commit-open: domain-separated commitments first, then the
	// nonces. An echoed commitment cannot be opened against this
	// party's labels.
	nonce := make([]byte, 32)
	if _, err := rand.Read(nonce); err != nil {
		return err
	}
	mine := commitDigest(p.lower, nonce, zsum)

	theirCommit, err := p.exchange(mine)
	if err != nil {
		return err
	}
	theirNonce, err := p.exchange(nonce)
	if err != nil {
		return err
	}

	expected := commitDigest(!p.lower, theirNonce, zsum)
	if len(theirCommit) != len(expected) {
		return fmt.Errorf("%w: malformed commitment", ErrMacCheck)
	}
	for i := range expected {
		if theirCommit[i] != expected[i] {
			return ErrMacCheck
		}
	}
	return nil
}

func commitDigest(lower bool, nonce, zsum []byte) []byte {
	hasher := blake3.New()
	if lower {
		hasher.Write([]byte{0})
	} else {
		hasher.Write([]byte{1})
	}
	hasher.Write(nonce)
	hasher.Write(zsum)
	return hasher.Sum(nil)
}

// exchange sends data to the peer and receives the peer's data, the
// lower party first.
func (p *Party) exchange(data []byte) ([]byte, error) {
	if p.lower {
		if err := p.io.SendData(data); err != nil {
			return nil, err
		}
		if err := p.io.Flush(); err != nil {
			return nil, err
		}
		return p.io.ReceiveData()
	}
	theirs, err := p.io.ReceiveData()
	if err != nil {
		return nil, err
	}
	if err := p.io.SendData(data); err != nil {
		return nil, err
	}
	if err := p.io.Flush(); err != nil {
		return nil, err
	}
	return theirs, nil
}
