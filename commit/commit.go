//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package commit implements multi-party commit-and-open. Every party
// commits to its value with a hash over a nonced opening record; the
// values are revealed only after all commitments are in.
package commit

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"

	"github.com/markkurossi/spdz2k/comm"
)

// ErrCommitment signals that a peer's opening did not match its
// commitment. The session must abort.
var ErrCommitment = errors.New("commit: opening does not match commitment")

const nonceSize = 32

type opening struct {
	Rank  int    `cbor:"1,keyasint"`
	Nonce []byte `cbor:"2,keyasint"`
	Value []byte `cbor:"3,keyasint"`
}

func digest(data []byte) []byte {
	sum := blake3.Sum256(data)
	return sum[:]
}

// Open runs commit-and-open for the value. All parties first
// exchange commitments, then the opening records. The result
// contains every party's value indexed by rank, own value included.
// The tag must be unique to the protocol step.
func Open(c *comm.Communicator, tag string, value []byte) ([][]byte, error) {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	record, err := cbor.Marshal(opening{
		Rank:  c.Rank(),
		Nonce: nonce,
		Value: value,
	})
	if err != nil {
		return nil, err
	}

	commitments, err := c.ExchangeAll(tag+"/commit", digest(record))
	if err != nil {
		return nil, err
	}
	records, err := c.ExchangeAll(tag+"/open", record)
	if err != nil {
		return nil, err
	}

	result := make([][]byte, c.Size())
	result[c.Rank()] = value

	for peer, data := range records {
		if peer == c.Rank() {
			continue
		}
		if !bytes.Equal(digest(data), commitments[peer]) {
			return nil, fmt.Errorf("%w: peer %v", ErrCommitment, peer)
		}
		var rec opening
		if err := cbor.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("commit: peer %v: %w", peer, err)
		}
		if rec.Rank != peer {
			return nil, fmt.Errorf("%w: peer %v opened rank %v",
				ErrCommitment, peer, rec.Rank)
		}
		result[peer] = rec.Value
	}
	return result, nil
}
