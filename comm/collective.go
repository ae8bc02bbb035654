//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package comm

import (
	"fmt"

	"github.com/markkurossi/spdz2k/ring"
)

// ExchangeAll shares the data with all peers. The result is indexed
// by rank and contains this party's own data at its rank.
func (c *Communicator) ExchangeAll(tag string, data []byte) ([][]byte, error) {
	result := make([][]byte, c.Size())
	result[c.rank] = data

	for peer := 0; peer < c.Size(); peer++ {
		if peer == c.rank {
			continue
		}
		theirs, err := c.Exchange(peer, tag, data)
		if err != nil {
			return nil, err
		}
		result[peer] = theirs
	}
	return result, nil
}

// Gather collects the data of all parties at the root. The root
// receives the result indexed by rank; the other parties receive nil.
func (c *Communicator) Gather(root int, tag string, data []byte) (
	[][]byte, error) {

	if c.rank != root {
		if err := c.SendAsync(root, tag, data); err != nil {
			return nil, err
		}
		return nil, nil
	}

	result := make([][]byte, c.Size())
	result[c.rank] = data
	for peer := 0; peer < c.Size(); peer++ {
		if peer == c.rank {
			continue
		}
		theirs, err := c.Recv(peer, tag)
		if err != nil {
			return nil, err
		}
		result[peer] = theirs
	}
	return result, nil
}

// AllReduce sums the element array across all parties. Every party
// receives the elementwise sum; the input is not modified.
func AllReduce[T ring.Elem](c *Communicator, tag string, x []T) ([]T, error) {
	sum := ring.Clone(x)

	parts, err := c.ExchangeAll(tag, ring.Encode(x))
	if err != nil {
		return nil, err
	}
	for peer, data := range parts {
		if peer == c.rank {
			continue
		}
		vals, err := ring.Decode[T](data)
		if err != nil {
			return nil, err
		}
		if len(vals) != len(x) {
			return nil, fmt.Errorf(
				"comm: all-reduce length mismatch from %v: %v != %v",
				peer, len(vals), len(x))
		}
		ring.AddTo(sum, vals)
	}
	return sum, nil
}
