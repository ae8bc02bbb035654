//
// auth.go
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

// Authenticate computes the MAC shares of the additively shared x
// under the session parameters. The argument is not modified.
func (g *Generator[T]) Authenticate(x []T) ([]T, error) {
	return g.authenticate(x)
}

// authenticate runs the pairwise VOLE authentication protocol:
//
//	Fig. 11: Protocol for authenticating secret-shared values,
//	SPDZ2k: Efficient MPC mod 2k for Dishonest Majority
//	 - https://eprint.iacr.org/2018/482.pdf
//
// A random mask element is appended to the input so that the random
// linear consistency check does not leak the linear combination of
// the real values.
func (g *Generator[T]) authenticate(x []T) ([]T, error) {
	t := len(x)
	xHat := make([]T, t+1)
	copy(xHat, x)
	xHat[t] = prg.Elements[T](g.priv, 1)[0]

	size := g.comm.Size()
	rank := g.comm.Rank()

	alpha := make([]T, t+1)
	for i := range alpha {
		alpha[i] = g.spdzKey
	}

	// Every ordered pair (i, j) runs one VOLE: i inputs its key
	// share, j inputs its values.
	ab := ring.Zeros[T](t + 1)
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			if i == j {
				continue
			}
			if i == rank {
				a, err := g.voleRecv(j, alpha)
				if err != nil {
					return nil, fmt.Errorf("beaver: authenticate: %w", err)
				}
				ring.AddTo(ab, a)
			}
			if j == rank {
				b, err := g.voleSend(i, xHat)
				if err != nil {
					return nil, fmt.Errorf("beaver: authenticate: %w", err)
				}
				ring.SubTo(ab, b)
			}
		}
	}

	m := ring.Add(ring.MulScalar(xHat, g.spdzKey), ab)

	// Consistency check: random linear combination with public
	// coefficients, coefficient 1 for the mask element.
	rv := prg.Elements[T](g.pub, t+1)
	rv[t] = 1

	var xAngle, mAngle T
	for i := 0; i <= t; i++ {
		xAngle += rv[i] * xHat[i]
		mAngle += rv[i] * m[i]
	}

	xSum, err := comm.AllReduce(g.comm, "auth/x", []T{xAngle})
	if err != nil {
		return nil, fmt.Errorf("beaver: authenticate: %w", err)
	}

	z := mAngle - xSum[0]*g.spdzKey
	openings, err := commit.Open(g.comm, g.tag("auth/z"),
		ring.Encode([]T{z}))
	if err != nil {
		return nil, fmt.Errorf("beaver: authenticate: %w", err)
	}
	var plain T
	for _, data := range openings {
		zi, err := ring.Decode[T](data)
		if err != nil || len(zi) != 1 {
			return nil, fmt.Errorf("beaver: authenticate: %w", ErrMacCheck)
		}
		plain += zi[0]
	}
	if plain != 0 {
		return nil, fmt.Errorf("beaver: authenticate: %w", ErrMacCheck)
	}

	return m[:t:t], nil
}

// authRandom samples size random shared elements and authenticates
// them.
func (g *Generator[T]) authRandom(size int) (Auth[T], error) {
	val := prg.Elements[T](g.priv, size)
	mac, err := g.authenticate(val)
	if err != nil {
		return Auth[T]{}, err
	}
	return Auth[T]{Val: val, Mac: mac}, nil
}
