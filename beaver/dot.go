//
// dot.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package beaver

import (
	"fmt"

	"github.com/markkurossi/spdz2k/prg"
	"github.com/markkurossi/spdz2k/ring"
)

// dot computes an unauthenticated matrix triple c = a*b where a is
// an (m, kdim) and b a (kdim, n) matrix share. The cross products
// between the party pairs come from matrix OLEs.
func (g *Generator[T]) dot(m, n, kdim int) (a, b, c []T, err error) {
	k := g.params.K

	a = prg.Elements[T](g.priv, m*kdim)
	ring.MaskTo(a, k)
	b = prg.Elements[T](g.priv, kdim*n)
	ring.MaskTo(b, k)
	c = ring.MatMul(a, b, m, n, kdim)

	worldSize := g.comm.Size()
	rank := g.comm.Rank()
	for i := 0; i < worldSize; i++ {
		for j := 0; j < worldSize; j++ {
			if i == j {
				continue
			}
			if i == rank {
				w, err := g.voleRecvDot(j, b, m, n, kdim)
				if err != nil {
					return nil, nil, nil, err
				}
				ring.AddTo(c, w)
			}
			if j == rank {
				v, err := g.voleSendDot(i, a, m, n, kdim)
				if err != nil {
					return nil, nil, nil, err
				}
				ring.SubTo(c, v)
			}
		}
	}
	return a, b, c, nil
}

// AuthDot generates an authenticated matrix multiplication triple:
// A is an (m, kdim), B a (kdim, n), and C = A*B an (m, n) flat
// row-major matrix. The triple is generated with 2m-row redundancy
// and the extra rows are sacrificed under a public random (m, m)
// combination matrix.
func (g *Generator[T]) AuthDot(m, n, kdim int) (*Triple[T], error) {
	k, s := g.params.K, g.params.S
	g.comm.Debugf("AuthDot: m=%v n=%v k=%v\n", m, n, kdim)

	aExt, b, cExt, err := g.dot(2*m, n, kdim)
	if err != nil {
		return nil, fmt.Errorf("beaver: AuthDot: %w", err)
	}

	aExtMac, err := g.authenticate(aExt)
	if err != nil {
		return nil, fmt.Errorf("beaver: AuthDot: %w", err)
	}
	bMac, err := g.authenticate(b)
	if err != nil {
		return nil, fmt.Errorf("beaver: AuthDot: %w", err)
	}
	cExtMac, err := g.authenticate(cExt)
	if err != nil {
		return nil, fmt.Errorf("beaver: AuthDot: %w", err)
	}

	aVal := aExt[:m*kdim]
	aMac := aExtMac[:m*kdim]
	cVal := cExt[:m*n]
	cMac := cExtMac[:m*n]

	a2 := aExt[m*kdim:]
	a2Mac := aExtMac[m*kdim:]
	c2 := cExt[m*n:]
	c2Mac := cExtMac[m*n:]

	// Sacrifice: rho = t*a - a2 is opened, then
	// delta = t*c - c2 - rho*b must open to zero mod 2^k.
	t := prg.Elements[T](g.pub, m*m)

	rou := ring.Sub(ring.MatMul(t, aVal, m, kdim, m), a2)
	rouMac := ring.Sub(ring.MatMul(t, aMac, m, kdim, m), a2Mac)

	pubRou, checkRouMac, err := g.BatchOpen(rou, rouMac, k, s)
	if err != nil {
		return nil, fmt.Errorf("beaver: AuthDot: %w", err)
	}
	if err := g.BatchMacCheck(pubRou, checkRouMac, k, s); err != nil {
		return nil, fmt.Errorf("beaver: AuthDot: %w", err)
	}

	delta := ring.Sub(ring.Sub(ring.MatMul(t, cVal, m, n, m), c2),
		ring.MatMul(pubRou, b, m, n, kdim))
	deltaMac := ring.Sub(ring.Sub(ring.MatMul(t, cMac, m, n, m), c2Mac),
		ring.MatMul(pubRou, bMac, m, n, kdim))

	pubDelta, checkDeltaMac, err := g.BatchOpen(delta, deltaMac, k, s)
	if err != nil {
		return nil, fmt.Errorf("beaver: AuthDot: %w", err)
	}
	if err := g.BatchMacCheck(pubDelta, checkDeltaMac, k, s); err != nil {
		return nil, fmt.Errorf("beaver: AuthDot: %w", err)
	}
	if !ring.AllEqual(ring.Mask(pubDelta, k), ring.Zeros[T](m*n)) {
		return nil, fmt.Errorf("beaver: AuthDot: %w", ErrSacrifice)
	}

	g.sample("AuthDot")
	return &Triple[T]{
		A: Auth[T]{Val: ring.Clone(aVal), Mac: ring.Clone(aMac)},
		B: Auth[T]{Val: b, Mac: bMac},
		C: Auth[T]{Val: ring.Clone(cVal), Mac: ring.Clone(cMac)},
	}, nil
}
