//
// bit.go
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

// AuthRandBit generates size authenticated shared random bits with
// the square trick:
//
//	Figure 5: Protocol for obtaining authenticated shared bits,
//	New Primitives for Actively-Secure MPC over Rings
//	 - https://eprint.iacr.org/2019/599.pdf
//
// The parties square a shared odd value y, open the square, and
// scale y by half of the public inverse root. The low bit of the
// opened square must be 1; anything else means tampering.
func (g *Generator[T]) AuthRandBit(size int) (Auth[T], error) {
	k, s := g.params.K, g.params.S
	g.comm.Debugf("AuthRandBit: size=%v\n", size)

	u := prg.Elements[T](g.priv, size)
	ring.MaskTo(u, k+2)
	uMac, err := g.authenticate(u)
	if err != nil {
		return Auth[T]{}, fmt.Errorf("beaver: AuthRandBit: %w", err)
	}

	// y = 2u + 1 where the constant term lives at rank 0; the MAC
	// of a public constant is the constant times every key share.
	y := ring.MulScalar(u, 2)
	yMac := ring.MulScalar(uMac, 2)
	onesMac := make([]T, size)
	for i := range onesMac {
		onesMac[i] = g.spdzKey
	}
	if g.comm.Rank() == 0 {
		for i := range y {
			y[i]++
		}
	}
	ring.AddTo(yMac, onesMac)

	triple, err := g.AuthMul(size)
	if err != nil {
		return Auth[T]{}, fmt.Errorf("beaver: AuthRandBit: %w", err)
	}

	// Square y with the triple.
	e := ring.Sub(y, triple.A.Val)
	eMac := ring.Sub(yMac, triple.A.Mac)
	f := ring.Sub(y, triple.B.Val)
	fMac := ring.Sub(yMac, triple.B.Mac)

	pe, peMac, err := g.BatchOpen(e, eMac, k+2, s)
	if err != nil {
		return Auth[T]{}, fmt.Errorf("beaver: AuthRandBit: %w", err)
	}
	pf, pfMac, err := g.BatchOpen(f, fMac, k+2, s)
	if err != nil {
		return Auth[T]{}, fmt.Errorf("beaver: AuthRandBit: %w", err)
	}
	if err := g.BatchMacCheck(pe, peMac, k, s); err != nil {
		return Auth[T]{}, fmt.Errorf("beaver: AuthRandBit: %w", err)
	}
	if err := g.BatchMacCheck(pf, pfMac, k, s); err != nil {
		return Auth[T]{}, fmt.Errorf("beaver: AuthRandBit: %w", err)
	}

	ring.MaskTo(pe, k+2)
	ring.MaskTo(pf, k+2)
	pef := ring.Mul(pe, pf)

	z := ring.Add(ring.Mul(pe, triple.B.Val), ring.Mul(pf, triple.A.Val))
	ring.AddTo(z, triple.C.Val)
	if g.comm.Rank() == 0 {
		ring.AddTo(z, pef)
	}
	zMac := ring.Add(ring.Mul(pe, triple.B.Mac), ring.Mul(pf, triple.A.Mac))
	ring.AddTo(zMac, triple.C.Mac)
	ring.AddTo(zMac, ring.MulScalar(pef, g.spdzKey))

	square, zeroMac, err := g.BatchOpen(z, zMac, k+2, s)
	if err != nil {
		return Auth[T]{}, fmt.Errorf("beaver: AuthRandBit: %w", err)
	}
	if err := g.BatchMacCheck(square, zeroMac, k, s); err != nil {
		return Auth[T]{}, fmt.Errorf("beaver: AuthRandBit: %w", err)
	}
	ring.MaskTo(square, k+2)
	for _, sq := range square {
		if sq&1 != 1 {
			return Auth[T]{}, fmt.Errorf(
				"beaver: AuthRandBit: opened square is even: %w",
				ErrMacCheck)
		}
	}

	// d = (root^-1 / 2) * y + u + 1 is the shared bit.
	root := ring.SqrtVec(square, k+2)
	rootInvDiv2 := ring.RShift(ring.InvertVec(root, k+2), 1)

	d := ring.Mul(rootInvDiv2, y)
	dMac := ring.Mul(rootInvDiv2, yMac)
	ring.AddTo(d, u)
	ring.AddTo(dMac, uMac)
	if g.comm.Rank() == 0 {
		for i := range d {
			d[i]++
		}
	}
	ring.AddTo(dMac, onesMac)

	g.sample("AuthRandBit")
	return Auth[T]{Val: d, Mac: dMac}, nil
}

// AuthTrunc generates size authenticated truncation pairs (r, r')
// where r' is r shifted right by bits. The pair is composed from k
// authenticated random bits per element; the treatment of the
// vacated high bits follows the session's truncation policy.
func (g *Generator[T]) AuthTrunc(size int, bits uint) (
	r, tr Auth[T], err error) {

	if bits == 0 || bits >= g.params.K {
		panic("beaver: AuthTrunc: invalid bit count")
	}
	nbits := int(g.params.K)
	g.comm.Debugf("AuthTrunc: size=%v bits=%v\n", size, bits)

	b, err := g.AuthRandBit(nbits * size)
	if err != nil {
		return Auth[T]{}, Auth[T]{},
			fmt.Errorf("beaver: AuthTrunc: %w", err)
	}

	r = Auth[T]{Val: ring.Zeros[T](size), Mac: ring.Zeros[T](size)}
	tr = Auth[T]{Val: ring.Zeros[T](size), Mac: ring.Zeros[T](size)}

	ring.ParallelFor(size, ring.DefaultGrain, func(beg, end int) {
		for idx := beg; idx < end; idx++ {
			for bit := 0; bit < nbits; bit++ {
				flat := idx*nbits + bit
				r.Val[idx] += b.Val[flat] << uint(bit)
				r.Mac[idx] += b.Mac[flat] << uint(bit)
			}
			for bit := 0; bit+int(bits) < nbits; bit++ {
				flat := idx*nbits + int(bits) + bit
				tr.Val[idx] += b.Val[flat] << uint(bit)
				tr.Mac[idx] += b.Mac[flat] << uint(bit)
			}
			if g.params.Trunc == TruncSignExtend {
				top := idx*nbits + nbits - 1
				for bit := nbits - int(bits); bit < nbits; bit++ {
					tr.Val[idx] += b.Val[top] << uint(bit)
					tr.Mac[idx] += b.Mac[top] << uint(bit)
				}
			}
		}
	})

	g.sample("AuthTrunc")
	return r, tr, nil
}
