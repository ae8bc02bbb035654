//
// mul.go
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

// AuthMul generates size authenticated multiplication triples:
//
//	6 PreProcessing: Creating Multiplication Triples,
//	SPDZ2k: Efficient MPC mod 2k for Dishonest Majority
//	 - https://eprint.iacr.org/2018/482.pdf
//
// Every triple is combined from tao = 4s+2k bit-sharing
// sub-instances under two public random combinations; the second
// combination is sacrificed to check the first.
func (g *Generator[T]) AuthMul(size int) (*Triple[T], error) {
	k, s := g.params.K, g.params.S
	tao := int(4*s + 2*k)
	expand := tao * size
	g.comm.Debugf("AuthMul: size=%v tao=%v\n", size, tao)

	a := prg.Bits[T](g.priv, expand)
	b := prg.Elements[T](g.priv, size)
	bArr := make([]T, expand)
	for i := range bArr {
		bArr[i] = b[i/tao]
	}

	// Cross terms: every ordered pair (i, j) runs expand random OTs
	// where i selects with its bit shares and j corrects with its
	// b shares.
	worldSize := g.comm.Size()
	rank := g.comm.Rank()
	aBits := ring.LowBits(a)

	ci := ring.Zeros[T](expand)
	cj := ring.Zeros[T](expand)
	for i := 0; i < worldSize; i++ {
		for j := 0; j < worldSize; j++ {
			if i == j {
				continue
			}
			if i == rank {
				ts, err := g.rotRecv(j, aBits)
				if err != nil {
					return nil, fmt.Errorf("beaver: AuthMul: %w", err)
				}
				data, err := g.comm.Recv(j, "mul/d")
				if err != nil {
					return nil, fmt.Errorf("beaver: AuthMul: %w", err)
				}
				d, err := ring.Decode[T](data)
				if err != nil || len(d) != expand {
					return nil, fmt.Errorf(
						"beaver: AuthMul: invalid correction")
				}
				for idx := 0; idx < expand; idx++ {
					ci[idx] += ts[idx] + a[idx]*d[idx]
				}
			}
			if j == rank {
				q0, q1, err := g.rotSend(i, expand)
				if err != nil {
					return nil, fmt.Errorf("beaver: AuthMul: %w", err)
				}
				d := make([]T, expand)
				for idx := 0; idx < expand; idx++ {
					d[idx] = q0[idx] - q1[idx] + bArr[idx]
					cj[idx] -= q0[idx]
				}
				err = g.comm.SendAsync(i, "mul/d", ring.Encode(d))
				if err != nil {
					return nil, fmt.Errorf("beaver: AuthMul: %w", err)
				}
			}
		}
	}

	c := ring.Mul(a, bArr)
	ring.AddTo(c, ci)
	ring.AddTo(c, cj)

	// Combine the sub-instances under two public random coefficient
	// vectors.
	r := prg.Elements[T](g.pub, expand)
	rHat := prg.Elements[T](g.pub, expand)

	cra := ring.Zeros[T](size)
	craHat := ring.Zeros[T](size)
	crc := ring.Zeros[T](size)
	crcHat := ring.Zeros[T](size)
	for i := 0; i < expand; i++ {
		cra[i/tao] += r[i] * a[i]
		craHat[i/tao] += rHat[i] * a[i]
		crc[i/tao] += r[i] * c[i]
		crcHat[i/tao] += rHat[i] * c[i]
	}

	aMac, err := g.authenticate(cra)
	if err != nil {
		return nil, fmt.Errorf("beaver: AuthMul: %w", err)
	}
	bMac, err := g.authenticate(b)
	if err != nil {
		return nil, fmt.Errorf("beaver: AuthMul: %w", err)
	}
	cMac, err := g.authenticate(crc)
	if err != nil {
		return nil, fmt.Errorf("beaver: AuthMul: %w", err)
	}
	aHatMac, err := g.authenticate(craHat)
	if err != nil {
		return nil, fmt.Errorf("beaver: AuthMul: %w", err)
	}
	cHatMac, err := g.authenticate(crcHat)
	if err != nil {
		return nil, fmt.Errorf("beaver: AuthMul: %w", err)
	}

	// Sacrifice the hat instance: rho = t*a - a_hat is opened, then
	// delta = t*c - c_hat - b*rho must open to zero mod 2^k.
	t := prg.Elements[T](g.pub, size)

	rou := ring.Sub(ring.Mul(t, cra), craHat)
	rouMac := ring.Sub(ring.Mul(t, aMac), aHatMac)

	pubRou, checkRouMac, err := g.BatchOpen(rou, rouMac, k, s)
	if err != nil {
		return nil, fmt.Errorf("beaver: AuthMul: %w", err)
	}
	if err := g.BatchMacCheck(pubRou, checkRouMac, k, s); err != nil {
		return nil, fmt.Errorf("beaver: AuthMul: %w", err)
	}

	delta := ring.Sub(ring.Sub(ring.Mul(t, crc), crcHat),
		ring.Mul(b, pubRou))
	deltaMac := ring.Sub(ring.Sub(ring.Mul(t, cMac), cHatMac),
		ring.Mul(bMac, pubRou))

	pubDelta, checkDeltaMac, err := g.BatchOpen(delta, deltaMac, k, s)
	if err != nil {
		return nil, fmt.Errorf("beaver: AuthMul: %w", err)
	}
	if err := g.BatchMacCheck(pubDelta, checkDeltaMac, k, s); err != nil {
		return nil, fmt.Errorf("beaver: AuthMul: %w", err)
	}
	if !ring.AllEqual(ring.Mask(pubDelta, k), ring.Zeros[T](size)) {
		return nil, fmt.Errorf("beaver: AuthMul: %w", ErrSacrifice)
	}

	g.sample("AuthMul")
	return &Triple[T]{
		A: Auth[T]{Val: cra, Mac: aMac},
		B: Auth[T]{Val: b, Mac: bMac},
		C: Auth[T]{Val: crc, Mac: cMac},
	}, nil
}
