//
// sqrt2k.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//
// Square roots and inverses in Z_2^k:
//
// SPDZ2k: Efficient MPC mod 2^k for Dishonest Majority
//  - https://eprint.iacr.org/2018/482.pdf
//
// The root-lifting algorithm follows the finite-ring square root in
// SageMath (sage/rings/finite_rings/integer_mod.pyx); the 2-adic
// inverse follows MP-SPDZ (Math/Z2k.hpp).

package ring

// Sqrt2k returns the smallest of the four canonical square roots of
// residue mod 2^bits. The residue must satisfy residue = 1 (mod 8);
// any other input is a caller contract violation and panics.
func Sqrt2k[T Elem](residue T, bits uint) T {
	n := uint64(residue)
	if n&7 != 1 {
		panic("ring: Sqrt2k: residue != 1 (mod 8)")
	}

	// Fix the low five bits by brute force over the odd candidates,
	// then lift the root one bit at a time: at step i the residual t
	// carries bit i+1 of n - x^2, and a set bit flips bit i of x.
	x := uint64(1)
	for x < 8 && (n&31) != (x*x)&31 {
		x += 2
	}
	t := (n - x*x) >> 5
	for i := uint(4); i < bits; i++ {
		if t&1 == 1 {
			x |= uint64(1) << i
			t -= x - (uint64(1) << (i - 1))
		}
		t >>= 1
	}

	half := uint64(1) << (bits - 1)
	mask := half + (half - 1)

	min := x & mask
	for _, c := range []uint64{(x + half) & mask, (-x) & mask,
		(-x + half) & mask} {
		if c < min {
			min = c
		}
	}
	return T(min)
}

// Invert2k returns the multiplicative inverse of value mod 2^bits.
// The value must be odd; an even value is a caller contract violation
// and panics.
func Invert2k[T Elem](value T, bits uint) T {
	v := uint64(value)
	if v&1 != 1 {
		panic("ring: Invert2k: even value")
	}

	// Hensel lifting of the 2-adic inverse: bit i of ret is forced so
	// that value*ret = 1 (mod 2^(i+1)).
	ret := uint64(1)
	for i := uint(1); i < bits; i++ {
		if (v*ret>>i)&1 == 1 {
			ret += uint64(1) << i
		}
	}
	return T(ret & MaskBits[uint64](bits))
}

// SqrtVec computes Sqrt2k for every element of x.
func SqrtVec[T Elem](x []T, bits uint) []T {
	r := make([]T, len(x))
	ParallelFor(len(x), DefaultGrain, func(beg, end int) {
		for i := beg; i < end; i++ {
			r[i] = Sqrt2k(x[i], bits)
		}
	})
	return r
}

// InvertVec computes Invert2k for every element of x.
func InvertVec[T Elem](x []T, bits uint) []T {
	r := make([]T, len(x))
	ParallelFor(len(x), DefaultGrain, func(beg, end int) {
		for i := beg; i < end; i++ {
			r[i] = Invert2k(x[i], bits)
		}
	})
	return r
}
