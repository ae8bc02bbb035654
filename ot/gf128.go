//
// gf128.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"math/bits"
)

// innerProduct computes the GF(2) polynomial inner product of the
// label vectors a and b without modular reduction, returning the
// 256-bit sum as (lo, hi) blocks. The vectors must have the same
// length.
func innerProduct(a, b []Label) (lo, hi Label) {
	if len(a) != len(b) {
		panic("ot: inner product length mismatch")
	}
	for i := range a {
		l, h := mul128(a[i], b[i])
		lo.Xor(l)
		hi.Xor(h)
	}
	return
}

// clmul64 is the 64x64-bit carryless multiplication.
func clmul64(a, b uint64) (lo, hi uint64) {
	for b != 0 {
		i := uint(bits.TrailingZeros64(b))
		b &= b - 1

		lo ^= a << i
		if i != 0 {
			hi ^= a >> (64 - i)
		}
	}
	return
}
