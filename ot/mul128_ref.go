//
// mul128_ref.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

// mul128Ref is the bit-serial reference for the 128x128-bit carryless
// multiplication. The 256-bit product is accumulated as four 64-bit
// words; tests compare mul128 against it.
func mul128Ref(a, b Label) (lo, hi Label) {
	var acc [4]uint64

	addShifted := func(word uint64, pos int) {
		idx := pos / 64
		sh := uint(pos % 64)
		acc[idx] ^= word << sh
		if sh != 0 && idx+1 < len(acc) {
			acc[idx+1] ^= word >> (64 - sh)
		}
	}

	for i := 0; i < 128; i++ {
		var bit uint64
		if i < 64 {
			bit = (a.D0 >> i) & 1
		} else {
			bit = (a.D1 >> (i - 64)) & 1
		}
		if bit == 0 {
			continue
		}
		addShifted(b.D0, i)
		addShifted(b.D1, i+64)
	}

	lo = Label{D0: acc[0], D1: acc[1]}
	hi = Label{D0: acc[2], D1: acc[3]}
	return
}
