//
// mul128_generic.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

// mul128Generic computes the 128x128-bit carryless multiplication
// from four 64-bit schoolbook partial products. The cross products
// land on the 64-bit word boundary so they combine with plain xors.
func mul128Generic(a, b Label) (lo, hi Label) {
	llLo, llHi := clmul64(a.D0, b.D0)
	lhLo, lhHi := clmul64(a.D0, b.D1)
	hlLo, hlHi := clmul64(a.D1, b.D0)
	hhLo, hhHi := clmul64(a.D1, b.D1)

	crossLo := lhLo ^ hlLo
	crossHi := lhHi ^ hlHi

	lo.D0 = llLo
	lo.D1 = llHi ^ crossLo
	hi.D0 = crossHi ^ hhLo
	hi.D1 = hhHi

	return
}
