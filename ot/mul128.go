//
// mul128.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

// mul128 computes the 128x128-bit carryless multiplication used by
// the extension consistency checks.
func mul128(a, b Label) (lo, hi Label) {
	return mul128Generic(a, b)
}
