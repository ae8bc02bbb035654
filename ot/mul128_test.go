//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"math/rand"
	"testing"
)

func TestMul128Basic(t *testing.T) {
	zero := Label{}
	one := Label{D0: 1}

	// 0 * x = 0
	lo, hi := mul128(zero, Label{D0: 0xdeadbeef, D1: 0x12345678})
	if !lo.Equal(zero) || !hi.Equal(zero) {
		t.Fatal("0*x != 0")
	}

	// 1 * x = x
	x := Label{D0: 0xabcdef, D1: 0x1234}
	lo, hi = mul128(one, x)
	if !lo.Equal(x) || !hi.Equal(zero) {
		t.Fatal("1*x != x")
	}

	// x * x = x^2
	a := Label{D0: 2} // polynomial x
	lo, hi = mul128(a, a)
	if lo.D0 != 4 || lo.D1 != 0 || !hi.Equal(zero) {
		t.Fatal("x*x != x^2")
	}
}

func TestMul128Cross(t *testing.T) {
	// x^63 * x^63 = x^126
	a := Label{D0: 1 << 63}

	lo, hi := mul128(a, a)

	expLo := Label{D1: 1 << 62} // 126 = 64 + 62
	expHi := Label{}

	if !lo.Equal(expLo) || !hi.Equal(expHi) {
		t.Fatalf("got lo=%v hi=%v, expected lo=%v hi=%v", lo, hi, expLo, expHi)
	}

	// x^127 * x^127 = x^254
	b := Label{D1: 1 << 63}
	lo, hi = mul128(b, b)
	expLo = Label{}
	expHi = Label{D1: 1 << 62} // 254 = 128 + 64 + 62
	if !lo.Equal(expLo) || !hi.Equal(expHi) {
		t.Fatalf("got lo=%v hi=%v, expected lo=%v hi=%v", lo, hi, expLo, expHi)
	}
}

func TestMul128AgainstRef(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 1000; i++ {
		a := Label{D0: rng.Uint64(), D1: rng.Uint64()}
		b := Label{D0: rng.Uint64(), D1: rng.Uint64()}

		lo, hi := mul128(a, b)
		refLo, refHi := mul128Ref(a, b)

		if !lo.Equal(refLo) || !hi.Equal(refHi) {
			t.Fatalf("mul128(%v, %v): got %v,%v, expected %v,%v",
				a, b, lo, hi, refLo, refHi)
		}
	}
}

func TestInnerProduct(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	const n = 33
	a := make([]Label, n)
	b := make([]Label, n)
	for i := 0; i < n; i++ {
		a[i] = Label{D0: rng.Uint64(), D1: rng.Uint64()}
		b[i] = Label{D0: rng.Uint64(), D1: rng.Uint64()}
	}

	lo, hi := innerProduct(a, b)

	var expLo, expHi Label
	for i := 0; i < n; i++ {
		l, h := mul128Ref(a[i], b[i])
		expLo.Xor(l)
		expHi.Xor(h)
	}
	if !lo.Equal(expLo) || !hi.Equal(expHi) {
		t.Fatalf("inner product mismatch: got %v,%v, expected %v,%v",
			lo, hi, expLo, expHi)
	}
}

func BenchmarkMul128(b *testing.B) {
	x := Label{D0: 0x0123456789abcdef, D1: 0xfedcba9876543210}
	y := Label{D0: 0xdeadbeefdeadbeef, D1: 0x0f0f0f0f0f0f0f0f}

	for i := 0; i < b.N; i++ {
		x, y = mul128(x, y)
	}
}
