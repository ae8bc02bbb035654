//
// ring.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ring

// Zeros returns a zero array of n elements.
func Zeros[T Elem](n int) []T {
	return make([]T, n)
}

// Ones returns an array of n one-elements.
func Ones[T Elem](n int) []T {
	r := make([]T, n)
	for i := range r {
		r[i] = 1
	}
	return r
}

// Clone returns a copy of x.
func Clone[T Elem](x []T) []T {
	r := make([]T, len(x))
	copy(r, x)
	return r
}

func assertLen[T Elem](a, b []T) {
	if len(a) != len(b) {
		panic("ring: operand length mismatch")
	}
}

// Add returns a + b elementwise.
func Add[T Elem](a, b []T) []T {
	assertLen(a, b)
	r := make([]T, len(a))
	for i := range a {
		r[i] = a[i] + b[i]
	}
	return r
}

// AddTo adds b into dst elementwise.
func AddTo[T Elem](dst, b []T) {
	assertLen(dst, b)
	for i := range dst {
		dst[i] += b[i]
	}
}

// Sub returns a - b elementwise.
func Sub[T Elem](a, b []T) []T {
	assertLen(a, b)
	r := make([]T, len(a))
	for i := range a {
		r[i] = a[i] - b[i]
	}
	return r
}

// SubTo subtracts b from dst elementwise.
func SubTo[T Elem](dst, b []T) {
	assertLen(dst, b)
	for i := range dst {
		dst[i] -= b[i]
	}
}

// Mul returns a * b elementwise.
func Mul[T Elem](a, b []T) []T {
	assertLen(a, b)
	r := make([]T, len(a))
	for i := range a {
		r[i] = a[i] * b[i]
	}
	return r
}

// MulScalar returns a * c elementwise.
func MulScalar[T Elem](a []T, c T) []T {
	r := make([]T, len(a))
	for i := range a {
		r[i] = a[i] * c
	}
	return r
}

// Neg returns -a elementwise.
func Neg[T Elem](a []T) []T {
	r := make([]T, len(a))
	for i := range a {
		r[i] = -a[i]
	}
	return r
}

// LShift returns a << bits elementwise.
func LShift[T Elem](a []T, bits uint) []T {
	r := make([]T, len(a))
	for i := range a {
		r[i] = a[i] << bits
	}
	return r
}

// RShift returns a >> bits elementwise.
func RShift[T Elem](a []T, bits uint) []T {
	r := make([]T, len(a))
	for i := range a {
		r[i] = a[i] >> bits
	}
	return r
}

// MaskBits returns the mask covering the low bits of an element. A
// bits value of the full element width (or more) covers the whole
// element.
func MaskBits[T Elem](bits uint) T {
	if bits >= Bits[T]() {
		var zero T
		return zero - 1
	}
	return (T(1) << bits) - 1
}

// Mask returns a masked to its low bits.
func Mask[T Elem](a []T, bits uint) []T {
	m := MaskBits[T](bits)
	r := make([]T, len(a))
	for i := range a {
		r[i] = a[i] & m
	}
	return r
}

// MaskTo masks dst to its low bits in place.
func MaskTo[T Elem](dst []T, bits uint) {
	m := MaskBits[T](bits)
	for i := range dst {
		dst[i] &= m
	}
}

// MatMul computes the flat row-major matrix product of the (m, k)
// matrix a and the (k, n) matrix b, returning an (m, n) matrix.
func MatMul[T Elem](a, b []T, m, n, k int) []T {
	if len(a) != m*k || len(b) != k*n {
		panic("ring: matrix dimension mismatch")
	}
	r := make([]T, m*n)
	ParallelFor(m, 1, func(beg, end int) {
		for i := beg; i < end; i++ {
			for kk := 0; kk < k; kk++ {
				av := a[i*k+kk]
				if av == 0 {
					continue
				}
				row := b[kk*n:]
				out := r[i*n:]
				for j := 0; j < n; j++ {
					out[j] += av * row[j]
				}
			}
		}
	})
	return r
}

// AllEqual tests if the arrays are elementwise equal.
func AllEqual[T Elem](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Equal1Bit compares a and b elementwise and returns the results as
// 0/1 elements.
func Equal1Bit[T Elem](a, b []T) []T {
	assertLen(a, b)
	r := make([]T, len(a))
	for i := range a {
		if a[i] == b[i] {
			r[i] = 1
		}
	}
	return r
}

// LowBits returns the low bit of every element as a boolean array.
func LowBits[T Elem](a []T) []bool {
	r := make([]bool, len(a))
	for i := range a {
		r[i] = a[i]&1 == 1
	}
	return r
}
