//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package tinyot

import (
	"fmt"
)

// Triple holds one party's shares of authenticated AND triples
// c = a & b.
type Triple struct {
	A *AuthBits
	B *AuthBits
	C *AuthBits
}

// TinyMul generates n authenticated AND triples. The cross terms
// a0*b1 and a1*b0 are shared with the least-significant bits of
// hashed random OT pairs; active deviations in the cross terms
// surface in the callers' check-bit MAC checks.
func (p *Party) TinyMul(n int) (*Triple, error) {
	a := p.priv.Bools(n)
	b := p.priv.Bools(n)

	auth := func(bits []bool) (*AuthBits, error) {
		return p.AuthBits(bits)
	}

	ab, err := auth(a)
	if err != nil {
		return nil, fmt.Errorf("tinyot: TinyMul: %w", err)
	}
	bb, err := auth(b)
	if err != nil {
		return nil, fmt.Errorf("tinyot: TinyMul: %w", err)
	}

	var u, v []bool
	if p.lower {
		u, err = p.crossSend(b)
		if err != nil {
			return nil, fmt.Errorf("tinyot: TinyMul: %w", err)
		}
		v, err = p.crossRecv(a)
		if err != nil {
			return nil, fmt.Errorf("tinyot: TinyMul: %w", err)
		}
	} else {
		v, err = p.crossRecv(a)
		if err != nil {
			return nil, fmt.Errorf("tinyot: TinyMul: %w", err)
		}
		u, err = p.crossSend(b)
		if err != nil {
			return nil, fmt.Errorf("tinyot: TinyMul: %w", err)
		}
	}

	c := make([]bool, n)
	for i := 0; i < n; i++ {
		c[i] = (a[i] && b[i]) != u[i] != v[i]
	}
	cb, err := auth(c)
	if err != nil {
		return nil, fmt.Errorf("tinyot: TinyMul: %w", err)
	}

	return &Triple{
		A: ab,
		B: bb,
		C: cb,
	}, nil
}

// crossSend runs the ROT sender side of a cross-term share: this
// party holds the bits y, the peer selects with its bits x, and the
// parties end with XOR shares of x*y.
func (p *Party) crossSend(y []bool) ([]bool, error) {
	n := len(y)
	m0, m1, err := p.sender.RandomPairs(n)
	if err != nil {
		return nil, err
	}

	u := make([]bool, n)
	d := make([]bool, n)
	for i := 0; i < n; i++ {
		u[i] = m0[i].Lsb() == 1
		d[i] = (m0[i].Lsb()^m1[i].Lsb() == 1) != y[i]
	}
	if err := p.io.SendData(packBools(d)); err != nil {
		return nil, err
	}
	if err := p.io.Flush(); err != nil {
		return nil, err
	}
	return u, nil
}

// crossRecv runs the ROT receiver side of a cross-term share with
// this party's selection bits x.
func (p *Party) crossRecv(x []bool) ([]bool, error) {
	n := len(x)
	sel, err := p.receiver.RandomSelect(x)
	if err != nil {
		return nil, err
	}
	data, err := p.io.ReceiveData()
	if err != nil {
		return nil, err
	}
	d, err := unpackBools(data, n)
	if err != nil {
		return nil, err
	}

	v := make([]bool, n)
	for i := 0; i < n; i++ {
		v[i] = sel[i].Lsb() == 1
		if x[i] {
			v[i] = v[i] != d[i]
		}
	}
	return v, nil
}

func packBools(b []bool) []byte {
	buf := make([]byte, (len(b)+7)/8)
	for i, f := range b {
		if f {
			buf[i/8] |= 1 << (i % 8)
		}
	}
	return buf
}

func unpackBools(buf []byte, n int) ([]bool, error) {
	if len(buf) != (n+7)/8 {
		return nil, fmt.Errorf("tinyot: invalid bit array: %v bytes for %v bits",
			len(buf), n)
	}
	b := make([]bool, n)
	for i := range b {
		b[i] = (buf[i/8]>>(i%8))&1 == 1
	}
	return b, nil
}
