//
// vole.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package beaver

import (
	"fmt"

	"github.com/markkurossi/spdz2k/ot"
	"github.com/markkurossi/spdz2k/ring"
)

// labelElem truncates an OT label into a ring element.
func labelElem[T ring.Elem](l ot.Label) T {
	return T(l.D1)
}

// voleSend runs the sender side of a vector OLE mod 2^w with the
// peer: the sender inputs x and learns v, the receiver inputs alpha
// and learns w so that w[i]-v[i] = alpha[i]*x[i]. The receiver
// scalar is bit decomposed over w random OT pairs per element, with
// one ring correction per bit:
//
//	Appendix C: Implementing Vector-OLE mod 2^l,
//	SPDZ2k: Efficient MPC mod 2k for Dishonest Majority
//	 - https://eprint.iacr.org/2018/482.pdf
func (g *Generator[T]) voleSend(peer int, x []T) ([]T, error) {
	nbits := int(ring.Bits[T]())

	m0, m1, err := g.peers[peer].sender.RandomPairs(len(x) * nbits)
	if err != nil {
		return nil, err
	}

	d := make([]T, len(x)*nbits)
	v := make([]T, len(x))
	for i := range x {
		for j := 0; j < nbits; j++ {
			q0 := labelElem[T](m0[i*nbits+j])
			q1 := labelElem[T](m1[i*nbits+j])
			d[i*nbits+j] = q0 - q1 + x[i]
			v[i] += q0 << uint(j)
		}
	}
	err = g.comm.SendAsync(peer, "vole", ring.Encode(d))
	if err != nil {
		return nil, err
	}
	return v, nil
}

// voleRecv runs the receiver side of a vector OLE mod 2^w with the
// peer.
func (g *Generator[T]) voleRecv(peer int, alpha []T) ([]T, error) {
	nbits := int(ring.Bits[T]())

	b := make([]bool, len(alpha)*nbits)
	for i, a := range alpha {
		for j := 0; j < nbits; j++ {
			b[i*nbits+j] = (a>>uint(j))&1 == 1
		}
	}
	sel, err := g.peers[peer].receiver.RandomSelect(b)
	if err != nil {
		return nil, err
	}
	data, err := g.comm.Recv(peer, "vole")
	if err != nil {
		return nil, err
	}
	d, err := ring.Decode[T](data)
	if err != nil {
		return nil, err
	}
	if len(d) != len(b) {
		return nil, fmt.Errorf("vole: received %v corrections, expected %v",
			len(d), len(b))
	}

	w := make([]T, len(alpha))
	for i := range alpha {
		for j := 0; j < nbits; j++ {
			u := labelElem[T](sel[i*nbits+j])
			if b[i*nbits+j] {
				u += d[i*nbits+j]
			}
			w[i] += u << uint(j)
		}
	}
	return w, nil
}

// voleSendDot is the sender side of a matrix OLE: the sender inputs
// the (m, kdim) matrix x and learns v, the receiver inputs the
// (kdim, n) matrix alpha and learns w so that w-v = x*alpha. The
// product is built column by column from vector OLEs.
func (g *Generator[T]) voleSendDot(peer int, x []T, m, n, kdim int) (
	[]T, error) {

	if len(x) != m*kdim {
		panic("beaver: matrix dimension mismatch")
	}
	ret := ring.Zeros[T](m * n)
	for i := 0; i < n; i++ {
		t, err := g.voleSend(peer, x)
		if err != nil {
			return nil, err
		}
		for row := 0; row < m; row++ {
			for j := 0; j < kdim; j++ {
				ret[row*n+i] += t[row*kdim+j]
			}
		}
	}
	return ret, nil
}

// voleRecvDot is the receiver side of a matrix OLE.
func (g *Generator[T]) voleRecvDot(peer int, alpha []T, m, n, kdim int) (
	[]T, error) {

	if len(alpha) != kdim*n {
		panic("beaver: matrix dimension mismatch")
	}
	ret := ring.Zeros[T](m * n)
	ext := make([]T, m*kdim)
	for i := 0; i < n; i++ {
		for row := 0; row < m; row++ {
			for j := 0; j < kdim; j++ {
				ext[row*kdim+j] = alpha[j*n+i]
			}
		}
		t, err := g.voleRecv(peer, ext)
		if err != nil {
			return nil, err
		}
		for row := 0; row < m; row++ {
			for j := 0; j < kdim; j++ {
				ret[row*n+i] += t[row*kdim+j]
			}
		}
	}
	return ret, nil
}

// rotSend extends n random OTs with the peer and returns the message
// pairs as ring elements.
func (g *Generator[T]) rotSend(peer, n int) ([]T, []T, error) {
	m0, m1, err := g.peers[peer].sender.RandomPairs(n)
	if err != nil {
		return nil, nil, err
	}
	q0 := make([]T, n)
	q1 := make([]T, n)
	for i := 0; i < n; i++ {
		q0[i] = labelElem[T](m0[i])
		q1[i] = labelElem[T](m1[i])
	}
	return q0, q1, nil
}

// rotRecv extends len(b) random OTs with the peer and returns the
// selected messages as ring elements.
func (g *Generator[T]) rotRecv(peer int, b []bool) ([]T, error) {
	sel, err := g.peers[peer].receiver.RandomSelect(b)
	if err != nil {
		return nil, err
	}
	t := make([]T, len(b))
	for i := range sel {
		t[i] = labelElem[T](sel[i])
	}
	return t, nil
}
