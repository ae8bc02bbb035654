//
// iknp.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//
// IKNP OT Extension:
//
// Extending oblivious transfers efficiently
//  - https://www.iacr.org/archive/crypto2003/27290145/27290145.pdf
//
// More Efficient Oblivious Transfer and Extensions for Faster Secure
// Computation
//  - https://eprint.iacr.org/2013/552.pdf
//
// Actively Secure OT Extension with Optimal Overhead
//  - https://eprint.iacr.org/2015/546.pdf

/*

This implementation is derived from the EMP Toolkit's ikmp.h and cot.h
(https://github.com/emp-toolkit/emp-ot/blob/master/emp-ot/{ikmp,cot}.h)
with original license as follows:

MIT License

Copyright (c) 2018 Xiao Wang (wangxiao1254@gmail.com)

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.

Enquiries about further applications and development opportunities are welcome.

*/

package ot

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
	"io"
)

const (
	// kappa is the computational security parameter: the number of
	// base OTs and the extension matrix column count.
	kappa = 128

	// blindOTs is the number of extra extensions blinding the
	// receiver's correlation proof.
	blindOTs = 256

	// Column chunk buffer size. Must be a multiple of kappa bits.
	chunkBytes = 2 * 1024

	// Bytes per column in a full chunk.
	colBytes = chunkBytes / kappa

	// Extension rows in a full chunk.
	chunkRows = colBytes * 8
)

// ErrConsistency signals a failed correlation check: the extension
// peer deviated from the protocol and the session must abort.
var ErrConsistency = errors.New("ot: extension consistency check failed")

// IKNPSender implements the sender side of random correlated OT
// extension. Every extension runs the KOS consistency check.
type IKNPSender struct {
	// Delta defines the correlation: the receiver's label is
	// q0 xor b*Delta.
	Delta Label
	io    IO
	cols  [kappa]cipher.Stream
}

// NewIKNPSender runs the base OTs as the receiver, selecting with the
// bits of delta. The d is an optional correlation; if unset, the
// function creates a random one.
func NewIKNPSender(base OT, io IO, r io.Reader, d *Label) (*IKNPSender, error) {
	var delta Label
	var err error
	if d == nil {
		delta, err = NewLabel(r)
		if err != nil {
			return nil, err
		}
	} else {
		delta = *d
	}

	s := &IKNPSender{
		Delta: delta,
		io:    io,
	}

	var flags [kappa]bool
	for i := 0; i < kappa; i++ {
		flags[i] = delta.Bit(i) == 1
	}

	var seeds [kappa]Label
	if err := base.Receive(flags[:], seeds[:]); err != nil {
		return nil, err
	}
	for i := 0; i < kappa; i++ {
		s.cols[i], err = newStream(seeds[i])
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Send extends n correlated OTs and returns the q0 labels. The
// receiver's label for selection bit b is q0 xor b*Delta.
func (s *IKNPSender) Send(n int) ([]Label, error) {
	result, err := s.extend(n)
	if err != nil {
		return nil, err
	}
	blind, err := s.extend(blindOTs)
	if err != nil {
		return nil, err
	}
	if err := s.verify(result, blind); err != nil {
		return nil, err
	}
	return result, nil
}

// extend receives the masked extension matrix column by column and
// converts the columns into row labels.
func (s *IKNPSender) extend(n int) ([]Label, error) {
	result := make([]Label, n)

	var ofs int
	for ofs < n {
		chunk, err := s.io.ReceiveData()
		if err != nil {
			return nil, err
		}
		if len(chunk)%kappa != 0 {
			return nil, fmt.Errorf("ot: invalid column chunk size: %v",
				len(chunk))
		}
		w := len(chunk) / kappa

		var t [chunkBytes]byte
		for i := 0; i < kappa; i++ {
			stream(s.cols[i], t[i*w:(i+1)*w])
			if s.Delta.Bit(i) == 1 {
				xor(t[i*w:(i+1)*w], chunk[i*w:])
			}
		}
		transpose(result[ofs:], t[:], w)

		ofs += w * 8
	}
	return result, nil
}

// verify checks the receiver's KOS correlation proof over the
// extended labels and the blinding labels.
func (s *IKNPSender) verify(result, blind []Label) error {
	var seed Label
	var ld LabelData
	if err := s.io.ReceiveLabel(&seed, &ld); err != nil {
		return err
	}
	coef, err := newStream(seed)
	if err != nil {
		return err
	}

	var q0, q1 Label
	var chi [1024]Label

	for i := 0; i < len(result); i += len(chi) {
		count := len(result) - i
		if count > len(chi) {
			count = len(chi)
		}
		streamLabels(coef, chi[:count])
		lo, hi := innerProduct(chi[:count], result[i:i+count])
		q0.Xor(lo)
		q1.Xor(hi)
	}
	streamLabels(coef, chi[:len(blind)])
	lo, hi := innerProduct(chi[:len(blind)], blind)
	q0.Xor(lo)
	q1.Xor(hi)

	var x, t0, t1 Label
	if err := s.io.ReceiveLabel(&x, &ld); err != nil {
		return err
	}
	if err := s.io.ReceiveLabel(&t0, &ld); err != nil {
		return err
	}
	if err := s.io.ReceiveLabel(&t1, &ld); err != nil {
		return err
	}
	lo, hi = mul128(x, s.Delta)
	q0.Xor(lo)
	q1.Xor(hi)

	if !q0.Equal(t0) || !q1.Equal(t1) {
		return ErrConsistency
	}
	return nil
}

// IKNPReceiver implements the receiver side of random correlated OT
// extension.
type IKNPReceiver struct {
	io    IO
	rand  io.Reader
	cols0 [kappa]cipher.Stream
	cols1 [kappa]cipher.Stream
}

// NewIKNPReceiver runs the base OTs as the sender, transferring the
// column seed pairs.
func NewIKNPReceiver(base OT, io IO, rand io.Reader) (*IKNPReceiver, error) {
	var seeds0, seeds1 [kappa]Label
	for i := 0; i < kappa; i++ {
		var err error
		seeds0[i], err = NewLabel(rand)
		if err != nil {
			return nil, err
		}
		seeds1[i], err = NewLabel(rand)
		if err != nil {
			return nil, err
		}
	}
	if err := base.Send(seeds0[:], seeds1[:]); err != nil {
		return nil, err
	}

	r := &IKNPReceiver{
		io:   io,
		rand: rand,
	}
	for i := 0; i < kappa; i++ {
		var err error
		r.cols0[i], err = newStream(seeds0[i])
		if err != nil {
			return nil, err
		}
		r.cols1[i], err = newStream(seeds1[i])
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Receive extends correlated OTs for the selection bits b. The
// returned labels implement the correlation: result[i] is
// q0[i] xor b[i]*Delta. The function panics if b and result have
// different lengths.
func (r *IKNPReceiver) Receive(b []bool, result []Label) error {
	if err := r.extend(b, result); err != nil {
		return err
	}

	// Blind the correlation proof with random selections.
	b0, err := NewLabel(r.rand)
	if err != nil {
		return err
	}
	b1, err := NewLabel(r.rand)
	if err != nil {
		return err
	}
	blindSel := make([]bool, blindOTs)
	for i := 0; i < blindOTs; i++ {
		if i < kappa {
			blindSel[i] = b0.Bit(i) == 1
		} else {
			blindSel[i] = b1.Bit(i-kappa) == 1
		}
	}
	blind := make([]Label, blindOTs)
	if err := r.extend(blindSel, blind); err != nil {
		return err
	}

	return r.prove(b, result, blindSel, blind)
}

// prove sends the KOS correlation proof: the inner product tags over
// all extended labels and the masked selection vector.
func (r *IKNPReceiver) prove(b []bool, result []Label,
	blindSel []bool, blind []Label) error {

	seed, err := NewLabel(r.rand)
	if err != nil {
		return err
	}
	var ld LabelData
	if err := r.io.SendLabel(seed, &ld); err != nil {
		return err
	}
	if err := r.io.Flush(); err != nil {
		return err
	}
	coef, err := newStream(seed)
	if err != nil {
		return err
	}

	var selNone Label
	selAll := Label{
		D0: 0xffffffffffffffff,
		D1: 0xffffffffffffffff,
	}

	var t0, t1, x Label
	var chi [1024]Label

	for i := 0; i < len(b); i += len(chi) {
		count := len(b) - i
		if count > len(chi) {
			count = len(chi)
		}
		streamLabels(coef, chi[:count])
		lo, hi := innerProduct(chi[:count], result[i:i+count])
		t0.Xor(lo)
		t1.Xor(hi)

		for j := 0; j < count; j++ {
			if b[i+j] {
				chi[j].And(selAll)
			} else {
				chi[j].And(selNone)
			}
			x.Xor(chi[j])
		}
	}
	streamLabels(coef, chi[:len(blind)])
	lo, hi := innerProduct(chi[:len(blind)], blind)
	t0.Xor(lo)
	t1.Xor(hi)
	for j := 0; j < len(blind); j++ {
		if blindSel[j] {
			chi[j].And(selAll)
		} else {
			chi[j].And(selNone)
		}
		x.Xor(chi[j])
	}

	if err := r.io.SendLabel(x, &ld); err != nil {
		return err
	}
	if err := r.io.SendLabel(t0, &ld); err != nil {
		return err
	}
	if err := r.io.SendLabel(t1, &ld); err != nil {
		return err
	}
	return r.io.Flush()
}

// extend sends the masked extension matrix columns for the selection
// bits b and fills result with the selected row labels.
func (r *IKNPReceiver) extend(b []bool, result []Label) error {
	if len(b) != len(result) {
		panic("ot: selection and result length mismatch")
	}
	sel := make([]byte, (len(b)+7)/8)
	for i, f := range b {
		if f {
			sel[i/8] |= 1 << (i % 8)
		}
	}

	var chunk, masked [chunkBytes]byte
	var tmp [colBytes]byte

	for ofs := 0; ofs < len(b); {
		rows := chunkRows
		if avail := len(b) - ofs; rows > avail {
			rows = avail
		}
		w := (rows + 7) / 8

		for i := 0; i < kappa; i++ {
			stream(r.cols0[i], chunk[i*w:(i+1)*w])
			stream(r.cols1[i], tmp[:w])

			xor(tmp[:w], chunk[i*w:])
			xor(tmp[:w], sel[ofs/8:])

			copy(masked[i*w:], tmp[:w])
		}
		if err := r.io.SendData(masked[:w*kappa]); err != nil {
			return err
		}
		transpose(result[ofs:], chunk[:], w)

		ofs += rows
	}
	return r.io.Flush()
}

// newStream creates the AES-CTR column stream of the seed.
func newStream(seed Label) (cipher.Stream, error) {
	var ld LabelData
	block, err := aes.NewCipher(seed.Bytes(&ld))
	if err != nil {
		return nil, err
	}
	var iv [16]byte
	return cipher.NewCTR(block, iv[:]), nil
}

// stream fills buf with the next keystream bytes. The buffer is
// shared between iterations and must be cleared first.
func stream(c cipher.Stream, buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
	c.XORKeyStream(buf, buf)
}

func streamLabels(c cipher.Stream, labels []Label) {
	var buf [16]byte
	for i := range labels {
		stream(c, buf[:])
		labels[i].SetBytes(buf[:])
	}
}

// transpose converts w-byte columns into row labels: bit j of row i
// is bit i of column j.
func transpose(l []Label, buf []byte, w int) {
	end := w * 8
	if end > len(l) {
		end = len(l)
	}
	for i := 0; i < end; i++ {
		row := i / 8
		bit := i % 8
		for j := 0; j < kappa; j++ {
			v := uint((buf[j*w+row] >> bit) & 1)
			l[i].SetBit(j, v)
		}
	}
}
