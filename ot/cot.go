//
// cot.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

/*

This implementation is derived from the EMP Toolkit's cot.h
(https://github.com/emp-toolkit/emp-ot/blob/master/emp-ot/cot.h)
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
	"io"
)

const (
	otBatchSize = 8
)

// COTSender implements the sender side of maliciously secure random
// correlated OT with a fixed correlation delta. All extensions use
// the KOS consistency checks.
type COTSender struct {
	io   IO
	rand io.Reader
	iknp *IKNPSender
}

// NewCOTSender runs the base OTs and the IKNP setup as the extension
// sender. The delta argument fixes the correlation for the lifetime
// of the sender.
func NewCOTSender(base OT, io IO, r io.Reader, delta Label) (
	*COTSender, error) {

	iknp, err := NewIKNPSender(base, io, r, &delta)
	if err != nil {
		return nil, err
	}
	return &COTSender{
		io:   io,
		rand: r,
		iknp: iknp,
	}, nil
}

// Delta returns the correlation delta.
func (s *COTSender) Delta() Label {
	return s.iknp.Delta
}

// Correlated extends n correlated OTs and returns the q0 labels. The
// receiver's label is q0[i] xor b[i]*Delta.
func (s *COTSender) Correlated(n int) ([]Label, error) {
	return s.iknp.Send(n)
}

// RandomPairs extends n correlated OTs and hashes them into random,
// uncorrelated message pairs (m0, m1).
func (s *COTSender) RandomPairs(n int) ([]Label, []Label, error) {
	data, err := s.iknp.Send(n)
	if err != nil {
		return nil, nil, err
	}
	seed, err := NewLabel(s.rand)
	if err != nil {
		return nil, nil, err
	}
	mitccrh := NewMITCCRH(seed, otBatchSize)

	var ld LabelData
	if err := s.io.SendLabel(seed, &ld); err != nil {
		return nil, nil, err
	}
	if err := s.io.Flush(); err != nil {
		return nil, nil, err
	}

	m0 := make([]Label, n)
	m1 := make([]Label, n)

	pad := make([]Label, 2*otBatchSize)
	for i := 0; i < n; i += otBatchSize {
		end := i + otBatchSize
		if end > n {
			end = n
		}
		for j := i; j < end; j++ {
			pad[2*(j-i)] = data[j]
			pad[2*(j-i)+1] = data[j]
			pad[2*(j-i)+1].Xor(s.iknp.Delta)
		}
		mitccrh.Hash(pad, otBatchSize, 2)
		for j := i; j < end; j++ {
			m0[j] = pad[2*(j-i)]
			m1[j] = pad[2*(j-i)+1]
		}
	}
	return m0, m1, nil
}

// COTReceiver implements the receiver side of maliciously secure
// random correlated OT.
type COTReceiver struct {
	io   IO
	rand io.Reader
	iknp *IKNPReceiver
}

// NewCOTReceiver runs the base OTs and the IKNP setup as the
// extension receiver.
func NewCOTReceiver(base OT, io IO, r io.Reader) (*COTReceiver, error) {
	iknp, err := NewIKNPReceiver(base, io, r)
	if err != nil {
		return nil, err
	}
	return &COTReceiver{
		io:   io,
		rand: r,
		iknp: iknp,
	}, nil
}

// Correlated extends len(b) correlated OTs and returns the selected
// labels q0[i] xor b[i]*Delta.
func (r *COTReceiver) Correlated(b []bool) ([]Label, error) {
	result := make([]Label, len(b))
	err := r.iknp.Receive(b, result)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RandomSelect extends len(b) correlated OTs and hashes them into the
// selected messages of random pairs: the result is m0[i] when b[i] is
// false and m1[i] when b[i] is true.
func (r *COTReceiver) RandomSelect(b []bool) ([]Label, error) {
	result, err := r.Correlated(b)
	if err != nil {
		return nil, err
	}
	var seed Label
	var ld LabelData
	if err := r.io.ReceiveLabel(&seed, &ld); err != nil {
		return nil, err
	}
	mitccrh := NewMITCCRH(seed, otBatchSize)

	pad := make([]Label, otBatchSize)
	for i := 0; i < len(b); i += otBatchSize {
		end := i + otBatchSize
		if end > len(b) {
			end = len(b)
		}
		for j := i; j < end; j++ {
			pad[j-i] = result[j]
		}
		mitccrh.Hash(pad, otBatchSize, 1)
		for j := i; j < end; j++ {
			result[j] = pad[j-i]
		}
	}
	return result, nil
}
