//
// co.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//
// Chou Orlandi OT - The Simplest Protocol for Oblivious Transfer.
//  - https://eprint.iacr.org/2015/267.pdf

/*

This implementation is derived from the EMP Toolkit's co.h
(https://github.com/emp-toolkit/emp-ot/blob/master/emp-ot/co.h)
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
	"crypto/elliptic"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"hash"
	"io"
	"math/big"
)

var (
	bo    = binary.BigEndian
	_  OT = &CO{}
)

// kdf derives a message pad from the curve point (x, y) and the
// transfer index. The digest argument is the caller's scratch buffer.
func kdf(hash hash.Hash, x, y *big.Int, id uint64, digest []byte) []byte {
	hash.Reset()
	hash.Write(x.Bytes())
	hash.Write(y.Bytes())

	var tmp [8]byte
	bo.PutUint64(tmp[:], id)
	hash.Write(tmp[:])

	return hash.Sum(digest)
}

func xor(a, b []byte) []byte {
	l := len(a)
	if len(b) < l {
		l = len(b)
	}
	for i := 0; i < l; i++ {
		a[i] ^= b[i]
	}
	return a[:l]
}

// CO implements the Chou-Orlandi base OT. The IKNP extension setup
// runs it once per channel for its 128 base transfers.
type CO struct {
	curve  elliptic.Curve
	hash   hash.Hash
	digest []byte
	rand   io.Reader
	io     IO
}

// NewCO creates a new Chou-Orlandi OT. The r is the randomness source
// for the secret exponents.
func NewCO(r io.Reader) *CO {
	return &CO{
		curve:  elliptic.P256(),
		hash:   sha256.New(),
		digest: make([]byte, sha256.Size),
		rand:   r,
	}
}

// InitSender initializes the OT sender.
func (co *CO) InitSender(io IO) error {
	co.io = io
	if err := SendString(io, co.curve.Params().Name); err != nil {
		return err
	}
	return io.Flush()
}

// InitReceiver initializes the OT receiver.
func (co *CO) InitReceiver(io IO) error {
	co.io = io

	name, err := ReceiveString(io)
	if err != nil {
		return err
	}
	if name != co.curve.Params().Name {
		return fmt.Errorf("invalid curve %s, expected %s",
			name, co.curve.Params().Name)
	}
	return nil
}

func (co *CO) randScalar() (*big.Int, error) {
	params := co.curve.Params()
	byteLen := (params.N.BitLen() + 7) / 8
	buf := make([]byte, byteLen)
	for {
		if _, err := io.ReadFull(co.rand, buf); err != nil {
			return nil, err
		}
		k := new(big.Int).SetBytes(buf)
		if k.Sign() > 0 && k.Cmp(params.N) < 0 {
			return k, nil
		}
	}
}

func (co *CO) sendPoint(x, y *big.Int) error {
	if err := co.io.SendData(x.Bytes()); err != nil {
		return err
	}
	return co.io.SendData(y.Bytes())
}

func (co *CO) receivePoint() (x, y *big.Int, err error) {
	data, err := co.io.ReceiveData()
	if err != nil {
		return nil, nil, err
	}
	x = new(big.Int).SetBytes(data)
	data, err = co.io.ReceiveData()
	if err != nil {
		return nil, nil, err
	}
	y = new(big.Int).SetBytes(data)
	return x, y, nil
}

// Send transfers the message pairs (m0[i], m1[i]). The function
// panics if the pair arrays have different lengths.
func (co *CO) Send(m0, m1 []Label) error {
	if len(m0) != len(m1) {
		panic("ot: message pair length mismatch")
	}
	curveParams := co.curve.Params()

	// a <- Zp, A = G^a.
	a, err := co.randScalar()
	if err != nil {
		return err
	}
	aBytes := a.Bytes()
	Ax, Ay := co.curve.ScalarBaseMult(aBytes)

	if err := co.sendPoint(Ax, Ay); err != nil {
		return err
	}
	if err := co.io.Flush(); err != nil {
		return err
	}

	// The pad of message 1 is derived from B^a * (A^a)^-1.
	Aax, Aay := co.curve.ScalarMult(Ax, Ay, aBytes)
	AaInvx := new(big.Int).Set(Aax)
	AaInvy := new(big.Int).Sub(curveParams.P, Aay)

	// First collect the receiver's points; the receiver has flushed
	// them all before it reads any pads.
	n := len(m0)
	p0x := make([]*big.Int, n)
	p0y := make([]*big.Int, n)
	p1x := make([]*big.Int, n)
	p1y := make([]*big.Int, n)

	for i := 0; i < n; i++ {
		Bx, By, err := co.receivePoint()
		if err != nil {
			return err
		}
		p0x[i], p0y[i] = co.curve.ScalarMult(Bx, By, aBytes)
		p1x[i], p1y[i] = co.curve.Add(p0x[i], p0y[i], AaInvx, AaInvy)
	}

	// Each pad must be consumed before the next kdf call reuses the
	// digest buffer; SendData copies the data into the write buffer.
	var ld LabelData
	for i := 0; i < n; i++ {
		m0[i].GetData(&ld)
		e0 := xor(kdf(co.hash, p0x[i], p0y[i], uint64(i), co.digest[:0]),
			ld[:])
		if err := co.io.SendData(e0); err != nil {
			return err
		}
		m1[i].GetData(&ld)
		e1 := xor(kdf(co.hash, p1x[i], p1y[i], uint64(i), co.digest[:0]),
			ld[:])
		if err := co.io.SendData(e1); err != nil {
			return err
		}
	}

	return co.io.Flush()
}

// Receive receives the selected message of every pair into result.
func (co *CO) Receive(flags []bool, result []Label) error {
	Ax, Ay, err := co.receivePoint()
	if err != nil {
		return err
	}

	// B = G^b, or A * G^b to select message 1.
	n := len(flags)
	scalars := make([][]byte, n)
	for i := 0; i < n; i++ {
		b, err := co.randScalar()
		if err != nil {
			return err
		}
		scalars[i] = b.Bytes()

		Bx, By := co.curve.ScalarBaseMult(scalars[i])
		if flags[i] {
			Bx, By = co.curve.Add(Bx, By, Ax, Ay)
		}
		if err := co.sendPoint(Bx, By); err != nil {
			return err
		}
	}
	if err := co.io.Flush(); err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		Asx, Asy := co.curve.ScalarMult(Ax, Ay, scalars[i])

		// The kdf output lives in co.digest and the received pad can
		// be overridden by the next read, so the xor happens
		// immediately after each read.
		pad := kdf(co.hash, Asx, Asy, uint64(i), co.digest[:0])
		if flags[i] {
			if _, err := co.io.ReceiveData(); err != nil {
				return err
			}
			e, err := co.io.ReceiveData()
			if err != nil {
				return err
			}
			pad = xor(pad, e)
		} else {
			e, err := co.io.ReceiveData()
			if err != nil {
				return err
			}
			pad = xor(pad, e)
			if _, err := co.io.ReceiveData(); err != nil {
				return err
			}
		}
		result[i].SetBytes(pad)
	}

	return nil
}
