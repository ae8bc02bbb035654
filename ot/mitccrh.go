//
// mitccrh.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//
// Better Concrete Security for Half-Gates Garbling (in the
// Multi-Instance Setting)
//  - https://eprint.iacr.org/2019/1168.pdf

/*

This implementation is derived from the EMP Toolkit's mitccrh.h
(https://github.com/emp-toolkit/emp-tool/blob/master/emp-tool/utils/mitccrh.h)
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
)

// MITCCRH implements the multi-instance tweakable circular
// correlation-robust hash. Random OT derives its message pairs from
// correlated labels with it: both sides seed an instance from the
// same exchanged seed and must hash the same number of blocks in the
// same order.
type MITCCRH struct {
	batchSize int
	seed      Label
	tweak     uint64
	keys      []cipher.Block
	keyUsed   int
	scratch   []LabelData
}

// NewMITCCRH creates a new hash instance with the seed s. A batch of
// batchSize tweaked AES keys is derived at a time.
func NewMITCCRH(s Label, batchSize int) *MITCCRH {
	return &MITCCRH{
		batchSize: batchSize,
		seed:      s,
		keys:      make([]cipher.Block, batchSize),
		// The first Hash call derives the first key batch.
		keyUsed: batchSize,
	}
}

// nextKeys derives the next batch of AES keys from the seed and the
// running tweak counter.
func (m *MITCCRH) nextKeys() {
	for i := 0; i < m.batchSize; i++ {
		key := Label{
			D0: m.tweak,
		}
		m.tweak++
		key.Xor(m.seed)

		var ld LabelData
		block, err := aes.NewCipher(key.Bytes(&ld))
		if err != nil {
			panic(err)
		}
		m.keys[i] = block
	}
	m.keyUsed = 0
}

// Hash hashes k*h blocks in place: key i of the current batch hashes
// the h consecutive blocks blks[i*h:(i+1)*h] as AES(key, x) xor x.
func (m *MITCCRH) Hash(blks []Label, k, h int) {
	switch {
	case k > m.batchSize:
		panic("ot: hash batch too large")
	case m.batchSize%k != 0:
		panic("ot: hash batch not a multiple of key count")
	case k*h != len(blks):
		panic("ot: hash block count mismatch")
	}
	if m.keyUsed == m.batchSize {
		m.nextKeys()
	}
	if len(m.scratch) < len(blks) {
		m.scratch = make([]LabelData, len(blks))
	}

	tmp := m.scratch[:len(blks)]
	for i := range blks {
		blks[i].GetData(&tmp[i])
	}
	for i := 0; i < k; i++ {
		c := m.keys[m.keyUsed+i]
		for j := 0; j < h; j++ {
			idx := i*h + j
			c.Encrypt(tmp[idx][:], tmp[idx][:])
		}
	}
	m.keyUsed += k

	for i := range blks {
		var t Label
		t.SetData(&tmp[i])
		blks[i].Xor(t)
	}
}
