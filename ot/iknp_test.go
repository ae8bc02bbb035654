//
// iknp_test.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func randomBools(n int) []bool {
	buf := make([]byte, (n+7)/8)
	rand.Read(buf)
	out := make([]bool, n)
	for i := 0; i < n; i++ {
		out[i] = ((buf[i/8] >> uint(i%8)) & 1) == 1
	}
	return out
}

// newExtensionPair sets up an IKNP channel over an in-memory pipe.
func newExtensionPair(t *testing.T) (*IKNPSender, *IKNPReceiver) {
	c0, c1 := NewPipe()

	var sender *IKNPSender
	var receiver *IKNPReceiver

	var eg errgroup.Group
	eg.Go(func() error {
		base := NewCO(rand.Reader)
		if err := base.InitReceiver(c1); err != nil {
			return err
		}
		var err error
		receiver, err = NewIKNPReceiver(base, c1, rand.Reader)
		return err
	})

	base := NewCO(rand.Reader)
	require.NoError(t, base.InitSender(c0))
	var err error
	sender, err = NewIKNPSender(base, c0, rand.Reader, nil)
	require.NoError(t, err)
	require.NoError(t, eg.Wait())

	return sender, receiver
}

func extendN(t *testing.T, sender *IKNPSender, receiver *IKNPReceiver, n int) {
	b := randomBools(n)
	rcvd := make([]Label, n)

	var eg errgroup.Group
	eg.Go(func() error {
		return receiver.Receive(b, rcvd)
	})

	sent, err := sender.Send(n)
	require.NoError(t, err)
	require.NoError(t, eg.Wait())
	require.Len(t, sent, n)

	for i, q0 := range sent {
		expected := q0
		if b[i] {
			expected.Xor(sender.Delta)
		}
		require.True(t, rcvd[i].Equal(expected),
			"extension %d: got %v, expected %v", i, rcvd[i], expected)
	}
}

func TestIKNPExtend(t *testing.T) {
	sender, receiver := newExtensionPair(t)
	extendN(t, sender, receiver, 129)
}

// Extensions share the column streams, so one channel must handle
// repeated extensions of uneven sizes.
func TestIKNPExtendRepeated(t *testing.T) {
	sender, receiver := newExtensionPair(t)
	for _, n := range []int{1, 128, 129, 1000} {
		extendN(t, sender, receiver, n)
	}
}

func TestIKNPChunkSizes(t *testing.T) {
	sender, receiver := newExtensionPair(t)
	for i := 1; i <= 5; i++ {
		extendN(t, sender, receiver, chunkRows*i)
		extendN(t, sender, receiver, chunkRows*i+1)
	}
}

// A tampered proof tag must fail the sender's consistency check.
func TestIKNPConsistencyCheck(t *testing.T) {
	sender, receiver := newExtensionPair(t)

	const n = 129
	b := randomBools(n)
	rcvd := make([]Label, n)

	var eg errgroup.Group
	eg.Go(func() error {
		// Corrupt one selection bit between extension and proof: the
		// proof is computed over flipped b while the matrix columns
		// encoded the original selection.
		if err := receiver.extend(b, rcvd); err != nil {
			return err
		}
		blindSel := randomBools(blindOTs)
		blind := make([]Label, blindOTs)
		if err := receiver.extend(blindSel, blind); err != nil {
			return err
		}
		bad := make([]bool, n)
		copy(bad, b)
		bad[17] = !bad[17]
		return receiver.prove(bad, rcvd, blindSel, blind)
	})

	_, err := sender.Send(n)
	require.ErrorIs(t, err, ErrConsistency)
	require.NoError(t, eg.Wait())
}

func BenchmarkIKNPExtend10K(b *testing.B) {
	benchmarkIKNPExtend(b, 10000)
}

func BenchmarkIKNPExtend100K(b *testing.B) {
	benchmarkIKNPExtend(b, 100000)
}

func benchmarkIKNPExtend(b *testing.B, n int) {
	c0, c1 := NewPipe()

	done := make(chan error)
	go func() {
		base := NewCO(rand.Reader)
		if err := base.InitReceiver(c1); err != nil {
			done <- err
			return
		}
		receiver, err := NewIKNPReceiver(base, c1, rand.Reader)
		if err != nil {
			done <- err
			return
		}
		flags := randomBools(n)
		rcvd := make([]Label, n)
		for i := 0; i < b.N; i++ {
			if err := receiver.Receive(flags, rcvd); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	base := NewCO(rand.Reader)
	if err := base.InitSender(c0); err != nil {
		b.Fatal(err)
	}
	sender, err := NewIKNPSender(base, c0, rand.Reader, nil)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := sender.Send(n); err != nil {
			b.Fatal(err)
		}
	}
	if err := <-done; err != nil {
		b.Fatal(err)
	}
}

var xorTests = []struct {
	a []byte
	b []byte
	r []byte
}{
	{
		a: []byte{0b00000001, 0b00000010, 0b00000100, 0b00001000},
		b: []byte{0xff, 0xff, 0xff, 0xff},
		r: []byte{0b11111110, 0b11111101, 0b11111011, 0b11110111},
	},
	{
		a: []byte{0xaa, 0x55},
		b: []byte{0xff, 0xff, 0xff},
		r: []byte{0x55, 0xaa},
	},
}

func TestXORArray(t *testing.T) {
	for _, test := range xorTests {
		tmp := make([]byte, len(test.a))
		copy(tmp, test.a)
		xor(tmp, test.b)
		require.Equal(t, test.r, tmp)
	}
}
