//
// ot_test.go
//
// Copyright (c) 2023-2026 Markku Rossi
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

func randomLabels(t *testing.T, n int) []Label {
	labels := make([]Label, n)
	for i := range labels {
		var err error
		labels[i], err = NewLabel(rand.Reader)
		require.NoError(t, err)
	}
	return labels
}

func testBaseOT(t *testing.T, sender, receiver OT, n int) {
	m0 := randomLabels(t, n)
	m1 := randomLabels(t, n)

	flags := make([]bool, n)
	for i := range flags {
		flags[i] = i%2 == 0
	}
	result := make([]Label, n)

	pipe, rPipe := NewPipe()

	var eg errgroup.Group
	eg.Go(func() error {
		if err := receiver.InitReceiver(rPipe); err != nil {
			rPipe.Close()
			rPipe.Drain()
			return err
		}
		if err := receiver.Receive(flags, result); err != nil {
			rPipe.Close()
			rPipe.Drain()
			return err
		}
		return nil
	})

	require.NoError(t, sender.InitSender(pipe))
	require.NoError(t, sender.Send(m0, m1))
	require.NoError(t, eg.Wait())

	for i := range flags {
		expected := m0[i]
		if flags[i] {
			expected = m1[i]
		}
		require.True(t, result[i].Equal(expected),
			"transfer %d: got %v, expected %v", i, result[i], expected)
	}
}

func TestBaseOTCO(t *testing.T) {
	testBaseOT(t, NewCO(rand.Reader), NewCO(rand.Reader), 64)
}

func TestBaseOTCOSingle(t *testing.T) {
	testBaseOT(t, NewCO(rand.Reader), NewCO(rand.Reader), 1)
}

func benchmarkBaseOT(b *testing.B, batchSize int) {
	sender := NewCO(rand.Reader)
	receiver := NewCO(rand.Reader)

	m0 := make([]Label, batchSize)
	m1 := make([]Label, batchSize)
	for i := 0; i < batchSize; i++ {
		m0[i], _ = NewLabel(rand.Reader)
		m1[i], _ = NewLabel(rand.Reader)
	}
	flags := make([]bool, batchSize)
	result := make([]Label, batchSize)

	pipe, rPipe := NewPipe()

	done := make(chan error)
	go func() {
		if err := receiver.InitReceiver(rPipe); err != nil {
			done <- err
			return
		}
		for i := 0; i < b.N; i++ {
			if err := receiver.Receive(flags, result); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	if err := sender.InitSender(pipe); err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if err := sender.Send(m0, m1); err != nil {
			b.Fatal(err)
		}
	}
	if err := <-done; err != nil {
		b.Fatal(err)
	}
}

func BenchmarkBaseOTCO_1(b *testing.B) {
	benchmarkBaseOT(b, 1)
}

func BenchmarkBaseOTCO_64(b *testing.B) {
	benchmarkBaseOT(b, 64)
}
