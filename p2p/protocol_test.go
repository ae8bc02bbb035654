//
// protocol_test.go
//
// Copyright (c) 2023-2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestProtocolValues(t *testing.T) {
	cw, cr := Pipe()

	var eg errgroup.Group
	eg.Go(func() error {
		if err := cw.SendByte(42); err != nil {
			return err
		}
		if err := cw.SendUint16(43); err != nil {
			return err
		}
		if err := cw.SendUint32(44); err != nil {
			return err
		}
		if err := cw.SendString("hello, world"); err != nil {
			return err
		}
		return cw.Flush()
	})

	b, err := cr.ReceiveByte()
	require.NoError(t, err)
	require.Equal(t, byte(42), b)

	v, err := cr.ReceiveUint16()
	require.NoError(t, err)
	require.Equal(t, 43, v)

	v, err = cr.ReceiveUint32()
	require.NoError(t, err)
	require.Equal(t, 44, v)

	s, err := cr.ReceiveString()
	require.NoError(t, err)
	require.Equal(t, "hello, world", s)

	require.NoError(t, eg.Wait())
	require.NoError(t, cr.Close())
}

// Frames both below and above the write buffer size must arrive
// intact; large frames are streamed in multiple buffer loads.
func TestProtocolFrameSizes(t *testing.T) {
	sizes := []int{
		0, 1, 1024,
		writeBufSize - 5, writeBufSize, writeBufSize + 1,
		8 * 1024 * 1024,
	}

	cw, cr := Pipe()

	frames := make([][]byte, len(sizes))
	for i, size := range sizes {
		frames[i] = make([]byte, size)
		rand.Read(frames[i])
	}

	var eg errgroup.Group
	eg.Go(func() error {
		for _, frame := range frames {
			if err := cw.SendData(frame); err != nil {
				return err
			}
		}
		return cw.Flush()
	})

	for i, frame := range frames {
		data, err := cr.ReceiveData()
		require.NoError(t, err)
		require.True(t, bytes.Equal(frame, data),
			"frame %d: %d bytes corrupted in transit", i, sizes[i])
	}
	require.NoError(t, eg.Wait())

	require.Equal(t, cw.Stats.Sent.Load(), cr.Stats.Recvd.Load())
}
