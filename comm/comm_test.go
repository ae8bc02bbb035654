//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package comm

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestSendRecv(t *testing.T) {
	comms := Pipes(2)

	g := new(errgroup.Group)
	g.Go(func() error {
		return comms[0].SendAsync(1, "greeting", []byte("hello"))
	})
	g.Go(func() error {
		data, err := comms[1].Recv(0, "greeting")
		if err != nil {
			return err
		}
		if string(data) != "hello" {
			return fmt.Errorf("unexpected data: %q", data)
		}
		return nil
	})
	require.NoError(t, g.Wait())
}

func TestRecvTagMismatch(t *testing.T) {
	comms := Pipes(2)

	g := new(errgroup.Group)
	g.Go(func() error {
		return comms[0].SendAsync(1, "alpha", []byte("x"))
	})

	_, err := comms[1].Recv(0, "beta")
	require.ErrorIs(t, err, ErrTagMismatch)
	require.NoError(t, g.Wait())
}

func TestExchangeAll(t *testing.T) {
	const n = 3

	comms := Pipes(n)

	g := new(errgroup.Group)
	for i := 0; i < n; i++ {
		comm := comms[i]
		g.Go(func() error {
			own := []byte{byte(comm.Rank())}
			parts, err := comm.ExchangeAll("xall", own)
			if err != nil {
				return err
			}
			for peer, data := range parts {
				if len(data) != 1 || data[0] != byte(peer) {
					return fmt.Errorf("rank %v: bad data from %v: %v",
						comm.Rank(), peer, data)
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

func TestAllReduce(t *testing.T) {
	const n = 4
	const count = 1000

	comms := Pipes(n)

	g := new(errgroup.Group)
	for i := 0; i < n; i++ {
		comm := comms[i]
		g.Go(func() error {
			x := make([]uint64, count)
			for j := range x {
				x[j] = uint64(comm.Rank() + j)
			}
			sum, err := AllReduce(comm, "sum", x)
			if err != nil {
				return err
			}
			for j := range sum {
				// Sum of ranks is n*(n-1)/2, plus n copies of j.
				expected := uint64(n*(n-1)/2 + n*j)
				if sum[j] != expected {
					return fmt.Errorf("rank %v: sum[%v]=%v, expected %v",
						comm.Rank(), j, sum[j], expected)
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

func TestGather(t *testing.T) {
	const n = 3
	const root = 1

	comms := Pipes(n)

	g := new(errgroup.Group)
	for i := 0; i < n; i++ {
		comm := comms[i]
		g.Go(func() error {
			own := []byte(fmt.Sprintf("rank-%d", comm.Rank()))
			parts, err := comm.Gather(root, "gather", own)
			if err != nil {
				return err
			}
			if comm.Rank() != root {
				if parts != nil {
					return fmt.Errorf("rank %v: unexpected gather result",
						comm.Rank())
				}
				return nil
			}
			for peer, data := range parts {
				expected := fmt.Sprintf("rank-%d", peer)
				if string(data) != expected {
					return fmt.Errorf("root: bad data from %v: %q",
						peer, data)
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

func TestConnectTCP(t *testing.T) {
	const n = 3

	addrs := []string{
		"127.0.0.1:18471",
		"127.0.0.1:18472",
		"127.0.0.1:18473",
	}

	comms := make([]*Communicator, n)

	g := new(errgroup.Group)
	for i := 0; i < n; i++ {
		rank := i
		g.Go(func() error {
			comm, err := Connect(rank, addrs)
			if err != nil {
				return err
			}
			comms[rank] = comm
			return nil
		})
	}
	require.NoError(t, g.Wait())

	g = new(errgroup.Group)
	for i := 0; i < n; i++ {
		comm := comms[i]
		g.Go(func() error {
			sum, err := AllReduce(comm, "tcp-sum", []uint32{uint32(comm.Rank())})
			if err != nil {
				return err
			}
			if sum[0] != n*(n-1)/2 {
				return fmt.Errorf("rank %v: sum=%v", comm.Rank(), sum[0])
			}
			return comm.Close()
		})
	}
	require.NoError(t, g.Wait())
}

func TestDebugf(t *testing.T) {
	comms := Pipes(3)

	var buf bytes.Buffer
	c := comms[2]
	c.Trace = &buf

	c.Debugf("quiet %v\n", 1)
	require.Empty(t, buf.String())

	c.Verbose = true
	c.Debugf("phase %v done\n", 2)
	require.Equal(t, "P"+c.IDString()+" phase 2 done\n", buf.String())
}
