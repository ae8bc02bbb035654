//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package comm

import (
	"fmt"
	"net"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/markkurossi/spdz2k/p2p"
)

// Pipes creates an n-party in-memory mesh of communicators. Each
// party must run in its own goroutine.
func Pipes(n int) []*Communicator {
	conns := make([][]*p2p.Conn, n)
	for i := 0; i < n; i++ {
		conns[i] = make([]*p2p.Conn, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			a, b := p2p.Pipe()
			conns[i][j] = a
			conns[j][i] = b
		}
	}
	result := make([]*Communicator, n)
	for i := 0; i < n; i++ {
		result[i] = New(i, conns[i])
	}
	return result
}

// Connect builds the fully connected TCP mesh for the party rank.
// The addrs array gives the listen address of every party. Each
// party accepts connections from the lower ranks and dials the
// higher ranks; an accepted connection identifies itself with a rank
// hello.
func Connect(rank int, addrs []string) (*Communicator, error) {
	n := len(addrs)
	if rank < 0 || rank >= n {
		return nil, fmt.Errorf("comm: invalid rank %v of %v", rank, n)
	}

	conns := make([]*p2p.Conn, n)

	var listener net.Listener
	if rank > 0 {
		var err error
		listener, err = net.Listen("tcp", addrs[rank])
		if err != nil {
			return nil, err
		}
		defer listener.Close()
	}

	var m sync.Mutex
	g := new(errgroup.Group)

	// Accept from the lower ranks.
	g.Go(func() error {
		for i := 0; i < rank; i++ {
			c, err := listener.Accept()
			if err != nil {
				return err
			}
			conn := p2p.NewConn(c)
			peer, err := conn.ReceiveUint32()
			if err != nil {
				conn.Close()
				return err
			}
			if peer >= rank || peer < 0 {
				conn.Close()
				return fmt.Errorf("comm: unexpected hello from rank %v",
					peer)
			}
			m.Lock()
			if conns[peer] != nil {
				m.Unlock()
				conn.Close()
				return fmt.Errorf("comm: duplicate connection from rank %v",
					peer)
			}
			conns[peer] = conn
			m.Unlock()
		}
		return nil
	})

	// Dial the higher ranks.
	g.Go(func() error {
		for peer := rank + 1; peer < n; peer++ {
			c, err := dial(addrs[peer])
			if err != nil {
				return err
			}
			conn := p2p.NewConn(c)
			if err := conn.SendUint32(rank); err != nil {
				conn.Close()
				return err
			}
			if err := conn.Flush(); err != nil {
				conn.Close()
				return err
			}
			m.Lock()
			conns[peer] = conn
			m.Unlock()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		for _, conn := range conns {
			if conn != nil {
				conn.Close()
			}
		}
		return nil, err
	}

	return New(rank, conns), nil
}

func dial(addr string) (net.Conn, error) {
	var firstErr error

	// The peer's listener might not be up yet.
	for i := 0; i < 100; i++ {
		c, err := net.Dial("tcp", addr)
		if err == nil {
			return c, nil
		}
		if firstErr == nil {
			firstErr = err
		}
		time.Sleep(100 * time.Millisecond)
	}
	return nil, firstErr
}
