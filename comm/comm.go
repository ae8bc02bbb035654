//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package comm implements rank-addressed communication between the
// preprocessing parties. A communicator owns one p2p connection per
// peer. Point-to-point messages are tagged; the collectives use
// rank-ordered symmetric exchanges where the lower rank sends first
// and the higher rank receives first.
package comm

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/markkurossi/spdz2k/p2p"
	"github.com/markkurossi/text/superscript"
)

// ErrTagMismatch signals that a received message carried an
// unexpected tag. The session is out of sync and must abort.
var ErrTagMismatch = errors.New("comm: message tag mismatch")

// Communicator implements rank-addressed messaging over per-peer
// connections. The conns array is indexed by peer rank; the self
// entry is nil.
type Communicator struct {
	rank  int
	conns []*p2p.Conn

	// Verbose enables per-rank debug output.
	Verbose bool

	// Trace receives the debug output. When nil, the output goes to
	// standard output.
	Trace io.Writer
}

// New creates a communicator for the party rank. The conns array
// must have one connection per peer and nil for self.
func New(rank int, conns []*p2p.Conn) *Communicator {
	if rank < 0 || rank >= len(conns) {
		panic(fmt.Sprintf("comm: invalid rank %v of %v", rank, len(conns)))
	}
	if conns[rank] != nil {
		panic("comm: self connection must be nil")
	}
	return &Communicator{
		rank:  rank,
		conns: conns,
	}
}

// Rank returns the rank of this party.
func (c *Communicator) Rank() int {
	return c.rank
}

// Size returns the number of parties.
func (c *Communicator) Size() int {
	return len(c.conns)
}

// NextRank returns the rank of the next party in the ring order.
func (c *Communicator) NextRank() int {
	return (c.rank + 1) % len(c.conns)
}

// PrevRank returns the rank of the previous party in the ring order.
func (c *Communicator) PrevRank() int {
	return (c.rank + len(c.conns) - 1) % len(c.conns)
}

// Conn returns the connection to the peer. The function panics on
// the self rank.
func (c *Communicator) Conn(peer int) *p2p.Conn {
	if peer == c.rank {
		panic("comm: no connection to self")
	}
	return c.conns[peer]
}

// SendAsync sends a tagged message to the peer. The data is handed
// to the connection's background writer; the call does not wait for
// the peer.
func (c *Communicator) SendAsync(peer int, tag string, data []byte) error {
	conn := c.Conn(peer)
	if err := conn.SendString(tag); err != nil {
		return err
	}
	if err := conn.SendData(data); err != nil {
		return err
	}
	return conn.Flush()
}

// Recv receives a tagged message from the peer.
func (c *Communicator) Recv(peer int, tag string) ([]byte, error) {
	conn := c.Conn(peer)
	got, err := conn.ReceiveString()
	if err != nil {
		return nil, err
	}
	if got != tag {
		return nil, fmt.Errorf("%w: received %q, expected %q",
			ErrTagMismatch, got, tag)
	}
	return conn.ReceiveData()
}

// Exchange sends data to the peer and receives the peer's data under
// the same tag. The lower rank sends first.
func (c *Communicator) Exchange(peer int, tag string, data []byte) (
	[]byte, error) {

	if c.rank < peer {
		if err := c.SendAsync(peer, tag, data); err != nil {
			return nil, err
		}
		return c.Recv(peer, tag)
	}
	theirs, err := c.Recv(peer, tag)
	if err != nil {
		return nil, err
	}
	if err := c.SendAsync(peer, tag, data); err != nil {
		return nil, err
	}
	return theirs, nil
}

// Stats returns the I/O statistics summed over all peer connections.
func (c *Communicator) Stats() p2p.IOStats {
	stats := p2p.NewIOStats()
	for _, conn := range c.conns {
		if conn != nil {
			stats = stats.Add(conn.Stats)
		}
	}
	return stats
}

// Close closes all peer connections.
func (c *Communicator) Close() error {
	var firstErr error
	for _, conn := range c.conns {
		if conn == nil {
			continue
		}
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// IDString returns the party rank in superscript.
func (c *Communicator) IDString() string {
	return superscript.Itoa(c.rank)
}

// Debugf prints a debugging message if verbose output is enabled for
// this communicator. The message is prefixed with the party rank.
func (c *Communicator) Debugf(format string, a ...interface{}) {
	if !c.Verbose {
		return
	}
	w := c.Trace
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintf(w, "P%s %s", c.IDString(), fmt.Sprintf(format, a...))
}
