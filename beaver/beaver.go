//
// beaver.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package beaver implements the SPDZ2k preprocessing engine: it
// produces authenticated multiplication triples, matrix triples, AND
// triples, random bits, and truncation pairs over Z_2^w for a
// dishonest majority of n parties. Values are additively shared and
// carry information-theoretic MACs under a global key that is the sum
// of the per-party key shares:
//
//	SPDZ2k: Efficient MPC mod 2^k for Dishonest Majority
//	 - https://eprint.iacr.org/2018/482.pdf
//	New Primitives for Actively-Secure MPC over Rings
//	 - https://eprint.iacr.org/2019/599.pdf
//
// All state of a preprocessing session lives in the Generator. The
// pairwise OT extension channels are set up in canonical order so
// that every party runs the same global schedule.
package beaver

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/markkurossi/spdz2k/comm"
	"github.com/markkurossi/spdz2k/ot"
	"github.com/markkurossi/spdz2k/p2p"
	"github.com/markkurossi/spdz2k/prg"
	"github.com/markkurossi/spdz2k/ring"
	"github.com/markkurossi/spdz2k/tinyot"
)

var (
	// ErrMacCheck signals that a MAC check failed. The session is
	// compromised and must be torn down.
	ErrMacCheck = errors.New("MAC check failed")

	// ErrSacrifice signals that a sacrificed triple opened to a
	// non-zero difference. The session is compromised and must be
	// torn down.
	ErrSacrifice = errors.New("sacrifice check failed")
)

// TruncPolicy selects how AuthTrunc fills the high bits vacated by
// the truncation.
type TruncPolicy int

// Truncation policies.
const (
	// TruncSignExtend replicates the top bit of the untruncated
	// value into the vacated high bits (arithmetic shift right).
	TruncSignExtend TruncPolicy = iota

	// TruncZeroExtend leaves the vacated high bits clear (logical
	// shift right).
	TruncZeroExtend
)

func (p TruncPolicy) String() string {
	switch p {
	case TruncSignExtend:
		return "sign-extend"
	case TruncZeroExtend:
		return "zero-extend"
	default:
		return fmt.Sprintf("{TruncPolicy %d}", p)
	}
}

// Params defines the session parameters. K is the computation bit
// width and S the statistical security parameter; MACs live in the
// k+s low bits of the ring.
type Params struct {
	K     uint
	S     uint
	Trunc TruncPolicy
}

// Auth is an additive share with its MAC share. For the global MAC
// key key = sum of all key shares, sum(Mac) = key * sum(Val) holds
// elementwise over the ring.
type Auth[T ring.Elem] struct {
	Val []T
	Mac []T
}

// Triple is an authenticated multiplication triple c = a * b. For
// AuthDot the components are flat row-major matrices.
type Triple[T ring.Elem] struct {
	A Auth[T]
	B Auth[T]
	C Auth[T]
}

// peer holds the OT extension endpoints towards one peer. The sender
// is fixed to the session's TinyOT key as its correlation.
type peer struct {
	conn     *p2p.Conn
	sender   *ot.COTSender
	receiver *ot.COTReceiver
}

// Generator is a preprocessing session. It is not safe for
// concurrent use; the parties drive it in lockstep, one operation at
// a time.
type Generator[T ring.Elem] struct {
	comm    *comm.Communicator
	params  Params
	pub     *prg.PRG
	priv    *prg.PRG
	peers   []*peer
	tiny    *tinyot.Party
	tinyKey ot.Label
	spdzKey T
	seq     int

	// Timing collects per-operation profiling samples.
	Timing *Timing
}

// New creates a preprocessing session over the communicator. It
// agrees on the shared public randomness, samples the MAC key share,
// and runs the base OTs and OT extension setups for every pair of
// parties in canonical order.
func New[T ring.Elem](c *comm.Communicator, params Params) (
	*Generator[T], error) {

	w := ring.Bits[T]()
	if params.K == 0 || params.S == 0 {
		return nil, fmt.Errorf("beaver: invalid parameters k=%v, s=%v",
			params.K, params.S)
	}
	if params.K+params.S > w || 2*params.S > w {
		return nil, fmt.Errorf(
			"beaver: parameters k=%v, s=%v exceed the %v-bit ring",
			params.K, params.S, w)
	}

	c.Debugf("setup: field=%v k=%v s=%v parties=%v\n",
		ring.FieldOf[T](), params.K, params.S, c.Size())

	pub, err := prg.Shared(c, "setup/publ")
	if err != nil {
		return nil, fmt.Errorf("beaver: setup: %w", err)
	}
	priv, err := prg.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("beaver: setup: %w", err)
	}
	tinyKey, err := ot.NewLabel(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("beaver: setup: %w", err)
	}

	g := &Generator[T]{
		comm:    c,
		params:  params,
		pub:     pub,
		priv:    priv,
		peers:   make([]*peer, c.Size()),
		tinyKey: tinyKey,
		spdzKey: prg.Elements[T](priv, 1)[0] & ring.MaskBits[T](params.S),
		Timing:  NewTiming(),
	}

	// For every unordered pair, first the channel where the lower
	// rank extends as OT sender, then the reverse channel.
	for i := 0; i < c.Size(); i++ {
		for j := i + 1; j < c.Size(); j++ {
			var err error
			switch c.Rank() {
			case i:
				err = g.initPeer(j, true)
			case j:
				err = g.initPeer(i, false)
			}
			if err != nil {
				return nil, fmt.Errorf("beaver: setup: %w", err)
			}
		}
	}

	if c.Size() == 2 {
		next := c.NextRank()
		g.tiny = tinyot.NewParty(c.Rank() < next, g.peers[next].sender,
			g.peers[next].receiver, priv, c.Conn(next))
	}

	c.Debugf("setup: extension channels ready\n")
	g.sample("Setup")
	return g, nil
}

// initPeer sets up the OT extension channels towards the peer. The
// lower argument tells if this party extends as sender on the first
// channel.
func (g *Generator[T]) initPeer(rank int, lower bool) error {
	conn := g.comm.Conn(rank)
	p := &peer{
		conn: conn,
	}
	var err error
	if lower {
		p.sender, err = newSender(conn, g.tinyKey)
		if err != nil {
			return err
		}
		p.receiver, err = newReceiver(conn)
	} else {
		p.receiver, err = newReceiver(conn)
		if err != nil {
			return err
		}
		p.sender, err = newSender(conn, g.tinyKey)
	}
	if err != nil {
		return err
	}
	g.peers[rank] = p
	return nil
}

func newSender(conn *p2p.Conn, delta ot.Label) (*ot.COTSender, error) {
	base := ot.NewCO(rand.Reader)
	if err := base.InitSender(conn); err != nil {
		return nil, err
	}
	return ot.NewCOTSender(base, conn, rand.Reader, delta)
}

func newReceiver(conn *p2p.Conn) (*ot.COTReceiver, error) {
	base := ot.NewCO(rand.Reader)
	if err := base.InitReceiver(conn); err != nil {
		return nil, err
	}
	return ot.NewCOTReceiver(base, conn, rand.Reader)
}

// Params returns the session parameters.
func (g *Generator[T]) Params() Params {
	return g.params
}

// KeyShare returns this party's share of the global MAC key.
func (g *Generator[T]) KeyShare() T {
	return g.spdzKey
}

// tag returns a fresh session-unique tag. The parties call the
// collective operations in the same global order, so the sequence
// numbers stay synchronized.
func (g *Generator[T]) tag(name string) string {
	g.seq++
	return fmt.Sprintf("%s/%d", name, g.seq)
}

// sample records a timing sample with the cumulative transfer size.
func (g *Generator[T]) sample(label string) {
	g.Timing.Sample(label, []string{
		FileSize(g.comm.Stats().Sum()).String(),
	})
}
