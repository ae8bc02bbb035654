//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package beaver

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/markkurossi/spdz2k/comm"
	"github.com/markkurossi/spdz2k/ring"
)

var testParams = Params{
	K: 32,
	S: 32,
}

// newSessions creates n parties connected with an in-memory mesh.
func newSessions(t *testing.T, n int, params Params) []*Generator[uint64] {
	comms := comm.Pipes(n)
	gens := make([]*Generator[uint64], n)

	eg := new(errgroup.Group)
	for i := 0; i < n; i++ {
		i := i
		eg.Go(func() error {
			gen, err := New[uint64](comms[i], params)
			gens[i] = gen
			return err
		})
	}
	require.NoError(t, eg.Wait())
	return gens
}

// run drives all sessions concurrently and waits for them.
func run(t *testing.T, gens []*Generator[uint64],
	fn func(g *Generator[uint64]) error) {

	eg := new(errgroup.Group)
	for _, gen := range gens {
		gen := gen
		eg.Go(func() error {
			return fn(gen)
		})
	}
	require.NoError(t, eg.Wait())
}

// globalKey sums the MAC key shares.
func globalKey(gens []*Generator[uint64]) uint64 {
	var key uint64
	for _, g := range gens {
		key += g.KeyShare()
	}
	return key
}

// openAuth sums the shares of an authenticated vector.
func openAuth(auths []Auth[uint64]) (val, mac []uint64) {
	val = ring.Zeros[uint64](len(auths[0].Val))
	mac = ring.Zeros[uint64](len(auths[0].Val))
	for _, a := range auths {
		ring.AddTo(val, a.Val)
		ring.AddTo(mac, a.Mac)
	}
	return val, mac
}

// checkAuth verifies sum(mac) = key * sum(val) elementwise.
func checkAuth(t *testing.T, gens []*Generator[uint64],
	auths []Auth[uint64]) (val []uint64) {

	key := globalKey(gens)
	val, mac := openAuth(auths)
	for i := range val {
		require.Equal(t, key*val[i], mac[i], "element %d", i)
	}
	return val
}

func TestNewParams(t *testing.T) {
	comms := comm.Pipes(2)

	_, err := New[uint64](comms[0], Params{K: 0, S: 32})
	require.Error(t, err)
	_, err = New[uint64](comms[0], Params{K: 48, S: 32})
	require.Error(t, err)
	_, err = New[uint32](comms[0], Params{K: 16, S: 20})
	require.Error(t, err)
}

func TestAuthenticate(t *testing.T) {
	const n = 3
	const size = 100

	gens := newSessions(t, n, testParams)

	auths := make([]Auth[uint64], n)
	run(t, gens, func(g *Generator[uint64]) error {
		val := make([]uint64, size)
		for i := range val {
			val[i] = uint64(g.comm.Rank()*size + i)
		}
		mac, err := g.Authenticate(val)
		if err != nil {
			return err
		}
		auths[g.comm.Rank()] = Auth[uint64]{Val: val, Mac: mac}
		return nil
	})
	checkAuth(t, gens, auths)
}

func TestBatchOpen(t *testing.T) {
	const n = 3
	const size = 64

	gens := newSessions(t, n, testParams)
	k, s := testParams.K, testParams.S

	shares := make([][]uint64, n)
	opened := make([][]uint64, n)
	run(t, gens, func(g *Generator[uint64]) error {
		rank := g.comm.Rank()
		val := make([]uint64, size)
		for i := range val {
			val[i] = uint64(rank)<<40 + uint64(i)
		}
		shares[rank] = val
		mac, err := g.Authenticate(val)
		if err != nil {
			return err
		}
		open, openMac, err := g.BatchOpen(val, mac, k, s)
		if err != nil {
			return err
		}
		if err := g.BatchMacCheck(open, openMac, k, s); err != nil {
			return err
		}
		opened[rank] = open

		// Opening the same shares again gives the same low k bits.
		again, againMac, err := g.BatchOpen(val, mac, k, s)
		if err != nil {
			return err
		}
		if err := g.BatchMacCheck(again, againMac, k, s); err != nil {
			return err
		}
		require.Equal(t, ring.Mask(open, k), ring.Mask(again, k))
		return nil
	})

	expected := ring.Zeros[uint64](size)
	for _, val := range shares {
		ring.AddTo(expected, val)
	}
	ring.MaskTo(expected, k)
	for rank := 0; rank < n; rank++ {
		// All parties see the same opening; only the low k bits are
		// defined.
		require.Equal(t, expected, ring.Mask(opened[rank], k))
	}
}

// Single-bit corruptions of the value shares must be caught at every
// bit position of the opened range.
func TestBatchOpenTamperedValue(t *testing.T) {
	bits := []uint{0, 3, 17, testParams.K - 1}
	if testing.Short() {
		bits = bits[:2]
	}
	for _, bit := range bits {
		bit := bit
		testBatchOpenTamper(t, func(val, mac []uint64) {
			val[7] ^= 1 << bit
		})
	}
}

func TestBatchOpenTamperedMac(t *testing.T) {
	// A flip at bit b survives the random combination with
	// probability 2^-(k+s-b), so the positions stay well below k+s.
	bits := []uint{0, 20, 40}
	if testing.Short() {
		bits = bits[:1]
	}
	for _, bit := range bits {
		bit := bit
		testBatchOpenTamper(t, func(val, mac []uint64) {
			mac[11] ^= 1 << bit
		})
	}
}

func testBatchOpenTamper(t *testing.T, corrupt func(val, mac []uint64)) {
	const n = 3
	const size = 32

	gens := newSessions(t, n, testParams)
	k, s := testParams.K, testParams.S

	errs := make([]error, n)
	run(t, gens, func(g *Generator[uint64]) error {
		val := make([]uint64, size)
		for i := range val {
			val[i] = uint64(i)
		}
		mac, err := g.Authenticate(val)
		if err != nil {
			return err
		}
		if g.comm.Rank() == 0 {
			corrupt(val, mac)
		}
		open, openMac, err := g.BatchOpen(val, mac, k, s)
		if err != nil {
			return err
		}
		errs[g.comm.Rank()] = g.BatchMacCheck(open, openMac, k, s)
		return nil
	})
	for rank, err := range errs {
		require.ErrorIs(t, err, ErrMacCheck, "rank %d", rank)
	}
}

func TestAuthMul(t *testing.T) {
	const n = 3
	const size = 10

	gens := newSessions(t, n, testParams)

	triples := make([]*Triple[uint64], n)
	run(t, gens, func(g *Generator[uint64]) error {
		triple, err := g.AuthMul(size)
		triples[g.comm.Rank()] = triple
		return err
	})
	checkTriples(t, gens, triples)
}

// checkTriples verifies the MAC relations and c = a*b of the
// collected per-party triple shares.
func checkTriples(t *testing.T, gens []*Generator[uint64],
	triples []*Triple[uint64]) {

	as := make([]Auth[uint64], len(triples))
	bs := make([]Auth[uint64], len(triples))
	cs := make([]Auth[uint64], len(triples))
	for i, triple := range triples {
		as[i] = triple.A
		bs[i] = triple.B
		cs[i] = triple.C
	}
	a := checkAuth(t, gens, as)
	b := checkAuth(t, gens, bs)
	c := checkAuth(t, gens, cs)

	require.Equal(t, ring.Mul(a, b), c)
}

func TestAuthMulE2E(t *testing.T) {
	if testing.Short() {
		t.Skip("e2e test skipped in short mode")
	}
	const n = 3
	const size = 1000

	gens := newSessions(t, n, testParams)

	triples := make([]*Triple[uint64], n)
	run(t, gens, func(g *Generator[uint64]) error {
		triple, err := g.AuthMul(size)
		triples[g.comm.Rank()] = triple
		return err
	})
	checkTriples(t, gens, triples)

	// A corrupted triple share must be caught when the triple is
	// opened and checked.
	k, s := testParams.K, testParams.S
	errs := make([]error, n)
	run(t, gens, func(g *Generator[uint64]) error {
		triple := triples[g.comm.Rank()]
		if g.comm.Rank() == 1 {
			triple.C.Val[42]++
		}
		open, openMac, err := g.BatchOpen(triple.C.Val, triple.C.Mac, k, s)
		if err != nil {
			return err
		}
		errs[g.comm.Rank()] = g.BatchMacCheck(open, openMac, k, s)
		return nil
	})
	for rank, err := range errs {
		require.ErrorIs(t, err, ErrMacCheck, "rank %d", rank)
	}
}

func TestAuthDot(t *testing.T) {
	const n = 3
	const m = 4
	const cols = 3
	const kdim = 5

	gens := newSessions(t, n, testParams)

	triples := make([]*Triple[uint64], n)
	run(t, gens, func(g *Generator[uint64]) error {
		triple, err := g.AuthDot(m, cols, kdim)
		triples[g.comm.Rank()] = triple
		return err
	})

	as := make([]Auth[uint64], n)
	bs := make([]Auth[uint64], n)
	cs := make([]Auth[uint64], n)
	for i, triple := range triples {
		as[i] = triple.A
		bs[i] = triple.B
		cs[i] = triple.C
	}
	a := checkAuth(t, gens, as)
	b := checkAuth(t, gens, bs)
	c := checkAuth(t, gens, cs)

	require.Equal(t, ring.MatMul(a, b, m, cols, kdim), c)
}

func TestAuthRandBit(t *testing.T) {
	const n = 2

	// Binomial(size, 0.5) with six-sigma bounds: 3*sqrt(size).
	size := 10000
	slack := 300
	if testing.Short() {
		size = 200
		slack = 50
	}

	gens := newSessions(t, n, testParams)
	k := testParams.K

	bits := make([]Auth[uint64], n)
	run(t, gens, func(g *Generator[uint64]) error {
		bit, err := g.AuthRandBit(size)
		bits[g.comm.Rank()] = bit
		return err
	})
	val := checkAuth(t, gens, bits)

	var ones int
	for i, v := range val {
		b := v & ring.MaskBits[uint64](k)
		require.True(t, b == 0 || b == 1, "element %d: %v", i, b)
		if b == 1 {
			ones++
		}
	}
	require.Greater(t, ones, size/2-slack)
	require.Less(t, ones, size/2+slack)
}

func TestAuthTrunc(t *testing.T) {
	testAuthTrunc(t, TruncSignExtend)
}

func TestAuthTruncZeroExtend(t *testing.T) {
	testAuthTrunc(t, TruncZeroExtend)
}

func testAuthTrunc(t *testing.T, policy TruncPolicy) {
	const n = 2
	const size = 8
	const shift = 5

	params := testParams
	params.Trunc = policy

	gens := newSessions(t, n, params)
	k := params.K

	rs := make([]Auth[uint64], n)
	trs := make([]Auth[uint64], n)
	run(t, gens, func(g *Generator[uint64]) error {
		r, tr, err := g.AuthTrunc(size, shift)
		rs[g.comm.Rank()] = r
		trs[g.comm.Rank()] = tr
		return err
	})
	rv := checkAuth(t, gens, rs)
	trv := checkAuth(t, gens, trs)

	mask := ring.MaskBits[uint64](k)
	for i := range rv {
		r := rv[i] & mask
		expected := r >> shift
		if policy == TruncSignExtend && r>>(k-1)&1 == 1 {
			expected |= mask &^ ring.MaskBits[uint64](k-shift)
		}
		require.Equal(t, expected, trv[i]&mask, "element %d", i)
	}
}

func TestAuthAnd(t *testing.T) {
	const n = 2
	const size = 300

	gens := newSessions(t, n, testParams)

	triples := make([]*Triple[uint64], n)
	run(t, gens, func(g *Generator[uint64]) error {
		triple, err := g.AuthAnd(size)
		triples[g.comm.Rank()] = triple
		return err
	})

	as := make([]Auth[uint64], n)
	bs := make([]Auth[uint64], n)
	cs := make([]Auth[uint64], n)
	for i, triple := range triples {
		as[i] = triple.A
		bs[i] = triple.B
		cs[i] = triple.C
	}
	a := checkAuth(t, gens, as)
	b := checkAuth(t, gens, bs)
	c := checkAuth(t, gens, cs)

	// The B-share bits live in the low bit of the share sums.
	for i := 0; i < size; i++ {
		require.Equal(t, a[i]&1&b[i], c[i]&1, "element %d", i)
	}
}

func TestAuthAndWorldSize(t *testing.T) {
	gens := newSessions(t, 3, testParams)

	for _, g := range gens {
		_, err := g.AuthAnd(10)
		require.Error(t, err)
	}
}

// Verbose sessions log the protocol phases prefixed with the party
// rank.
func TestSessionTrace(t *testing.T) {
	const n = 2

	comms := comm.Pipes(n)
	traces := make([]*bytes.Buffer, n)
	for i, c := range comms {
		traces[i] = new(bytes.Buffer)
		c.Verbose = true
		c.Trace = traces[i]
	}

	gens := make([]*Generator[uint64], n)
	eg := new(errgroup.Group)
	for i := range comms {
		i := i
		eg.Go(func() error {
			gen, err := New[uint64](comms[i], testParams)
			gens[i] = gen
			return err
		})
	}
	require.NoError(t, eg.Wait())

	run(t, gens, func(g *Generator[uint64]) error {
		_, err := g.AuthMul(2)
		return err
	})

	for i, trace := range traces {
		out := trace.String()
		require.Contains(t, out, "setup: field=FM64 k=32 s=32 parties=2")
		require.Contains(t, out, "AuthMul: size=2")
		require.Contains(t, out, "P"+comms[i].IDString())
	}
}

func TestTimingReport(t *testing.T) {
	gens := newSessions(t, 2, testParams)

	run(t, gens, func(g *Generator[uint64]) error {
		_, err := g.AuthMul(5)
		return err
	})

	var buf bytes.Buffer
	gens[0].Timing.Print(&buf, gens[0].comm.Stats())
	require.Contains(t, buf.String(), "AuthMul")
	require.Contains(t, buf.String(), "Total")
}
