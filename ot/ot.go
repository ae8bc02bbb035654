//
// ot.go
//
// Copyright (c) 2023-2026 Markku Rossi
//
// All rights reserved.

// Package ot implements the oblivious transfer substrate of the
// preprocessing protocols: Chou-Orlandi base OT and maliciously
// secure IKNP correlated OT extension. The extension output is
// consumed as 128-bit MAC labels and as hashed random message pairs.
package ot

// OT defines the base 1-out-of-2 oblivious transfer. The sender
// transfers the message pairs (m0[i], m1[i]); the receiver learns
// m0[i] or m1[i] according to its selection bit and nothing about the
// other message. The higher level protocol must ensure that the
// message and selection array lengths match.
type OT interface {
	// InitSender initializes the OT sender.
	InitSender(io IO) error

	// InitReceiver initializes the OT receiver.
	InitReceiver(io IO) error

	// Send transfers the message pairs (m0[i], m1[i]).
	Send(m0, m1 []Label) error

	// Receive receives the selected message of every pair into
	// result.
	Receive(flags []bool, result []Label) error
}
