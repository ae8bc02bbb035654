//
// pipe.go
//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"io"
)

// Pipe creates two connection endpoints joined by in-memory pipes.
// Data sent to one endpoint is received from the other. The comm
// package builds its test meshes from pipes; the endpoints carry the
// same buffered writer goroutines as network connections so the
// protocol choreography is exercised unchanged.
func Pipe() (*Conn, *Conn) {
	var a, b pipeEnd

	a.r, b.w = io.Pipe()
	b.r, a.w = io.Pipe()

	return NewConn(&a), NewConn(&b)
}

type pipeEnd struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func (p *pipeEnd) Read(data []byte) (int, error) {
	return p.r.Read(data)
}

func (p *pipeEnd) Write(data []byte) (int, error) {
	return p.w.Write(data)
}

func (p *pipeEnd) Close() error {
	if err := p.r.Close(); err != nil {
		return err
	}
	return p.w.Close()
}
