//
// pipe.go
//
// Copyright (c) 2023-2026 Markku Rossi
//
// All rights reserved.

package ot

import (
	"io"
)

var (
	_ IO = &Pipe{}
)

// Pipe implements the IO interface with an in-memory io.Pipe. It is
// the transport of the package tests; the parties run it from two
// goroutines.
type Pipe struct {
	hdr  [4]byte
	rBuf []byte
	wBuf []byte
	r    *io.PipeReader
	w    *io.PipeWriter
}

// NewPipe creates the two endpoints of an in-memory pipe.
func NewPipe() (*Pipe, *Pipe) {
	ar, aw := io.Pipe()
	br, bw := io.Pipe()

	return &Pipe{
			r: ar,
			w: bw,
		}, &Pipe{
			r: br,
			w: aw,
		}
}

func (p *Pipe) buffer(buf []byte, n int) []byte {
	if len(buf) < n {
		return make([]byte, n)
	}
	return buf
}

// SendByte sends a byte value.
func (p *Pipe) SendByte(val byte) error {
	p.hdr[0] = val
	_, err := p.w.Write(p.hdr[:1])
	return err
}

// SendData sends binary data.
func (p *Pipe) SendData(val []byte) error {
	p.wBuf = p.buffer(p.wBuf, 4+len(val))
	bo.PutUint32(p.wBuf, uint32(len(val)))
	copy(p.wBuf[4:], val)
	_, err := p.w.Write(p.wBuf[:4+len(val)])
	return err
}

// SendUint32 sends an uint32 value.
func (p *Pipe) SendUint32(val int) error {
	bo.PutUint32(p.hdr[:], uint32(val))
	_, err := p.w.Write(p.hdr[:4])
	return err
}

// SendLabel sends a label value.
func (p *Pipe) SendLabel(val Label, data *LabelData) error {
	_, err := p.w.Write(val.Bytes(data))
	return err
}

// Flush flushes any pending data in the connection.
func (p *Pipe) Flush() error {
	return nil
}

// Drain consumes all input from the pipe.
func (p *Pipe) Drain() error {
	_, err := io.Copy(io.Discard, p.r)
	return err
}

// Close closes the pipe.
func (p *Pipe) Close() error {
	return p.w.Close()
}

// ReceiveByte receives a byte value.
func (p *Pipe) ReceiveByte() (byte, error) {
	_, err := io.ReadFull(p.r, p.hdr[:1])
	if err != nil {
		return 0, err
	}
	return p.hdr[0], nil
}

// ReceiveData receives binary data. The returned buffer is valid
// until the next receive.
func (p *Pipe) ReceiveData() ([]byte, error) {
	_, err := io.ReadFull(p.r, p.hdr[:4])
	if err != nil {
		return nil, err
	}
	l := int(bo.Uint32(p.hdr[:]))
	p.rBuf = p.buffer(p.rBuf, l)
	_, err = io.ReadFull(p.r, p.rBuf[:l])
	if err != nil {
		return nil, err
	}
	return p.rBuf[:l], nil
}

// ReceiveUint32 receives an uint32 value.
func (p *Pipe) ReceiveUint32() (int, error) {
	_, err := io.ReadFull(p.r, p.hdr[:4])
	if err != nil {
		return 0, err
	}
	return int(bo.Uint32(p.hdr[:])), nil
}

// ReceiveLabel receives a label value.
func (p *Pipe) ReceiveLabel(val *Label, data *LabelData) error {
	_, err := io.ReadFull(p.r, data[:])
	if err != nil {
		return err
	}
	val.SetData(data)
	return nil
}
