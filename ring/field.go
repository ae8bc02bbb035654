//
// field.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package ring implements fixed-width modular arithmetic over Z_2^w
// for the SPDZ2k preprocessing protocols. All arithmetic wraps at the
// element width; bulk operations are elementwise over flat arrays and
// have no shared mutable state.
package ring

import (
	"fmt"
)

// Elem constrains the supported ring element types. The element width
// fixes the ring: uint32 is Z_2^32 and uint64 is Z_2^64.
type Elem interface {
	~uint32 | ~uint64
}

// FieldType identifies a supported ring width. It is selected once at
// session setup and must match the element type instantiating the
// generic protocols.
type FieldType int8

// Supported ring widths.
const (
	FM32 FieldType = iota + 1
	FM64
)

func (t FieldType) String() string {
	switch t {
	case FM32:
		return "FM32"
	case FM64:
		return "FM64"
	}
	return fmt.Sprintf("{FieldType %d}", int8(t))
}

// Bits returns the ring width in bits.
func (t FieldType) Bits() uint {
	switch t {
	case FM32:
		return 32
	case FM64:
		return 64
	}
	panic(fmt.Sprintf("ring: invalid field type %v", int8(t)))
}

// Bytes returns the ring element size in bytes.
func (t FieldType) Bytes() int {
	return int(t.Bits() / 8)
}

// Size returns the element size of T in bytes.
func Size[T Elem]() int {
	return FieldOf[T]().Bytes()
}

// Bits returns the element width of T in bits.
func Bits[T Elem]() uint {
	return FieldOf[T]().Bits()
}

// FieldOf returns the FieldType tag matching the element type T.
func FieldOf[T Elem]() FieldType {
	var v T
	switch any(v).(type) {
	case uint32:
		return FM32
	default:
		return FM64
	}
}
