//
// codec.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ring

import (
	"encoding/binary"
	"fmt"
)

// Encode serializes the elements in little-endian byte order.
func Encode[T Elem](x []T) []byte {
	size := Size[T]()
	buf := make([]byte, len(x)*size)
	if size == 4 {
		for i, v := range x {
			binary.LittleEndian.PutUint32(buf[i*4:], uint32(v))
		}
	} else {
		for i, v := range x {
			binary.LittleEndian.PutUint64(buf[i*8:], uint64(v))
		}
	}
	return buf
}

// Decode deserializes little-endian elements.
func Decode[T Elem](buf []byte) ([]T, error) {
	size := Size[T]()
	if len(buf)%size != 0 {
		return nil, fmt.Errorf("ring: invalid element data length %d",
			len(buf))
	}
	x := make([]T, len(buf)/size)
	if size == 4 {
		for i := range x {
			x[i] = T(binary.LittleEndian.Uint32(buf[i*4:]))
		}
	} else {
		for i := range x {
			x[i] = T(binary.LittleEndian.Uint64(buf[i*8:]))
		}
	}
	return x, nil
}
