//
// io.go
//
// Copyright (c) 2023-2026 Markku Rossi
//
// All rights reserved.

package ot

// IO defines an I/O interface to communicate between peers.
type IO interface {
	// SendData sends binary data.
	SendData(val []byte) error

	// SendUint32 sends an uint32 value.
	SendUint32(val int) error

	// SendLabel sends a label value.
	SendLabel(val Label, data *LabelData) error

	// Flush flushes any pending data in the connection.
	Flush() error

	// ReceiveData receives binary data.
	ReceiveData() ([]byte, error)

	// ReceiveUint32 receives an uint32 value.
	ReceiveUint32() (int, error)

	// ReceiveLabel receives a label value.
	ReceiveLabel(val *Label, data *LabelData) error
}

// SendString sends a string value.
func SendString(io IO, str string) error {
	return io.SendData([]byte(str))
}

// ReceiveString receives a string value.
func ReceiveString(io IO) (string, error) {
	data, err := io.ReceiveData()
	if err != nil {
		return "", err
	}
	return string(data), nil
}
