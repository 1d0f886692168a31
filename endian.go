package bincode

import "encoding/binary"

// Endian is the byte-order strategy used for multi-byte integers and
// floats. It reads, writes and appends fixed-width values.
type Endian interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// Little selects little-endian byte ordering.
type Little struct{}

// Big selects big-endian byte ordering.
type Big struct{}

// Native selects the byte ordering of the current machine.
type Native struct{}

// ByteOrder is satisfied only by the three marker types. Encoders and
// decoders take it as a type parameter, so the order is part of the
// instantiated type and is never stored in a value.
type ByteOrder interface {
	Little | Big | Native
	Endian() Endian
}

// Endian returns binary.LittleEndian.
func (Little) Endian() Endian { return binary.LittleEndian }

// Endian returns binary.BigEndian.
func (Big) Endian() Endian { return binary.BigEndian }

// Endian returns binary.NativeEndian.
func (Native) Endian() Endian { return binary.NativeEndian }

// EndianOf resolves a marker type to its strategy.
func EndianOf[O ByteOrder]() Endian {
	var o O
	return o.Endian()
}
