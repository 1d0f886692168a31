package bincode

import (
	"io"
	"math"
	"unicode/utf8"
	"unsafe"
)

// Encoder writes bincode data to a byte buffer. O fixes the byte order of
// every multi-byte value it writes.
type Encoder[O ByteOrder] struct {
	buf    []byte
	cfg    Config
	budget budget
}

// NewEncoder creates a new Encoder with the given initial capacity and
// the default config.
func NewEncoder[O ByteOrder](capacity int) *Encoder[O] {
	return NewEncoderWithConfig[O](capacity, DefaultConfig())
}

// NewEncoderWithConfig creates a new Encoder with a custom config.
func NewEncoderWithConfig[O ByteOrder](capacity int, cfg Config) *Encoder[O] {
	return &Encoder[O]{
		buf:    make([]byte, 0, capacity),
		cfg:    cfg,
		budget: newBudget(cfg.Limit),
	}
}

// NewEncoderBuffer creates an Encoder that writes to an existing buffer.
// The buffer will be grown as needed.
func NewEncoderBuffer[O ByteOrder](buf []byte, cfg Config) *Encoder[O] {
	return &Encoder[O]{
		buf:    buf[:0], // reset length but keep capacity
		cfg:    cfg,
		budget: newBudget(cfg.Limit),
	}
}

// Reset resets the encoder for reuse, including its size accounting.
func (e *Encoder[O]) Reset() {
	e.buf = e.buf[:0]
	e.budget = newBudget(e.cfg.Limit)
}

// Bytes returns the encoded bytes.
func (e *Encoder[O]) Bytes() []byte {
	return e.buf
}

// Len returns the length of encoded data.
func (e *Encoder[O]) Len() int {
	return len(e.buf)
}

// WriteTo writes the encoded bytes to w. Write failures are returned as Io.
func (e *Encoder[O]) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(e.buf)
	if err == nil && n < len(e.buf) {
		err = io.ErrShortWrite
	}
	return int64(n), FromIO(err)
}

// Custom builds the error raised when a value cannot be encoded for a
// reason of its own.
func (e *Encoder[O]) Custom(msg any) error {
	return NewCustom(msg)
}

// grow ensures there's space for n more bytes
func (e *Encoder[O]) grow(n int) {
	if cap(e.buf)-len(e.buf) >= n {
		return
	}
	// Double capacity or add n, whichever is larger
	newCap := cap(e.buf) * 2
	if newCap < len(e.buf)+n {
		newCap = len(e.buf) + n
	}
	newBuf := make([]byte, len(e.buf), newCap)
	copy(newBuf, e.buf)
	e.buf = newBuf
}

// reserve charges n bytes against the size limit and makes room for them
func (e *Encoder[O]) reserve(n int) error {
	if err := e.budget.charge(uint64(n)); err != nil {
		return err
	}
	e.grow(n)
	return nil
}

// writeByte writes a single byte
func (e *Encoder[O]) writeByte(b byte) error {
	if err := e.reserve(1); err != nil {
		return err
	}
	e.buf = append(e.buf, b)
	return nil
}

// writeUint16 writes a uint16 in the configured byte order
func (e *Encoder[O]) writeUint16(v uint16) error {
	if err := e.reserve(2); err != nil {
		return err
	}
	e.buf = EndianOf[O]().AppendUint16(e.buf, v)
	return nil
}

// writeUint32 writes a uint32 in the configured byte order
func (e *Encoder[O]) writeUint32(v uint32) error {
	if err := e.reserve(4); err != nil {
		return err
	}
	e.buf = EndianOf[O]().AppendUint32(e.buf, v)
	return nil
}

// writeUint64 writes a uint64 in the configured byte order
func (e *Encoder[O]) writeUint64(v uint64) error {
	if err := e.reserve(8); err != nil {
		return err
	}
	e.buf = EndianOf[O]().AppendUint64(e.buf, v)
	return nil
}

// writePrefixed writes a u64 length followed by b, as one charge
func (e *Encoder[O]) writePrefixed(b []byte) error {
	if err := e.reserve(8 + len(b)); err != nil {
		return err
	}
	e.buf = EndianOf[O]().AppendUint64(e.buf, uint64(len(b)))
	e.buf = append(e.buf, b...)
	return nil
}

// EncodeBool writes a boolean as a single 0 or 1 byte
func (e *Encoder[O]) EncodeBool(v bool) error {
	if v {
		return e.writeByte(1)
	}
	return e.writeByte(0)
}

// EncodeUint8 writes a uint8
func (e *Encoder[O]) EncodeUint8(v uint8) error {
	return e.writeByte(v)
}

// EncodeUint16 writes a uint16
func (e *Encoder[O]) EncodeUint16(v uint16) error {
	return e.writeUint16(v)
}

// EncodeUint32 writes a uint32
func (e *Encoder[O]) EncodeUint32(v uint32) error {
	return e.writeUint32(v)
}

// EncodeUint64 writes a uint64
func (e *Encoder[O]) EncodeUint64(v uint64) error {
	return e.writeUint64(v)
}

// EncodeInt8 writes an int8
func (e *Encoder[O]) EncodeInt8(v int8) error {
	return e.writeByte(byte(v))
}

// EncodeInt16 writes an int16
func (e *Encoder[O]) EncodeInt16(v int16) error {
	return e.writeUint16(uint16(v))
}

// EncodeInt32 writes an int32
func (e *Encoder[O]) EncodeInt32(v int32) error {
	return e.writeUint32(uint32(v))
}

// EncodeInt64 writes an int64
func (e *Encoder[O]) EncodeInt64(v int64) error {
	return e.writeUint64(uint64(v))
}

// EncodeFloat32 writes a float32 value
func (e *Encoder[O]) EncodeFloat32(v float32) error {
	return e.writeUint32(math.Float32bits(v))
}

// EncodeFloat64 writes a float64 value
func (e *Encoder[O]) EncodeFloat64(v float64) error {
	return e.writeUint64(math.Float64bits(v))
}

// EncodeRune writes a char as its 1-4 byte UTF-8 encoding.
// Surrogates and values above utf8.MaxRune yield InvalidCharEncoding.
func (e *Encoder[O]) EncodeRune(r rune) error {
	if !utf8.ValidRune(r) {
		return New(InvalidCharEncoding{})
	}
	if err := e.reserve(utf8.RuneLen(r)); err != nil {
		return err
	}
	e.buf = utf8.AppendRune(e.buf, r)
	return nil
}

// EncodeString writes a u64 byte length followed by the string bytes.
// Strings that are not valid UTF-8 are rejected with InvalidUtf8Encoding.
func (e *Encoder[O]) EncodeString(v string) error {
	// Zero-copy string to bytes using unsafe
	b := unsafe.Slice(unsafe.StringData(v), len(v))
	if err := ValidateUTF8(b); err != nil {
		return New(InvalidUtf8Encoding{Err: err.(Utf8Error)})
	}
	return e.writePrefixed(b)
}

// EncodeBytes writes a u64 length followed by the raw bytes
func (e *Encoder[O]) EncodeBytes(v []byte) error {
	return e.writePrefixed(v)
}

// EncodeSeqLen writes the length prefix of a sequence or map.
// A negative length means the length is not known, which the format
// cannot represent.
func (e *Encoder[O]) EncodeSeqLen(length int) error {
	if length < 0 {
		return New(SequenceMustHaveLength{})
	}
	return e.writeUint64(uint64(length))
}

// EncodeTag writes the variant index of an enum
func (e *Encoder[O]) EncodeTag(variant uint32) error {
	return e.writeUint32(variant)
}

// EncodeOption writes the presence byte of an optional value. Call it,
// then encode the value if present is true.
func (e *Encoder[O]) EncodeOption(present bool) error {
	return e.EncodeBool(present)
}
