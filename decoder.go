package bincode

import (
	"bytes"
	"errors"
	"io"
	"math"
	"unicode/utf8"
)

// maxPrealloc bounds the allocation made up front for a length-prefixed
// payload. Longer payloads grow as bytes actually arrive.
const maxPrealloc = 64 << 10

// Decoder reads bincode data from an io.Reader. O fixes the byte order of
// every multi-byte value it reads.
type Decoder[O ByteOrder] struct {
	r       io.Reader
	cfg     Config
	budget  budget
	scratch [8]byte
}

// NewDecoder creates a new Decoder for the given data with default config
func NewDecoder[O ByteOrder](data []byte) *Decoder[O] {
	return NewReaderDecoderWithConfig[O](bytes.NewReader(data), DefaultConfig())
}

// NewDecoderWithConfig creates a new Decoder for data with custom config
func NewDecoderWithConfig[O ByteOrder](data []byte, cfg Config) *Decoder[O] {
	return NewReaderDecoderWithConfig[O](bytes.NewReader(data), cfg)
}

// NewReaderDecoder creates a new Decoder reading from r with default config
func NewReaderDecoder[O ByteOrder](r io.Reader) *Decoder[O] {
	return NewReaderDecoderWithConfig[O](r, DefaultConfig())
}

// NewReaderDecoderWithConfig creates a new Decoder reading from r with custom config
func NewReaderDecoderWithConfig[O ByteOrder](r io.Reader, cfg Config) *Decoder[O] {
	return &Decoder[O]{
		r:      r,
		cfg:    cfg,
		budget: newBudget(cfg.Limit),
	}
}

// Reset resets the decoder to read from r, including its size accounting
func (d *Decoder[O]) Reset(r io.Reader) {
	d.r = r
	d.budget = newBudget(d.cfg.Limit)
}

// BytesRead returns the number of bytes consumed so far
func (d *Decoder[O]) BytesRead() uint64 {
	return d.budget.used
}

// Custom builds the error raised when a decoded value is rejected for a
// reason of its own.
func (d *Decoder[O]) Custom(msg any) error {
	return NewCustom(msg)
}

// readFull fills d.scratch[:n]
func (d *Decoder[O]) readFull(n int) ([]byte, error) {
	if err := d.budget.charge(uint64(n)); err != nil {
		return nil, err
	}
	b := d.scratch[:n]
	if _, err := io.ReadFull(d.r, b); err != nil {
		return nil, ioErr(err)
	}
	return b, nil
}

// ioErr reports a short read as io.ErrUnexpectedEOF: a value was expected
// even when no byte of it arrived.
func ioErr(err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return FromIO(err)
}

// readByte reads a single byte
func (d *Decoder[O]) readByte() (byte, error) {
	b, err := d.readFull(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// readUint16 reads a uint16 in the configured byte order
func (d *Decoder[O]) readUint16() (uint16, error) {
	b, err := d.readFull(2)
	if err != nil {
		return 0, err
	}
	return EndianOf[O]().Uint16(b), nil
}

// readUint32 reads a uint32 in the configured byte order
func (d *Decoder[O]) readUint32() (uint32, error) {
	b, err := d.readFull(4)
	if err != nil {
		return 0, err
	}
	return EndianOf[O]().Uint32(b), nil
}

// readUint64 reads a uint64 in the configured byte order
func (d *Decoder[O]) readUint64() (uint64, error) {
	b, err := d.readFull(8)
	if err != nil {
		return 0, err
	}
	return EndianOf[O]().Uint64(b), nil
}

// readBytes reads n bytes into a new slice. The whole length is charged
// before anything is allocated.
func (d *Decoder[O]) readBytes(n uint64) ([]byte, error) {
	if err := d.budget.charge(n); err != nil {
		return nil, err
	}
	if n <= maxPrealloc {
		b := make([]byte, n)
		if _, err := io.ReadFull(d.r, b); err != nil {
			return nil, ioErr(err)
		}
		return b, nil
	}
	var buf bytes.Buffer
	buf.Grow(maxPrealloc)
	if _, err := io.CopyN(&buf, d.r, int64(n)); err != nil {
		return nil, ioErr(err)
	}
	return buf.Bytes(), nil
}

// readLen reads a u64 length prefix
func (d *Decoder[O]) readLen() (uint64, error) {
	return d.readUint64()
}

// DecodeBool reads a bool encoded as a 0 or 1 byte
func (d *Decoder[O]) DecodeBool() (bool, error) {
	b, err := d.readByte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, New(InvalidBoolEncoding{Value: b})
	}
}

// DecodeUint8 reads a uint8
func (d *Decoder[O]) DecodeUint8() (uint8, error) {
	return d.readByte()
}

// DecodeUint16 reads a uint16
func (d *Decoder[O]) DecodeUint16() (uint16, error) {
	return d.readUint16()
}

// DecodeUint32 reads a uint32
func (d *Decoder[O]) DecodeUint32() (uint32, error) {
	return d.readUint32()
}

// DecodeUint64 reads a uint64
func (d *Decoder[O]) DecodeUint64() (uint64, error) {
	return d.readUint64()
}

// DecodeInt8 reads an int8
func (d *Decoder[O]) DecodeInt8() (int8, error) {
	b, err := d.readByte()
	return int8(b), err
}

// DecodeInt16 reads an int16
func (d *Decoder[O]) DecodeInt16() (int16, error) {
	v, err := d.readUint16()
	return int16(v), err
}

// DecodeInt32 reads an int32
func (d *Decoder[O]) DecodeInt32() (int32, error) {
	v, err := d.readUint32()
	return int32(v), err
}

// DecodeInt64 reads an int64
func (d *Decoder[O]) DecodeInt64() (int64, error) {
	v, err := d.readUint64()
	return int64(v), err
}

// DecodeFloat32 reads a float32
func (d *Decoder[O]) DecodeFloat32() (float32, error) {
	v, err := d.readUint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// DecodeFloat64 reads a float64
func (d *Decoder[O]) DecodeFloat64() (float64, error) {
	v, err := d.readUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// DecodeRune reads a char stored as 1-4 UTF-8 bytes. The leading byte
// determines how many bytes follow.
func (d *Decoder[O]) DecodeRune() (rune, error) {
	lead, err := d.readByte()
	if err != nil {
		return 0, err
	}
	if lead < utf8.RuneSelf {
		return rune(lead), nil
	}
	width := seqWidth(lead)
	if width == 0 {
		return 0, New(InvalidCharEncoding{})
	}
	var buf [utf8.UTFMax]byte
	buf[0] = lead
	rest, err := d.readFull(width - 1)
	if err != nil {
		return 0, err
	}
	copy(buf[1:], rest)
	r, size := utf8.DecodeRune(buf[:width])
	if r == utf8.RuneError && size <= 1 || size != width {
		return 0, New(InvalidCharEncoding{})
	}
	return r, nil
}

// DecodeString reads a u64 length and that many bytes of UTF-8
func (d *Decoder[O]) DecodeString() (string, error) {
	b, err := d.DecodeBytes()
	if err != nil {
		return "", err
	}
	if err := ValidateUTF8(b); err != nil {
		return "", New(InvalidUtf8Encoding{Err: err.(Utf8Error)})
	}
	return string(b), nil
}

// DecodeBytes reads a u64 length and that many raw bytes
func (d *Decoder[O]) DecodeBytes() ([]byte, error) {
	n, err := d.readLen()
	if err != nil {
		return nil, err
	}
	return d.readBytes(n)
}

// DecodeSeqLen reads the length prefix of a sequence or map. Lengths that
// do not fit in an int yield SizeLimit.
func (d *Decoder[O]) DecodeSeqLen() (int, error) {
	n, err := d.readLen()
	if err != nil {
		return 0, err
	}
	if n > math.MaxInt {
		return 0, New(SizeLimit{})
	}
	return int(n), nil
}

// DecodeTag reads an enum variant index and checks it against the number
// of variants the target enum has.
func (d *Decoder[O]) DecodeTag(variants uint32) (uint32, error) {
	tag, err := d.readUint32()
	if err != nil {
		return 0, err
	}
	if tag >= variants {
		return 0, New(InvalidTagEncoding{Tag: uint64(tag)})
	}
	return tag, nil
}

// DecodeOption reads the presence byte of an optional value.
// A byte other than 0 or 1 is an invalid tag.
func (d *Decoder[O]) DecodeOption() (bool, error) {
	b, err := d.readByte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, New(InvalidTagEncoding{Tag: uint64(b)})
	}
}

// DecodeAny always fails: the format carries no type information, so a
// value can only be decoded into a known type.
func (d *Decoder[O]) DecodeAny() (any, error) {
	return nil, New(DeserializeAnyNotSupported{})
}
