package bincode

import (
	"math"
	"time"
)

const nanosPerSecond = 1_000_000_000

// EncodeTime encodes t as the offset from the Unix epoch: u64 seconds
// followed by u32 nanoseconds. Times before the epoch cannot be
// represented and yield a Custom error.
func (e *Encoder[O]) EncodeTime(t time.Time) error {
	sec := t.Unix()
	if sec < 0 {
		return e.Custom("SystemTime must be later than UNIX_EPOCH")
	}
	if err := e.reserve(12); err != nil {
		return err
	}
	order := EndianOf[O]()
	e.buf = order.AppendUint64(e.buf, uint64(sec))
	e.buf = order.AppendUint32(e.buf, uint32(t.Nanosecond()))
	return nil
}

// DecodeTime decodes a time written by EncodeTime.
// Returns the time in UTC. Nanoseconds of a full second or more carry into
// the seconds, and offsets beyond the range of time.Time yield a Custom
// error.
func (d *Decoder[O]) DecodeTime() (time.Time, error) {
	sec, err := d.readUint64()
	if err != nil {
		return time.Time{}, err
	}
	nsec, err := d.readUint32()
	if err != nil {
		return time.Time{}, err
	}
	carry := uint64(nsec / nanosPerSecond)
	if sec > math.MaxInt64-carry {
		return time.Time{}, d.Custom("overflow deserializing SystemTime epoch offset")
	}
	return time.Unix(int64(sec+carry), int64(nsec%nanosPerSecond)).UTC(), nil
}

// MarshalTime encodes a time.Time to bincode bytes.
// Returns a copy of the encoded bytes (safe to retain).
func MarshalTime[O ByteOrder](t time.Time) ([]byte, error) {
	e := NewEncoder[O](12)
	if err := e.EncodeTime(t); err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}

// UnmarshalTime decodes bincode bytes written by MarshalTime.
// Returns the time in UTC.
func UnmarshalTime[O ByteOrder](data []byte) (time.Time, error) {
	return NewDecoder[O](data).DecodeTime()
}
