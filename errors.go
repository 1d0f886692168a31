package bincode

import (
	"errors"
	"fmt"
	"reflect"
	"unicode/utf8"
)

// ErrorKind classifies a failure. The set of kinds is closed: only the
// variant types declared in this file implement it.
type ErrorKind interface {
	message() string
	description() string
	cause() error
	sealed()
}

// Io is returned when the reader or writer used during (de)serialization
// reports a fault. Err is the reader/writer error as it was received.
type Io struct {
	Err error
}

// InvalidUtf8Encoding is returned when a string payload is not valid UTF-8.
type InvalidUtf8Encoding struct {
	Err Utf8Error
}

// InvalidBoolEncoding is returned when a bool was encoded as neither 0 nor 1.
type InvalidBoolEncoding struct {
	Value uint8
}

// InvalidCharEncoding is returned when a char payload cannot be decoded.
type InvalidCharEncoding struct{}

// InvalidTagEncoding is returned when an enum tag is outside the valid range.
type InvalidTagEncoding struct {
	Tag uint64
}

// DeserializeAnyNotSupported is returned when a value is decoded without a
// concrete target type. The wire format is not self-describing.
type DeserializeAnyNotSupported struct{}

// SizeLimit is returned when (de)serializing exceeds Config.Limit.
type SizeLimit struct{}

// SequenceMustHaveLength is returned when encoding a sequence whose length
// is not known ahead of time (channels, iterator functions).
type SequenceMustHaveLength struct{}

// Custom carries a free-form message raised by the traversal or user hooks.
type Custom struct {
	Msg string
}

func (Io) sealed()                         {}
func (InvalidUtf8Encoding) sealed()        {}
func (InvalidBoolEncoding) sealed()        {}
func (InvalidCharEncoding) sealed()        {}
func (InvalidTagEncoding) sealed()         {}
func (DeserializeAnyNotSupported) sealed() {}
func (SizeLimit) sealed()                  {}
func (SequenceMustHaveLength) sealed()     {}
func (Custom) sealed()                     {}

func (k Io) message() string { return fmt.Sprintf("io error: %v", k.Err) }
func (k InvalidUtf8Encoding) message() string {
	return fmt.Sprintf("string is not valid utf8: %v", k.Err)
}
func (k InvalidBoolEncoding) message() string {
	return fmt.Sprintf("invalid u8 while decoding bool, expected 0 or 1, found %d", k.Value)
}
func (InvalidCharEncoding) message() string { return "char is not valid" }
func (k InvalidTagEncoding) message() string {
	return fmt.Sprintf("tag for enum is not valid: %d", k.Tag)
}
func (DeserializeAnyNotSupported) message() string {
	return "Bincode does not support the serde::Deserializer::deserialize_any method"
}
func (SizeLimit) message() string              { return "the size limit has been reached" }
func (SequenceMustHaveLength) message() string { return "sequence must have length" }
func (k Custom) message() string               { return k.Msg }

func (Io) description() string                  { return "io error" }
func (InvalidUtf8Encoding) description() string { return "string is not valid utf8" }
func (InvalidBoolEncoding) description() string { return "invalid u8 while decoding bool" }
func (InvalidCharEncoding) description() string { return "char is not valid" }
func (InvalidTagEncoding) description() string  { return "tag for enum is not valid" }
func (DeserializeAnyNotSupported) description() string {
	return "Bincode doesn't support serde::Deserializer::deserialize_any"
}
func (SizeLimit) description() string { return "the size limit has been reached" }
func (SequenceMustHaveLength) description() string {
	return "Bincode can only encode sequences and maps that have a knowable size ahead of time"
}
func (k Custom) description() string { return k.Msg }

// No kind reports a further cause, Io included.
func (Io) cause() error                         { return nil }
func (InvalidUtf8Encoding) cause() error        { return nil }
func (InvalidBoolEncoding) cause() error        { return nil }
func (InvalidCharEncoding) cause() error        { return nil }
func (InvalidTagEncoding) cause() error         { return nil }
func (DeserializeAnyNotSupported) cause() error { return nil }
func (SizeLimit) cause() error                  { return nil }
func (SequenceMustHaveLength) cause() error     { return nil }
func (Custom) cause() error                     { return nil }

// Error is the only error type returned by this package. It owns exactly
// one ErrorKind and is never modified after construction.
type Error struct {
	kind ErrorKind
}

// Sentinels for the kinds that carry no payload, for use with errors.Is.
var (
	ErrInvalidCharEncoding        = New(InvalidCharEncoding{})
	ErrDeserializeAnyNotSupported = New(DeserializeAnyNotSupported{})
	ErrSizeLimit                  = New(SizeLimit{})
	ErrSequenceMustHaveLength     = New(SequenceMustHaveLength{})
)

// New wraps kind in an Error.
func New(kind ErrorKind) *Error {
	return &Error{kind: kind}
}

// FromIO converts a reader/writer failure into an Io error. A nil err
// yields nil and an err that is already an *Error is returned as is.
func FromIO(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return New(Io{Err: err})
}

// NewCustom builds a Custom error whose message is fmt.Sprint(msg).
func NewCustom(msg any) *Error {
	return New(Custom{Msg: fmt.Sprint(msg)})
}

// Customf builds a Custom error from a format string.
func Customf(format string, args ...any) *Error {
	return New(Custom{Msg: fmt.Sprintf(format, args...)})
}

// asCustom converts an error returned by a user hook, keeping it unchanged
// when it already is an *Error.
func asCustom(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return NewCustom(err)
}

// Kind returns the failure classification.
func (e *Error) Kind() ErrorKind {
	return e.kind
}

func (e *Error) Error() string {
	return e.kind.message()
}

// Description returns the short, per-kind summary. Unlike Error it does
// not include the payload, except for Custom.
func (e *Error) Description() string {
	return e.kind.description()
}

// Cause always returns nil. Io does not expose the reader error as a
// chained cause; inspect Kind().(Io).Err instead.
func (e *Error) Cause() error {
	return e.kind.cause()
}

// Is reports whether target is an *Error of the same kind. Payloads are
// not compared.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return reflect.TypeOf(e.kind) == reflect.TypeOf(t.kind)
}

// IsKind reports whether err is an *Error of kind K and returns the kind.
func IsKind[K ErrorKind](err error) (K, bool) {
	var e *Error
	if errors.As(err, &e) {
		k, ok := e.kind.(K)
		return k, ok
	}
	var zero K
	return zero, false
}

// Utf8Error describes where UTF-8 validation failed. ErrorLen is zero
// when the input ended in the middle of a sequence.
type Utf8Error struct {
	ValidUpTo int
	ErrorLen  int
}

func (e Utf8Error) Error() string {
	if e.ErrorLen > 0 {
		return fmt.Sprintf("invalid utf-8 sequence of %d bytes from index %d", e.ErrorLen, e.ValidUpTo)
	}
	return fmt.Sprintf("incomplete utf-8 byte sequence from index %d", e.ValidUpTo)
}

// ValidateUTF8 returns a Utf8Error locating the first invalid sequence in b.
func ValidateUTF8(b []byte) error {
	if utf8.Valid(b) {
		return nil
	}
	i := 0
	for i < len(b) {
		if b[i] < utf8.RuneSelf {
			i++
			continue
		}
		r, size := utf8.DecodeRune(b[i:])
		if r != utf8.RuneError || size > 1 {
			i += size
			continue
		}
		if !utf8.FullRune(b[i:]) && validPrefix(b[i:]) {
			return Utf8Error{ValidUpTo: i}
		}
		return Utf8Error{ValidUpTo: i, ErrorLen: invalidLen(b[i:])}
	}
	return nil
}

// validPrefix reports whether b is a truncated but otherwise well-formed
// multi-byte sequence.
func validPrefix(b []byte) bool {
	width := seqWidth(b[0])
	if width == 0 {
		return false
	}
	for j := 1; j < len(b) && j < width; j++ {
		if !continuationOK(b[0], j, b[j]) {
			return false
		}
	}
	return true
}

// invalidLen counts the bytes that form the maximal invalid prefix starting
// at b[0], at least 1.
func invalidLen(b []byte) int {
	width := seqWidth(b[0])
	if width == 0 {
		return 1
	}
	n := 1
	for n < width && n < len(b) && continuationOK(b[0], n, b[n]) {
		n++
	}
	return n
}

func seqWidth(lead byte) int {
	switch {
	case lead >= 0xC2 && lead <= 0xDF:
		return 2
	case lead >= 0xE0 && lead <= 0xEF:
		return 3
	case lead >= 0xF0 && lead <= 0xF4:
		return 4
	default:
		return 0
	}
}

// continuationOK checks the byte at position pos of a sequence starting
// with lead, including the narrowed ranges for the second byte.
func continuationOK(lead byte, pos int, c byte) bool {
	if pos == 1 {
		switch lead {
		case 0xE0:
			return c >= 0xA0 && c <= 0xBF
		case 0xED:
			return c >= 0x80 && c <= 0x9F
		case 0xF0:
			return c >= 0x90 && c <= 0xBF
		case 0xF4:
			return c >= 0x80 && c <= 0x8F
		}
	}
	return c >= 0x80 && c <= 0xBF
}
