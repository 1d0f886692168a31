package bincode

import (
	"encoding"
	"reflect"
	"sync"
	"time"
)

var (
	timeType            = reflect.TypeOf(time.Time{})
	binaryMarshalerType = reflect.TypeOf((*encoding.BinaryMarshaler)(nil)).Elem()
)

// Encode encodes any Go value to bincode.
func (e *Encoder[O]) Encode(v any) error {
	// Fast paths for common types to avoid reflection
	switch val := v.(type) {
	case bool:
		return e.EncodeBool(val)
	case int:
		return e.EncodeInt64(int64(val))
	case int64:
		return e.EncodeInt64(val)
	case int32:
		return e.EncodeInt32(val)
	case uint:
		return e.EncodeUint64(uint64(val))
	case uint64:
		return e.EncodeUint64(val)
	case uint32:
		return e.EncodeUint32(val)
	case uint8:
		return e.EncodeUint8(val)
	case float64:
		return e.EncodeFloat64(val)
	case float32:
		return e.EncodeFloat32(val)
	case string:
		return e.EncodeString(val)
	case []byte:
		return e.EncodeBytes(val)
	case time.Time:
		return e.EncodeTime(val)
	}
	// Fall back to reflection for other types
	return e.encodeValue(reflect.ValueOf(v))
}

// encodeValue encodes a reflect.Value
func (e *Encoder[O]) encodeValue(rv reflect.Value) error {
	// A nil interface has no type to encode
	if !rv.IsValid() {
		return Customf("bincode: unsupported type %v", nil)
	}

	if rv.Type() == timeType && rv.CanInterface() {
		return e.EncodeTime(rv.Interface().(time.Time))
	}
	if m, ok := marshalerFor(rv); ok {
		return e.encodeMarshaler(m)
	}

	switch rv.Kind() {
	case reflect.Bool:
		return e.EncodeBool(rv.Bool())

	case reflect.Int8:
		return e.EncodeInt8(int8(rv.Int()))
	case reflect.Int16:
		return e.EncodeInt16(int16(rv.Int()))
	case reflect.Int32:
		return e.EncodeInt32(int32(rv.Int()))
	case reflect.Int, reflect.Int64:
		return e.EncodeInt64(rv.Int())

	case reflect.Uint8:
		return e.EncodeUint8(uint8(rv.Uint()))
	case reflect.Uint16:
		return e.EncodeUint16(uint16(rv.Uint()))
	case reflect.Uint32:
		return e.EncodeUint32(uint32(rv.Uint()))
	case reflect.Uint, reflect.Uint64:
		return e.EncodeUint64(rv.Uint())

	case reflect.Float32:
		return e.EncodeFloat32(float32(rv.Float()))
	case reflect.Float64:
		return e.EncodeFloat64(rv.Float())

	case reflect.String:
		return e.EncodeString(rv.String())

	case reflect.Pointer:
		// Pointers are optional values
		if rv.IsNil() {
			return e.EncodeOption(false)
		}
		if err := e.EncodeOption(true); err != nil {
			return err
		}
		return e.encodeValue(rv.Elem())

	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return e.EncodeBytes(rv.Bytes())
		}
		if err := e.EncodeSeqLen(rv.Len()); err != nil {
			return err
		}
		return e.encodeElems(rv)

	case reflect.Array:
		// Fixed-size arrays are tuples: no length prefix
		return e.encodeElems(rv)

	case reflect.Map:
		return e.encodeMap(rv)

	case reflect.Struct:
		return e.encodeStruct(rv)

	case reflect.Interface:
		if rv.IsNil() {
			return Customf("bincode: unsupported type %v", nil)
		}
		return e.encodeValue(rv.Elem())

	case reflect.Chan:
		return New(SequenceMustHaveLength{})

	case reflect.Func:
		if isSeqFunc(rv.Type()) {
			return New(SequenceMustHaveLength{})
		}
		return Customf("bincode: unsupported type %s", rv.Type())

	default:
		return Customf("bincode: unsupported type %s", rv.Type())
	}
}

// isSeqFunc reports whether t has the shape of an iter.Seq or iter.Seq2:
// func(yield func(...) bool).
func isSeqFunc(t reflect.Type) bool {
	if t.NumIn() != 1 || t.NumOut() != 0 {
		return false
	}
	yield := t.In(0)
	return yield.Kind() == reflect.Func &&
		yield.NumOut() == 1 && yield.Out(0).Kind() == reflect.Bool &&
		yield.NumIn() >= 1 && yield.NumIn() <= 2
}

// marshalerFor returns rv as an encoding.BinaryMarshaler when its type or
// its pointer type implements it. Pointers themselves are left to the
// option encoding.
func marshalerFor(rv reflect.Value) (encoding.BinaryMarshaler, bool) {
	t := rv.Type()
	if t.Kind() == reflect.Pointer || t.Kind() == reflect.Interface || !rv.CanInterface() {
		return nil, false
	}
	if t.Implements(binaryMarshalerType) {
		return rv.Interface().(encoding.BinaryMarshaler), true
	}
	if reflect.PointerTo(t).Implements(binaryMarshalerType) {
		if rv.CanAddr() {
			return rv.Addr().Interface().(encoding.BinaryMarshaler), true
		}
		p := reflect.New(t)
		p.Elem().Set(rv)
		return p.Interface().(encoding.BinaryMarshaler), true
	}
	return nil, false
}

// encodeMarshaler writes the output of MarshalBinary as a byte string
func (e *Encoder[O]) encodeMarshaler(m encoding.BinaryMarshaler) error {
	data, err := m.MarshalBinary()
	if err != nil {
		return asCustom(err)
	}
	return e.EncodeBytes(data)
}

// encodeElems encodes the elements of a slice or array in order
func (e *Encoder[O]) encodeElems(rv reflect.Value) error {
	length := rv.Len()
	for i := 0; i < length; i++ {
		if err := e.encodeValue(rv.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

// encodeMap encodes a map as a length followed by key-value pairs
func (e *Encoder[O]) encodeMap(rv reflect.Value) error {
	if err := e.EncodeSeqLen(rv.Len()); err != nil {
		return err
	}

	// Use MapRange to avoid allocating a keys slice
	iter := rv.MapRange()
	for iter.Next() {
		if err := e.encodeValue(iter.Key()); err != nil {
			return err
		}
		if err := e.encodeValue(iter.Value()); err != nil {
			return err
		}
	}
	return nil
}

// encodeStruct encodes struct fields in declaration order, without names
func (e *Encoder[O]) encodeStruct(rv reflect.Value) error {
	info := getStructInfo(rv.Type())

	for i := range info.fields {
		fi := &info.fields[i]
		fv := rv.FieldByIndex(fi.index)
		var err error
		if fi.char {
			err = e.EncodeRune(rune(fv.Int()))
		} else {
			err = e.encodeValue(fv)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// bufferPool recycles encode buffers across Marshal calls
var bufferPool = sync.Pool{
	New: func() any {
		b := make([]byte, 0, 256)
		return &b
	},
}

// Marshal encodes a Go value to bincode bytes with the default config.
// The returned bytes are a copy and safe to retain.
func Marshal[O ByteOrder](v any) ([]byte, error) {
	return MarshalWithConfig[O](v, DefaultConfig())
}

// MarshalWithConfig encodes a Go value to bincode bytes with a custom config.
func MarshalWithConfig[O ByteOrder](v any, cfg Config) ([]byte, error) {
	bp := bufferPool.Get().(*[]byte)
	e := NewEncoderBuffer[O](*bp, cfg)

	err := e.Encode(v)
	var result []byte
	if err == nil {
		// Copy result before returning the buffer to the pool
		result = make([]byte, len(e.buf))
		copy(result, e.buf)
	}
	*bp = e.buf[:0]
	bufferPool.Put(bp)
	return result, err
}

// SerializedSize returns the number of bytes Marshal would produce for v.
func SerializedSize[O ByteOrder](v any) (uint64, error) {
	b, err := Marshal[O](v)
	if err != nil {
		return 0, err
	}
	return uint64(len(b)), nil
}
