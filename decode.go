package bincode

import (
	"bytes"
	"encoding"
	"reflect"
)

var binaryUnmarshalerType = reflect.TypeOf((*encoding.BinaryUnmarshaler)(nil)).Elem()

// Decode decodes bincode data into v, which must be a non-nil pointer.
// The layout of v's type determines what is read.
func (d *Decoder[O]) Decode(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return Customf("bincode: decode target must be a non-nil pointer, got %T", v)
	}
	return d.decodeIntoValue(rv.Elem())
}

// decodeIntoValue decodes into an addressable reflect.Value
func (d *Decoder[O]) decodeIntoValue(rv reflect.Value) error {
	if rv.Type() == timeType {
		t, err := d.DecodeTime()
		if err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(t))
		return nil
	}
	if u, ok := unmarshalerFor(rv); ok {
		data, err := d.DecodeBytes()
		if err != nil {
			return err
		}
		if err := u.UnmarshalBinary(data); err != nil {
			return asCustom(err)
		}
		return nil
	}

	switch rv.Kind() {
	case reflect.Bool:
		v, err := d.DecodeBool()
		if err != nil {
			return err
		}
		rv.SetBool(v)

	case reflect.Int8:
		v, err := d.DecodeInt8()
		if err != nil {
			return err
		}
		rv.SetInt(int64(v))
	case reflect.Int16:
		v, err := d.DecodeInt16()
		if err != nil {
			return err
		}
		rv.SetInt(int64(v))
	case reflect.Int32:
		v, err := d.DecodeInt32()
		if err != nil {
			return err
		}
		rv.SetInt(int64(v))
	case reflect.Int, reflect.Int64:
		v, err := d.DecodeInt64()
		if err != nil {
			return err
		}
		if rv.OverflowInt(v) {
			return Customf("bincode: value %d overflows %s", v, rv.Type())
		}
		rv.SetInt(v)

	case reflect.Uint8:
		v, err := d.DecodeUint8()
		if err != nil {
			return err
		}
		rv.SetUint(uint64(v))
	case reflect.Uint16:
		v, err := d.DecodeUint16()
		if err != nil {
			return err
		}
		rv.SetUint(uint64(v))
	case reflect.Uint32:
		v, err := d.DecodeUint32()
		if err != nil {
			return err
		}
		rv.SetUint(uint64(v))
	case reflect.Uint, reflect.Uint64:
		v, err := d.DecodeUint64()
		if err != nil {
			return err
		}
		if rv.OverflowUint(v) {
			return Customf("bincode: value %d overflows %s", v, rv.Type())
		}
		rv.SetUint(v)

	case reflect.Float32:
		v, err := d.DecodeFloat32()
		if err != nil {
			return err
		}
		rv.SetFloat(float64(v))
	case reflect.Float64:
		v, err := d.DecodeFloat64()
		if err != nil {
			return err
		}
		rv.SetFloat(v)

	case reflect.String:
		v, err := d.DecodeString()
		if err != nil {
			return err
		}
		rv.SetString(v)

	case reflect.Pointer:
		present, err := d.DecodeOption()
		if err != nil {
			return err
		}
		if !present {
			rv.Set(reflect.Zero(rv.Type()))
			return nil
		}
		// Allocate and decode
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		return d.decodeIntoValue(rv.Elem())

	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			v, err := d.DecodeBytes()
			if err != nil {
				return err
			}
			rv.SetBytes(v)
			return nil
		}
		return d.decodeIntoSlice(rv)

	case reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if err := d.decodeIntoValue(rv.Index(i)); err != nil {
				return err
			}
		}

	case reflect.Map:
		return d.decodeIntoMap(rv)

	case reflect.Struct:
		return d.decodeIntoStruct(rv)

	case reflect.Interface:
		_, err := d.DecodeAny()
		return err

	default:
		return Customf("bincode: unsupported type %s", rv.Type())
	}

	return nil
}

// unmarshalerFor returns the BinaryUnmarshaler behind an addressable rv
func unmarshalerFor(rv reflect.Value) (encoding.BinaryUnmarshaler, bool) {
	if rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface || !rv.CanAddr() {
		return nil, false
	}
	p := rv.Addr()
	if !p.Type().Implements(binaryUnmarshalerType) || !p.CanInterface() {
		return nil, false
	}
	return p.Interface().(encoding.BinaryUnmarshaler), true
}

// preallocLen bounds the capacity reserved for n elements of t
func preallocLen(n int, t reflect.Type) int {
	size := int(t.Size())
	if size == 0 {
		size = 1
	}
	if limit := maxPrealloc / size; n > limit {
		return limit
	}
	return n
}

// decodeIntoSlice decodes a length-prefixed sequence into a slice
func (d *Decoder[O]) decodeIntoSlice(rv reflect.Value) error {
	length, err := d.DecodeSeqLen()
	if err != nil {
		return err
	}

	elemType := rv.Type().Elem()
	slice := reflect.MakeSlice(rv.Type(), 0, preallocLen(length, elemType))
	for i := 0; i < length; i++ {
		elem := reflect.New(elemType).Elem()
		if err := d.decodeIntoValue(elem); err != nil {
			return err
		}
		slice = reflect.Append(slice, elem)
	}
	rv.Set(slice)
	return nil
}

// decodeIntoMap decodes a length-prefixed list of key-value pairs
func (d *Decoder[O]) decodeIntoMap(rv reflect.Value) error {
	length, err := d.DecodeSeqLen()
	if err != nil {
		return err
	}

	if rv.IsNil() {
		rv.Set(reflect.MakeMapWithSize(rv.Type(), preallocLen(length, rv.Type().Elem())))
	}

	keyType := rv.Type().Key()
	valType := rv.Type().Elem()

	for i := 0; i < length; i++ {
		key := reflect.New(keyType).Elem()
		if err := d.decodeIntoValue(key); err != nil {
			return err
		}

		val := reflect.New(valType).Elem()
		if err := d.decodeIntoValue(val); err != nil {
			return err
		}

		rv.SetMapIndex(key, val)
	}
	return nil
}

// decodeIntoStruct decodes struct fields in declaration order
func (d *Decoder[O]) decodeIntoStruct(rv reflect.Value) error {
	info := getStructInfo(rv.Type())

	for i := range info.fields {
		fi := &info.fields[i]
		fv := rv.FieldByIndex(fi.index)
		if fi.char {
			r, err := d.DecodeRune()
			if err != nil {
				return err
			}
			fv.SetInt(int64(r))
			continue
		}
		if err := d.decodeIntoValue(fv); err != nil {
			return err
		}
	}
	return nil
}

// Unmarshal decodes bincode data into v with the default config.
func Unmarshal[O ByteOrder](data []byte, v any) error {
	return UnmarshalWithConfig[O](data, v, DefaultConfig())
}

// UnmarshalWithConfig decodes bincode data into v with a custom config.
func UnmarshalWithConfig[O ByteOrder](data []byte, v any, cfg Config) error {
	r := bytes.NewReader(data)
	d := NewReaderDecoderWithConfig[O](r, cfg)
	if err := d.Decode(v); err != nil {
		return err
	}
	if cfg.RejectTrailing && r.Len() > 0 {
		return d.Custom("Slice had bytes remaining after deserialization")
	}
	return nil
}
