package bincode

import (
	"encoding/binary"
	"math"
	"reflect"
	"slices"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestMarkersResolveToStrategies(t *testing.T) {
	require.Equal(t, binary.LittleEndian, EndianOf[Little]())
	require.Equal(t, binary.BigEndian, EndianOf[Big]())
	require.Equal(t, binary.NativeEndian, EndianOf[Native]())

	// a marker always resolves to the same strategy
	require.Equal(t, EndianOf[Little](), Little{}.Endian())
	require.Equal(t, EndianOf[Big](), Big{}.Endian())
	require.Equal(t, EndianOf[Native](), Native{}.Endian())
}

func TestStrategyTypesAreDistinct(t *testing.T) {
	types := []reflect.Type{
		reflect.TypeOf(EndianOf[Little]()),
		reflect.TypeOf(EndianOf[Big]()),
		reflect.TypeOf(EndianOf[Native]()),
	}
	for i := range types {
		for j := i + 1; j < len(types); j++ {
			require.NotEqual(t, types[i], types[j])
		}
	}
}

func TestMarkersAreZeroSized(t *testing.T) {
	require.Zero(t, unsafe.Sizeof(Little{}))
	require.Zero(t, unsafe.Sizeof(Big{}))
	require.Zero(t, unsafe.Sizeof(Native{}))
}

func TestNativeMatchesHost(t *testing.T) {
	var x uint16 = 0x0102
	host := unsafe.Slice((*byte)(unsafe.Pointer(&x)), 2)

	e := NewEncoder[Native](2)
	require.NoError(t, e.EncodeUint16(x))
	require.Equal(t, host, e.Bytes())
}

func reversed(b []byte) []byte {
	r := slices.Clone(b)
	slices.Reverse(r)
	return r
}

func TestLittleAndBigAreReversals(t *testing.T) {
	encodeBoth := func(t *testing.T, fn func(le *Encoder[Little], be *Encoder[Big]) error) {
		t.Helper()
		le := NewEncoder[Little](8)
		be := NewEncoder[Big](8)
		require.NoError(t, fn(le, be))
		require.Greater(t, le.Len(), 1)
		require.Equal(t, reversed(le.Bytes()), be.Bytes())
	}

	t.Run("u16", func(t *testing.T) {
		encodeBoth(t, func(le *Encoder[Little], be *Encoder[Big]) error {
			if err := le.EncodeUint16(0xBEEF); err != nil {
				return err
			}
			return be.EncodeUint16(0xBEEF)
		})
	})
	t.Run("u32", func(t *testing.T) {
		encodeBoth(t, func(le *Encoder[Little], be *Encoder[Big]) error {
			if err := le.EncodeUint32(0x01020304); err != nil {
				return err
			}
			return be.EncodeUint32(0x01020304)
		})
	})
	t.Run("i64", func(t *testing.T) {
		encodeBoth(t, func(le *Encoder[Little], be *Encoder[Big]) error {
			if err := le.EncodeInt64(-1234567890123); err != nil {
				return err
			}
			return be.EncodeInt64(-1234567890123)
		})
	})
	t.Run("f64", func(t *testing.T) {
		encodeBoth(t, func(le *Encoder[Little], be *Encoder[Big]) error {
			if err := le.EncodeFloat64(math.Pi); err != nil {
				return err
			}
			return be.EncodeFloat64(math.Pi)
		})
	})
}

func TestRoundTripPerOrder(t *testing.T) {
	const v = uint64(0x0102030405060708)

	le := NewEncoder[Little](8)
	require.NoError(t, le.EncodeUint64(v))
	require.Equal(t, []byte{8, 7, 6, 5, 4, 3, 2, 1}, le.Bytes())

	be := NewEncoder[Big](8)
	require.NoError(t, be.EncodeUint64(v))
	require.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, be.Bytes())

	got, err := NewDecoder[Little](le.Bytes()).DecodeUint64()
	require.NoError(t, err)
	require.Equal(t, v, got)

	got, err = NewDecoder[Big](be.Bytes()).DecodeUint64()
	require.NoError(t, err)
	require.Equal(t, v, got)

	// reading with the other order yields the byte-swapped value
	got, err = NewDecoder[Big](le.Bytes()).DecodeUint64()
	require.NoError(t, err)
	require.Equal(t, uint64(0x0807060504030201), got)
}

// MessagePack stores fixed-width numbers big-endian after a one-byte
// format marker, so its payloads must match the Big strategy exactly.
func TestBigMatchesMessagePack(t *testing.T) {
	testCases := []struct {
		name   string
		value  any
		encode func(e *Encoder[Big]) error
	}{
		{"u16", uint16(0x0102), func(e *Encoder[Big]) error { return e.EncodeUint16(0x0102) }},
		{"u32", uint32(0x01020304), func(e *Encoder[Big]) error { return e.EncodeUint32(0x01020304) }},
		{"u64", uint64(0x0102030405060708), func(e *Encoder[Big]) error { return e.EncodeUint64(0x0102030405060708) }},
		{"f32", float32(1.5), func(e *Encoder[Big]) error { return e.EncodeFloat32(1.5) }},
		{"f64", math.E, func(e *Encoder[Big]) error { return e.EncodeFloat64(math.E) }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			packed, err := msgpack.Marshal(tc.value)
			require.NoError(t, err)

			e := NewEncoder[Big](8)
			require.NoError(t, tc.encode(e))
			require.Equal(t, packed[1:], e.Bytes())
		})
	}

	t.Run("decode", func(t *testing.T) {
		packed, err := msgpack.Marshal(uint32(0xCAFEBABE))
		require.NoError(t, err)
		got, err := NewDecoder[Big](packed[1:]).DecodeUint32()
		require.NoError(t, err)
		require.Equal(t, uint32(0xCAFEBABE), got)
	})
}
