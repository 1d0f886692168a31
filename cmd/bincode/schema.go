package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/freeeve/bincode"
)

type fieldKind uint8

const (
	kindBool fieldKind = iota
	kindU8
	kindU16
	kindU32
	kindU64
	kindI8
	kindI16
	kindI32
	kindI64
	kindF32
	kindF64
	kindChar
	kindStr
	kindBytes
	kindTime
	kindTag
)

var kindNames = map[string]fieldKind{
	"bool":  kindBool,
	"u8":    kindU8,
	"u16":   kindU16,
	"u32":   kindU32,
	"u64":   kindU64,
	"i8":    kindI8,
	"i16":   kindI16,
	"i32":   kindI32,
	"i64":   kindI64,
	"f32":   kindF32,
	"f64":   kindF64,
	"char":  kindChar,
	"str":   kindStr,
	"bytes": kindBytes,
	"time":  kindTime,
	"tag":   kindTag,
}

func (k fieldKind) String() string {
	for name, kind := range kindNames {
		if kind == k {
			return name
		}
	}
	return "fieldKind(" + strconv.Itoa(int(k)) + ")"
}

// field is one schema entry
type field struct {
	name     string
	kind     fieldKind
	variants uint32 // kindTag only
}

// parseSchema parses "[name=]type,..." into fields. Unnamed fields are
// named by their position.
func parseSchema(schema string) ([]field, error) {
	parts := strings.Split(schema, ",")
	fields := make([]field, 0, len(parts))
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("schema entry %d is empty", i)
		}

		name := strconv.Itoa(i)
		if n, t, ok := strings.Cut(part, "="); ok {
			name, part = strings.TrimSpace(n), strings.TrimSpace(t)
		}

		typ, arg, hasArg := strings.Cut(part, ":")
		kind, ok := kindNames[typ]
		if !ok {
			return nil, fmt.Errorf("schema entry %d: unknown type %q", i, typ)
		}

		f := field{name: name, kind: kind}
		switch {
		case kind == kindTag && !hasArg:
			return nil, fmt.Errorf("schema entry %d: tag needs a variant count, e.g. tag:3", i)
		case kind == kindTag:
			n, err := strconv.ParseUint(arg, 10, 32)
			if err != nil || n == 0 {
				return nil, fmt.Errorf("schema entry %d: invalid variant count %q", i, arg)
			}
			f.variants = uint32(n)
		case hasArg:
			return nil, fmt.Errorf("schema entry %d: type %s takes no argument", i, typ)
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// decodeField reads one field and formats it for display
func decodeField[O bincode.ByteOrder](d *bincode.Decoder[O], f field) (string, error) {
	switch f.kind {
	case kindBool:
		v, err := d.DecodeBool()
		return strconv.FormatBool(v), err
	case kindU8:
		v, err := d.DecodeUint8()
		return strconv.FormatUint(uint64(v), 10), err
	case kindU16:
		v, err := d.DecodeUint16()
		return strconv.FormatUint(uint64(v), 10), err
	case kindU32:
		v, err := d.DecodeUint32()
		return strconv.FormatUint(uint64(v), 10), err
	case kindU64:
		v, err := d.DecodeUint64()
		return strconv.FormatUint(v, 10), err
	case kindI8:
		v, err := d.DecodeInt8()
		return strconv.FormatInt(int64(v), 10), err
	case kindI16:
		v, err := d.DecodeInt16()
		return strconv.FormatInt(int64(v), 10), err
	case kindI32:
		v, err := d.DecodeInt32()
		return strconv.FormatInt(int64(v), 10), err
	case kindI64:
		v, err := d.DecodeInt64()
		return strconv.FormatInt(v, 10), err
	case kindF32:
		v, err := d.DecodeFloat32()
		return strconv.FormatFloat(float64(v), 'g', -1, 32), err
	case kindF64:
		v, err := d.DecodeFloat64()
		return strconv.FormatFloat(v, 'g', -1, 64), err
	case kindChar:
		v, err := d.DecodeRune()
		return strconv.QuoteRune(v), err
	case kindStr:
		v, err := d.DecodeString()
		return strconv.Quote(v), err
	case kindBytes:
		v, err := d.DecodeBytes()
		return hex.EncodeToString(v), err
	case kindTime:
		v, err := d.DecodeTime()
		return v.Format(time.RFC3339Nano), err
	case kindTag:
		v, err := d.DecodeTag(f.variants)
		return strconv.FormatUint(uint64(v), 10), err
	default:
		return "", fmt.Errorf("unhandled field type %s", f.kind)
	}
}
