package bincode

import (
	"reflect"
	"strings"
	"sync"
)

// structInfo holds cached reflection info for a struct type
type structInfo struct {
	fields []fieldInfo
}

// fieldInfo holds info about a single struct field
type fieldInfo struct {
	index []int // field index path (supports embedded)
	name  string
	char  bool // int32 field encoded as a char rather than an i32
}

// structCache caches struct info to avoid repeated reflection
var structCache sync.Map // map[reflect.Type]*structInfo

// getStructInfo returns cached struct info, computing it if necessary
func getStructInfo(t reflect.Type) *structInfo {
	if cached, ok := structCache.Load(t); ok {
		return cached.(*structInfo)
	}

	info := buildStructInfo(t)
	actual, _ := structCache.LoadOrStore(t, info)
	return actual.(*structInfo)
}

// buildStructInfo builds struct info via reflection
func buildStructInfo(t reflect.Type) *structInfo {
	info := &structInfo{}
	buildStructFields(t, nil, info)
	return info
}

// buildStructFields recursively builds field info in declaration order,
// flattening embedded structs. Field order is the wire order.
func buildStructFields(t reflect.Type, index []int, info *structInfo) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		fieldIndex := append(append([]int(nil), index...), i)

		tag := field.Tag.Get("bincode")
		if tag == "-" {
			continue // skip this field
		}

		// Handle embedded structs, exported or not. time.Time is a value of
		// its own.
		if field.Anonymous && field.Type.Kind() == reflect.Struct && field.Type != timeType && tag == "" {
			buildStructFields(field.Type, fieldIndex, info)
			continue
		}

		// Skip unexported fields
		if !field.IsExported() {
			continue
		}

		_, opts := parseTag(tag)
		info.fields = append(info.fields, fieldInfo{
			index: fieldIndex,
			name:  field.Name,
			char:  field.Type.Kind() == reflect.Int32 && hasOption(opts, "char"),
		})
	}
}

// parseTag parses a struct tag like "name,char"
func parseTag(tag string) (name, opts string) {
	if idx := strings.Index(tag, ","); idx != -1 {
		return tag[:idx], tag[idx+1:]
	}
	return tag, ""
}

func hasOption(opts, opt string) bool {
	for opts != "" {
		var o string
		o, opts, _ = strings.Cut(opts, ",")
		if o == opt {
			return true
		}
	}
	return false
}
