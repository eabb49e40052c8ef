// Package fieldmatch locates record fields by the names callers use in routes
// and queries: the Go field name, a bun/json/msgpack tag name, or the
// snake_case column bun derives from the field name.
package fieldmatch

import (
	"fmt"
	"reflect"
	"strings"
)

var tagKeys = []string{"bun", "json", "msgpack"}

// Field returns the value stored under name in v. v may be a struct, a
// pointer to a struct, or a map keyed by strings.
func Field(v reflect.Value, name string) (reflect.Value, bool) {
	v, ok := indirect(v)
	if !ok {
		return reflect.Value{}, false
	}

	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return reflect.Value{}, false
		}
		mv := v.MapIndex(reflect.ValueOf(name).Convert(v.Type().Key()))
		return mv, mv.IsValid()
	case reflect.Struct:
		sf, ok := lookup(v.Type(), name)
		if !ok {
			return reflect.Value{}, false
		}
		fv, err := v.FieldByIndexErr(sf.Index)
		if err != nil {
			return reflect.Value{}, false
		}
		return fv, true
	default:
		return reflect.Value{}, false
	}
}

// Column resolves name to the database column of the struct type t. Unknown
// names are assumed to already be column names.
func Column(t reflect.Type, name string) string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return Underscore(name)
	}

	sf, ok := lookup(t, name)
	if !ok {
		return Underscore(name)
	}
	if col := tagName(sf, "bun"); col != "" {
		return col
	}
	return Underscore(sf.Name)
}

// Equal reports whether field loosely equals want. Values are compared by
// their %v rendering so a route segment "7" matches an int field holding 7.
func Equal(field reflect.Value, want any) bool {
	field, ok := indirect(field)
	if !ok {
		return want == nil
	}
	if !field.CanInterface() {
		return false
	}
	return fmt.Sprint(field.Interface()) == fmt.Sprint(want)
}

func indirect(v reflect.Value) (reflect.Value, bool) {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	return v, v.IsValid()
}

func lookup(t reflect.Type, name string) (reflect.StructField, bool) {
	var folded reflect.StructField
	var haveFolded bool

	for _, sf := range reflect.VisibleFields(t) {
		if !sf.IsExported() || sf.Anonymous {
			continue
		}
		if sf.Name == name {
			return sf, true
		}
		for _, key := range tagKeys {
			if tagName(sf, key) == name {
				return sf, true
			}
		}
		if !haveFolded && (strings.EqualFold(sf.Name, name) || Underscore(sf.Name) == name) {
			folded, haveFolded = sf, true
		}
	}

	return folded, haveFolded
}

func tagName(sf reflect.StructField, key string) string {
	tag, ok := sf.Tag.Lookup(key)
	if !ok {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	return name
}
