package utils

import (
	"reflect"
	"strings"
)

// Normalize trims strings and rounds float64 values to cents on a
// pointer-to-struct DTO. Plain and pointer fields are both handled; nil
// pointers stay nil so partial updates keep their meaning. Slices of structs
// (directly or behind a pointer) are normalized element by element.
func Normalize(dto any) {
	v := reflect.ValueOf(dto)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return
	}
	normalizeStruct(v.Elem())
}

func normalizeStruct(s reflect.Value) {
	if s.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < s.NumField(); i++ {
		normalizeValue(s.Field(i))
	}
}

func normalizeValue(f reflect.Value) {
	if !f.CanSet() {
		return
	}
	switch f.Kind() {
	case reflect.String:
		f.SetString(strings.TrimSpace(f.String()))
	case reflect.Float64:
		f.SetFloat(Round2(f.Float()))
	case reflect.Ptr:
		if !f.IsNil() {
			normalizeValue(f.Elem())
		}
	case reflect.Slice:
		if f.Type().Elem().Kind() != reflect.Struct {
			return
		}
		for i := 0; i < f.Len(); i++ {
			normalizeStruct(f.Index(i))
		}
	}
}
