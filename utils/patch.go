package utils

import (
	"reflect"
	"strconv"
	"strings"
)

// Updates builds the column map of a partial update from the non-nil pointer
// fields of dto. Keys are json names unless columns maps them to a database
// column; fields tagged json:"-" are skipped.
func Updates(dto any, columns map[string]string) map[string]any {
	res := map[string]any{}
	v := reflect.ValueOf(dto)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return res
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		fv := v.Field(i)
		if fv.Kind() != reflect.Ptr || fv.IsNil() {
			continue
		}
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		if col, ok := columns[name]; ok && col != "" {
			name = col
		}
		res[name] = fv.Elem().Interface()
	}
	return res
}

// QueryLimit parses a limit query parameter; missing, malformed and
// non-positive values give def, and values above max are capped.
func QueryLimit(raw string, def, max int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return def
	}
	if max > 0 && n > max {
		return max
	}
	return n
}
