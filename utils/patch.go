package utils

import (
	"reflect"
	"strconv"
	"strings"
)

// UpdatesFromPtrDTO builds a column->value map from the non-nil pointer
// fields of a patch DTO, keyed by the json tag (before any comma options).
// renames translates a json name to a differing column name when the two
// diverge.
func UpdatesFromPtrDTO(dto any, renames map[string]string) map[string]any {
	res := make(map[string]any)
	v := reflect.ValueOf(dto)
	if v.Kind() != reflect.Ptr {
		return res
	}
	s := v.Elem()
	if s.Kind() != reflect.Struct {
		return res
	}
	t := s.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		fv := s.Field(i)
		if fv.Kind() != reflect.Ptr || fv.IsNil() {
			continue
		}
		jsonTag := sf.Tag.Get("json")
		if jsonTag == "" || jsonTag == "-" {
			continue
		}
		name := strings.Split(jsonTag, ",")[0]
		if renames != nil {
			if alt, ok := renames[name]; ok && alt != "" {
				name = alt
			}
		}
		res[name] = fv.Elem().Interface()
	}
	return res
}

// ParseIntDefault parses a non-negative int from s, falling back to def on
// anything unparseable. Used for env-driven knobs.
func ParseIntDefault(s string, def int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && v >= 0 {
		return v
	}
	return def
}
