// Package fieldmap holds the uniform view of a submission's fields and the
// alias-aware helpers used to read from it.
package fieldmap

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"
)

// FieldMap maps a free-form submission key to a scalar, a list of values,
// a *File, or a list of Attachment references.
type FieldMap map[string]interface{}

// File is an uploaded blob received in a multipart form part.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// Attachment references a file already stored in the document store.
type Attachment struct {
	FileToken string `json:"file_token"`
	Name      string `json:"name"`
}

// Clone returns a shallow copy so callers can splice values without touching
// the map they were given.
func (m FieldMap) Clone() FieldMap {
	out := make(FieldMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Pick returns the first value among keys that is present, non-nil and not
// the empty string. Earlier keys win.
func Pick(fields FieldMap, keys ...string) (interface{}, bool) {
	for _, key := range keys {
		v, ok := fields[key]
		if !ok || v == nil {
			continue
		}
		if s, isString := v.(string); isString && s == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

// PickFile returns the first *File found under keys.
func PickFile(fields FieldMap, keys ...string) (*File, bool) {
	for _, key := range keys {
		switch v := fields[key].(type) {
		case *File:
			if v != nil {
				return v, true
			}
		case []interface{}:
			for _, item := range v {
				if f, ok := item.(*File); ok && f != nil {
					return f, true
				}
			}
		}
	}
	return nil, false
}

// ToStringArray coerces value into a list of strings. Lists keep element
// order and duplicates but drop blank entries; a single string is split on
// commas and newlines. Anything else yields an empty list.
func ToStringArray(value interface{}) []string {
	out := []string{}
	switch v := value.(type) {
	case []string:
		for _, item := range v {
			if strings.TrimSpace(item) != "" {
				out = append(out, item)
			}
		}
	case []interface{}:
		for _, item := range v {
			s := String(item)
			if strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, part := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == '\n' }) {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// String renders a field value the way it would appear in a text cell.
// nil renders as the empty string.
func String(value interface{}) string {
	if f, ok := value.(*File); ok {
		if f == nil {
			return ""
		}
		return f.Name
	}
	s, err := cast.ToStringE(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	return s
}

// Number parses value as a finite number. Strings are trimmed first; blank
// or non-numeric input reports false.
func Number(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case string:
		if v = strings.TrimSpace(v); v == "" {
			return 0, false
		}
		value = v
	}
	n, err := cast.ToFloat64E(value)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
