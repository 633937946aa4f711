// Package options provides the option value mapping of a module.
// This is a pure package with no I/O.
package options

import (
	"encoding/json"
	"maps"
	"reflect"
	"sort"

	"github.com/artpar/modhost/domain/schema"
)

// Value maps an option key to its sanitized value.
type Value map[string]any

// BackFill inserts every default whose key is missing. Existing values are
// never overwritten. The receiver is modified and returned; a nil receiver
// yields a fresh mapping.
func (v Value) BackFill(defaults Value) Value {
	if v == nil {
		v = make(Value, len(defaults))
	}
	for k, d := range defaults {
		if _, ok := v[k]; !ok {
			v[k] = cloneAny(d)
		}
	}
	return v
}

// Clone returns a deep copy of lists and nested records.
func (v Value) Clone() Value {
	if v == nil {
		return nil
	}
	out := make(Value, len(v))
	for k, x := range v {
		out[k] = cloneAny(x)
	}
	return out
}

// Merge returns a copy of v overlaid with update.
func (v Value) Merge(update Value) Value {
	out := v.Clone()
	if out == nil {
		out = make(Value, len(update))
	}
	maps.Copy(out, update.Clone())
	return out
}

// Enabled reports the module enabled flag, coerced like a toggle.
// A missing flag reads as enabled.
func (v Value) Enabled() bool {
	raw, ok := v[schema.EnabledKey]
	if !ok {
		return true
	}
	return schema.Truthy(raw)
}

// WithEnabled returns a copy of v with the enabled flag set.
func (v Value) WithEnabled(enabled bool) Value {
	out := v.Clone()
	if out == nil {
		out = make(Value, 1)
	}
	out[schema.EnabledKey] = enabled
	return out
}

// Bool reads a toggle option.
func (v Value) Bool(key string) bool {
	return schema.Truthy(v[key])
}

// String reads a text option, or "" when it is missing or not text.
func (v Value) String(key string) string {
	s, _ := v[key].(string)
	return s
}

// Strings reads a list option, skipping non-string entries.
func (v Value) Strings(key string) []string {
	var out []string
	switch t := v[key].(type) {
	case []any:
		for _, x := range t {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
	case []string:
		out = append(out, t...)
	}
	return out
}

// Keys returns the option keys in sorted order.
func (v Value) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Changed returns the sorted keys whose values differ between prev and next,
// including keys present on only one side. Numbers compare by value, so a
// stored int64(5) equals a resubmitted float64(5).
func Changed(prev, next Value) []string {
	var keys []string
	for k, nv := range next {
		ov, ok := prev[k]
		if !ok || !equal(ov, nv) {
			keys = append(keys, k)
		}
	}
	for k := range prev {
		if _, ok := next[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func cloneAny(x any) any {
	switch t := x.(type) {
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneAny(e)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneAny(e)
		}
		return out
	case Value:
		return t.Clone()
	}
	return x
}

func equal(a, b any) bool {
	if x, ok := number(a); ok {
		y, ok := number(b)
		return ok && x == y
	}
	switch t := a.(type) {
	case []any:
		u, ok := b.([]any)
		if !ok || len(t) != len(u) {
			return false
		}
		for i := range t {
			if !equal(t[i], u[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		u, ok := b.(map[string]any)
		if !ok || len(t) != len(u) {
			return false
		}
		for k, e := range t {
			f, ok := u[k]
			if !ok || !equal(e, f) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

func number(x any) (float64, bool) {
	switch t := x.(type) {
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	}
	return 0, false
}
