package schema

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// EnabledKey is the option every module carries. It is implicitly declared
// as a toggle in every schema.
const EnabledKey = "enabled"

// Drop describes a submitted value the sanitizer discarded.
type Drop struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Drop reasons.
const (
	ReasonUnknownField = "unknown_field"
	ReasonInvalidType  = "invalid_type"
	ReasonOutOfRange   = "out_of_range"
	ReasonPattern      = "pattern_mismatch"
	ReasonNotAnOption  = "not_an_option"
	ReasonEmptyRecord  = "empty_record"
)

var colorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// Sanitize converts raw submitted values into typed values conforming to s.
// See SanitizeReport.
func Sanitize(raw map[string]any, s Schema) map[string]any {
	out, _ := SanitizeReport(raw, s)
	return out
}

// SanitizeReport is Sanitize that also returns what was dropped, ordered by
// field key. It never fails; invalid input is omitted from the result.
func SanitizeReport(raw map[string]any, s Schema) (map[string]any, []Drop) {
	z := &sanitizer{}
	in := NormalizeKeys(raw)

	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]any, len(in))
	for _, key := range keys {
		f, ok := s.Lookup(key)
		if !ok {
			if key != EnabledKey {
				z.drop(key, ReasonUnknownField)
				continue
			}
			f = Field{Key: EnabledKey, Kind: KindToggle}
		}
		if v, ok := z.value(key, f, in[key]); ok {
			out[key] = v
		}
	}
	return out, z.drops
}

var bracketKey = regexp.MustCompile(`^(\w+)\[(\d+)\]?$`)

// NormalizeKeys folds flattened form keys such as "items[0]" and "items[1]"
// (with or without the closing bracket) back into an ordered list under
// "items". A plain "items" key, when also present, takes precedence.
func NormalizeKeys(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	indexed := make(map[string]map[int]any)

	for k, v := range raw {
		m := bracketKey.FindStringSubmatch(k)
		if m == nil {
			out[k] = v
			continue
		}
		idx, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		if indexed[m[1]] == nil {
			indexed[m[1]] = make(map[int]any)
		}
		indexed[m[1]][idx] = v
	}

	for k, items := range indexed {
		if _, ok := out[k]; ok {
			continue
		}
		out[k] = orderedValues(items)
	}
	return out
}

func orderedValues(items map[int]any) []any {
	idx := make([]int, 0, len(items))
	for i := range items {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	list := make([]any, 0, len(idx))
	for _, i := range idx {
		list = append(list, items[i])
	}
	return list
}

type sanitizer struct {
	drops []Drop
}

func (z *sanitizer) drop(path, reason string) {
	z.drops = append(z.drops, Drop{Field: path, Reason: reason})
}

// value sanitizes one submitted value by the declared kind of f.
// Returns false when the value must be dropped.
func (z *sanitizer) value(path string, f Field, v any) (any, bool) {
	switch f.Kind {
	case KindToggle:
		return Truthy(v), true
	case KindNumber:
		return z.number(path, f, v)
	case KindList:
		return z.list(path, f, v), true
	case KindRepeater:
		return z.repeater(path, f, v), true
	case KindMultiSelect:
		return z.multiSelect(path, f, v), true
	case KindSelect:
		s, ok := z.text(path, f, v, SanitizeText)
		if !ok {
			return nil, false
		}
		if s != "" && !f.HasOption(s) {
			z.drop(path, ReasonNotAnOption)
			return nil, false
		}
		return s, true
	case KindColor:
		s, ok := z.text(path, f, v, SanitizeText)
		if !ok {
			return nil, false
		}
		if s != "" && !colorPattern.MatchString(s) {
			z.drop(path, ReasonPattern)
			return nil, false
		}
		return s, true
	case KindImage, KindPageReference:
		return z.reference(path, f, v)
	case KindTextarea:
		return z.text(path, f, v, SanitizeTextarea)
	case KindGroup:
		z.drop(path, ReasonInvalidType)
		return nil, false
	default:
		return z.text(path, f, v, SanitizeText)
	}
}

func (z *sanitizer) text(path string, f Field, v any, clean func(string) string) (string, bool) {
	raw, ok := scalarString(v)
	if !ok {
		z.drop(path, ReasonInvalidType)
		return "", false
	}
	s := clean(raw)
	if s != "" && !matchPattern(f.Pattern, s) {
		z.drop(path, ReasonPattern)
		return "", false
	}
	return s, true
}

func (z *sanitizer) number(path string, f Field, v any) (any, bool) {
	n, ok := toNumber(v)
	if !ok {
		z.drop(path, ReasonInvalidType)
		return nil, false
	}
	x, _ := toFloat(n)
	if (f.Min != nil && x < *f.Min) || (f.Max != nil && x > *f.Max) {
		z.drop(path, ReasonOutOfRange)
		return nil, false
	}
	return n, true
}

// reference accepts a numeric identifier or, failing that, a URL-ish text.
func (z *sanitizer) reference(path string, f Field, v any) (any, bool) {
	if n, ok := toNumber(v); ok {
		if id, isInt := n.(int64); isInt {
			if id < 0 {
				z.drop(path, ReasonOutOfRange)
				return nil, false
			}
			return id, true
		}
	}
	return z.text(path, f, v, SanitizeText)
}

func (z *sanitizer) list(path string, f Field, v any) []any {
	var items []any
	switch t := v.(type) {
	case []any:
		items = t
	case []string:
		items = stringsToAny(t)
	case string:
		if t != "" {
			items = stringsToAny(strings.Split(strings.ReplaceAll(t, "\r\n", "\n"), "\n"))
		}
	}

	out := make([]any, 0, len(items))
	for i, item := range items {
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		raw, ok := scalarString(item)
		if !ok {
			z.drop(itemPath, ReasonInvalidType)
			continue
		}
		s := SanitizeText(raw)
		if s == "" {
			continue
		}
		if !matchPattern(f.Pattern, s) {
			z.drop(itemPath, ReasonPattern)
			continue
		}
		out = append(out, s)
	}
	return out
}

func (z *sanitizer) multiSelect(path string, f Field, v any) []any {
	var items []any
	switch t := v.(type) {
	case []any:
		items = t
	case []string:
		items = stringsToAny(t)
	case string:
		if t != "" {
			items = []any{t}
		}
	}

	out := make([]any, 0, len(items))
	seen := make(map[string]bool, len(items))
	for i, item := range items {
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		raw, ok := scalarString(item)
		if !ok {
			z.drop(itemPath, ReasonInvalidType)
			continue
		}
		s := SanitizeText(raw)
		if s == "" || seen[s] {
			continue
		}
		if !f.HasOption(s) {
			z.drop(itemPath, ReasonNotAnOption)
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func (z *sanitizer) repeater(path string, f Field, v any) []any {
	var records []any
	switch t := v.(type) {
	case []any:
		records = t
	case []map[string]any:
		records = make([]any, len(t))
		for i, r := range t {
			records[i] = r
		}
	case map[string]any:
		// Form encoders sometimes send {"0": {...}, "1": {...}}.
		indexed := make(map[int]any, len(t))
		for k, r := range t {
			i, err := strconv.Atoi(k)
			if err != nil {
				z.drop(path, ReasonInvalidType)
				return []any{}
			}
			indexed[i] = r
		}
		records = orderedValues(indexed)
	case nil:
	default:
		z.drop(path, ReasonInvalidType)
	}

	sub := f.Fields.Flatten()
	out := make([]any, 0, len(records))
	for i, r := range records {
		recPath := fmt.Sprintf("%s[%d]", path, i)
		rec, ok := r.(map[string]any)
		if !ok {
			z.drop(recPath, ReasonInvalidType)
			continue
		}

		clean := make(map[string]any, len(sub))
		for _, sf := range sub {
			raw, present := rec[sf.Key]
			if !present {
				continue
			}
			if val, ok := z.value(recPath+"."+sf.Key, sf, raw); ok {
				clean[sf.Key] = val
			}
		}
		extra := make([]string, 0, len(rec))
		for k := range rec {
			extra = append(extra, k)
		}
		sort.Strings(extra)
		for _, k := range extra {
			if _, declared := sub.Lookup(k); !declared {
				z.drop(recPath+"."+k, ReasonUnknownField)
			}
		}

		if allEmpty(clean) {
			z.drop(recPath, ReasonEmptyRecord)
			continue
		}
		out = append(out, clean)
	}
	return out
}

func allEmpty(rec map[string]any) bool {
	for _, v := range rec {
		if !isEmpty(v) {
			return false
		}
	}
	return true
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case int64:
		return t == 0
	case float64:
		return t == 0
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}

func stringsToAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
