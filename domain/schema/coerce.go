package schema

import (
	"encoding/json"
	"html"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/spf13/cast"
)

// Truthy coerces a submitted value to a boolean. The strings "true", "1"
// and "on" are true, every other string is false. Non-string values follow
// their natural truthiness.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t == "true" || t == "1" || t == "on"
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	if f, err := cast.ToFloat64E(v); err == nil {
		return f != 0
	}
	return true
}

// toNumber coerces v to int64 or float64. Numeric strings become int64 when
// they are integer literals and float64 otherwise; Go floats stay floats.
func toNumber(v any) (any, bool) {
	switch t := v.(type) {
	case nil, bool:
		return nil, false
	case string:
		return parseNumber(t)
	case json.Number:
		return parseNumber(string(t))
	case float32:
		return finite(float64(t))
	case float64:
		return finite(t)
	}
	n, err := cast.ToInt64E(v)
	if err != nil {
		return nil, false
	}
	return n, true
}

func parseNumber(s string) (any, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, false
	}
	return finite(f)
}

func finite(f float64) (any, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	return f, true
}

func toFloat(v any) (float64, bool) {
	n, ok := toNumber(v)
	if !ok {
		return 0, false
	}
	switch t := n.(type) {
	case int64:
		return float64(t), true
	case float64:
		return t, true
	}
	return 0, false
}

// scalarString renders a scalar as text. Maps and slices are rejected.
func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return string(t), true
	case nil:
		return "", true
	case map[string]any, []any, []string:
		return "", false
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", false
	}
	return s, true
}

var (
	strictPolicy = bluemonday.StrictPolicy()
	octetPattern = regexp.MustCompile(`%[a-fA-F0-9]{2}`)
	spacePattern = regexp.MustCompile(`[\r\n\t ]+`)
)

// SanitizeText strips markup, invalid UTF-8 and percent-encoded octets,
// collapses whitespace runs to single spaces and trims the result.
func SanitizeText(s string) string {
	s = stripUnsafe(s)
	s = spacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// SanitizeTextarea is SanitizeText that keeps line breaks.
func SanitizeTextarea(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = stripUnsafe(s)
	return strings.TrimSpace(s)
}

// stripUnsafe repeats its pass until the text stops changing, so sanitizing
// sanitized text is a no-op. A changing pass never grows the text, which
// bounds the loop by its length. Entities are only decoded in text that
// still carries markup.
func stripUnsafe(s string) string {
	s = strings.ToValidUTF8(strings.ReplaceAll(s, "\x00", ""), "")
	for i := 0; i <= len(s); i++ {
		next := octetPattern.ReplaceAllString(s, "")
		if strings.Contains(next, "<") {
			next = html.UnescapeString(strictPolicy.Sanitize(next))
		}
		next = strings.ToValidUTF8(strings.ReplaceAll(next, "\x00", ""), "")
		if next == s {
			break
		}
		s = next
	}
	return s
}

var patternCache sync.Map // string -> *regexp.Regexp, nil when invalid

// matchPattern reports whether s matches pattern. Patterns that do not
// compile match everything.
func matchPattern(pattern, s string) bool {
	if pattern == "" {
		return true
	}
	if cached, ok := patternCache.Load(pattern); ok {
		re, _ := cached.(*regexp.Regexp)
		return re == nil || re.MatchString(s)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		patternCache.Store(pattern, (*regexp.Regexp)(nil))
		return true
	}
	patternCache.Store(pattern, re)
	return re.MatchString(s)
}
