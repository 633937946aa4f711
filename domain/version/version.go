// Package version evaluates version requirements against a current version.
// This is a pure package with no I/O.
//
// Requirements take one of three forms:
//
//	">= 4.7"      comparator followed by a version (>=, <=, >, <, =)
//	"4.0 - 5.0"   inclusive range, exactly one hyphen between two versions
//	anything else unconstrained, always satisfied
package version

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Zero is the version reported for anything that is not installed.
const Zero = "0.0.0"

// Op is a comparison operator in a requirement.
type Op string

// Supported operators.
const (
	OpEQ    Op = "="
	OpGT    Op = ">"
	OpGTE   Op = ">="
	OpLT    Op = "<"
	OpLTE   Op = "<="
	OpRange Op = "range"
)

var operatorPattern = regexp.MustCompile(`^(>=|<=|>|<|=)\s*(.+)$`)

// Constraint is a parsed requirement.
type Constraint struct {
	Op      Op
	Version string // lower bound for OpRange
	Upper   string // only set for OpRange
}

// Parse parses a requirement string.
// Returns false when the requirement matches neither the range nor the
// comparator form. Callers treat such requirements as unconstrained.
func Parse(requirement string) (Constraint, bool) {
	req := strings.TrimSpace(requirement)
	if req == "" {
		return Constraint{}, false
	}

	// A leading operator always means comparator form, even if the version
	// itself carries a pre-release hyphen.
	if !strings.ContainsAny(req[:1], "<>=") && strings.Count(req, "-") == 1 {
		lo, hi, _ := strings.Cut(req, "-")
		lo, hi = strings.TrimSpace(lo), strings.TrimSpace(hi)
		if lo != "" && hi != "" {
			return Constraint{Op: OpRange, Version: lo, Upper: hi}, true
		}
		return Constraint{}, false
	}

	m := operatorPattern.FindStringSubmatch(req)
	if m == nil {
		return Constraint{}, false
	}
	return Constraint{Op: Op(m[1]), Version: strings.TrimSpace(m[2])}, true
}

// Allows reports whether current satisfies the constraint.
func (c Constraint) Allows(current string) bool {
	switch c.Op {
	case OpRange:
		return Compare(current, c.Version) >= 0 && Compare(current, c.Upper) <= 0
	case OpGTE:
		return Compare(current, c.Version) >= 0
	case OpLTE:
		return Compare(current, c.Version) <= 0
	case OpGT:
		return Compare(current, c.Version) > 0
	case OpLT:
		return Compare(current, c.Version) < 0
	case OpEQ:
		return Compare(current, c.Version) == 0
	default:
		return true
	}
}

// String renders the constraint in requirement syntax.
func (c Constraint) String() string {
	if c.Op == OpRange {
		return c.Version + " - " + c.Upper
	}
	return string(c.Op) + " " + c.Version
}

// Evaluate reports whether current satisfies requirement.
// Unparseable requirements fail open and return true.
func Evaluate(current, requirement string) bool {
	c, ok := Parse(requirement)
	if !ok {
		return true
	}
	return c.Allows(current)
}

// Compare compares two dotted versions segment by segment.
// Missing segments count as 0 and pre-release or build metadata is ignored.
// Returns -1, 0 or 1.
func Compare(a, b string) int {
	sa, sb := Segments(a), Segments(b)
	n := max(len(sa), len(sb))
	for i := 0; i < n; i++ {
		var x, y int64
		if i < len(sa) {
			x = sa[i]
		}
		if i < len(sb) {
			y = sb[i]
		}
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	}
	return 0
}

// Segments returns the numeric segments of a version string.
// Versions semver understands ("4.7", "v6.5.0-rc1") yield major, minor and
// patch. Anything else, such as four-segment versions, is split on dots and
// the leading digits of each segment are used.
func Segments(v string) []int64 {
	v = strings.TrimSpace(v)
	if v == "" {
		return []int64{0, 0, 0}
	}
	if sv, err := semver.NewVersion(v); err == nil {
		return []int64{int64(sv.Major()), int64(sv.Minor()), int64(sv.Patch())}
	}

	v = strings.TrimPrefix(strings.TrimPrefix(v, "v"), "V")
	if i := strings.IndexAny(v, "-+ "); i >= 0 {
		v = v[:i]
	}
	parts := strings.Split(v, ".")
	segs := make([]int64, 0, len(parts))
	for _, p := range parts {
		segs = append(segs, leadingInt(p))
	}
	return segs
}

func leadingInt(s string) int64 {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return n
}
