package schema

import (
	"github.com/artpar/modhost/domain/dependency"
)

// Visible evaluates depends_on rules against current option values.
// Every key must match (AND). A slice rule value lists acceptable
// alternatives (OR). A field without rules is always visible.
func Visible(rules map[string]any, values map[string]any) bool {
	for key, want := range rules {
		if !ruleMatches(values[key], want) {
			return false
		}
	}
	return true
}

func ruleMatches(current, want any) bool {
	switch w := want.(type) {
	case []any:
		for _, alt := range w {
			if valueMatches(current, alt) {
				return true
			}
		}
		return false
	case []string:
		for _, alt := range w {
			if valueMatches(current, alt) {
				return true
			}
		}
		return false
	}
	return valueMatches(current, want)
}

func valueMatches(current, want any) bool {
	switch w := want.(type) {
	case bool:
		return Truthy(current) == w
	case string:
		s, ok := current.(string)
		return ok && s == w
	case nil:
		return current == nil
	}
	if wf, ok := toFloat(want); ok {
		cf, ok := toFloat(current)
		return ok && cf == wf
	}
	return false
}

// ConstraintChecker evaluates environment requirements.
// *dependency.Checker satisfies it.
type ConstraintChecker interface {
	Check(cs dependency.Constraints) dependency.Status
}

// Annotate returns a copy of s where each top-level field, and each field
// directly inside a top-level group, carries its visibility under values
// and, when it declares requirements, its dependency status. Deeper
// nesting is returned as declared.
func Annotate(s Schema, checker ConstraintChecker, values map[string]any) Schema {
	out := s.Clone()
	for i := range out {
		annotateField(&out[i], checker, values)
		if out[i].Kind != KindGroup {
			continue
		}
		for j := range out[i].Fields {
			annotateField(&out[i].Fields[j], checker, values)
		}
	}
	return out
}

func annotateField(f *Field, checker ConstraintChecker, values map[string]any) {
	visible := Visible(f.DependsOn, values)
	f.Visible = &visible

	if f.Dependencies.IsZero() || checker == nil {
		return
	}
	st := checker.Check(f.Dependencies)
	f.DependencyStatus = &st
}
