package schema_test

import (
	"encoding/json"
	"testing"

	"github.com/artpar/modhost/domain/dependency"
	"github.com/artpar/modhost/domain/schema"
)

func TestVisible_AndAcrossKeysOrWithinList(t *testing.T) {
	rules := map[string]any{
		"a": true,
		"b": []any{"x", "y"},
	}

	tests := []struct {
		name   string
		values map[string]any
		want   bool
	}{
		{"both match x", map[string]any{"a": true, "b": "x"}, true},
		{"both match y", map[string]any{"a": true, "b": "y"}, true},
		{"b not listed", map[string]any{"a": true, "b": "z"}, false},
		{"a false", map[string]any{"a": false, "b": "x"}, false},
		{"a missing", map[string]any{"b": "x"}, false},
		{"a as form string", map[string]any{"a": "on", "b": "y"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := schema.Visible(rules, tt.values); got != tt.want {
				t.Errorf("Visible = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVisible_ScalarRules(t *testing.T) {
	if !schema.Visible(nil, map[string]any{}) {
		t.Error("no rules should be visible")
	}
	if !schema.Visible(map[string]any{"mode": "advanced"}, map[string]any{"mode": "advanced"}) {
		t.Error("string rule should match equal string")
	}
	if !schema.Visible(map[string]any{"count": 3}, map[string]any{"count": int64(3)}) {
		t.Error("numeric rule should match across integer types")
	}
	if !schema.Visible(map[string]any{"count": 3}, map[string]any{"count": json.Number("3")}) {
		t.Error("numeric rule should match json numbers")
	}
	if schema.Visible(map[string]any{"mode": []string{"a", "b"}}, map[string]any{"mode": "c"}) {
		t.Error("string slice rule should not match unlisted value")
	}
}

func TestAnnotate(t *testing.T) {
	s := schema.Schema{
		{
			Key:  "media",
			Kind: schema.KindGroup,
			Fields: schema.Schema{
				{Key: "svg_support", Kind: schema.KindToggle, Dependencies: dependency.Constraints{Host: ">= 4.7"}},
				{Key: "webp_support", Kind: schema.KindToggle, Dependencies: dependency.Constraints{Host: "< 5.8"}},
			},
		},
		{Key: "preload", Kind: schema.KindToggle},
		{Key: "fonts", Kind: schema.KindList, DependsOn: map[string]any{"preload": true}},
	}
	checker := dependency.NewChecker(dependency.StaticEnvironment{Host: "6.4.0"})

	got := schema.Annotate(s, checker, map[string]any{"preload": false})

	svg := got[0].Fields[0]
	if svg.DependencyStatus == nil || !svg.DependencyStatus.Supported {
		t.Errorf("svg_support status = %+v, want supported", svg.DependencyStatus)
	}
	webp := got[0].Fields[1]
	if webp.DependencyStatus == nil || webp.DependencyStatus.Supported {
		t.Errorf("webp_support status = %+v, want unsupported", webp.DependencyStatus)
	}
	if got[1].DependencyStatus != nil {
		t.Error("unconstrained field should carry no dependency status")
	}
	if got[2].Visible == nil || *got[2].Visible {
		t.Error("fonts should be hidden while preload is off")
	}
	if got[1].Visible == nil || !*got[1].Visible {
		t.Error("preload should be visible")
	}

	if s[0].Fields[0].DependencyStatus != nil {
		t.Error("Annotate must not modify the declared schema")
	}
}

func TestAnnotate_OneGroupLevel(t *testing.T) {
	s := schema.Schema{
		{
			Key:  "outer",
			Kind: schema.KindGroup,
			Fields: schema.Schema{
				{
					Key:  "inner",
					Kind: schema.KindGroup,
					Fields: schema.Schema{
						{Key: "deep", Kind: schema.KindToggle, Dependencies: dependency.Constraints{Host: ">= 1.0"}},
					},
				},
			},
		},
	}

	got := schema.Annotate(s, dependency.NewChecker(nil), nil)

	if got[0].Fields[0].Visible == nil {
		t.Error("first level group children should be annotated")
	}
	if got[0].Fields[0].Fields[0].DependencyStatus != nil {
		t.Error("fields below the first group level should not be annotated")
	}
}
