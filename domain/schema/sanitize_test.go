package schema_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/artpar/modhost/domain/schema"
	"github.com/google/go-cmp/cmp"
)

func sanitizeSchema() schema.Schema {
	return schema.Schema{
		{
			Key:  "privacy",
			Kind: schema.KindGroup,
			Fields: schema.Schema{
				{Key: "comments_ip", Kind: schema.KindToggle},
				{Key: "rest_api", Kind: schema.KindToggle},
			},
		},
		{Key: "rel", Kind: schema.KindText},
		{Key: "notes", Kind: schema.KindTextarea},
		{Key: "logo_width", Kind: schema.KindNumber, Min: schema.Float(0), Max: schema.Float(1000)},
		{Key: "highlight", Kind: schema.KindColor},
		{
			Key:  "font_display",
			Kind: schema.KindSelect,
			Options: []schema.Option{
				{Value: "swap", Label: "Swap"},
				{Value: "block", Label: "Block"},
			},
		},
		{
			Key:  "supports",
			Kind: schema.KindMultiSelect,
			Options: []schema.Option{
				{Value: "title", Label: "Title"},
				{Value: "editor", Label: "Editor"},
			},
		},
		{Key: "background", Kind: schema.KindImage},
		{Key: "allowed_hosts", Kind: schema.KindList, Pattern: `^[a-z0-9.-]+$`},
		{
			Key:  "preload_fonts_list",
			Kind: schema.KindRepeater,
			Fields: schema.Schema{
				{Key: "path", Kind: schema.KindText, Pattern: `^/wp-content/.*\.(woff|woff2|ttf|otf|eot)$`},
			},
		},
		{
			Key:  "custom_image_sizes",
			Kind: schema.KindRepeater,
			Fields: schema.Schema{
				{Key: "name", Kind: schema.KindText},
				{Key: "width", Kind: schema.KindNumber, Min: schema.Float(0)},
				{Key: "height", Kind: schema.KindNumber, Min: schema.Float(0)},
				{Key: "crop", Kind: schema.KindToggle},
			},
		},
	}
}

func TestSanitize_Toggle(t *testing.T) {
	tests := []struct {
		in   any
		want bool
	}{
		{"true", true},
		{"1", true},
		{"on", true},
		{"ON", false},
		{"True", false},
		{"false", false},
		{"0", false},
		{"", false},
		{true, true},
		{false, false},
		{float64(1), true},
		{float64(0), false},
		{json.Number("2"), true},
		{nil, false},
	}

	for _, tt := range tests {
		got := schema.Sanitize(map[string]any{"comments_ip": tt.in}, sanitizeSchema())
		if got["comments_ip"] != tt.want {
			t.Errorf("toggle %#v = %v, want %v", tt.in, got["comments_ip"], tt.want)
		}
	}
}

func TestSanitize_Number(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		want   any
		wantOK bool
	}{
		{"integer string", "120", int64(120), true},
		{"float string", "120.5", 120.5, true},
		{"float literal string", "120.0", 120.0, true},
		{"json integer", json.Number("80"), int64(80), true},
		{"json float", json.Number("80.25"), 80.25, true},
		{"go int", 42, int64(42), true},
		{"go float stays float", float64(42), float64(42), true},
		{"padded", " 7 ", int64(7), true},
		{"not a number", "wide", nil, false},
		{"bool", true, nil, false},
		{"below min", "-1", nil, false},
		{"above max", "1001", nil, false},
		{"at max", "1000", int64(1000), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, drops := schema.SanitizeReport(map[string]any{"logo_width": tt.in}, sanitizeSchema())
			v, ok := got["logo_width"]
			if ok != tt.wantOK {
				t.Fatalf("present = %v, want %v (drops %v)", ok, tt.wantOK, drops)
			}
			if ok && v != tt.want {
				t.Errorf("logo_width = %#v, want %#v", v, tt.want)
			}
			if !ok && len(drops) != 1 {
				t.Errorf("expected one drop, got %v", drops)
			}
		})
	}
}

func TestSanitize_Text(t *testing.T) {
	tests := []struct {
		name string
		key  string
		in   any
		want any
	}{
		{"strips tags", "rel", "<b>noopener</b> noreferrer", "noopener noreferrer"},
		{"drops script content", "rel", "<script>alert(1)</script>nofollow", "nofollow"},
		{"collapses whitespace", "rel", "  a \n\t b  ", "a b"},
		{"removes octets", "rel", "a%3Cb", "ab"},
		{"keeps ampersand", "rel", "Tom & Jerry", "Tom & Jerry"},
		{"keeps typed entities", "rel", "Tom &amp; Jerry", "Tom &amp; Jerry"},
		{"decodes entities around markup", "rel", "<b>Tom</b> &amp; Jerry", "Tom & Jerry"},
		{"textarea keeps lines", "notes", "line one\r\nline two", "line one\nline two"},
		{"number as text", "rel", json.Number("12"), "12"},
		{"color", "highlight", "#3399ff", "#3399ff"},
		{"short color", "highlight", "#fff", "#fff"},
		{"select option", "font_display", "swap", "swap"},
		{"image id", "background", "42", int64(42)},
		{"image url", "background", "https://example.com/a.png", "https://example.com/a.png"},
		{"image cleared", "background", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := schema.Sanitize(map[string]any{tt.key: tt.in}, sanitizeSchema())
			if got[tt.key] != tt.want {
				t.Errorf("%s = %#v, want %#v", tt.key, got[tt.key], tt.want)
			}
		})
	}
}

func TestSanitize_DropsInvalidScalars(t *testing.T) {
	raw := map[string]any{
		"highlight":    "blue",
		"font_display": "fast",
		"rel":          map[string]any{"nested": true},
		"unknown":      "x",
	}

	got, drops := schema.SanitizeReport(raw, sanitizeSchema())

	if len(got) != 0 {
		t.Errorf("expected nothing kept, got %v", got)
	}
	want := []schema.Drop{
		{Field: "font_display", Reason: schema.ReasonNotAnOption},
		{Field: "highlight", Reason: schema.ReasonPattern},
		{Field: "rel", Reason: schema.ReasonInvalidType},
		{Field: "unknown", Reason: schema.ReasonUnknownField},
	}
	if diff := cmp.Diff(want, drops); diff != "" {
		t.Errorf("drops mismatch (-want +got):\n%s", diff)
	}
}

func TestSanitize_List(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []any
	}{
		{"newline text", "a.example\n\n  b.example  \r\nc.example", []any{"a.example", "b.example", "c.example"}},
		{"array", []any{"a.example", "", "  "}, []any{"a.example"}},
		{"pattern mismatch dropped", []any{"good.example", "Bad Host!", "other.example"}, []any{"good.example", "other.example"}},
		{"empty string", "", []any{}},
		{"non list", float64(3), []any{}},
		{"string slice", []string{"x.example"}, []any{"x.example"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := schema.Sanitize(map[string]any{"allowed_hosts": tt.in}, sanitizeSchema())
			if diff := cmp.Diff(tt.want, got["allowed_hosts"]); diff != "" {
				t.Errorf("allowed_hosts mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSanitize_MultiSelect(t *testing.T) {
	got, drops := schema.SanitizeReport(map[string]any{
		"supports": []any{"title", "comments", "editor", "title"},
	}, sanitizeSchema())

	if diff := cmp.Diff([]any{"title", "editor"}, got["supports"]); diff != "" {
		t.Errorf("supports mismatch (-want +got):\n%s", diff)
	}
	if len(drops) != 1 || drops[0].Reason != schema.ReasonNotAnOption {
		t.Errorf("drops = %v, want one not_an_option", drops)
	}
}

func TestSanitize_RepeaterDropsEmptyRecordsKeepsOrder(t *testing.T) {
	raw := map[string]any{
		"custom_image_sizes": []any{
			map[string]any{"name": "hero", "width": "1600", "height": "600", "crop": "1"},
			map[string]any{"name": "", "width": "", "crop": false},
			map[string]any{"name": "thumb", "width": json.Number("300"), "extra": "x"},
			"not a record",
			map[string]any{"name": "square", "width": 500.0, "height": "500"},
		},
	}

	got, drops := schema.SanitizeReport(raw, sanitizeSchema())

	want := []any{
		map[string]any{"name": "hero", "width": int64(1600), "height": int64(600), "crop": true},
		map[string]any{"name": "thumb", "width": int64(300)},
		map[string]any{"name": "square", "width": 500.0, "height": int64(500)},
	}
	if diff := cmp.Diff(want, got["custom_image_sizes"]); diff != "" {
		t.Errorf("custom_image_sizes mismatch (-want +got):\n%s", diff)
	}

	wantDrops := []schema.Drop{
		{Field: "custom_image_sizes[1].width", Reason: schema.ReasonInvalidType},
		{Field: "custom_image_sizes[1]", Reason: schema.ReasonEmptyRecord},
		{Field: "custom_image_sizes[2].extra", Reason: schema.ReasonUnknownField},
		{Field: "custom_image_sizes[3]", Reason: schema.ReasonInvalidType},
	}
	if diff := cmp.Diff(wantDrops, drops); diff != "" {
		t.Errorf("drops mismatch (-want +got):\n%s", diff)
	}
}

func TestSanitize_RepeaterPattern(t *testing.T) {
	raw := map[string]any{
		"preload_fonts_list": []any{
			map[string]any{"path": "/wp-content/themes/a/font.woff2"},
			map[string]any{"path": "/etc/passwd"},
			map[string]any{"path": "/wp-content/fonts/b.ttf"},
		},
	}

	got := schema.Sanitize(raw, sanitizeSchema())

	want := []any{
		map[string]any{"path": "/wp-content/themes/a/font.woff2"},
		map[string]any{"path": "/wp-content/fonts/b.ttf"},
	}
	if diff := cmp.Diff(want, got["preload_fonts_list"]); diff != "" {
		t.Errorf("preload_fonts_list mismatch (-want +got):\n%s", diff)
	}
}

func TestSanitize_RepeaterIndexedObject(t *testing.T) {
	raw := map[string]any{
		"preload_fonts_list": map[string]any{
			"1": map[string]any{"path": "/wp-content/b.woff"},
			"0": map[string]any{"path": "/wp-content/a.woff"},
		},
	}

	got := schema.Sanitize(raw, sanitizeSchema())

	want := []any{
		map[string]any{"path": "/wp-content/a.woff"},
		map[string]any{"path": "/wp-content/b.woff"},
	}
	if diff := cmp.Diff(want, got["preload_fonts_list"]); diff != "" {
		t.Errorf("preload_fonts_list mismatch (-want +got):\n%s", diff)
	}
}

func TestSanitize_BracketKeys(t *testing.T) {
	raw := map[string]any{
		"allowed_hosts[1]": "b.example",
		"allowed_hosts[0":  "a.example",
		"allowed_hosts[10]": "c.example",
	}

	got := schema.Sanitize(raw, sanitizeSchema())

	if diff := cmp.Diff([]any{"a.example", "b.example", "c.example"}, got["allowed_hosts"]); diff != "" {
		t.Errorf("allowed_hosts mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeKeys_PlainKeyWins(t *testing.T) {
	got := schema.NormalizeKeys(map[string]any{
		"items":    []any{"plain"},
		"items[0]": "indexed",
		"other":    "x",
	})

	want := map[string]any{
		"items": []any{"plain"},
		"other": "x",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("NormalizeKeys mismatch (-want +got):\n%s", diff)
	}
}

func TestSanitize_GroupKeysAreFlattenedAndAbsentKeysUntouched(t *testing.T) {
	got := schema.Sanitize(map[string]any{
		"comments_ip": "false",
		"privacy":     map[string]any{"rest_api": true},
	}, sanitizeSchema())

	want := map[string]any{"comments_ip": false}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Sanitize mismatch (-want +got):\n%s", diff)
	}
}

func TestSanitize_EnabledIsImplicitToggle(t *testing.T) {
	got := schema.Sanitize(map[string]any{"enabled": "on"}, sanitizeSchema())
	if got["enabled"] != true {
		t.Errorf("enabled = %#v, want true", got["enabled"])
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	raw := map[string]any{
		"enabled":       "1",
		"comments_ip":   "on",
		"rest_api":      0,
		"rel":           "  <i>noopener</i>   nofollow ",
		"notes":         "a\r\n<b>b</b>",
		"logo_width":    "120",
		"highlight":     "#abcdef",
		"font_display":  "block",
		"supports":      []any{"editor", "title"},
		"background":    json.Number("9"),
		"allowed_hosts": "a.example\nb.example\nBAD HOST",
		"custom_image_sizes[0]": map[string]any{
			"name": "<em>hero</em>", "width": "1600.5", "crop": "on",
		},
		"custom_image_sizes[1]": map[string]any{"name": ""},
		"preload_fonts_list": []any{
			map[string]any{"path": "/wp-content/x.woff"},
		},
		"ignored": "x",
	}

	once := schema.Sanitize(raw, sanitizeSchema())
	twice := schema.Sanitize(once, sanitizeSchema())

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("second pass changed the value (-once +twice):\n%s", diff)
	}
	if _, ok := once["ignored"]; ok {
		t.Error("unknown key should be dropped")
	}
}

func TestSanitize_IdempotentOnNestedEntities(t *testing.T) {
	nested := "x&" + strings.Repeat("amp;", 11) + "y"

	tests := []struct {
		name string
		in   string
	}{
		{"entities only", nested},
		{"entities after markup", "<b>bold</b> " + nested},
		{"escaped markup", "<i></i>&amp;lt;b&amp;gt;" + nested},
		{"markup rebuilt from octets", "<%41b>x</b>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			once := schema.Sanitize(map[string]any{"rel": tt.in, "notes": tt.in}, sanitizeSchema())
			twice := schema.Sanitize(once, sanitizeSchema())
			if diff := cmp.Diff(once, twice); diff != "" {
				t.Errorf("second pass changed the value (-once +twice):\n%s", diff)
			}
		})
	}
}
