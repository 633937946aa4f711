package schema

import (
	"github.com/artpar/modhost/domain/dependency"
)

// Kind is the type of a schema field.
type Kind string

const (
	// Scalar kinds
	KindText          Kind = "text"
	KindTextarea      Kind = "textarea"
	KindNumber        Kind = "number"
	KindToggle        Kind = "toggle"
	KindColor         Kind = "color"
	KindSelect        Kind = "select"
	KindMultiSelect   Kind = "multi_select"
	KindImage         Kind = "image"
	KindPageReference Kind = "page_reference"

	// Structural kinds
	KindGroup    Kind = "group"
	KindRepeater Kind = "repeater"
	KindList     Kind = "list"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindText, KindTextarea, KindNumber, KindToggle, KindColor, KindSelect,
		KindMultiSelect, KindImage, KindPageReference, KindGroup, KindRepeater, KindList:
		return true
	}
	return false
}

// Option is a selectable choice of a select or multi_select field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field is one node of a settings schema.
type Field struct {
	// Key identifies the field. For groups it is only a display handle.
	Key string `json:"-"`

	Kind        Kind   `json:"type"`
	Label       string `json:"label,omitempty"`
	Description string `json:"description,omitempty"`

	// Default is the value used when nothing is stored.
	Default any `json:"default"`

	// Options lists the choices of select and multi_select fields.
	Options []Option `json:"options,omitempty"`

	// Min and Max bound number fields.
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`

	// Pattern is a regular expression text and list entries must match.
	Pattern string `json:"pattern,omitempty"`

	// DependsOn holds visibility rules, see Visible.
	DependsOn map[string]any `json:"depends_on,omitempty"`

	// Dependencies are environment requirements, see dependency.Checker.
	Dependencies dependency.Constraints `json:"dependencies,omitzero"`

	// Fields holds group children or the repeater record sub-schema.
	Fields Schema `json:"fields,omitempty"`

	// Set by Annotate; never part of a declared schema.
	DependencyStatus *dependency.Status `json:"dependency_status,omitempty"`
	Visible          *bool              `json:"visible,omitempty"`
}

// IsStructural reports whether the field contains other fields.
func (f Field) IsStructural() bool {
	return f.Kind == KindGroup || f.Kind == KindRepeater
}

// HasOption reports whether v is one of the declared options.
// Fields without options accept any value.
func (f Field) HasOption(v string) bool {
	if len(f.Options) == 0 {
		return true
	}
	for _, o := range f.Options {
		if o.Value == v {
			return true
		}
	}
	return false
}

// Float returns a pointer to v, for Min and Max literals.
func Float(v float64) *float64 {
	return &v
}
