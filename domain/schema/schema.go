package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/artpar/modhost/domain/version"
)

// Schema is an ordered list of fields. It marshals to a JSON object keyed by
// field key, preserving declaration order.
type Schema []Field

// MarshalJSON encodes the schema as an ordered JSON object.
func (s Schema) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Flatten returns the value-bearing fields with groups expanded in place.
// Repeaters are kept whole since their records nest.
func (s Schema) Flatten() Schema {
	out := make(Schema, 0, len(s))
	for _, f := range s {
		if f.Kind == KindGroup {
			out = append(out, f.Fields.Flatten()...)
			continue
		}
		out = append(out, f)
	}
	return out
}

// Lookup finds a value-bearing field by key, looking through groups.
func (s Schema) Lookup(key string) (Field, bool) {
	for _, f := range s {
		if f.Kind == KindGroup {
			if inner, ok := f.Fields.Lookup(key); ok {
				return inner, true
			}
			continue
		}
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// Keys returns the keys of all value-bearing fields in order.
func (s Schema) Keys() []string {
	flat := s.Flatten()
	keys := make([]string, len(flat))
	for i, f := range flat {
		keys[i] = f.Key
	}
	return keys
}

// Defaults returns the declared default of every value-bearing field.
// Fields without a default get the zero value of their kind.
func (s Schema) Defaults() map[string]any {
	out := make(map[string]any)
	for _, f := range s.Flatten() {
		if f.Default != nil {
			out[f.Key] = f.Default
			continue
		}
		out[f.Key] = zeroValue(f.Kind)
	}
	return out
}

func zeroValue(k Kind) any {
	switch k {
	case KindToggle:
		return false
	case KindNumber:
		return int64(0)
	case KindRepeater, KindList, KindMultiSelect:
		return []any{}
	default:
		return ""
	}
}

// Clone returns a deep copy of the field tree. Defaults and rule values are
// shared since they are never mutated.
func (s Schema) Clone() Schema {
	if s == nil {
		return nil
	}
	out := make(Schema, len(s))
	for i, f := range s {
		f.Fields = f.Fields.Clone()
		out[i] = f
	}
	return out
}

// Validation errors.
var (
	ErrEmptyKey      = errors.New("field key is empty")
	ErrDuplicateKey  = errors.New("duplicate field key")
	ErrUnknownKind   = errors.New("unknown field kind")
	ErrInvalidRule   = errors.New("invalid field rule")
	ErrMissingFields = errors.New("structural field has no fields")
)

// Validate checks that the schema is well formed: keys are unique across
// groups, kinds are known, patterns compile and repeaters declare a
// sub-schema. Unparseable version requirements are reported too, even
// though they evaluate as unconstrained at runtime.
func (s Schema) Validate() error {
	seen := make(map[string]bool)
	return s.validate("", seen)
}

func (s Schema) validate(path string, seen map[string]bool) error {
	for _, f := range s {
		name := path + f.Key
		if f.Key == "" {
			return fmt.Errorf("%s: %w", path, ErrEmptyKey)
		}
		if !f.Kind.Valid() {
			return fmt.Errorf("%s: %w: %q", name, ErrUnknownKind, f.Kind)
		}
		if f.Kind != KindGroup {
			if seen[name] {
				return fmt.Errorf("%s: %w", name, ErrDuplicateKey)
			}
			seen[name] = true
		}
		if f.Pattern != "" {
			if _, err := regexp.Compile(f.Pattern); err != nil {
				return fmt.Errorf("%s: %w: pattern: %v", name, ErrInvalidRule, err)
			}
		}
		if f.Min != nil && f.Max != nil && *f.Min > *f.Max {
			return fmt.Errorf("%s: %w: min greater than max", name, ErrInvalidRule)
		}
		if err := validateConstraints(name, f); err != nil {
			return err
		}

		if f.IsStructural() && len(f.Fields) == 0 {
			return fmt.Errorf("%s: %w", name, ErrMissingFields)
		}
		switch f.Kind {
		case KindGroup:
			if err := f.Fields.validate(path, seen); err != nil {
				return err
			}
		case KindRepeater:
			if err := f.Fields.validate(name+".", make(map[string]bool)); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateConstraints(name string, f Field) error {
	reqs := []string{f.Dependencies.Host, f.Dependencies.BuilderA, f.Dependencies.BuilderB}
	for _, r := range f.Dependencies.Plugins {
		reqs = append(reqs, r)
	}
	for _, r := range reqs {
		if r == "" {
			continue
		}
		if _, ok := version.Parse(r); !ok {
			return fmt.Errorf("%s: %w: requirement %q", name, ErrInvalidRule, r)
		}
	}
	return nil
}
