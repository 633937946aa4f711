/*
Package schema defines the declarative settings schema of a module and the
sanitizer that turns untrusted submissions into typed option values.

A schema is an ordered list of fields. Each field has a key and a kind:

  - text:           single line of text, tags and control whitespace stripped
  - textarea:       multi-line text
  - number:         integer or float, optional min and max
  - toggle:         boolean
  - color:          hex color (#rgb, #rrggbb, #rrggbbaa)
  - select:         one of the declared options
  - multi_select:   subset of the declared options
  - image:          media identifier or URL
  - page_reference: page identifier
  - group:          display grouping of nested fields; does not nest values
  - repeater:       ordered list of records following a sub-schema
  - list:           list of strings, also accepted as newline-separated text

# Example

	schema.Schema{
		{Key: "preload_fonts", Kind: schema.KindToggle, Default: false},
		{
			Key:       "preload_fonts_list",
			Kind:      schema.KindRepeater,
			DependsOn: map[string]any{"preload_fonts": true},
			Fields: schema.Schema{
				{Key: "path", Kind: schema.KindText, Pattern: `^/wp-content/.*\.(woff|woff2)$`},
			},
		},
		{Key: "webp_support", Kind: schema.KindToggle, Dependencies: dependency.Constraints{Host: "< 5.8"}},
	}

# Visibility

DependsOn maps another field's key to a required value. A slice value
lists acceptable alternatives. All keys must match for the field to be
visible.

# Sanitizing

Sanitize never fails. Values that cannot be coerced to the declared kind,
entries failing a pattern, and keys the schema does not declare are dropped
and reported through SanitizeReport. Keys absent from the submission are
not touched; merging with previously stored values is the caller's job.
*/
package schema
