package modules

import (
	"github.com/artpar/modhost/domain/dependency"
	"github.com/artpar/modhost/domain/schema"
)

const author = "Mirko Schubert"

func group(key, label, description string, fields ...schema.Field) schema.Field {
	return schema.Field{Key: key, Kind: schema.KindGroup, Label: label, Description: description, Fields: fields}
}

func toggle(key, label, description string, def bool) schema.Field {
	return schema.Field{Key: key, Kind: schema.KindToggle, Label: label, Description: description, Default: def}
}

func text(key, label, description, def string) schema.Field {
	return schema.Field{Key: key, Kind: schema.KindText, Label: label, Description: description, Default: def}
}

func number(key, label, description string, def int64) schema.Field {
	return schema.Field{Key: key, Kind: schema.KindNumber, Label: label, Description: description, Default: def}
}

func color(key, label, description, def string) schema.Field {
	return schema.Field{Key: key, Kind: schema.KindColor, Label: label, Description: description, Default: def}
}

func selectOf(kind schema.Kind, key, label, description string, def any, opts ...string) schema.Field {
	f := schema.Field{Key: key, Kind: kind, Label: label, Description: description, Default: def}
	for i := 0; i+1 < len(opts); i += 2 {
		f.Options = append(f.Options, schema.Option{Value: opts[i], Label: opts[i+1]})
	}
	return f
}

func repeater(key, label, description string, fields ...schema.Field) schema.Field {
	return schema.Field{Key: key, Kind: schema.KindRepeater, Label: label, Description: description, Default: []any{}, Fields: fields}
}

func within(min, max float64) func(*schema.Field) {
	return func(f *schema.Field) {
		f.Min = schema.Float(min)
		f.Max = schema.Float(max)
	}
}

func atLeast(min float64) func(*schema.Field) {
	return func(f *schema.Field) { f.Min = schema.Float(min) }
}

func dependsOn(rules map[string]any) func(*schema.Field) {
	return func(f *schema.Field) { f.DependsOn = rules }
}

func requires(c dependency.Constraints) func(*schema.Field) {
	return func(f *schema.Field) { f.Dependencies = c }
}

func pattern(p string) func(*schema.Field) {
	return func(f *schema.Field) { f.Pattern = p }
}

func with(f schema.Field, opts ...func(*schema.Field)) schema.Field {
	for _, o := range opts {
		o(&f)
	}
	return f
}
