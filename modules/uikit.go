package modules

import (
	"github.com/artpar/modhost/core/module"
	"github.com/artpar/modhost/domain/schema"
)

// UIKit demonstrates every field kind, repeater and visibility rule. It is
// only available in development environments.
func UIKit() module.Definition {
	return module.Definition{
		Slug:                  "uikit",
		Name:                  "UI Kit",
		Description:           "Reference module for all field types, repeaters and dependencies.",
		Author:                author,
		Version:               "1.0.0",
		EnvironmentRestricted: true,
		EnabledByDefault:      true,
		Schema: schema.Schema{
			group("basic_fields", "Basic Form Fields", "All available field types",
				text("test_text", "Text", "", "Default text value"),
				schema.Field{Key: "test_textarea", Kind: schema.KindTextarea, Label: "Textarea", Default: "Default textarea\nwith multiple lines"},
				with(number("test_number", "Number", "", 42), within(0, 1000)),
				toggle("test_toggle", "Toggle", "", true),
				selectOf(schema.KindSelect, "test_select", "Select", "", "option2",
					"option1", "First Option",
					"option2", "Second Option",
					"option3", "Third Option",
					"option4", "Fourth Option",
				),
				selectOf(schema.KindMultiSelect, "test_multi_select", "Multi select", "", []any{"option1", "option3"},
					"option1", "Option 1",
					"option2", "Option 2",
					"option3", "Option 3",
					"option4", "Option 4",
					"option5", "Option 5",
				),
				color("test_color", "Color", "", "#007cba"),
				schema.Field{Key: "test_image", Kind: schema.KindImage, Label: "Image", Default: int64(0)},
				schema.Field{Key: "test_page", Kind: schema.KindPageReference, Label: "Page", Default: int64(0)},
				schema.Field{Key: "test_list", Kind: schema.KindList, Label: "List", Description: "One entry per line.", Default: []any{}},
			),
			group("repeater_fields", "Repeater Fields", "Simple and complex repeater examples",
				repeater("simple_repeater", "Simple repeater", "",
					text("title", "Item title", "", "New Item"),
					schema.Field{Key: "description", Kind: schema.KindTextarea, Label: "Item description", Default: "Item description here..."},
				),
				repeater("complex_repeater", "Complex repeater", "",
					text("name", "Name", "", "Complex Item"),
					selectOf(schema.KindSelect, "type", "Type", "", "type_a",
						"type_a", "Type A",
						"type_b", "Type B",
						"type_c", "Type C",
					),
					toggle("enabled", "Enable item", "", true),
					with(number("value", "Value (type A only)", "", 25),
						within(1, 100),
						dependsOn(map[string]any{"type": "type_a"})),
					with(color("color", "Color (when enabled)", "", "#ff0000"),
						dependsOn(map[string]any{"enabled": true})),
					with(text("advanced_text", "Advanced text (types B and C)", "", "Advanced setting"),
						dependsOn(map[string]any{"type": []any{"type_b", "type_c"}})),
				),
			),
			group("dependency_fields", "Dependencies", "Simple, conditional, double and array rules",
				toggle("dep_toggle", "Master toggle", "", true),
				with(text("dep_text", "Simple dependency", "", "This depends on toggle"),
					dependsOn(map[string]any{"dep_toggle": true})),
				selectOf(schema.KindSelect, "dep_mode", "Mode", "", "mode_a",
					"mode_a", "Mode A",
					"mode_b", "Mode B",
					"mode_c", "Mode C",
				),
				with(text("dep_conditional", "Conditional dependency", "", "Conditional value"),
					dependsOn(map[string]any{"dep_mode": "mode_a"})),
				with(color("dep_double", "Double dependency", "", "#ff6b35"),
					dependsOn(map[string]any{"dep_toggle": true, "dep_mode": "mode_a"})),
				with(text("dep_array", "Array dependency", "", "Array dependent value"),
					dependsOn(map[string]any{"dep_mode": []any{"mode_b", "mode_c"}})),
			),
		},
	}
}
