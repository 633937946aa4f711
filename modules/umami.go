package modules

import (
	"github.com/artpar/modhost/core/module"
	"github.com/artpar/modhost/domain/schema"
)

// Umami wires the Umami analytics tracker.
func Umami() module.Definition {
	return module.Definition{
		Slug:             "umami",
		Name:             "Umami",
		Description:      "Umami analytics integration.",
		Author:           author,
		Version:          "1.0.0",
		EnabledByDefault: true,
		Schema: schema.Schema{
			with(text("umami_domain", "Umami domain", "Host serving the tracker script, without scheme.", ""),
				pattern(`^$|^[a-zA-Z0-9.-]+(:[0-9]+)?$`)),
			text("website_id", "Website ID", "", ""),
			toggle("ignore_logged_in", "Ignore signed-in users", "", true),
			toggle("enable_events", "Track custom events", "", false),
			with(repeater("events", "Events", "Elements whose clicks are reported as events.",
				text("id", "Element ID", "", ""),
				text("name", "Event name", "", ""),
			), dependsOn(map[string]any{"enable_events": true})),
		},
	}
}
