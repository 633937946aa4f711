package modules

import (
	"github.com/artpar/modhost/core/module"
	"github.com/artpar/modhost/domain/schema"
)

// A11y toggles front end accessibility fixes.
func A11y() module.Definition {
	return module.Definition{
		Slug:             "a11y",
		Name:             "Accessibility",
		Description:      "Front end accessibility improvements.",
		Author:           author,
		Version:          "1.1.0",
		EnabledByDefault: true,
		Schema: schema.Schema{
			group("basic_group", "Basics", "",
				toggle("skip_link", "Skip link", "Add a skip-to-content link.", true),
				toggle("scroll_top", "Accessible scroll to top button", "", true),
			),
			group("navigation_group", "Navigation & Focus", "Keyboard navigation and focus management",
				toggle("nav_keyboard", "Keyboard accessible main navigation", "", true),
				toggle("focus_elements", "Focus all clickable elements", "", true),
				toggle("external_links", "Tag external links for assistive technology", "", true),
			),
			group("content_group", "Content & ARIA", "Content accessibility and ARIA enhancements",
				toggle("aria_support", "ARIA support for relevant elements", "", true),
				toggle("optimize_forms", "Optimize forms", "", true),
				toggle("fix_screenreader", "Fix screen reader text", "", true),
			),
			group("visual_group", "Visual & Animation", "Visual accessibility and animation controls",
				toggle("stop_animations", "Respect reduced motion", "Stop animations when the visitor prefers reduced motion.", true),
				toggle("underline_links", "Underline links", "Underline all links except headlines and social icons.", true),
				color("text_highlight_bg", "Selection background color", "", "#3399ff"),
				color("text_highlight_color", "Selection text color", "", "#ffffff"),
				toggle("slider_nav_spacing", "Space slider controls", "Add spacing between slider navigation elements.", false),
			),
		},
	}
}
