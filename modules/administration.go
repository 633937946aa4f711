package modules

import (
	"github.com/artpar/modhost/core/module"
	"github.com/artpar/modhost/domain/dependency"
	"github.com/artpar/modhost/domain/schema"
)

// Administration bundles back office, media and front end tweaks. The
// upload format toggles only matter on hosts without native support.
func Administration() module.Definition {
	return module.Definition{
		Slug:             "administration",
		Name:             "Administration",
		Description:      "Back office, content management and front end enhancements.",
		Author:           author,
		Version:          "1.0.0",
		EnabledByDefault: true,
		Schema: schema.Schema{
			group("admin_group", "Admin & Backend", "",
				toggle("duplicate_posts", "Enable duplicate posts", "Duplicate posts and pages from the list view.", false),
				toggle("stop_mail_updates", "Disable auto-update emails", "", false),
			),
			group("media_group", "Media & Files", "Media library enhancements and upload formats",
				toggle("media_infinite_scroll", "Infinite scroll in the media library", "", false),
				with(toggle("svg_support", "Allow SVG uploads", "SVG files can contain scripts.", false),
					requires(dependency.Constraints{Host: ">= 4.7"})),
				with(toggle("webp_support", "Allow WebP uploads", "Native from host 5.8.", false),
					requires(dependency.Constraints{Host: "< 5.8"})),
				with(toggle("avif_support", "Allow AVIF uploads", "Native from host 6.5.", false),
					requires(dependency.Constraints{Host: "< 6.5"})),
			),
			group("image_sizes_group", "Custom Image Sizes", "Additional sizes generated on upload",
				repeater("custom_image_sizes", "Image sizes", "",
					text("name", "Name", "Unique identifier, lowercase with underscores.", ""),
					with(number("width", "Width", "Maximum width in pixels.", 0), atLeast(0)),
					with(number("height", "Height", "Maximum height in pixels.", 0), atLeast(0)),
					toggle("crop", "Crop to exact dimensions", "", false),
				),
			),
			group("frontend_group", "Frontend & Design", "",
				toggle("hyphens", "Enable hyphenation", "", false),
				toggle("external_links_new_tab", "Open external links in a new tab", "", false),
				with(text("external_links_rel", "Rel attributes for external links", "Space separated rel values.", "noopener noreferrer nofollow"),
					dependsOn(map[string]any{"external_links_new_tab": true})),
			),
		},
	}
}
