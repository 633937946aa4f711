package modules

import (
	"github.com/artpar/modhost/core/module"
	"github.com/artpar/modhost/domain/schema"
)

// FontPathPattern restricts preloaded font paths to font files under the
// content directory.
const FontPathPattern = `^/wp-content/.*\.(woff|woff2|ttf|otf|eot)$`

// Pagespeed removes unneeded head output and preloads fonts.
func Pagespeed() module.Definition {
	preload := repeater("preload_fonts_list", "Fonts to preload", "",
		with(text("path", "Font path", "Path relative to the site root.", ""), pattern(FontPathPattern)),
	)
	preload.Default = []any{
		map[string]any{"path": "/wp-content/themes/Divi/core/admin/fonts/modules/all/modules.woff"},
	}

	return module.Definition{
		Slug:             "pagespeed",
		Name:             "Pagespeed",
		Description:      "Page load optimizations.",
		Author:           author,
		Version:          "1.1.0",
		EnabledByDefault: true,
		Schema: schema.Schema{
			toggle("remove_pingback", "Remove pingback header", "", true),
			toggle("remove_dashicons", "Remove admin icon font for visitors", "", true),
			toggle("remove_version_strings", "Remove version query strings", "", true),
			toggle("remove_shortlink", "Remove shortlink", "", true),
			toggle("preload_fonts", "Preload fonts", "", false),
			with(preload, dependsOn(map[string]any{"preload_fonts": true})),
		},
	}
}
