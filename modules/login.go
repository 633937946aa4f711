package modules

import (
	"github.com/artpar/modhost/core/module"
	"github.com/artpar/modhost/domain/schema"
)

// Login brands the login page.
func Login() module.Definition {
	return module.Definition{
		Slug:        "login",
		Name:        "Login",
		Description: "Customize the login page with site identity and a background image.",
		Author:      author,
		Version:     "1.0.0",
		Schema: schema.Schema{
			toggle("login_site_identity", "Use site identity", "Show the site logo and link it to the home page.", false),
			with(number("login_logo_width", "Logo width", "Logo width in pixels.", 120),
				within(20, 600),
				dependsOn(map[string]any{"login_site_identity": true})),
			{Key: "login_background_image", Kind: schema.KindImage, Label: "Background image", Default: int64(0)},
		},
	}
}
