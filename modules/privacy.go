package modules

import (
	"github.com/artpar/modhost/core/module"
	"github.com/artpar/modhost/domain/schema"
)

// Privacy strips tracking features and hardens author exposure.
func Privacy() module.Definition {
	return module.Definition{
		Slug:             "privacy",
		Name:             "Privacy & Security",
		Description:      "Privacy and security hardening, including data protection compliance.",
		Author:           author,
		Version:          "1.1.0",
		EnabledByDefault: true,
		Schema: schema.Schema{
			group("privacy", "Privacy", "",
				toggle("comments_external", "Comments external", "Treat links in comments as external.", true),
				toggle("comments_ip", "Comments IP", "Store commenter IP addresses.", true),
				toggle("disable_emojis", "Disable emojis", "Do not load the remote emoji script.", true),
				toggle("disable_oembeds", "Disable oEmbeds", "Do not embed remote content.", true),
				toggle("dns_prefetching", "Disable DNS prefetching", "Remove DNS prefetch hints.", true),
				toggle("rest_api", "Disable public REST API", "Restrict the REST API to signed-in users.", true),
			),
			group("security", "Security", "",
				toggle("track_last_login", "Track last login time", "Show a last login column in the users table.", false),
				toggle("disable_author_archives", "Disable author archives", "Answer author archive pages with 404.", false),
				toggle("obfuscate_author_slugs", "Obfuscate author slugs", "Replace usernames in author URLs with encoded ids.", false),
			),
		},
	}
}
