package modules

import (
	"github.com/artpar/modhost/core/module"
	"github.com/artpar/modhost/domain/schema"
)

// CustomPostTypes registers the jobs post type and its taxonomies.
func CustomPostTypes() module.Definition {
	jobs := map[string]any{"enable_jobs": true}

	return module.Definition{
		Slug:        "customposttypes",
		Name:        "Custom Post Types",
		Description: "Register custom post types with optional field groups.",
		Author:      author,
		Version:     "1.0.0",
		Schema: schema.Schema{
			group("jobs_group", "Jobs", "",
				toggle("enable_jobs", "Enable jobs", "", false),
				with(schema.Field{Key: "jobs_parent_page", Kind: schema.KindPageReference, Label: "Parent page", Default: int64(0)},
					dependsOn(jobs)),
				with(selectOf(schema.KindMultiSelect, "jobs_supports", "Supported features", "",
					[]any{"title", "editor", "thumbnail", "excerpt", "revisions"},
					"title", "Title",
					"editor", "Editor",
					"thumbnail", "Featured image",
					"excerpt", "Excerpt",
					"revisions", "Revisions",
					"author", "Author",
					"comments", "Comments",
					"custom-fields", "Custom fields",
				), dependsOn(jobs)),
				with(toggle("enable_job_categories", "Enable job categories", "", false), dependsOn(jobs)),
				with(toggle("enable_job_locations", "Enable job locations", "", false), dependsOn(jobs)),
			),
		},
	}
}
