package modules

import (
	"github.com/artpar/modhost/core/module"
	"github.com/artpar/modhost/domain/options"
	"github.com/artpar/modhost/domain/schema"
)

// FileManager manages uploaded files with capability based access. Some of
// its options are managed outside the settings surface and only carry
// defaults.
func FileManager() module.Definition {
	return module.Definition{
		Slug:        "filemanager",
		Name:        "File Manager",
		Description: "File upload, download and management with permission based access control.",
		Author:      author,
		Version:     "1.0.0",
		Defaults: options.Value{
			"allowed_file_types": []any{},
			"max_file_size":      int64(0),
			"areas_list": []any{
				map[string]any{
					"slug":                "general",
					"name":                "General Files",
					"description":         "General file downloads for all users",
					"required_capability": "read",
				},
			},
			"edit_capability":        "edit_downloads",
			"delete_capability":      "delete_downloads",
			"show_author":            false,
			"enable_frontend_upload": true,
		},
		Schema: schema.Schema{
			group("general", "General", "",
				toggle("cpt_enabled", "Register file post type", "", true),
				with(number("menu_position", "Menu position", "", 26), within(5, 100)),
			),
			group("permissions", "Permissions", "",
				text("manage_capability", "Manage capability", "Capability required to manage files.", "manage_downloads"),
				text("upload_capability", "Upload capability", "Capability required to upload files.", "upload_downloads"),
			),
			group("frontend", "Frontend", "",
				toggle("show_file_size", "Show file size", "", true),
				toggle("show_file_type", "Show file type", "", true),
				toggle("show_upload_date", "Show upload date", "", true),
			),
		},
	}
}
