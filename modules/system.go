package modules

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/artpar/modhost/core/module"
	"github.com/artpar/modhost/domain/dependency"
	"github.com/artpar/modhost/domain/options"
	"github.com/artpar/modhost/domain/schema"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// System shows the environment badge and status panel.
func System() module.Definition {
	return module.Definition{
		Slug:        "system",
		Name:        "System",
		Description: "Environment badge, search engine visibility warning and status panel.",
		Author:      author,
		Version:     "1.0.0",
		Schema: schema.Schema{
			toggle("environment_badge", "Show environment badge", "Show the current environment mode in the toolbar.", false),
			with(toggle("search_visibility_warning", "Warn about search engine visibility", "Flag the badge when indexing is discouraged.", true),
				dependsOn(map[string]any{"environment_badge": true})),
			toggle("status_panel", "Show status panel", "Show host and companion versions on the dashboard.", false),
		},
		NewService: func(sc module.ServiceContext) (module.Service, error) {
			return &StatusService{mode: sc.Mode, env: sc.Env, options: sc.Options, logger: sc.Logger}, nil
		},
	}
}

// StatusService reports the environment mode and versions.
type StatusService struct {
	mode    string
	env     dependency.Environment
	options func(ctx context.Context) (options.Value, error)
	logger  zerolog.Logger
}

// Start implements module.Service.
func (s *StatusService) Start(ctx context.Context, opts options.Value) error {
	return nil
}

// Status is returned by the status endpoint.
type Status struct {
	Mode     string            `json:"mode"`
	Badge    bool              `json:"badge"`
	Warning  bool              `json:"search_visibility_warning"`
	Versions map[string]string `json:"versions,omitempty"`
}

// Status builds the current status. Versions are included only when the
// status panel is enabled.
func (s *StatusService) Status(ctx context.Context) (Status, error) {
	opts, err := s.options(ctx)
	if err != nil {
		return Status{}, err
	}

	st := Status{
		Mode:    s.mode,
		Badge:   opts.Bool("environment_badge"),
		Warning: opts.Bool("environment_badge") && opts.Bool("search_visibility_warning"),
	}
	if opts.Bool("status_panel") && s.env != nil {
		st.Versions = map[string]string{"host": s.env.HostVersion()}
		for _, b := range []dependency.Subject{dependency.SubjectBuilderA, dependency.SubjectBuilderB} {
			if v, ok := s.env.BuilderVersion(b); ok {
				st.Versions[string(b)] = v
			}
		}
	}
	return st, nil
}

// Handler serves GET /status.
func (s *StatusService) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		st, err := s.Status(r.Context())
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to build status")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(st)
	})
	return r
}
