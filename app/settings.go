package app

import (
	"context"

	"github.com/artpar/modhost/core/events"
	"github.com/artpar/modhost/core/module"
	"github.com/artpar/modhost/domain/options"
	"github.com/artpar/modhost/domain/schema"
	"github.com/artpar/modhost/ports"
	"github.com/rs/zerolog"
)

// ModuleSummary is the listing view of one module.
type ModuleSummary struct {
	Slug        string        `json:"slug"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Author      string        `json:"author"`
	Version     string        `json:"version"`
	Enabled     bool          `json:"enabled"`
	State       string        `json:"state"`
	Options     options.Value `json:"options"`
	Settings    schema.Schema `json:"admin_settings"`
}

// UpdateResult reports a settings write.
type UpdateResult struct {
	Options options.Value
	Changed []string
	Dropped []schema.Drop
}

// SettingsDeps contains dependencies for the settings service.
type SettingsDeps struct {
	Registry  *module.Registry
	Options   *OptionsService
	Publisher ports.EventPublisher
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Metrics   ports.SettingsMetrics
	Logger    zerolog.Logger
}

// SettingsService lists modules and applies toggles and settings updates.
type SettingsService struct {
	registry  *module.Registry
	options   *OptionsService
	publisher ports.EventPublisher
	events    events.Factory
	metrics   ports.SettingsMetrics
	logger    zerolog.Logger
}

// NewSettingsService creates a settings service.
func NewSettingsService(deps SettingsDeps) *SettingsService {
	m := deps.Metrics
	if m == nil {
		m = ports.NopSettingsMetrics{}
	}
	return &SettingsService{
		registry:  deps.Registry,
		options:   deps.Options,
		publisher: deps.Publisher,
		events:    events.Factory{IDs: deps.IDGen, Clock: deps.Clock},
		metrics:   m,
		logger:    deps.Logger,
	}
}

// ListModules returns a summary of every exposed module keyed by slug.
// Schemas carry visibility and dependency status for the current options.
func (s *SettingsService) ListModules(ctx context.Context) (map[string]ModuleSummary, error) {
	out := make(map[string]ModuleSummary)
	for _, m := range s.registry.List() {
		if _, err := s.registry.Exposed(m.Slug()); err != nil {
			continue
		}
		summary, err := s.summarize(ctx, m)
		if err != nil {
			return nil, err
		}
		out[m.Slug()] = summary
	}
	return out, nil
}

// GetModule returns the summary of one exposed module.
func (s *SettingsService) GetModule(ctx context.Context, slug string) (ModuleSummary, error) {
	m, err := s.registry.Exposed(slug)
	if err != nil {
		return ModuleSummary{}, err
	}
	return s.summarize(ctx, m)
}

func (s *SettingsService) summarize(ctx context.Context, m *module.Module) (ModuleSummary, error) {
	opts, err := s.options.Get(ctx, m.Slug())
	if err != nil {
		return ModuleSummary{}, err
	}
	def := m.Definition()
	return ModuleSummary{
		Slug:        def.Slug,
		Name:        def.Name,
		Description: def.Description,
		Author:      def.Author,
		Version:     def.Version,
		Enabled:     opts.Enabled(),
		State:       m.State().String(),
		Options:     opts,
		Settings:    s.registry.Annotated(m, opts),
	}, nil
}

// ToggleModule sets the enabled flag of slug and nothing else.
func (s *SettingsService) ToggleModule(ctx context.Context, slug string, enabled bool) error {
	if _, err := s.registry.SetEnabled(ctx, slug, enabled); err != nil {
		return err
	}
	s.metrics.Toggled(slug, enabled)
	return nil
}

// UpdateModuleSettings sanitizes raw against the module schema and merges
// the result into the stored options. The stored enabled flag always wins
// over a submitted one. Dropped values are reported, not rejected.
func (s *SettingsService) UpdateModuleSettings(ctx context.Context, slug string, raw map[string]any) (UpdateResult, error) {
	m, err := s.registry.Exposed(slug)
	if err != nil {
		return UpdateResult{}, err
	}

	prev, err := s.options.Get(ctx, slug)
	if err != nil {
		return UpdateResult{}, err
	}

	sanitized, drops := schema.SanitizeReport(raw, m.Definition().Schema)
	next := prev.Merge(sanitized)
	next[schema.EnabledKey] = prev[schema.EnabledKey]

	for _, d := range drops {
		s.metrics.Dropped(slug, d.Reason)
		s.logger.Debug().
			Str("slug", slug).
			Str("field", d.Field).
			Str("reason", d.Reason).
			Msg("submitted value dropped")
	}

	if err := s.options.Set(ctx, slug, next); err != nil {
		s.metrics.Saved(slug, false)
		return UpdateResult{}, err
	}
	s.metrics.Saved(slug, true)

	changed := options.Changed(prev, next)
	s.logger.Info().
		Str("slug", slug).
		Strs("changed", changed).
		Int("dropped", len(drops)).
		Msg("module settings updated")

	if s.publisher != nil {
		s.publisher.Publish(ctx, s.events.New(events.OptionsSaved, slug, map[string]any{
			"old":     prev,
			"new":     next.Clone(),
			"changed": changed,
		}))
	}

	return UpdateResult{Options: next, Changed: changed, Dropped: drops}, nil
}
