package module

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/artpar/modhost/core/events"
	"github.com/artpar/modhost/domain/dependency"
	"github.com/artpar/modhost/domain/options"
	"github.com/artpar/modhost/domain/schema"
	"github.com/rs/zerolog"
)

// OptionsStore is the options facade used by the registry. Get must
// back-fill defaults.
type OptionsStore interface {
	Get(ctx context.Context, slug string) (options.Value, error)
	Set(ctx context.Context, slug string, v options.Value) error
	Delete(ctx context.Context, slug string) error
}

// ModeSource reports the current host environment mode.
type ModeSource interface {
	Mode() string
}

// Config holds registry collaborators.
type Config struct {
	Checker *dependency.Checker
	Mode    ModeSource
	Env     dependency.Environment
	Bus     *events.Bus
	Events  events.Factory
	Logger  zerolog.Logger
}

// Registry tracks every module by slug. It is built once at startup and
// passed to whatever needs module lookup.
type Registry struct {
	cfg Config

	mu      sync.RWMutex
	modules map[string]*Module
	order   []string
	store   OptionsStore
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg Config) *Registry {
	if cfg.Checker == nil {
		cfg.Checker = dependency.NewChecker(nil)
	}
	return &Registry{
		cfg:     cfg,
		modules: make(map[string]*Module),
	}
}

// Register adds a module in the Unregistered state. Slugs are unique.
func (r *Registry) Register(def Definition) (*Module, error) {
	if err := def.validate(); err != nil {
		return nil, fmt.Errorf("register %q: %w", def.Slug, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.modules[def.Slug]; exists {
		return nil, fmt.Errorf("register %q: %w", def.Slug, ErrDuplicateSlug)
	}

	m := &Module{def: def}
	r.modules[def.Slug] = m
	r.order = append(r.order, def.Slug)
	return m, nil
}

// RegisterAll registers defs in order, stopping at the first error.
func (r *Registry) RegisterAll(defs []Definition) error {
	for _, def := range defs {
		if _, err := r.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// Init loads the options of every registered module and settles it in
// Active or Disabled. Companion services of active modules are started and
// subscribed to saved settings. Init binds store for later lifecycle calls.
func (r *Registry) Init(ctx context.Context, store OptionsStore) error {
	r.mu.Lock()
	r.store = store
	r.mu.Unlock()

	var errs []error
	for _, m := range r.List() {
		if err := r.init(ctx, m); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) init(ctx context.Context, m *Module) error {
	slug := m.Slug()
	m.set(StateInitializing, nil, false)

	mode := r.mode()
	if !m.def.Permits(mode) {
		m.set(StateDisabled, nil, true)
		r.cfg.Logger.Debug().Str("slug", slug).Str("mode", mode).Msg("module restricted in this environment")
		return nil
	}

	opts, err := r.store.Get(ctx, slug)
	if err != nil {
		m.set(StateDisabled, nil, false)
		return fmt.Errorf("init %q: %w", slug, err)
	}

	if !opts.Enabled() {
		m.set(StateDisabled, nil, false)
		r.cfg.Logger.Debug().Str("slug", slug).Msg("module disabled")
		return nil
	}

	svc, err := r.startService(ctx, m, mode, opts)
	if err != nil {
		m.set(StateDisabled, nil, false)
		return fmt.Errorf("init %q: %w", slug, err)
	}
	m.set(StateActive, svc, false)

	r.cfg.Logger.Info().
		Str("slug", slug).
		Str("version", m.def.Version).
		Bool("service", svc != nil).
		Msg("module active")

	if r.cfg.Bus != nil {
		r.cfg.Bus.Publish(ctx, r.cfg.Events.New(events.ModuleActivated, slug, nil))
	}
	return nil
}

func (r *Registry) startService(ctx context.Context, m *Module, mode string, opts options.Value) (Service, error) {
	if m.def.NewService == nil {
		return nil, nil
	}

	slug := m.Slug()
	svc, err := m.def.NewService(ServiceContext{
		Slug:   slug,
		Mode:   mode,
		Logger: r.cfg.Logger.With().Str("module", slug).Logger(),
		Env:    r.cfg.Env,
		Options: func(ctx context.Context) (options.Value, error) {
			return r.store.Get(ctx, slug)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("build service: %w", err)
	}
	if svc == nil {
		return nil, nil
	}
	if err := svc.Start(ctx, opts); err != nil {
		return nil, fmt.Errorf("start service: %w", err)
	}

	if l, ok := svc.(OptionsListener); ok && r.cfg.Bus != nil {
		r.cfg.Bus.Subscribe(events.OptionsSaved, func(ctx context.Context, e events.Event) error {
			if e.Module != slug {
				return nil
			}
			prev, _ := e.Data["old"].(options.Value)
			next, _ := e.Data["new"].(options.Value)
			return l.OptionsChanged(ctx, prev, next)
		})
	}
	return svc, nil
}

func (r *Registry) mode() string {
	if r.cfg.Mode == nil {
		return ""
	}
	return r.cfg.Mode.Mode()
}

// Get returns a module by slug.
func (r *Registry) Get(slug string) (*Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[slug]
	return m, ok
}

// Lookup returns a module by slug or ErrNotFound.
func (r *Registry) Lookup(slug string) (*Module, error) {
	m, ok := r.Get(slug)
	if !ok {
		return nil, fmt.Errorf("%q: %w", slug, ErrNotFound)
	}
	return m, nil
}

// Exposed returns a module whose settings surface is available, failing
// with ErrNotFound or ErrRestricted.
func (r *Registry) Exposed(slug string) (*Module, error) {
	m, err := r.Lookup(slug)
	if err != nil {
		return nil, err
	}
	if m.Restricted() || !m.def.Permits(r.mode()) {
		return nil, fmt.Errorf("%q: %w", slug, ErrRestricted)
	}
	return m, nil
}

// List returns modules in registration order.
func (r *Registry) List() []*Module {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Module, 0, len(r.order))
	for _, slug := range r.order {
		out = append(out, r.modules[slug])
	}
	return out
}

// Count returns how many modules are in state.
func (r *Registry) Count(state State) int {
	n := 0
	for _, m := range r.List() {
		if m.State() == state {
			n++
		}
	}
	return n
}

// DefaultOptions returns the default options of slug.
func (r *Registry) DefaultOptions(slug string) (options.Value, bool) {
	m, ok := r.Get(slug)
	if !ok {
		return nil, false
	}
	return m.DefaultOptions(), true
}

// AllDefaultOptions returns the default options of every module by slug.
func (r *Registry) AllDefaultOptions() map[string]options.Value {
	out := make(map[string]options.Value)
	for _, m := range r.List() {
		out[m.Slug()] = m.DefaultOptions()
	}
	return out
}

// IsEnabled reports the persisted enabled flag of slug.
func (r *Registry) IsEnabled(ctx context.Context, slug string) (bool, error) {
	store, err := r.boundStore()
	if err != nil {
		return false, err
	}
	if _, err := r.Lookup(slug); err != nil {
		return false, err
	}
	opts, err := store.Get(ctx, slug)
	if err != nil {
		return false, err
	}
	return opts.Enabled(), nil
}

// SetEnabled persists the enabled flag of slug, leaving every other option
// untouched. The lifecycle state follows on the next start.
func (r *Registry) SetEnabled(ctx context.Context, slug string, enabled bool) (options.Value, error) {
	store, err := r.boundStore()
	if err != nil {
		return nil, err
	}
	if _, err := r.Exposed(slug); err != nil {
		return nil, err
	}

	prev, err := store.Get(ctx, slug)
	if err != nil {
		return nil, err
	}
	next := prev.WithEnabled(enabled)
	if err := store.Set(ctx, slug, next); err != nil {
		return nil, err
	}

	r.cfg.Logger.Info().Str("slug", slug).Bool("enabled", enabled).Msg("module toggled")
	if r.cfg.Bus != nil {
		r.cfg.Bus.Publish(ctx, r.cfg.Events.New(events.ModuleToggled, slug, map[string]any{
			"enabled": enabled,
		}))
	}
	return next, nil
}

// Activate persists the module as enabled, writing its defaults when
// nothing is stored yet.
func (r *Registry) Activate(ctx context.Context, slug string) error {
	_, err := r.SetEnabled(ctx, slug, true)
	return err
}

// Deactivate persists the module as disabled.
func (r *Registry) Deactivate(ctx context.Context, slug string) error {
	_, err := r.SetEnabled(ctx, slug, false)
	return err
}

// Uninstall deletes every persisted option of slug. The next read yields
// the defaults.
func (r *Registry) Uninstall(ctx context.Context, slug string) error {
	store, err := r.boundStore()
	if err != nil {
		return err
	}
	if _, err := r.Lookup(slug); err != nil {
		return err
	}
	if err := store.Delete(ctx, slug); err != nil {
		return err
	}

	r.cfg.Logger.Info().Str("slug", slug).Msg("module options removed")
	if r.cfg.Bus != nil {
		r.cfg.Bus.Publish(ctx, r.cfg.Events.New(events.ModuleReset, slug, nil))
	}
	return nil
}

// Annotated returns the module schema with visibility and dependency status
// computed for values.
func (r *Registry) Annotated(m *Module, values options.Value) schema.Schema {
	return schema.Annotate(m.def.Schema, r.cfg.Checker, values)
}

func (r *Registry) boundStore() (OptionsStore, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.store == nil {
		return nil, ErrNotReady
	}
	return r.store, nil
}
