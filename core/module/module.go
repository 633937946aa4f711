// Package module defines feature modules and the registry that owns their
// lifecycle.
//
// A module is a static Definition (slug, settings schema, default options,
// optional companion service) registered once at startup. Init loads each
// module's options and moves it to Active or Disabled for the rest of the
// process:
//
//	Unregistered -> Initializing -> Disabled | Active
//
// Modules restricted to certain environment modes stay Disabled outside
// those modes and never expose settings.
package module

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"slices"
	"sync"

	"github.com/artpar/modhost/domain/dependency"
	"github.com/artpar/modhost/domain/options"
	"github.com/artpar/modhost/domain/schema"
	"github.com/rs/zerolog"
)

// Errors returned by the registry.
var (
	ErrNotFound      = errors.New("module not found")
	ErrDuplicateSlug = errors.New("module slug already registered")
	ErrInvalidSlug   = errors.New("invalid module slug")
	ErrRestricted    = errors.New("module not available in this environment")
	ErrNotReady      = errors.New("registry not initialized")
)

// State is a module lifecycle state.
type State int

// Lifecycle states.
const (
	StateUnregistered State = iota
	StateInitializing
	StateDisabled
	StateActive
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateDisabled:
		return "disabled"
	case StateActive:
		return "active"
	}
	return "unregistered"
}

// DefaultPermittedModes are the modes a restricted module runs in when its
// definition names none.
var DefaultPermittedModes = []string{"development", "local"}

var slugPattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// Definition statically describes a module.
type Definition struct {
	Slug        string
	Name        string
	Description string
	Author      string
	Version     string

	// EnvironmentRestricted limits the module to PermittedModes.
	EnvironmentRestricted bool
	PermittedModes        []string

	Schema schema.Schema

	// Defaults overrides the defaults declared on schema fields.
	Defaults options.Value

	// EnabledByDefault seeds the enabled option.
	EnabledByDefault bool

	// NewService builds the companion service of an active module.
	NewService ServiceFactory
}

// DefaultOptions returns the schema defaults overlaid with Defaults and the
// enabled flag.
func (d Definition) DefaultOptions() options.Value {
	v := options.Value(d.Schema.Defaults()).Merge(d.Defaults)
	v[schema.EnabledKey] = d.EnabledByDefault
	return v
}

// Permits reports whether the module may run in mode.
func (d Definition) Permits(mode string) bool {
	if !d.EnvironmentRestricted {
		return true
	}
	modes := d.PermittedModes
	if len(modes) == 0 {
		modes = DefaultPermittedModes
	}
	return slices.Contains(modes, mode)
}

func (d Definition) validate() error {
	if !slugPattern.MatchString(d.Slug) {
		return ErrInvalidSlug
	}
	return d.Schema.Validate()
}

// Service is the companion of an active module.
type Service interface {
	// Start is called once with the module's options when it becomes active.
	Start(ctx context.Context, opts options.Value) error
}

// OptionsListener is implemented by services that react to saved settings.
type OptionsListener interface {
	OptionsChanged(ctx context.Context, prev, next options.Value) error
}

// Router is implemented by services that expose HTTP endpoints. The handler
// is mounted under the module's extension prefix.
type Router interface {
	Handler() http.Handler
}

// ServiceContext is passed to a ServiceFactory.
type ServiceContext struct {
	Slug   string
	Mode   string
	Logger zerolog.Logger

	// Env reports host and companion versions.
	Env dependency.Environment

	// Options reads the module's current options.
	Options func(ctx context.Context) (options.Value, error)
}

// ServiceFactory builds a companion service.
type ServiceFactory func(sc ServiceContext) (Service, error)

// Module is a registered module instance.
type Module struct {
	def Definition

	mu         sync.RWMutex
	state      State
	restricted bool
	service    Service
}

// Slug returns the module's unique slug.
func (m *Module) Slug() string { return m.def.Slug }

// Definition returns the static definition.
func (m *Module) Definition() Definition { return m.def }

// DefaultOptions returns the module's default options.
func (m *Module) DefaultOptions() options.Value { return m.def.DefaultOptions() }

// State returns the lifecycle state.
func (m *Module) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Restricted reports whether the environment mode keeps the module from
// exposing settings.
func (m *Module) Restricted() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.restricted
}

// Service returns the companion service, or nil unless the module is active
// and declares one.
func (m *Module) Service() Service {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.service
}

func (m *Module) set(state State, svc Service, restricted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	m.service = svc
	m.restricted = restricted
}
