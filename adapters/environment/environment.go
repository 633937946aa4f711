// Package environment exposes the host environment facts that module
// constraints and environment restrictions are evaluated against.
// Facts come from configuration and can be swapped while serving.
package environment

import (
	"maps"
	"sync/atomic"

	"github.com/artpar/modhost/domain/dependency"
)

// Host environment modes.
const (
	ModeProduction  = "production"
	ModeStaging     = "staging"
	ModeDevelopment = "development"
	ModeLocal       = "local"
)

// Facts is one snapshot of the environment.
type Facts struct {
	Mode     string
	Host     string
	BuilderA string
	BuilderB string

	// Plugins maps an installed companion plugin to its version.
	Plugins map[string]string
}

// Live is a concurrency-safe dependency.Environment whose facts can be
// replaced atomically.
type Live struct {
	facts atomic.Pointer[Facts]
}

// New creates a Live environment holding f.
func New(f Facts) *Live {
	l := &Live{}
	l.Update(f)
	return l
}

var _ dependency.Environment = (*Live)(nil)

// Update replaces the current facts.
func (l *Live) Update(f Facts) {
	f.Plugins = maps.Clone(f.Plugins)
	if f.Mode == "" {
		f.Mode = ModeProduction
	}
	l.facts.Store(&f)
}

// Snapshot returns a copy of the current facts.
func (l *Live) Snapshot() Facts {
	f := *l.facts.Load()
	f.Plugins = maps.Clone(f.Plugins)
	return f
}

// Mode returns the host environment mode.
func (l *Live) Mode() string {
	return l.facts.Load().Mode
}

// HostVersion implements dependency.Environment.
func (l *Live) HostVersion() string {
	return l.facts.Load().Host
}

// BuilderVersion implements dependency.Environment.
func (l *Live) BuilderVersion(s dependency.Subject) (string, bool) {
	f := l.facts.Load()
	switch s {
	case dependency.SubjectBuilderA:
		return f.BuilderA, f.BuilderA != ""
	case dependency.SubjectBuilderB:
		return f.BuilderB, f.BuilderB != ""
	}
	return "", false
}

// PluginVersion implements dependency.Environment. A plugin listed with an
// empty version is present at version "0.0.0".
func (l *Live) PluginVersion(id string) (string, bool) {
	v, ok := l.facts.Load().Plugins[id]
	return v, ok
}
