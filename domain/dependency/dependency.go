// Package dependency decides whether a settings field is supported by the
// current environment. This is a pure package with no I/O.
//
// A field declares version requirements against named subjects: the host
// application, two companion page builders, and any number of companion
// plugins. The verdict is informational only and never blocks a write.
package dependency

import (
	"sort"

	"github.com/artpar/modhost/domain/version"
)

// Subject names an environment fact a requirement is evaluated against.
type Subject string

// Known subjects.
const (
	SubjectHost     Subject = "host"
	SubjectBuilderA Subject = "builder_a"
	SubjectBuilderB Subject = "builder_b"
	SubjectPlugin   Subject = "plugin"
)

// Constraints is the set of requirements attached to a schema field.
// Empty strings mean no requirement for that subject.
type Constraints struct {
	Host     string `json:"host,omitempty" yaml:"host,omitempty"`
	BuilderA string `json:"builder_a,omitempty" yaml:"builder_a,omitempty"`
	BuilderB string `json:"builder_b,omitempty" yaml:"builder_b,omitempty"`

	// Plugins maps a companion plugin identifier to a version requirement.
	// An empty requirement only checks that the plugin is present.
	Plugins map[string]string `json:"plugins,omitempty" yaml:"plugins,omitempty"`
}

// IsZero reports whether no requirement is declared.
func (c Constraints) IsZero() bool {
	return c.Host == "" && c.BuilderA == "" && c.BuilderB == "" && len(c.Plugins) == 0
}

// Environment reports the live versions of every subject.
// Implementations are expected to answer from memory.
type Environment interface {
	// HostVersion returns the host application version.
	HostVersion() string

	// BuilderVersion returns the version of a companion builder and whether
	// it is installed.
	BuilderVersion(s Subject) (string, bool)

	// PluginVersion returns the version of a companion plugin and whether
	// it is installed.
	PluginVersion(id string) (string, bool)
}

// Status is the verdict for one field.
type Status struct {
	Supported bool `json:"supported"`

	// Unmet lists the subjects whose requirement failed, e.g. "host" or
	// "plugin:forms". Sorted for stable output.
	Unmet []string `json:"unmet,omitempty"`
}

// Checker evaluates Constraints against an Environment.
type Checker struct {
	env Environment
}

// NewChecker creates a checker bound to env.
func NewChecker(env Environment) *Checker {
	return &Checker{env: env}
}

// Check evaluates every declared requirement. The field is supported only
// if all of them hold; an empty constraint set is always supported.
func (c *Checker) Check(cs Constraints) Status {
	st := Status{Supported: true}
	if cs.IsZero() {
		return st
	}

	fail := func(name string) {
		st.Supported = false
		st.Unmet = append(st.Unmet, name)
	}

	if cs.Host != "" && !version.Evaluate(c.hostVersion(), cs.Host) {
		fail(string(SubjectHost))
	}
	if cs.BuilderA != "" && !version.Evaluate(c.builderVersion(SubjectBuilderA), cs.BuilderA) {
		fail(string(SubjectBuilderA))
	}
	if cs.BuilderB != "" && !version.Evaluate(c.builderVersion(SubjectBuilderB), cs.BuilderB) {
		fail(string(SubjectBuilderB))
	}

	ids := make([]string, 0, len(cs.Plugins))
	for id := range cs.Plugins {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if !c.pluginSatisfied(id, cs.Plugins[id]) {
			fail(string(SubjectPlugin) + ":" + id)
		}
	}

	return st
}

func (c *Checker) hostVersion() string {
	if c.env == nil {
		return version.Zero
	}
	if v := c.env.HostVersion(); v != "" {
		return v
	}
	return version.Zero
}

func (c *Checker) builderVersion(s Subject) string {
	if c.env == nil {
		return version.Zero
	}
	v, ok := c.env.BuilderVersion(s)
	if !ok || v == "" {
		return version.Zero
	}
	return v
}

func (c *Checker) pluginSatisfied(id, requirement string) bool {
	var (
		v       string
		present bool
	)
	if c.env != nil {
		v, present = c.env.PluginVersion(id)
	}
	if requirement == "" {
		return present
	}
	if !present || v == "" {
		v = version.Zero
	}
	return version.Evaluate(v, requirement)
}

// StaticEnvironment is a fixed Environment, useful for tests and for
// environments described entirely by configuration.
type StaticEnvironment struct {
	Host     string
	BuilderA string
	BuilderB string
	Plugins  map[string]string
}

// HostVersion implements Environment.
func (e StaticEnvironment) HostVersion() string { return e.Host }

// BuilderVersion implements Environment.
func (e StaticEnvironment) BuilderVersion(s Subject) (string, bool) {
	switch s {
	case SubjectBuilderA:
		return e.BuilderA, e.BuilderA != ""
	case SubjectBuilderB:
		return e.BuilderB, e.BuilderB != ""
	}
	return "", false
}

// PluginVersion implements Environment.
func (e StaticEnvironment) PluginVersion(id string) (string, bool) {
	v, ok := e.Plugins[id]
	return v, ok
}
