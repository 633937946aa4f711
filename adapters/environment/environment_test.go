package environment_test

import (
	"testing"

	"github.com/artpar/modhost/adapters/environment"
	"github.com/artpar/modhost/domain/dependency"
)

func TestLive_Facts(t *testing.T) {
	env := environment.New(environment.Facts{
		Host:     "6.4.2",
		BuilderA: "4.27.0",
		Plugins:  map[string]string{"forms": "2.1"},
	})

	if env.Mode() != environment.ModeProduction {
		t.Errorf("Mode() = %s, want production default", env.Mode())
	}
	if env.HostVersion() != "6.4.2" {
		t.Errorf("HostVersion() = %s", env.HostVersion())
	}
	if v, ok := env.BuilderVersion(dependency.SubjectBuilderA); !ok || v != "4.27.0" {
		t.Errorf("BuilderVersion(a) = %s, %v", v, ok)
	}
	if _, ok := env.BuilderVersion(dependency.SubjectBuilderB); ok {
		t.Error("builder_b should be absent")
	}
	if _, ok := env.BuilderVersion(dependency.SubjectHost); ok {
		t.Error("host is not a builder")
	}
	if v, ok := env.PluginVersion("forms"); !ok || v != "2.1" {
		t.Errorf("PluginVersion(forms) = %s, %v", v, ok)
	}
}

func TestLive_UpdateChangesVerdicts(t *testing.T) {
	env := environment.New(environment.Facts{Host: "5.7"})
	checker := dependency.NewChecker(env)
	webp := dependency.Constraints{Host: "< 5.8"}

	if !checker.Check(webp).Supported {
		t.Fatal("host 5.7 should support < 5.8")
	}

	env.Update(environment.Facts{Host: "6.0", Mode: environment.ModeLocal})

	if checker.Check(webp).Supported {
		t.Error("host 6.0 should not support < 5.8 after update")
	}
	if env.Mode() != environment.ModeLocal {
		t.Errorf("Mode() = %s, want local", env.Mode())
	}
}

func TestLive_SnapshotIsCopy(t *testing.T) {
	plugins := map[string]string{"forms": "1.0"}
	env := environment.New(environment.Facts{Plugins: plugins})

	plugins["forms"] = "9.9"
	snap := env.Snapshot()
	snap.Plugins["seo"] = "1.0"

	if v, _ := env.PluginVersion("forms"); v != "1.0" {
		t.Errorf("caller map aliased: forms = %s", v)
	}
	if _, ok := env.PluginVersion("seo"); ok {
		t.Error("snapshot map aliased")
	}
}
