package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/artpar/modhost/adapters/environment"
	"github.com/artpar/modhost/app"
	"github.com/artpar/modhost/domain/options"
	"github.com/google/go-cmp/cmp"
)

func TestOptions_GetUnstoredReturnsDefaults(t *testing.T) {
	a := setupTestApp(t, environment.ModeProduction)

	got, err := a.options.Get(context.Background(), "privacy")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}

	want := options.Value{
		"enabled":                 true,
		"comments_external":       true,
		"comments_ip":             true,
		"disable_emojis":          true,
		"disable_oembeds":         true,
		"dns_prefetching":         true,
		"rest_api":                true,
		"track_last_login":        false,
		"disable_author_archives": false,
		"obfuscate_author_slugs":  false,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Get mismatch (-want +got):\n%s", diff)
	}
}

func TestOptions_BackFillKeepsStoredValues(t *testing.T) {
	a := setupTestApp(t, environment.ModeProduction)
	ctx := context.Background()

	if err := a.store.Set(ctx, "privacy", options.Value{"comments_ip": false, "legacy": "kept"}); err != nil {
		t.Fatal(err)
	}

	got, err := a.options.Get(ctx, "privacy")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got["comments_ip"] != false {
		t.Errorf("comments_ip = %v, want false", got["comments_ip"])
	}
	if got["legacy"] != "kept" {
		t.Errorf("legacy = %v, want kept", got["legacy"])
	}
	if got["disable_emojis"] != true {
		t.Errorf("disable_emojis = %v, want back-filled true", got["disable_emojis"])
	}

	// Back-fill is a read concern; nothing is written.
	stored, _ := a.store.Get(ctx, "privacy")
	if _, ok := stored["disable_emojis"]; ok {
		t.Error("Get should not persist back-filled defaults")
	}
}

func TestOptions_StoredSkipsDefaults(t *testing.T) {
	a := setupTestApp(t, environment.ModeProduction)
	ctx := context.Background()

	if err := a.options.Set(ctx, "privacy", options.Value{"comments_ip": false}); err != nil {
		t.Fatal(err)
	}

	got, err := a.options.Stored(ctx)
	if err != nil {
		t.Fatalf("Stored error: %v", err)
	}
	if diff := cmp.Diff(options.Value{"comments_ip": false}, got["privacy"]); diff != "" {
		t.Errorf("privacy mismatch (-want +got):\n%s", diff)
	}
	if _, ok := got["login"]; ok {
		t.Error("unsaved module should not be listed")
	}
}

func TestOptions_UnknownModuleDefaultsToEnabled(t *testing.T) {
	a := setupTestApp(t, environment.ModeProduction)

	got, err := a.options.Get(context.Background(), "unregistered")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if diff := cmp.Diff(options.Value{"enabled": true}, got); diff != "" {
		t.Errorf("Get mismatch (-want +got):\n%s", diff)
	}
}

func TestOptions_PersistenceFailure(t *testing.T) {
	a := setupTestApp(t, environment.ModeProduction)
	ctx := context.Background()
	a.store.Fail(errors.New("disk full"))

	if _, err := a.options.Get(ctx, "privacy"); !errors.Is(err, app.ErrPersistence) {
		t.Errorf("Get err = %v, want ErrPersistence", err)
	}
	if err := a.options.Set(ctx, "privacy", options.Value{}); !errors.Is(err, app.ErrPersistence) {
		t.Errorf("Set err = %v, want ErrPersistence", err)
	}
	if err := a.options.Delete(ctx, "privacy"); !errors.Is(err, app.ErrPersistence) {
		t.Errorf("Delete err = %v, want ErrPersistence", err)
	}
	if _, err := a.options.Stored(ctx); !errors.Is(err, app.ErrPersistence) {
		t.Errorf("Stored err = %v, want ErrPersistence", err)
	}
}
