package app_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/artpar/modhost/adapters/clock"
	"github.com/artpar/modhost/adapters/environment"
	"github.com/artpar/modhost/adapters/idgen"
	"github.com/artpar/modhost/adapters/memory"
	"github.com/artpar/modhost/app"
	"github.com/artpar/modhost/core/events"
	"github.com/artpar/modhost/core/module"
	"github.com/artpar/modhost/domain/dependency"
	"github.com/artpar/modhost/modules"
	"github.com/rs/zerolog"
)

type recordingMetrics struct {
	mu      sync.Mutex
	toggles []string
	saves   []bool
	drops   []string
}

func (m *recordingMetrics) Toggled(slug string, enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if enabled {
		m.toggles = append(m.toggles, slug+":on")
	} else {
		m.toggles = append(m.toggles, slug+":off")
	}
}

func (m *recordingMetrics) Saved(slug string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves = append(m.saves, ok)
}

func (m *recordingMetrics) Dropped(slug, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drops = append(m.drops, slug+":"+reason)
}

type testApp struct {
	registry *module.Registry
	store    *memory.OptionStore
	options  *app.OptionsService
	settings *app.SettingsService
	bus      *events.Bus
	metrics  *recordingMetrics
}

func setupTestApp(t *testing.T, mode string) *testApp {
	t.Helper()

	env := environment.New(environment.Facts{Mode: mode, Host: "6.4"})
	bus := events.NewBus(zerolog.Nop())
	ids := idgen.NewSequential("evt")
	clk := clock.NewFake(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	reg := module.NewRegistry(module.Config{
		Checker: dependency.NewChecker(env),
		Mode:    env,
		Env:     env,
		Bus:     bus,
		Events:  events.Factory{IDs: ids, Clock: clk},
		Logger:  zerolog.Nop(),
	})
	if err := reg.RegisterAll(modules.All()); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}

	store := memory.NewOptionStore()
	opts := app.NewOptionsService(store, reg, zerolog.Nop())
	if err := reg.Init(context.Background(), opts); err != nil {
		t.Fatalf("Init: %v", err)
	}

	m := &recordingMetrics{}
	svc := app.NewSettingsService(app.SettingsDeps{
		Registry:  reg,
		Options:   opts,
		Publisher: bus,
		Clock:     clk,
		IDGen:     ids,
		Metrics:   m,
		Logger:    zerolog.Nop(),
	})

	return &testApp{
		registry: reg,
		store:    store,
		options:  opts,
		settings: svc,
		bus:      bus,
		metrics:  m,
	}
}
