// Package events provides an in-process publish/subscribe bus for module
// lifecycle and option change notifications.
package events

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Event names published by the engine.
const (
	OptionsSaved    = "module.options_saved"
	ModuleToggled   = "module.toggled"
	ModuleActivated = "module.activated"
	ModuleReset     = "module.reset"
	ConfigReloaded  = "config.reloaded"
)

// Event represents a published event.
type Event struct {
	// ID uniquely identifies the event.
	ID string

	// Name is the event name (e.g., "module.options_saved").
	Name string

	// Module is the slug of the module the event concerns.
	Module string

	// Time is when the event was raised.
	Time time.Time

	// Data contains the event payload. For OptionsSaved it holds "old" and
	// "new" option mappings.
	Data map[string]any
}

// Factory stamps new events with an id and a time.
type Factory struct {
	IDs   interface{ New() string }
	Clock interface{ Now() time.Time }
}

// New creates an event for module.
func (f Factory) New(name, module string, data map[string]any) Event {
	e := Event{Name: name, Module: module, Data: data}
	if f.IDs != nil {
		e.ID = f.IDs.New()
	}
	if f.Clock != nil {
		e.Time = f.Clock.Now()
	} else {
		e.Time = time.Now().UTC()
	}
	return e
}

// Handler is a function that processes an event.
type Handler func(ctx context.Context, event Event) error

// Bus is a simple publish/subscribe event bus.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   zerolog.Logger
}

// NewBus creates a new event bus.
func NewBus(logger zerolog.Logger) *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// Subscribe registers a handler for an event.
// Supports wildcard subscriptions:
//   - "module.options_saved" - exact match
//   - "module.*" - all module events
//   - "*" - all events
func (b *Bus) Subscribe(event string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[event] = append(b.handlers[event], handler)
}

// Publish delivers an event to all matching handlers synchronously, exact
// subscribers first, then prefix wildcards, then global wildcards. Handler
// errors are logged and do not stop delivery. Handlers may publish.
func (b *Bus) Publish(ctx context.Context, event Event) {
	matched := b.match(event.Name)

	b.logger.Debug().
		Str("event", event.Name).
		Str("module", event.Module).
		Int("handlers", len(matched)).
		Msg("event published")

	for _, handler := range matched {
		if err := handler(ctx, event); err != nil {
			b.logger.Error().
				Err(err).
				Str("event", event.Name).
				Str("module", event.Module).
				Msg("event handler error")
		}
	}
}

// PublishAsync emits an event asynchronously.
// The function returns immediately; handlers run in a goroutine.
func (b *Bus) PublishAsync(ctx context.Context, event Event) {
	go b.Publish(context.WithoutCancel(ctx), event)
}

func (b *Bus) match(name string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var matched []Handler
	matched = append(matched, b.handlers[name]...)

	if prefix, _, ok := strings.Cut(name, "."); ok {
		matched = append(matched, b.handlers[prefix+".*"]...)
	}

	matched = append(matched, b.handlers["*"]...)
	return matched
}
