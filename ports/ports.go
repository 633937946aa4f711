// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"errors"
	"time"

	"github.com/artpar/modhost/core/events"
	"github.com/artpar/modhost/domain/options"
)

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// Hasher hashes and compares secrets.
type Hasher interface {
	Hash(plaintext string) ([]byte, error)
	Compare(hash []byte, plaintext string) bool
}

// EventPublisher publishes domain events.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event)
}

// -----------------------------------------------------------------------------
// Data Store Ports
// -----------------------------------------------------------------------------

// ErrNotStored is returned by OptionStore.Get when nothing is persisted for
// a slug.
var ErrNotStored = errors.New("options not stored")

// OptionStore persists one option mapping per module slug.
// Set replaces the whole mapping in a single write.
type OptionStore interface {
	// Get returns the persisted mapping or ErrNotStored.
	Get(ctx context.Context, slug string) (options.Value, error)

	// Set replaces the persisted mapping.
	Set(ctx context.Context, slug string, v options.Value) error

	// Delete removes all persisted state for slug. Deleting a missing slug
	// is not an error.
	Delete(ctx context.Context, slug string) error

	// List returns every persisted mapping keyed by slug.
	List(ctx context.Context) (map[string]options.Value, error)
}

// -----------------------------------------------------------------------------
// Request Verification
// -----------------------------------------------------------------------------

// RequestVerifier decides whether a caller holds the administrative
// capability required by write endpoints.
type RequestVerifier interface {
	Verify(ctx context.Context, token string) bool
}

// -----------------------------------------------------------------------------
// Observability
// -----------------------------------------------------------------------------

// SettingsMetrics records settings writes.
type SettingsMetrics interface {
	Toggled(slug string, enabled bool)
	Saved(slug string, ok bool)
	Dropped(slug, reason string)
}

// NopSettingsMetrics discards every observation.
type NopSettingsMetrics struct{}

func (NopSettingsMetrics) Toggled(string, bool)   {}
func (NopSettingsMetrics) Saved(string, bool)     {}
func (NopSettingsMetrics) Dropped(string, string) {}
