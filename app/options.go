// Package app contains the services behind the settings surface.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/artpar/modhost/domain/options"
	"github.com/artpar/modhost/domain/schema"
	"github.com/artpar/modhost/ports"
	"github.com/rs/zerolog"
)

// ErrPersistence wraps every failure of the underlying option store.
var ErrPersistence = errors.New("options persistence failed")

// DefaultsSource provides the default options of a module.
type DefaultsSource interface {
	DefaultOptions(slug string) (options.Value, bool)
}

// OptionsService reads and writes module options, back-filling defaults on
// every read.
type OptionsService struct {
	store    ports.OptionStore
	defaults DefaultsSource
	logger   zerolog.Logger
}

// NewOptionsService creates an options service.
func NewOptionsService(store ports.OptionStore, defaults DefaultsSource, logger zerolog.Logger) *OptionsService {
	return &OptionsService{
		store:    store,
		defaults: defaults,
		logger:   logger,
	}
}

// Get returns the persisted options of slug with every missing default
// inserted. Persisted values are never overwritten. The result always
// carries an enabled flag.
func (s *OptionsService) Get(ctx context.Context, slug string) (options.Value, error) {
	v, err := s.store.Get(ctx, slug)
	switch {
	case errors.Is(err, ports.ErrNotStored):
		v = options.Value{}
	case err != nil:
		return nil, fmt.Errorf("get %q: %w: %w", slug, ErrPersistence, err)
	}

	if defs, ok := s.defaults.DefaultOptions(slug); ok {
		v = v.BackFill(defs)
	}
	if _, ok := v[schema.EnabledKey]; !ok {
		v[schema.EnabledKey] = true
	}
	return v, nil
}

// Set replaces the persisted options of slug.
func (s *OptionsService) Set(ctx context.Context, slug string, v options.Value) error {
	if err := s.store.Set(ctx, slug, v); err != nil {
		s.logger.Error().Err(err).Str("slug", slug).Msg("failed to persist options")
		return fmt.Errorf("set %q: %w: %w", slug, ErrPersistence, err)
	}
	return nil
}

// Delete removes every persisted option of slug.
func (s *OptionsService) Delete(ctx context.Context, slug string) error {
	if err := s.store.Delete(ctx, slug); err != nil {
		return fmt.Errorf("delete %q: %w: %w", slug, ErrPersistence, err)
	}
	return nil
}

// Stored returns the persisted options of every slug without defaults.
func (s *OptionsService) Stored(ctx context.Context) (map[string]options.Value, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list: %w: %w", ErrPersistence, err)
	}
	return all, nil
}
