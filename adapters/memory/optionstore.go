// Package memory provides in-memory implementations for testing.
package memory

import (
	"context"
	"sync"

	"github.com/artpar/modhost/domain/options"
	"github.com/artpar/modhost/ports"
)

// OptionStore is an in-memory implementation of ports.OptionStore.
// Values are deep-copied on the way in and out.
type OptionStore struct {
	mu      sync.RWMutex
	options map[string]options.Value // by slug
	err     error
}

// NewOptionStore creates a new in-memory option store.
func NewOptionStore() *OptionStore {
	return &OptionStore{
		options: make(map[string]options.Value),
	}
}

var _ ports.OptionStore = (*OptionStore)(nil)

// Fail makes every subsequent operation return err. Passing nil restores
// normal behavior.
func (s *OptionStore) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Get retrieves the mapping stored for slug.
func (s *OptionStore) Get(ctx context.Context, slug string) (options.Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.err != nil {
		return nil, s.err
	}
	v, ok := s.options[slug]
	if !ok {
		return nil, ports.ErrNotStored
	}
	return v.Clone(), nil
}

// Set replaces the mapping stored for slug.
func (s *OptionStore) Set(ctx context.Context, slug string, v options.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	if v == nil {
		v = options.Value{}
	}
	s.options[slug] = v.Clone()
	return nil
}

// Delete removes the mapping stored for slug.
func (s *OptionStore) Delete(ctx context.Context, slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	delete(s.options, slug)
	return nil
}

// List retrieves every stored mapping.
func (s *OptionStore) List(ctx context.Context) (map[string]options.Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.err != nil {
		return nil, s.err
	}
	result := make(map[string]options.Value, len(s.options))
	for slug, v := range s.options {
		result[slug] = v.Clone()
	}
	return result, nil
}

// HealthCheck reports the injected failure, if any.
func (s *OptionStore) HealthCheck(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}
