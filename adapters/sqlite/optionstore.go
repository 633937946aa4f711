package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/artpar/modhost/domain/options"
	"github.com/artpar/modhost/ports"
)

// OptionStore implements ports.OptionStore using SQLite.
// Each module's mapping is stored as one JSON document.
type OptionStore struct {
	db *DB
}

// NewOptionStore creates a new option store.
func NewOptionStore(db *DB) *OptionStore {
	return &OptionStore{db: db}
}

var _ ports.OptionStore = (*OptionStore)(nil)

// Get retrieves the mapping persisted for slug.
func (s *OptionStore) Get(ctx context.Context, slug string) (options.Value, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT options FROM module_options WHERE slug = ?`,
		slug,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ports.ErrNotStored
		}
		return nil, fmt.Errorf("get options %s: %w", slug, err)
	}

	v, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode options %s: %w", slug, err)
	}
	return v, nil
}

// Set replaces the mapping persisted for slug.
func (s *OptionStore) Set(ctx context.Context, slug string, v options.Value) error {
	if v == nil {
		v = options.Value{}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode options %s: %w", slug, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO module_options (slug, options, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(slug) DO UPDATE SET
			options = excluded.options,
			updated_at = CURRENT_TIMESTAMP`,
		slug, string(data),
	)
	if err != nil {
		return fmt.Errorf("set options %s: %w", slug, err)
	}
	return nil
}

// Delete removes the mapping persisted for slug.
func (s *OptionStore) Delete(ctx context.Context, slug string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM module_options WHERE slug = ?`, slug); err != nil {
		return fmt.Errorf("delete options %s: %w", slug, err)
	}
	return nil
}

// List retrieves every persisted mapping.
func (s *OptionStore) List(ctx context.Context) (map[string]options.Value, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT slug, options FROM module_options ORDER BY slug`)
	if err != nil {
		return nil, fmt.Errorf("list options: %w", err)
	}
	defer rows.Close()

	result := make(map[string]options.Value)
	for rows.Next() {
		var slug, raw string
		if err := rows.Scan(&slug, &raw); err != nil {
			return nil, fmt.Errorf("scan options: %w", err)
		}
		v, err := decode(raw)
		if err != nil {
			return nil, fmt.Errorf("decode options %s: %w", slug, err)
		}
		result[slug] = v
	}
	return result, rows.Err()
}

// decode parses a stored document, keeping integers as int64 so that a
// round trip does not turn sanitized integers into floats.
func decode(raw string) (options.Value, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()

	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	v := make(options.Value, len(m))
	for k, x := range m {
		v[k] = numbers(x)
	}
	return v, nil
}

func numbers(x any) any {
	switch t := x.(type) {
	case json.Number:
		if n, err := strconv.ParseInt(string(t), 10, 64); err == nil {
			return n
		}
		f, _ := t.Float64()
		return f
	case []any:
		for i, e := range t {
			t[i] = numbers(e)
		}
		return t
	case map[string]any:
		for k, e := range t {
			t[k] = numbers(e)
		}
		return t
	}
	return x
}
