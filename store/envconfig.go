package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// EnvConfig is one runtime configuration entry editable through the agent.
type EnvConfig struct {
	Key         string
	Value       string
	Description string
}

// EnvConfigStore reads and updates environment configuration entries. The
// key set is fixed by migrations; entries are updated, never created, at
// runtime.
type EnvConfigStore struct {
	db *sql.DB
}

// Get returns the entry for key.
func (s *EnvConfigStore) Get(ctx context.Context, key string) (EnvConfig, error) {
	var c EnvConfig
	err := s.db.QueryRowContext(ctx,
		`SELECT key, value, description FROM env_config WHERE key = ?`, key,
	).Scan(&c.Key, &c.Value, &c.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return EnvConfig{}, fmt.Errorf("%w: key %q", ErrConfigNotFound, key)
	}
	if err != nil {
		return EnvConfig{}, fmt.Errorf("get env config %q: %w", key, err)
	}
	return c, nil
}

// GetAll returns every entry ordered by key.
func (s *EnvConfigStore) GetAll(ctx context.Context) ([]EnvConfig, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value, description FROM env_config ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list env config: %w", err)
	}
	defer rows.Close()

	var out []EnvConfig
	for rows.Next() {
		var c EnvConfig
		if err := rows.Scan(&c.Key, &c.Value, &c.Description); err != nil {
			return nil, fmt.Errorf("scan env config: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update sets the value of an existing entry and returns the updated row.
func (s *EnvConfigStore) Update(ctx context.Context, key, value string) (EnvConfig, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE env_config SET value = ? WHERE key = ?`, value, key)
	if err != nil {
		return EnvConfig{}, fmt.Errorf("update env config %q: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return EnvConfig{}, fmt.Errorf("update env config %q: %w", key, err)
	}
	if n == 0 {
		return EnvConfig{}, fmt.Errorf("%w: key %q", ErrConfigNotFound, key)
	}
	return s.Get(ctx, key)
}
