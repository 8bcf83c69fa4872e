package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// MemoryStore persists one free-form memory text per user, maintained by
// the agent across sessions.
type MemoryStore struct {
	db *sql.DB
}

// Get returns the stored memory for userID.
func (s *MemoryStore) Get(ctx context.Context, userID int64) (string, error) {
	var memory string
	err := s.db.QueryRowContext(ctx,
		`SELECT memory FROM memory WHERE user_id = ?`, userID,
	).Scan(&memory)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: user %d", ErrMemoryNotFound, userID)
	}
	if err != nil {
		return "", fmt.Errorf("get memory for user %d: %w", userID, err)
	}
	return memory, nil
}

// Update replaces the stored memory for userID, creating the row on first
// write.
func (s *MemoryStore) Update(ctx context.Context, userID int64, memory string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO memory (user_id, memory) VALUES (?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET memory = excluded.memory`,
		userID, memory)
	if err != nil {
		return fmt.Errorf("update memory for user %d: %w", userID, err)
	}
	return nil
}
