// Package store persists the expense-tracking domain: environment
// configuration, categories, expenses and per-user agent memory. It is
// backed by SQLite with schema migrations applied at startup.
package store

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// dateLayout is the stored representation of expense dates. Values are
// normalized to UTC so lexicographic comparison matches chronological
// order.
const dateLayout = "2006-01-02 15:04:05"

func encodeDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func decodeDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("decode stored date %q: %w", s, err)
	}
	return t, nil
}

// Store bundles the entity stores over one SQLite database.
type Store struct {
	db *sql.DB

	EnvConfig  *EnvConfigStore
	Categories *CategoryStore
	Expenses   *ExpenseStore
	Memories   *MemoryStore
}

// Open opens the SQLite database at path, creating parent directories as
// needed, and applies pending migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := migrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db:         db,
		EnvConfig:  &EnvConfigStore{db: db},
		Categories: &CategoryStore{db: db},
		Expenses:   &ExpenseStore{db: db},
		Memories:   &MemoryStore{db: db},
	}, nil
}

func migrateUp(db *sql.DB) error {
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("create migrate driver: %w", err)
	}
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
