// Package state is the durable on-device key-value store backing the
// client: the persisted auth token slot and in-progress onboarding drafts.
package state

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("state: key not found")

// DB is a single-file sqlite store with one key-value table.
type DB struct {
	db *sql.DB
}

// Open opens (and initializes) the state database at path. Use ":memory:"
// for a throwaway store in tests.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open state db: %w", err)
	}

	// The store is touched from request callbacks; sqlite handles one
	// writer at a time.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS client_state (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize state db: %w", err)
	}

	return &DB{db: db}, nil
}

// Get returns the stored value for key.
func (s *DB) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM client_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %q: %w", key, err)
	}
	return value, nil
}

// Put stores value under key, replacing any previous value.
func (s *DB) Put(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO client_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *DB) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM client_state WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *DB) Close() error {
	return s.db.Close()
}
