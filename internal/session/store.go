// Package session holds the auth-token lifecycle: set on login, attached to
// every request, cleared on logout or on any 401.
package session

import (
	"log/slog"
	"sync"

	"rituals/internal/state"
)

// Store is the single-token session contract. Implementations must never
// surface a storage failure as an authenticated state: when in doubt,
// report "no token".
type Store interface {
	// Get returns the stored token, if any.
	Get() (token string, ok bool)
	// Set stores the token, replacing any previous one.
	Set(token string)
	// Clear removes the stored token.
	Clear()
}

// Memory is an in-process Store for tests and ephemeral sessions.
type Memory struct {
	mu    sync.RWMutex
	token string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Get() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.token != ""
}

func (m *Memory) Set(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
}

func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
}

const tokenKey = "auth_token"

// Durable persists the token in the on-device state store. Read and write
// failures are swallowed: a broken store behaves like a logged-out session,
// never like an authenticated one.
type Durable struct {
	db *state.DB
}

// NewDurable returns a Store backed by db.
func NewDurable(db *state.DB) *Durable {
	return &Durable{db: db}
}

func (d *Durable) Get() (string, bool) {
	token, err := d.db.Get(tokenKey)
	if err != nil {
		return "", false
	}
	return token, token != ""
}

func (d *Durable) Set(token string) {
	if err := d.db.Put(tokenKey, token); err != nil {
		slog.Warn("session: failed to persist token", "error", err)
	}
}

func (d *Durable) Clear() {
	if err := d.db.Delete(tokenKey); err != nil {
		slog.Warn("session: failed to clear token", "error", err)
	}
}
