// Package session keeps the console's logged-in identities behind opaque
// cookie tokens. Sessions never expire on their own; they live until logout.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"fracc/internal/core"
)

var ErrNotFound = errors.New("session not found")

// Store persists sessions by token.
type Store interface {
	Get(ctx context.Context, token string) (core.Session, error)
	Put(ctx context.Context, token string, s core.Session) error
	Delete(ctx context.Context, token string) error
	Ping(ctx context.Context) error
	Close() error
}

// NewToken returns a fresh random session token.
func NewToken() string {
	return uuid.NewString()
}

// ValidToken reports whether raw looks like a token minted by NewToken.
func ValidToken(raw string) bool {
	_, err := uuid.Parse(raw)
	return err == nil && raw != ""
}

type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]core.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]core.Session)}
}

func (m *MemoryStore) Get(_ context.Context, token string) (core.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.items[token]
	if !ok {
		return core.Session{}, ErrNotFound
	}
	s.Roles = append([]string(nil), s.Roles...)
	return s, nil
}

func (m *MemoryStore) Put(_ context.Context, token string, s core.Session) error {
	s.Roles = append([]string(nil), s.Roles...)
	m.mu.Lock()
	m.items[token] = s
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	delete(m.items, token)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }

// Len is the number of live sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
