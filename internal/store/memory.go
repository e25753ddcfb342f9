package store

import (
	"context"
	"sync"

	"github.com/growwise/growwise-client/internal/domain"
)

// MemoryStore is a Repository that keeps everything in process memory.
// Values round-trip through the same encoding as SQLiteStore.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
	saves  int
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// LoadState returns the stored snapshot, or nil.
func (m *MemoryStore) LoadState(_ context.Context) (*domain.AppState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.values[StateKey]
	if !ok {
		return nil, nil
	}
	return decodeState(raw)
}

// SaveState overwrites the stored snapshot.
func (m *MemoryStore) SaveState(_ context.Context, st domain.AppState) error {
	raw, err := encodeState(st)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[StateKey] = raw
	m.saves++
	return nil
}

// ClearState removes the stored snapshot.
func (m *MemoryStore) ClearState(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, StateKey)
	return nil
}

// SaveCredentials stores the access token and email.
func (m *MemoryStore) SaveCredentials(_ context.Context, accessToken, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[AccessTokenKey] = accessToken
	m.values[UserEmailKey] = email
	return nil
}

// AccessToken returns the stored token.
func (m *MemoryStore) AccessToken(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[AccessTokenKey], nil
}

// UserEmail returns the stored email.
func (m *MemoryStore) UserEmail(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[UserEmailKey], nil
}

// ClearCredentials removes the token and email.
func (m *MemoryStore) ClearCredentials(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, AccessTokenKey)
	delete(m.values, UserEmailKey)
	return nil
}

// SetRaw stores a raw value under key, bypassing encoding.
func (m *MemoryStore) SetRaw(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

// SaveCount returns how many times SaveState succeeded.
func (m *MemoryStore) SaveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Ping always succeeds.
func (m *MemoryStore) Ping(_ context.Context) error { return nil }

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }

var _ Repository = (*MemoryStore)(nil)
