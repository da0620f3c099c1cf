package store

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	token     string
	expiresAt time.Time
}

// MemoryStore is an in-process Store with the same semantics as the shared
// one. Single-instance deployments that run without a shared store use it to
// keep per-session admissions serialized within the process; tests use it to
// exercise the manager without infrastructure.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
	}
}

func (s *MemoryStore) TrySet(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if entry, ok := s.entries[key]; ok && entry.expiresAt.After(now) {
		return false, nil
	}

	s.entries[key] = memoryEntry{
		token:     token,
		expiresAt: now.Add(ttl),
	}
	return true, nil
}

func (s *MemoryStore) ConditionalDelete(ctx context.Context, key, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || entry.token != token {
		return false, nil
	}

	delete(s.entries, key)
	return true, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Holder returns the current live owner token for a key, if any.
// Intended for tests and diagnostics.
func (s *MemoryStore) Holder(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || !entry.expiresAt.After(time.Now()) {
		return "", false
	}
	return entry.token, true
}
