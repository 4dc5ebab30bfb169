package cache

import (
	"sync"
	"time"
)

// MemoryStore is an in-memory Store implementation.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
	clock   Clock
	last    time.Time
}

// NewMemoryStore creates an empty in-memory store.
// If clock is nil, SystemClock is used.
func NewMemoryStore(clock Clock) *MemoryStore {
	if clock == nil {
		clock = SystemClock()
	}
	return &MemoryStore{
		entries: make(map[string]Entry),
		clock:   clock,
	}
}

// Get retrieves an entry. Returns (Entry{}, false) on miss.
func (s *MemoryStore) Get(id string) (Entry, bool) {
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()
	return entry, ok
}

// Set replaces the entry for id.
// DataUpdatedAt never moves backwards within a store, even if the clock does.
func (s *MemoryStore) Set(id string, data any) {
	s.mu.Lock()
	now := s.clock.Now()
	if now.Before(s.last) {
		now = s.last
	}
	s.last = now
	s.entries[id] = Entry{Data: data, DataUpdatedAt: now}
	s.mu.Unlock()
}

// IsFresh reports whether id has an entry younger than staleTime.
func (s *MemoryStore) IsFresh(id string, staleTime time.Duration) bool {
	entry, ok := s.Get(id)
	if !ok {
		return false
	}
	return isFresh(entry, s.clock.Now(), staleTime)
}

// Delete removes an entry. Idempotent - no-op on miss.
func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
}

// Clear removes every entry.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]Entry)
	s.mu.Unlock()
}

// Len returns the number of entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)
