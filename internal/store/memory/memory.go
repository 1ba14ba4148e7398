package memory

import (
	"context"
	"sync"
)

// Store keeps saved searches in process memory.
// Values are copied on the way in and out so callers can't alias them.
type Store struct {
	mu       sync.RWMutex
	searches map[string][]byte // tag -> raw record
}

// NewStore creates an empty memory store
func NewStore() *Store {
	return &Store{
		searches: make(map[string][]byte),
	}
}

// NewStoreWith creates a memory store pre-filled with raw records
func NewStoreWith(seed map[string][]byte) *Store {
	s := NewStore()
	for tag, raw := range seed {
		s.searches[tag] = clone(raw)
	}
	return s
}

// LoadAll returns a snapshot of every stored search
func (s *Store) LoadAll(_ context.Context) (map[string][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]byte, len(s.searches))
	for tag, raw := range s.searches {
		out[tag] = clone(raw)
	}
	return out, nil
}

// Put adds or overwrites a single search
func (s *Store) Put(_ context.Context, tag string, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.searches[tag] = clone(raw)
	return nil
}

// Remove deletes a search
func (s *Store) Remove(_ context.Context, tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.searches, tag)
	return nil
}

// Count returns the number of stored searches
func (s *Store) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.searches)), nil
}

// Close is a no-op; there is nothing to release.
func (s *Store) Close() error {
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
