// Package statestore holds the query-string slot a view reads its filter
// state from at mount and writes it back to when shared. It is deliberately
// local to one view; nothing here is persisted server side.
package statestore

import (
	"sync"
)

// Store is the location-bar equivalent for a single view.
type Store interface {
	// Get returns the current query string without a leading "?".
	Get() string
	// Set replaces the query string.
	Set(query string)
	// Clear empties the slot.
	Clear()
}

// MemoryStore is a Store backed by a string guarded by a mutex.
type MemoryStore struct {
	mu    sync.RWMutex
	query string
}

// NewMemoryStore creates a store seeded with an initial query, for example
// the query of the URL the view was opened with.
func NewMemoryStore(initial string) *MemoryStore {
	return &MemoryStore{query: initial}
}

func (s *MemoryStore) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

func (s *MemoryStore) Set(query string) {
	s.mu.Lock()
	s.query = query
	s.mu.Unlock()
}

func (s *MemoryStore) Clear() {
	s.Set("")
}
