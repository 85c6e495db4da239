// Package memory provides a volatile in-process cache store. It is the
// engine default and best suited for tests and single-invocation reuse.
package memory

import (
	"context"
	"sync"

	"github.com/patrickjm/yapl/cache"
	"github.com/patrickjm/yapl/core"
)

type entry struct {
	messages []core.Message
	meta     cache.Metadata
}

// Store is a volatile cache.Cache implementation storing entries in a
// process local map. It is safe for concurrent access. Messages are cloned
// on both Set and Get to prevent external mutation of internal state.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// New constructs an empty in-memory store.
func New() *Store {
	return &Store{entries: make(map[string]entry)}
}

// Get implements cache.Cache.
func (s *Store) Get(_ context.Context, key string) ([]core.Message, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	return core.CloneMessages(e.messages), true, nil
}

// Set implements cache.Cache.
func (s *Store) Set(_ context.Context, key string, messages []core.Message, meta cache.Metadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{messages: core.CloneMessages(messages), meta: meta}
	return nil
}

// Len returns the number of cached entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
