// Package inmemory provides the in-process MemoryStore backend.
//
// It keeps all memories in a single mutex-guarded map and exists for two
// purposes: local development without a database, and as the fallback target
// when a configured durable backend is unreachable. Records held here live
// for the remainder of the process lifetime.
package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/eora-ai/recall-go/pkg/storage"
)

// Store implements storage.MemoryStore backed by a map.
//
// The store is exclusively owned by the storage layer; no other component
// reaches into the map directly. All reads hand out clones so callers can
// never mutate the authoritative copy.
type Store struct {
	mu       sync.RWMutex
	memories map[int64]*storage.Memory
}

// New creates an empty in-process store.
func New() *Store {
	return &Store{
		memories: make(map[int64]*storage.Memory),
	}
}

// Insert stores a memory. Inserting an ID that already exists overwrites the
// previous record; callers generate unique IDs so this does not occur in
// practice.
func (s *Store) Insert(ctx context.Context, memory *storage.Memory) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.memories[memory.ID] = memory.Clone()
	return nil
}

// ScanByFilter returns clones of all memories matching the filter.
func (s *Store) ScanByFilter(ctx context.Context, filter *storage.Filter, sort storage.Sort, limit int) ([]*storage.Memory, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.RLock()
	var matched []*storage.Memory
	for _, m := range s.memories {
		if filter.Matches(m) {
			matched = append(matched, m.Clone())
		}
	}
	s.mu.RUnlock()

	return storage.SortMemories(matched, sort, limit), nil
}

// Count returns the number of memories matching the filter.
func (s *Store) Count(ctx context.Context, filter *storage.Filter) (int, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, m := range s.memories {
		if filter.Matches(m) {
			count++
		}
	}
	return count, nil
}

// TouchRecalled updates recall bookkeeping for the given IDs.
func (s *Store) TouchRecalled(ctx context.Context, ids []int64, at time.Time) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if m, ok := s.memories[id]; ok {
			m.RecallCount++
			t := at
			m.LastRecalledAt = &t
		}
	}
	return nil
}

// Close releases the store. The map is dropped so later calls see an empty store.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memories = make(map[int64]*storage.Memory)
	return nil
}

// Len returns the number of stored memories. Used by tests and diagnostics.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.memories)
}
