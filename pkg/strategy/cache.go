package strategy

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/eora-ai/recall-go/pkg/storage"
)

// Cached wraps a strategy with a read-through TTL cache. Identical queries
// inside the TTL reuse the earlier result set instead of hitting the store
// again. Cached entries hold cloned memories so callers can mutate results
// freely.
type Cached struct {
	inner Strategy
	cache *ristretto.Cache
	ttl   time.Duration
}

// NewCached wraps inner with a result cache. A non-positive ttl disables
// caching and returns the inner strategy untouched.
func NewCached(inner Strategy, ttl time.Duration) (Strategy, error) {
	if ttl <= 0 {
		return inner, nil
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     1_000,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("NewCached: %w", err)
	}

	return &Cached{inner: inner, cache: cache, ttl: ttl}, nil
}

// Name returns the wrapped strategy's name.
func (s *Cached) Name() string { return s.inner.Name() }

// Search consults the cache before delegating to the wrapped strategy.
func (s *Cached) Search(ctx context.Context, query string, scope Scope, limit int) ([]*storage.Memory, error) {
	key := fmt.Sprintf("%s|%s|%s|%s|%d", s.inner.Name(), scope.OwnerID, scope.SessionID, query, limit)

	if cached, found := s.cache.Get(key); found {
		if memories, ok := cached.([]*storage.Memory); ok {
			return cloneAll(memories), nil
		}
	}

	memories, err := s.inner.Search(ctx, query, scope, limit)
	if err != nil {
		return nil, err
	}

	s.cache.SetWithTTL(key, cloneAll(memories), 1, s.ttl)
	return memories, nil
}

// Close releases the cache.
func (s *Cached) Close() {
	s.cache.Close()
}

func cloneAll(memories []*storage.Memory) []*storage.Memory {
	cloned := make([]*storage.Memory, len(memories))
	for i, m := range memories {
		cloned[i] = m.Clone()
	}
	return cloned
}
