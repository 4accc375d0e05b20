package strategy

import (
	"context"
	"time"

	"github.com/eora-ai/recall-go/pkg/analysis"
	"github.com/eora-ai/recall-go/pkg/storage"
)

// Temporal recalls memories by when they were stored. A time expression in
// the query ("yesterday", "3 days ago") narrows recall to that window;
// without one the most recent memories are returned.
type Temporal struct {
	store storage.MemoryStore
	now   func() time.Time
}

// NewTemporal creates a temporal strategy over the given store.
func NewTemporal(store storage.MemoryStore) *Temporal {
	return &Temporal{store: store, now: time.Now}
}

// Name returns the strategy name.
func (s *Temporal) Name() string { return NameTemporal }

// Search returns memories in the query's time window, or the newest
// memories when the query names no time.
func (s *Temporal) Search(ctx context.Context, query string, scope Scope, limit int) ([]*storage.Memory, error) {
	filter := scopedFilter(scope)

	if window, ok := analysis.ParseTimeExpression(query, s.now()); ok {
		filter.Since = window.Since
		filter.Until = window.Until
	}

	return s.store.ScanByFilter(ctx, filter, storage.SortCreatedDesc, limit)
}
