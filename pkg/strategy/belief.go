package strategy

import (
	"context"

	"github.com/eora-ai/recall-go/pkg/analysis"
	"github.com/eora-ai/recall-go/pkg/storage"
)

// Belief recalls memories holding statements of conviction or value. It
// fires only when the query itself contains a belief indicator.
type Belief struct {
	store storage.MemoryStore
}

// NewBelief creates a belief strategy over the given store.
func NewBelief(store storage.MemoryStore) *Belief {
	return &Belief{store: store}
}

// Name returns the strategy name.
func (s *Belief) Name() string { return NameBelief }

// Search returns memories tagged with any belief indicator found in the query.
func (s *Belief) Search(ctx context.Context, query string, scope Scope, limit int) ([]*storage.Memory, error) {
	beliefs := analysis.DetectBeliefs(query)
	if len(beliefs) == 0 {
		return nil, nil
	}

	filter := scopedFilter(scope)
	filter.BeliefTags = beliefs

	return s.store.ScanByFilter(ctx, filter, storage.SortCreatedDesc, limit)
}
