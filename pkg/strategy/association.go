package strategy

import (
	"context"

	"github.com/eora-ai/recall-go/pkg/analysis"
	"github.com/eora-ai/recall-go/pkg/storage"
)

// Association recalls memories about concepts adjacent to the query: the
// query tokens are expanded through a synonym table before matching, so a
// query about "work" can surface memories about the office.
type Association struct {
	store storage.MemoryStore
}

// NewAssociation creates an association strategy over the given store.
func NewAssociation(store storage.MemoryStore) *Association {
	return &Association{store: store}
}

// Name returns the strategy name.
func (s *Association) Name() string { return NameAssociation }

// Search returns memories matching the expanded token set, newest first.
func (s *Association) Search(ctx context.Context, query string, scope Scope, limit int) ([]*storage.Memory, error) {
	tokens := analysis.ExpandTokens(analysis.Tokenize(query))
	if len(tokens) == 0 {
		return nil, nil
	}

	filter := scopedFilter(scope)
	filter.Tokens = tokens

	return s.store.ScanByFilter(ctx, filter, storage.SortCreatedDesc, limit)
}
