package strategy

import (
	"context"
	"sort"

	"github.com/eora-ai/recall-go/pkg/embedder"
	"github.com/eora-ai/recall-go/pkg/storage"
	"github.com/eora-ai/recall-go/pkg/vector"
)

// Semantic recalls memories by embedding similarity. It needs both an
// embedding provider and a vector index; when either is missing it degrades
// to lexical search so that recall quality falls gradually rather than to
// zero.
type Semantic struct {
	store    storage.MemoryStore
	provider embedder.Provider
	index    vector.Index
	fallback *Lexical
}

// NewSemantic creates a semantic strategy. provider and index may be nil.
func NewSemantic(store storage.MemoryStore, provider embedder.Provider, index vector.Index) *Semantic {
	return &Semantic{
		store:    store,
		provider: provider,
		index:    index,
		fallback: NewLexical(store),
	}
}

// Name returns the strategy name.
func (s *Semantic) Name() string { return NameSemantic }

// Search embeds the query, asks the index for nearest neighbors, and loads
// the matching memories from the store. Session filtering is applied on the
// loaded rows since the index only partitions by owner.
func (s *Semantic) Search(ctx context.Context, query string, scope Scope, limit int) ([]*storage.Memory, error) {
	if s.provider == nil || s.index == nil {
		return s.fallback.Search(ctx, query, scope, limit)
	}

	embedding, err := s.provider.Embed(ctx, query)
	if err != nil {
		return s.fallback.Search(ctx, query, scope, limit)
	}

	matches, err := s.index.Search(ctx, scope.OwnerID, embedding, limit)
	if err != nil {
		return s.fallback.Search(ctx, query, scope, limit)
	}
	if len(matches) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(matches))
	order := make(map[int64]int, len(matches))
	for i, match := range matches {
		ids[i] = match.ID
		order[match.ID] = i
	}

	filter := scopedFilter(scope)
	filter.IDs = ids

	memories, err := s.store.ScanByFilter(ctx, filter, storage.SortNone, 0)
	if err != nil {
		return nil, err
	}

	// Restore similarity order; the store returns its own ordering.
	sortByMatchOrder(memories, order)
	if limit > 0 && len(memories) > limit {
		memories = memories[:limit]
	}
	return memories, nil
}

func sortByMatchOrder(memories []*storage.Memory, order map[int64]int) {
	sort.SliceStable(memories, func(i, j int) bool {
		return order[memories[i].ID] < order[memories[j].ID]
	})
}
