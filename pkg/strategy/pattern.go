package strategy

import (
	"context"

	"github.com/eora-ai/recall-go/pkg/analysis"
	"github.com/eora-ai/recall-go/pkg/storage"
)

// patternTypes are the memory types that record habitual behavior.
var patternTypes = map[string]bool{
	"habit":     true,
	"pattern":   true,
	"routine":   true,
	"procedure": true,
}

// repeatThreshold is the recall count at which a memory counts as a
// recurring reference even without a habitual memory type.
const repeatThreshold = 2

// Pattern recalls habitual or recurring memories: those stored under a
// habit-like memory type, or plain memories the caller keeps coming back to.
type Pattern struct {
	store storage.MemoryStore
}

// NewPattern creates a pattern strategy over the given store.
func NewPattern(store storage.MemoryStore) *Pattern {
	return &Pattern{store: store}
}

// Name returns the strategy name.
func (s *Pattern) Name() string { return NamePattern }

// Search returns habitual memories matching the query terms, newest first.
func (s *Pattern) Search(ctx context.Context, query string, scope Scope, limit int) ([]*storage.Memory, error) {
	tokens := analysis.Tokenize(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	filter := scopedFilter(scope)
	filter.Tokens = tokens

	candidates, err := s.store.ScanByFilter(ctx, filter, storage.SortNone, 0)
	if err != nil {
		return nil, err
	}

	var memories []*storage.Memory
	for _, m := range candidates {
		if patternTypes[m.MemoryType] || m.RecallCount >= repeatThreshold {
			memories = append(memories, m)
		}
	}

	return storage.SortMemories(memories, storage.SortCreatedDesc, limit), nil
}
