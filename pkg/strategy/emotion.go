package strategy

import (
	"context"

	"github.com/eora-ai/recall-go/pkg/analysis"
	"github.com/eora-ai/recall-go/pkg/storage"
)

// Emotion recalls memories sharing the query's emotional tone. When the
// query carries no detectable emotion it returns nothing; emotionally
// neutral queries should not drag in emotional memories.
type Emotion struct {
	store storage.MemoryStore
}

// NewEmotion creates an emotion strategy over the given store.
func NewEmotion(store storage.MemoryStore) *Emotion {
	return &Emotion{store: store}
}

// Name returns the strategy name.
func (s *Emotion) Name() string { return NameEmotion }

// Search returns memories tagged with any emotion detected in the query.
func (s *Emotion) Search(ctx context.Context, query string, scope Scope, limit int) ([]*storage.Memory, error) {
	emotions := analysis.DetectEmotions(query)
	if len(emotions) == 0 {
		return nil, nil
	}

	filter := scopedFilter(scope)
	filter.EmotionTags = emotions

	return s.store.ScanByFilter(ctx, filter, storage.SortCreatedDesc, limit)
}
