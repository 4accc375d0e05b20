package strategy

import (
	"context"

	"github.com/eora-ai/recall-go/pkg/analysis"
	"github.com/eora-ai/recall-go/pkg/storage"
)

// Lexical recalls memories whose content or keywords contain the query
// terms. This is the strongest recall signal and the fallback for several
// other strategies.
type Lexical struct {
	store storage.MemoryStore
}

// NewLexical creates a lexical strategy over the given store.
func NewLexical(store storage.MemoryStore) *Lexical {
	return &Lexical{store: store}
}

// Name returns the strategy name.
func (s *Lexical) Name() string { return NameLexical }

// Search returns memories matching any query token, newest first.
func (s *Lexical) Search(ctx context.Context, query string, scope Scope, limit int) ([]*storage.Memory, error) {
	tokens := analysis.Tokenize(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	filter := scopedFilter(scope)
	filter.Tokens = tokens

	return s.store.ScanByFilter(ctx, filter, storage.SortCreatedDesc, limit)
}
