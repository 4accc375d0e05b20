package strategy

import (
	"context"

	"github.com/eora-ai/recall-go/pkg/analysis"
	"github.com/eora-ai/recall-go/pkg/storage"
)

// Context recalls memories from the current conversation session. With no
// session in scope it behaves like lexical search over the whole owner,
// which keeps the strategy useful for sessionless callers.
type Context struct {
	store storage.MemoryStore
}

// NewContext creates a context strategy over the given store.
func NewContext(store storage.MemoryStore) *Context {
	return &Context{store: store}
}

// Name returns the strategy name.
func (s *Context) Name() string { return NameContext }

// Search returns session memories matching the query terms. When the query
// has no tokens it returns the most recent session memories instead.
func (s *Context) Search(ctx context.Context, query string, scope Scope, limit int) ([]*storage.Memory, error) {
	filter := scopedFilter(scope)
	filter.Tokens = analysis.Tokenize(query)

	if scope.SessionID == "" && len(filter.Tokens) == 0 {
		return nil, nil
	}

	return s.store.ScanByFilter(ctx, filter, storage.SortCreatedDesc, limit)
}
