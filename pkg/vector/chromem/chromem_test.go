package chromem_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eora-ai/recall-go/pkg/embedder/mock"
	"github.com/eora-ai/recall-go/pkg/vector/chromem"
)

func embed(t *testing.T, e *mock.Embedder, text string) []float64 {
	t.Helper()
	embedding, err := e.Embed(context.Background(), text)
	require.NoError(t, err)
	return embedding
}

func TestAddAndSearchRoundTrip(t *testing.T) {
	index := chromem.New()
	defer func() { _ = index.Close() }()
	e := mock.New(64)
	ctx := context.Background()

	require.NoError(t, index.Add(ctx, 1, "alice", "goroutines and channels",
		embed(t, e, "goroutines and channels")))
	require.NoError(t, index.Add(ctx, 2, "alice", "tomato plants in the garden",
		embed(t, e, "tomato plants in the garden")))

	matches, err := index.Search(ctx, "alice", embed(t, e, "goroutines and channels"), 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	// The query embedding is identical to document 1's, so it ranks first
	// with perfect similarity.
	assert.Equal(t, int64(1), matches[0].ID)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-4)
	assert.Less(t, matches[1].Score, matches[0].Score)
}

func TestSearchIsolatesOwners(t *testing.T) {
	index := chromem.New()
	defer func() { _ = index.Close() }()
	e := mock.New(64)
	ctx := context.Background()

	require.NoError(t, index.Add(ctx, 1, "alice", "alice's note", embed(t, e, "alice's note")))
	require.NoError(t, index.Add(ctx, 2, "bob", "bob's note", embed(t, e, "bob's note")))

	matches, err := index.Search(ctx, "alice", embed(t, e, "note"), 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, int64(1), matches[0].ID)
}

func TestSearchClampsLimit(t *testing.T) {
	index := chromem.New()
	defer func() { _ = index.Close() }()
	e := mock.New(64)
	ctx := context.Background()

	require.NoError(t, index.Add(ctx, 1, "alice", "only entry", embed(t, e, "only entry")))

	// Asking for more results than documents must not error.
	matches, err := index.Search(ctx, "alice", embed(t, e, "only entry"), 50)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestSearchEmptyIndex(t *testing.T) {
	index := chromem.New()
	defer func() { _ = index.Close() }()
	e := mock.New(64)

	matches, err := index.Search(context.Background(), "alice", embed(t, e, "anything"), 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}
