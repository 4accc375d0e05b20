package strategy_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eora-ai/recall-go/pkg/storage"
	"github.com/eora-ai/recall-go/pkg/strategy"
)

// countingStrategy counts how many searches reach it.
type countingStrategy struct {
	calls int64
}

func (s *countingStrategy) Name() string { return "counting" }

func (s *countingStrategy) Search(context.Context, string, strategy.Scope, int) ([]*storage.Memory, error) {
	atomic.AddInt64(&s.calls, 1)
	return []*storage.Memory{{ID: 1, Content: "cached"}}, nil
}

func TestCachedServesRepeatQueries(t *testing.T) {
	inner := &countingStrategy{}
	cached, err := strategy.NewCached(inner, time.Minute)
	require.NoError(t, err)
	defer cached.(*strategy.Cached).Close()

	ctx := context.Background()
	scope := strategy.Scope{OwnerID: "alice"}

	first, err := cached.Search(ctx, "q", scope, 5)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Ristretto admits asynchronously.
	time.Sleep(20 * time.Millisecond)

	second, err := cached.Search(ctx, "q", scope, 5)
	require.NoError(t, err)
	require.Len(t, second, 1)

	assert.Equal(t, int64(1), atomic.LoadInt64(&inner.calls))
}

func TestCachedResultsAreIsolated(t *testing.T) {
	inner := &countingStrategy{}
	cached, err := strategy.NewCached(inner, time.Minute)
	require.NoError(t, err)
	defer cached.(*strategy.Cached).Close()

	ctx := context.Background()
	scope := strategy.Scope{OwnerID: "alice"}

	first, err := cached.Search(ctx, "q", scope, 5)
	require.NoError(t, err)
	first[0].Content = "mutated"

	time.Sleep(20 * time.Millisecond)

	second, err := cached.Search(ctx, "q", scope, 5)
	require.NoError(t, err)
	assert.Equal(t, "cached", second[0].Content)
}

func TestCachedDistinguishesScopes(t *testing.T) {
	inner := &countingStrategy{}
	cached, err := strategy.NewCached(inner, time.Minute)
	require.NoError(t, err)
	defer cached.(*strategy.Cached).Close()

	ctx := context.Background()
	_, err = cached.Search(ctx, "q", strategy.Scope{OwnerID: "alice"}, 5)
	require.NoError(t, err)
	_, err = cached.Search(ctx, "q", strategy.Scope{OwnerID: "bob"}, 5)
	require.NoError(t, err)

	assert.Equal(t, int64(2), atomic.LoadInt64(&inner.calls))
}

func TestNewCachedZeroTTLDisablesCaching(t *testing.T) {
	inner := &countingStrategy{}
	cached, err := strategy.NewCached(inner, 0)
	require.NoError(t, err)
	assert.Same(t, strategy.Strategy(inner), cached)
}
