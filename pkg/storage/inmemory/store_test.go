package inmemory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eora-ai/recall-go/pkg/storage"
	"github.com/eora-ai/recall-go/pkg/storage/inmemory"
)

func TestInsertAndScan(t *testing.T) {
	store := inmemory.New()
	ctx := context.Background()

	memory := &storage.Memory{
		ID:        1,
		OwnerID:   "alice",
		Content:   "Python is a language",
		Keywords:  []string{"python", "language"},
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.Insert(ctx, memory))

	results, err := store.ScanByFilter(ctx, &storage.Filter{OwnerID: "alice"}, storage.SortCreatedDesc, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int64(1), results[0].ID)
	assert.Equal(t, "Python is a language", results[0].Content)
}

func TestScanReturnsClones(t *testing.T) {
	store := inmemory.New()
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, &storage.Memory{
		ID:       1,
		OwnerID:  "alice",
		Content:  "original",
		Keywords: []string{"original"},
	}))

	results, err := store.ScanByFilter(ctx, nil, storage.SortNone, 0)
	require.NoError(t, err)
	results[0].Keywords[0] = "mutated"

	again, err := store.ScanByFilter(ctx, nil, storage.SortNone, 0)
	require.NoError(t, err)
	assert.Equal(t, "original", again[0].Keywords[0])
}

func TestScanFilterAndLimit(t *testing.T) {
	store := inmemory.New()
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Insert(ctx, &storage.Memory{
			ID:        int64(i + 1),
			OwnerID:   "alice",
			Content:   fmt.Sprintf("memory %d", i+1),
			CreatedAt: now.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, store.Insert(ctx, &storage.Memory{
		ID:        100,
		OwnerID:   "bob",
		Content:   "not alice's",
		CreatedAt: now,
	}))

	results, err := store.ScanByFilter(ctx, &storage.Filter{OwnerID: "alice"}, storage.SortCreatedDesc, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, int64(5), results[0].ID)
	assert.Equal(t, int64(4), results[1].ID)
	assert.Equal(t, int64(3), results[2].ID)
}

func TestCount(t *testing.T) {
	store := inmemory.New()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Insert(ctx, &storage.Memory{
			ID:      int64(i + 1),
			OwnerID: "alice",
			Content: "x",
		}))
	}

	count, err := store.Count(ctx, &storage.Filter{OwnerID: "alice"})
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	count, err = store.Count(ctx, &storage.Filter{OwnerID: "bob"})
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestTouchRecalled(t *testing.T) {
	store := inmemory.New()
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, &storage.Memory{ID: 1, Content: "x"}))
	require.NoError(t, store.Insert(ctx, &storage.Memory{ID: 2, Content: "y"}))

	at := time.Now()
	require.NoError(t, store.TouchRecalled(ctx, []int64{1, 999}, at))

	results, err := store.ScanByFilter(ctx, &storage.Filter{IDs: []int64{1}}, storage.SortNone, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].RecallCount)
	require.NotNil(t, results[0].LastRecalledAt)
	assert.True(t, results[0].LastRecalledAt.Equal(at))

	results, err = store.ScanByFilter(ctx, &storage.Filter{IDs: []int64{2}}, storage.SortNone, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, results[0].RecallCount)
}

func TestCanceledContext(t *testing.T) {
	store := inmemory.New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.Insert(ctx, &storage.Memory{ID: 1, Content: "x"})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = store.ScanByFilter(ctx, nil, storage.SortNone, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConcurrentAccess(t *testing.T) {
	store := inmemory.New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.Insert(ctx, &storage.Memory{
				ID:      int64(i + 1),
				OwnerID: "alice",
				Content: "concurrent",
			})
			_, _ = store.ScanByFilter(ctx, &storage.Filter{OwnerID: "alice"}, storage.SortNone, 0)
		}(i)
	}
	wg.Wait()

	count, err := store.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 20, count)
}
