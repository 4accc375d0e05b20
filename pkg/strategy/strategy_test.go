package strategy_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eora-ai/recall-go/pkg/analysis"
	"github.com/eora-ai/recall-go/pkg/embedder/mock"
	"github.com/eora-ai/recall-go/pkg/storage"
	"github.com/eora-ai/recall-go/pkg/storage/inmemory"
	"github.com/eora-ai/recall-go/pkg/strategy"
	"github.com/eora-ai/recall-go/pkg/vector"
)

// seedStore fills an in-memory store with a small fixture set for the
// term-based strategies.
func seedStore(t *testing.T) *inmemory.Store {
	t.Helper()
	store := inmemory.New()
	ctx := context.Background()
	now := time.Now()

	fixtures := []struct {
		id         int64
		owner      string
		session    string
		content    string
		memoryType string
		age        time.Duration
		recalls    int
	}{
		{1, "alice", "s1", "Python is a language I use daily", "fact", 48 * time.Hour, 0},
		{2, "alice", "s1", "I feel happy today, got a promotion", "conversation", 2 * time.Hour, 0},
		{3, "alice", "s2", "I believe honesty matters to me", "fact", 24 * time.Hour, 0},
		{4, "alice", "s2", "Morning run around the park", "habit", 12 * time.Hour, 0},
		{5, "alice", "s1", "Busy day at the office", "conversation", time.Hour, 3},
		{6, "bob", "s9", "Python tutorial bookmarked", "fact", time.Hour, 0},
	}

	for _, f := range fixtures {
		require.NoError(t, store.Insert(ctx, &storage.Memory{
			ID:          f.id,
			OwnerID:     f.owner,
			SessionID:   f.session,
			Content:     f.content,
			MemoryType:  f.memoryType,
			Keywords:    analysis.ExtractKeywords(f.content),
			EmotionTags: analysis.DetectEmotions(f.content),
			BeliefTags:  analysis.DetectBeliefs(f.content),
			CreatedAt:   now.Add(-f.age),
			RecallCount: f.recalls,
		}))
	}
	return store
}

func idsOf(memories []*storage.Memory) []int64 {
	out := make([]int64, len(memories))
	for i, m := range memories {
		out[i] = m.ID
	}
	return out
}

func TestLexicalSearch(t *testing.T) {
	store := seedStore(t)
	lexical := strategy.NewLexical(store)

	memories, err := lexical.Search(context.Background(), "python",
		strategy.Scope{OwnerID: "alice"}, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, idsOf(memories))
}

func TestLexicalRespectsOwnerScope(t *testing.T) {
	store := seedStore(t)
	lexical := strategy.NewLexical(store)

	memories, err := lexical.Search(context.Background(), "python",
		strategy.Scope{OwnerID: "bob"}, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{6}, idsOf(memories))
}

func TestLexicalEmptyQuery(t *testing.T) {
	store := seedStore(t)
	lexical := strategy.NewLexical(store)

	memories, err := lexical.Search(context.Background(), "",
		strategy.Scope{OwnerID: "alice"}, 10)
	require.NoError(t, err)
	assert.Empty(t, memories)
}

func TestEmotionSearch(t *testing.T) {
	store := seedStore(t)
	emotion := strategy.NewEmotion(store)

	memories, err := emotion.Search(context.Background(), "I feel so happy",
		strategy.Scope{OwnerID: "alice"}, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, idsOf(memories))
}

func TestEmotionNeutralQuery(t *testing.T) {
	store := seedStore(t)
	emotion := strategy.NewEmotion(store)

	memories, err := emotion.Search(context.Background(), "meeting at noon",
		strategy.Scope{OwnerID: "alice"}, 10)
	require.NoError(t, err)
	assert.Empty(t, memories)
}

func TestBeliefSearch(t *testing.T) {
	store := seedStore(t)
	belief := strategy.NewBelief(store)

	memories, err := belief.Search(context.Background(), "what do I believe in",
		strategy.Scope{OwnerID: "alice"}, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, idsOf(memories))
}

func TestContextSearchWithinSession(t *testing.T) {
	store := seedStore(t)
	contextual := strategy.NewContext(store)

	memories, err := contextual.Search(context.Background(), "office day",
		strategy.Scope{OwnerID: "alice", SessionID: "s1"}, 10)
	require.NoError(t, err)
	for _, m := range memories {
		assert.Equal(t, "s1", m.SessionID)
	}
	assert.Contains(t, idsOf(memories), int64(5))
}

func TestTemporalSearchRecency(t *testing.T) {
	store := seedStore(t)
	temporal := strategy.NewTemporal(store)

	memories, err := temporal.Search(context.Background(), "anything",
		strategy.Scope{OwnerID: "alice"}, 3)
	require.NoError(t, err)
	require.Len(t, memories, 3)
	// Newest first.
	assert.Equal(t, []int64{5, 2, 4}, idsOf(memories))
}

func TestTemporalSearchWindow(t *testing.T) {
	store := seedStore(t)
	temporal := strategy.NewTemporal(store)

	memories, err := temporal.Search(context.Background(), "what happened yesterday",
		strategy.Scope{OwnerID: "alice"}, 10)
	require.NoError(t, err)
	for _, m := range memories {
		age := time.Since(m.CreatedAt)
		assert.True(t, age < 48*time.Hour, "memory %d too old for yesterday window", m.ID)
	}
}

func TestAssociationSearchExpandsSynonyms(t *testing.T) {
	store := seedStore(t)
	association := strategy.NewAssociation(store)

	// "work" expands to "office" among others.
	memories, err := association.Search(context.Background(), "work",
		strategy.Scope{OwnerID: "alice"}, 10)
	require.NoError(t, err)
	assert.Contains(t, idsOf(memories), int64(5))
}

func TestPatternSearch(t *testing.T) {
	store := seedStore(t)
	pattern := strategy.NewPattern(store)

	// Memory 4 is a habit; memory 5 has been recalled repeatedly.
	memories, err := pattern.Search(context.Background(), "morning run office",
		strategy.Scope{OwnerID: "alice"}, 10)
	require.NoError(t, err)
	got := idsOf(memories)
	assert.Contains(t, got, int64(4))
	assert.Contains(t, got, int64(5))
	assert.NotContains(t, got, int64(1))
}

func TestSemanticFallsBackToLexical(t *testing.T) {
	store := seedStore(t)
	semantic := strategy.NewSemantic(store, nil, nil)

	memories, err := semantic.Search(context.Background(), "python",
		strategy.Scope{OwnerID: "alice"}, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, idsOf(memories))
}

// fixedIndex returns a canned match list regardless of the query embedding.
type fixedIndex struct {
	matches []vector.Match
}

func (f *fixedIndex) Add(context.Context, int64, string, string, []float64) error { return nil }

func (f *fixedIndex) Search(context.Context, string, []float64, int) ([]vector.Match, error) {
	return f.matches, nil
}

func (f *fixedIndex) Close() error { return nil }

func TestSemanticKeepsSimilarityOrder(t *testing.T) {
	store := seedStore(t)
	// Similarity order deliberately disagrees with the store's
	// created-at order.
	index := &fixedIndex{matches: []vector.Match{
		{ID: 3, Score: 0.95},
		{ID: 5, Score: 0.8},
		{ID: 1, Score: 0.7},
	}}
	semantic := strategy.NewSemantic(store, mock.New(16), index)

	memories, err := semantic.Search(context.Background(), "anything",
		strategy.Scope{OwnerID: "alice"}, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 5, 1}, idsOf(memories))
}

func TestWeightsAndPriority(t *testing.T) {
	assert.Equal(t, 1.0, strategy.Weight(strategy.NameLexical))
	assert.Equal(t, 0.9, strategy.Weight(strategy.NameSemantic))
	assert.Equal(t, 0.6, strategy.Weight(strategy.NamePattern))
	assert.Equal(t, 0.0, strategy.Weight("unknown"))

	assert.Less(t,
		strategy.PriorityRank(strategy.NameLexical),
		strategy.PriorityRank(strategy.NameSemantic))
	assert.Less(t,
		strategy.PriorityRank(strategy.NameTemporal),
		strategy.PriorityRank(strategy.NamePattern))
	assert.Equal(t, 8, strategy.PriorityRank("unknown"))
}
