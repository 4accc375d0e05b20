package recall_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eora-ai/recall-go/pkg/recall"
	"github.com/eora-ai/recall-go/pkg/storage"
	"github.com/eora-ai/recall-go/pkg/strategy"
)

func rankResult(id int64, content, origin string, createdAt time.Time, timeRelevance float64) *recall.Result {
	return &recall.Result{
		Memory:        &storage.Memory{ID: id, Content: content, CreatedAt: createdAt},
		Strategy:      origin,
		Strategies:    []string{origin},
		TimeRelevance: timeRelevance,
	}
}

func TestRankPrefersLexicalOverlap(t *testing.T) {
	now := time.Now()
	exact := rankResult(1, "Python is a language", strategy.NameLexical, now, 0.5)
	partial := rankResult(2, "I read about a language", strategy.NameLexical, now, 0.5)

	results := []*recall.Result{partial, exact}
	recall.Rank("python language", results)

	assert.Equal(t, int64(1), results[0].Memory.ID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestRankPrefersStrongerOrigin(t *testing.T) {
	now := time.Now()
	lexical := rankResult(1, "unrelated words entirely", strategy.NameLexical, now, 0.5)
	pattern := rankResult(2, "unrelated words entirely", strategy.NamePattern, now, 0.5)

	results := []*recall.Result{pattern, lexical}
	recall.Rank("query terms", results)

	assert.Equal(t, int64(1), results[0].Memory.ID)
}

func TestRankMultiOriginUsesStrongestWeight(t *testing.T) {
	now := time.Now()
	multi := rankResult(1, "x", strategy.NamePattern, now, 0.5)
	multi.Strategies = []string{strategy.NamePattern, strategy.NameLexical}
	single := rankResult(2, "x", strategy.NamePattern, now, 0.5)

	results := []*recall.Result{single, multi}
	recall.Rank("y", results)

	assert.Equal(t, int64(1), results[0].Memory.ID)
}

func TestRankTimeRelevanceBreaksEqualText(t *testing.T) {
	now := time.Now()
	recent := rankResult(1, "same content", strategy.NameLexical, now, 1.0)
	stale := rankResult(2, "same content", strategy.NameLexical, now, 0.1)

	results := []*recall.Result{stale, recent}
	recall.Rank("same content", results)

	assert.Equal(t, int64(1), results[0].Memory.ID)
}

func TestRankDeterministicTieBreaks(t *testing.T) {
	created := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	a := rankResult(9, "same", strategy.NameLexical, created, 0.5)
	b := rankResult(4, "same", strategy.NameLexical, created, 0.5)
	newer := rankResult(7, "same", strategy.NameLexical, created.Add(time.Hour), 0.5)

	results := []*recall.Result{a, b, newer}
	recall.Rank("same", results)

	// Newer first, then smaller ID.
	require.Len(t, results, 3)
	assert.Equal(t, int64(7), results[0].Memory.ID)
	assert.Equal(t, int64(4), results[1].Memory.ID)
	assert.Equal(t, int64(9), results[2].Memory.ID)
}

func TestRankIsStableAcrossRuns(t *testing.T) {
	now := time.Now()
	build := func() []*recall.Result {
		return []*recall.Result{
			rankResult(1, "python language notes", strategy.NameLexical, now, 0.4),
			rankResult(2, "language ideas", strategy.NameSemantic, now.Add(-time.Hour), 0.6),
			rankResult(3, "python habits", strategy.NamePattern, now.Add(-2*time.Hour), 0.8),
		}
	}

	first := build()
	second := build()
	recall.Rank("python language", first)
	recall.Rank("python language", second)

	for i := range first {
		assert.Equal(t, first[i].Memory.ID, second[i].Memory.ID)
	}
}
