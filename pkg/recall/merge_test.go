package recall_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eora-ai/recall-go/pkg/recall"
	"github.com/eora-ai/recall-go/pkg/storage"
	"github.com/eora-ai/recall-go/pkg/strategy"
)

func mem(id int64, content string, age time.Duration) *storage.Memory {
	return &storage.Memory{
		ID:        id,
		Content:   content,
		CreatedAt: time.Now().Add(-age),
	}
}

func TestMergeDeduplicatesAcrossStrategies(t *testing.T) {
	shared := mem(1, "shared memory", time.Hour)
	outcomes := []strategy.Outcome{
		{Strategy: strategy.NameTemporal, Memories: []*storage.Memory{shared, mem(2, "temporal only", time.Hour)}},
		{Strategy: strategy.NameLexical, Memories: []*storage.Memory{shared}},
	}

	results := recall.Merge(outcomes)
	require.Len(t, results, 2)

	var sharedResult *recall.Result
	for _, r := range results {
		if r.Memory.ID == 1 {
			sharedResult = r
		}
	}
	require.NotNil(t, sharedResult)

	// Lexical outranks temporal for the duplicate's label.
	assert.Equal(t, strategy.NameLexical, sharedResult.Strategy)
	assert.ElementsMatch(t,
		[]string{strategy.NameTemporal, strategy.NameLexical},
		sharedResult.Strategies)
}

func TestMergeSkipsFailedOutcomes(t *testing.T) {
	outcomes := []strategy.Outcome{
		{Strategy: strategy.NameLexical, Err: errors.New("boom")},
		{Strategy: strategy.NameTemporal, Memories: []*storage.Memory{mem(1, "ok", time.Hour)}},
	}

	results := recall.Merge(outcomes)
	require.Len(t, results, 1)
	assert.Equal(t, strategy.NameTemporal, results[0].Strategy)
}

func TestMergeEmpty(t *testing.T) {
	assert.Empty(t, recall.Merge(nil))
	assert.Empty(t, recall.Merge([]strategy.Outcome{{Strategy: strategy.NameLexical}}))
}

func TestMergeKeepsStrategyOnce(t *testing.T) {
	m := mem(1, "x", time.Hour)
	outcomes := []strategy.Outcome{
		{Strategy: strategy.NameLexical, Memories: []*storage.Memory{m, m}},
	}

	results := recall.Merge(outcomes)
	require.Len(t, results, 1)
	assert.Equal(t, []string{strategy.NameLexical}, results[0].Strategies)
}
