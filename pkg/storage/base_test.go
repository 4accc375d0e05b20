package storage_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/eora-ai/recall-go/pkg/storage"
)

func makeMemory(id int64, owner, content string, createdAt time.Time) *storage.Memory {
	return &storage.Memory{
		ID:        id,
		OwnerID:   owner,
		Content:   content,
		Keywords:  []string{"stored", "keyword"},
		CreatedAt: createdAt,
	}
}

func TestFilterMatches(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	memory := &storage.Memory{
		ID:          1,
		OwnerID:     "alice",
		SessionID:   "s1",
		Content:     "Python is a language",
		MemoryType:  "fact",
		Keywords:    []string{"python", "language"},
		EmotionTags: []string{"joy"},
		BeliefTags:  []string{"i believe"},
		CreatedAt:   now,
	}

	tests := []struct {
		name   string
		filter storage.Filter
		want   bool
	}{
		{"empty filter matches", storage.Filter{}, true},
		{"owner match", storage.Filter{OwnerID: "alice"}, true},
		{"owner mismatch", storage.Filter{OwnerID: "bob"}, false},
		{"session match", storage.Filter{SessionID: "s1"}, true},
		{"session mismatch", storage.Filter{SessionID: "s2"}, false},
		{"token in content", storage.Filter{Tokens: []string{"python"}}, true},
		{"token case insensitive", storage.Filter{Tokens: []string{"PYTHON"}}, true},
		{"token via keyword", storage.Filter{Tokens: []string{"language"}}, true},
		{"token absent", storage.Filter{Tokens: []string{"golang"}}, false},
		{"any-of tokens", storage.Filter{Tokens: []string{"golang", "python"}}, true},
		{"emotion tag", storage.Filter{EmotionTags: []string{"joy"}}, true},
		{"emotion tag absent", storage.Filter{EmotionTags: []string{"anger"}}, false},
		{"belief tag", storage.Filter{BeliefTags: []string{"i believe"}}, true},
		{"memory type", storage.Filter{MemoryTypes: []string{"fact"}}, true},
		{"memory type mismatch", storage.Filter{MemoryTypes: []string{"habit"}}, false},
		{"id match", storage.Filter{IDs: []int64{1, 2}}, true},
		{"id mismatch", storage.Filter{IDs: []int64{2}}, false},
		{"since before", storage.Filter{Since: now.Add(-time.Hour)}, true},
		{"since after", storage.Filter{Since: now.Add(time.Hour)}, false},
		{"until after", storage.Filter{Until: now.Add(time.Hour)}, true},
		{"until before", storage.Filter{Until: now.Add(-time.Hour)}, false},
		{
			"combined all match",
			storage.Filter{OwnerID: "alice", Tokens: []string{"python"}, EmotionTags: []string{"joy"}},
			true,
		},
		{
			"combined one mismatch",
			storage.Filter{OwnerID: "alice", Tokens: []string{"golang"}},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(memory))
		})
	}
}

func TestSortMemories(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	memories := []*storage.Memory{
		makeMemory(3, "a", "oldest", now.Add(-2*time.Hour)),
		makeMemory(1, "a", "newest", now),
		makeMemory(2, "a", "middle", now.Add(-time.Hour)),
	}

	sorted := storage.SortMemories(memories, storage.SortCreatedDesc, 0)
	assert.Equal(t, []int64{1, 2, 3}, ids(sorted))

	sorted = storage.SortMemories(memories, storage.SortCreatedAsc, 0)
	assert.Equal(t, []int64{3, 2, 1}, ids(sorted))
}

func TestSortMemoriesTieBreaksOnID(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	memories := []*storage.Memory{
		makeMemory(9, "a", "b", now),
		makeMemory(4, "a", "a", now),
	}

	sorted := storage.SortMemories(memories, storage.SortCreatedDesc, 0)
	assert.Equal(t, []int64{4, 9}, ids(sorted))
}

func TestSortMemoriesLimit(t *testing.T) {
	now := time.Now()
	memories := []*storage.Memory{
		makeMemory(1, "a", "x", now),
		makeMemory(2, "a", "y", now.Add(-time.Minute)),
		makeMemory(3, "a", "z", now.Add(-2*time.Minute)),
	}

	sorted := storage.SortMemories(memories, storage.SortCreatedDesc, 2)
	assert.Len(t, sorted, 2)
	assert.Equal(t, []int64{1, 2}, ids(sorted))
}

func TestMemoryClone(t *testing.T) {
	original := &storage.Memory{
		ID:       1,
		Content:  "hello",
		Keywords: []string{"hello"},
		Metadata: map[string]interface{}{"k": "v"},
	}

	clone := original.Clone()
	clone.Keywords[0] = "changed"
	clone.Metadata["k"] = "changed"

	assert.Equal(t, "hello", original.Keywords[0])
	assert.Equal(t, "v", original.Metadata["k"])
}

func ids(memories []*storage.Memory) []int64 {
	out := make([]int64, len(memories))
	for i, m := range memories {
		out[i] = m.ID
	}
	return out
}
