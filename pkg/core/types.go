package core

import "time"

// Memory type constants for categorizing stored memories.
const (
	// MemoryTypeConversation marks a turn of dialogue.
	MemoryTypeConversation = "conversation"

	// MemoryTypeFact marks a standalone piece of knowledge.
	MemoryTypeFact = "fact"

	// MemoryTypePreference marks a like, dislike or setting.
	MemoryTypePreference = "preference"

	// MemoryTypeHabit marks recurring behavior; pattern recall favors it.
	MemoryTypeHabit = "habit"
)

// Memory is a stored memory as the engine exposes it.
type Memory struct {
	// ID is the unique memory identifier.
	ID int64 `json:"id"`

	// OwnerID identifies who the memory belongs to.
	OwnerID string `json:"owner_id,omitempty"`

	// SessionID identifies the conversation session it came from.
	SessionID string `json:"session_id,omitempty"`

	// Content is the memory text.
	Content string `json:"content"`

	// MemoryType categorizes the memory (conversation, fact, preference, habit).
	MemoryType string `json:"memory_type,omitempty"`

	// Importance is the caller-assigned weight in [0, 1].
	Importance float64 `json:"importance"`

	// Keywords, EmotionTags and BeliefTags are derived at store time and
	// drive the term-based recall strategies.
	Keywords    []string `json:"keywords,omitempty"`
	EmotionTags []string `json:"emotion_tags,omitempty"`
	BeliefTags  []string `json:"belief_tags,omitempty"`

	// Metadata holds arbitrary caller data.
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// CreatedAt is when the memory was stored.
	CreatedAt time.Time `json:"created_at"`

	// RecallCount is how many times recall has surfaced this memory.
	RecallCount int `json:"recall_count"`

	// LastRecalledAt is when recall last surfaced it, if ever.
	LastRecalledAt *time.Time `json:"last_recalled_at,omitempty"`
}

// RecallResult is one recalled memory with its provenance and ranking.
type RecallResult struct {
	// Memory is the recalled memory.
	Memory Memory `json:"memory"`

	// Strategy is the strongest strategy that surfaced the memory;
	// Strategies lists every one that did.
	Strategy   string   `json:"strategy"`
	Strategies []string `json:"strategies"`

	// Score is the composite ranking score. TimeRelevance is its
	// temporal component.
	Score         float64 `json:"score"`
	TimeRelevance float64 `json:"time_relevance"`

	// RelativeTime is a conversational age like "yesterday".
	RelativeTime string `json:"relative_time"`
}

// Stats summarizes a service's stored memories.
type Stats struct {
	// TotalMemories is the number of stored memories in scope.
	TotalMemories int `json:"total_memories"`

	// MemoriesByType breaks the total down per memory type.
	MemoriesByType map[string]int `json:"memories_by_type"`

	// VectorIndexEnabled reports whether semantic recall has an index.
	VectorIndexEnabled bool `json:"vector_index_enabled"`

	// EmbedderEnabled reports whether an embedding provider is configured.
	EmbedderEnabled bool `json:"embedder_enabled"`
}
