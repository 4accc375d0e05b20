package core

import (
	"github.com/eora-ai/recall-go/pkg/recall"
	"github.com/eora-ai/recall-go/pkg/storage"
)

// toPublicMemory converts a stored memory to the public type.
func toPublicMemory(m *storage.Memory) Memory {
	return Memory{
		ID:             m.ID,
		OwnerID:        m.OwnerID,
		SessionID:      m.SessionID,
		Content:        m.Content,
		MemoryType:     m.MemoryType,
		Importance:     m.Importance,
		Keywords:       m.Keywords,
		EmotionTags:    m.EmotionTags,
		BeliefTags:     m.BeliefTags,
		Metadata:       m.Metadata,
		CreatedAt:      m.CreatedAt,
		RecallCount:    m.RecallCount,
		LastRecalledAt: m.LastRecalledAt,
	}
}

// toPublicResults converts ranked recall results to the public type.
func toPublicResults(results []*recall.Result) []RecallResult {
	public := make([]RecallResult, len(results))
	for i, r := range results {
		public[i] = RecallResult{
			Memory:        toPublicMemory(r.Memory),
			Strategy:      r.Strategy,
			Strategies:    r.Strategies,
			Score:         r.Score,
			TimeRelevance: r.TimeRelevance,
			RelativeTime:  r.RelativeTime,
		}
	}
	return public
}
