// Package storage provides interfaces and types for memory persistence backends.
//
// It defines the MemoryStore interface that all storage implementations must satisfy,
// along with the Memory record type and filter/sort options for scans.
package storage

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
)

// Predefined storage errors.
var (
	// ErrUnavailable indicates the durable backend is configured but unreachable.
	// Callers holding a fallback store absorb this error instead of propagating it.
	ErrUnavailable = errors.New("store unavailable")

	// ErrNotFound indicates that a requested memory was not found.
	ErrNotFound = errors.New("memory not found")
)

// Memory represents a single memory record persisted in the store.
//
// Derived fields (Keywords, EmotionTags, BeliefTags) are computed exactly once
// by the caller before Insert and are never recomputed on read. RecallCount and
// LastRecalledAt are the only mutable fields; they are updated in batch through
// TouchRecalled.
type Memory struct {
	// ID is the unique identifier of the memory, assigned at creation.
	ID int64

	// OwnerID identifies the user who owns this memory.
	// An empty OwnerID marks a global/system memory.
	OwnerID string

	// SessionID optionally groups memories belonging to one conversational session.
	SessionID string

	// Content is the stored text. It may encode a user/response pair as one string.
	Content string

	// MemoryType is a caller-supplied tag such as "conversation" or "learning".
	MemoryType string

	// Importance is a caller-supplied ranking input in [0,1].
	Importance float64

	// Keywords holds lowercase tokens extracted from Content at creation time.
	Keywords []string

	// EmotionTags holds emotion category labels detected at creation time.
	EmotionTags []string

	// BeliefTags holds belief indicator labels detected at creation time.
	BeliefTags []string

	// Embedding is the vector representation of Content.
	// Present only when a vector index capability is configured.
	Embedding []float64

	// Metadata contains additional structured information about the memory.
	Metadata map[string]interface{}

	// CreatedAt is when the memory was created. Set once, never mutated.
	CreatedAt time.Time

	// RecallCount is the number of times this memory appeared in a recall result.
	RecallCount int

	// LastRecalledAt is when the memory last appeared in a recall result
	// (nil if never recalled).
	LastRecalledAt *time.Time
}

// Clone returns a copy of the memory safe to hand to concurrent readers.
func (m *Memory) Clone() *Memory {
	cp := *m
	cp.Keywords = append([]string(nil), m.Keywords...)
	cp.EmotionTags = append([]string(nil), m.EmotionTags...)
	cp.BeliefTags = append([]string(nil), m.BeliefTags...)
	cp.Embedding = append([]float64(nil), m.Embedding...)
	if m.Metadata != nil {
		cp.Metadata = make(map[string]interface{}, len(m.Metadata))
		for k, v := range m.Metadata {
			cp.Metadata[k] = v
		}
	}
	if m.LastRecalledAt != nil {
		t := *m.LastRecalledAt
		cp.LastRecalledAt = &t
	}
	return &cp
}

// Sort defines the ordering of scan results.
type Sort int

const (
	// SortNone leaves the backend ordering unspecified.
	SortNone Sort = iota

	// SortCreatedDesc orders results by CreatedAt descending (newest first).
	SortCreatedDesc

	// SortCreatedAsc orders results by CreatedAt ascending (oldest first).
	SortCreatedAsc
)

// Filter restricts which memories a scan returns.
//
// All set fields combine with logical AND. Within the list-valued fields
// (Tokens, EmotionTags, BeliefTags, MemoryTypes, IDs) any single match
// satisfies that field.
type Filter struct {
	// OwnerID restricts results to a single owner when non-empty.
	OwnerID string

	// SessionID restricts results to a single session when non-empty.
	SessionID string

	// Text requires a case-insensitive substring match against Content.
	Text string

	// Tokens requires at least one token to appear in Content
	// (case-insensitive) or in the derived Keywords set.
	Tokens []string

	// EmotionTags requires a non-empty intersection with the memory's EmotionTags.
	EmotionTags []string

	// BeliefTags requires a non-empty intersection with the memory's BeliefTags.
	BeliefTags []string

	// MemoryTypes requires the memory's MemoryType to be one of the listed values.
	MemoryTypes []string

	// IDs restricts results to the listed memory IDs.
	IDs []int64

	// Since excludes memories created before this instant (zero = unbounded).
	Since time.Time

	// Until excludes memories created at or after this instant (zero = unbounded).
	Until time.Time
}

// Matches reports whether a memory satisfies the filter.
//
// The SQL backends push the cheap equality and range conditions into the query
// and apply the remaining token/tag conditions through this method, so every
// backend exposes identical filter semantics.
func (f *Filter) Matches(m *Memory) bool {
	if f == nil {
		return true
	}
	if f.OwnerID != "" && m.OwnerID != f.OwnerID {
		return false
	}
	if f.SessionID != "" && m.SessionID != f.SessionID {
		return false
	}
	if !f.Since.IsZero() && m.CreatedAt.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && !m.CreatedAt.Before(f.Until) {
		return false
	}
	if len(f.IDs) > 0 && !containsID(f.IDs, m.ID) {
		return false
	}
	if len(f.MemoryTypes) > 0 && !containsFold(f.MemoryTypes, m.MemoryType) {
		return false
	}
	if f.Text != "" && !strings.Contains(strings.ToLower(m.Content), strings.ToLower(f.Text)) {
		return false
	}
	if len(f.Tokens) > 0 && !matchesTokens(f.Tokens, m) {
		return false
	}
	if len(f.EmotionTags) > 0 && !intersects(f.EmotionTags, m.EmotionTags) {
		return false
	}
	if len(f.BeliefTags) > 0 && !intersects(f.BeliefTags, m.BeliefTags) {
		return false
	}
	return true
}

// matchesTokens reports whether any token appears in the memory's content
// or derived keyword set.
func matchesTokens(tokens []string, m *Memory) bool {
	content := strings.ToLower(m.Content)
	for _, tok := range tokens {
		tok = strings.ToLower(tok)
		if tok == "" {
			continue
		}
		if strings.Contains(content, tok) {
			return true
		}
		for _, kw := range m.Keywords {
			if kw == tok {
				return true
			}
		}
	}
	return false
}

func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if strings.EqualFold(x, y) {
				return true
			}
		}
	}
	return false
}

func containsFold(list []string, v string) bool {
	for _, x := range list {
		if strings.EqualFold(x, v) {
			return true
		}
	}
	return false
}

func containsID(ids []int64, id int64) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// MemoryStore defines the interface for memory persistence backends.
//
// All backends (SQLite, PostgreSQL, MySQL, in-process) must implement this
// interface. Every method is safe for concurrent use.
type MemoryStore interface {
	// Insert persists a memory. The caller assigns the ID and computes the
	// derived fields before calling; the store never recomputes them.
	// Returns ErrUnavailable when the durable backend is unreachable.
	Insert(ctx context.Context, memory *Memory) error

	// ScanByFilter returns memories matching the filter, ordered per sort,
	// truncated to limit (limit <= 0 means unbounded).
	ScanByFilter(ctx context.Context, filter *Filter, sort Sort, limit int) ([]*Memory, error)

	// Count returns the number of memories matching the filter.
	Count(ctx context.Context, filter *Filter) (int, error)

	// TouchRecalled increments RecallCount and sets LastRecalledAt for the
	// given memory IDs. Unknown IDs are ignored.
	TouchRecalled(ctx context.Context, ids []int64, at time.Time) error

	// Close closes the store and releases resources.
	Close() error
}

// SortMemories orders memories in place per the requested sort and truncates
// to limit. Ties on CreatedAt break by ID ascending for determinism.
func SortMemories(memories []*Memory, order Sort, limit int) []*Memory {
	switch order {
	case SortCreatedDesc:
		sort.SliceStable(memories, func(i, j int) bool {
			a, b := memories[i], memories[j]
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.ID < b.ID
		})
	case SortCreatedAsc:
		sort.SliceStable(memories, func(i, j int) bool {
			a, b := memories[i], memories[j]
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.ID < b.ID
		})
	}
	if limit > 0 && len(memories) > limit {
		return memories[:limit]
	}
	return memories
}
