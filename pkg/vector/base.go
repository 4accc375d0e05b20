// Package vector defines the optional vector index used by semantic recall.
//
// The index stores embeddings keyed by memory ID and answers nearest-neighbor
// queries scoped to a single owner. When no index is configured the engine
// degrades to its term-based strategies.
package vector

import "context"

// Match is a single nearest-neighbor hit.
type Match struct {
	ID    int64
	Score float64
}

// Index is the vector index contract.
type Index interface {
	// Add indexes one memory's embedding under the owner's namespace.
	Add(ctx context.Context, id int64, ownerID, content string, embedding []float64) error

	// Search returns up to limit matches for the owner, best first.
	Search(ctx context.Context, ownerID string, embedding []float64, limit int) ([]Match, error)

	// Close releases index resources.
	Close() error
}
