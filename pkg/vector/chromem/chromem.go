// Package chromem implements the vector.Index interface on top of
// chromem-go, a pure Go embedded vector database. No external service is
// required; everything lives in process memory.
package chromem

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/eora-ai/recall-go/pkg/vector"
)

// Index wraps a chromem-go database with one collection per owner.
type Index struct {
	db          *chromem.DB
	collections map[string]*chromem.Collection
	mu          sync.RWMutex
}

// New creates an empty in-process vector index.
func New() *Index {
	return &Index{
		db:          chromem.NewDB(),
		collections: make(map[string]*chromem.Collection),
	}
}

// getOrCreateCollection returns the collection for an owner, creating it on
// first use. Owners get separate collections for namespace isolation.
func (x *Index) getOrCreateCollection(ownerID string) (*chromem.Collection, error) {
	x.mu.RLock()
	col, exists := x.collections[ownerID]
	x.mu.RUnlock()
	if exists {
		return col, nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if col, exists := x.collections[ownerID]; exists {
		return col, nil
	}

	name := "owner_" + ownerID
	if ownerID == "" {
		name = "global"
	}

	col, err := x.db.CreateCollection(name, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	x.collections[ownerID] = col
	return col, nil
}

// Add indexes a memory's embedding.
func (x *Index) Add(ctx context.Context, id int64, ownerID, content string, embedding []float64) error {
	col, err := x.getOrCreateCollection(ownerID)
	if err != nil {
		return err
	}

	doc := chromem.Document{
		ID:        strconv.FormatInt(id, 10),
		Content:   content,
		Embedding: toFloat32(embedding),
		Metadata: map[string]string{
			"owner_id": ownerID,
		},
	}

	if err := col.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("add document: %w", err)
	}
	return nil
}

// Search returns the closest memories for an owner, best first. chromem-go
// rejects nResults larger than the collection size, so the limit is clamped.
func (x *Index) Search(ctx context.Context, ownerID string, embedding []float64, limit int) ([]vector.Match, error) {
	col, err := x.getOrCreateCollection(ownerID)
	if err != nil {
		return nil, err
	}

	count := col.Count()
	if count == 0 {
		return nil, nil
	}
	if limit > count {
		limit = count
	}
	if limit <= 0 {
		return nil, nil
	}

	results, err := col.QueryEmbedding(ctx, toFloat32(embedding), limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}

	matches := make([]vector.Match, 0, len(results))
	for _, result := range results {
		id, err := strconv.ParseInt(result.ID, 10, 64)
		if err != nil {
			continue
		}
		matches = append(matches, vector.Match{
			ID:    id,
			Score: float64(result.Similarity),
		})
	}
	return matches, nil
}

// Close drops all collections. chromem-go keeps everything in memory, so
// dropping the map is enough.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.collections = make(map[string]*chromem.Collection)
	return nil
}

func toFloat32(embedding64 []float64) []float32 {
	embedding32 := make([]float32, len(embedding64))
	for i, v := range embedding64 {
		embedding32[i] = float32(v)
	}
	return embedding32
}
