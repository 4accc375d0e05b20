// Package strategy implements the eight recall strategies and the runner
// that fans a query out across them.
//
// Each strategy answers the same question from a different angle: literal
// term overlap, embedding similarity, emotional tone, stated convictions,
// conversational context, recency, associated concepts and habitual
// patterns. The runner executes them concurrently under individual time
// budgets and collects whatever finished.
package strategy

import (
	"context"
	"errors"

	"github.com/eora-ai/recall-go/pkg/storage"
)

// Strategy names. The name travels with each result so the merger can weight
// and prioritize by origin.
const (
	NameLexical     = "lexical"
	NameSemantic    = "semantic"
	NameEmotion     = "emotion"
	NameBelief      = "belief"
	NameContext     = "context"
	NameTemporal    = "temporal"
	NameAssociation = "association"
	NamePattern     = "pattern"
)

// ErrTimeout is returned by the runner for a strategy that exceeded its
// per-strategy budget.
var ErrTimeout = errors.New("strategy timed out")

// weights rank strategy origins by trustworthiness. A literal term match is
// strongest evidence; a recency or habit match is weakest.
var weights = map[string]float64{
	NameLexical:     1.0,
	NameSemantic:    0.9,
	NameEmotion:     0.8,
	NameBelief:      0.8,
	NameContext:     0.7,
	NameAssociation: 0.7,
	NameTemporal:    0.6,
	NamePattern:     0.6,
}

// priority orders strategies for duplicate resolution. When the same memory
// surfaces from several strategies, the highest-priority origin labels it.
var priority = []string{
	NameLexical, NameSemantic, NameEmotion, NameBelief,
	NameContext, NameTemporal, NameAssociation, NamePattern,
}

// Weight returns the ranking weight for a strategy name, or 0 for an
// unknown name.
func Weight(name string) float64 {
	return weights[name]
}

// PriorityRank returns the duplicate-resolution rank of a strategy name;
// lower is stronger. Unknown names rank last.
func PriorityRank(name string) int {
	for i, n := range priority {
		if n == name {
			return i
		}
	}
	return len(priority)
}

// Scope narrows a recall to one owner and optionally one session.
type Scope struct {
	OwnerID   string
	SessionID string
}

// Strategy is one recall angle. Search returns up to limit candidate
// memories for the query within the scope.
type Strategy interface {
	Name() string
	Search(ctx context.Context, query string, scope Scope, limit int) ([]*storage.Memory, error)
}

// scopedFilter builds the base store filter for a scope.
func scopedFilter(scope Scope) *storage.Filter {
	return &storage.Filter{
		OwnerID:   scope.OwnerID,
		SessionID: scope.SessionID,
	}
}
