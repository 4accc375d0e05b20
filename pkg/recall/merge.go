// Package recall turns raw strategy outcomes into a ranked result list.
//
// The pipeline is merge (deduplicate across strategies), temporal adjustment
// (score each result's fit to the query's time frame) and ranking (composite
// score with deterministic tie-breaking).
package recall

import (
	"github.com/eora-ai/recall-go/pkg/storage"
	"github.com/eora-ai/recall-go/pkg/strategy"
)

// Result is one recalled memory with its provenance and scores.
type Result struct {
	Memory *storage.Memory

	// Strategy is the strongest origin; Strategies lists every strategy
	// that surfaced this memory.
	Strategy   string
	Strategies []string

	// Score is the final composite ranking score. TimeRelevance is the
	// temporal component, kept separate so callers can explain rankings.
	Score         float64
	TimeRelevance float64

	// RelativeTime is a human-readable age, like "yesterday".
	RelativeTime string
}

// weight returns the ranking weight of the result's strongest origin.
func (r *Result) weight() float64 {
	best := 0.0
	for _, name := range r.Strategies {
		if w := strategy.Weight(name); w > best {
			best = w
		}
	}
	return best
}

// Merge deduplicates strategy outcomes by memory ID. A memory surfaced by
// several strategies keeps the highest-priority origin as its label and
// remembers all origins. Failed outcomes contribute nothing; the caller
// decides what a fully failed recall means.
func Merge(outcomes []strategy.Outcome) []*Result {
	byID := make(map[int64]*Result)
	var ordered []*Result

	for _, outcome := range outcomes {
		if outcome.Err != nil {
			continue
		}
		for _, memory := range outcome.Memories {
			existing, ok := byID[memory.ID]
			if !ok {
				result := &Result{
					Memory:     memory,
					Strategy:   outcome.Strategy,
					Strategies: []string{outcome.Strategy},
				}
				byID[memory.ID] = result
				ordered = append(ordered, result)
				continue
			}

			if !containsName(existing.Strategies, outcome.Strategy) {
				existing.Strategies = append(existing.Strategies, outcome.Strategy)
			}
			if strategy.PriorityRank(outcome.Strategy) < strategy.PriorityRank(existing.Strategy) {
				existing.Strategy = outcome.Strategy
			}
		}
	}

	return ordered
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
