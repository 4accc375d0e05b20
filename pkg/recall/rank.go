package recall

import (
	"sort"

	"github.com/eora-ai/recall-go/pkg/analysis"
)

// Composite score weights. Literal overlap with the query counts most,
// followed by the trustworthiness of the strategy that found the memory and
// its temporal fit.
const (
	overlapWeight  = 0.4
	originWeight   = 0.3
	temporalWeight = 0.3
)

// Rank scores every result against the query and sorts best first. Ties
// break on newer CreatedAt, then on smaller ID, so equal inputs always rank
// identically.
func Rank(query string, results []*Result) {
	queryTokens := analysis.Tokenize(query)

	for _, result := range results {
		overlap := tokenOverlap(queryTokens, result.Memory.Content)
		result.Score = overlapWeight*overlap +
			originWeight*result.weight() +
			temporalWeight*result.TimeRelevance
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.Memory.CreatedAt.Equal(b.Memory.CreatedAt) {
			return a.Memory.CreatedAt.After(b.Memory.CreatedAt)
		}
		return a.Memory.ID < b.Memory.ID
	})
}

// tokenOverlap is the fraction of query tokens found in the content.
func tokenOverlap(queryTokens []string, content string) float64 {
	if len(queryTokens) == 0 {
		return 0
	}

	contentTokens := make(map[string]bool)
	for _, token := range analysis.Tokenize(content) {
		contentTokens[token] = true
	}

	matched := 0
	for _, token := range queryTokens {
		if contentTokens[token] {
			matched++
		}
	}
	return float64(matched) / float64(len(queryTokens))
}
