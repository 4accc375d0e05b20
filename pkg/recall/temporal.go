package recall

import (
	"fmt"
	"time"

	"github.com/eora-ai/recall-go/pkg/analysis"
)

// decayHorizon is how far outside a requested time window relevance decays
// before bottoming out.
const decayHorizon = 7 * 24 * time.Hour

// relevanceFloor keeps out-of-window memories recallable at low rank rather
// than invisible.
const relevanceFloor = 0.1

// TemporalAdjuster assigns each result a time relevance score and a
// relative-time label.
//
// When the query names a time frame, memories inside the frame score 1.0
// and relevance decays linearly with distance outside it. Without a time
// frame, a gentle recency prior applies so newer memories edge out older
// ones at equal textual relevance.
type TemporalAdjuster struct {
	now func() time.Time
}

// NewTemporalAdjuster creates an adjuster using the wall clock.
func NewTemporalAdjuster() *TemporalAdjuster {
	return &TemporalAdjuster{now: time.Now}
}

// NewTemporalAdjusterAt creates an adjuster with a fixed clock, for tests.
func NewTemporalAdjusterAt(now func() time.Time) *TemporalAdjuster {
	return &TemporalAdjuster{now: now}
}

// Adjust sets TimeRelevance and RelativeTime on every result in place.
func (a *TemporalAdjuster) Adjust(query string, results []*Result) {
	now := a.now()
	window, hasWindow := analysis.ParseTimeExpression(query, now)

	for _, result := range results {
		createdAt := result.Memory.CreatedAt
		if hasWindow {
			result.TimeRelevance = windowRelevance(createdAt, window)
		} else {
			result.TimeRelevance = recencyPrior(createdAt, now)
		}
		result.RelativeTime = RelativeLabel(createdAt, now)
	}
}

// windowRelevance scores 1.0 inside the window and decays linearly with
// distance from the window edge, never below the floor.
func windowRelevance(createdAt time.Time, window *analysis.TimeWindow) float64 {
	if window.Contains(createdAt) {
		return 1.0
	}

	var distance time.Duration
	if createdAt.Before(window.Since) {
		distance = window.Since.Sub(createdAt)
	} else {
		distance = createdAt.Sub(window.Until)
	}

	relevance := 1.0 - float64(distance)/float64(decayHorizon)
	if relevance < relevanceFloor {
		return relevanceFloor
	}
	return relevance
}

// recencyPrior scores by age alone: 1.0 for brand-new memories, halving
// after a day, tapering toward zero over months.
func recencyPrior(createdAt, now time.Time) float64 {
	age := now.Sub(createdAt)
	if age < 0 {
		age = 0
	}
	ageDays := float64(age) / float64(24*time.Hour)
	return 1.0 / (1.0 + ageDays)
}

// RelativeLabel renders the distance between t and now as a conversational
// age like "just now" or "3 days ago".
func RelativeLabel(t, now time.Time) string {
	delta := now.Sub(t)

	if delta < 0 {
		future := -delta
		switch {
		case future < time.Minute:
			return "soon"
		case future < time.Hour:
			return fmt.Sprintf("in %d minutes", int(future.Minutes()))
		case future < 24*time.Hour:
			return fmt.Sprintf("in %d hours", int(future.Hours()))
		default:
			return fmt.Sprintf("in %d days", int(future.Hours()/24))
		}
	}

	switch {
	case delta < time.Minute:
		return "just now"
	case delta < 5*time.Minute:
		return "moments ago"
	case delta < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(delta.Minutes()))
	case delta < 24*time.Hour:
		if int(delta.Hours()) == 1 {
			return "an hour ago"
		}
		return fmt.Sprintf("%d hours ago", int(delta.Hours()))
	case delta < 48*time.Hour:
		return "yesterday"
	case delta < 7*24*time.Hour:
		return fmt.Sprintf("%d days ago", int(delta.Hours()/24))
	case delta < 30*24*time.Hour:
		weeks := int(delta.Hours() / 24 / 7)
		if weeks == 1 {
			return "a week ago"
		}
		return fmt.Sprintf("%d weeks ago", weeks)
	case delta < 365*24*time.Hour:
		months := int(delta.Hours() / 24 / 30)
		if months == 1 {
			return "a month ago"
		}
		return fmt.Sprintf("%d months ago", months)
	default:
		years := int(delta.Hours() / 24 / 365)
		if years == 1 {
			return "a year ago"
		}
		return fmt.Sprintf("%d years ago", years)
	}
}
