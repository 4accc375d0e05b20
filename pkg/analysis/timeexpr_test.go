package analysis_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eora-ai/recall-go/pkg/analysis"
)

var testNow = time.Date(2024, 6, 15, 14, 0, 0, 0, time.UTC)

func TestParseTimeExpressionFixed(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantSince time.Time
		wantUntil time.Time
	}{
		{
			name:      "yesterday",
			query:     "what did I do yesterday",
			wantSince: time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC),
			wantUntil: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "today",
			query:     "notes from today",
			wantSince: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
			wantUntil: time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "day before yesterday",
			query:     "the day before yesterday",
			wantSince: time.Date(2024, 6, 13, 0, 0, 0, 0, time.UTC),
			wantUntil: time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "last week",
			query:     "what happened last week",
			wantSince: time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC),
			wantUntil: time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			window, ok := analysis.ParseTimeExpression(tt.query, testNow)
			require.True(t, ok)
			assert.Equal(t, tt.wantSince, window.Since)
			assert.Equal(t, tt.wantUntil, window.Until)
		})
	}
}

func TestParseTimeExpressionAgo(t *testing.T) {
	window, ok := analysis.ParseTimeExpression("what did I say 3 days ago", testNow)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC), window.Since)
	assert.Equal(t, time.Date(2024, 6, 13, 0, 0, 0, 0, time.UTC), window.Until)
}

func TestParseTimeExpressionHoursAgo(t *testing.T) {
	window, ok := analysis.ParseTimeExpression("2 hours ago", testNow)
	require.True(t, ok)

	target := testNow.Add(-2 * time.Hour)
	assert.Equal(t, target, window.Target)
	assert.True(t, window.Contains(target))
	assert.False(t, window.Contains(testNow))
}

func TestParseTimeExpressionDaypart(t *testing.T) {
	window, ok := analysis.ParseTimeExpression("what happened this morning", testNow)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 6, 15, 6, 0, 0, 0, time.UTC), window.Since)
	assert.Equal(t, time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC), window.Until)
}

func TestParseTimeExpressionNone(t *testing.T) {
	for _, query := range []string{"", "tell me about python", "the days of summer"} {
		_, ok := analysis.ParseTimeExpression(query, testNow)
		assert.False(t, ok, "query %q should have no time expression", query)
	}
}

func TestWindowContains(t *testing.T) {
	window, ok := analysis.ParseTimeExpression("yesterday", testNow)
	require.True(t, ok)

	assert.True(t, window.Contains(time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)))
	assert.True(t, window.Contains(time.Date(2024, 6, 14, 23, 59, 59, 0, time.UTC)))
	assert.False(t, window.Contains(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)))
	assert.False(t, window.Contains(time.Date(2024, 6, 13, 23, 59, 59, 0, time.UTC)))
}
