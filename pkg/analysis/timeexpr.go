package analysis

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// TimeWindow is the interval a query's time expression refers to, plus the
// point inside it the expression names most directly.
type TimeWindow struct {
	Target time.Time
	Since  time.Time
	Until  time.Time
}

// Contains reports whether t falls inside the window.
func (w *TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Since) && t.Before(w.Until)
}

// relativeDays maps fixed expressions to a day offset from now.
var relativeDays = map[string]int{
	"today":                0,
	"yesterday":            -1,
	"day before yesterday": -2,
	"last week":            -7,
	"a week ago":           -7,
	"last month":           -30,
	"a month ago":          -30,
	"last year":            -365,
}

// timeOfDay maps daypart words to an hour range within today.
var timeOfDay = map[string][2]int{
	"dawn":      {3, 6},
	"morning":   {6, 12},
	"noon":      {11, 14},
	"afternoon": {12, 18},
	"evening":   {17, 21},
	"night":     {20, 24},
	"tonight":   {20, 24},
}

// "N units ago" patterns. Order matters: longer units first so "weeks" is
// not consumed as a prefix match elsewhere.
var agoPatterns = []struct {
	re   *regexp.Regexp
	unit time.Duration
}{
	{regexp.MustCompile(`(\d+)\s*years?\s+ago`), 365 * 24 * time.Hour},
	{regexp.MustCompile(`(\d+)\s*months?\s+ago`), 30 * 24 * time.Hour},
	{regexp.MustCompile(`(\d+)\s*weeks?\s+ago`), 7 * 24 * time.Hour},
	{regexp.MustCompile(`(\d+)\s*days?\s+ago`), 24 * time.Hour},
	{regexp.MustCompile(`(\d+)\s*hours?\s+ago`), time.Hour},
	{regexp.MustCompile(`(\d+)\s*minutes?\s+ago`), time.Minute},
}

// ParseTimeExpression extracts the first time expression from the query and
// resolves it against now. It reports false when the query carries no time
// expression.
//
// Day-level expressions resolve to the full calendar day around the target.
// Daypart words resolve to their hour range within today. "N hours ago" and
// "N minutes ago" resolve to an hour around the target point.
func ParseTimeExpression(query string, now time.Time) (*TimeWindow, bool) {
	lower := strings.ToLower(query)

	// Multi-word fixed expressions first so "day before yesterday" is not
	// shadowed by "yesterday".
	if strings.Contains(lower, "day before yesterday") {
		return dayWindow(now.AddDate(0, 0, -2)), true
	}
	for _, expr := range []string{"last week", "a week ago", "last month", "a month ago", "last year"} {
		if strings.Contains(lower, expr) {
			return dayWindow(now.AddDate(0, 0, relativeDays[expr])), true
		}
	}

	for _, p := range agoPatterns {
		if m := p.re.FindStringSubmatch(lower); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			target := now.Add(-time.Duration(n) * p.unit)
			if p.unit >= 24*time.Hour {
				return dayWindow(target), true
			}
			return hourWindow(target), true
		}
	}

	for _, token := range Tokenize(query) {
		if offset, ok := relativeDays[token]; ok {
			return dayWindow(now.AddDate(0, 0, offset)), true
		}
		if hours, ok := timeOfDay[token]; ok {
			day := startOfDay(now)
			return &TimeWindow{
				Target: day.Add(time.Duration(hours[0]+hours[1]) * time.Hour / 2),
				Since:  day.Add(time.Duration(hours[0]) * time.Hour),
				Until:  day.Add(time.Duration(hours[1]) * time.Hour),
			}, true
		}
	}

	return nil, false
}

// dayWindow covers the calendar day containing target.
func dayWindow(target time.Time) *TimeWindow {
	start := startOfDay(target)
	return &TimeWindow{
		Target: target,
		Since:  start,
		Until:  start.AddDate(0, 0, 1),
	}
}

// hourWindow covers half an hour either side of target.
func hourWindow(target time.Time) *TimeWindow {
	return &TimeWindow{
		Target: target,
		Since:  target.Add(-30 * time.Minute),
		Until:  target.Add(30 * time.Minute),
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
