package leetcode

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"portfoliosync/models"
)

const dateLayout = "2006-01-02"

// Contribution levels for submission calendar days.
const (
	LevelNone   = "NONE"
	LevelLow    = "LOW"
	LevelMedium = "MEDIUM"
	LevelHigh   = "HIGH"
)

// NormalizeSubmissionCalendar turns the aggregator's submissionCalendar into
// a map of Unix-second keys to non-negative counts. raw may be a JSON string,
// raw JSON bytes or an already decoded object. Values are coerced the way a
// leading-integer parse would read them; negative and unparsable values are
// dropped. Any other shape yields an empty map.
func NormalizeSubmissionCalendar(raw any) map[string]int {
	out := map[string]int{}

	var obj map[string]any
	switch v := raw.(type) {
	case string:
		if err := json.Unmarshal([]byte(v), &obj); err != nil {
			return out
		}
	case []byte:
		if err := json.Unmarshal(v, &obj); err != nil {
			return out
		}
	case json.RawMessage:
		if err := json.Unmarshal(v, &obj); err != nil {
			return out
		}
	case map[string]any:
		obj = v
	case map[string]int:
		for k, n := range v {
			if n >= 0 {
				out[k] = n
			}
		}
		return out
	default:
		return out
	}

	for k, v := range obj {
		if n, ok := coerceCount(v); ok && n >= 0 {
			out[k] = n
		}
	}
	return out
}

func coerceCount(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || n >= math.MaxInt || n <= math.MinInt {
			return 0, false
		}
		return int(math.Trunc(n)), true
	case int:
		return n, true
	case int64:
		return int(n), true
	case json.Number:
		return parseLeadingInt(string(n))
	case string:
		return parseLeadingInt(n)
	}
	return 0, false
}

// parseLeadingInt reads an optional sign and the digits that follow it,
// ignoring anything after them ("12abc" is 12).
func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Level buckets a daily submission count.
func Level(count int) string {
	switch {
	case count <= 0:
		return LevelNone
	case count <= 2:
		return LevelLow
	case count <= 5:
		return LevelMedium
	}
	return LevelHigh
}

// CalendarDays converts a normalized calendar into chronological days. Keys
// that are not Unix timestamps are skipped; counts on the same UTC day are summed.
func CalendarDays(calendar map[string]int) []models.ContributionDay {
	byDate := map[string]int{}
	for k, count := range calendar {
		ts, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			continue
		}
		byDate[time.Unix(ts, 0).UTC().Format(dateLayout)] += count
	}

	days := make([]models.ContributionDay, 0, len(byDate))
	for date, count := range byDate {
		days = append(days, models.ContributionDay{Date: date, Count: count, Level: Level(count)})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days
}
