package leetcode

import (
	"math/rand"
	"strconv"
	"time"

	"portfoliosync/models"
)

// MockStats is the synthetic payload served when no real LeetCode data is
// available. The calendar covers the year before now with more activity on
// weekdays than weekends.
func MockStats(username string, now time.Time, rng *rand.Rand) *models.LeetCodeStats {
	if username == "" {
		username = "demo"
	}
	stats := &models.LeetCodeStats{
		Username:           username,
		TotalSolved:        150,
		EasySolved:         50,
		MediumSolved:       80,
		HardSolved:         20,
		TotalQuestions:     models.DefaultTotalQuestions,
		EasyTotal:          models.DefaultEasyTotal,
		MediumTotal:        models.DefaultMediumTotal,
		HardTotal:          models.DefaultHardTotal,
		Ranking:            50000,
		AcceptanceRate:     75,
		SubmissionCalendar: mockCalendar(now, rng),
		BadgeURLs:          map[string]string{},
		Badges:             []models.LeetCodeBadge{},
		RecentSubmissions:  []models.RecentSubmission{},
		Streak:             models.Streak{Current: 5, Longest: 15},
		FetchedAt:          now.UTC(),
	}
	return stats
}

func mockCalendar(now time.Time, rng *rand.Rand) map[string]int {
	const day = 24 * 60 * 60
	calendar := map[string]int{}
	today := now.Unix()

	for ts := today - 365*day; ts <= today; ts += day {
		weekday := time.Unix(ts, 0).UTC().Weekday()
		r := rng.Float64()
		if weekday == time.Saturday || weekday == time.Sunday {
			if r < 0.3 {
				calendar[strconv.FormatInt(ts, 10)] = rng.Intn(5)
			}
		} else if r < 0.7 {
			calendar[strconv.FormatInt(ts, 10)] = rng.Intn(15) + 1
		}
	}
	return calendar
}
