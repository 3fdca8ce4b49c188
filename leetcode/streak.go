package leetcode

import (
	"sort"
	"time"

	"portfoliosync/models"
)

// CalculateStreak walks days from newest to oldest counting runs of active
// days. A run is credited as current whenever the day being counted is no
// more days before today than the run is long, so a sparse calendar can still
// report a current streak. Today is midnight UTC of now.
//
// TODO: switch the current-streak check to "last active day is today or
// yesterday" once the portfolio stops relying on the existing numbers.
func CalculateStreak(days []models.ContributionDay, now time.Time) models.Streak {
	if len(days) == 0 {
		return models.Streak{}
	}

	type dated struct {
		at    time.Time
		count int
	}
	sorted := make([]dated, 0, len(days))
	for _, d := range days {
		at, err := time.Parse(dateLayout, d.Date)
		if err != nil {
			continue
		}
		sorted = append(sorted, dated{at: at, count: d.Count})
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].at.After(sorted[j].at) })

	y, m, d := now.UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	var streak models.Streak
	temp := 0
	for _, s := range sorted {
		if s.count <= 0 {
			temp = 0
			continue
		}
		temp++

		// Both sides are UTC midnights, so the division is exact.
		daysDiff := int(today.Sub(s.at) / (24 * time.Hour))
		if daysDiff <= temp {
			streak.Current = temp
		}
		if temp > streak.Longest {
			streak.Longest = temp
		}
	}
	return streak
}
