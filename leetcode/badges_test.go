package leetcode

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"portfoliosync/models"
)

func TestGenerateBadges(t *testing.T) {
	top := 4.5
	rank := 1200

	tests := []struct {
		name    string
		stats   *models.LeetCodeStats
		present []string
		absent  []string
	}{
		{
			name: "basic stats only",
			stats: &models.LeetCodeStats{
				TotalSolved: 10, EasySolved: 5, EasyTotal: 915,
				MediumSolved: 4, MediumTotal: 1956, HardSolved: 1, HardTotal: 887,
			},
			present: []string{BadgeSolved, BadgeEasy, BadgeMedium, BadgeHard},
			absent:  []string{BadgeRanking, BadgeStreak, BadgeContests, BadgeContestRating, BadgeContestRank},
		},
		{
			name: "ranking, streak and contests",
			stats: &models.LeetCodeStats{
				Ranking: 123456,
				Streak:  models.Streak{Current: 4},
				ContestData: &models.ContestData{
					ContestAttend:        3,
					ContestRating:        1650,
					ContestGlobalRanking: &rank,
					ContestTopPercentage: &top,
				},
			},
			present: []string{BadgeRanking, BadgeStreak, BadgeContests, BadgeContestRating, BadgeContestRank},
		},
		{
			name: "contest data without attendance",
			stats: &models.LeetCodeStats{
				ContestData: &models.ContestData{ContestTopPercentage: &top},
			},
			absent: []string{BadgeContests, BadgeContestRating, BadgeContestRank},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateBadges(tt.stats)
			for _, k := range tt.present {
				assert.Contains(t, got, k)
			}
			for _, k := range tt.absent {
				assert.NotContains(t, got, k)
			}
		})
	}
}

func TestGenerateBadgeURLs(t *testing.T) {
	top := 4.5
	got := GenerateBadges(&models.LeetCodeStats{
		TotalSolved: 321,
		EasySolved:  100,
		EasyTotal:   915,
		Ranking:     1234567,
		Streak:      models.Streak{Current: 12},
		ContestData: &models.ContestData{ContestAttend: 2, ContestTopPercentage: &top},
	})

	const style = "?style=for-the-badge&logo=leetcode&logoColor=white&labelColor=1a1b27"
	assert.Equal(t, "https://img.shields.io/badge/Solved-321-FFA116"+style, got[BadgeSolved])
	assert.Equal(t, "https://img.shields.io/badge/Easy-100/915-00B8A3"+style, got[BadgeEasy])
	assert.Equal(t, "https://img.shields.io/badge/Rank-1,234,567-FFA116"+style, got[BadgeRanking])
	assert.Equal(t, "https://img.shields.io/badge/Streak-12_days-FFA116"+style, got[BadgeStreak])
	assert.Equal(t, "https://img.shields.io/badge/Top-4.5%25-FFA116"+style, got[BadgeContestRank])
}

func TestGroupThousands(t *testing.T) {
	assert.Equal(t, "0", groupThousands(0))
	assert.Equal(t, "999", groupThousands(999))
	assert.Equal(t, "1,000", groupThousands(1000))
	assert.Equal(t, "50,000", groupThousands(50000))
	assert.Equal(t, "-1,234", groupThousands(-1234))
}
