package leetcode

import (
	"fmt"
	"strconv"

	"portfoliosync/models"
)

const badgeStyle = "style=for-the-badge&logo=leetcode&logoColor=white&labelColor=1a1b27"

// Badge keys.
const (
	BadgeSolved        = "solved"
	BadgeEasy          = "easy"
	BadgeMedium        = "medium"
	BadgeHard          = "hard"
	BadgeRanking       = "ranking"
	BadgeStreak        = "streak"
	BadgeContests      = "contests"
	BadgeContestRating = "contestRating"
	BadgeContestRank   = "contestRank"
)

func badgeURL(label, value, color string) string {
	return fmt.Sprintf("https://img.shields.io/badge/%s-%s-%s?%s", label, value, color, badgeStyle)
}

// GenerateBadges templates shields.io badge URLs for stats. Ranking and
// streak badges appear only when non-zero; contest badges only when the user
// attended at least one contest.
func GenerateBadges(stats *models.LeetCodeStats) map[string]string {
	badges := map[string]string{
		BadgeSolved: badgeURL("Solved", strconv.Itoa(stats.TotalSolved), "FFA116"),
		BadgeEasy:   badgeURL("Easy", fmt.Sprintf("%d/%d", stats.EasySolved, stats.EasyTotal), "00B8A3"),
		BadgeMedium: badgeURL("Medium", fmt.Sprintf("%d/%d", stats.MediumSolved, stats.MediumTotal), "FFA116"),
		BadgeHard:   badgeURL("Hard", fmt.Sprintf("%d/%d", stats.HardSolved, stats.HardTotal), "FF375F"),
	}
	if stats.Ranking != 0 {
		badges[BadgeRanking] = badgeURL("Rank", groupThousands(stats.Ranking), "FFA116")
	}
	if stats.Streak.Current != 0 {
		badges[BadgeStreak] = badgeURL("Streak", fmt.Sprintf("%d_days", stats.Streak.Current), "FFA116")
	}

	if c := stats.ContestData; c != nil && c.ContestAttend > 0 {
		badges[BadgeContests] = badgeURL("Contests", strconv.Itoa(c.ContestAttend), "FFA116")
		badges[BadgeContestRating] = badgeURL("Rating", strconv.Itoa(c.ContestRating), "FFA116")
		if c.ContestTopPercentage != nil && *c.ContestTopPercentage != 0 {
			badges[BadgeContestRank] = badgeURL("Top", strconv.FormatFloat(*c.ContestTopPercentage, 'f', -1, 64)+"%25", "FFA116")
		}
	}
	return badges
}

// groupThousands formats n with comma separators, e.g. 1234567 as "1,234,567".
func groupThousands(n int) string {
	s := strconv.Itoa(n)
	neg := false
	if n < 0 {
		neg, s = true, s[1:]
	}
	var out []byte
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
