// Package profile builds the about section from ingested GitHub data.
package profile

import (
	"fmt"
	"sort"
	"time"

	"portfoliosync/models"
)

// DefaultBio is used when neither GitHub nor the generated achievements supply one.
const DefaultBio = "Full-stack developer passionate about building scalable applications."

const maxHighlights = 4

// BuildAbout derives the about document. stats and achievement may be nil.
func BuildAbout(username string, repos *models.GitHubRepositoriesDoc, stats *models.GitHubStatsDoc, achievement *models.Achievement, now time.Time) models.AboutProfile {
	about := models.AboutProfile{
		Username: username,
		Bio:      DefaultBio,
		Social: models.SocialLinks{
			GitHub: "https://github.com/" + username,
		},
		UpdatedAt: now.UTC(),
	}

	switch {
	case stats != nil && stats.Bio != "":
		about.Bio = stats.Bio
	case achievement != nil && achievement.Bio != "":
		about.Bio = achievement.Bio
	}

	var createdAt time.Time
	if stats != nil {
		about.Location = stats.Location
		about.Company = stats.Company
		about.Blog = stats.Blog
		createdAt = stats.CreatedAt
	}

	var repositories []models.Repository
	var topLanguages []models.LanguageCount
	if repos != nil {
		repositories = repos.Repositories
		topLanguages = repos.TopLanguages
		about.Stats.TotalStars = repos.TotalStars
	}
	about.Stats.YearsOfExperience = YearsSince(createdAt, now)
	about.Stats.ProjectsCompleted = len(repositories)
	about.Highlights = Highlights(repositories, topLanguages, now)

	return about
}

// YearsSince returns whole 365-day years between t and now, or 0 for a zero t.
func YearsSince(t, now time.Time) int {
	if t.IsZero() || now.Before(t) {
		return 0
	}
	return int(now.Sub(t).Hours() / 24 / 365)
}

// Highlights returns up to four short achievements drawn from the repositories.
func Highlights(repos []models.Repository, topLanguages []models.LanguageCount, now time.Time) []string {
	highlights := []string{}

	if len(topLanguages) > 0 {
		highlights = append(highlights, fmt.Sprintf("Specialized in %s development", topLanguages[0].Language))
	}

	if len(repos) > 0 {
		highlights = append(highlights, fmt.Sprintf("Built %d+ open-source projects", len(repos)))
	}

	var starred []models.Repository
	for _, r := range repos {
		if r.Stars > 0 {
			starred = append(starred, r)
		}
	}
	sort.SliceStable(starred, func(i, j int) bool { return starred[i].Stars > starred[j].Stars })
	if len(starred) > 3 {
		starred = starred[:3]
	}
	if len(starred) > 0 {
		total := 0
		for _, r := range starred {
			total += r.Stars
		}
		highlights = append(highlights, fmt.Sprintf("Earned %d+ GitHub stars", total))
	}

	sixMonthsAgo := now.AddDate(0, -6, 0)
	recent := 0
	for _, r := range repos {
		if r.UpdatedAt.After(sixMonthsAgo) {
			recent++
		}
	}
	if recent > 0 {
		highlights = append(highlights, fmt.Sprintf("Actively maintaining %d projects", recent))
	}

	if len(highlights) > maxHighlights {
		highlights = highlights[:maxHighlights]
	}
	return highlights
}
