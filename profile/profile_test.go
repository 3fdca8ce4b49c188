package profile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"portfoliosync/models"
)

var now = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func TestBuildAboutBioFallback(t *testing.T) {
	tests := []struct {
		name        string
		stats       *models.GitHubStatsDoc
		achievement *models.Achievement
		expected    string
	}{
		{
			name:        "github bio wins",
			stats:       &models.GitHubStatsDoc{Bio: "From GitHub"},
			achievement: &models.Achievement{Bio: "Generated"},
			expected:    "From GitHub",
		},
		{
			name:        "generated bio when github bio is empty",
			stats:       &models.GitHubStatsDoc{},
			achievement: &models.Achievement{Bio: "Generated"},
			expected:    "Generated",
		},
		{
			name:     "default",
			expected: DefaultBio,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			about := BuildAbout("octocat", &models.GitHubRepositoriesDoc{}, tt.stats, tt.achievement, now)
			assert.Equal(t, tt.expected, about.Bio)
		})
	}
}

func TestBuildAbout(t *testing.T) {
	repos := &models.GitHubRepositoriesDoc{
		Repositories: []models.Repository{
			{Name: "a", Stars: 10, UpdatedAt: now.AddDate(0, -1, 0)},
			{Name: "b", Stars: 0, UpdatedAt: now.AddDate(-2, 0, 0)},
		},
		TopLanguages: []models.LanguageCount{{Language: "Go", Count: 2}},
		TotalStars:   10,
	}
	stats := &models.GitHubStatsDoc{
		Location:  "Berlin",
		Company:   "Acme",
		Blog:      "https://example.com",
		CreatedAt: now.AddDate(-6, 0, -1),
	}

	about := BuildAbout("octocat", repos, stats, nil, now)

	assert.Equal(t, "octocat", about.Username)
	assert.Equal(t, "Berlin", about.Location)
	assert.Equal(t, "Acme", about.Company)
	assert.Equal(t, "https://example.com", about.Blog)
	assert.Empty(t, about.Email)
	assert.Equal(t, models.SocialLinks{GitHub: "https://github.com/octocat"}, about.Social)
	assert.Equal(t, models.AboutStats{YearsOfExperience: 6, ProjectsCompleted: 2, TotalStars: 10}, about.Stats)
	assert.Equal(t, []string{
		"Specialized in Go development",
		"Built 2+ open-source projects",
		"Earned 10+ GitHub stars",
		"Actively maintaining 1 projects",
	}, about.Highlights)
	assert.Equal(t, now, about.UpdatedAt)
}

func TestHighlightsTopThreeStars(t *testing.T) {
	repos := []models.Repository{
		{Stars: 1}, {Stars: 50}, {Stars: 7}, {Stars: 20}, {Stars: 0},
	}
	got := Highlights(repos, nil, now)
	assert.Contains(t, got, "Earned 77+ GitHub stars")
	assert.NotContains(t, got, "Actively maintaining 5 projects")
}

func TestHighlightsEmpty(t *testing.T) {
	assert.Empty(t, Highlights(nil, nil, now))
}

func TestYearsSince(t *testing.T) {
	assert.Equal(t, 0, YearsSince(time.Time{}, now))
	assert.Equal(t, 0, YearsSince(now.AddDate(0, 0, 1), now))
	assert.Equal(t, 0, YearsSince(now.AddDate(0, 0, -364), now))
	assert.Equal(t, 1, YearsSince(now.AddDate(0, 0, -365), now))
}
