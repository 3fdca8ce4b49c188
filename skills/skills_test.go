package skills

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfoliosync/models"
)

func sixRepos() []models.Repository {
	return []models.Repository{
		{Name: "a", Language: "JavaScript", Topics: []string{"react", "redux"}},
		{Name: "b", Language: "JavaScript", Topics: []string{"react", "redux"}},
		{Name: "c", Language: "JavaScript", Topics: []string{"react"}},
		{Name: "d", Language: "TypeScript", Topics: []string{}},
		{Name: "e", Language: "TypeScript"},
		{Name: "f", Language: "HTML"},
	}
}

func TestExtractScenario(t *testing.T) {
	got := Extract(sixRepos())

	assert.Equal(t, []string{"HTML", "JavaScript", "TypeScript"}, got[models.CategoryLanguages])
	assert.Equal(t, []string{"React", "Redux"}, got[models.CategoryFrameworks])
	assert.Empty(t, got[models.CategoryTools])
	assert.Empty(t, got[models.CategoryDatabases])
	assert.Empty(t, got[models.CategoryCloud])
	assert.Empty(t, got[models.CategoryOther])
	for _, c := range models.Categories {
		assert.Contains(t, got, c)
	}
}

func TestExtractTopicInclusion(t *testing.T) {
	tests := []struct {
		name     string
		repos    []models.Repository
		category string
		expected []string
	}{
		{
			name: "few topics keeps singletons",
			repos: []models.Repository{
				{Topics: []string{"Docker", "machine-learning"}},
			},
			category: models.CategoryOther,
			expected: []string{"Machine Learning"},
		},
		{
			name: "many topics drops singletons",
			repos: func() []models.Repository {
				var repos []models.Repository
				for i := 0; i < 12; i++ {
					repos = append(repos, models.Repository{Topics: []string{fmt.Sprintf("topic-%02d", i)}})
				}
				repos = append(repos,
					models.Repository{Topics: []string{"aws"}},
					models.Repository{Topics: []string{"AWS"}})
				return repos
			}(),
			category: models.CategoryOther,
			expected: []string{},
		},
		{
			name: "many topics keeps repeated ones",
			repos: func() []models.Repository {
				var repos []models.Repository
				for i := 0; i < 12; i++ {
					repos = append(repos, models.Repository{Topics: []string{fmt.Sprintf("topic-%02d", i)}})
				}
				repos = append(repos,
					models.Repository{Topics: []string{"aws"}},
					models.Repository{Topics: []string{"AWS"}})
				return repos
			}(),
			category: models.CategoryCloud,
			expected: []string{"Aws"},
		},
		{
			name:     "docker is a tool",
			repos:    []models.Repository{{Topics: []string{"docker"}}},
			category: models.CategoryTools,
			expected: []string{"Docker"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Extract(tt.repos)[tt.category])
		})
	}
}

func TestExtractCapsAndDedupes(t *testing.T) {
	var repos []models.Repository
	for i := 0; i < 30; i++ {
		topic := fmt.Sprintf("thing-%02d", i)
		repos = append(repos,
			models.Repository{Language: fmt.Sprintf("Lang%02d", i), Topics: []string{topic}},
			models.Repository{Language: fmt.Sprintf("Lang%02d", i), Topics: []string{topic, "react", "React"}},
		)
	}

	got := Extract(repos)
	require.Len(t, got[models.CategoryLanguages], 15)
	assert.Equal(t, "Lang00", got[models.CategoryLanguages][0])
	assert.Len(t, got[models.CategoryOther], 20)
	assert.Equal(t, []string{"React"}, got[models.CategoryFrameworks])

	for category, names := range got {
		seen := map[string]bool{}
		for _, n := range names {
			assert.False(t, seen[n], "duplicate %q in %s", n, category)
			seen[n] = true
		}
		if category == models.CategoryLanguages {
			assert.LessOrEqual(t, len(names), 15)
		} else {
			assert.LessOrEqual(t, len(names), 20)
		}
	}
}

func TestFormatTopic(t *testing.T) {
	assert.Equal(t, "React", FormatTopic("react"))
	assert.Equal(t, "Material Ui", FormatTopic("material-ui"))
	assert.Equal(t, "Testing Library", FormatTopic("testing-library"))
	assert.Equal(t, "A  B", FormatTopic("a--b"))
}

func TestGenerateLevels(t *testing.T) {
	repos := sixRepos()
	got := GenerateLevels(repos, Extract(repos))

	// JavaScript and React are used by 3 repositories, the most of any skill.
	assert.Equal(t, []models.Skill{
		{Name: "JavaScript", Level: "Expert", Proficiency: 95, ProjectCount: 3},
		{Name: "TypeScript", Level: "Advanced", Proficiency: 85, ProjectCount: 2},
		{Name: "HTML", Level: "Familiar", Proficiency: 55, ProjectCount: 1},
	}, got[models.CategoryLanguages])

	assert.Equal(t, []models.Skill{
		{Name: "React", Level: "Expert", Proficiency: 95, ProjectCount: 3},
		{Name: "Redux", Level: "Advanced", Proficiency: 85, ProjectCount: 2},
	}, got[models.CategoryFrameworks])

	assert.Empty(t, got[models.CategoryOther])
}

func TestGenerateLevelsScalesAgainstDroppedSkills(t *testing.T) {
	var repos []models.Repository
	for i := 0; i < maxLanguages; i++ {
		repos = append(repos, models.Repository{Name: fmt.Sprintf("r%d", i), Language: fmt.Sprintf("A%02d", i)})
	}
	for i := 0; i < 10; i++ {
		repos = append(repos, models.Repository{Name: fmt.Sprintf("zig%d", i), Language: "Zig"})
	}

	extracted := Extract(repos)
	require.Len(t, extracted[models.CategoryLanguages], maxLanguages)
	require.NotContains(t, extracted[models.CategoryLanguages], "Zig")

	got := GenerateLevels(repos, extracted)[models.CategoryLanguages]
	require.Len(t, got, maxLanguages)
	assert.Equal(t, models.Skill{Name: "A00", Level: "Beginner", Proficiency: 40, ProjectCount: 1}, got[0])
}

func TestGenerateLevelsCountsLanguageAndTopic(t *testing.T) {
	repos := []models.Repository{
		{Name: "a", Language: "Go", Topics: []string{"go"}},
		{Name: "b", Language: "Python"},
	}

	got := GenerateLevels(repos, map[string][]string{models.CategoryLanguages: {"Go", "Python"}})

	assert.Equal(t, []models.Skill{
		{Name: "Go", Level: "Expert", Proficiency: 95, ProjectCount: 2},
		{Name: "Python", Level: "Intermediate", Proficiency: 70, ProjectCount: 1},
	}, got[models.CategoryLanguages])
}

func TestGenerateLevelsNoUsage(t *testing.T) {
	got := GenerateLevels(nil, map[string][]string{models.CategoryLanguages: {"Go"}})
	assert.Equal(t, []models.Skill{{Name: "Go", Level: "Beginner", Proficiency: 40}}, got[models.CategoryLanguages])
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		percent     float64
		level       string
		proficiency int
	}{
		{100, "Expert", 95},
		{80, "Expert", 95},
		{79.9, "Advanced", 85},
		{60, "Advanced", 85},
		{40, "Intermediate", 70},
		{20, "Familiar", 55},
		{19.9, "Beginner", 40},
		{0, "Beginner", 40},
	}

	for _, tt := range tests {
		got := tierFor(tt.percent)
		assert.Equal(t, tt.level, got.level, "percent %v", tt.percent)
		assert.Equal(t, tt.proficiency, got.proficiency, "percent %v", tt.percent)
	}
}
