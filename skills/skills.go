// Package skills derives a categorized skill list with proficiency tiers from
// repository languages and topics.
package skills

import (
	"sort"
	"strings"

	"portfoliosync/models"
)

const (
	maxLanguages = 15
	maxPerOther  = 20
	// Topics seen in fewer repositories are dropped unless the user has
	// fewer than this many distinct topics overall.
	smallTopicSample = 10
)

var languageCategories = map[string]string{
	"JavaScript": models.CategoryLanguages,
	"TypeScript": models.CategoryLanguages,
	"Python":     models.CategoryLanguages,
	"Java":       models.CategoryLanguages,
	"C++":        models.CategoryLanguages,
	"C":          models.CategoryLanguages,
	"Go":         models.CategoryLanguages,
	"Rust":       models.CategoryLanguages,
	"PHP":        models.CategoryLanguages,
	"Ruby":       models.CategoryLanguages,
	"Swift":      models.CategoryLanguages,
	"Kotlin":     models.CategoryLanguages,
	"Dart":       models.CategoryLanguages,
	"HTML":       models.CategoryLanguages,
	"CSS":        models.CategoryLanguages,
	"SCSS":       models.CategoryLanguages,
}

var techCategories = func() map[string]string {
	groups := map[string][]string{
		models.CategoryFrameworks: {
			"react", "reactjs", "nextjs", "next", "vue", "vuejs", "angular", "svelte",
			"express", "expressjs", "nestjs", "fastapi", "django", "flask", "spring", "laravel",
			"tailwind", "tailwindcss", "bootstrap", "mui", "material-ui", "chakra-ui",
			"redux", "zustand", "mobx",
		},
		models.CategoryTools: {
			"git", "github", "docker", "kubernetes", "jenkins", "webpack", "vite", "babel",
			"eslint", "prettier", "jest", "testing-library", "cypress", "playwright",
		},
		models.CategoryDatabases: {
			"mongodb", "mongoose", "postgresql", "mysql", "redis", "sqlite", "firebase",
			"supabase", "prisma",
		},
		models.CategoryCloud: {
			"aws", "azure", "gcp", "vercel", "netlify", "heroku", "railway",
		},
	}
	m := map[string]string{}
	for category, techs := range groups {
		for _, t := range techs {
			m[t] = category
		}
	}
	return m
}()

type tier struct {
	minPercent  float64
	level       string
	proficiency int
}

// Proficiency tiers, highest first.
var tiers = []tier{
	{80, "Expert", 95},
	{60, "Advanced", 85},
	{40, "Intermediate", 70},
	{20, "Familiar", 55},
	{0, "Beginner", 40},
}

// Extract groups repository languages and topics into skill categories. Each
// category is deduplicated, sorted alphabetically and capped.
func Extract(repos []models.Repository) map[string][]string {
	languageCount := map[string]int{}
	topicCount := map[string]int{}
	for _, r := range repos {
		if r.Language != "" {
			languageCount[r.Language]++
		}
		for _, topic := range r.Topics {
			topicCount[strings.ToLower(topic)]++
		}
	}

	sets := map[string]map[string]struct{}{}
	for _, c := range models.Categories {
		sets[c] = map[string]struct{}{}
	}

	for lang := range languageCount {
		category, ok := languageCategories[lang]
		if !ok {
			category = models.CategoryLanguages
		}
		sets[category][lang] = struct{}{}
	}

	for topic, count := range topicCount {
		if count < 2 && len(topicCount) >= smallTopicSample {
			continue
		}
		category, ok := techCategories[topic]
		if !ok {
			category = models.CategoryOther
		}
		sets[category][FormatTopic(topic)] = struct{}{}
	}

	out := make(map[string][]string, len(sets))
	for category, set := range sets {
		names := make([]string, 0, len(set))
		for name := range set {
			names = append(names, name)
		}
		sort.Strings(names)

		limit := maxPerOther
		if category == models.CategoryLanguages {
			limit = maxLanguages
		}
		if len(names) > limit {
			names = names[:limit]
		}
		out[category] = names
	}
	return out
}

// FormatTopic title-cases a hyphenated topic: "material-ui" becomes "Material Ui".
func FormatTopic(topic string) string {
	parts := strings.Split(topic, "-")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}

// GenerateLevels assigns each extracted skill a tier from how often it occurs
// across repositories relative to the most used language or topic, including
// ones Extract dropped. Categories are sorted by proficiency, highest first,
// keeping alphabetical order within a tier.
func GenerateLevels(repos []models.Repository, extracted map[string][]string) map[string][]models.Skill {
	usage := usageCounts(repos)
	maxUsage := 1
	for _, n := range usage {
		if n > maxUsage {
			maxUsage = n
		}
	}

	out := make(map[string][]models.Skill, len(extracted))
	for category, names := range extracted {
		list := make([]models.Skill, 0, len(names))
		for _, name := range names {
			percent := float64(usage[name]) / float64(maxUsage) * 100
			t := tierFor(percent)
			list = append(list, models.Skill{
				Name:         name,
				Level:        t.level,
				Proficiency:  t.proficiency,
				ProjectCount: usage[name],
			})
		}
		sort.SliceStable(list, func(i, j int) bool { return list[i].Proficiency > list[j].Proficiency })
		out[category] = list
	}
	return out
}

// usageCounts tallies every repository language and every formatted topic.
// A repository whose language and topic share a name counts for both.
func usageCounts(repos []models.Repository) map[string]int {
	usage := map[string]int{}
	for _, r := range repos {
		if r.Language != "" {
			usage[r.Language]++
		}
		for _, topic := range r.Topics {
			usage[FormatTopic(strings.ToLower(topic))]++
		}
	}
	return usage
}

func tierFor(percent float64) tier {
	for _, t := range tiers {
		if percent >= t.minPercent {
			return t
		}
	}
	return tiers[len(tiers)-1]
}
