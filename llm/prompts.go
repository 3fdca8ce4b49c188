package llm

import (
	"fmt"
	"sort"
	"strings"

	"portfoliosync/models"
)

const maxPromptRepos = 10

// Input is the data the prompts are written from.
type Input struct {
	Repositories       []models.Repository
	TopLanguages       []models.LanguageCount
	TotalContributions int
	Stats              *models.GitHubStatsDoc
	LeetCode           LeetCodeSummary
}

// LeetCodeSummary is the subset of LeetCode statistics sent to the model.
type LeetCodeSummary struct {
	TotalSolved  int
	EasySolved   int
	EasyTotal    int
	MediumSolved int
	MediumTotal  int
	HardSolved   int
	HardTotal    int
	Ranking      int
}

func achievementsPrompt(in Input) string {
	var b strings.Builder
	b.WriteString("You are writing the achievements section of a software developer's portfolio.\n\n")
	writeFacts(&b, in)
	b.WriteString(`
Respond with JSON only, in exactly this shape:
{"summary": "<two or three sentence overview>", "bulletPoints": ["<achievement>", "..."]}

Write 4 to 6 bullet points. Each must be a concrete, quantified accomplishment
taken from the data above. Do not invent employers, awards or numbers.
`)
	return b.String()
}

func bioPrompt(in Input) string {
	var b strings.Builder
	b.WriteString("Write a professional first-person bio for a software developer's portfolio.\n\n")
	writeFacts(&b, in)
	b.WriteString(`
The bio must be a single paragraph of 3 to 4 sentences, friendly and confident.
Mention the main technologies and problem solving practice. Return only the
paragraph text with no heading, quotes or markdown.
`)
	return b.String()
}

func writeFacts(b *strings.Builder, in Input) {
	b.WriteString("GitHub:\n")
	fmt.Fprintf(b, "- Public repositories: %d\n", len(in.Repositories))
	fmt.Fprintf(b, "- Contributions in the last year: %d\n", in.TotalContributions)
	if in.Stats != nil {
		fmt.Fprintf(b, "- Followers: %d\n", in.Stats.Followers)
		if in.Stats.Bio != "" {
			fmt.Fprintf(b, "- Profile bio: %s\n", in.Stats.Bio)
		}
	}
	if len(in.TopLanguages) > 0 {
		langs := make([]string, 0, len(in.TopLanguages))
		for _, l := range in.TopLanguages {
			langs = append(langs, fmt.Sprintf("%s (%d)", l.Language, l.Count))
		}
		fmt.Fprintf(b, "- Top languages: %s\n", strings.Join(langs, ", "))
	}

	repos := append([]models.Repository(nil), in.Repositories...)
	sort.SliceStable(repos, func(i, j int) bool { return repos[i].Stars > repos[j].Stars })
	if len(repos) > maxPromptRepos {
		repos = repos[:maxPromptRepos]
	}
	if len(repos) > 0 {
		b.WriteString("- Notable repositories:\n")
		for _, r := range repos {
			fmt.Fprintf(b, "  - %s (%s, %d stars)", r.Name, orDash(r.Language), r.Stars)
			if r.Description != "" {
				fmt.Fprintf(b, ": %s", r.Description)
			}
			b.WriteString("\n")
		}
	}

	lc := in.LeetCode
	b.WriteString("\nLeetCode:\n")
	fmt.Fprintf(b, "- Problems solved: %d (easy %d/%d, medium %d/%d, hard %d/%d)\n",
		lc.TotalSolved, lc.EasySolved, lc.EasyTotal, lc.MediumSolved, lc.MediumTotal, lc.HardSolved, lc.HardTotal)
	if lc.Ranking > 0 {
		fmt.Fprintf(b, "- Global ranking: %d\n", lc.Ranking)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
