// Package models defines the documents persisted by the sync pipeline and
// served by the read API.
package models

import "time"

// Collection names.
const (
	CollectionGitHubRepositories  = "github_repositories"
	CollectionGitHubContributions = "github_contributions"
	CollectionGitHubStats         = "github_stats"
	CollectionLeetCodeStats       = "leetcode_stats"
	CollectionSkills              = "skills"
	CollectionAchievements        = "achievements"
	CollectionAbout               = "about"
)

// Freshness fields used to pick the most recent document.
const (
	FieldFetchedAt = "fetchedAt"
	FieldUpdatedAt = "updatedAt"
	FieldUsername  = "username"
)

// Repository is a snapshot of one public, non-fork repository owned by the user.
type Repository struct {
	ID          int64     `bson:"id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	FullName    string    `bson:"fullName" json:"fullName"`
	Description string    `bson:"description" json:"description"`
	HTMLURL     string    `bson:"htmlUrl" json:"htmlUrl"`
	Homepage    string    `bson:"homepage" json:"homepage"`
	Language    string    `bson:"language" json:"language"`
	Stars       int       `bson:"stars" json:"stars"`
	Forks       int       `bson:"forks" json:"forks"`
	Watchers    int       `bson:"watchers" json:"watchers"`
	OpenIssues  int       `bson:"openIssues" json:"openIssues"`
	Topics      []string  `bson:"topics" json:"topics"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
	PushedAt    time.Time `bson:"pushedAt" json:"pushedAt"`
	Size        int       `bson:"size" json:"size"`
}

// LanguageCount is one entry of the top-languages histogram.
type LanguageCount struct {
	Language string `bson:"language" json:"language"`
	Count    int    `bson:"count" json:"count"`
}

// GitHubBadges holds badge image URLs for the GitHub profile.
type GitHubBadges struct {
	Stars         string `bson:"stars" json:"stars"`
	Followers     string `bson:"followers" json:"followers"`
	Repos         string `bson:"repos" json:"repos"`
	Contributions string `bson:"contributions" json:"contributions"`
	ProfileViews  string `bson:"profileViews" json:"profileViews"`
}

// ContributionDay is one day of a contribution or submission calendar.
type ContributionDay struct {
	Date  string `bson:"date" json:"date"`
	Count int    `bson:"count" json:"count"`
	Level string `bson:"level" json:"level"`
}

// GitHubRepositoriesDoc is stored in github_repositories.
type GitHubRepositoriesDoc struct {
	Username     string          `bson:"username" json:"username"`
	Repositories []Repository    `bson:"repositories" json:"repositories"`
	TopLanguages []LanguageCount `bson:"topLanguages" json:"topLanguages"`
	Badges       GitHubBadges    `bson:"badges" json:"badges"`
	TotalRepos   int             `bson:"totalRepos" json:"totalRepos"`
	TotalStars   int             `bson:"totalStars" json:"totalStars"`
	FetchedAt    time.Time       `bson:"fetchedAt" json:"fetchedAt"`
	UpdatedAt    time.Time       `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// GitHubContributionsDoc is stored in github_contributions.
type GitHubContributionsDoc struct {
	Username           string            `bson:"username" json:"username"`
	TotalContributions int               `bson:"totalContributions" json:"totalContributions"`
	Contributions      []ContributionDay `bson:"contributions" json:"contributions"`
	FetchedAt          time.Time         `bson:"fetchedAt" json:"fetchedAt"`
	UpdatedAt          time.Time         `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// GitHubStatsDoc is stored in github_stats.
type GitHubStatsDoc struct {
	Username      string    `bson:"username" json:"username"`
	Followers     int       `bson:"followers" json:"followers"`
	Following     int       `bson:"following" json:"following"`
	PublicRepos   int       `bson:"publicRepos" json:"publicRepos"`
	PublicGists   int       `bson:"publicGists" json:"publicGists"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
	ProfileUpdate time.Time `bson:"profileUpdatedAt" json:"profileUpdatedAt"`
	Bio           string    `bson:"bio" json:"bio"`
	Company       string    `bson:"company" json:"company"`
	Location      string    `bson:"location" json:"location"`
	Blog          string    `bson:"blog" json:"blog"`
	FetchedAt     time.Time `bson:"fetchedAt" json:"fetchedAt"`
	UpdatedAt     time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}
