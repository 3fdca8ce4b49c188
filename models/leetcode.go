package models

import "time"

// Default problem totals used when the aggregator omits them.
const (
	DefaultTotalQuestions = 3000
	DefaultEasyTotal      = 915
	DefaultMediumTotal    = 1956
	DefaultHardTotal      = 887
)

// Streak is the current and longest run of active days.
type Streak struct {
	Current int `bson:"current" json:"current"`
	Longest int `bson:"longest" json:"longest"`
}

// ContestResult is one attended contest.
type ContestResult struct {
	Title          string  `bson:"title" json:"title"`
	StartTime      int64   `bson:"startTime" json:"startTime"`
	Rating         float64 `bson:"rating" json:"rating"`
	Ranking        int     `bson:"ranking" json:"ranking"`
	ProblemsSolved int     `bson:"problemsSolved" json:"problemsSolved"`
	TotalProblems  int     `bson:"totalProblems" json:"totalProblems"`
	TrendDirection string  `bson:"trendDirection" json:"trendDirection"`
}

// ContestData is the contest record of a LeetCode user.
type ContestData struct {
	ContestAttend        int             `bson:"contestAttend" json:"contestAttend"`
	ContestRating        int             `bson:"contestRating" json:"contestRating"`
	ContestGlobalRanking *int            `bson:"contestGlobalRanking" json:"contestGlobalRanking"`
	ContestTopPercentage *float64        `bson:"contestTopPercentage" json:"contestTopPercentage"`
	TotalParticipants    int             `bson:"totalParticipants" json:"totalParticipants"`
	Contests             []ContestResult `bson:"contests" json:"contests"`
}

// LeetCodeBadge is an earned LeetCode badge as reported by the aggregator.
type LeetCodeBadge struct {
	ID           string `bson:"id" json:"id"`
	DisplayName  string `bson:"displayName" json:"displayName"`
	Icon         string `bson:"icon" json:"icon"`
	CreationDate string `bson:"creationDate" json:"creationDate"`
}

// RecentSubmission is one accepted or attempted submission.
type RecentSubmission struct {
	Title         string `bson:"title" json:"title"`
	TitleSlug     string `bson:"titleSlug" json:"titleSlug"`
	Timestamp     string `bson:"timestamp" json:"timestamp"`
	StatusDisplay string `bson:"statusDisplay" json:"statusDisplay"`
	Lang          string `bson:"lang" json:"lang"`
}

// LeetCodeStats is stored in leetcode_stats.
type LeetCodeStats struct {
	Username           string             `bson:"username" json:"username"`
	Name               string             `bson:"name" json:"name"`
	Ranking            int                `bson:"ranking" json:"ranking"`
	Reputation         int                `bson:"reputation" json:"reputation"`
	TotalSolved        int                `bson:"totalSolved" json:"totalSolved"`
	EasySolved         int                `bson:"easySolved" json:"easySolved"`
	MediumSolved       int                `bson:"mediumSolved" json:"mediumSolved"`
	HardSolved         int                `bson:"hardSolved" json:"hardSolved"`
	TotalQuestions     int                `bson:"totalQuestions" json:"totalQuestions"`
	EasyTotal          int                `bson:"easyTotal" json:"easyTotal"`
	MediumTotal        int                `bson:"mediumTotal" json:"mediumTotal"`
	HardTotal          int                `bson:"hardTotal" json:"hardTotal"`
	AcceptanceRate     float64            `bson:"acceptanceRate" json:"acceptanceRate"`
	ContributionPoints int                `bson:"contributionPoints" json:"contributionPoints"`
	SubmissionCalendar map[string]int     `bson:"submissionCalendar" json:"submissionCalendar"`
	RecentSubmissions  []RecentSubmission `bson:"recentSubmissions" json:"recentSubmissions"`
	Avatar             string             `bson:"avatar" json:"avatar"`
	Country            string             `bson:"country" json:"country"`
	School             string             `bson:"school" json:"school"`
	About              string             `bson:"about" json:"about"`
	ContestData        *ContestData       `bson:"contestData" json:"contestData"`
	Badges             []LeetCodeBadge    `bson:"badges" json:"badges"`
	BadgeURLs          map[string]string  `bson:"badgeUrls" json:"badgeUrls"`
	Streak             Streak             `bson:"streak" json:"streak"`
	FetchedAt          time.Time          `bson:"fetchedAt" json:"fetchedAt"`
	UpdatedAt          time.Time          `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}
