package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"portfoliosync/db"
	"portfoliosync/logger"
	"portfoliosync/models"
)

type aboutResponse struct {
	Bio        string             `json:"bio"`
	Location   string             `json:"location"`
	Company    string             `json:"company"`
	Blog       string             `json:"blog"`
	Email      string             `json:"email"`
	Social     models.SocialLinks `json:"social"`
	Stats      models.AboutStats  `json:"stats"`
	Highlights []string           `json:"highlights"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

type contributionsResponse struct {
	TotalContributions int                      `json:"totalContributions"`
	Contributions      []models.ContributionDay `json:"contributions"`
	FetchedAt          time.Time                `json:"fetchedAt"`
}

type reposResponse struct {
	Repositories []models.Repository    `json:"repositories"`
	TopLanguages []models.LanguageCount `json:"topLanguages"`
	Badges       models.GitHubBadges    `json:"badges"`
	TotalRepos   int                    `json:"totalRepos"`
	TotalStars   int                    `json:"totalStars"`
	FetchedAt    time.Time              `json:"fetchedAt"`
}

type githubStatsResponse struct {
	Followers   int       `json:"followers"`
	Following   int       `json:"following"`
	PublicRepos int       `json:"publicRepos"`
	PublicGists int       `json:"publicGists"`
	Bio         string    `json:"bio"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	Blog        string    `json:"blog"`
	FetchedAt   time.Time `json:"fetchedAt"`
}

type skillsResponse struct {
	Skills        map[string][]models.Skill `json:"skills"`
	ExtractedFrom int                       `json:"extractedFrom"`
	UpdatedAt     time.Time                 `json:"updatedAt"`
}

// leetcodeResponse keeps the badge image URLs under "badges" for the
// front end; the aggregator's earned badge list is "earnedBadges".
type leetcodeResponse struct {
	Username           string                    `json:"username"`
	Ranking            int                       `json:"ranking"`
	TotalSolved        int                       `json:"totalSolved"`
	EasySolved         int                       `json:"easySolved"`
	EasyTotal          int                       `json:"easyTotal"`
	MediumSolved       int                       `json:"mediumSolved"`
	MediumTotal        int                       `json:"mediumTotal"`
	HardSolved         int                       `json:"hardSolved"`
	HardTotal          int                       `json:"hardTotal"`
	AcceptanceRate     float64                   `json:"acceptanceRate"`
	SubmissionCalendar map[string]int            `json:"submissionCalendar"`
	Badges             map[string]string         `json:"badges"`
	EarnedBadges       []models.LeetCodeBadge    `json:"earnedBadges"`
	RecentSubmissions  []models.RecentSubmission `json:"recentSubmissions"`
	ContestData        *models.ContestData       `json:"contestData"`
	Streak             models.Streak             `json:"streak"`
	FetchedAt          time.Time                 `json:"fetchedAt"`
}

func errorBody(msg string) gin.H {
	return gin.H{"error": msg}
}

// findLatest reads the newest document for username. It writes the error
// response itself and reports whether the handler should continue.
func (s *Server) findLatest(c *gin.Context, collection, username, field string, out any) bool {
	if s.store == nil {
		logger.Error("Read requested without a configured store", zap.String("collection", collection))
		c.JSON(http.StatusInternalServerError, errorBody("Internal server error"))
		return false
	}

	err := s.store.FindOne(c.Request.Context(), collection, db.ByUsername(username), db.Latest(field), out)
	switch {
	case errors.Is(err, db.ErrNotFound):
		c.JSON(http.StatusNotFound, errorBody("No data found"))
		return false
	case err != nil:
		logger.Error("Failed to read document",
			zap.String("collection", collection),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorBody("Internal server error"))
		return false
	}
	return true
}

func (s *Server) handleAbout(c *gin.Context) {
	var doc models.AboutProfile
	if !s.findLatest(c, models.CollectionAbout, s.cfg.GitHubUsername, models.FieldUpdatedAt, &doc) {
		return
	}
	c.JSON(http.StatusOK, aboutResponse{
		Bio:        doc.Bio,
		Location:   doc.Location,
		Company:    doc.Company,
		Blog:       doc.Blog,
		Email:      doc.Email,
		Social:     doc.Social,
		Stats:      doc.Stats,
		Highlights: orEmpty(doc.Highlights),
		UpdatedAt:  doc.UpdatedAt,
	})
}

func (s *Server) handleContributions(c *gin.Context) {
	var doc models.GitHubContributionsDoc
	if !s.findLatest(c, models.CollectionGitHubContributions, s.cfg.GitHubUsername, models.FieldFetchedAt, &doc) {
		return
	}
	c.JSON(http.StatusOK, contributionsResponse{
		TotalContributions: doc.TotalContributions,
		Contributions:      orEmpty(doc.Contributions),
		FetchedAt:          doc.FetchedAt,
	})
}

func (s *Server) handleRepos(c *gin.Context) {
	var doc models.GitHubRepositoriesDoc
	if !s.findLatest(c, models.CollectionGitHubRepositories, s.cfg.GitHubUsername, models.FieldFetchedAt, &doc) {
		return
	}
	c.JSON(http.StatusOK, reposResponse{
		Repositories: orEmpty(doc.Repositories),
		TopLanguages: orEmpty(doc.TopLanguages),
		Badges:       doc.Badges,
		TotalRepos:   doc.TotalRepos,
		TotalStars:   doc.TotalStars,
		FetchedAt:    doc.FetchedAt,
	})
}

func (s *Server) handleGitHubStats(c *gin.Context) {
	var doc models.GitHubStatsDoc
	if !s.findLatest(c, models.CollectionGitHubStats, s.cfg.GitHubUsername, models.FieldFetchedAt, &doc) {
		return
	}
	c.JSON(http.StatusOK, githubStatsResponse{
		Followers:   doc.Followers,
		Following:   doc.Following,
		PublicRepos: doc.PublicRepos,
		PublicGists: doc.PublicGists,
		Bio:         doc.Bio,
		Company:     doc.Company,
		Location:    doc.Location,
		Blog:        doc.Blog,
		FetchedAt:   doc.FetchedAt,
	})
}

func (s *Server) handleSkills(c *gin.Context) {
	var doc models.SkillsDoc
	if !s.findLatest(c, models.CollectionSkills, s.cfg.GitHubUsername, models.FieldUpdatedAt, &doc) {
		return
	}
	skills := doc.Skills
	if skills == nil {
		skills = map[string][]models.Skill{}
	}
	c.JSON(http.StatusOK, skillsResponse{
		Skills:        skills,
		ExtractedFrom: doc.ExtractedFrom,
		UpdatedAt:     doc.UpdatedAt,
	})
}

// handleLeetCodeStats never fails: without stored data it serves the fallback.
func (s *Server) handleLeetCodeStats(c *gin.Context) {
	username := s.cfg.LeetCodeUsername
	stats, reason := s.storedLeetCode(c, username)
	if stats == nil {
		logger.Warn("No LeetCode data available, returning fallback data", zap.String("reason", reason))
		s.metrics.IncFallbacks("leetcode")
		stats = s.Fallback(username, s.now())
	}

	c.JSON(http.StatusOK, leetcodeResponse{
		Username:           stats.Username,
		Ranking:            stats.Ranking,
		TotalSolved:        stats.TotalSolved,
		EasySolved:         stats.EasySolved,
		EasyTotal:          stats.EasyTotal,
		MediumSolved:       stats.MediumSolved,
		MediumTotal:        stats.MediumTotal,
		HardSolved:         stats.HardSolved,
		HardTotal:          stats.HardTotal,
		AcceptanceRate:     stats.AcceptanceRate,
		SubmissionCalendar: orEmptyMap(stats.SubmissionCalendar),
		Badges:             orEmptyMap(stats.BadgeURLs),
		EarnedBadges:       orEmpty(stats.Badges),
		RecentSubmissions:  orEmpty(stats.RecentSubmissions),
		ContestData:        stats.ContestData,
		Streak:             stats.Streak,
		FetchedAt:          stats.FetchedAt,
	})
}

func (s *Server) storedLeetCode(c *gin.Context, username string) (*models.LeetCodeStats, string) {
	if s.store == nil {
		return nil, "store not configured"
	}
	var doc models.LeetCodeStats
	err := s.store.FindOne(c.Request.Context(), models.CollectionLeetCodeStats, db.ByUsername(username), db.Latest(models.FieldFetchedAt), &doc)
	if errors.Is(err, db.ErrNotFound) {
		return nil, "no document"
	}
	if err != nil {
		return nil, err.Error()
	}
	return &doc, ""
}

func (s *Server) handleHealth(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "store": "not configured"})
		return
	}
	if err := s.store.Connect(c.Request.Context()); err != nil {
		logger.Warn("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "store": "unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "store": "connected"})
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func orEmptyMap[V any](m map[string]V) map[string]V {
	if m == nil {
		return map[string]V{}
	}
	return m
}
