// Package service runs the sync pipeline: GitHub and LeetCode ingestion,
// achievement synthesis and the skills/about update.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"portfoliosync/apperrors"
	"portfoliosync/config"
	"portfoliosync/db"
	"portfoliosync/github"
	"portfoliosync/leetcode"
	"portfoliosync/logger"
	"portfoliosync/models"
	"portfoliosync/profile"
	"portfoliosync/skills"
)

// Stage names.
const (
	StageGitHub       = "github"
	StageLeetCode     = "leetcode"
	StageAchievements = "achievements"
	StageSkillsAbout  = "skills_about"
)

// ErrMissingRepositories is returned by the skills/about stage before any GitHub ingestion.
var ErrMissingRepositories = errors.New("GitHub repositories not found, run fetch-github first")

// GitHubClient abstracts the GitHub operations needed by the service
// (for testability)
type GitHubClient interface {
	FetchRepositories(ctx context.Context, username string) ([]models.Repository, error)
	FetchContributions(ctx context.Context, username string) (*github.Contributions, error)
	FetchUserStats(ctx context.Context, username string) (*models.GitHubStatsDoc, error)
	FetchTopLanguages(ctx context.Context, username string) ([]models.LanguageCount, error)
}

// LeetCodeClient abstracts the LeetCode aggregator (for testability)
type LeetCodeClient interface {
	FetchStats(ctx context.Context, username string, now time.Time) (*models.LeetCodeStats, error)
}

// AchievementGenerator produces the cached AI achievements.
type AchievementGenerator interface {
	Generate(ctx context.Context) (*models.Achievement, error)
}

// StageObserver receives the outcome of every stage run.
type StageObserver interface {
	ObserveStage(stage string, status string, duration time.Duration)
}

// Service wires the stages to their dependencies.
type Service struct {
	cfg          *config.Config
	store        db.Store
	github       GitHubClient
	leetcode     LeetCodeClient
	achievements AchievementGenerator
	observer     StageObserver
	now          func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithObserver reports stage outcomes to o.
func WithObserver(o StageObserver) Option {
	return func(s *Service) { s.observer = o }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new service instance. achievements may be nil, in
// which case the achievements stage fails with a configuration error.
func NewService(cfg *config.Config, store db.Store, gh GitHubClient, lc LeetCodeClient, achievements AchievementGenerator, opts ...Option) *Service {
	s := &Service{
		cfg:          cfg,
		store:        store,
		github:       gh,
		leetcode:     lc,
		achievements: achievements,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes all four stages in order. Achievements need both ingestion
// stages to succeed; skills/about needs GitHub.
func (s *Service) Run(ctx context.Context) *Report {
	report := s.newReport()
	logger.Info("Starting portfolio data sync", logger.RunID(report.RunID))

	gh := s.runStage(ctx, report, StageGitHub, s.FetchGitHub)
	lc := s.runStage(ctx, report, StageLeetCode, s.FetchLeetCode)

	if gh && lc {
		s.runStage(ctx, report, StageAchievements, s.GenerateAchievements)
	} else {
		report.skip(StageAchievements, "requires successful github and leetcode stages")
	}

	if gh {
		s.runStage(ctx, report, StageSkillsAbout, s.UpdateSkillsAbout)
	} else {
		report.skip(StageSkillsAbout, "requires a successful github stage")
	}

	report.finish(s.now())
	report.Log()
	return report
}

// Ingest runs only the GitHub and LeetCode stages.
func (s *Service) Ingest(ctx context.Context) *Report {
	report := s.newReport()
	logger.Info("Starting ingestion", logger.RunID(report.RunID))

	s.runStage(ctx, report, StageGitHub, s.FetchGitHub)
	s.runStage(ctx, report, StageLeetCode, s.FetchLeetCode)

	report.finish(s.now())
	report.Log()
	return report
}

// RunStage executes a single named stage, as the per-stage CLI commands do.
func (s *Service) RunStage(ctx context.Context, name string) *Report {
	stages := map[string]func(context.Context) error{
		StageGitHub:       s.FetchGitHub,
		StageLeetCode:     s.FetchLeetCode,
		StageAchievements: s.GenerateAchievements,
		StageSkillsAbout:  s.UpdateSkillsAbout,
	}

	report := s.newReport()
	fn, ok := stages[name]
	if !ok {
		report.add(StageResult{
			Name:      name,
			Status:    StatusFailed,
			ErrorKind: apperrors.KindConfig,
			Message:   fmt.Sprintf("unknown stage %q", name),
		})
	} else {
		s.runStage(ctx, report, name, fn)
	}
	report.finish(s.now())
	report.Log()
	return report
}

func (s *Service) newReport() *Report {
	return &Report{RunID: ulid.Make().String(), StartedAt: s.now().UTC()}
}

func (s *Service) runStage(ctx context.Context, report *Report, name string, fn func(context.Context) error) bool {
	log := logger.ForStage(report.RunID, name)
	log.Info("Stage started")

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start)

	result := StageResult{Name: name, Status: StatusSuccess, Duration: duration}
	if err != nil {
		result.Status = StatusFailed
		result.ErrorKind = apperrors.KindOf(err)
		result.Message = err.Error()
		log.Error("Stage failed",
			zap.Error(err),
			zap.String("error_kind", string(result.ErrorKind)),
			zap.Duration("duration", duration))
	} else {
		log.Info("Stage completed", zap.Duration("duration", duration))
	}

	if s.observer != nil {
		s.observer.ObserveStage(name, string(result.Status), duration)
	}
	report.add(result)
	return err == nil
}

// FetchGitHub fetches repositories, contributions, profile stats and top
// languages concurrently and stores the three GitHub documents.
func (s *Service) FetchGitHub(ctx context.Context) error {
	username := s.cfg.GitHubUsername
	if err := s.cfg.Require(config.KeyGitHubUsername, config.KeyGitHubToken); err != nil {
		return err
	}

	var (
		repos         []models.Repository
		contributions *github.Contributions
		stats         *models.GitHubStatsDoc
		topLanguages  []models.LanguageCount
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		repos, err = s.github.FetchRepositories(gctx, username)
		return err
	})
	g.Go(func() (err error) {
		contributions, err = s.github.FetchContributions(gctx, username)
		return err
	})
	g.Go(func() (err error) {
		stats, err = s.github.FetchUserStats(gctx, username)
		return err
	})
	g.Go(func() (err error) {
		topLanguages, err = s.github.FetchTopLanguages(gctx, username)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("Fetched GitHub data",
		zap.String("username", username),
		zap.Int("repositories", len(repos)),
		zap.Int("contribution_days", len(contributions.Days)),
		zap.Int("total_contributions", contributions.TotalContributions))

	fetchedAt := s.now().UTC()
	totalStars := 0
	for _, r := range repos {
		totalStars += r.Stars
	}

	reposDoc := models.GitHubRepositoriesDoc{
		Username:     username,
		Repositories: repos,
		TopLanguages: topLanguages,
		Badges:       github.GenerateBadges(username),
		TotalRepos:   len(repos),
		TotalStars:   totalStars,
		FetchedAt:    fetchedAt,
	}
	contribDoc := models.GitHubContributionsDoc{
		Username:           username,
		TotalContributions: contributions.TotalContributions,
		Contributions:      contributions.Days,
		FetchedAt:          fetchedAt,
	}
	statsDoc := *stats
	statsDoc.Username = username
	statsDoc.FetchedAt = fetchedAt

	writes := []struct {
		collection string
		doc        any
	}{
		{models.CollectionGitHubRepositories, reposDoc},
		{models.CollectionGitHubContributions, contribDoc},
		{models.CollectionGitHubStats, statsDoc},
	}
	for _, w := range writes {
		if err := s.store.Upsert(ctx, w.collection, db.ByUsername(username), w.doc); err != nil {
			return fmt.Errorf("failed to store %s: %w", w.collection, err)
		}
	}
	return nil
}

// FetchLeetCode fetches and stores the LeetCode statistics.
func (s *Service) FetchLeetCode(ctx context.Context) error {
	username := s.cfg.LeetCodeUsername
	if err := s.cfg.Require(config.KeyLeetCodeUsername); err != nil {
		return err
	}

	stats, err := s.leetcode.FetchStats(ctx, username, s.now())
	if err != nil {
		return err
	}
	stats.Username = username

	if err := s.store.Upsert(ctx, models.CollectionLeetCodeStats, db.ByUsername(username), stats); err != nil {
		return fmt.Errorf("failed to store %s: %w", models.CollectionLeetCodeStats, err)
	}
	return nil
}

// GenerateAchievements refreshes the AI achievements.
func (s *Service) GenerateAchievements(ctx context.Context) error {
	if s.achievements == nil {
		return apperrors.Config(config.KeyGeminiAPIKey)
	}
	_, err := s.achievements.Generate(ctx)
	return err
}

// UpdateSkillsAbout derives the skills and about documents from stored GitHub data.
func (s *Service) UpdateSkillsAbout(ctx context.Context) error {
	username := s.cfg.GitHubUsername
	if err := s.cfg.Require(config.KeyGitHubUsername); err != nil {
		return err
	}
	filter := db.ByUsername(username)

	var repos models.GitHubRepositoriesDoc
	err := s.store.FindOne(ctx, models.CollectionGitHubRepositories, filter, db.Latest(models.FieldFetchedAt), &repos)
	if errors.Is(err, db.ErrNotFound) {
		return apperrors.Shape(models.CollectionGitHubRepositories, ErrMissingRepositories)
	}
	if err != nil {
		return err
	}

	stats, err := findOptional[models.GitHubStatsDoc](ctx, s.store, models.CollectionGitHubStats, filter, models.FieldFetchedAt)
	if err != nil {
		return err
	}
	achievement, err := findOptional[models.Achievement](ctx, s.store, models.CollectionAchievements, filter, models.FieldUpdatedAt)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	extracted := skills.Extract(repos.Repositories)
	skillsDoc := models.SkillsDoc{
		Username:      username,
		Skills:        skills.GenerateLevels(repos.Repositories, extracted),
		ExtractedFrom: len(repos.Repositories),
		UpdatedAt:     now,
	}
	for _, category := range models.Categories {
		if n := len(skillsDoc.Skills[category]); n > 0 {
			logger.Debug("Extracted skills", zap.String("category", category), zap.Int("count", n))
		}
	}
	if err := s.store.Upsert(ctx, models.CollectionSkills, filter, skillsDoc); err != nil {
		return fmt.Errorf("failed to store %s: %w", models.CollectionSkills, err)
	}

	about := profile.BuildAbout(username, &repos, stats, achievement, now)
	if err := s.store.Upsert(ctx, models.CollectionAbout, filter, about); err != nil {
		return fmt.Errorf("failed to store %s: %w", models.CollectionAbout, err)
	}

	logger.Info("Updated skills and about section",
		zap.String("username", username),
		zap.Int("repositories", len(repos.Repositories)),
		zap.Int("highlights", len(about.Highlights)))
	return nil
}

func findOptional[T any](ctx context.Context, store db.Store, collection string, filter db.Filter, field string) (*T, error) {
	var out T
	err := store.FindOne(ctx, collection, filter, db.Latest(field), &out)
	if errors.Is(err, db.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// compile-time checks for the production clients
var (
	_ GitHubClient   = (*github.Client)(nil)
	_ LeetCodeClient = (*leetcode.Client)(nil)
)
