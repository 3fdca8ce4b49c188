// Package achievements produces the AI-written summary, bullet points and bio
// for the portfolio, regenerating only when the ingested data changed.
package achievements

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"portfoliosync/apperrors"
	"portfoliosync/config"
	"portfoliosync/db"
	"portfoliosync/llm"
	"portfoliosync/logger"
	"portfoliosync/models"
)

// ErrMissingSourceData is returned when an ingestion document is absent.
var ErrMissingSourceData = errors.New("source data not found, run fetch-github and fetch-leetcode first")

// Generator writes the copy. *llm.Gemini implements it.
type Generator interface {
	GenerateAchievements(ctx context.Context, in llm.Input) (*llm.Achievements, error)
	GenerateBio(ctx context.Context, in llm.Input) (string, error)
}

// Synthesizer generates and caches achievements for one user pair.
type Synthesizer struct {
	store            db.Store
	generator        Generator
	githubUsername   string
	leetcodeUsername string
	now              func() time.Time
}

// NewSynthesizer creates a Synthesizer. generator may be nil as long as no
// regeneration is needed.
func NewSynthesizer(store db.Store, generator Generator, githubUsername, leetcodeUsername string) *Synthesizer {
	return &Synthesizer{
		store:            store,
		generator:        generator,
		githubUsername:   githubUsername,
		leetcodeUsername: leetcodeUsername,
		now:              time.Now,
	}
}

// Digest is the subset of ingested data whose change triggers regeneration.
// Field order is part of the hash.
type Digest struct {
	RepoCount          int                    `json:"repoCount"`
	TotalContributions int                    `json:"totalContributions"`
	LeetCodeSolved     int                    `json:"leetcodeSolved"`
	TopLanguages       []models.LanguageCount `json:"topLanguages"`
}

// Hash returns the hex SHA-256 of the digest's JSON encoding.
func (d Digest) Hash() (string, error) {
	if d.TopLanguages == nil {
		d.TopLanguages = []models.LanguageCount{}
	}
	data, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("failed to encode digest: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

type sources struct {
	repos         models.GitHubRepositoriesDoc
	contributions models.GitHubContributionsDoc
	stats         models.GitHubStatsDoc
	leetcode      models.LeetCodeStats
}

// Generate returns the stored achievement when the source digest is unchanged
// and otherwise regenerates, persists and returns a new one.
func (s *Synthesizer) Generate(ctx context.Context) (*models.Achievement, error) {
	if s.githubUsername == "" {
		return nil, apperrors.Config(config.KeyGitHubUsername)
	}
	if s.leetcodeUsername == "" {
		return nil, apperrors.Config(config.KeyLeetCodeUsername)
	}

	src, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	digest := Digest{
		RepoCount:          len(src.repos.Repositories),
		TotalContributions: src.contributions.TotalContributions,
		LeetCodeSolved:     src.leetcode.TotalSolved,
		TopLanguages:       src.repos.TopLanguages,
	}
	hash, err := digest.Hash()
	if err != nil {
		return nil, err
	}

	existing, err := s.existing(ctx)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.SourceHash == hash {
		logger.Info("No changes detected in source data, skipping generation",
			zap.String("username", s.githubUsername),
			zap.String("source_hash", hash))
		return existing, nil
	}

	if s.generator == nil {
		return nil, apperrors.Config(config.KeyGeminiAPIKey)
	}

	input := llm.Input{
		Repositories:       src.repos.Repositories,
		TopLanguages:       src.repos.TopLanguages,
		TotalContributions: src.contributions.TotalContributions,
		Stats:              &src.stats,
		LeetCode: llm.LeetCodeSummary{
			TotalSolved:  src.leetcode.TotalSolved,
			EasySolved:   src.leetcode.EasySolved,
			EasyTotal:    src.leetcode.EasyTotal,
			MediumSolved: src.leetcode.MediumSolved,
			MediumTotal:  src.leetcode.MediumTotal,
			HardSolved:   src.leetcode.HardSolved,
			HardTotal:    src.leetcode.HardTotal,
			Ranking:      src.leetcode.Ranking,
		},
	}

	logger.Info("Generating achievements", zap.String("username", s.githubUsername))

	var (
		generated *llm.Achievements
		bio       string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		generated, err = s.generator.GenerateAchievements(gctx, input)
		return err
	})
	g.Go(func() error {
		var err error
		bio, err = s.generator.GenerateBio(gctx, input)
		return err
	})
	if err := g.Wait(); err != nil {
		if apperrors.KindOf(err) == apperrors.KindUnknown {
			err = apperrors.Upstream("gemini", err)
		}
		return nil, err
	}

	achievement := &models.Achievement{
		Username:     s.githubUsername,
		Summary:      generated.Summary,
		BulletPoints: generated.BulletPoints,
		Bio:          bio,
		SourceHash:   hash,
		GeneratedAt:  s.now().UTC(),
	}
	if err := s.store.Upsert(ctx, models.CollectionAchievements, db.ByUsername(s.githubUsername), achievement); err != nil {
		return nil, err
	}

	logger.Info("Stored achievements",
		zap.String("username", s.githubUsername),
		zap.Int("bullet_points", len(achievement.BulletPoints)))
	return achievement, nil
}

func (s *Synthesizer) load(ctx context.Context) (*sources, error) {
	var src sources
	reads := []struct {
		collection string
		username   string
		out        any
	}{
		{models.CollectionGitHubRepositories, s.githubUsername, &src.repos},
		{models.CollectionGitHubContributions, s.githubUsername, &src.contributions},
		{models.CollectionGitHubStats, s.githubUsername, &src.stats},
		{models.CollectionLeetCodeStats, s.leetcodeUsername, &src.leetcode},
	}

	for _, r := range reads {
		err := s.store.FindOne(ctx, r.collection, db.ByUsername(r.username), db.Latest(models.FieldFetchedAt), r.out)
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperrors.Shape(r.collection, ErrMissingSourceData)
		}
		if err != nil {
			return nil, err
		}
	}
	return &src, nil
}

func (s *Synthesizer) existing(ctx context.Context) (*models.Achievement, error) {
	var a models.Achievement
	err := s.store.FindOne(ctx, models.CollectionAchievements, db.ByUsername(s.githubUsername), db.Latest(models.FieldUpdatedAt), &a)
	if errors.Is(err, db.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
