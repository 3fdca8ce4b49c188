package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"portfoliosync/achievements"
	"portfoliosync/config"
	"portfoliosync/db"
	"portfoliosync/github"
	"portfoliosync/leetcode"
	"portfoliosync/llm"
	"portfoliosync/logger"
	"portfoliosync/metrics"
	"portfoliosync/service"
)

// app is the composition root shared by every command.
type app struct {
	cfg     *config.Config
	store   db.Store
	svc     *service.Service
	metrics metrics.Recorder
}

type appOptions struct {
	requireStore bool
	dryRun       bool
}

func loadConfig() (*config.Config, error) {
	cfg := config.NewConfig()
	if err := cfg.Load(); err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}

func newApp(ctx context.Context, cfg *config.Config, opts appOptions) (*app, error) {
	a := &app{cfg: cfg, metrics: metrics.New(cfg.MetricsEnabled)}

	if !cfg.HasStore() {
		if opts.requireStore {
			return nil, cfg.Require(config.KeyMongoURI)
		}
		logger.Warn("No database configured, read endpoints will fail or serve fallback data")
		return a, nil
	}

	store, err := db.NewStore(cfg.StoreURI)
	if err != nil {
		return nil, err
	}
	if opts.dryRun {
		logger.Info("Running in dry run mode, no data will be written")
		store = db.DryRun(store)
	}
	a.store = store

	var generator achievements.Generator
	if cfg.GeminiAPIKey != "" {
		gemini, err := llm.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Warn("Gemini client unavailable, achievements cannot be regenerated", zap.Error(err))
		} else {
			generator = gemini
		}
	}

	a.svc = service.NewService(
		cfg,
		store,
		github.NewClient(cfg.GitHubToken, cfg.HTTPTimeout),
		leetcode.NewClient(cfg.LeetCodeAPIURL, cfg.HTTPTimeout),
		achievements.NewSynthesizer(store, generator, cfg.GitHubUsername, cfg.LeetCodeUsername),
		service.WithObserver(a.metrics),
	)
	return a, nil
}

func (a *app) Close() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		logger.Error("Error closing database", zap.Error(err))
	}
}
