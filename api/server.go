// Package api serves the portfolio read endpoints and the sync trigger.
package api

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"portfoliosync/config"
	"portfoliosync/db"
	"portfoliosync/leetcode"
	"portfoliosync/logger"
	"portfoliosync/metrics"
	"portfoliosync/models"
	"portfoliosync/service"
)

const shutdownTimeout = 10 * time.Second

// Syncer runs the ingestion stages for the sync trigger.
type Syncer interface {
	Ingest(ctx context.Context) *service.Report
}

// FallbackFunc returns the synthetic LeetCode payload served when no real
// data can be read.
type FallbackFunc func(username string, now time.Time) *models.LeetCodeStats

// DefaultFallback serves leetcode.MockStats with a time-seeded calendar.
func DefaultFallback(username string, now time.Time) *models.LeetCodeStats {
	return leetcode.MockStats(username, now, rand.New(rand.NewSource(now.UnixNano())))
}

// Server holds the handler dependencies. store and syncer are nil when no
// database is configured.
type Server struct {
	cfg        *config.Config
	store      db.Store
	syncer     Syncer
	metrics    metrics.Recorder
	httpClient *http.Client

	// Fallback is served by the LeetCode handler when the store has nothing.
	Fallback FallbackFunc
	now      func() time.Time
}

// NewServer creates a Server. rec may be nil.
func NewServer(cfg *config.Config, store db.Store, syncer Syncer, rec metrics.Recorder) *Server {
	if rec == nil {
		rec = metrics.New(false)
	}
	return &Server{
		cfg:        cfg,
		store:      store,
		syncer:     syncer,
		metrics:    rec,
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		Fallback:   DefaultFallback,
		now:        time.Now,
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery(), requestLogger(), metrics.Middleware(s.metrics))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:           true,
		AllowMethods:              []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:              []string{"Content-Type", "Authorization"},
		MaxAge:                    12 * time.Hour,
		OptionsResponseStatusCode: http.StatusOK,
	}))

	api := r.Group("/api")
	{
		api.GET("/about", s.handleAbout)
		api.GET("/github/contributions", s.handleContributions)
		api.GET("/github/repos", s.handleRepos)
		api.GET("/github/stats", s.handleGitHubStats)
		api.GET("/leetcode/stats", s.handleLeetCodeStats)
		api.GET("/skills", s.handleSkills)
		api.POST("/sync", s.handleSync)
	}
	r.GET("/sitemap.xml", s.handleSitemap)
	r.GET("/robots.txt", s.handleRobots)
	r.GET("/healthz", s.handleHealth)
	if s.cfg.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	// Pre-flight without an Origin header never reaches the cors middleware's
	// short circuit, so every path also answers OPTIONS itself.
	seen := map[string]bool{}
	for _, route := range r.Routes() {
		if seen[route.Path] {
			continue
		}
		seen[route.Path] = true
		r.OPTIONS(route.Path, func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
	}

	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Warn("HTTP request", fields...)
			return
		}
		logger.Debug("HTTP request", fields...)
	}
}
