package api

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"portfoliosync/logger"
	"portfoliosync/service"
)

type syncResults struct {
	GitHub    bool   `json:"github"`
	LeetCode  bool   `json:"leetcode"`
	Duration  int64  `json:"duration"`
	Timestamp string `json:"timestamp"`
}

type syncResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	RunID     string      `json:"runId"`
	Results   syncResults `json:"results"`
	Timestamp string      `json:"timestamp"`
}

// handleSync runs GitHub and LeetCode ingestion for an external cron caller.
func (s *Server) handleSync(c *gin.Context) {
	if !s.authorized(c) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Unauthorized",
			"message": "Invalid or missing sync token",
		})
		return
	}

	if s.store == nil || s.syncer == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Configuration error",
			"message": "Database connection not configured",
		})
		return
	}

	start := s.now()
	report := s.syncer.Ingest(c.Request.Context())

	results := syncResults{
		GitHub:    report.Succeeded(service.StageGitHub),
		LeetCode:  report.Succeeded(service.StageLeetCode),
		Duration:  s.now().Sub(start).Milliseconds(),
		Timestamp: start.UTC().Format(time.RFC3339Nano),
	}
	success := results.GitHub || results.LeetCode

	if success && s.cfg.DeployHookURL != "" {
		if err := s.triggerDeploy(c.Request.Context()); err != nil {
			logger.Error("Deployment webhook failed", zap.Error(err))
		} else {
			logger.Info("Deployment webhook triggered")
		}
	}

	status := http.StatusOK
	message := "Data sync completed"
	if !success {
		status = http.StatusInternalServerError
		message = "Data sync failed"
	}
	c.JSON(status, syncResponse{
		Success:   success,
		Message:   message,
		RunID:     report.RunID,
		Results:   results,
		Timestamp: s.now().UTC().Format(time.RFC3339Nano),
	})
}

// authorized accepts the token from the Authorization header, a JSON body
// field or the token query parameter. An unset SYNC_TOKEN rejects everything.
func (s *Server) authorized(c *gin.Context) bool {
	expected := s.cfg.SyncToken
	if expected == "" {
		return false
	}
	token := requestToken(c)
	return token != "" && subtle.ConstantTimeCompare([]byte(token), []byte(expected)) == 1
}

func requestToken(c *gin.Context) string {
	if fields := strings.Fields(c.GetHeader("Authorization")); len(fields) >= 2 {
		return fields[1]
	}

	var body struct {
		Token string `json:"token"`
	}
	if c.Request.ContentLength != 0 && c.ShouldBindJSON(&body) == nil && body.Token != "" {
		return body.Token
	}
	return c.Query("token")
}

func (s *Server) triggerDeploy(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.DeployHookURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create deploy hook request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deploy hook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("deploy hook returned status %d", resp.StatusCode)
	}
	return nil
}
