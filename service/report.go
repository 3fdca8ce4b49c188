package service

import (
	"time"

	"go.uber.org/zap"

	"portfoliosync/apperrors"
	"portfoliosync/logger"
)

// Status is the outcome of one stage.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// StageResult records what happened to one stage.
type StageResult struct {
	Name      string         `json:"name"`
	Status    Status         `json:"status"`
	ErrorKind apperrors.Kind `json:"errorKind,omitempty"`
	Message   string         `json:"message,omitempty"`
	Duration  time.Duration  `json:"duration"`
}

// Report is the result of one pipeline run.
type Report struct {
	RunID     string        `json:"runId"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
	Stages    []StageResult `json:"stages"`
}

func (r *Report) add(result StageResult) {
	r.Stages = append(r.Stages, result)
}

func (r *Report) skip(name, reason string) {
	logger.Warn("Skipping stage",
		logger.RunID(r.RunID),
		logger.Stage(name),
		zap.String("reason", reason))
	r.add(StageResult{Name: name, Status: StatusSkipped, Message: reason})
}

func (r *Report) finish(now time.Time) {
	r.Duration = now.Sub(r.StartedAt)
	if r.Duration < 0 {
		r.Duration = 0
	}
}

// Stage returns the result for name.
func (r *Report) Stage(name string) (StageResult, bool) {
	for _, s := range r.Stages {
		if s.Name == name {
			return s, true
		}
	}
	return StageResult{}, false
}

// Succeeded reports whether the named stage ran and succeeded.
func (r *Report) Succeeded(name string) bool {
	s, ok := r.Stage(name)
	return ok && s.Status == StatusSuccess
}

// AnySucceeded reports whether at least one stage succeeded.
func (r *Report) AnySucceeded() bool {
	for _, s := range r.Stages {
		if s.Status == StatusSuccess {
			return true
		}
	}
	return false
}

// AllSucceeded is false when any stage failed or was skipped, or no stage ran.
func (r *Report) AllSucceeded() bool {
	if len(r.Stages) == 0 {
		return false
	}
	for _, s := range r.Stages {
		if s.Status != StatusSuccess {
			return false
		}
	}
	return true
}

// Log writes the run summary.
func (r *Report) Log() {
	for _, s := range r.Stages {
		fields := []zap.Field{
			logger.RunID(r.RunID),
			logger.Stage(s.Name),
			zap.String("status", string(s.Status)),
			zap.Duration("duration", s.Duration),
		}
		if s.Status == StatusFailed {
			fields = append(fields, zap.String("error_kind", string(s.ErrorKind)), zap.String("error", s.Message))
			logger.Warn("Sync stage summary", fields...)
			continue
		}
		logger.Info("Sync stage summary", fields...)
	}

	if r.AllSucceeded() {
		logger.Info("Sync completed successfully", logger.RunID(r.RunID), zap.Duration("duration", r.Duration))
		return
	}
	logger.Warn("Sync completed with errors", logger.RunID(r.RunID), zap.Duration("duration", r.Duration))
}
