package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"portfoliosync/logger"
)

// StartScheduler re-runs the full pipeline every interval until ctx is done.
// A non-positive interval disables it. The returned channel is closed when
// the scheduler goroutine exits.
func (s *Service) StartScheduler(ctx context.Context, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	if interval <= 0 {
		close(done)
		return done
	}

	logger.Info("Starting sync scheduler", zap.Duration("interval", interval))

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				logger.Info("Sync scheduler stopped")
				return
			case <-ticker.C:
				if report := s.Run(ctx); !report.AllSucceeded() {
					logger.Warn("Scheduled sync finished with errors", logger.RunID(report.RunID))
				}
			}
		}
	}()
	return done
}
