// Package worker runs background maintenance jobs for the auth stores.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// TokenPurger deletes refresh tokens that expired before a given time.
type TokenPurger interface {
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

// PurgeWorker deletes expired refresh tokens on a cron schedule. SQL stores need it; redis
// expires keys natively.
type PurgeWorker struct {
	schedule string
	purger   TokenPurger
	logger   *slog.Logger
	now      func() time.Time
}

// NewPurgeWorker creates a PurgeWorker. schedule accepts the standard five field cron syntax
// and descriptors such as "@every 1h".
func NewPurgeWorker(schedule string, purger TokenPurger, logger *slog.Logger) *PurgeWorker {
	return &PurgeWorker{
		schedule: schedule,
		purger:   purger,
		logger:   logger,
		now:      time.Now,
	}
}

// RunOnce purges tokens expired before now and returns how many were deleted.
func (w *PurgeWorker) RunOnce(ctx context.Context) (int64, error) {
	count, err := w.purger.PurgeExpired(ctx, w.now())
	if err != nil {
		return 0, err
	}
	w.logger.Info("expired refresh tokens purged", slog.Int64("count", count))
	return count, nil
}

// Start schedules the purge and blocks until ctx is cancelled. A job already running when
// ctx ends is waited for. Overlapping runs are skipped.
func (w *PurgeWorker) Start(ctx context.Context) error {
	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	_, err := scheduler.AddFunc(w.schedule, func() {
		if _, err := w.RunOnce(ctx); err != nil {
			w.logger.Error("failed to purge expired refresh tokens", slog.Any("error", err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid token purge schedule %q: %w", w.schedule, err)
	}

	w.logger.Info("starting token purge worker", slog.String("schedule", w.schedule))
	scheduler.Start()

	<-ctx.Done()

	w.logger.Info("stopping token purge worker")
	<-scheduler.Stop().Done()
	return nil
}
