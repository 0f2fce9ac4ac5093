// Package worker runs the periodic background jobs of one process: deposit
// reconciliation and the bid expiry sweep. Each job is a singleton loop.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/collectibles_market/internal/middleware"
	"golang.org/x/sync/errgroup"
)

// Job is one periodic task. Run errors are logged and the loop continues.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler runs jobs until its context is cancelled.
type Scheduler struct {
	jobs   []Job
	logger *slog.Logger
}

func NewScheduler(logger *slog.Logger, jobs ...Job) *Scheduler {
	return &Scheduler{jobs: jobs, logger: logger}
}

// Run blocks until ctx is done. Jobs with a non-positive interval are skipped.
func (s *Scheduler) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, job := range s.jobs {
		if job.Interval <= 0 || job.Run == nil {
			s.logger.Info("Worker disabled", slog.String("component", job.Name))
			continue
		}
		g.Go(func() error {
			s.loop(ctx, job)
			return nil
		})
	}
	return g.Wait()
}

func (s *Scheduler) loop(ctx context.Context, job Job) {
	logger := s.logger.With(slog.String("component", job.Name))
	ctx = middleware.WithLogger(ctx, logger)
	logger.Info("Worker started", slog.Duration("interval", job.Interval))

	s.tick(ctx, logger, job)

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("Worker stopped")
			return
		case <-ticker.C:
			s.tick(ctx, logger, job)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context, logger *slog.Logger, job Job) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Worker job panicked", slog.Any("panic", r))
		}
	}()
	if err := job.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("Worker job failed", slog.String("error", err.Error()))
	}
}
