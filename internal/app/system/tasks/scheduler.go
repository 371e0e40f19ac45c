// Package tasks runs periodic background jobs on cron schedules.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is a named unit of scheduled work.
type Job struct {
	Name string
	// Schedule is a standard 5-field cron spec or a descriptor such as "@every 15m".
	Schedule string
	// Timeout bounds a single run (default 2 minutes).
	Timeout time.Duration
	Run     func(ctx context.Context) error
}

// ValidateSchedule reports whether spec parses. An empty spec is valid and
// means "not scheduled".
func ValidateSchedule(spec string) error {
	if spec == "" {
		return nil
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}

// Scheduler owns a cron runner. Overlapping runs of the same job are skipped.
type Scheduler struct {
	c   *cron.Cron
	log *zap.Logger
}

func NewScheduler(log *zap.Logger) *Scheduler {
	return &Scheduler{
		c:   cron.New(cron.WithChain(cron.Recover(cron.DiscardLogger), cron.SkipIfStillRunning(cron.DiscardLogger))),
		log: log,
	}
}

// Add registers job. Jobs with an empty schedule are ignored.
func (s *Scheduler) Add(job Job) error {
	if job.Schedule == "" {
		s.log.Info("job not scheduled", zap.String("job", job.Name))
		return nil
	}
	timeout := job.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	_, err := s.c.AddFunc(job.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		start := time.Now()
		if err := job.Run(ctx); err != nil {
			s.log.Error("scheduled job failed", zap.String("job", job.Name), zap.Error(err))
			return
		}
		s.log.Debug("scheduled job finished",
			zap.String("job", job.Name),
			zap.Duration("took", time.Since(start)))
	})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", job.Name, err)
	}
	s.log.Info("job scheduled", zap.String("job", job.Name), zap.String("schedule", job.Schedule))
	return nil
}

// Start begins running scheduled jobs in the background.
func (s *Scheduler) Start() { s.c.Start() }

// Stop halts scheduling and waits for running jobs, or until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.c.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out with jobs still running")
	}
}

// Entries reports how many jobs are scheduled.
func (s *Scheduler) Entries() int { return len(s.c.Entries()) }
