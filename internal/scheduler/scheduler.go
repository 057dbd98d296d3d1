package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a unit of scheduled work.
type Job func(ctx context.Context) error

// Scheduler runs the end-of-day export on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	spec    string
	job     Job
	timeout time.Duration
}

// New creates a scheduler running job on spec, a standard five field cron
// expression evaluated in the local time zone.
func New(spec string, job Job) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(time.Local)),
		spec:    spec,
		job:     job,
		timeout: 2 * time.Minute,
	}
}

// Validate reports whether spec is a usable cron expression.
func Validate(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", spec, err)
	}
	return nil
}

// Start registers the job and starts the cron loop.
func (s *Scheduler) Start() error {
	if err := Validate(s.spec); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.spec, s.run); err != nil {
		return fmt.Errorf("schedule export: %w", err)
	}
	slog.Info("Starting scheduler", "schedule", s.spec)
	s.cron.Start()
	return nil
}

// Next returns the next activation time, zero before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Stop stops the scheduler and waits for a running job.
func (s *Scheduler) Stop() {
	slog.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
}

// Run blocks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	if err := s.job(ctx); err != nil {
		slog.Error("Scheduled export failed", "error", err, "duration", time.Since(start))
		return
	}
	slog.Info("Scheduled export completed", "duration", time.Since(start))
}
