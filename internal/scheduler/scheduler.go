// Package scheduler repeats crawl runs on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonesrussell/north-cloud/procrawler/internal/logger"
	"github.com/robfig/cron/v3"
)

// ErrInvalidSchedule is returned for a cron expression that does not parse.
var ErrInvalidSchedule = errors.New("invalid cron schedule")

// Job is one scheduled unit of work.
type Job func(ctx context.Context)

// Scheduler runs a Job on a five-field cron expression (or an @descriptor).
// A tick is skipped while the previous run is still going.
type Scheduler struct {
	cron   *cron.Cron
	spec   string
	job    Job
	logger logger.Interface
	ctx    context.Context
	cancel context.CancelFunc
}

// New parses spec and registers job.
func New(spec string, job Job, log logger.Interface) (*Scheduler, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(spec); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidSchedule, spec, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
		spec:   spec,
		job:    job,
		logger: log.WithComponent("scheduler"),
		ctx:    ctx,
		cancel: cancel,
	}
	if _, err := s.cron.AddFunc(spec, func() { s.RunOnce() }); err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
	}
	return s, nil
}

// RunOnce runs the job immediately in the caller's goroutine.
func (s *Scheduler) RunOnce() {
	if s.ctx.Err() != nil {
		return
	}
	start := time.Now()
	s.logger.Info("Scheduled run starting", "schedule", s.spec)
	s.job(s.ctx)
	s.logger.Info("Scheduled run finished", "duration", time.Since(start).String(), "next", s.Next())
}

// Start begins ticking in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler started", "schedule", s.spec, "next", s.Next())
}

// Next returns the next activation time, or the zero time before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Stop cancels a running job and waits for it to return, or for ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	stopped := s.cron.Stop()
	select {
	case <-stopped.Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
