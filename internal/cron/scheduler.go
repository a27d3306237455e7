package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/moments-backend/pkg/logger"
	"github.com/angelmondragon/moments-backend/pkg/metrics"
)

const (
	defaultInterval   = 15 * time.Minute
	defaultJobTimeout = 2 * time.Minute
	releaseTimeout    = 5 * time.Second
)

// Job is one unit of periodic moderation housekeeping.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

type SchedulerParams struct {
	Logger     *logger.Logger
	Lock       Lock
	Metrics    *metrics.CronJobMetrics
	Jobs       []Job
	Interval   time.Duration
	JobTimeout time.Duration
}

// Scheduler runs its jobs once per interval on whichever worker holds the lock.
type Scheduler struct {
	logg       *logger.Logger
	lock       Lock
	metrics    *metrics.CronJobMetrics
	jobs       []Job
	interval   time.Duration
	jobTimeout time.Duration
}

// TickResult summarises a single pass.
type TickResult struct {
	Skipped bool
	Ran     []string
	Failed  []string
}

func NewScheduler(params SchedulerParams) (*Scheduler, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Lock == nil {
		return nil, fmt.Errorf("lock required")
	}

	seen := make(map[string]struct{}, len(params.Jobs))
	jobs := make([]Job, 0, len(params.Jobs))
	for _, job := range params.Jobs {
		if job == nil {
			continue
		}
		if _, dup := seen[job.Name()]; dup {
			return nil, fmt.Errorf("duplicate job %q", job.Name())
		}
		seen[job.Name()] = struct{}{}
		jobs = append(jobs, job)
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("at least one job required")
	}

	interval := params.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	jobTimeout := params.JobTimeout
	if jobTimeout <= 0 {
		jobTimeout = defaultJobTimeout
	}
	return &Scheduler{
		logg:       params.Logger,
		lock:       params.Lock,
		metrics:    params.Metrics,
		jobs:       jobs,
		interval:   interval,
		jobTimeout: jobTimeout,
	}, nil
}

// Run ticks immediately and then on every interval until ctx ends.
func (s *Scheduler) Run(ctx context.Context) error {
	s.tickAndLog(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.tickAndLog(ctx)
		}
	}
}

func (s *Scheduler) tickAndLog(ctx context.Context) {
	res, err := s.Tick(ctx)
	if err != nil {
		s.logg.Error(ctx, "cron.tick.failed", err)
		return
	}
	if res.Skipped {
		return
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"ran":    res.Ran,
		"failed": res.Failed,
	}), "cron.tick.complete")
}

// Tick takes the lock and runs every job once. Job failures are collected
// into the returned error; a held lock yields a skipped result.
func (s *Scheduler) Tick(ctx context.Context) (TickResult, error) {
	lease, ok, err := s.lock.TryLock(ctx)
	if err != nil {
		return TickResult{}, fmt.Errorf("acquire cron lock: %w", err)
	}
	if !ok {
		s.metrics.IncSkipped()
		s.logg.Info(ctx, "cron.tick.skipped")
		return TickResult{Skipped: true}, nil
	}
	defer func() {
		// release even when ctx was canceled mid-run
		relCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		defer cancel()
		if relErr := lease.Unlock(relCtx); relErr != nil {
			s.logg.Error(ctx, "cron.lock.release_failed", relErr)
		}
	}()

	var (
		res  TickResult
		errs error
	)
	for _, job := range s.jobs {
		if ctx.Err() != nil {
			errs = multierr.Append(errs, ctx.Err())
			break
		}
		res.Ran = append(res.Ran, job.Name())
		if jobErr := s.runJob(ctx, job); jobErr != nil {
			res.Failed = append(res.Failed, job.Name())
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", job.Name(), jobErr))
		}
	}
	if len(res.Failed) > 0 {
		s.logg.Warn(s.logg.WithField(ctx, "failed", res.Failed), "cron.tick.partial")
	}
	return res, errs
}

func (s *Scheduler) runJob(ctx context.Context, job Job) error {
	jobCtx, cancel := context.WithTimeout(ctx, s.jobTimeout)
	defer cancel()
	jobCtx = s.logg.WithField(jobCtx, "job", job.Name())

	start := time.Now()
	err := job.Run(jobCtx)
	elapsed := time.Since(start)
	s.metrics.ObserveDuration(job.Name(), elapsed)

	jobCtx = s.logg.WithField(jobCtx, "duration_ms", elapsed.Milliseconds())
	if err != nil {
		s.metrics.IncFailure(job.Name())
		s.logg.Error(jobCtx, "cron.job.failed", err)
		return err
	}
	s.metrics.IncSuccess(job.Name())
	s.logg.Info(jobCtx, "cron.job.ok")
	return nil
}
