package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	domainerrors "github.com/solport/devportal/pkg/domain"
	"github.com/solport/devportal/pkg/infra/prometheus"
)

// Scheduler drives the periodic jobs: the sync job on a short ticker and
// the archival job once a day at a fixed UTC hour. Jobs can also be
// triggered by name through the admin API; the jobs themselves reject
// self-overlap, so timer and manual invocations may race safely.
type Scheduler struct {
	syncJob      Job
	archivalJob  Job
	logger       *logrus.Logger
	syncInterval time.Duration
	archivalHour int
}

func New(
	syncJob Job,
	archivalJob Job,
	logger *logrus.Logger,
	syncInterval time.Duration,
	archivalHourUTC int,
) (*Scheduler, error) {
	if syncInterval <= 0 {
		return nil, fmt.Errorf("sync interval must be positive, got %s", syncInterval)
	}
	if archivalHourUTC < 0 || archivalHourUTC > 23 {
		return nil, fmt.Errorf("archival hour must be between 0 and 23, got %d", archivalHourUTC)
	}
	return &Scheduler{
		syncJob:      syncJob,
		archivalJob:  archivalJob,
		logger:       logger,
		syncInterval: syncInterval,
		archivalHour: archivalHourUTC,
	}, nil
}

// Start launches the timers and returns immediately. Both loops stop when
// ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go s.runSyncLoop(ctx)
	go s.runArchivalLoop(ctx)
}

// Trigger runs a job by name, synchronously. Used by the admin endpoint
// and by tests.
func (s *Scheduler) Trigger(ctx context.Context, name string) (Report, error) {
	switch name {
	case s.syncJob.Name():
		return s.syncJob.Run(ctx)
	case s.archivalJob.Name():
		return s.archivalJob.Run(ctx)
	default:
		return Report{}, domainerrors.ErrUnknownJobName
	}
}

func (s *Scheduler) runSyncLoop(ctx context.Context) {
	ticker := time.NewTicker(s.syncInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runJob(ctx, s.syncJob)
		}
	}
}

func (s *Scheduler) runArchivalLoop(ctx context.Context) {
	for {
		wait := time.Until(nextDailyRun(time.Now().UTC(), s.archivalHour))
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.runJob(ctx, s.archivalJob)
		}
	}
}

// runJob shields the loops from job failures: a panic or error is logged
// and the next scheduled run proceeds normally.
func (s *Scheduler) runJob(ctx context.Context, job Job) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.WithFields(logrus.Fields{
				"job":   job.Name(),
				"panic": r,
			}).Error("scheduled job panicked")
			prometheus.JobRunsTotal.WithLabelValues(job.Name(), "panic").Inc()
		}
	}()

	if _, err := job.Run(ctx); err != nil {
		if errors.Is(err, domainerrors.ErrJobAlreadyRuns) {
			s.logger.WithField("job", job.Name()).Warn("skipping scheduled run, job still in progress")
			return
		}
		s.logger.WithField("job", job.Name()).WithError(err).Error("scheduled job failed")
	}
}

// nextDailyRun returns the next occurrence of hour:00 UTC strictly after
// now.
func nextDailyRun(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
