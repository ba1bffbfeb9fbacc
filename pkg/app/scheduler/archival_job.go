package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	domainerrors "github.com/solport/devportal/pkg/domain"
	domain "github.com/solport/devportal/pkg/domain/usage"
	"github.com/solport/devportal/pkg/infra/cache"
	"github.com/solport/devportal/pkg/infra/prometheus"
)

const ArchivalJobName = "usage_archival"

// ArchivalJob copies yesterday's daily counters into the Durable Store
// before their Fast Store TTL can expire them, then prunes archive rows
// past the retention window. Archival is a one-way copy: the daily counter
// stays in the Fast Store and dies by TTL.
//
// Each identity is processed independently; one failed upsert is logged
// with its identity and skipped, never aborting the batch.
type ArchivalJob struct {
	cache         cache.Client
	repository    domain.Repository
	logger        *logrus.Logger
	domains       []string
	retentionDays int
	running       *semaphore.Weighted
	timeProvider  func() time.Time
}

func NewArchivalJob(
	cacheClient cache.Client,
	repository domain.Repository,
	logger *logrus.Logger,
	domains []string,
	retentionDays int,
	timeProvider func() time.Time,
) *ArchivalJob {
	if timeProvider == nil {
		timeProvider = time.Now
	}
	return &ArchivalJob{
		cache:         cacheClient,
		repository:    repository,
		logger:        logger,
		domains:       domains,
		retentionDays: retentionDays,
		running:       semaphore.NewWeighted(1),
		timeProvider:  timeProvider,
	}
}

func (j *ArchivalJob) Name() string {
	return ArchivalJobName
}

func (j *ArchivalJob) Run(ctx context.Context) (Report, error) {
	if !j.running.TryAcquire(1) {
		return Report{}, domainerrors.ErrJobAlreadyRuns
	}
	defer j.running.Release(1)

	now := j.timeProvider().UTC()
	yesterday := domain.Day(now.AddDate(0, 0, -1))
	report := Report{}

	for _, usageDomain := range j.domains {
		pattern := cache.UsageKey(usageDomain, "*", yesterday)
		err := j.cache.ScanPattern(ctx, pattern, func(key string) error {
			identity, ok := identityFromUsageKey(key)
			if !ok {
				j.logger.WithField("key", key).Warn("skipping malformed usage key")
				report.Skipped++
				return nil
			}
			if err := j.archiveIdentity(ctx, usageDomain, identity, key, yesterday, now); err != nil {
				j.logger.WithFields(logrus.Fields{
					"domain":     usageDomain,
					"identity":   identity,
					"usage_date": yesterday,
				}).WithError(err).Error("failed to archive daily counter")
				report.Skipped++
				return nil
			}
			report.Upserted++
			return nil
		})
		if err != nil {
			j.logger.WithField("domain", usageDomain).WithError(err).Error("usage archival scan failed")
			prometheus.JobRunsTotal.WithLabelValues(ArchivalJobName, "error").Inc()
			return report, err
		}
	}

	cutoff := now.AddDate(0, 0, -j.retentionDays)
	pruned, err := j.repository.DeleteArchivesBefore(ctx, cutoff)
	if err != nil {
		j.logger.WithError(err).Error("failed to prune archived usage records")
	} else {
		report.Pruned = pruned
	}

	prometheus.JobRunsTotal.WithLabelValues(ArchivalJobName, "ok").Inc()
	prometheus.JobRecordsTotal.WithLabelValues(ArchivalJobName, "upserted").Add(float64(report.Upserted))
	prometheus.JobRecordsTotal.WithLabelValues(ArchivalJobName, "skipped").Add(float64(report.Skipped))

	j.logger.WithFields(logrus.Fields{
		"usage_date": yesterday,
		"archived":   report.Upserted,
		"skipped":    report.Skipped,
		"pruned":     report.Pruned,
	}).Info("usage archival completed")
	return report, nil
}

func (j *ArchivalJob) archiveIdentity(ctx context.Context, usageDomain, identity, key, usageDate string, now time.Time) error {
	fields, err := j.cache.RedisClient().HGetAll(ctx, key).Result()
	if err != nil {
		return err
	}
	counter := domain.CounterFromHash(fields)
	return j.repository.UpsertArchive(ctx, &domain.ArchivedUsageRecord{
		ID:          uuid.New(),
		Domain:      usageDomain,
		Identity:    identity,
		UsageDate:   usageDate,
		TotalCount:  counter.Count,
		TotalVolume: counter.Lamports,
		Breakdown:   domain.BreakdownMap(counter.Breakdown),
		CreatedAt:   now,
	})
}
