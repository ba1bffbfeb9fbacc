package scheduler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	domainerrors "github.com/solport/devportal/pkg/domain"
	domain "github.com/solport/devportal/pkg/domain/usage"
	"github.com/solport/devportal/pkg/infra/cache"
	"github.com/solport/devportal/pkg/infra/prometheus"
)

const SyncJobName = "usage_sync"

// SyncJob mirrors every live lifetime counter into the Durable Store so
// dashboards can query totals without touching the hot path. Upserts are
// keyed on (domain, identity); re-running with unchanged counters writes
// the same rows again and is therefore idempotent.
type SyncJob struct {
	cache        cache.Client
	repository   domain.Repository
	logger       *logrus.Logger
	domains      []string
	running      *semaphore.Weighted
	timeProvider func() time.Time
}

func NewSyncJob(
	cacheClient cache.Client,
	repository domain.Repository,
	logger *logrus.Logger,
	domains []string,
	timeProvider func() time.Time,
) *SyncJob {
	if timeProvider == nil {
		timeProvider = time.Now
	}
	return &SyncJob{
		cache:        cacheClient,
		repository:   repository,
		logger:       logger,
		domains:      domains,
		running:      semaphore.NewWeighted(1),
		timeProvider: timeProvider,
	}
}

func (j *SyncJob) Name() string {
	return SyncJobName
}

func (j *SyncJob) Run(ctx context.Context) (Report, error) {
	if !j.running.TryAcquire(1) {
		return Report{}, domainerrors.ErrJobAlreadyRuns
	}
	defer j.running.Release(1)

	now := j.timeProvider().UTC()
	report := Report{}

	for _, usageDomain := range j.domains {
		pattern := cache.UsageKey(usageDomain, "*", domain.ScopeLifetime)
		err := j.cache.ScanPattern(ctx, pattern, func(key string) error {
			identity, ok := identityFromUsageKey(key)
			if !ok {
				j.logger.WithField("key", key).Warn("skipping malformed usage key")
				report.Skipped++
				return nil
			}
			if err := j.syncIdentity(ctx, usageDomain, identity, key, now); err != nil {
				j.logger.WithFields(logrus.Fields{
					"domain":   usageDomain,
					"identity": identity,
				}).WithError(err).Error("failed to sync lifetime counter")
				report.Skipped++
				return nil
			}
			report.Upserted++
			return nil
		})
		if err != nil {
			// A scan failure loses the rest of this domain's identities;
			// the next run picks them up.
			j.logger.WithField("domain", usageDomain).WithError(err).Error("usage sync scan failed")
			prometheus.JobRunsTotal.WithLabelValues(SyncJobName, "error").Inc()
			return report, err
		}
	}

	prometheus.JobRunsTotal.WithLabelValues(SyncJobName, "ok").Inc()
	prometheus.JobRecordsTotal.WithLabelValues(SyncJobName, "upserted").Add(float64(report.Upserted))
	prometheus.JobRecordsTotal.WithLabelValues(SyncJobName, "skipped").Add(float64(report.Skipped))

	j.logger.WithFields(logrus.Fields{
		"upserted": report.Upserted,
		"skipped":  report.Skipped,
	}).Info("usage sync completed")
	return report, nil
}

func (j *SyncJob) syncIdentity(ctx context.Context, usageDomain, identity, key string, now time.Time) error {
	fields, err := j.cache.RedisClient().HGetAll(ctx, key).Result()
	if err != nil {
		return err
	}
	counter := domain.CounterFromHash(fields)
	return j.repository.UpsertTotal(ctx, &domain.UsageTotal{
		Domain:        usageDomain,
		Identity:      identity,
		TotalRequests: counter.Count,
		TotalVolume:   counter.Lamports,
		LastUsedAt:    counter.LastUsedAt,
		UpdatedAt:     now,
	})
}
