package scheduler_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solport/devportal/pkg/app/scheduler"
	"github.com/solport/devportal/pkg/common"
	domainerrors "github.com/solport/devportal/pkg/domain"
	domain "github.com/solport/devportal/pkg/domain/usage"
	"github.com/solport/devportal/pkg/infra/cache"
)

var fixedNow = time.Date(2025, 3, 15, 0, 5, 0, 0, time.UTC)

func fixedTime() time.Time { return fixedNow }

type fakeUsageRepository struct {
	mu        sync.Mutex
	totals    []domain.UsageTotal
	archives  []domain.ArchivedUsageRecord
	totalErr  map[string]error
	pruned    int64
	pruneErr  error
	cutoffs   []time.Time
	upsertErr map[string]error
}

func (f *fakeUsageRepository) UpsertTotal(ctx context.Context, total *domain.UsageTotal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.totalErr[total.Identity]; err != nil {
		return err
	}
	f.totals = append(f.totals, *total)
	return nil
}

func (f *fakeUsageRepository) UpsertArchive(ctx context.Context, record *domain.ArchivedUsageRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.upsertErr[record.Identity]; err != nil {
		return err
	}
	f.archives = append(f.archives, *record)
	return nil
}

func (f *fakeUsageRepository) ListArchiveRange(
	ctx context.Context,
	usageDomain, identity, fromDate, toDate string,
) ([]domain.ArchivedUsageRecord, error) {
	return nil, nil
}

func (f *fakeUsageRepository) DeleteArchivesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoffs = append(f.cutoffs, cutoff)
	return f.pruned, f.pruneErr
}

func TestSyncJob_UpsertsLifetimeCounters(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := &fakeUsageRepository{}
	job := scheduler.NewSyncJob(
		cache.NewClientFromRedis(client),
		repo,
		logrus.New(),
		[]string{common.AirdropUsageDomain},
		fixedTime,
	)

	mock.ExpectScan(0, "airdrop_usage:*:total", 100).
		SetVal([]string{"airdrop_usage:user-1:total", "airdrop_usage:user-2:total"}, 0)
	mock.ExpectHGetAll("airdrop_usage:user-1:total").SetVal(map[string]string{
		"count":        "10",
		"volume":       "20000000000",
		"last_used_at": "2025-03-14T22:00:00Z",
	})
	mock.ExpectHGetAll("airdrop_usage:user-2:total").SetVal(map[string]string{
		"count":  "4",
		"volume": "8000000000",
	})

	report, err := job.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, report.Upserted)
	assert.Zero(t, report.Skipped)
	require.Len(t, repo.totals, 2)
	assert.Equal(t, common.AirdropUsageDomain, repo.totals[0].Domain)
	assert.Equal(t, "user-1", repo.totals[0].Identity)
	assert.Equal(t, int64(10), repo.totals[0].TotalRequests)
	assert.Equal(t, int64(20_000_000_000), repo.totals[0].TotalVolume)
	assert.Equal(t, fixedNow, repo.totals[0].UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncJob_Idempotent(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := &fakeUsageRepository{}
	job := scheduler.NewSyncJob(
		cache.NewClientFromRedis(client),
		repo,
		logrus.New(),
		[]string{common.AirdropUsageDomain},
		fixedTime,
	)

	for i := 0; i < 2; i++ {
		mock.ExpectScan(0, "airdrop_usage:*:total", 100).
			SetVal([]string{"airdrop_usage:user-1:total"}, 0)
		mock.ExpectHGetAll("airdrop_usage:user-1:total").SetVal(map[string]string{
			"count":  "10",
			"volume": "20000000000",
		})
	}

	// Running twice over unchanged counters writes the same row twice;
	// the upsert keeps the Durable Store state identical.
	for i := 0; i < 2; i++ {
		report, err := job.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, report.Upserted)
	}
	require.Len(t, repo.totals, 2)
	assert.Equal(t, repo.totals[0], repo.totals[1])
}

func TestSyncJob_SkipsFailedIdentity(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := &fakeUsageRepository{
		totalErr: map[string]error{"user-1": errors.New("constraint violation")},
	}
	job := scheduler.NewSyncJob(
		cache.NewClientFromRedis(client),
		repo,
		logrus.New(),
		[]string{common.AirdropUsageDomain},
		fixedTime,
	)

	mock.ExpectScan(0, "airdrop_usage:*:total", 100).
		SetVal([]string{"airdrop_usage:user-1:total", "airdrop_usage:user-2:total"}, 0)
	mock.ExpectHGetAll("airdrop_usage:user-1:total").SetVal(map[string]string{"count": "1"})
	mock.ExpectHGetAll("airdrop_usage:user-2:total").SetVal(map[string]string{"count": "2"})

	report, err := job.Run(context.Background())

	// One identity failing must not abort the run.
	require.NoError(t, err)
	assert.Equal(t, 1, report.Upserted)
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, repo.totals, 1)
	assert.Equal(t, "user-2", repo.totals[0].Identity)
}

func TestSyncJob_ScanErrorAbortsRun(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := &fakeUsageRepository{}
	job := scheduler.NewSyncJob(
		cache.NewClientFromRedis(client),
		repo,
		logrus.New(),
		[]string{common.AirdropUsageDomain},
		fixedTime,
	)

	mock.ExpectScan(0, "airdrop_usage:*:total", 100).SetErr(errors.New("connection refused"))

	_, err := job.Run(context.Background())

	assert.Error(t, err)
	assert.Empty(t, repo.totals)
}

func TestSyncJob_RejectsOverlappingRuns(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := &fakeUsageRepository{}

	started := make(chan struct{})
	release := make(chan struct{})
	job := scheduler.NewSyncJob(
		cache.NewClientFromRedis(client),
		repo,
		logrus.New(),
		[]string{common.AirdropUsageDomain},
		func() time.Time {
			close(started)
			<-release
			return fixedNow
		},
	)

	mock.ExpectScan(0, "airdrop_usage:*:total", 100).SetVal([]string{}, 0)

	done := make(chan error, 1)
	go func() {
		_, err := job.Run(context.Background())
		done <- err
	}()

	<-started
	_, err := job.Run(context.Background())
	assert.ErrorIs(t, err, domainerrors.ErrJobAlreadyRuns)

	close(release)
	require.NoError(t, <-done)
}
