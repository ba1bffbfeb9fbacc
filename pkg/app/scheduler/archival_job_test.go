package scheduler_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v8"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solport/devportal/pkg/app/scheduler"
	"github.com/solport/devportal/pkg/common"
	domain "github.com/solport/devportal/pkg/domain/usage"
	"github.com/solport/devportal/pkg/infra/cache"
)

const retentionDays = 365

func newArchivalJob(repo *fakeUsageRepository) (*scheduler.ArchivalJob, redismock.ClientMock) {
	client, mock := redismock.NewClientMock()
	job := scheduler.NewArchivalJob(
		cache.NewClientFromRedis(client),
		repo,
		logrus.New(),
		[]string{common.AirdropUsageDomain},
		retentionDays,
		fixedTime,
	)
	return job, mock
}

func TestArchivalJob_ArchivesYesterdaysCounters(t *testing.T) {
	repo := &fakeUsageRepository{}
	job, mock := newArchivalJob(repo)

	// fixedNow is 2025-03-15, so the job archives 2025-03-14.
	mock.ExpectScan(0, "airdrop_usage:*:2025-03-14", 100).
		SetVal([]string{"airdrop_usage:user-1:2025-03-14"}, 0)
	mock.ExpectHGetAll("airdrop_usage:user-1:2025-03-14").SetVal(map[string]string{
		"count":               "5",
		"volume":              "10000000000",
		"sub:wallet-a:count":  "5",
		"sub:wallet-a:volume": "10000000000",
	})

	report, err := job.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, report.Upserted)
	require.Len(t, repo.archives, 1)
	record := repo.archives[0]
	assert.NotEqual(t, record.ID.String(), "00000000-0000-0000-0000-000000000000")
	assert.Equal(t, common.AirdropUsageDomain, record.Domain)
	assert.Equal(t, "user-1", record.Identity)
	assert.Equal(t, "2025-03-14", record.UsageDate)
	assert.Equal(t, int64(5), record.TotalCount)
	assert.Equal(t, int64(10_000_000_000), record.TotalVolume)
	assert.Equal(t, domain.SubStat{Count: 5, Lamports: 10_000_000_000}, record.Breakdown["wallet-a"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArchivalJob_PrunesExpiredRecords(t *testing.T) {
	repo := &fakeUsageRepository{pruned: 42}
	job, mock := newArchivalJob(repo)

	mock.ExpectScan(0, "airdrop_usage:*:2025-03-14", 100).SetVal([]string{}, 0)

	report, err := job.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(42), report.Pruned)
	require.Len(t, repo.cutoffs, 1)
	assert.Equal(t, fixedNow.AddDate(0, 0, -retentionDays), repo.cutoffs[0])
}

func TestArchivalJob_PruneFailureDoesNotFailRun(t *testing.T) {
	repo := &fakeUsageRepository{pruneErr: errors.New("deadlock detected")}
	job, mock := newArchivalJob(repo)

	mock.ExpectScan(0, "airdrop_usage:*:2025-03-14", 100).
		SetVal([]string{"airdrop_usage:user-1:2025-03-14"}, 0)
	mock.ExpectHGetAll("airdrop_usage:user-1:2025-03-14").SetVal(map[string]string{"count": "1"})

	report, err := job.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, report.Upserted)
	assert.Zero(t, report.Pruned)
}

func TestArchivalJob_SkipsFailedIdentity(t *testing.T) {
	repo := &fakeUsageRepository{
		upsertErr: map[string]error{"user-1": errors.New("constraint violation")},
	}
	job, mock := newArchivalJob(repo)

	mock.ExpectScan(0, "airdrop_usage:*:2025-03-14", 100).
		SetVal([]string{"airdrop_usage:user-1:2025-03-14", "airdrop_usage:user-2:2025-03-14"}, 0)
	mock.ExpectHGetAll("airdrop_usage:user-1:2025-03-14").SetVal(map[string]string{"count": "1"})
	mock.ExpectHGetAll("airdrop_usage:user-2:2025-03-14").SetVal(map[string]string{"count": "2"})

	report, err := job.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, report.Upserted)
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, repo.archives, 1)
	assert.Equal(t, "user-2", repo.archives[0].Identity)
}

func TestArchivalJob_EmptyDay(t *testing.T) {
	repo := &fakeUsageRepository{}
	job, mock := newArchivalJob(repo)

	mock.ExpectScan(0, "airdrop_usage:*:2025-03-14", 100).SetVal([]string{}, 0)

	report, err := job.Run(context.Background())

	require.NoError(t, err)
	assert.Zero(t, report.Upserted)
	assert.Empty(t, repo.archives)
}
