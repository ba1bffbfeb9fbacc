package usage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appusage "github.com/solport/devportal/pkg/app/usage"
	"github.com/solport/devportal/pkg/common"
	domain "github.com/solport/devportal/pkg/domain/usage"
)

var fixedNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func fixedTime() time.Time { return fixedNow }

func airdropPolicy() domain.Policy {
	return domain.Policy{
		MaxLamportsPerRequest: 2_000_000_000,  // 2 SOL
		DailyLamportsLimit:    24_000_000_000, // 24 SOL
		DailyRequestLimit:     50,
	}
}

func newLimiter(t *testing.T) (*appusage.Limiter, redismock.ClientMock) {
	t.Helper()
	client, mock := redismock.NewClientMock()
	limiter := appusage.NewLimiter(
		client,
		logrus.New(),
		common.AirdropUsageDomain,
		airdropPolicy(),
		&appusage.LimiterOpts{TimeProvider: fixedTime},
	)
	return limiter, mock
}

func TestLimiter_Allows(t *testing.T) {
	limiter, mock := newLimiter(t)
	mock.ExpectHMGet("airdrop_usage:user-1:2025-03-15", "count", "volume").
		SetVal([]interface{}{"3", "5000000000"})

	decision, err := limiter.Check(context.Background(), "user-1", 2_000_000_000)

	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Empty(t, decision.Reason)
	assert.Equal(t, int64(3), decision.DailyRequestsUsed)
	assert.Equal(t, int64(5_000_000_000), decision.DailyLamportsUsed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLimiter_FirstRequestOfDay(t *testing.T) {
	limiter, mock := newLimiter(t)
	// Missing hash fields come back nil and must count as zero usage.
	mock.ExpectHMGet("airdrop_usage:user-1:2025-03-15", "count", "volume").
		SetVal([]interface{}{nil, nil})

	decision, err := limiter.Check(context.Background(), "user-1", 1_000_000_000)

	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Zero(t, decision.DailyRequestsUsed)
	assert.Zero(t, decision.DailyLamportsUsed)
}

func TestLimiter_PerRequestCeilingSkipsStore(t *testing.T) {
	limiter, mock := newLimiter(t)
	// No HMGet expectation: the per-request check must decide before any
	// store read, so the reported usage stays zero.

	decision, err := limiter.Check(context.Background(), "user-1", 2_500_000_000)

	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, domain.DenialPerRequest, decision.Reason)
	assert.Zero(t, decision.DailyRequestsUsed)
	assert.Zero(t, decision.DailyLamportsUsed)
	assert.Equal(t, int64(2_500_000_000), decision.RequestedLamports)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLimiter_DailyRequestLimit(t *testing.T) {
	limiter, mock := newLimiter(t)
	mock.ExpectHMGet("airdrop_usage:user-1:2025-03-15", "count", "volume").
		SetVal([]interface{}{"50", "10000000000"})

	decision, err := limiter.Check(context.Background(), "user-1", 1_000_000_000)

	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, domain.DenialDailyRequests, decision.Reason)
	assert.Equal(t, int64(50), decision.DailyRequestsUsed)
}

func TestLimiter_RequestCountWinsOverVolume(t *testing.T) {
	limiter, mock := newLimiter(t)
	// Both ceilings are breached; the count check runs first and names the
	// denial.
	mock.ExpectHMGet("airdrop_usage:user-1:2025-03-15", "count", "volume").
		SetVal([]interface{}{"50", "24000000000"})

	decision, err := limiter.Check(context.Background(), "user-1", 1_000_000_000)

	require.NoError(t, err)
	assert.Equal(t, domain.DenialDailyRequests, decision.Reason)
}

func TestLimiter_DailyVolumeLimit(t *testing.T) {
	limiter, mock := newLimiter(t)
	// 23 SOL used; 2 more would cross the 24 SOL ceiling.
	mock.ExpectHMGet("airdrop_usage:user-1:2025-03-15", "count", "volume").
		SetVal([]interface{}{"12", "23000000000"})

	decision, err := limiter.Check(context.Background(), "user-1", 2_000_000_000)

	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, domain.DenialDailyVolume, decision.Reason)
	assert.Equal(t, int64(23_000_000_000), decision.DailyLamportsUsed)
}

func TestLimiter_ExactVolumeBoundaryAllowed(t *testing.T) {
	limiter, mock := newLimiter(t)
	// 22 SOL used + 2 SOL requested lands exactly on the 24 SOL limit,
	// which is still inside the allowance.
	mock.ExpectHMGet("airdrop_usage:user-1:2025-03-15", "count", "volume").
		SetVal([]interface{}{"11", "22000000000"})

	decision, err := limiter.Check(context.Background(), "user-1", 2_000_000_000)

	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestLimiter_StoreErrorFailsClosed(t *testing.T) {
	limiter, mock := newLimiter(t)
	mock.ExpectHMGet("airdrop_usage:user-1:2025-03-15", "count", "volume").
		SetErr(errors.New("connection refused"))

	decision, err := limiter.Check(context.Background(), "user-1", 1_000_000_000)

	require.Error(t, err)
	assert.ErrorIs(t, err, appusage.ErrCheckUnavailable)
	assert.False(t, decision.Allowed)
}

func TestLimiter_ZeroVolumeRequests(t *testing.T) {
	// API-key metering uses a count-only policy; volume never applies.
	client, mock := redismock.NewClientMock()
	limiter := appusage.NewLimiter(
		client,
		logrus.New(),
		common.ApiKeyUsageDomain,
		domain.Policy{MaxLamportsPerRequest: 1, DailyRequestLimit: 10000},
		&appusage.LimiterOpts{TimeProvider: fixedTime},
	)
	mock.ExpectHMGet("apikey_usage:key-9:2025-03-15", "count", "volume").
		SetVal([]interface{}{"9999", nil})

	decision, err := limiter.Check(context.Background(), "key-9", 0)

	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, int64(9999), decision.DailyRequestsUsed)
}
