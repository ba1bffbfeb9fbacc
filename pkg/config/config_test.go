package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solport/devportal/pkg/config"
)

func TestLoadDefaults(t *testing.T) {
	require.NoError(t, config.Load(t.TempDir()))
	cfg := config.GetConfig()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 9090, cfg.Server.MetricsPort)
	assert.Equal(t, "https://api.devnet.solana.com", cfg.Solana.RPCURL)
	assert.Equal(t, "2", cfg.Airdrop.MaxSolPerRequest)
	assert.Equal(t, "24", cfg.Airdrop.DailySolLimit)
	assert.Equal(t, int64(50), cfg.Airdrop.DailyRequestLimit)
	assert.Equal(t, 10, cfg.Scheduler.SyncIntervalMinutes)
	assert.Equal(t, 365, cfg.Scheduler.ArchiveRetentionDays)
	assert.Equal(t, 90, cfg.Scheduler.CounterTTLDays)
}

func TestAirdropPolicy(t *testing.T) {
	cfg := config.AirdropConfig{
		MaxSolPerRequest:  "2",
		DailySolLimit:     "24",
		DailyRequestLimit: 50,
	}

	policy, err := cfg.Policy()

	require.NoError(t, err)
	assert.Equal(t, int64(2_000_000_000), policy.MaxLamportsPerRequest)
	assert.Equal(t, int64(24_000_000_000), policy.DailyLamportsLimit)
	assert.Equal(t, int64(50), policy.DailyRequestLimit)
}

func TestAirdropPolicy_FractionalSol(t *testing.T) {
	cfg := config.AirdropConfig{
		MaxSolPerRequest:  "0.5",
		DailySolLimit:     "1.25",
		DailyRequestLimit: 10,
	}

	policy, err := cfg.Policy()

	require.NoError(t, err)
	assert.Equal(t, int64(500_000_000), policy.MaxLamportsPerRequest)
	assert.Equal(t, int64(1_250_000_000), policy.DailyLamportsLimit)
}

func TestAirdropPolicy_Invalid(t *testing.T) {
	_, err := config.AirdropConfig{MaxSolPerRequest: "abc", DailySolLimit: "24"}.Policy()
	assert.Error(t, err)

	_, err = config.AirdropConfig{MaxSolPerRequest: "0", DailySolLimit: "24"}.Policy()
	assert.Error(t, err)
}

func TestAPIUsagePolicy(t *testing.T) {
	policy := config.APIUsageConfig{DailyRequestLimit: 10000}.Policy()

	assert.NoError(t, policy.Validate())
	assert.Equal(t, int64(10000), policy.DailyRequestLimit)
	assert.Zero(t, policy.DailyLamportsLimit)
}
