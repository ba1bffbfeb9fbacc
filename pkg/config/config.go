package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/solport/devportal/pkg/domain/usage"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Solana    SolanaConfig    `mapstructure:"solana"`
	Airdrop   AirdropConfig   `mapstructure:"airdrop"`
	APIUsage  APIUsageConfig  `mapstructure:"api_usage"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Auth      AuthConfig      `mapstructure:"auth"`
}

type ServerConfig struct {
	Port        int    `mapstructure:"port"`
	MetricsPort int    `mapstructure:"metrics_port"`
	Host        string `mapstructure:"host"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TLS      bool   `mapstructure:"tls"`
}

type SolanaConfig struct {
	RPCURL         string `mapstructure:"rpc_url"`
	Cluster        string `mapstructure:"cluster"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// AirdropConfig carries the faucet rate-limit policy. SOL amounts are
// decimal strings so configuration never round-trips through floats.
type AirdropConfig struct {
	MaxSolPerRequest  string `mapstructure:"max_sol_per_request"`
	DailySolLimit     string `mapstructure:"daily_sol_limit"`
	DailyRequestLimit int64  `mapstructure:"daily_request_limit"`
}

// Policy converts the configured SOL ceilings into a lamport-denominated
// policy, validating it in the process.
func (c AirdropConfig) Policy() (usage.Policy, error) {
	maxPerRequest, err := usage.SolToLamports(c.MaxSolPerRequest)
	if err != nil {
		return usage.Policy{}, fmt.Errorf("invalid airdrop.max_sol_per_request: %w", err)
	}
	dailyLimit, err := usage.SolToLamports(c.DailySolLimit)
	if err != nil {
		return usage.Policy{}, fmt.Errorf("invalid airdrop.daily_sol_limit: %w", err)
	}
	policy := usage.Policy{
		MaxLamportsPerRequest: maxPerRequest,
		DailyLamportsLimit:    dailyLimit,
		DailyRequestLimit:     c.DailyRequestLimit,
	}
	if err := policy.Validate(); err != nil {
		return usage.Policy{}, fmt.Errorf("invalid airdrop policy: %w", err)
	}
	return policy, nil
}

// APIUsageConfig limits metered API calls per key. Volume does not apply
// to plain API calls, so only the request ceiling is configurable.
type APIUsageConfig struct {
	DailyRequestLimit int64 `mapstructure:"daily_request_limit"`
}

func (c APIUsageConfig) Policy() usage.Policy {
	return usage.Policy{
		// API calls carry no volume; any positive per-request cap works.
		MaxLamportsPerRequest: 1,
		DailyRequestLimit:     c.DailyRequestLimit,
	}
}

type SchedulerConfig struct {
	SyncIntervalMinutes  int `mapstructure:"sync_interval_minutes"`
	ArchivalHourUTC      int `mapstructure:"archival_hour_utc"`
	ArchiveRetentionDays int `mapstructure:"archive_retention_days"`
	CounterTTLDays       int `mapstructure:"counter_ttl_days"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

var globalConfig Config

func Load(configPath string) error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaultValues()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// No file is fine, environment variables and defaults apply.
	}

	if err := viper.Unmarshal(&globalConfig); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return nil
}

func setDefaultValues() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.metrics_port", 9090)
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("solana.rpc_url", "https://api.devnet.solana.com")
	viper.SetDefault("solana.cluster", "devnet")
	viper.SetDefault("solana.timeout_seconds", 15)
	viper.SetDefault("airdrop.max_sol_per_request", "2")
	viper.SetDefault("airdrop.daily_sol_limit", "24")
	viper.SetDefault("airdrop.daily_request_limit", 50)
	viper.SetDefault("api_usage.daily_request_limit", 10000)
	viper.SetDefault("scheduler.sync_interval_minutes", 10)
	viper.SetDefault("scheduler.archival_hour_utc", 0)
	viper.SetDefault("scheduler.archive_retention_days", 365)
	viper.SetDefault("scheduler.counter_ttl_days", 90)
}

func GetConfig() *Config {
	return &globalConfig
}
