package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	appairdrop "github.com/solport/devportal/pkg/app/airdrop"
	appapikey "github.com/solport/devportal/pkg/app/apikey"
	"github.com/solport/devportal/pkg/app/scheduler"
	appusage "github.com/solport/devportal/pkg/app/usage"
	"github.com/solport/devportal/pkg/common"
	"github.com/solport/devportal/pkg/config"
	handlers "github.com/solport/devportal/pkg/handlers/http"
	"github.com/solport/devportal/pkg/infra/cache"
	"github.com/solport/devportal/pkg/infra/database"
	infrajwt "github.com/solport/devportal/pkg/infra/jwt"
	infralogger "github.com/solport/devportal/pkg/infra/logger"
	"github.com/solport/devportal/pkg/infra/repository"
	"github.com/solport/devportal/pkg/infra/solana"
	"github.com/solport/devportal/pkg/middleware"
	"github.com/solport/devportal/pkg/server"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	logger := infralogger.NewLogger()

	if err := config.Load("./config"); err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	cfg := config.GetConfig()

	airdropPolicy, err := cfg.Airdrop.Policy()
	if err != nil {
		logger.Fatalf("invalid airdrop configuration: %v", err)
	}
	apiUsagePolicy := cfg.APIUsage.Policy()

	db, err := database.NewDB(logger, &database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		logger.Fatalf("failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.WithError(err).Error("failed to close database connection")
		}
	}()

	cacheClient, err := cache.NewClient(cache.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TLS:      cfg.Redis.TLS,
	}, logger)
	if err != nil {
		logger.Fatalf("failed to connect to redis: %v", err)
	}
	cacheClient.CreateTTLMap(cache.ApiKeyTTLName, 5*time.Minute)
	redisClient := cacheClient.RedisClient()

	apiKeyRepo := repository.NewApiKeyRepository(db.DB)
	programRepo := repository.NewProgramRepository(db.DB)
	projectRepo := repository.NewProjectRepository(db.DB)
	usageRepo := repository.NewUsageRepository(db.DB)

	counterTTL := time.Duration(cfg.Scheduler.CounterTTLDays) * 24 * time.Hour

	airdropTracker := appusage.NewTracker(redisClient, logger, common.AirdropUsageDomain, counterTTL, nil)
	airdropLimiter := appusage.NewLimiter(redisClient, logger, common.AirdropUsageDomain, airdropPolicy, nil)
	airdropReporter := appusage.NewReporter(redisClient, usageRepo, logger, common.AirdropUsageDomain, airdropPolicy, nil)

	apiUsageTracker := appusage.NewTracker(redisClient, logger, common.ApiKeyUsageDomain, counterTTL, nil)
	apiUsageLimiter := appusage.NewLimiter(redisClient, logger, common.ApiKeyUsageDomain, apiUsagePolicy, nil)
	apiUsageReporter := appusage.NewReporter(redisClient, usageRepo, logger, common.ApiKeyUsageDomain, apiUsagePolicy, nil)

	rpcClient := solana.NewClient(solana.Config{
		RPCURL:  cfg.Solana.RPCURL,
		Timeout: time.Duration(cfg.Solana.TimeoutSeconds) * time.Second,
	}, logger)

	airdropRequester := appairdrop.NewRequester(rpcClient, airdropLimiter, airdropTracker, logger)

	keyFinder := appapikey.NewFinder(apiKeyRepo, cacheClient, logger)
	keyCreator := appapikey.NewCreator(apiKeyRepo, logger)
	keyRevoker := appapikey.NewRevoker(apiKeyRepo, cacheClient, logger)

	usageDomains := []string{common.AirdropUsageDomain, common.ApiKeyUsageDomain}
	syncJob := scheduler.NewSyncJob(cacheClient, usageRepo, logger, usageDomains, nil)
	archivalJob := scheduler.NewArchivalJob(cacheClient, usageRepo, logger, usageDomains, cfg.Scheduler.ArchiveRetentionDays, nil)
	sched, err := scheduler.New(
		syncJob,
		archivalJob,
		logger,
		time.Duration(cfg.Scheduler.SyncIntervalMinutes)*time.Minute,
		cfg.Scheduler.ArchivalHourUTC,
	)
	if err != nil {
		logger.Fatalf("invalid scheduler configuration: %v", err)
	}
	sched.Start(ctx)

	middlewareTransport := &middleware.Transport{
		AuthMiddleware:     middleware.NewAuthMiddleware(logger, keyFinder, infrajwt.NewValidator(cfg.Auth.JWTSecret)),
		MeteringMiddleware: middleware.NewMeteringMiddleware(logger, apiUsageLimiter, apiUsageTracker),
		MetricsMiddleware:  middleware.NewMetricsMiddleware(logger),
	}

	handlerTransport := handlers.HandlerTransport{
		AirdropHandler:         handlers.NewAirdropHandler(logger, airdropRequester),
		GetUsageHandler:        handlers.NewGetUsageHandler(logger, airdropReporter),
		GetUsageHistoryHandler: handlers.NewGetUsageHistoryHandler(logger, airdropReporter),
		GetBalanceHandler:      handlers.NewGetBalanceHandler(logger, rpcClient),
		CreateAPIKeyHandler:    handlers.NewCreateAPIKeyHandler(logger, keyCreator),
		ListAPIKeysHandler:     handlers.NewListAPIKeysHandler(logger, apiKeyRepo),
		RevokeAPIKeyHandler:    handlers.NewRevokeAPIKeyHandler(logger, keyRevoker),
		GetAPIKeyUsageHandler:  handlers.NewGetAPIKeyUsageHandler(logger, apiKeyRepo, apiUsageReporter),
		CreateProgramHandler:   handlers.NewCreateProgramHandler(logger, programRepo, projectRepo),
		ListProgramsHandler:    handlers.NewListProgramsHandler(logger, programRepo),
		GetProgramHandler:      handlers.NewGetProgramHandler(logger, programRepo),

		CreateProjectHandler:       handlers.NewCreateProjectHandler(logger, projectRepo),
		ListProjectsHandler:        handlers.NewListProjectsHandler(logger, projectRepo),
		GetProjectHandler:          handlers.NewGetProjectHandler(logger, projectRepo),
		UpdateProjectHandler:       handlers.NewUpdateProjectHandler(logger, projectRepo),
		DeleteProjectHandler:       handlers.NewDeleteProjectHandler(logger, projectRepo),
		ListProjectProgramsHandler: handlers.NewListProjectProgramsHandler(logger, projectRepo, programRepo),

		RunJobHandler: handlers.NewRunJobHandler(logger, sched),
	}

	srv := server.NewApiServer(server.ApiServerDI{
		MiddlewareTransport: middlewareTransport,
		HandlerTransport:    handlerTransport,
		Config:              cfg,
		Logger:              logger,
	})

	go func() {
		if err := srv.Run(); err != nil {
			logger.WithError(err).Fatal("server exited")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	cancel()
	if err := srv.Shutdown(); err != nil {
		logger.WithError(err).Error("failed to shut down server")
	}
	// Detached usage records must land before the process exits.
	airdropTracker.Wait()
	apiUsageTracker.Wait()
	logger.Info("shutdown complete")
}
