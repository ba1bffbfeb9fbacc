package middleware_test

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appusage "github.com/solport/devportal/pkg/app/usage"
	"github.com/solport/devportal/pkg/common"
	domain "github.com/solport/devportal/pkg/domain/usage"
	"github.com/solport/devportal/pkg/middleware"
)

var fixedNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func fixedTime() time.Time { return fixedNow }

const apiKeyTTL = 90 * 24 * time.Hour

func newMeteredApp(t *testing.T, keyID string) (*fiber.App, redismock.ClientMock, *appusage.Tracker) {
	t.Helper()
	logger := logrus.New()
	client, mock := redismock.NewClientMock()
	limiter := appusage.NewLimiter(
		client,
		logger,
		common.ApiKeyUsageDomain,
		domain.Policy{MaxLamportsPerRequest: 1, DailyRequestLimit: 10000},
		&appusage.LimiterOpts{TimeProvider: fixedTime},
	)
	tracker := appusage.NewTracker(client, logger, common.ApiKeyUsageDomain, apiKeyTTL,
		&appusage.TrackerOpts{TimeProvider: fixedTime})

	app := fiber.New()
	app.Use(func(ctx *fiber.Ctx) error {
		if keyID != "" {
			ctx.Locals(common.UserIDContextKey, "user-1")
			ctx.Locals(common.ApiKeyIdContextKey, keyID)
			ctx.Locals(common.AuthMethodContextKey, common.AuthMethodApiKey)
		}
		return ctx.Next()
	})
	app.Use(middleware.NewMeteringMiddleware(logger, limiter, tracker).Middleware())
	app.Get("/api/v1/usage", func(ctx *fiber.Ctx) error {
		return ctx.SendStatus(fiber.StatusOK)
	})
	return app, mock, tracker
}

func TestMetering_AllowsAndRecords(t *testing.T) {
	app, mock, tracker := newMeteredApp(t, "key-1")

	mock.ExpectHMGet("apikey_usage:key-1:2025-03-15", "count", "volume").
		SetVal([]interface{}{"5", nil})

	totalKey := "apikey_usage:key-1:total"
	dailyKey := "apikey_usage:key-1:2025-03-15"
	route := "/api/v1/usage"
	mock.ExpectTxPipeline()
	mock.ExpectHIncrBy(totalKey, "count", 1).SetVal(6)
	mock.ExpectHIncrBy(totalKey, "volume", 0).SetVal(0)
	mock.ExpectHSet(totalKey, "last_used_at", fixedNow.Format(time.RFC3339)).SetVal(1)
	mock.ExpectHIncrBy(totalKey, "sub:"+route+":count", 1).SetVal(6)
	mock.ExpectHIncrBy(totalKey, "sub:"+route+":volume", 0).SetVal(0)
	mock.ExpectExpire(totalKey, apiKeyTTL).SetVal(true)
	mock.ExpectTxPipelineExec()
	mock.ExpectTxPipeline()
	mock.ExpectHIncrBy(dailyKey, "count", 1).SetVal(6)
	mock.ExpectHIncrBy(dailyKey, "volume", 0).SetVal(0)
	mock.ExpectHSet(dailyKey, "last_used_at", fixedNow.Format(time.RFC3339)).SetVal(1)
	mock.ExpectHIncrBy(dailyKey, "sub:"+route+":count", 1).SetVal(6)
	mock.ExpectHIncrBy(dailyKey, "sub:"+route+":volume", 0).SetVal(0)
	mock.ExpectTxPipelineExec()

	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/usage", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	tracker.Wait()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMetering_DeniesOverQuota(t *testing.T) {
	app, mock, _ := newMeteredApp(t, "key-1")

	mock.ExpectHMGet("apikey_usage:key-1:2025-03-15", "count", "volume").
		SetVal([]interface{}{"10000", nil})

	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/usage", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestMetering_FailsClosedOnStoreError(t *testing.T) {
	app, mock, _ := newMeteredApp(t, "key-1")

	mock.ExpectHMGet("apikey_usage:key-1:2025-03-15", "count", "volume").
		SetErr(errors.New("connection refused"))

	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/usage", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestMetering_SkipsJWTSessions(t *testing.T) {
	// No key id in the session: the request passes through unmetered and
	// no store call happens.
	app, mock, _ := newMeteredApp(t, "")

	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/usage", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}
