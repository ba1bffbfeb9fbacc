package http_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/go-redis/redismock/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appusage "github.com/solport/devportal/pkg/app/usage"
	"github.com/solport/devportal/pkg/common"
	domainerrors "github.com/solport/devportal/pkg/domain"
	"github.com/solport/devportal/pkg/domain/apikey"
	domain "github.com/solport/devportal/pkg/domain/usage"
	handlers "github.com/solport/devportal/pkg/handlers/http"
	"github.com/solport/devportal/pkg/infra/cache"
)

type fakeKeyStore struct {
	byID map[uuid.UUID]*apikey.APIKey
}

func (f *fakeKeyStore) Save(ctx context.Context, key *apikey.APIKey) error { return nil }

func (f *fakeKeyStore) GetByDigest(ctx context.Context, digest string) (*apikey.APIKey, error) {
	return nil, domainerrors.NewNotFoundError("api key", digest)
}

func (f *fakeKeyStore) GetByID(ctx context.Context, id uuid.UUID) (*apikey.APIKey, error) {
	key, ok := f.byID[id]
	if !ok {
		return nil, domainerrors.NewNotFoundError("api key", id.String())
	}
	return key, nil
}

func (f *fakeKeyStore) ListByUser(ctx context.Context, userID string) ([]apikey.APIKey, error) {
	return nil, nil
}

func (f *fakeKeyStore) Revoke(ctx context.Context, id uuid.UUID) error { return nil }

func apiUsagePolicy() domain.Policy {
	return domain.Policy{DailyRequestLimit: 10000}
}

func newKeyUsageApp(t *testing.T, keys *fakeKeyStore) (*fiber.App, redismock.ClientMock) {
	t.Helper()
	logger := logrus.New()
	client, mock := redismock.NewClientMock()
	reporter := appusage.NewReporter(client, nil, logger, common.ApiKeyUsageDomain, apiUsagePolicy(),
		&appusage.ReporterOpts{TimeProvider: fixedTime})
	handler := handlers.NewGetAPIKeyUsageHandler(logger, keys, reporter)

	app := fiber.New()
	app.Use(func(ctx *fiber.Ctx) error {
		ctx.Locals(common.UserIDContextKey, "user-1")
		return ctx.Next()
	})
	app.Get("/api/v1/api-keys/:key_id/usage", handler.Handle)
	return app, mock
}

func getKeyUsage(t *testing.T, app *fiber.App, keyID string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/api-keys/"+keyID+"/usage", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	payload := map[string]interface{}{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return resp.StatusCode, payload
}

func TestGetAPIKeyUsageHandler_ReturnsKeyCounters(t *testing.T) {
	keyID, err := uuid.NewV6()
	require.NoError(t, err)
	keys := &fakeKeyStore{byID: map[uuid.UUID]*apikey.APIKey{
		keyID: {ID: keyID, UserID: "user-1", Name: "ci", Active: true},
	}}
	app, mock := newKeyUsageApp(t, keys)

	identity := keyID.String()
	mock.ExpectHGetAll(cache.UsageKey(common.ApiKeyUsageDomain, identity, domain.Day(fixedNow))).
		SetVal(map[string]string{"count": "42", "volume": "0"})
	mock.ExpectHGetAll(cache.UsageKey(common.ApiKeyUsageDomain, identity, domain.ScopeLifetime)).
		SetVal(map[string]string{"count": "1200", "volume": "0"})

	status, payload := getKeyUsage(t, app, identity)

	assert.Equal(t, fiber.StatusOK, status)
	today := payload["today"].(map[string]interface{})
	lifetime := payload["lifetime"].(map[string]interface{})
	assert.Equal(t, float64(42), today["count"])
	assert.Equal(t, float64(1200), lifetime["count"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAPIKeyUsageHandler_ForeignKeyIsNotFound(t *testing.T) {
	keyID, err := uuid.NewV6()
	require.NoError(t, err)
	keys := &fakeKeyStore{byID: map[uuid.UUID]*apikey.APIKey{
		keyID: {ID: keyID, UserID: "user-2", Name: "theirs", Active: true},
	}}
	app, mock := newKeyUsageApp(t, keys)

	status, _ := getKeyUsage(t, app, keyID.String())

	assert.Equal(t, fiber.StatusNotFound, status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAPIKeyUsageHandler_UnknownKey(t *testing.T) {
	keyID, err := uuid.NewV6()
	require.NoError(t, err)
	app, mock := newKeyUsageApp(t, &fakeKeyStore{byID: map[uuid.UUID]*apikey.APIKey{}})

	status, _ := getKeyUsage(t, app, keyID.String())

	assert.Equal(t, fiber.StatusNotFound, status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAPIKeyUsageHandler_InvalidKeyID(t *testing.T) {
	app, _ := newKeyUsageApp(t, &fakeKeyStore{})

	status, _ := getKeyUsage(t, app, "not-a-uuid")

	assert.Equal(t, fiber.StatusBadRequest, status)
}
