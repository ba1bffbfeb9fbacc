package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	appapikey "github.com/solport/devportal/pkg/app/apikey"
	"github.com/solport/devportal/pkg/common"
	domainapikey "github.com/solport/devportal/pkg/domain/apikey"
	"github.com/solport/devportal/pkg/infra/jwt"
)

const apiKeyHeader = "X-Api-Key"

// authMiddleware authenticates with either a portal API key
// (Authorization: Bearer sk_... or X-Api-Key) or a dashboard JWT
// (Authorization: Bearer <token>). Both resolve to a user id; API keys
// additionally attach the key id so usage can be metered per key.
type authMiddleware struct {
	logger    *logrus.Logger
	keyFinder appapikey.Finder
	jwt       jwt.Validator
}

func NewAuthMiddleware(
	logger *logrus.Logger,
	keyFinder appapikey.Finder,
	jwtValidator jwt.Validator,
) Middleware {
	return &authMiddleware{
		logger:    logger,
		keyFinder: keyFinder,
		jwt:       jwtValidator,
	}
}

func (m *authMiddleware) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if secret := extractApiKey(ctx); secret != "" {
			return m.authenticateApiKey(ctx, secret)
		}
		if token := extractBearer(ctx); token != "" {
			return m.authenticateJWT(ctx, token)
		}
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
	}
}

func (m *authMiddleware) authenticateApiKey(ctx *fiber.Ctx, secret string) error {
	key, err := m.keyFinder.Find(ctx.Context(), secret)
	if err != nil {
		m.logger.WithError(err).Debug("api key lookup failed")
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid API key"})
	}
	if !key.IsValid() {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid API key"})
	}

	ctx.Locals(common.UserIDContextKey, key.UserID)
	ctx.Locals(common.ApiKeyIdContextKey, key.ID.String())
	ctx.Locals(common.AuthMethodContextKey, common.AuthMethodApiKey)
	return ctx.Next()
}

func (m *authMiddleware) authenticateJWT(ctx *fiber.Ctx, token string) error {
	userID, err := m.jwt.Subject(token)
	if err != nil {
		m.logger.WithError(err).Debug("jwt validation failed")
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
	}

	ctx.Locals(common.UserIDContextKey, userID)
	ctx.Locals(common.AuthMethodContextKey, common.AuthMethodJWT)
	return ctx.Next()
}

func extractApiKey(ctx *fiber.Ctx) string {
	if auth := ctx.Get(fiber.HeaderAuthorization); strings.HasPrefix(auth, "Bearer "+domainapikey.SecretPrefix) {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ctx.Get(apiKeyHeader)
}

func extractBearer(ctx *fiber.Ctx) string {
	auth := ctx.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// UserID returns the authenticated user id stored by the auth middleware.
func UserID(ctx *fiber.Ctx) string {
	if v, ok := ctx.Locals(common.UserIDContextKey).(string); ok {
		return v
	}
	return ""
}

// ApiKeyID returns the authenticated key id, or "" for JWT sessions.
func ApiKeyID(ctx *fiber.Ctx) string {
	if v, ok := ctx.Locals(common.ApiKeyIdContextKey).(string); ok {
		return v
	}
	return ""
}
