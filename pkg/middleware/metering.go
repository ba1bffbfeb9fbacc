package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	appusage "github.com/solport/devportal/pkg/app/usage"
	"github.com/solport/devportal/pkg/common"
	domainerrors "github.com/solport/devportal/pkg/domain"
	"github.com/solport/devportal/pkg/infra/prometheus"
)

// meteringMiddleware rate-limits and counts API calls made with an API
// key, in the apikey usage domain (sub-key = route path). Dashboard JWT
// sessions pass through unmetered.
type meteringMiddleware struct {
	logger  *logrus.Logger
	limiter *appusage.Limiter
	tracker *appusage.Tracker
}

func NewMeteringMiddleware(
	logger *logrus.Logger,
	limiter *appusage.Limiter,
	tracker *appusage.Tracker,
) Middleware {
	return &meteringMiddleware{
		logger:  logger,
		limiter: limiter,
		tracker: tracker,
	}
}

func (m *meteringMiddleware) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		keyID := ApiKeyID(ctx)
		if keyID == "" {
			return ctx.Next()
		}

		decision, err := m.limiter.Check(ctx.Context(), keyID, 0)
		if err != nil {
			// Fail closed: an unverifiable quota must not become an
			// unlimited one.
			m.logger.WithError(err).Error("api usage admission check unavailable")
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "rate limiting temporarily unavailable",
			})
		}
		if !decision.Allowed {
			prometheus.AdmissionDeniedTotal.WithLabelValues(common.ApiKeyUsageDomain, decision.Reason).Inc()
			denied := &domainerrors.AdmissionDeniedError{Decision: decision}
			return ctx.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":    denied.Error(),
				"decision": decision,
			})
		}

		err = ctx.Next()

		if err == nil && ctx.Response().StatusCode() < fiber.StatusInternalServerError {
			m.tracker.RecordDetached(keyID, 0, ctx.Route().Path)
		}
		return err
	}
}
