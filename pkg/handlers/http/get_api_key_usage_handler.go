package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	appusage "github.com/solport/devportal/pkg/app/usage"
	domainerrors "github.com/solport/devportal/pkg/domain"
	domain "github.com/solport/devportal/pkg/domain/apikey"
	"github.com/solport/devportal/pkg/middleware"
)

type getAPIKeyUsageHandler struct {
	logger     *logrus.Logger
	apiKeyRepo domain.Repository
	reporter   *appusage.Reporter
}

func NewGetAPIKeyUsageHandler(
	logger *logrus.Logger,
	apiKeyRepo domain.Repository,
	reporter *appusage.Reporter,
) Handler {
	return &getAPIKeyUsageHandler{
		logger:     logger,
		apiKeyRepo: apiKeyRepo,
		reporter:   reporter,
	}
}

// Handle @Summary Get API key usage
// @Description Returns today's and lifetime call counters for one of the authenticated user's API keys
// @Tags API Keys
// @Produce json
// @Param Authorization header string true "Authorization token"
// @Param key_id path string true "API key ID"
// @Success 200 {object} usage.Stats "Current key usage"
// @Failure 404 {object} map[string]interface{} "API key not found"
// @Router /api/v1/api-keys/{key_id}/usage [get]
func (s *getAPIKeyUsageHandler) Handle(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user identity"})
	}

	keyID, err := uuid.Parse(c.Params("key_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid API key ID"})
	}

	key, err := s.apiKeyRepo.GetByID(c.Context(), keyID)
	if err != nil {
		if domainerrors.IsNotFoundError(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "api key not found"})
		}
		s.logger.WithError(err).Error("failed to load api key")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load api key"})
	}
	// Ownership is part of the lookup; a foreign key is a 404.
	if key.UserID != userID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "api key not found"})
	}

	stats, err := s.reporter.Stats(c.Context(), keyID.String())
	if err != nil {
		s.logger.WithError(err).Error("failed to read api key usage counters")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read usage"})
	}

	return c.Status(fiber.StatusOK).JSON(stats)
}
