package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	domain "github.com/solport/devportal/pkg/domain/apikey"
	"github.com/solport/devportal/pkg/middleware"
)

type listAPIKeysHandler struct {
	logger     *logrus.Logger
	apiKeyRepo domain.Repository
}

func NewListAPIKeysHandler(logger *logrus.Logger, apiKeyRepo domain.Repository) Handler {
	return &listAPIKeysHandler{
		logger:     logger,
		apiKeyRepo: apiKeyRepo,
	}
}

// Handle @Summary List API keys
// @Description Lists the authenticated user's API keys. Secrets are never returned.
// @Tags API Keys
// @Produce json
// @Param Authorization header string true "Authorization token"
// @Success 200 {array} apikey.APIKey "API keys"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /api/v1/api-keys [get]
func (s *listAPIKeysHandler) Handle(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user identity"})
	}

	keys, err := s.apiKeyRepo.ListByUser(c.Context(), userID)
	if err != nil {
		s.logger.WithError(err).Error("failed to list API keys")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list API keys"})
	}

	return c.Status(fiber.StatusOK).JSON(keys)
}
