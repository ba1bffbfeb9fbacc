package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	appapikey "github.com/solport/devportal/pkg/app/apikey"
	domainerrors "github.com/solport/devportal/pkg/domain"
	"github.com/solport/devportal/pkg/middleware"
)

type revokeAPIKeyHandler struct {
	logger  *logrus.Logger
	revoker *appapikey.Revoker
}

func NewRevokeAPIKeyHandler(logger *logrus.Logger, revoker *appapikey.Revoker) Handler {
	return &revokeAPIKeyHandler{
		logger:  logger,
		revoker: revoker,
	}
}

// Handle @Summary Revoke an API key
// @Description Revokes an API key owned by the authenticated user and drops it from the caches
// @Tags API Keys
// @Produce json
// @Param Authorization header string true "Authorization token"
// @Param key_id path string true "API key ID"
// @Success 204 "API key revoked"
// @Failure 400 {object} map[string]interface{} "Invalid key ID"
// @Failure 404 {object} map[string]interface{} "API key not found"
// @Router /api/v1/api-keys/{key_id} [delete]
func (s *revokeAPIKeyHandler) Handle(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user identity"})
	}

	keyID, err := uuid.Parse(c.Params("key_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid key ID"})
	}

	if err := s.revoker.Revoke(c.Context(), userID, keyID); err != nil {
		if domainerrors.IsNotFoundError(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "API key not found"})
		}
		s.logger.WithError(err).Error("failed to revoke API key")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to revoke API key"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
