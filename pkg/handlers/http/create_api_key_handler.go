package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	appapikey "github.com/solport/devportal/pkg/app/apikey"
	"github.com/solport/devportal/pkg/middleware"
)

type createAPIKeyHandler struct {
	logger  *logrus.Logger
	creator *appapikey.Creator
}

func NewCreateAPIKeyHandler(logger *logrus.Logger, creator *appapikey.Creator) Handler {
	return &createAPIKeyHandler{
		logger:  logger,
		creator: creator,
	}
}

type createAPIKeyRequest struct {
	Name      string     `json:"name"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Handle @Summary Create a new API key
// @Description Generates a new API key for the authenticated user. The secret is only returned once.
// @Tags API Keys
// @Accept json
// @Produce json
// @Param Authorization header string true "Authorization token"
// @Param api_key body createAPIKeyRequest true "API key request body"
// @Success 201 {object} apikey.CreatedKey "API key created successfully"
// @Failure 400 {object} map[string]interface{} "Invalid request data"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /api/v1/api-keys [post]
func (s *createAPIKeyHandler) Handle(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user identity"})
	}

	var req createAPIKeyRequest
	if err := c.BodyParser(&req); err != nil {
		s.logger.WithError(err).Error("failed to bind request")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrInvalidJsonPayload})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}
	if req.ExpiresAt != nil && req.ExpiresAt.Before(time.Now()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "expires_at must be in the future"})
	}

	created, err := s.creator.Create(c.Context(), userID, req.Name, req.ExpiresAt)
	if err != nil {
		s.logger.WithError(err).Error("failed to create API key")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create API key"})
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}
