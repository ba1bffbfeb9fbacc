package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	appusage "github.com/solport/devportal/pkg/app/usage"
	"github.com/solport/devportal/pkg/middleware"
)

type getUsageHandler struct {
	logger   *logrus.Logger
	reporter *appusage.Reporter
}

func NewGetUsageHandler(logger *logrus.Logger, reporter *appusage.Reporter) Handler {
	return &getUsageHandler{
		logger:   logger,
		reporter: reporter,
	}
}

// Handle @Summary Get current usage
// @Description Returns today's and lifetime usage counters with the active limits
// @Tags Usage
// @Produce json
// @Param Authorization header string true "Authorization token"
// @Success 200 {object} usage.Stats "Current usage"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /api/v1/usage [get]
func (s *getUsageHandler) Handle(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user identity"})
	}

	stats, err := s.reporter.Stats(c.Context(), userID)
	if err != nil {
		s.logger.WithError(err).Error("failed to read usage counters")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read usage"})
	}

	return c.Status(fiber.StatusOK).JSON(stats)
}
