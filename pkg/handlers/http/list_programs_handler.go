package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	domain "github.com/solport/devportal/pkg/domain/program"
	"github.com/solport/devportal/pkg/middleware"
)

type listProgramsHandler struct {
	logger      *logrus.Logger
	programRepo domain.Repository
}

func NewListProgramsHandler(logger *logrus.Logger, programRepo domain.Repository) Handler {
	return &listProgramsHandler{
		logger:      logger,
		programRepo: programRepo,
	}
}

// Handle @Summary List programs
// @Description Lists the authenticated user's registered programs
// @Tags Programs
// @Produce json
// @Param Authorization header string true "Authorization token"
// @Success 200 {array} program.Program "Programs"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /api/v1/programs [get]
func (s *listProgramsHandler) Handle(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user identity"})
	}

	programs, err := s.programRepo.ListByUser(c.Context(), userID)
	if err != nil {
		s.logger.WithError(err).Error("failed to list programs")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list programs"})
	}

	return c.Status(fiber.StatusOK).JSON(programs)
}
