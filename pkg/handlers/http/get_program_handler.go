package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	domainerrors "github.com/solport/devportal/pkg/domain"
	domain "github.com/solport/devportal/pkg/domain/program"
	"github.com/solport/devportal/pkg/middleware"
)

type getProgramHandler struct {
	logger      *logrus.Logger
	programRepo domain.Repository
}

func NewGetProgramHandler(logger *logrus.Logger, programRepo domain.Repository) Handler {
	return &getProgramHandler{
		logger:      logger,
		programRepo: programRepo,
	}
}

// Handle @Summary Get a program
// @Description Returns one of the authenticated user's registered programs
// @Tags Programs
// @Produce json
// @Param Authorization header string true "Authorization token"
// @Param program_id path string true "Program ID"
// @Success 200 {object} program.Program "Program"
// @Failure 404 {object} map[string]interface{} "Program not found"
// @Router /api/v1/programs/{program_id} [get]
func (s *getProgramHandler) Handle(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user identity"})
	}

	programID, err := uuid.Parse(c.Params("program_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid program ID"})
	}

	entity, err := s.programRepo.GetByID(c.Context(), programID)
	if err != nil {
		if domainerrors.IsNotFoundError(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "program not found"})
		}
		s.logger.WithError(err).Error("failed to load program")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load program"})
	}
	// Ownership is part of the lookup; a foreign program is a 404.
	if entity.UserID != userID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "program not found"})
	}

	return c.Status(fiber.StatusOK).JSON(entity)
}
