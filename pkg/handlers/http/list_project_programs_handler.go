package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	domainerrors "github.com/solport/devportal/pkg/domain"
	programdomain "github.com/solport/devportal/pkg/domain/program"
	domain "github.com/solport/devportal/pkg/domain/project"
	"github.com/solport/devportal/pkg/middleware"
)

type listProjectProgramsHandler struct {
	logger      *logrus.Logger
	projectRepo domain.Repository
	programRepo programdomain.Repository
}

func NewListProjectProgramsHandler(
	logger *logrus.Logger,
	projectRepo domain.Repository,
	programRepo programdomain.Repository,
) Handler {
	return &listProjectProgramsHandler{
		logger:      logger,
		projectRepo: projectRepo,
		programRepo: programRepo,
	}
}

// Handle @Summary List a project's programs
// @Description Lists the programs linked to one of the authenticated user's projects
// @Tags Projects
// @Produce json
// @Param Authorization header string true "Authorization token"
// @Param project_id path string true "Project ID"
// @Success 200 {array} program.Program "Programs"
// @Failure 404 {object} map[string]interface{} "Project not found"
// @Router /api/v1/projects/{project_id}/programs [get]
func (s *listProjectProgramsHandler) Handle(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user identity"})
	}

	projectID, err := uuid.Parse(c.Params("project_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid project ID"})
	}

	entity, err := s.projectRepo.GetByID(c.Context(), projectID)
	if err != nil {
		if domainerrors.IsNotFoundError(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "project not found"})
		}
		s.logger.WithError(err).Error("failed to load project")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load project"})
	}
	if entity.UserID != userID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "project not found"})
	}

	programs, err := s.programRepo.ListByProject(c.Context(), projectID)
	if err != nil {
		s.logger.WithError(err).Error("failed to list project programs")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list programs"})
	}

	return c.Status(fiber.StatusOK).JSON(programs)
}
