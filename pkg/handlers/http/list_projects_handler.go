package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	domain "github.com/solport/devportal/pkg/domain/project"
	"github.com/solport/devportal/pkg/middleware"
)

type listProjectsHandler struct {
	logger      *logrus.Logger
	projectRepo domain.Repository
}

func NewListProjectsHandler(logger *logrus.Logger, projectRepo domain.Repository) Handler {
	return &listProjectsHandler{
		logger:      logger,
		projectRepo: projectRepo,
	}
}

// Handle @Summary List projects
// @Description Lists the authenticated user's projects
// @Tags Projects
// @Produce json
// @Param Authorization header string true "Authorization token"
// @Success 200 {array} project.Project "Projects"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /api/v1/projects [get]
func (s *listProjectsHandler) Handle(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user identity"})
	}

	projects, err := s.projectRepo.ListByUser(c.Context(), userID)
	if err != nil {
		s.logger.WithError(err).Error("failed to list projects")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list projects"})
	}

	return c.Status(fiber.StatusOK).JSON(projects)
}
