package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	domainerrors "github.com/solport/devportal/pkg/domain"
	domain "github.com/solport/devportal/pkg/domain/project"
	"github.com/solport/devportal/pkg/middleware"
)

type deleteProjectHandler struct {
	logger      *logrus.Logger
	projectRepo domain.Repository
}

func NewDeleteProjectHandler(logger *logrus.Logger, projectRepo domain.Repository) Handler {
	return &deleteProjectHandler{
		logger:      logger,
		projectRepo: projectRepo,
	}
}

// Handle @Summary Delete a project
// @Description Deletes one of the authenticated user's projects
// @Tags Projects
// @Param Authorization header string true "Authorization token"
// @Param project_id path string true "Project ID"
// @Success 204 "Project deleted"
// @Failure 404 {object} map[string]interface{} "Project not found"
// @Router /api/v1/projects/{project_id} [delete]
func (s *deleteProjectHandler) Handle(c *fiber.Ctx) error {
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

	if err := s.projectRepo.Delete(c.Context(), projectID); err != nil {
		s.logger.WithError(err).Error("failed to delete project")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete project"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
