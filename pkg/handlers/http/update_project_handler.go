package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	domainerrors "github.com/solport/devportal/pkg/domain"
	domain "github.com/solport/devportal/pkg/domain/project"
	"github.com/solport/devportal/pkg/middleware"
)

type updateProjectHandler struct {
	logger      *logrus.Logger
	projectRepo domain.Repository
}

func NewUpdateProjectHandler(logger *logrus.Logger, projectRepo domain.Repository) Handler {
	return &updateProjectHandler{
		logger:      logger,
		projectRepo: projectRepo,
	}
}

type updateProjectRequest struct {
	Name        *string `json:"name,omitempty"`
	Cluster     *string `json:"cluster,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Handle @Summary Update a project
// @Description Updates one of the authenticated user's projects
// @Tags Projects
// @Accept json
// @Produce json
// @Param Authorization header string true "Authorization token"
// @Param project_id path string true "Project ID"
// @Param project body updateProjectRequest true "Fields to update"
// @Success 200 {object} project.Project "Updated project"
// @Failure 404 {object} map[string]interface{} "Project not found"
// @Failure 409 {object} map[string]interface{} "Project name already in use"
// @Router /api/v1/projects/{project_id} [put]
func (s *updateProjectHandler) Handle(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user identity"})
	}

	projectID, err := uuid.Parse(c.Params("project_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid project ID"})
	}

	var req updateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		s.logger.WithError(err).Error("failed to bind request")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrInvalidJsonPayload})
	}
	if req.Name != nil && *req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name must not be empty"})
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

	if req.Name != nil {
		entity.Name = *req.Name
	}
	if req.Cluster != nil {
		entity.Cluster = *req.Cluster
	}
	if req.Description != nil {
		entity.Description = *req.Description
	}

	if err := s.projectRepo.Update(c.Context(), entity); err != nil {
		if errors.Is(err, domainerrors.ErrProjectExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		s.logger.WithError(err).Error("failed to update project")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update project"})
	}

	return c.Status(fiber.StatusOK).JSON(entity)
}
