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

type createProjectHandler struct {
	logger      *logrus.Logger
	projectRepo domain.Repository
}

func NewCreateProjectHandler(logger *logrus.Logger, projectRepo domain.Repository) Handler {
	return &createProjectHandler{
		logger:      logger,
		projectRepo: projectRepo,
	}
}

type createProjectRequest struct {
	Name        string `json:"name"`
	Cluster     string `json:"cluster"`
	Description string `json:"description,omitempty"`
}

// Handle @Summary Create a project
// @Description Creates a project to group the authenticated user's programs
// @Tags Projects
// @Accept json
// @Produce json
// @Param Authorization header string true "Authorization token"
// @Param project body createProjectRequest true "Project request body"
// @Success 201 {object} project.Project "Project created"
// @Failure 400 {object} map[string]interface{} "Invalid request data"
// @Failure 409 {object} map[string]interface{} "Project name already in use"
// @Router /api/v1/projects [post]
func (s *createProjectHandler) Handle(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user identity"})
	}

	var req createProjectRequest
	if err := c.BodyParser(&req); err != nil {
		s.logger.WithError(err).Error("failed to bind request")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrInvalidJsonPayload})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}

	id, err := uuid.NewV6()
	if err != nil {
		s.logger.WithError(err).Error("failed to generate UUID")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to generate UUID"})
	}

	entity := &domain.Project{
		ID:          id,
		UserID:      userID,
		Name:        req.Name,
		Cluster:     req.Cluster,
		Description: req.Description,
	}
	if entity.Cluster == "" {
		entity.Cluster = "devnet"
	}

	if err := s.projectRepo.Save(c.Context(), entity); err != nil {
		if errors.Is(err, domainerrors.ErrProjectExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		s.logger.WithError(err).Error("failed to save project")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create project"})
	}

	return c.Status(fiber.StatusCreated).JSON(entity)
}
