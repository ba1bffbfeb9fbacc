package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	domainerrors "github.com/solport/devportal/pkg/domain"
	domain "github.com/solport/devportal/pkg/domain/program"
	projectdomain "github.com/solport/devportal/pkg/domain/project"
	"github.com/solport/devportal/pkg/middleware"
)

type createProgramHandler struct {
	logger      *logrus.Logger
	programRepo domain.Repository
	projectRepo projectdomain.Repository
}

func NewCreateProgramHandler(
	logger *logrus.Logger,
	programRepo domain.Repository,
	projectRepo projectdomain.Repository,
) Handler {
	return &createProgramHandler{
		logger:      logger,
		programRepo: programRepo,
		projectRepo: projectRepo,
	}
}

type createProgramRequest struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	Cluster     string `json:"cluster"`
	ProjectID   string `json:"project_id,omitempty"`
	Description string `json:"description,omitempty"`
}

// Handle @Summary Register a program
// @Description Registers a deployed Solana program for the authenticated user
// @Tags Programs
// @Accept json
// @Produce json
// @Param Authorization header string true "Authorization token"
// @Param program body createProgramRequest true "Program request body"
// @Success 201 {object} program.Program "Program registered"
// @Failure 400 {object} map[string]interface{} "Invalid request data"
// @Failure 404 {object} map[string]interface{} "Linked project not found"
// @Failure 409 {object} map[string]interface{} "Program already registered"
// @Router /api/v1/programs [post]
func (s *createProgramHandler) Handle(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user identity"})
	}

	var req createProgramRequest
	if err := c.BodyParser(&req); err != nil {
		s.logger.WithError(err).Error("failed to bind request")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrInvalidJsonPayload})
	}
	if req.Name == "" || req.Address == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name and address are required"})
	}

	id, err := uuid.NewV6()
	if err != nil {
		s.logger.WithError(err).Error("failed to generate UUID")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to generate UUID"})
	}

	entity := &domain.Program{
		ID:          id,
		UserID:      userID,
		Name:        req.Name,
		Address:     req.Address,
		Cluster:     req.Cluster,
		Description: req.Description,
	}
	if entity.Cluster == "" {
		entity.Cluster = "devnet"
	}

	if req.ProjectID != "" {
		projectID, err := uuid.Parse(req.ProjectID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid project ID"})
		}
		parent, err := s.projectRepo.GetByID(c.Context(), projectID)
		if err != nil {
			if domainerrors.IsNotFoundError(err) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "project not found"})
			}
			s.logger.WithError(err).Error("failed to load project")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load project"})
		}
		if parent.UserID != userID {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "project not found"})
		}
		entity.ProjectID = &projectID
	}

	if err := s.programRepo.Save(c.Context(), entity); err != nil {
		if errors.Is(err, domainerrors.ErrProgramExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		s.logger.WithError(err).Error("failed to save program")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to register program"})
	}

	return c.Status(fiber.StatusCreated).JSON(entity)
}
