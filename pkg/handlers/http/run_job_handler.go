package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/solport/devportal/pkg/app/scheduler"
	domainerrors "github.com/solport/devportal/pkg/domain"
)

type runJobHandler struct {
	logger    *logrus.Logger
	scheduler *scheduler.Scheduler
}

func NewRunJobHandler(logger *logrus.Logger, sched *scheduler.Scheduler) Handler {
	return &runJobHandler{
		logger:    logger,
		scheduler: sched,
	}
}

// Handle @Summary Trigger a background job
// @Description Runs the named persistence job immediately instead of waiting for its schedule
// @Tags Admin
// @Produce json
// @Param Authorization header string true "Authorization token"
// @Param job_name path string true "Job name (usage_sync or usage_archival)"
// @Success 200 {object} scheduler.Report "Job report"
// @Failure 404 {object} map[string]interface{} "Unknown job"
// @Failure 409 {object} map[string]interface{} "Job already running"
// @Router /api/v1/admin/jobs/{job_name}/run [post]
func (s *runJobHandler) Handle(c *fiber.Ctx) error {
	jobName := c.Params("job_name")

	report, err := s.scheduler.Trigger(c.Context(), jobName)
	if err != nil {
		switch {
		case errors.Is(err, domainerrors.ErrUnknownJobName):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown job: " + jobName})
		case errors.Is(err, domainerrors.ErrJobAlreadyRuns):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		default:
			s.logger.WithError(err).WithField("job", jobName).Error("job run failed")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "job run failed"})
		}
	}

	return c.Status(fiber.StatusOK).JSON(report)
}
