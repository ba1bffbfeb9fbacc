package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	appusage "github.com/solport/devportal/pkg/app/usage"
	domainerrors "github.com/solport/devportal/pkg/domain"
	"github.com/solport/devportal/pkg/middleware"
)

type getUsageHistoryHandler struct {
	logger   *logrus.Logger
	reporter *appusage.Reporter
}

func NewGetUsageHistoryHandler(logger *logrus.Logger, reporter *appusage.Reporter) Handler {
	return &getUsageHistoryHandler{
		logger:   logger,
		reporter: reporter,
	}
}

// Handle @Summary Get archived usage history
// @Description Returns archived daily usage records in the requested date range
// @Tags Usage
// @Produce json
// @Param Authorization header string true "Authorization token"
// @Param from query string true "Range start (YYYY-MM-DD)"
// @Param to query string true "Range end (YYYY-MM-DD)"
// @Success 200 {object} usage.HistoryReport "Usage history"
// @Failure 400 {object} map[string]interface{} "Invalid date range"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /api/v1/usage/history [get]
func (s *getUsageHistoryHandler) Handle(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user identity"})
	}

	fromDate := c.Query("from")
	toDate := c.Query("to")
	if fromDate == "" || toDate == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "'from' and 'to' query parameters are required"})
	}

	report, err := s.reporter.History(c.Context(), userID, fromDate, toDate)
	if err != nil {
		if errors.Is(err, domainerrors.ErrInvalidDateSpan) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		var parseErr *time.ParseError
		if errors.As(err, &parseErr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		s.logger.WithError(err).Error("failed to load usage history")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load usage history"})
	}

	return c.Status(fiber.StatusOK).JSON(report)
}
