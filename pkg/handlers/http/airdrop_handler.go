package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	appairdrop "github.com/solport/devportal/pkg/app/airdrop"
	appusage "github.com/solport/devportal/pkg/app/usage"
	domainerrors "github.com/solport/devportal/pkg/domain"
	"github.com/solport/devportal/pkg/middleware"
)

type airdropHandler struct {
	logger    *logrus.Logger
	requester *appairdrop.Requester
}

func NewAirdropHandler(logger *logrus.Logger, requester *appairdrop.Requester) Handler {
	return &airdropHandler{
		logger:    logger,
		requester: requester,
	}
}

type airdropRequest struct {
	Wallet string `json:"wallet"`
	Amount string `json:"amount"`
}

// Handle @Summary Request a devnet airdrop
// @Description Sends SOL to the given wallet, subject to the caller's daily allowance
// @Tags Airdrops
// @Accept json
// @Produce json
// @Param Authorization header string true "Authorization token"
// @Param airdrop body airdropRequest true "Airdrop request body"
// @Success 200 {object} airdrop.Result "Airdrop submitted"
// @Failure 400 {object} map[string]interface{} "Invalid request data"
// @Failure 429 {object} usage.Decision "Allowance exceeded"
// @Failure 503 {object} map[string]interface{} "Admission check unavailable"
// @Router /api/v1/airdrop [post]
func (s *airdropHandler) Handle(c *fiber.Ctx) error {
	var req airdropRequest
	if err := c.BodyParser(&req); err != nil {
		s.logger.WithError(err).Error("failed to bind airdrop request")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrInvalidJsonPayload})
	}

	userID := middleware.UserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user identity"})
	}

	result, err := s.requester.Request(c.Context(), userID, req.Wallet, req.Amount)
	if err != nil {
		if denied, ok := domainerrors.IsAdmissionDenied(err); ok {
			return c.Status(fiber.StatusTooManyRequests).JSON(denied.Decision)
		}
		switch {
		case errors.Is(err, domainerrors.ErrInvalidWallet):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid wallet address"})
		case errors.Is(err, appusage.ErrCheckUnavailable):
			s.logger.WithError(err).Error("airdrop admission check unavailable")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "admission check unavailable"})
		case errors.Is(err, appairdrop.ErrInvalidAmount):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		default:
			s.logger.WithError(err).Error("airdrop request failed")
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "airdrop request failed"})
		}
	}

	return c.Status(fiber.StatusOK).JSON(result)
}
