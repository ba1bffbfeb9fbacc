package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	usage "github.com/solport/devportal/pkg/domain/usage"
	"github.com/solport/devportal/pkg/infra/solana"
)

type getBalanceHandler struct {
	logger *logrus.Logger
	rpc    solana.Client
}

func NewGetBalanceHandler(logger *logrus.Logger, rpc solana.Client) Handler {
	return &getBalanceHandler{
		logger: logger,
		rpc:    rpc,
	}
}

// Handle @Summary Get wallet balance
// @Description Returns the devnet balance of a wallet in lamports and SOL
// @Tags Balance
// @Produce json
// @Param Authorization header string true "Authorization token"
// @Param wallet path string true "Wallet address"
// @Success 200 {object} map[string]interface{} "Wallet balance"
// @Failure 502 {object} map[string]interface{} "RPC unavailable"
// @Router /api/v1/balance/{wallet} [get]
func (s *getBalanceHandler) Handle(c *fiber.Ctx) error {
	wallet := c.Params("wallet")
	if wallet == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "wallet is required"})
	}

	lamports, err := s.rpc.GetBalance(c.Context(), wallet)
	if err != nil {
		s.logger.WithError(err).WithField("wallet", wallet).Error("failed to fetch balance")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "failed to fetch balance"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"wallet":   wallet,
		"lamports": lamports,
		"sol":      usage.LamportsToSol(lamports),
	})
}
