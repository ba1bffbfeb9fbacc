package middleware

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/solport/devportal/pkg/infra/prometheus"
)

type metricsMiddleware struct {
	logger *logrus.Logger
}

func NewMetricsMiddleware(logger *logrus.Logger) Middleware {
	return &metricsMiddleware{
		logger: logger,
	}
}

func (m *metricsMiddleware) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		prometheus.RequestsTotal.WithLabelValues(
			ctx.Method(),
			strconv.Itoa(ctx.Response().StatusCode()),
		).Inc()
		return err
	}
}
