package middleware

import "github.com/gofiber/fiber/v2"

type Middleware interface {
	Middleware() fiber.Handler
}

// Transport bundles the middlewares the router wires in front of the API.
type Transport struct {
	AuthMiddleware     Middleware
	MeteringMiddleware Middleware
	MetricsMiddleware  Middleware
}
