package router

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	handlers "github.com/solport/devportal/pkg/handlers/http"
	"github.com/solport/devportal/pkg/middleware"
)

var ErrMissingHandler = errors.New("handler transport is incomplete")

type apiRouter struct {
	middlewareTransport *middleware.Transport
	handlerTransport    handlers.HandlerTransport
}

func NewApiRouter(
	middlewareTransport *middleware.Transport,
	handlerTransport handlers.HandlerTransport,
) ServerRouter {
	return &apiRouter{
		middlewareTransport: middlewareTransport,
		handlerTransport:    handlerTransport,
	}
}

func (r *apiRouter) BuildRoutes(router *fiber.App) error {
	t := r.handlerTransport
	if t.AirdropHandler == nil || t.GetUsageHandler == nil || t.RunJobHandler == nil {
		return ErrMissingHandler
	}

	router.Use(r.middlewareTransport.MetricsMiddleware.Middleware())

	v1 := router.Group("/api/v1")
	{
		v1.Use(r.middlewareTransport.AuthMiddleware.Middleware())
		v1.Use(r.middlewareTransport.MeteringMiddleware.Middleware())

		v1.Post("/airdrop", t.AirdropHandler.Handle)
		v1.Get("/balance/:wallet", t.GetBalanceHandler.Handle)

		usage := v1.Group("/usage")
		{
			usage.Get("", t.GetUsageHandler.Handle)
			usage.Get("/history", t.GetUsageHistoryHandler.Handle)
		}

		apiKeys := v1.Group("/api-keys")
		{
			apiKeys.Post("", t.CreateAPIKeyHandler.Handle)
			apiKeys.Get("", t.ListAPIKeysHandler.Handle)
			apiKeys.Get("/:key_id/usage", t.GetAPIKeyUsageHandler.Handle)
			apiKeys.Delete("/:key_id", t.RevokeAPIKeyHandler.Handle)
		}

		programs := v1.Group("/programs")
		{
			programs.Post("", t.CreateProgramHandler.Handle)
			programs.Get("", t.ListProgramsHandler.Handle)
			programs.Get("/:program_id", t.GetProgramHandler.Handle)
		}

		projects := v1.Group("/projects")
		{
			projects.Post("", t.CreateProjectHandler.Handle)
			projects.Get("", t.ListProjectsHandler.Handle)
			projects.Get("/:project_id", t.GetProjectHandler.Handle)
			projects.Put("/:project_id", t.UpdateProjectHandler.Handle)
			projects.Delete("/:project_id", t.DeleteProjectHandler.Handle)
			projects.Get("/:project_id/programs", t.ListProjectProgramsHandler.Handle)
		}

		admin := v1.Group("/admin")
		{
			admin.Post("/jobs/:job_name/run", t.RunJobHandler.Handle)
		}
	}
	return nil
}
