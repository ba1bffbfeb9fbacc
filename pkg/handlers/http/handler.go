package http

import "github.com/gofiber/fiber/v2"

const ErrInvalidJsonPayload = "invalid JSON payload"

type Handler interface {
	Handle(c *fiber.Ctx) error
}

// HandlerTransport carries every wired handler to the router.
type HandlerTransport struct {
	AirdropHandler         Handler
	GetUsageHandler        Handler
	GetUsageHistoryHandler Handler
	GetBalanceHandler      Handler

	CreateAPIKeyHandler   Handler
	ListAPIKeysHandler    Handler
	RevokeAPIKeyHandler   Handler
	GetAPIKeyUsageHandler Handler

	CreateProgramHandler Handler
	ListProgramsHandler  Handler
	GetProgramHandler    Handler

	CreateProjectHandler       Handler
	ListProjectsHandler        Handler
	GetProjectHandler          Handler
	UpdateProjectHandler       Handler
	DeleteProjectHandler       Handler
	ListProjectProgramsHandler Handler

	RunJobHandler Handler
}
