package server

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/solport/devportal/pkg/config"
	handlers "github.com/solport/devportal/pkg/handlers/http"
	"github.com/solport/devportal/pkg/middleware"
	"github.com/solport/devportal/pkg/server/router"
)

type (
	ApiServerDI struct {
		MiddlewareTransport *middleware.Transport
		HandlerTransport    handlers.HandlerTransport
		Config              *config.Config
		Logger              *logrus.Logger
	}
	ApiServer struct {
		*BaseServer
		middlewareTransport *middleware.Transport
		handlerTransport    handlers.HandlerTransport
	}
)

func NewApiServer(di ApiServerDI) *ApiServer {
	return &ApiServer{
		BaseServer:          NewBaseServer(di.Config, di.Logger),
		middlewareTransport: di.MiddlewareTransport,
		handlerTransport:    di.HandlerTransport,
	}
}

func (s *ApiServer) Run() error {
	s.setupHealthCheck()
	s.setupMetricsEndpoint()
	s.WithRouters(router.NewApiRouter(s.middlewareTransport, s.handlerTransport))

	addr := fmt.Sprintf(":%d", s.Config.Server.Port)
	s.Logger.WithField("addr", addr).Info("starting api server")
	return s.Router.Listen(addr)
}

func (s *ApiServer) Shutdown() error {
	return s.Router.Shutdown()
}
