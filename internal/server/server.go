package server

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/MKhiriev/go-fit-offline/internal/config"
	"github.com/MKhiriev/go-fit-offline/internal/handler"
	"github.com/MKhiriev/go-fit-offline/internal/logger"
)

type server struct {
	httpServer *httpServer
	logger     *logger.Logger
}

func NewServer(handlers *handler.Handlers, cfg config.Proxy, logger *logger.Logger) (Server, error) {
	logger.Info().Msg("creating new server...")

	if handlers == nil || handlers.HTTP == nil || cfg.ListenAddress == "" {
		return nil, errNoServersAreCreated
	}

	return newServer(handlers.HTTP.Init(), cfg.ListenAddress, logger), nil
}

func newServer(h http.Handler, address string, logger *logger.Logger) *server {
	return &server{
		httpServer: newHTTPServer(h, address, logger),
		logger:     logger,
	}
}

func (s *server) Addr() string { return s.httpServer.Addr() }

func (s *server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.server.Addr)
	if err != nil {
		return fmt.Errorf("%w on %s: %w", errListen, s.httpServer.server.Addr, err)
	}
	return s.httpServer.serve(ctx, ln)
}
