package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/MKhiriev/go-fit-offline/internal/logger"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

type httpServer struct {
	server *http.Server
	logger *logger.Logger

	mu   sync.Mutex
	addr string
}

func newHTTPServer(handler http.Handler, address string, logger *logger.Logger) *httpServer {
	return &httpServer{
		server: &http.Server{
			Addr:              address,
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		logger: logger,
		addr:   address,
	}
}

func (h *httpServer) Addr() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.addr
}

// serve blocks on ln until ctx is done. Hijacked connections (page
// websockets) are not tracked by Shutdown, so their request contexts are
// cancelled when shutdown begins.
func (h *httpServer) serve(ctx context.Context, ln net.Listener) error {
	h.mu.Lock()
	h.addr = ln.Addr().String()
	h.mu.Unlock()

	base, cancelBase := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelBase()
	h.server.BaseContext = func(net.Listener) context.Context { return base }
	h.server.RegisterOnShutdown(cancelBase)

	errCh := make(chan error, 1)
	go func() {
		h.logger.Info().Str("address", h.Addr()).Msg("Launching HTTP server")
		errCh <- h.server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := h.server.Shutdown(shutdownCtx); err != nil {
		// ошибки закрытия Listener
		h.logger.Err(err).Msg("HTTP server Shutdown")
		h.server.Close()
	}
	<-errCh

	h.logger.Info().Msg("HTTP server Shutdown gracefully")
	return nil
}
