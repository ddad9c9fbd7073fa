package handler

import (
	"fmt"

	"github.com/MKhiriev/go-fit-offline/internal/config"
	"github.com/MKhiriev/go-fit-offline/internal/connectivity"
	"github.com/MKhiriev/go-fit-offline/internal/handler/http"
	"github.com/MKhiriev/go-fit-offline/internal/logger"
	"github.com/MKhiriev/go-fit-offline/internal/metrics"
	"github.com/MKhiriev/go-fit-offline/internal/proxy"
	"github.com/MKhiriev/go-fit-offline/internal/service"
)

type Handlers struct {
	HTTP *http.Handler
}

func NewHandlers(
	services *service.Services,
	registration *proxy.Registration,
	monitor *connectivity.Monitor,
	m *metrics.Metrics,
	cfg config.StructuredConfig,
	logger *logger.Logger,
) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	if cfg.Proxy.ListenAddress == "" {
		return nil, errNoHandlersAreCreated
	}

	h, err := http.NewHandler(services, registration, monitor, m, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("http handler: %w", err)
	}

	return &Handlers{HTTP: h}, nil
}
