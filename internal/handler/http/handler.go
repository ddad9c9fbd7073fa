package http

import (
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/MKhiriev/go-fit-offline/internal/config"
	"github.com/MKhiriev/go-fit-offline/internal/connectivity"
	"github.com/MKhiriev/go-fit-offline/internal/logger"
	"github.com/MKhiriev/go-fit-offline/internal/metrics"
	"github.com/MKhiriev/go-fit-offline/internal/proxy"
	"github.com/MKhiriev/go-fit-offline/internal/service"
	"github.com/MKhiriev/go-fit-offline/internal/utils"
)

type Handler struct {
	services     *service.Services
	registration *proxy.Registration
	monitor      *connectivity.Monitor
	metrics      *metrics.Metrics

	// hasher verifies inbound relay deliveries; nil when no key is set.
	hasher *utils.Hasher

	// seenToken is the last bearer token stored from page traffic.
	seenToken atomic.Pointer[string]

	origin         *url.URL
	apiBase        string
	allowedOrigins []string

	logger *logger.Logger
}

func NewHandler(
	services *service.Services,
	registration *proxy.Registration,
	monitor *connectivity.Monitor,
	m *metrics.Metrics,
	cfg config.StructuredConfig,
	logger *logger.Logger,
) (*Handler, error) {
	origin, err := parseOrigin(cfg.Adapter.HTTPAddress)
	if err != nil {
		return nil, err
	}

	h := &Handler{
		services:       services,
		registration:   registration,
		monitor:        monitor,
		metrics:        m,
		origin:         origin,
		apiBase:        "/" + strings.Trim(cfg.Adapter.APIBase, "/"),
		allowedOrigins: cfg.Proxy.AllowedOrigins,
		logger:         logger.WithComponent("gateway"),
	}
	if cfg.App.HashKey != "" {
		h.hasher = utils.NewHasher(cfg.App.HashKey)
	}

	logger.Info().Str("origin", origin.String()).Msg("http handler created")
	return h, nil
}

func parseOrigin(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw != "" && !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrigin, raw)
	}
	return u, nil
}
