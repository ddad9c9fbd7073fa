package http

import (
	"net/http"
	"strings"

	"github.com/rs/cors"

	"github.com/MKhiriev/go-fit-offline/internal/proxy"
)

// withCORS lets pages served from another local origin call the gateway.
func (h *Handler) withCORS() func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: h.allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{traceIDHeader, proxy.CacheHeader},
		AllowCredentials: true,
		MaxAge:           600,
	}).Handler
}

// originPatterns converts allowed origins to the host patterns the
// websocket handshake matches against.
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		if i := strings.Index(o, "://"); i >= 0 {
			o = o[i+3:]
		}
		if o != "" {
			patterns = append(patterns, o)
		}
	}
	return patterns
}
