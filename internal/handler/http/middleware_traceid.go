package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MKhiriev/go-fit-offline/internal/utils"
)

const (
	traceIDHeader  = "X-Trace-ID"
	clientIDHeader = "X-Client-ID"
)

// withTraceID attaches a trace_id child logger to the request. The id is
// also set on the request header so that proxied and queued writes carry
// it to the backend. A known page id is put on the context as well.
func (h *Handler) withTraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		traceID := r.Header.Get(traceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
			r.Header.Set(traceIDHeader, traceID)
		}

		// pages send the id they got on their client channel
		clientID := r.Header.Get(clientIDHeader)
		if clientID != "" {
			ctx = utils.WithClientID(ctx, clientID)
		}

		l := h.logger.GetChildLogger()
		l.UpdateContext(func(c zerolog.Context) zerolog.Context {
			c = c.Str("trace_id", traceID)
			if clientID != "" {
				c = c.Str("client", clientID)
			}
			return c
		})
		r = r.WithContext(l.WithContext(ctx))

		w.Header().Set(traceIDHeader, traceID)
		next.ServeHTTP(w, r)
	})
}
