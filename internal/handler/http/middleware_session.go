package http

import (
	"net/http"

	"github.com/MKhiriev/go-fit-offline/internal/logger"
	"github.com/MKhiriev/go-fit-offline/internal/utils"
)

// withSessionCapture keeps the session store in step with the credential
// pages send. Queued writes are replayed later with whatever token the page
// used last. Requests are never rejected here; the backend owns auth.
func (h *Handler) withSessionCapture(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		token, err := utils.ParseBearerToken(header)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		if last := h.seenToken.Load(); last == nil || *last != token {
			if _, err = h.services.Sessions.Login(r.Context(), token); err != nil {
				logger.FromRequest(r).Debug().Err(err).Msg("credential from page was not stored")
			} else {
				h.seenToken.Store(&token)
			}
		}

		next.ServeHTTP(w, r)
	})
}
