package http

import (
	"bytes"
	"crypto/hmac"
	"io"
	"net/http"

	"github.com/MKhiriev/go-fit-offline/internal/adapter"
	"github.com/MKhiriev/go-fit-offline/internal/logger"
)

// withBodyHash checks the HashSHA256 header of inbound relay deliveries
// against an HMAC of the raw body. Without a configured key every request
// passes.
func (h *Handler) withBodyHash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.hasher == nil {
			next.ServeHTTP(w, r)
			return
		}

		log := logger.FromRequest(r)
		log.Debug().Str("func", "*Handler.withBodyHash").Msg("checking hash begins")

		// read bytes from body
		body, err := io.ReadAll(r.Body)
		if err != nil {
			log.Err(err).Str("func", "*Handler.withBodyHash").Msg("failed to read request body")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		// restore request body
		r.Body = io.NopCloser(bytes.NewReader(body))

		got := r.Header.Get(adapter.HashHeader)
		want := h.hasher.Hex(body)
		if !hmac.Equal([]byte(got), []byte(want)) {
			log.Error().Str("func", "*Handler.withBodyHash").
				Str("hash from request", got).
				Str("hashed body", want).
				Msg("hashes are not equal")
			writeError(w, r, ErrIntegrityCheckFailed, "integrity check failed")
			return
		}

		next.ServeHTTP(w, r)
	})
}
