package http

import (
	"encoding/json"
	"net/http"

	"github.com/MKhiriev/go-fit-offline/internal/logger"
	"github.com/MKhiriev/go-fit-offline/internal/proxy"
	"github.com/MKhiriev/go-fit-offline/internal/utils"
	"github.com/MKhiriev/go-fit-offline/models"
)

func (h *Handler) workerState(w http.ResponseWriter, r *http.Request) {
	state, err := h.registration.State(r.Context())
	if err != nil {
		writeError(w, r, err, "failed to read registration state")
		return
	}
	utils.WriteJSON(w, state, http.StatusOK)
}

func (h *Handler) skipWaiting(w http.ResponseWriter, r *http.Request) {
	if err := h.registration.Send(r.Context(), proxy.SkipWaiting{}); err != nil {
		writeError(w, r, err, "skip waiting failed")
		return
	}
	h.workerState(w, r)
}

func (h *Handler) cacheURLs(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var msg proxy.CacheURLs
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		log.Err(err).Str("func", "*Handler.cacheURLs").Msg("Invalid JSON was passed")
		writeError(w, r, ErrInvalidJSON, "invalid cache urls request")
		return
	}

	if err := h.registration.Send(r.Context(), msg); err != nil {
		// entries that were fetched stay cached
		writeError(w, r, err, "caching urls failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// setConnectivity feeds the platform online/offline signal.
func (h *Handler) setConnectivity(w http.ResponseWriter, r *http.Request) {
	var req models.ConnectivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Online == nil {
		writeError(w, r, ErrInvalidJSON, "invalid connectivity request")
		return
	}

	changed := h.monitor.SetOnline(*req.Online)
	utils.WriteJSON(w, models.ConnectivityResponse{Online: h.monitor.Online(), Changed: changed}, http.StatusOK)
}
