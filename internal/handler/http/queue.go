package http

import (
	"net/http"
	"strconv"

	"github.com/MKhiriev/go-fit-offline/internal/utils"
	"github.com/MKhiriev/go-fit-offline/models"
)

func (h *Handler) queueList(w http.ResponseWriter, r *http.Request) {
	mutations, err := h.services.Queue.DequeueAll(r.Context())
	if err != nil {
		writeError(w, r, err, "failed to list queue")
		return
	}

	// bodies may hold personal data and are not echoed back
	for i := range mutations {
		mutations[i].Body = nil
	}

	utils.WriteJSON(w, models.QueueResponse{Mutations: mutations, Length: len(mutations)}, http.StatusOK)
}

// queueSync runs a reconciliation pass now instead of waiting for the next
// reconnection.
func (h *Handler) queueSync(w http.ResponseWriter, r *http.Request) {
	result, err := h.services.Reconciler.Sync(r.Context())
	if err != nil {
		writeError(w, r, err, "sync pass failed")
		return
	}
	utils.WriteJSON(w, result, http.StatusOK)
}

func (h *Handler) queueFailed(w http.ResponseWriter, r *http.Request) {
	var limit uint64
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	failed, err := h.services.Queue.Failed(r.Context(), limit)
	if err != nil {
		writeError(w, r, err, "failed to list dropped mutations")
		return
	}
	for i := range failed {
		failed[i].Body = nil
	}

	utils.WriteJSON(w, models.FailedMutationsResponse{Mutations: failed, Length: len(failed)}, http.StatusOK)
}
