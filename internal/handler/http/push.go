package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/MKhiriev/go-fit-offline/internal/logger"
	"github.com/MKhiriev/go-fit-offline/internal/proxy"
	"github.com/MKhiriev/go-fit-offline/internal/utils"
	"github.com/MKhiriev/go-fit-offline/models"
)

// maxPushBody is generous: push services cap payloads at 4 KiB.
const maxPushBody = 64 << 10

func (h *Handler) pushState(w http.ResponseWriter, r *http.Request) {
	state, err := h.services.Push.State(r.Context())
	if err != nil {
		writeError(w, r, err, "failed to read push state")
		return
	}
	utils.WriteJSON(w, models.PushStateResponse{State: state}, http.StatusOK)
}

func (h *Handler) setPermission(w http.ResponseWriter, r *http.Request) {
	var req models.PermissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !validPermission(req.Permission) {
		writeError(w, r, ErrInvalidJSON, "invalid permission request")
		return
	}

	if err := h.services.Push.SetPermission(r.Context(), req.Permission); err != nil {
		writeError(w, r, err, "failed to set permission")
		return
	}
	h.pushState(w, r)
}

func (h *Handler) subscribe(w http.ResponseWriter, r *http.Request) {
	sub, err := h.services.Push.Subscribe(r.Context())
	if err != nil {
		writeError(w, r, err, "push subscription failed")
		return
	}
	utils.WriteJSON(w, sub, http.StatusCreated)
}

func (h *Handler) unsubscribe(w http.ResponseWriter, r *http.Request) {
	if err := h.services.Push.Unsubscribe(r.Context()); err != nil {
		writeError(w, r, err, "push unsubscribe failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// deliverPush accepts a push message from the relay and hands it to the
// background context. The relay marks encrypted bodies with
// "Content-Encoding: aes128gcm".
func (h *Handler) deliverPush(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPushBody))
	if err != nil {
		log.Err(err).Str("func", "*Handler.deliverPush").Msg("failed to read push body")
		http.Error(w, "failed to read push body", http.StatusRequestEntityTooLarge)
		return
	}

	event := proxy.PushEvent{Body: body, ContentEncoding: r.Header.Get("Content-Encoding")}
	if err = h.registration.Send(r.Context(), event); err != nil {
		writeError(w, r, err, "push delivery failed")
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) notificationClick(w http.ResponseWriter, r *http.Request) {
	var click models.NotificationClick
	if err := json.NewDecoder(r.Body).Decode(&click); err != nil {
		writeError(w, r, ErrInvalidJSON, "invalid notification click")
		return
	}

	if err := h.registration.Send(r.Context(), proxy.NotificationClick{Click: click}); err != nil {
		writeError(w, r, err, "notification click failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func validPermission(p models.PushPermission) bool {
	switch p {
	case models.PermissionDefault, models.PermissionGranted, models.PermissionDenied:
		return true
	default:
		return false
	}
}
