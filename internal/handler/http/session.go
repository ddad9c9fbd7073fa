package http

import (
	"encoding/json"
	"net/http"

	"github.com/MKhiriev/go-fit-offline/internal/utils"
	"github.com/MKhiriev/go-fit-offline/models"
)

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req models.SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, ErrInvalidJSON, "invalid session request")
		return
	}

	session, err := h.services.Sessions.Login(r.Context(), req.Token)
	if err != nil {
		writeError(w, r, err, "failed to store session")
		return
	}
	token := session.Token
	h.seenToken.Store(&token)

	session.Token = ""
	utils.WriteJSON(w, session, http.StatusOK)
}

func (h *Handler) currentSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.services.Sessions.Current(r.Context())
	if err != nil {
		writeError(w, r, err, "failed to read session")
		return
	}

	session.Token = ""
	utils.WriteJSON(w, session, http.StatusOK)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.services.Sessions.Logout(r.Context()); err != nil {
		writeError(w, r, err, "failed to clear session")
		return
	}
	h.seenToken.Store(nil)
	w.WriteHeader(http.StatusNoContent)
}
