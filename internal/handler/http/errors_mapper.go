package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/MKhiriev/go-fit-offline/internal/adapter"
	"github.com/MKhiriev/go-fit-offline/internal/crypto"
	"github.com/MKhiriev/go-fit-offline/internal/logger"
	"github.com/MKhiriev/go-fit-offline/internal/notification"
	"github.com/MKhiriev/go-fit-offline/internal/proxy"
	"github.com/MKhiriev/go-fit-offline/internal/service"
	"github.com/MKhiriev/go-fit-offline/internal/store"
	"github.com/MKhiriev/go-fit-offline/internal/utils"
)

// errorStatuses is matched in order, so wrapped errors resolve to the
// most specific entry listed first.
var errorStatuses = []struct {
	err    error
	status int
}{
	{ErrInvalidJSON, http.StatusBadRequest},
	{ErrIntegrityCheckFailed, http.StatusBadRequest},
	{ErrBackendUnreachable, http.StatusServiceUnavailable},
	{utils.ErrInvalidAuthorizationHeader, http.StatusBadRequest},

	{service.ErrInvalidMethod, http.StatusBadRequest},
	{service.ErrEmptyEndpoint, http.StatusBadRequest},
	{service.ErrEmptyToken, http.StatusBadRequest},
	{service.ErrSessionExpired, http.StatusUnauthorized},
	{service.ErrSyncInProgress, http.StatusConflict},
	{service.ErrQueueContention, http.StatusServiceUnavailable},
	{service.ErrPushUnsupported, http.StatusNotImplemented},
	{service.ErrPermissionDenied, http.StatusForbidden},
	{service.ErrPushNotConfigured, http.StatusServiceUnavailable},
	{service.ErrSubscribeFailed, http.StatusBadGateway},

	{proxy.ErrNoActiveWorker, http.StatusConflict},
	{proxy.ErrNoEventHandler, http.StatusServiceUnavailable},
	{proxy.ErrClientNotFound, http.StatusNotFound},

	{notification.ErrUnsupportedEncoding, http.StatusUnsupportedMediaType},
	{notification.ErrNoSubscription, http.StatusGone},
	{crypto.ErrMalformedMessage, http.StatusBadRequest},
	{crypto.ErrDecryptFailed, http.StatusBadRequest},
	{crypto.ErrInvalidPadding, http.StatusBadRequest},

	{adapter.ErrNetworkUnavailable, http.StatusServiceUnavailable},

	{store.ErrSessionNotFound, http.StatusNotFound},
	{store.ErrSubscriptionNotFound, http.StatusNotFound},

	{store.ErrBuildingSQLQuery, http.StatusInternalServerError},
	{store.ErrExecutingQuery, http.StatusInternalServerError},
	{store.ErrBeginningTransaction, http.StatusInternalServerError},
	{store.ErrCommitingTransaction, http.StatusInternalServerError},
	{store.ErrExecutingStatement, http.StatusInternalServerError},
	{store.ErrScanningRow, http.StatusInternalServerError},
	{store.ErrScanningRows, http.StatusInternalServerError},
	{store.ErrDecodingColumn, http.StatusInternalServerError},
}

func statusFromError(err error) int {
	for _, entry := range errorStatuses {
		if errors.Is(err, entry.err) {
			return entry.status
		}
	}
	return http.StatusInternalServerError
}

// writeError logs err on the request logger and answers with its mapped
// status. A request abandoned by the page gets no body.
func writeError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	log := logger.FromRequest(r)

	if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		log.Debug().Err(err).Msg("request cancelled by client")
		return
	}

	status := statusFromError(err)
	if status >= http.StatusInternalServerError {
		log.Err(err).Int("status", status).Msg(msg)
	} else {
		log.Warn().Err(err).Int("status", status).Msg(msg)
	}

	utils.WriteJSON(w, errorResponse{Error: err.Error()}, status)
}

type errorResponse struct {
	Error string `json:"error"`
}
