package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/MKhiriev/go-fit-offline/internal/adapter"
	"github.com/MKhiriev/go-fit-offline/internal/logger"
	"github.com/MKhiriev/go-fit-offline/internal/store"
	"github.com/MKhiriev/go-fit-offline/models"
)

// WriteResult is what the page sees for a write: the backend response, or
// a synthetic 202 when the write was queued.
type WriteResult struct {
	Status int
	Header http.Header
	Body   []byte

	Queued bool
	ID     string
}

type writer struct {
	backend  adapter.BackendAdapter
	queue    MutationQueue
	sessions store.SessionRepository
	logger   *logger.Logger
}

func NewWriter(backend adapter.BackendAdapter, queue MutationQueue, sessions store.SessionRepository, log *logger.Logger) Writer {
	return &writer{
		backend:  backend,
		queue:    queue,
		sessions: sessions,
		logger:   log.WithComponent("writer"),
	}
}

// Write implements [Writer]. A write is queued when the network is
// unreachable, or when older writes are still waiting in the queue so that
// it cannot overtake them. Any response from the backend, successful or
// not, is returned as is.
func (w *writer) Write(ctx context.Context, req adapter.WriteRequest) (WriteResult, error) {
	req.Method = strings.ToUpper(req.Method)
	if !models.IsWriteMethod(req.Method) {
		return WriteResult{}, fmt.Errorf("%w: %q", ErrInvalidMethod, req.Method)
	}

	if w.backlogged(ctx) {
		w.logger.Debug().Str("method", req.Method).Str("endpoint", req.Endpoint).Msg("queue not empty, write queued behind it")
		return w.enqueue(ctx, req)
	}

	token, err := w.token(ctx)
	if err != nil {
		return WriteResult{}, err
	}

	resp, err := w.backend.Send(ctx, req, token)
	if err == nil {
		return WriteResult{Status: resp.Status, Header: resp.Header, Body: resp.Body}, nil
	}
	if !errors.Is(err, adapter.ErrNetworkUnavailable) {
		return WriteResult{}, err
	}

	return w.enqueue(ctx, req)
}

// backlogged reports whether the queue holds entries. An unreadable queue
// counts as empty and the write goes to the network.
func (w *writer) backlogged(ctx context.Context) bool {
	n, err := w.queue.Len(ctx)
	if err != nil {
		w.logger.Warn().Err(err).Msg("failed to read queue length")
		return false
	}
	return n > 0
}

func (w *writer) enqueue(ctx context.Context, req adapter.WriteRequest) (WriteResult, error) {
	id, err := w.queue.Enqueue(ctx, req.Endpoint, req.Method, req.Body, req.Headers)
	if err != nil {
		return WriteResult{}, err
	}

	body, err := json.Marshal(models.QueuedResponse{Queued: true, ID: id})
	if err != nil {
		return WriteResult{}, fmt.Errorf("marshal queued response: %w", err)
	}

	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	return WriteResult{
		Status: http.StatusAccepted,
		Header: header,
		Body:   body,
		Queued: true,
		ID:     id,
	}, nil
}

// token is best effort: an unreadable session sends the write without
// credentials and lets the backend decide.
func (w *writer) token(ctx context.Context) (string, error) {
	session, err := w.sessions.GetSession(ctx)
	switch {
	case err == nil:
		return session.Token, nil
	case errors.Is(err, store.ErrSessionNotFound):
		return "", nil
	case ctx.Err() != nil:
		return "", ctx.Err()
	default:
		w.logger.Warn().Err(err).Msg("failed to read session, sending write without token")
		return "", nil
	}
}
