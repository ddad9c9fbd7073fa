package proxy

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/MKhiriev/go-fit-offline/internal/logger"
	"github.com/MKhiriev/go-fit-offline/internal/store"
	"github.com/MKhiriev/go-fit-offline/models"
)

// Registration is the background context: it owns the worker lifecycle,
// routes page traffic through the active worker and processes control
// messages on a single goroutine.
type Registration struct {
	mu      sync.RWMutex
	active  *Worker
	waiting *Worker
	handler EventHandler

	clients  *Clients
	cache    store.CacheRepository
	network  http.RoundTripper
	messages chan envelope

	logger *logger.Logger
}

// NewRegistration creates an empty registration. network serves requests
// while no worker is active.
func NewRegistration(cache store.CacheRepository, clients *Clients, network http.RoundTripper, log *logger.Logger) *Registration {
	if network == nil {
		network = http.DefaultTransport
	}
	r := &Registration{
		clients:  clients,
		cache:    cache,
		network:  network,
		messages: make(chan envelope),
		logger:   log.WithComponent("registration"),
	}
	clients.onRelease(r.promoteIfReleased)
	return r
}

// SetEventHandler installs the push and notification click handler.
func (r *Registration) SetEventHandler(h EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handler = h
}

func (r *Registration) Clients() *Clients { return r.clients }

// Active returns the active worker or nil.
func (r *Registration) Active() *Worker {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// Waiting returns the waiting worker or nil.
func (r *Registration) Waiting() *Worker {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.waiting
}

// Register installs w and parks it as waiting. It is promoted at once when
// there is no active worker or no page is controlled by the active one.
// A previously waiting worker becomes redundant.
func (r *Registration) Register(ctx context.Context, w *Worker) error {
	w.setState(models.WorkerInstalling)
	if err := w.Install(ctx); err != nil {
		w.setState(models.WorkerRedundant)
		return fmt.Errorf("install worker %s: %w", w.Version(), err)
	}

	r.mu.Lock()
	if r.waiting != nil && r.waiting != w {
		r.waiting.setState(models.WorkerRedundant)
	}
	w.setState(models.WorkerWaiting)
	r.waiting = w
	idle := r.active == nil || r.clients.ControlledBy(r.active.Version()) == 0
	r.mu.Unlock()

	if !idle {
		r.logger.Info().Str("version", w.Version()).Msg("worker waiting for open clients to close")
		return nil
	}
	return r.activateWaiting(ctx)
}

// Connect registers an open page under the active worker.
func (r *Registration) Connect(url string) *Client {
	r.mu.RLock()
	controller := ""
	if r.active != nil {
		controller = r.active.Version()
	}
	r.mu.RUnlock()

	return r.clients.Connect(url, controller)
}

// RoundTrip implements [http.RoundTripper]. Without an active worker the
// request goes straight to the network.
func (r *Registration) RoundTrip(req *http.Request) (*http.Response, error) {
	if w := r.Active(); w != nil {
		return w.RoundTrip(req)
	}
	return r.network.RoundTrip(req)
}

// Send delivers msg to the message loop and waits for it to be handled.
func (r *Registration) Send(ctx context.Context, msg Message) error {
	env := envelope{ctx: ctx, msg: msg, reply: make(chan error, 1)}

	select {
	case r.messages <- env:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-env.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes messages until ctx is cancelled.
func (r *Registration) Run(ctx context.Context) error {
	r.logger.Info().Msg("registration message loop started")
	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("registration message loop stopped")
			return nil
		case env := <-r.messages:
			env.reply <- r.handle(env.ctx, env.msg)
		}
	}
}

func (r *Registration) handle(ctx context.Context, msg Message) error {
	switch m := msg.(type) {
	case SkipWaiting:
		return r.activateWaiting(ctx)
	case CacheURLs:
		w := r.Active()
		if w == nil {
			return ErrNoActiveWorker
		}
		return w.CacheURLs(ctx, m.URLs)
	case PushEvent:
		h := r.eventHandler()
		if h == nil {
			return ErrNoEventHandler
		}
		return h.HandlePush(ctx, m.Body, m.ContentEncoding)
	case NotificationClick:
		h := r.eventHandler()
		if h == nil {
			return ErrNoEventHandler
		}
		return h.HandleClick(ctx, m.Click)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownMessage, msg)
	}
}

// State is a snapshot for diagnostics.
func (r *Registration) State(ctx context.Context) (models.RegistrationState, error) {
	r.mu.RLock()
	var state models.RegistrationState
	if r.active != nil {
		state.ActiveVersion = r.active.Version()
		state.ActiveState = r.active.State()
	}
	if r.waiting != nil {
		state.WaitingVersion = r.waiting.Version()
	}
	r.mu.RUnlock()

	state.Clients = r.clients.Len()

	names, err := r.cache.Names(ctx)
	if err != nil {
		return state, fmt.Errorf("list caches: %w", err)
	}
	state.CacheNames = names
	return state, nil
}

// activateWaiting promotes the waiting worker, evicts old caches and claims
// open pages. When activation fails the current active worker keeps serving
// and the candidate stays waiting, so a later skip-waiting can retry.
func (r *Registration) activateWaiting(ctx context.Context) error {
	r.mu.RLock()
	w := r.waiting
	r.mu.RUnlock()
	if w == nil {
		return nil
	}

	if err := w.Activate(ctx); err != nil {
		r.logger.Err(err).Str("version", w.Version()).Msg("activation failed")
		return fmt.Errorf("activate worker %s: %w", w.Version(), err)
	}

	r.mu.Lock()
	if r.waiting != w {
		// superseded while its caches were being swept
		r.mu.Unlock()
		return nil
	}
	old := r.active
	r.active, r.waiting = w, nil
	r.mu.Unlock()

	if old != nil && old != w {
		old.setState(models.WorkerRedundant)
	}
	w.setState(models.WorkerActive)
	r.clients.Claim(w.Version())

	r.logger.Info().Str("version", w.Version()).Msg("worker activated")
	return nil
}

// promoteIfReleased runs after a page disconnects.
func (r *Registration) promoteIfReleased() {
	r.mu.RLock()
	pending := r.waiting != nil && (r.active == nil || r.clients.ControlledBy(r.active.Version()) == 0)
	r.mu.RUnlock()

	if !pending {
		return
	}
	if err := r.activateWaiting(context.Background()); err != nil {
		r.logger.Err(err).Msg("failed to promote waiting worker")
	}
}

func (r *Registration) eventHandler() EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.handler
}
