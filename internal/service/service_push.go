package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/MKhiriev/go-fit-offline/internal/adapter"
	"github.com/MKhiriev/go-fit-offline/internal/config"
	"github.com/MKhiriev/go-fit-offline/internal/crypto"
	"github.com/MKhiriev/go-fit-offline/internal/logger"
	"github.com/MKhiriev/go-fit-offline/internal/metrics"
	"github.com/MKhiriev/go-fit-offline/internal/store"
	"github.com/MKhiriev/go-fit-offline/internal/utils"
	"github.com/MKhiriev/go-fit-offline/models"
)

type pushRegistrar struct {
	backend  adapter.BackendAdapter
	push     store.PushRepository
	sessions store.SessionRepository
	keys     crypto.PushKeyChain
	cfg      config.Push

	mu          sync.Mutex
	subscribing bool

	ids     *utils.UUIDGenerator
	metrics *metrics.Metrics
	now     func() time.Time
	logger  *logger.Logger
}

// NewPushRegistrar returns a [PushRegistrar]. Push is unsupported when
// cfg.EndpointBase is empty.
func NewPushRegistrar(
	backend adapter.BackendAdapter,
	push store.PushRepository,
	sessions store.SessionRepository,
	keys crypto.PushKeyChain,
	cfg config.Push,
	m *metrics.Metrics,
	log *logger.Logger,
) PushRegistrar {
	return &pushRegistrar{
		backend:  backend,
		push:     push,
		sessions: sessions,
		keys:     keys,
		cfg:      cfg,
		ids:      utils.NewUUIDGenerator(),
		metrics:  m,
		now:      time.Now,
		logger:   log.WithComponent("push"),
	}
}

func (p *pushRegistrar) supported() bool {
	return strings.TrimSpace(p.cfg.EndpointBase) != "" && p.keys != nil
}

func (p *pushRegistrar) State(ctx context.Context) (models.RegistrarState, error) {
	if !p.supported() {
		return models.RegistrarUnsupported, nil
	}

	permission, err := p.push.GetPermission(ctx)
	if err != nil {
		return "", err
	}
	if permission == models.PermissionDenied {
		return models.RegistrarBlocked, nil
	}

	p.mu.Lock()
	subscribing := p.subscribing
	p.mu.Unlock()
	if subscribing {
		return models.RegistrarSubscribing, nil
	}

	sub, err := p.push.GetSubscription(ctx)
	switch {
	case err == nil && sub.Persisted:
		return models.RegistrarSubscribed, nil
	case err == nil:
		return models.RegistrarUnregistered, nil
	case errors.Is(err, store.ErrSubscriptionNotFound):
		return models.RegistrarUnregistered, nil
	default:
		return "", err
	}
}

// SetPermission records the user's decision. A denial is final: it cannot
// be changed afterwards, and an existing subscription is removed.
func (p *pushRegistrar) SetPermission(ctx context.Context, permission models.PushPermission) error {
	switch permission {
	case models.PermissionDefault, models.PermissionGranted, models.PermissionDenied:
	default:
		return fmt.Errorf("unknown permission %q", permission)
	}

	current, err := p.push.GetPermission(ctx)
	if err != nil {
		return err
	}
	if current == models.PermissionDenied {
		if permission == models.PermissionDenied {
			return nil
		}
		return ErrPermissionDenied
	}

	if err = p.push.SetPermission(ctx, permission); err != nil {
		return err
	}
	if permission == models.PermissionDenied {
		return p.Unsubscribe(ctx)
	}
	return nil
}

// Subscribe fetches the server key, reuses the stored subscription when it
// was created for the same key and registers it with the backend. A default
// permission is taken as granted by the user's request to subscribe.
// Failures are returned once and not retried.
func (p *pushRegistrar) Subscribe(ctx context.Context) (models.PushSubscription, error) {
	if !p.supported() {
		return models.PushSubscription{}, ErrPushUnsupported
	}

	permission, err := p.push.GetPermission(ctx)
	if err != nil {
		return models.PushSubscription{}, err
	}
	switch permission {
	case models.PermissionDenied:
		return models.PushSubscription{}, ErrPermissionDenied
	case models.PermissionDefault:
		if err = p.push.SetPermission(ctx, models.PermissionGranted); err != nil {
			return models.PushSubscription{}, err
		}
	}

	p.mu.Lock()
	p.subscribing = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.subscribing = false
		p.mu.Unlock()
	}()

	token := p.token(ctx)

	serverKey, err := p.backend.VAPIDPublicKey(ctx, token)
	if err != nil {
		p.logger.Err(err).Msg("failed to fetch server key")
		return models.PushSubscription{}, fmt.Errorf("%w: fetch server key: %w", ErrSubscribeFailed, err)
	}
	if serverKey == "" {
		return models.PushSubscription{}, ErrPushNotConfigured
	}

	local, err := p.localSubscription(ctx, serverKey)
	if err != nil {
		return models.PushSubscription{}, fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
	}

	if err = p.backend.SaveSubscription(ctx, local.PushSubscription, token); err != nil {
		p.logger.Err(err).Str("endpoint", local.Endpoint).Msg("backend rejected subscription")
		return models.PushSubscription{}, fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
	}
	if !local.Persisted {
		local.Persisted = true
		if err = p.push.SaveSubscription(ctx, local); err != nil {
			return models.PushSubscription{}, fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
		}
	}

	p.metrics.PushEvent(metrics.PushSubscribed)
	p.logger.Info().Str("endpoint", local.Endpoint).Msg("push subscription registered")
	return local.PushSubscription, nil
}

// localSubscription returns the stored subscription for serverKey or
// creates a new one.
func (p *pushRegistrar) localSubscription(ctx context.Context, serverKey string) (models.LocalPushSubscription, error) {
	existing, err := p.push.GetSubscription(ctx)
	switch {
	case err == nil && existing.ApplicationServerKey == serverKey:
		return existing, nil
	case err == nil:
		p.logger.Info().Msg("server key changed, replacing subscription")
	case !errors.Is(err, store.ErrSubscriptionNotFound):
		return models.LocalPushSubscription{}, err
	}

	keys, err := p.keys.GenerateSubscriptionKeys()
	if err != nil {
		return models.LocalPushSubscription{}, err
	}

	sub := models.LocalPushSubscription{
		PushSubscription: models.PushSubscription{
			Endpoint: strings.TrimRight(p.cfg.EndpointBase, "/") + "/" + p.ids.Generate(),
			Keys:     keys.Encoded(),
		},
		PrivateKey:           keys.PrivateKey,
		AuthSecret:           keys.AuthSecret,
		ApplicationServerKey: serverKey,
		CreatedAt:            p.now().UTC(),
	}
	if err = p.push.SaveSubscription(ctx, sub); err != nil {
		return models.LocalPushSubscription{}, err
	}
	return sub, nil
}

// Unsubscribe removes the subscription from the backend, then drops the
// local copy. A subscription the backend no longer knows counts as removed.
// When the backend call fails the local copy is kept so the call can be
// repeated.
func (p *pushRegistrar) Unsubscribe(ctx context.Context) error {
	sub, err := p.push.GetSubscription(ctx)
	if errors.Is(err, store.ErrSubscriptionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if sub.Persisted {
		err = p.backend.DeleteSubscription(ctx, sub.Endpoint, p.token(ctx))
		if err != nil && !errors.Is(err, adapter.ErrNotFound) {
			return fmt.Errorf("delete subscription on backend: %w", err)
		}
	}

	if err = p.push.DeleteSubscription(ctx); err != nil {
		return err
	}

	p.metrics.PushEvent(metrics.PushUnsubscribed)
	p.logger.Info().Str("endpoint", sub.Endpoint).Msg("push subscription removed")
	return nil
}

func (p *pushRegistrar) token(ctx context.Context) string {
	session, err := p.sessions.GetSession(ctx)
	if err != nil {
		return ""
	}
	return session.Token
}
