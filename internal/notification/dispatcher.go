package notification

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-fit-offline/internal/config"
	"github.com/MKhiriev/go-fit-offline/internal/crypto"
	"github.com/MKhiriev/go-fit-offline/internal/logger"
	"github.com/MKhiriev/go-fit-offline/internal/metrics"
	"github.com/MKhiriev/go-fit-offline/internal/store"
	"github.com/MKhiriev/go-fit-offline/models"
)

// EncodingAES128GCM is the Content-Encoding of RFC 8291 encrypted pushes.
const EncodingAES128GCM = "aes128gcm"

// Message type posted to the focused page on a notification click.
const MessageNotificationClick = "notification-click"

// Dispatcher handles push and notification click events.
type Dispatcher struct {
	app     config.App
	shower  Shower
	clients ClientFinder
	keys    crypto.PushKeyChain
	subs    store.PushRepository
	metrics *metrics.Metrics
	now     func() time.Time
	logger  *logger.Logger
}

// NewDispatcher wires a dispatcher. keys and subs are needed only for
// encrypted deliveries and may be nil.
func NewDispatcher(
	app config.App,
	shower Shower,
	clients ClientFinder,
	keys crypto.PushKeyChain,
	subs store.PushRepository,
	m *metrics.Metrics,
	log *logger.Logger,
) *Dispatcher {
	return &Dispatcher{
		app:     app,
		shower:  shower,
		clients: clients,
		keys:    keys,
		subs:    subs,
		metrics: m,
		now:     time.Now,
		logger:  log.WithComponent("notifications"),
	}
}

// Build applies defaults to every absent payload field.
func (d *Dispatcher) Build(p models.NotificationPayload) models.Notification {
	n := models.Notification{
		Title:              or(p.Title, d.app.Name),
		Body:               or(p.Body, ""),
		Icon:               or(p.Icon, d.app.DefaultIcon),
		Badge:              or(p.Badge, d.app.DefaultBadge),
		Image:              or(p.Image, ""),
		Tag:                or(p.Tag, ""),
		Renotify:           p.Renotify != nil && *p.Renotify,
		RequireInteraction: p.RequireInteraction != nil && *p.RequireInteraction,
		Silent:             p.Silent != nil && *p.Silent,
		Vibrate:            append([]int(nil), DefaultVibrate...),
		Timestamp:          d.now().UnixMilli(),
	}
	if p.Vibrate != nil {
		n.Vibrate = p.Vibrate
	}
	if len(p.Actions) > 0 {
		n.Actions = p.Actions
	}
	if data := bytes.TrimSpace(p.Data); len(data) > 0 && !bytes.Equal(data, []byte("null")) {
		n.Data = data
	}
	if p.Timestamp != nil {
		n.Timestamp = *p.Timestamp
	}
	return n
}

// HandlePush decodes body, decrypting it first when contentEncoding is
// aes128gcm, and shows the resulting notification.
func (d *Dispatcher) HandlePush(ctx context.Context, body []byte, contentEncoding string) error {
	d.metrics.PushEvent(metrics.PushReceived)

	plain, err := d.decode(ctx, body, contentEncoding)
	if err != nil {
		d.metrics.PushEvent(metrics.PushUndecryptable)
		d.logger.Err(err).Str("encoding", contentEncoding).Msg("dropping undecryptable push")
		return err
	}

	n := d.Build(ParsePayload(plain))
	if err = d.shower.Show(ctx, n); err != nil {
		d.logger.Err(err).Str("title", n.Title).Msg("failed to show notification")
		return fmt.Errorf("%w: %w", ErrShowFailed, err)
	}

	d.metrics.PushEvent(metrics.PushShown)
	d.logger.Info().Str("title", n.Title).Str("tag", n.Tag).Msg("notification shown")
	return nil
}

// HandleClick focuses the first open page and posts the notification data
// to it. With no page open, a new one is opened at data.path.
func (d *Dispatcher) HandleClick(ctx context.Context, click models.NotificationClick) error {
	d.metrics.PushEvent(metrics.PushClicked)

	open := d.clients.MatchAll(ctx)
	if len(open) == 0 {
		path := ClickPath(click.Notification.Data)
		d.logger.Info().Str("path", path).Msg("no open client, opening window")
		return d.clients.OpenWindow(ctx, path)
	}

	target := open[0]
	if err := d.clients.Focus(ctx, target.ID); err != nil {
		return fmt.Errorf("focus client %s: %w", target.ID, err)
	}

	msg := models.ClientMessage{Type: MessageNotificationClick, Data: click.Notification.Data}
	if err := d.clients.PostMessage(ctx, target.ID, msg); err != nil {
		return fmt.Errorf("post to client %s: %w", target.ID, err)
	}
	return nil
}

func (d *Dispatcher) decode(ctx context.Context, body []byte, contentEncoding string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(contentEncoding)) {
	case "", "identity":
		return body, nil
	case EncodingAES128GCM:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, contentEncoding)
	}

	if d.keys == nil || d.subs == nil {
		return nil, ErrNoSubscription
	}
	sub, err := d.subs.GetSubscription(ctx)
	if errors.Is(err, store.ErrSubscriptionNotFound) {
		return nil, ErrNoSubscription
	}
	if err != nil {
		return nil, fmt.Errorf("load subscription: %w", err)
	}
	return d.keys.Decrypt(body, sub.PrivateKey, sub.AuthSecret)
}

func or(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}
