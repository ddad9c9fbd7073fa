package proxy

import (
	"context"
	"encoding/json"

	"github.com/MKhiriev/go-fit-offline/models"
)

// Message is a control signal or event delivered to the background context.
type Message interface {
	controlMessage()
}

// SkipWaiting promotes the waiting worker immediately.
type SkipWaiting struct{}

// CacheURLs adds paths to the active worker's cache.
type CacheURLs struct {
	URLs []string `json:"urls"`
}

// PushEvent is an inbound push delivery.
type PushEvent struct {
	Body []byte
	// ContentEncoding is "aes128gcm" for encrypted deliveries, empty for
	// plaintext ones.
	ContentEncoding string
}

// NotificationClick reports a click on a shown notification.
type NotificationClick struct {
	Click models.NotificationClick
}

func (SkipWaiting) controlMessage()       {}
func (CacheURLs) controlMessage()         {}
func (PushEvent) controlMessage()         {}
func (NotificationClick) controlMessage() {}

// EventHandler handles push and notification events inside the background
// context.
type EventHandler interface {
	HandlePush(ctx context.Context, body []byte, contentEncoding string) error
	HandleClick(ctx context.Context, click models.NotificationClick) error
}

type envelope struct {
	ctx   context.Context
	msg   Message
	reply chan error
}

func mustJSONString(s string) json.RawMessage {
	raw, _ := json.Marshal(s)
	return raw
}
