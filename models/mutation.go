package models

import (
	"net/http"
	"time"
)

// QueuedMutation is a single pending write operation held in the durable
// mutation queue until it is replayed against the backend.
type QueuedMutation struct {
	// ID uniquely identifies the entry inside the queue.
	ID string `json:"id"`

	// Seq is the monotonic insertion sequence assigned by the store.
	// It breaks ties between entries created within the same clock tick.
	Seq int64 `json:"seq"`

	// Endpoint is the backend path relative to the API base (e.g. "/workouts").
	Endpoint string `json:"endpoint"`

	// Method is one of POST, PUT, PATCH or DELETE.
	Method string `json:"method"`

	// Body is the opaque request payload, replayed byte for byte.
	Body []byte `json:"body,omitempty"`

	// Headers is the allow-listed subset of the original request headers.
	// Authorization is never persisted; the current credential is attached
	// at replay time.
	Headers map[string]string `json:"headers,omitempty"`

	// CreatedAt is the enqueue timestamp. Replay order is CreatedAt ascending.
	CreatedAt time.Time `json:"created_at"`

	// Retries counts failed replays. Starts at 0.
	Retries int `json:"retries"`
}

// IsWriteMethod reports whether method may be queued for replay.
func IsWriteMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

// FailedMutation is a queued mutation that exhausted its retry budget and
// was dropped from the queue. It is kept in a history table so the host
// application can surface it instead of losing it silently.
type FailedMutation struct {
	QueuedMutation

	// LastError is the error text of the final failed replay.
	LastError string `json:"last_error"`

	// DroppedAt is the moment the entry left the queue.
	DroppedAt time.Time `json:"dropped_at"`
}

// QueuedResponse is the synthetic body returned to a caller whose write was
// accepted into the queue instead of being sent.
type QueuedResponse struct {
	Queued bool   `json:"queued"`
	ID     string `json:"id"`
}
