package service

import (
	"context"

	"github.com/MKhiriev/go-fit-offline/internal/adapter"
	"github.com/MKhiriev/go-fit-offline/models"
)

// MutationQueue is the durable FIFO of writes made while offline.
type MutationQueue interface {
	// Enqueue appends a write and returns its ID once it is committed.
	// When the queue is full the oldest entry is evicted.
	Enqueue(ctx context.Context, endpoint, method string, body []byte, headers map[string]string) (string, error)

	// DequeueAll returns every entry in replay order without removing any.
	DequeueAll(ctx context.Context) ([]models.QueuedMutation, error)

	// Remove deletes an entry. Missing IDs are ignored.
	Remove(ctx context.Context, id string) error

	// RecordFailure increments the retry counter of an entry. Once the
	// counter reaches the retry ceiling the entry is moved to the failed
	// history and returned.
	RecordFailure(ctx context.Context, id string, cause error) (*models.FailedMutation, error)

	Len(ctx context.Context) (int, error)

	// Failed returns dropped entries, newest first. A zero limit returns all.
	Failed(ctx context.Context, limit uint64) ([]models.FailedMutation, error)
}

// SyncReconciler drains the queue when connectivity comes back.
type SyncReconciler interface {
	// Run listens for connectivity transitions until ctx is cancelled.
	Run(ctx context.Context) error

	// Sync replays the queue once. An overlapping call returns
	// [ErrSyncInProgress] without doing anything.
	Sync(ctx context.Context) (models.SyncResult, error)

	// Dropped emits every entry discarded after its last failed replay.
	Dropped() <-chan models.DroppedMutation
}

// Writer sends page writes to the backend, queueing them when the network
// is unavailable.
type Writer interface {
	Write(ctx context.Context, req adapter.WriteRequest) (WriteResult, error)
}

// PushRegistrar manages the device's push subscription.
type PushRegistrar interface {
	State(ctx context.Context) (models.RegistrarState, error)
	SetPermission(ctx context.Context, permission models.PushPermission) error
	Subscribe(ctx context.Context) (models.PushSubscription, error)
	Unsubscribe(ctx context.Context) error
}

// SessionService holds the bearer token queued writes are replayed with.
type SessionService interface {
	Login(ctx context.Context, token string) (models.Session, error)
	Current(ctx context.Context) (models.Session, error)
	Logout(ctx context.Context) error
}
