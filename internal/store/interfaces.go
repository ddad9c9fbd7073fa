package store

import (
	"context"

	"github.com/MKhiriev/go-fit-offline/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// CacheRepository persists named, versioned stores of captured responses.
// Eviction is whole-store only: [CacheRepository.Delete] drops a name and
// every entry under it.
type CacheRepository interface {
	Open(ctx context.Context, name string) error
	Names(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) (bool, error)
	Match(ctx context.Context, name, url string) (models.CachedResponse, error)
	Put(ctx context.Context, name string, resp models.CachedResponse) error
	Keys(ctx context.Context, name string) ([]string, error)
}

// MutationRepository is the durable backing of the mutation queue.
//
// Every read returns the queue version stamp it observed. Commit applies a
// batch of changes only if the stamp is still current and returns
// [ErrVersionConflict] otherwise.
type MutationRepository interface {
	Snapshot(ctx context.Context) (QueueSnapshot, error)
	Commit(ctx context.Context, version int64, ops QueueOps) error
	Count(ctx context.Context) (int, error)
	Failed(ctx context.Context, limit uint64) ([]models.FailedMutation, error)
	IsRetryable(err error) bool
}

// SessionRepository stores the current bearer credential.
type SessionRepository interface {
	GetSession(ctx context.Context) (models.Session, error)
	SaveSession(ctx context.Context, session models.Session) error
	ClearSession(ctx context.Context) error
}

// PushRepository stores the notification permission and the platform side
// of the push subscription.
type PushRepository interface {
	GetPermission(ctx context.Context) (models.PushPermission, error)
	SetPermission(ctx context.Context, permission models.PushPermission) error
	GetSubscription(ctx context.Context) (models.LocalPushSubscription, error)
	SaveSubscription(ctx context.Context, sub models.LocalPushSubscription) error
	DeleteSubscription(ctx context.Context) error
}

// QueueSnapshot is the queue content together with the version stamp it was
// read at. Items are ordered by creation time, then insertion sequence.
type QueueSnapshot struct {
	Version int64
	Items   []models.QueuedMutation
}

// QueueOps is a batch of queue changes committed atomically.
type QueueOps struct {
	// Insert appends new entries.
	Insert []models.QueuedMutation
	// Delete removes entries by ID. Missing IDs are ignored.
	Delete []string
	// Retries sets the retry counter of existing entries.
	Retries map[string]int
	// Fail removes entries and archives them in the failed history.
	Fail []models.FailedMutation
}

// Empty reports whether the batch changes nothing.
func (o QueueOps) Empty() bool {
	return len(o.Insert) == 0 && len(o.Delete) == 0 && len(o.Retries) == 0 && len(o.Fail) == 0
}
