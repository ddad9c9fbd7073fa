package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MKhiriev/go-fit-offline/internal/config"
	"github.com/MKhiriev/go-fit-offline/internal/logger"
	"github.com/MKhiriev/go-fit-offline/internal/metrics"
	"github.com/MKhiriev/go-fit-offline/internal/store"
	"github.com/MKhiriev/go-fit-offline/internal/utils"
	"github.com/MKhiriev/go-fit-offline/models"
)

// allowedHeaders are the only request headers persisted with a queued write.
var allowedHeaders = []string{
	"Content-Type",
	"Accept",
	"X-Request-ID",
	"Idempotency-Key",
	"X-Trace-ID",
}

type mutationQueue struct {
	repo    store.MutationRepository
	cfg     config.Queue
	ids     *utils.UUIDGenerator
	metrics *metrics.Metrics
	now     func() time.Time

	logger *logger.Logger
}

// NewMutationQueue returns a [MutationQueue] over repo. Every change is a
// read-modify-write guarded by the queue version stamp and retried up to
// cfg.CommitAttempts times when another writer got in between.
func NewMutationQueue(repo store.MutationRepository, cfg config.Queue, m *metrics.Metrics, log *logger.Logger) MutationQueue {
	if cfg.CommitAttempts <= 0 {
		cfg.CommitAttempts = 1
	}
	return &mutationQueue{
		repo:    repo,
		cfg:     cfg,
		ids:     utils.NewUUIDGenerator(),
		metrics: m,
		now:     time.Now,
		logger:  log.WithComponent("queue"),
	}
}

func (q *mutationQueue) Enqueue(ctx context.Context, endpoint, method string, body []byte, headers map[string]string) (string, error) {
	method = strings.ToUpper(strings.TrimSpace(method))
	if !models.IsWriteMethod(method) {
		return "", fmt.Errorf("%w: %q", ErrInvalidMethod, method)
	}
	if strings.TrimSpace(endpoint) == "" {
		return "", ErrEmptyEndpoint
	}

	item := models.QueuedMutation{
		ID:        q.ids.Generate(),
		Endpoint:  endpoint,
		Method:    method,
		Body:      body,
		Headers:   filterHeaders(headers),
		CreatedAt: q.now().UTC(),
	}

	var evicted []string
	err := q.update(ctx, func(s store.QueueSnapshot) store.QueueOps {
		ops := store.QueueOps{Insert: []models.QueuedMutation{item}}
		if q.cfg.Capacity > 0 {
			overflow := len(s.Items) + 1 - q.cfg.Capacity
			for i := 0; i < overflow && i < len(s.Items); i++ {
				ops.Delete = append(ops.Delete, s.Items[i].ID)
			}
		}
		evicted = ops.Delete
		return ops
	})
	if err != nil {
		return "", fmt.Errorf("enqueue %s %s: %w", method, endpoint, err)
	}

	for _, id := range evicted {
		q.logger.Warn().Str("evicted", id).Int("capacity", q.cfg.Capacity).Msg("queue full, oldest entry evicted")
	}
	q.metrics.Enqueued(len(evicted))
	q.refreshLength(ctx)

	logger.FromContext(ctx).Info().
		Str("id", item.ID).
		Str("method", method).
		Str("endpoint", endpoint).
		Msg("write queued for replay")
	return item.ID, nil
}

func (q *mutationQueue) DequeueAll(ctx context.Context) ([]models.QueuedMutation, error) {
	s, err := q.repo.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("read queue: %w", err)
	}
	return s.Items, nil
}

func (q *mutationQueue) Remove(ctx context.Context, id string) error {
	err := q.update(ctx, func(s store.QueueSnapshot) store.QueueOps {
		if _, ok := find(s.Items, id); !ok {
			return store.QueueOps{}
		}
		return store.QueueOps{Delete: []string{id}}
	})
	if err != nil {
		return fmt.Errorf("remove %s: %w", id, err)
	}
	q.refreshLength(ctx)
	return nil
}

func (q *mutationQueue) RecordFailure(ctx context.Context, id string, cause error) (*models.FailedMutation, error) {
	var dropped *models.FailedMutation

	err := q.update(ctx, func(s store.QueueSnapshot) store.QueueOps {
		dropped = nil
		item, ok := find(s.Items, id)
		if !ok {
			return store.QueueOps{}
		}

		item.Retries++
		if item.Retries < q.cfg.MaxRetries {
			return store.QueueOps{Retries: map[string]int{id: item.Retries}}
		}

		f := models.FailedMutation{QueuedMutation: item, DroppedAt: q.now().UTC()}
		if cause != nil {
			f.LastError = cause.Error()
		}
		dropped = &f
		return store.QueueOps{Fail: []models.FailedMutation{f}}
	})
	if err != nil {
		return nil, fmt.Errorf("record failure of %s: %w", id, err)
	}
	if dropped != nil {
		q.refreshLength(ctx)
	}
	return dropped, nil
}

func (q *mutationQueue) Len(ctx context.Context) (int, error) {
	n, err := q.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count queue: %w", err)
	}
	return n, nil
}

func (q *mutationQueue) Failed(ctx context.Context, limit uint64) ([]models.FailedMutation, error) {
	return q.repo.Failed(ctx, limit)
}

// update runs one optimistic read-modify-write. plan sees the latest
// snapshot and returns the changes to commit; an empty batch commits
// nothing.
func (q *mutationQueue) update(ctx context.Context, plan func(store.QueueSnapshot) store.QueueOps) error {
	var lastErr error
	for attempt := 1; attempt <= q.cfg.CommitAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		s, err := q.repo.Snapshot(ctx)
		if err != nil {
			if !q.repo.IsRetryable(err) {
				return err
			}
			lastErr = err
			continue
		}

		ops := plan(s)
		if ops.Empty() {
			return nil
		}

		err = q.repo.Commit(ctx, s.Version, ops)
		if err == nil {
			return nil
		}
		if !q.repo.IsRetryable(err) {
			return err
		}
		lastErr = err
		q.logger.Debug().Err(err).Int("attempt", attempt).Int64("version", s.Version).Msg("queue commit conflicted, retrying")
	}

	if lastErr == nil {
		lastErr = store.ErrVersionConflict
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrQueueContention, q.cfg.CommitAttempts, lastErr)
}

func (q *mutationQueue) refreshLength(ctx context.Context) {
	if q.metrics == nil {
		return
	}
	n, err := q.repo.Count(ctx)
	if err != nil {
		q.logger.Debug().Err(err).Msg("failed to refresh queue length")
		return
	}
	q.metrics.QueueLength(n)
}

func filterHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string)
	for name, value := range headers {
		canonical := http.CanonicalHeaderKey(name)
		for _, allowed := range allowedHeaders {
			if canonical == http.CanonicalHeaderKey(allowed) {
				out[allowed] = value
				break
			}
		}
	}
	return out
}

func find(items []models.QueuedMutation, id string) (models.QueuedMutation, bool) {
	for _, item := range items {
		if item.ID == id {
			return item, true
		}
	}
	return models.QueuedMutation{}, false
}
