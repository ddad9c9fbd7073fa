package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/MKhiriev/go-fit-offline/internal/adapter"
	"github.com/MKhiriev/go-fit-offline/internal/config"
	"github.com/MKhiriev/go-fit-offline/internal/connectivity"
	"github.com/MKhiriev/go-fit-offline/internal/logger"
	"github.com/MKhiriev/go-fit-offline/internal/metrics"
	"github.com/MKhiriev/go-fit-offline/internal/store"
	"github.com/MKhiriev/go-fit-offline/models"
)

// ConnectivitySource is the part of [connectivity.Monitor] the reconciler
// listens to.
type ConnectivitySource interface {
	Online() bool
	Subscribe(buf int) (<-chan connectivity.Transition, func())
}

const droppedBuffer = 32

type syncReconciler struct {
	queue    MutationQueue
	sessions store.SessionRepository
	backend  adapter.BackendAdapter
	conn     ConnectivitySource
	settle   time.Duration

	running atomic.Bool
	passes  sync.WaitGroup
	dropped chan models.DroppedMutation

	metrics *metrics.Metrics
	now     func() time.Time
	logger  *logger.Logger
}

// NewSyncReconciler returns a [SyncReconciler] that replays queue through
// backend with the token found in sessions at replay time.
func NewSyncReconciler(
	queue MutationQueue,
	sessions store.SessionRepository,
	backend adapter.BackendAdapter,
	conn ConnectivitySource,
	cfg config.Workers,
	m *metrics.Metrics,
	log *logger.Logger,
) SyncReconciler {
	return &syncReconciler{
		queue:    queue,
		sessions: sessions,
		backend:  backend,
		conn:     conn,
		settle:   cfg.SettleDelay,
		dropped:  make(chan models.DroppedMutation, droppedBuffer),
		metrics:  m,
		now:      time.Now,
		logger:   log.WithComponent("reconciler"),
	}
}

func (r *syncReconciler) Dropped() <-chan models.DroppedMutation { return r.dropped }

// Run starts a pass after every offline→online transition once the
// connection has stayed up for the settle delay. Going offline during the
// delay abandons the pass.
func (r *syncReconciler) Run(ctx context.Context) error {
	transitions, unsubscribe := r.conn.Subscribe(4)
	defer unsubscribe()

	var abort chan struct{}
	stopPending := func() {
		if abort != nil {
			close(abort)
			abort = nil
		}
	}
	defer func() {
		stopPending()
		r.passes.Wait()
	}()

	r.logger.Info().Dur("settle", r.settle).Msg("reconciler started")
	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("reconciler stopped")
			return nil
		case t, ok := <-transitions:
			if !ok {
				return nil
			}
			stopPending()
			if !t.Online {
				continue
			}

			abort = make(chan struct{})
			r.passes.Add(1)
			go func(abort <-chan struct{}) {
				defer r.passes.Done()
				r.settleAndSync(ctx, abort)
			}(abort)
		}
	}
}

func (r *syncReconciler) settleAndSync(ctx context.Context, abort <-chan struct{}) {
	timer := time.NewTimer(r.settle)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-abort:
		r.logger.Debug().Msg("connection dropped during settle delay, pass abandoned")
		return
	case <-timer.C:
	}

	if !r.conn.Online() {
		return
	}

	result, err := r.Sync(ctx)
	switch {
	case errors.Is(err, ErrSyncInProgress):
	case err != nil:
		r.logger.Err(err).Int("success", result.Success).Int("failed", result.Failed).Msg("sync pass aborted")
	}
}

// Sync implements [SyncReconciler]. Entries are replayed one at a time in
// queue order. Writes queued while the pass runs are picked up before it
// ends; each entry is tried at most once per pass.
func (r *syncReconciler) Sync(ctx context.Context) (models.SyncResult, error) {
	var result models.SyncResult

	if !r.running.CompareAndSwap(false, true) {
		r.logger.Debug().Msg("sync requested while a pass is running")
		return result, ErrSyncInProgress
	}
	defer r.running.Store(false)

	tried := make(map[string]struct{})
	items, err := r.pending(ctx, tried)
	if err != nil || len(items) == 0 {
		return result, err
	}

	r.metrics.SyncPass()
	log := r.logger.With().Int("queued", len(items)).Logger()
	log.Info().Msg("sync pass started")

	for len(items) > 0 {
		for _, item := range items {
			tried[item.ID] = struct{}{}
			if err = r.replay(ctx, item, &result, &log); err != nil {
				return result, err
			}
		}

		if items, err = r.pending(ctx, tried); err != nil {
			return result, err
		}
	}

	log.Info().Int("success", result.Success).Int("failed", result.Failed).Msg("sync pass finished")
	return result, nil
}

// pending returns the queued entries not yet tried in this pass.
func (r *syncReconciler) pending(ctx context.Context, tried map[string]struct{}) ([]models.QueuedMutation, error) {
	items, err := r.queue.DequeueAll(ctx)
	if err != nil {
		return nil, err
	}

	out := items[:0]
	for _, item := range items {
		if _, ok := tried[item.ID]; !ok {
			out = append(out, item)
		}
	}
	return out, nil
}

// replay sends one entry and settles it in the queue. Only errors that end
// the pass are returned.
func (r *syncReconciler) replay(ctx context.Context, item models.QueuedMutation, result *models.SyncResult, log *zerolog.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	token, err := r.currentToken(ctx)
	if err != nil {
		return err
	}

	replayErr := r.backend.Replay(ctx, item, token)
	if replayErr == nil {
		if err = r.queue.Remove(ctx, item.ID); err != nil {
			return err
		}
		result.Success++
		r.metrics.Replay(metrics.ReplaySuccess)
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	dropped, err := r.queue.RecordFailure(ctx, item.ID, replayErr)
	if err != nil {
		return err
	}
	if dropped == nil {
		r.metrics.Replay(metrics.ReplayRetry)
		log.Debug().Err(replayErr).Str("id", item.ID).Int("retries", item.Retries+1).Msg("replay failed, will retry")
		return nil
	}

	result.Failed++
	r.metrics.Replay(metrics.ReplayDropped)
	r.emitDropped(models.DroppedMutation{Mutation: dropped.QueuedMutation, Err: dropped.LastError, At: dropped.DroppedAt})
	return nil
}

// currentToken returns the stored token, or "" when nobody is signed in.
func (r *syncReconciler) currentToken(ctx context.Context) (string, error) {
	session, err := r.sessions.GetSession(ctx)
	if errors.Is(err, store.ErrSessionNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read session: %w", err)
	}
	if session.Expired(r.now()) {
		return "", ErrSessionExpired
	}
	return session.Token, nil
}

func (r *syncReconciler) emitDropped(d models.DroppedMutation) {
	r.logger.Warn().
		Str("id", d.Mutation.ID).
		Str("method", d.Mutation.Method).
		Str("endpoint", d.Mutation.Endpoint).
		Str("error", d.Err).
		Msg("queued write dropped after final retry")

	select {
	case r.dropped <- d:
	default:
		r.logger.Warn().Str("id", d.Mutation.ID).Msg("dropped-mutation listener is behind, event discarded")
	}
}
