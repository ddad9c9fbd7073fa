package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MKhiriev/go-fit-offline/internal/logger"
)

type namedWorker struct {
	name   string
	worker Worker
}

// Workers runs every added worker concurrently. The first worker to fail
// cancels the rest.
type Workers struct {
	workers []namedWorker
	logger  *logger.Logger
}

func NewWorkers(logger *logger.Logger) *Workers {
	return &Workers{logger: logger.WithComponent("workers")}
}

// Add registers a worker under name. Names only label logs and errors.
func (w *Workers) Add(name string, worker Worker) *Workers {
	w.workers = append(w.workers, namedWorker{name: name, worker: worker})
	return w
}

// Run blocks until every worker has returned. The result joins the errors
// of all failed workers.
func (w *Workers) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	for _, nw := range w.workers {
		nw := nw
		wg.Add(1)
		go func() {
			defer wg.Done()

			w.logger.Info().Str("worker", nw.name).Msg("worker started")
			err := nw.worker.Run(ctx)
			if err != nil && !stopped(ctx, err) {
				w.logger.Err(err).Str("worker", nw.name).Msg("worker failed, stopping the rest")

				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", nw.name, err))
				mu.Unlock()

				cancel()
				return
			}
			w.logger.Info().Str("worker", nw.name).Msg("worker stopped")
		}()
	}

	wg.Wait()
	return errors.Join(errs...)
}

// stopped reports whether err is just the worker seeing ctx end, by
// cancellation or by deadline.
func stopped(ctx context.Context, err error) bool {
	if ctx.Err() == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
