package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/MKhiriev/go-fit-offline/internal/logger"
	"github.com/MKhiriev/go-fit-offline/internal/metrics"
	"github.com/MKhiriev/go-fit-offline/internal/store"
	"github.com/MKhiriev/go-fit-offline/internal/utils"
	"github.com/MKhiriev/go-fit-offline/models"
)

// OutcomeReporter receives the result of every network attempt.
type OutcomeReporter interface {
	ReportOutcome(err error)
}

// WorkerConfig describes one cache version of the proxy.
type WorkerConfig struct {
	// Version names the cache store this worker reads and writes.
	Version string
	// Origin is the backend base URL the manifest is fetched from.
	Origin string
	// StaticManifest lists paths cached on install.
	StaticManifest []string
	// OfflinePage is served to navigations with nothing else to show.
	OfflinePage string
	Router      Router
}

// Worker is one version of the caching proxy.
type Worker struct {
	cfg     WorkerConfig
	origin  *url.URL
	cache   store.CacheRepository
	network http.RoundTripper

	reporter OutcomeReporter
	metrics  *metrics.Metrics
	logger   *logger.Logger

	mu    sync.RWMutex
	state models.WorkerState
	now   func() time.Time
}

// NewWorker builds a worker in the Installing state. reporter and m may be nil.
func NewWorker(cfg WorkerConfig, cache store.CacheRepository, network http.RoundTripper, reporter OutcomeReporter, m *metrics.Metrics, log *logger.Logger) (*Worker, error) {
	if cfg.Version == "" {
		return nil, errors.New("worker cache version is empty")
	}
	origin, err := url.Parse(strings.TrimRight(cfg.Origin, "/"))
	if err != nil || origin.Scheme == "" || origin.Host == "" {
		return nil, fmt.Errorf("invalid worker origin %q", cfg.Origin)
	}
	if network == nil {
		network = http.DefaultTransport
	}

	return &Worker{
		cfg:      cfg,
		origin:   origin,
		cache:    cache,
		network:  network,
		reporter: reporter,
		metrics:  m,
		logger:   log.WithComponent("proxy"),
		state:    models.WorkerInstalling,
		now:      time.Now,
	}, nil
}

func (w *Worker) Version() string { return w.cfg.Version }

func (w *Worker) State() models.WorkerState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

func (w *Worker) setState(s models.WorkerState) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = s
}

// Install opens the worker's cache and seeds it with the static manifest.
// Individual asset failures are logged and skipped.
func (w *Worker) Install(ctx context.Context) error {
	if err := w.cache.Open(ctx, w.cfg.Version); err != nil {
		return fmt.Errorf("open cache %s: %w", w.cfg.Version, err)
	}

	cached := 0
	for _, path := range w.cfg.StaticManifest {
		if err := w.precache(ctx, path); err != nil {
			w.logger.Warn().Err(err).Str("version", w.cfg.Version).Str("path", path).Msg("failed to precache asset")
			continue
		}
		cached++
	}

	w.logger.Info().
		Str("version", w.cfg.Version).
		Int("cached", cached).
		Int("manifest", len(w.cfg.StaticManifest)).
		Msg("worker installed")
	return nil
}

// Activate deletes every cache whose name is not this worker's version.
// Running it twice leaves the same state.
func (w *Worker) Activate(ctx context.Context) error {
	names, err := w.cache.Names(ctx)
	if err != nil {
		return fmt.Errorf("list caches: %w", err)
	}

	for _, name := range names {
		if name == w.cfg.Version {
			continue
		}
		if _, err := w.cache.Delete(ctx, name); err != nil {
			return fmt.Errorf("delete cache %s: %w", name, err)
		}
		w.logger.Info().Str("version", w.cfg.Version).Str("evicted", name).Msg("old cache evicted")
	}
	return nil
}

// CacheURLs fetches and stores each path in the current version. Failures
// are collected and returned together; successful entries stay cached.
func (w *Worker) CacheURLs(ctx context.Context, paths []string) error {
	var errs []error
	for _, path := range paths {
		if err := w.precache(ctx, path); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
		}
	}
	return errors.Join(errs...)
}

// RoundTrip implements [http.RoundTripper].
func (w *Worker) RoundTrip(req *http.Request) (*http.Response, error) {
	strategy := w.cfg.Router.Classify(req)

	switch strategy {
	case StrategyPassThrough:
		resp, err := w.fetch(req)
		w.record(strategy, resultOf(err, metrics.ResultBypass))
		return resp, err
	case StrategyCacheFirst:
		return w.cacheFirst(req)
	default:
		return w.networkFirst(req, strategy)
	}
}

func (w *Worker) cacheFirst(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	if cached, ok := w.match(ctx, cacheKey(req.URL)); ok {
		w.record(StrategyCacheFirst, metrics.ResultHit)
		return cachedResponse(req, cached, cacheHeaderHit), nil
	}

	resp, err := w.fetch(req)
	if err != nil {
		if w.cfg.Router.IsImage(req.URL.Path) {
			w.record(StrategyCacheFirst, metrics.ResultMiss)
			return emptyNotFound(req), nil
		}
		w.record(StrategyCacheFirst, metrics.ResultError)
		return nil, err
	}

	w.record(StrategyCacheFirst, metrics.ResultNetwork)
	return w.store(req, resp)
}

func (w *Worker) networkFirst(req *http.Request, strategy Strategy) (*http.Response, error) {
	ctx := req.Context()

	resp, err := w.fetch(req)
	if err == nil {
		w.record(strategy, metrics.ResultNetwork)
		return w.store(req, resp)
	}
	w.requestLogger(req).Debug().Err(err).
		Str("strategy", strategy.String()).
		Str("url", cacheKey(req.URL)).
		Msg("network failed, falling back to cache")

	if cached, ok := w.match(ctx, cacheKey(req.URL)); ok {
		w.record(strategy, metrics.ResultFallback)
		return cachedResponse(req, cached, cacheHeaderHit), nil
	}

	if strategy != StrategyNavigation {
		w.record(strategy, metrics.ResultError)
		return nil, err
	}

	if w.cfg.OfflinePage != "" {
		if page, ok := w.match(ctx, w.cfg.OfflinePage); ok {
			w.record(strategy, metrics.ResultOffline)
			return cachedResponse(req, page, cacheHeaderOffline), nil
		}
	}

	w.record(strategy, metrics.ResultMiss)
	return serviceUnavailable(req), nil
}

// fetch performs the network call and reports the outcome. A request
// cancelled by its caller says nothing about connectivity.
func (w *Worker) fetch(req *http.Request) (*http.Response, error) {
	resp, err := w.network.RoundTrip(req)
	if w.reporter != nil && req.Context().Err() == nil {
		w.reporter.ReportOutcome(err)
	}
	return resp, err
}

// store caches a copy of a successful GET response and returns it.
//
// A body of known, bounded length is read up front. A body of unknown length
// is copied as the caller reads it and cached once it reaches EOF. Event
// streams and bodies over [maxCachedBody] pass through uncached.
func (w *Worker) store(req *http.Request, resp *http.Response) (*http.Response, error) {
	if !isGet(req.Method) || !isSuccess(resp.StatusCode) || !cacheable(resp) {
		return resp, nil
	}

	entry := models.CachedResponse{
		URL:    cacheKey(req.URL),
		Status: resp.StatusCode,
		Header: resp.Header.Clone(),
	}
	ctx := context.WithoutCancel(req.Context())

	if resp.ContentLength < 0 {
		resp.Body = newCachingBody(resp.Body, maxCachedBody, func(body []byte) {
			entry.Body = body
			w.put(ctx, entry)
		})
		return resp, nil
	}

	body, err := captureBody(resp)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	entry.Body = body
	w.put(ctx, entry)
	return resp, nil
}

func (w *Worker) put(ctx context.Context, entry models.CachedResponse) {
	entry.StoredAt = w.now()
	if err := w.cache.Put(ctx, w.cfg.Version, entry); err != nil {
		// the response is still good, only the copy is lost
		w.logger.Warn().Err(err).Str("url", entry.URL).Msg("failed to cache response")
	}
}

func (w *Worker) precache(ctx context.Context, path string) error {
	ref, err := url.Parse(path)
	if err != nil {
		return err
	}

	target := w.origin.ResolveReference(ref)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return err
	}

	resp, err := w.fetch(req)
	if err != nil {
		return err
	}
	if !isSuccess(resp.StatusCode) {
		resp.Body.Close()
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	resp, err = w.store(req, resp)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	// a streamed body is cached when it hits EOF
	_, err = io.Copy(io.Discard, resp.Body)
	return err
}

func (w *Worker) match(ctx context.Context, key string) (models.CachedResponse, bool) {
	cached, err := w.cache.Match(ctx, w.cfg.Version, key)
	if err != nil {
		if !errors.Is(err, store.ErrCacheMiss) {
			w.logger.Warn().Err(err).Str("url", key).Msg("cache lookup failed")
		}
		return models.CachedResponse{}, false
	}
	return cached, true
}

// requestLogger tags the worker's logger with the page that issued req,
// when the gateway knows it.
func (w *Worker) requestLogger(req *http.Request) *logger.Logger {
	if id, ok := utils.GetClientIDFromContext(req.Context()); ok {
		return &logger.Logger{Logger: w.logger.With().Str("client", id).Logger()}
	}
	return w.logger
}

func (w *Worker) record(strategy Strategy, result string) {
	w.metrics.ProxyRequest(strategy.String(), result)
}

func isGet(method string) bool {
	return method == http.MethodGet || method == ""
}

func resultOf(err error, ok string) string {
	if err != nil {
		return metrics.ResultError
	}
	return ok
}

// cacheKey is the origin-independent part of a URL.
func cacheKey(u *url.URL) string {
	return u.RequestURI()
}
