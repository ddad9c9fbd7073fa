package proxy

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-fit-offline/internal/logger"
	"github.com/MKhiriev/go-fit-offline/internal/store"
)

// ── Install ─────────────────────────────────────────────────────────────────

func TestWorker_Install_SeedsManifestAndSwallowsFailures(t *testing.T) {
	f := newFixture(t)
	w := f.worker(t, "v1", "/icons/icon-192.png", "/offline.html", "/missing.png")

	require.NoError(t, w.Install(context.Background()))

	keys, err := f.cache.Keys(context.Background(), "v1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/icons/icon-192.png", "/offline.html"}, keys)
}

func TestWorker_Install_OfflineStillInstalls(t *testing.T) {
	f := newFixture(t)
	f.net.offline.Store(true)
	w := f.worker(t, "v1", "/icons/icon-192.png")

	require.NoError(t, w.Install(context.Background()))

	names, err := f.cache.Names(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"v1"}, names)
}

// ── Cache-first ─────────────────────────────────────────────────────────────

func TestWorker_CacheFirst_ServesIconWhileNetworkDown(t *testing.T) {
	f := newFixture(t)
	w := f.worker(t, "v1", "/icons/icon-192.png")
	require.NoError(t, w.Install(context.Background()))

	f.net.offline.Store(true)
	calls := f.net.calls.Load()

	resp, err := f.get(t, w, "/icons/icon-192.png")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, cacheHeaderHit, resp.Header.Get(CacheHeader))
	assert.Equal(t, "PNG-192", readBody(t, resp))

	// кэш-попадание не обращается к сети
	assert.Equal(t, calls, f.net.calls.Load())
}

func TestWorker_CacheFirst_MissStoresNetworkCopy(t *testing.T) {
	f := newFixture(t)
	w := f.worker(t, "v1")

	resp, err := f.get(t, w, "/app.css")
	require.NoError(t, err)
	assert.Equal(t, "body{}", readBody(t, resp))
	assert.Empty(t, resp.Header.Get(CacheHeader))

	f.net.offline.Store(true)
	resp, err = f.get(t, w, "/app.css")
	require.NoError(t, err)
	assert.Equal(t, "body{}", readBody(t, resp))
	assert.Equal(t, cacheHeaderHit, resp.Header.Get(CacheHeader))
}

func TestWorker_CacheFirst_ImageMissOffline_Empty404(t *testing.T) {
	f := newFixture(t)
	w := f.worker(t, "v1")
	f.net.offline.Store(true)

	resp, err := f.get(t, w, "/icons/never-cached.png")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Empty(t, readBody(t, resp))
}

func TestWorker_CacheFirst_NonImageMissOffline_PropagatesError(t *testing.T) {
	f := newFixture(t)
	w := f.worker(t, "v1")
	f.net.offline.Store(true)

	_, err := f.get(t, w, "/app.js")
	require.ErrorIs(t, err, errUnreachable)
}

func TestWorker_CacheFirst_Non2xxNotStored(t *testing.T) {
	f := newFixture(t)
	w := f.worker(t, "v1")

	resp, err := f.get(t, w, "/missing.png")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	_, err = f.cache.Match(context.Background(), "v1", "/missing.png")
	assert.ErrorIs(t, err, store.ErrCacheMiss)
}

// ── Network-first ───────────────────────────────────────────────────────────

func TestWorker_API_NetworkFirstWithCacheFallback(t *testing.T) {
	f := newFixture(t)
	w := f.worker(t, "v1")

	resp, err := f.get(t, w, "/api/workouts/list")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1}]`, readBody(t, resp))

	// сеть есть, поэтому второй запрос снова идёт на сервер
	resp, err = f.get(t, w, "/api/workouts/list")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, int32(2), f.backend.apiHits.Load())

	f.net.offline.Store(true)
	resp, err = f.get(t, w, "/api/workouts/list")
	require.NoError(t, err)
	assert.Equal(t, cacheHeaderHit, resp.Header.Get(CacheHeader))
	assert.JSONEq(t, `[{"id":1}]`, readBody(t, resp))
}

func TestWorker_API_OfflineNoCache_PropagatesError(t *testing.T) {
	f := newFixture(t)
	w := f.worker(t, "v1")
	f.net.offline.Store(true)

	_, err := f.get(t, w, "/api/workouts/other")
	require.ErrorIs(t, err, errUnreachable)
}

func TestWorker_API_ServerErrorIsReturnedNotCached(t *testing.T) {
	f := newFixture(t)
	w := f.worker(t, "v1")

	resp, err := f.get(t, w, "/api/scoreboard/week")
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	resp.Body.Close()

	keys, err := f.cache.Keys(context.Background(), "v1")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestWorker_Navigation_FallsBackToOfflinePage(t *testing.T) {
	f := newFixture(t)
	w := f.worker(t, "v1", "/offline.html")
	require.NoError(t, w.Install(context.Background()))
	f.net.offline.Store(true)

	resp, err := f.get(t, w, "/profile", "Sec-Fetch-Mode", "navigate")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, cacheHeaderOffline, resp.Header.Get(CacheHeader))
	assert.Equal(t, "<h1>offline</h1>", readBody(t, resp))
}

func TestWorker_Navigation_PrefersCachedCopyOverOfflinePage(t *testing.T) {
	f := newFixture(t)
	w := f.worker(t, "v1", "/offline.html")
	require.NoError(t, w.Install(context.Background()))

	resp, err := f.get(t, w, "/dashboard", "Sec-Fetch-Mode", "navigate")
	require.NoError(t, err)
	resp.Body.Close()

	f.net.offline.Store(true)
	resp, err = f.get(t, w, "/dashboard", "Sec-Fetch-Mode", "navigate")
	require.NoError(t, err)
	assert.Equal(t, "<h1>dashboard</h1>", readBody(t, resp))
}

func TestWorker_Navigation_NoOfflinePage_Synthesized503(t *testing.T) {
	f := newFixture(t)
	w := f.worker(t, "v1")
	f.net.offline.Store(true)

	resp, err := f.get(t, w, "/profile", "Accept", "text/html")
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, cacheHeaderSynthetic, resp.Header.Get(CacheHeader))
	assert.NotEmpty(t, readBody(t, resp))
}

func TestWorker_OtherRead_NoOfflineFallback(t *testing.T) {
	f := newFixture(t)
	w := f.worker(t, "v1", "/offline.html")
	require.NoError(t, w.Install(context.Background()))
	f.net.offline.Store(true)

	_, err := f.get(t, w, "/api/settings")
	require.ErrorIs(t, err, errUnreachable)
}

// ── Pass-through ────────────────────────────────────────────────────────────

func TestWorker_NonRead_PassesThroughUncached(t *testing.T) {
	f := newFixture(t)
	w := f.worker(t, "v1")

	req, err := http.NewRequest(http.MethodPost, f.backend.URL+"/api/workouts/", nil)
	require.NoError(t, err)
	resp, err := w.RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	keys, err := f.cache.Keys(context.Background(), "v1")
	require.NoError(t, err)
	assert.Empty(t, keys)

	f.net.offline.Store(true)
	_, err = w.RoundTrip(req)
	require.ErrorIs(t, err, errUnreachable)
}

// ── Streaming bodies ────────────────────────────────────────────────────────

func TestWorker_EventStream_ReturnsBeforeStreamEnds(t *testing.T) {
	f := newFixture(t)
	w := f.worker(t, "v1")

	type result struct {
		resp *http.Response
		err  error
	}
	req, err := http.NewRequest(http.MethodGet, f.backend.URL+"/api/workouts/live", nil)
	require.NoError(t, err)
	done := make(chan result, 1)
	go func() {
		resp, err := w.RoundTrip(req)
		done <- result{resp, err}
	}()

	var res result
	select {
	case res = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("round trip blocked on an open event stream")
	}
	require.NoError(t, res.err)
	defer res.resp.Body.Close()

	// первое событие доступно сразу, поток ещё открыт
	line, err := bufio.NewReader(res.resp.Body).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "data: started\n", line)

	keys, err := f.cache.Keys(context.Background(), "v1")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestWorker_ChunkedBody_CachedOnceFullyRead(t *testing.T) {
	f := newFixture(t)
	w := f.worker(t, "v1")
	ctx := context.Background()

	resp, err := f.get(t, w, "/api/workouts/feed")
	require.NoError(t, err)

	keys, err := f.cache.Keys(ctx, "v1")
	require.NoError(t, err)
	assert.Empty(t, keys, "nothing is stored before the body is read")

	assert.Equal(t, `[{"id":1},{"id":2}]`, readBody(t, resp))
	keys, err = f.cache.Keys(ctx, "v1")
	require.NoError(t, err)
	assert.Len(t, keys, 1)

	f.net.offline.Store(true)
	resp, err = f.get(t, w, "/api/workouts/feed")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1},{"id":2}]`, readBody(t, resp))
}

func TestWorker_ChunkedBody_ClosedEarlyNotCached(t *testing.T) {
	f := newFixture(t)
	w := f.worker(t, "v1")

	resp, err := f.get(t, w, "/api/workouts/feed")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	keys, err := f.cache.Keys(context.Background(), "v1")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestCachingBody_OverLimitPassesThrough(t *testing.T) {
	committed := false
	body := newCachingBody(io.NopCloser(strings.NewReader("abcdef")), 4, func([]byte) {
		committed = true
	})

	got, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "abcdef", string(got))
	assert.False(t, committed)
}

// ── Activate / outcomes ─────────────────────────────────────────────────────

func TestWorker_Activate_EvictsOtherVersionsIdempotently(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	old := f.worker(t, "v1", "/icons/icon-192.png")
	require.NoError(t, old.Install(ctx))
	require.NoError(t, f.cache.Open(ctx, "scratch"))

	next := f.worker(t, "v2", "/icons/icon-192.png")
	require.NoError(t, next.Install(ctx))

	for i := 0; i < 2; i++ {
		require.NoError(t, next.Activate(ctx))
		names, err := f.cache.Names(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"v2"}, names)
	}

	_, err := f.cache.Match(ctx, "v1", "/icons/icon-192.png")
	assert.ErrorIs(t, err, store.ErrCacheMiss)
	_, err = f.cache.Match(ctx, "v2", "/icons/icon-192.png")
	assert.NoError(t, err)
}

func TestWorker_ReportsOutcomes(t *testing.T) {
	f := newFixture(t)
	w := f.worker(t, "v1")

	resp, err := f.get(t, w, "/api/workouts/list")
	require.NoError(t, err)
	resp.Body.Close()
	last, ok := f.reporter.last()
	require.True(t, ok)
	assert.NoError(t, last)

	f.net.offline.Store(true)
	_, _ = f.get(t, w, "/api/workouts/list")
	last, _ = f.reporter.last()
	assert.ErrorIs(t, last, errUnreachable)
}

func TestWorker_CanceledRequestNotReported(t *testing.T) {
	f := newFixture(t)
	w := f.worker(t, "v1")
	f.net.offline.Store(true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.backend.URL+"/api/workouts/", nil)
	require.NoError(t, err)

	_, _ = w.RoundTrip(req)
	_, ok := f.reporter.last()
	assert.False(t, ok)
}

func TestWorker_CacheURLs(t *testing.T) {
	f := newFixture(t)
	w := f.worker(t, "v1")

	err := w.CacheURLs(context.Background(), []string{"/app.css", "/missing.png"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/missing.png")

	_, err = f.cache.Match(context.Background(), "v1", "/app.css")
	assert.NoError(t, err)
}

func TestNewWorker_Validation(t *testing.T) {
	_, err := NewWorker(WorkerConfig{Origin: "http://x"}, nil, nil, nil, nil, logger.Nop())
	require.Error(t, err)

	_, err = NewWorker(WorkerConfig{Version: "v1", Origin: "not a url"}, nil, nil, nil, nil, logger.Nop())
	require.Error(t, err)
}
