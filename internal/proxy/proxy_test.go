// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package proxy

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-fit-offline/internal/config"
	"github.com/MKhiriev/go-fit-offline/internal/logger"
	"github.com/MKhiriev/go-fit-offline/internal/store"
)

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

var errUnreachable = errors.New("dial tcp: network is unreachable")

// flakyTransport переключается между реальной сетью и её отсутствием.
type flakyTransport struct {
	offline atomic.Bool
	calls   atomic.Int32
	base    http.RoundTripper
}

func (f *flakyTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	f.calls.Add(1)
	if f.offline.Load() {
		return nil, errUnreachable
	}
	return f.base.RoundTrip(r)
}

// recordingReporter запоминает все исходы сетевых запросов.
type recordingReporter struct {
	mu       sync.Mutex
	outcomes []error
}

func (r *recordingReporter) ReportOutcome(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, err)
}

func (r *recordingReporter) last() (error, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.outcomes) == 0 {
		return nil, false
	}
	return r.outcomes[len(r.outcomes)-1], true
}

type backend struct {
	*httptest.Server
	apiHits atomic.Int32
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{}
	mux := http.NewServeMux()
	mux.HandleFunc("/icons/icon-192.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("PNG-192"))
	})
	mux.HandleFunc("/app.css", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/css")
		_, _ = w.Write([]byte("body{}"))
	})
	mux.HandleFunc("/offline.html", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<h1>offline</h1>"))
	})
	mux.HandleFunc("/dashboard", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<h1>dashboard</h1>"))
	})
	mux.HandleFunc("/api/workouts/", func(w http.ResponseWriter, r *http.Request) {
		b.apiHits.Add(1)
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusCreated)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1}]`))
	})
	mux.HandleFunc("/api/workouts/live", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("data: started\n\n"))
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	})
	mux.HandleFunc("/api/workouts/feed", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1},`))
		w.(http.Flusher).Flush()
		_, _ = w.Write([]byte(`{"id":2}]`))
	})
	mux.HandleFunc("/api/scoreboard/week", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/missing.png", http.NotFound)
	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Close)
	return b
}

func newCache(t *testing.T) store.CacheRepository {
	t.Helper()
	s, err := store.NewStorages(context.Background(), config.Storage{DB: config.DB{
		DSN: filepath.Join(t.TempDir(), "proxy.db") + "?_busy_timeout=5000",
	}}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s.CacheRepository
}

func testRouter(t *testing.T) Router {
	t.Helper()
	r, err := NewRouter(config.Defaults().Proxy)
	require.NoError(t, err)
	return r
}

type fixture struct {
	backend  *backend
	net      *flakyTransport
	cache    store.CacheRepository
	reporter *recordingReporter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	b := newBackend(t)
	return &fixture{
		backend:  b,
		net:      &flakyTransport{base: b.Client().Transport},
		cache:    newCache(t),
		reporter: &recordingReporter{},
	}
}

func (f *fixture) worker(t *testing.T, version string, manifest ...string) *Worker {
	t.Helper()
	w, err := NewWorker(WorkerConfig{
		Version:        version,
		Origin:         f.backend.URL,
		StaticManifest: manifest,
		OfflinePage:    "/offline.html",
		Router:         testRouter(t),
	}, f.cache, f.net, f.reporter, nil, logger.Nop())
	require.NoError(t, err)
	return w
}

func (f *fixture) get(t *testing.T, rt http.RoundTripper, path string, header ...string) (*http.Response, error) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, f.backend.URL+path, nil)
	require.NoError(t, err)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	return rt.RoundTrip(req)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}
