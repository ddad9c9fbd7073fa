package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-fit-offline/internal/config"
	"github.com/MKhiriev/go-fit-offline/internal/logger"
	"github.com/MKhiriev/go-fit-offline/models"
)

// fitBackend serves the static manifest and accepts workout writes.
type fitBackend struct {
	*httptest.Server

	mu     sync.Mutex
	writes []string
}

func newFitBackend(t *testing.T) *fitBackend {
	t.Helper()

	b := &fitBackend{}
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/workouts":
			body, _ := io.ReadAll(r.Body)
			b.mu.Lock()
			b.writes = append(b.writes, string(body))
			b.mu.Unlock()
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			io.WriteString(w, `{"id":"w-1"}`)
		case strings.HasSuffix(r.URL.Path, ".html") || r.URL.Path == "/":
			w.Header().Set("Content-Type", "text/html")
			io.WriteString(w, "<html>"+r.URL.Path+"</html>")
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(b.Close)
	return b
}

func testAppConfig(t *testing.T, backendURL string) *config.StructuredConfig {
	t.Helper()

	cfg := config.Defaults()
	cfg.Storage.DB.DSN = filepath.Join(t.TempDir(), "offline.db") + "?_busy_timeout=5000"
	cfg.Adapter.HTTPAddress = backendURL
	cfg.Adapter.RequestTimeout = 2 * time.Second
	cfg.Proxy.ListenAddress = "127.0.0.1:0"
	cfg.Proxy.StaticManifest = []string{"/", "/offline.html"}
	return cfg
}

func TestApp_EndToEnd(t *testing.T) {
	backend := newFitBackend(t)
	cfg := testAppConfig(t, backend.URL)

	app, err := NewApp(context.Background(), cfg, models.NewAppBuildInfo("test", "", ""), logger.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	require.Eventually(t, func() bool {
		return app.Addr() != "127.0.0.1:0" && app.registration.Active() != nil
	}, 5*time.Second, 10*time.Millisecond)
	gateway := "http://" + app.Addr()

	// воркер установлен и активен
	resp, err := http.Get(gateway + "/__sw/state")
	require.NoError(t, err)
	var state models.RegistrationState
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	resp.Body.Close()
	assert.Equal(t, cfg.App.CacheVersion, state.ActiveVersion)
	assert.Contains(t, state.CacheNames, cfg.App.CacheVersion)

	// запись онлайн уходит прямо на бэкенд
	resp, err = http.Post(gateway+"/api/workouts", "application/json", strings.NewReader(`{"km":5}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	backend.mu.Lock()
	assert.Equal(t, []string{`{"km":5}`}, backend.writes)
	backend.mu.Unlock()

	// чтение страницы проходит через прокси
	resp, err = http.Get(gateway + "/offline.html")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "<html>/offline.html</html>", string(body))

	cancel()
	select {
	case err = <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestNewApp_InvalidConfig(t *testing.T) {
	cfg := testAppConfig(t, "http://localhost:1")
	cfg.Proxy.ListenAddress = ""

	_, err := NewApp(context.Background(), cfg, models.NewAppBuildInfo("test", "", ""), logger.Nop())

	require.Error(t, err)
}
