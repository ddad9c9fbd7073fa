package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-fit-offline/internal/config"
	"github.com/MKhiriev/go-fit-offline/internal/handler"
	"github.com/MKhiriev/go-fit-offline/internal/logger"
)

func startServer(t *testing.T, h http.Handler) (*server, context.CancelFunc, <-chan error) {
	t.Helper()

	s := newServer(h, "127.0.0.1:0", logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		return s.Addr() != "127.0.0.1:0"
	}, 2*time.Second, 5*time.Millisecond)
	return s, cancel, done
}

func TestNewServer_NothingToServe(t *testing.T) {
	_, err := NewServer(nil, config.Proxy{ListenAddress: "127.0.0.1:0"}, logger.Nop())
	assert.ErrorIs(t, err, errNoServersAreCreated)

	_, err = NewServer(&handler.Handlers{}, config.Proxy{ListenAddress: "127.0.0.1:0"}, logger.Nop())
	assert.ErrorIs(t, err, errNoServersAreCreated)
}

func TestServer_ServesUntilCancelled(t *testing.T) {
	s, cancel, done := startServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ok")
	}))

	resp, err := http.Get("http://" + s.Addr() + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	cancel()
	select {
	case err = <-done:
		assert.NoError(t, err)
	case <-time.After(shutdownTimeout):
		t.Fatal("server did not stop")
	}
}

func TestServer_ShutdownCancelsLongLivedRequests(t *testing.T) {
	entered := make(chan struct{})
	s, cancel, done := startServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		// как открытый websocket: живёт до отмены контекста
		<-r.Context().Done()
	}))

	go func() {
		resp, err := http.Get("http://" + s.Addr() + "/__sw/clients")
		if err == nil {
			resp.Body.Close()
		}
	}()
	<-entered

	start := time.Now()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
		assert.Less(t, time.Since(start), shutdownTimeout)
	case <-time.After(2 * shutdownTimeout):
		t.Fatal("server did not stop")
	}
}

func TestServer_ListenError(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	s := newServer(http.NotFoundHandler(), busy.Addr().String(), logger.Nop())

	err = s.Run(context.Background())

	assert.ErrorIs(t, err, errListen)
}
