package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-fit-offline/internal/logger"
	"github.com/MKhiriev/go-fit-offline/internal/store"
	"github.com/MKhiriev/go-fit-offline/models"
)

func (f *fixture) registration(t *testing.T) *Registration {
	t.Helper()
	r := NewRegistration(f.cache, NewClients(nil, logger.Nop()), f.net, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return r
}

func sendCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestRegistration_FirstWorkerActivatesImmediately(t *testing.T) {
	f := newFixture(t)
	r := f.registration(t)
	w := f.worker(t, "v1", "/icons/icon-192.png")

	require.NoError(t, r.Register(sendCtx(t), w))

	assert.Same(t, w, r.Active())
	assert.Nil(t, r.Waiting())
	assert.Equal(t, models.WorkerActive, w.State())
}

func TestRegistration_WithoutWorkerGoesToNetwork(t *testing.T) {
	f := newFixture(t)
	r := f.registration(t)

	resp, err := f.get(t, r, "/app.css")
	require.NoError(t, err)
	assert.Equal(t, "body{}", readBody(t, resp))

	names, err := f.cache.Names(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestRegistration_NewVersionWaitsForOpenClients(t *testing.T) {
	f := newFixture(t)
	r := f.registration(t)
	ctx := sendCtx(t)

	v1 := f.worker(t, "v1", "/icons/icon-192.png")
	require.NoError(t, r.Register(ctx, v1))
	page := r.Connect("/dashboard")

	v2 := f.worker(t, "v2", "/icons/icon-192.png")
	require.NoError(t, r.Register(ctx, v2))

	assert.Same(t, v1, r.Active())
	assert.Same(t, v2, r.Waiting())
	assert.Equal(t, models.WorkerWaiting, v2.State())

	// старая версия ещё обслуживает запросы
	names, err := f.cache.Names(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"v1", "v2"}, names)

	// последняя страница закрылась: ожидающий воркер активируется
	r.Clients().Disconnect(page.ID())

	assert.Same(t, v2, r.Active())
	assert.Equal(t, models.WorkerRedundant, v1.State())
	names, err = f.cache.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"v2"}, names)
}

func TestRegistration_SkipWaitingClaimsClientsIdempotently(t *testing.T) {
	f := newFixture(t)
	r := f.registration(t)
	ctx := sendCtx(t)

	require.NoError(t, r.Register(ctx, f.worker(t, "v1")))
	page := r.Connect("/dashboard")

	v2 := f.worker(t, "v2", "/icons/icon-192.png")
	require.NoError(t, r.Register(ctx, v2))
	require.Same(t, v2, r.Waiting())

	require.NoError(t, r.Send(ctx, SkipWaiting{}))
	require.NoError(t, r.Send(ctx, SkipWaiting{}))

	assert.Same(t, v2, r.Active())
	assert.Nil(t, r.Waiting())

	clients := r.Clients().MatchAll(ctx)
	require.Len(t, clients, 1)
	assert.Equal(t, "v2", clients[0].Controller)

	select {
	case msg := <-page.Outbox():
		assert.Equal(t, MessageControllerChange, msg.Type)
		var version string
		require.NoError(t, json.Unmarshal(msg.Data, &version))
		assert.Equal(t, "v2", version)
	default:
		t.Fatal("page was not told about the new controller")
	}

	state, err := r.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v2", state.ActiveVersion)
	assert.Equal(t, models.WorkerActive, state.ActiveState)
	assert.Empty(t, state.WaitingVersion)
	assert.Equal(t, 1, state.Clients)
	assert.Equal(t, []string{"v2"}, state.CacheNames)
}

func TestRegistration_NewerWaitingSupersedesOlderWaiting(t *testing.T) {
	f := newFixture(t)
	r := f.registration(t)
	ctx := sendCtx(t)

	require.NoError(t, r.Register(ctx, f.worker(t, "v1")))
	r.Connect("/")

	v2 := f.worker(t, "v2")
	v3 := f.worker(t, "v3")
	require.NoError(t, r.Register(ctx, v2))
	require.NoError(t, r.Register(ctx, v3))

	assert.Equal(t, models.WorkerRedundant, v2.State())
	assert.Same(t, v3, r.Waiting())
}

// stuckCache refuses to delete while failDelete is set.
type stuckCache struct {
	store.CacheRepository
	failDelete atomic.Bool
}

func (c *stuckCache) Delete(ctx context.Context, name string) (bool, error) {
	if c.failDelete.Load() {
		return false, errors.New("database is locked")
	}
	return c.CacheRepository.Delete(ctx, name)
}

func TestRegistration_FailedActivationKeepsCurrentWorker(t *testing.T) {
	f := newFixture(t)
	cache := &stuckCache{CacheRepository: f.cache}
	f.cache = cache
	r := f.registration(t)
	ctx := sendCtx(t)

	v1 := f.worker(t, "v1", "/icons/icon-192.png")
	require.NoError(t, r.Register(ctx, v1))
	r.Connect("/dashboard")

	v2 := f.worker(t, "v2", "/icons/icon-192.png")
	require.NoError(t, r.Register(ctx, v2))

	cache.failDelete.Store(true)
	err := r.Send(ctx, SkipWaiting{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "v2")

	// v1 продолжает обслуживать страницы, v2 ждёт повторной попытки
	assert.Same(t, v1, r.Active())
	assert.Equal(t, models.WorkerActive, v1.State())
	assert.Same(t, v2, r.Waiting())
	assert.Equal(t, models.WorkerWaiting, v2.State())

	resp, err := f.get(t, r, "/icons/icon-192.png")
	require.NoError(t, err)
	_ = readBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cache.failDelete.Store(false)
	require.NoError(t, r.Send(ctx, SkipWaiting{}))

	assert.Same(t, v2, r.Active())
	assert.Nil(t, r.Waiting())
	assert.Equal(t, models.WorkerRedundant, v1.State())
	names, err := f.cache.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"v2"}, names)
}

func TestRegistration_RoutesThroughActiveWorker(t *testing.T) {
	f := newFixture(t)
	r := f.registration(t)
	require.NoError(t, r.Register(sendCtx(t), f.worker(t, "v1", "/icons/icon-192.png")))

	f.net.offline.Store(true)
	resp, err := f.get(t, r, "/icons/icon-192.png")
	require.NoError(t, err)
	assert.Equal(t, "PNG-192", readBody(t, resp))
}

func TestRegistration_CacheURLs(t *testing.T) {
	f := newFixture(t)
	r := f.registration(t)
	ctx := sendCtx(t)

	require.ErrorIs(t, r.Send(ctx, CacheURLs{URLs: []string{"/app.css"}}), ErrNoActiveWorker)

	require.NoError(t, r.Register(ctx, f.worker(t, "v1")))
	require.NoError(t, r.Send(ctx, CacheURLs{URLs: []string{"/app.css"}}))

	_, err := f.cache.Match(ctx, "v1", "/app.css")
	assert.NoError(t, err)
}

type fakeEventHandler struct {
	mu     sync.Mutex
	pushes [][]byte
	clicks []models.NotificationClick
}

func (h *fakeEventHandler) HandlePush(_ context.Context, body []byte, _ string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pushes = append(h.pushes, body)
	return nil
}

func (h *fakeEventHandler) HandleClick(_ context.Context, click models.NotificationClick) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clicks = append(h.clicks, click)
	return nil
}

func TestRegistration_DispatchesEvents(t *testing.T) {
	f := newFixture(t)
	r := f.registration(t)
	ctx := sendCtx(t)

	require.ErrorIs(t, r.Send(ctx, PushEvent{Body: []byte(`{}`)}), ErrNoEventHandler)

	h := &fakeEventHandler{}
	r.SetEventHandler(h)

	require.NoError(t, r.Send(ctx, PushEvent{Body: []byte(`{"title":"hi"}`)}))
	require.NoError(t, r.Send(ctx, NotificationClick{Click: models.NotificationClick{Action: "open"}}))

	assert.Equal(t, [][]byte{[]byte(`{"title":"hi"}`)}, h.pushes)
	require.Len(t, h.clicks, 1)
	assert.Equal(t, "open", h.clicks[0].Action)
}

func TestRegistration_SendRespectsContext(t *testing.T) {
	f := newFixture(t)
	// цикл сообщений не запущен
	r := NewRegistration(f.cache, NewClients(nil, logger.Nop()), f.net, logger.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := r.Send(ctx, SkipWaiting{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type unknownMessage struct{}

func (unknownMessage) controlMessage() {}

func TestRegistration_UnknownMessage(t *testing.T) {
	f := newFixture(t)
	r := f.registration(t)

	err := r.Send(sendCtx(t), unknownMessage{})
	assert.ErrorIs(t, err, ErrUnknownMessage)
}

var _ http.RoundTripper = (*Registration)(nil)
var _ http.RoundTripper = (*Worker)(nil)
