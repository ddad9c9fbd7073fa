// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-fit-offline/internal/config"
	"github.com/MKhiriev/go-fit-offline/internal/logger"
	"github.com/MKhiriev/go-fit-offline/internal/utils"
	"github.com/MKhiriev/go-fit-offline/models"
)

// newTestAdapter создаёт httpBackendAdapter, направленный на тестовый сервер
func newTestAdapter(t *testing.T, serverURL string, hashKey string) *httpBackendAdapter {
	t.Helper()
	adapterCfg := config.Adapter{HTTPAddress: serverURL, APIBase: "/api", RequestTimeout: 2 * time.Second}
	appCfg := config.App{HashKey: hashKey}

	a, err := NewHTTPBackendAdapter(adapterCfg, appCfg, nil, logger.Nop())
	require.NoError(t, err)
	return a.(*httpBackendAdapter)
}

// ── Replay ──────────────────────────────────────────────────────────────────

func TestReplay_SendsBodyHeadersAndCurrentToken(t *testing.T) {
	body := []byte(`{"type":"run","km":5}`)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/workouts", r.URL.Path)
		assert.Equal(t, "Bearer fresh-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "req-1", r.Header.Get("X-Request-ID"))

		got, _ := io.ReadAll(r.Body)
		assert.Equal(t, body, got)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL, "")
	err := a.Replay(context.Background(), models.QueuedMutation{
		Endpoint: "/workouts",
		Method:   http.MethodPost,
		Body:     body,
		Headers: map[string]string{
			"Content-Type":  "application/json",
			"X-Request-ID":  "req-1",
			"Authorization": "Bearer stale-token",
		},
	}, "fresh-token")

	require.NoError(t, err)
}

func TestReplay_MapsStatusCodes(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, ErrBadRequest},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusConflict, ErrConflict},
		{http.StatusUnprocessableEntity, ErrUnprocessable},
		{http.StatusTooManyRequests, ErrTooManyRequests},
		{http.StatusInternalServerError, ErrInternalServerError},
		{http.StatusBadGateway, ErrBadGateway},
		{http.StatusServiceUnavailable, ErrServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			a := newTestAdapter(t, srv.URL, "")
			err := a.Replay(context.Background(), models.QueuedMutation{Endpoint: "/workouts/1", Method: http.MethodDelete}, "t")
			assert.ErrorIs(t, err, tt.want)
			assert.NotErrorIs(t, err, ErrNetworkUnavailable)
		})
	}
}

func TestReplay_NetworkUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close() // сервер закрыт, соединение будет отклонено

	a := newTestAdapter(t, url, "")
	err := a.Replay(context.Background(), models.QueuedMutation{Endpoint: "/workouts", Method: http.MethodPost}, "t")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetworkUnavailable)
}

func TestReplay_CanceledContextIsNotNetworkUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := newTestAdapter(t, srv.URL, "")
	err := a.Replay(ctx, models.QueuedMutation{Endpoint: "/workouts", Method: http.MethodPost}, "t")

	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrNetworkUnavailable)
}

func TestReplay_IntegrityHeader(t *testing.T) {
	body := []byte(`{"km":10}`)
	want := utils.NewHasher("secret").Hex(body)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, want, r.Header.Get(HashHeader))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL, "secret")
	require.NoError(t, a.Replay(context.Background(), models.QueuedMutation{Endpoint: "/workouts", Method: http.MethodPut, Body: body}, ""))
}

func TestReplay_NoTokenNoAuthorization(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Empty(t, r.Header.Get(HashHeader))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL, "")
	require.NoError(t, a.Replay(context.Background(), models.QueuedMutation{Endpoint: "/friends/7", Method: http.MethodDelete}, "  "))
}

// ── Send ────────────────────────────────────────────────────────────────────

func TestSend_ReturnsNon2xxResponseWithoutError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"km must be positive"}`))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL, "")
	resp, err := a.Send(context.Background(), WriteRequest{Endpoint: "/workouts", Method: http.MethodPost, Body: []byte(`{"km":-1}`)}, "t")

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Status)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"error":"km must be positive"}`, string(resp.Body))
}

func TestSend_EndpointAlreadyUnderAPIBase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/workouts", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL, "")
	_, err := a.Send(context.Background(), WriteRequest{Endpoint: "/api/workouts", Method: http.MethodPost}, "")
	require.NoError(t, err)
}

// ── Push ────────────────────────────────────────────────────────────────────

func TestVAPIDPublicKey_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/push/vapid-public-key", r.URL.Path)
		_, _ = w.Write([]byte(`{"publicKey":" BKey "}`))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL, "")
	key, err := a.VAPIDPublicKey(context.Background(), "t")
	require.NoError(t, err)
	assert.Equal(t, "BKey", key)
}

func TestVAPIDPublicKey_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL, "")
	_, err := a.VAPIDPublicKey(context.Background(), "t")
	require.Error(t, err)
}

func TestSaveSubscription_PostsBody(t *testing.T) {
	sub := models.PushSubscription{Endpoint: "https://push.example/abc", Keys: models.PushKeys{P256dh: "p", Auth: "a"}}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/push/subscribe", r.URL.Path)

		var got models.PushSubscription
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, sub.Endpoint, got.Endpoint)
		assert.Equal(t, sub.Keys, got.Keys)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL, "")
	require.NoError(t, a.SaveSubscription(context.Background(), sub, "t"))
}

func TestDeleteSubscription_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "https://push.example/abc", body["endpoint"])
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL, "")
	err := a.DeleteSubscription(context.Background(), "https://push.example/abc", "t")
	assert.ErrorIs(t, err, ErrNotFound)
}

// ── construction ────────────────────────────────────────────────────────────

func TestNewHTTPBackendAdapter_InvalidAddress(t *testing.T) {
	_, err := NewHTTPBackendAdapter(config.Adapter{HTTPAddress: "  "}, config.App{}, nil, logger.Nop())
	require.Error(t, err)
}

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"localhost:8080", "http://localhost:8080", false},
		{"https://api.example.com/", "https://api.example.com", false},
		{"", "", true},
		{"http://", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := normalizeBaseURL(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPath(t *testing.T) {
	a := &httpBackendAdapter{apiBase: "/api"}
	assert.Equal(t, "/api/workouts", a.path("/workouts"))
	assert.Equal(t, "/api/workouts", a.path("workouts"))
	assert.Equal(t, "/api/workouts", a.path("/api/workouts"))
	assert.Equal(t, "/api/apiary", a.path("/apiary"))

	root := &httpBackendAdapter{apiBase: "/"}
	assert.Equal(t, "/workouts", root.path("/workouts"))
}

// roundTripperFunc позволяет подменить транспорт в тестах
type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestNewHTTPBackendAdapter_CustomTransport(t *testing.T) {
	var seen string
	rt := roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		seen = r.URL.String()
		return &http.Response{
			StatusCode: http.StatusAccepted,
			Header:     http.Header{},
			Body:       io.NopCloser(http.NoBody),
			Request:    r,
		}, nil
	})

	a, err := NewHTTPBackendAdapter(config.Adapter{HTTPAddress: "backend.local", APIBase: "api"}, config.App{}, rt, logger.Nop())
	require.NoError(t, err)

	resp, err := a.Send(context.Background(), WriteRequest{Endpoint: "/workouts", Method: http.MethodPost}, "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.Status)
	assert.Equal(t, "http://backend.local/api/workouts", seen)
}
