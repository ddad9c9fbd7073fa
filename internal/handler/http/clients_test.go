package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/MKhiriev/go-fit-offline/models"
)

func dialClients(t *testing.T, g *gateway, pageURL string) (*websocket.Conn, context.Context) {
	t.Helper()

	srv := httptest.NewServer(g.router)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	target := "ws" + strings.TrimPrefix(srv.URL, "http") + "/__sw/clients?url=" + pageURL
	conn, _, err := websocket.Dial(ctx, target, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() })
	return conn, ctx
}

func TestClientChannel_HelloAndMessages(t *testing.T) {
	g := newGateway(t, "http://backend.invalid", nil)
	conn, ctx := dialClients(t, g, "/workouts")

	var hello models.ClientMessage
	require.NoError(t, wsjson.Read(ctx, conn, &hello))
	require.Equal(t, MessageHello, hello.Type)

	var payload models.HelloMessage
	require.NoError(t, json.Unmarshal(hello.Data, &payload))
	require.NotEmpty(t, payload.ClientID)

	clients := g.reg.Clients().MatchAll(ctx)
	require.Len(t, clients, 1)
	assert.Equal(t, payload.ClientID, clients[0].ID)
	assert.Equal(t, "/workouts", clients[0].URL)

	err := g.reg.Clients().PostMessage(ctx, payload.ClientID, models.ClientMessage{
		Type: "mutation-dropped",
		Data: json.RawMessage(`{"id":"m-1"}`),
	})
	require.NoError(t, err)

	var got models.ClientMessage
	require.NoError(t, wsjson.Read(ctx, conn, &got))
	assert.Equal(t, "mutation-dropped", got.Type)
	assert.JSONEq(t, `{"id":"m-1"}`, string(got.Data))
}

func TestClientChannel_CloseDisconnects(t *testing.T) {
	g := newGateway(t, "http://backend.invalid", nil)
	conn, ctx := dialClients(t, g, "/")

	var hello models.ClientMessage
	require.NoError(t, wsjson.Read(ctx, conn, &hello))
	require.Equal(t, 1, g.reg.Clients().Len())

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, "page closed"))

	require.Eventually(t, func() bool {
		return g.reg.Clients().Len() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestClientChannel_RejectsForeignOrigin(t *testing.T) {
	g := newGateway(t, "http://backend.invalid", nil)
	srv := httptest.NewServer(g.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, resp, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/__sw/clients", &websocket.DialOptions{
		HTTPHeader: map[string][]string{"Origin": {"http://evil.test"}},
	})

	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 403, resp.StatusCode)
	assert.Zero(t, g.reg.Clients().Len())
}
