package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/MKhiriev/go-fit-offline/internal/logger"
	"github.com/MKhiriev/go-fit-offline/models"
)

// MessageHello is the first message a page receives on its channel.
const MessageHello = "hello"

// clientChannel upgrades to a websocket and registers the page as an open
// client for as long as the connection lives. Messages the background
// context posts to the page are written out in order. The page's own
// messages are not read; closing the socket disconnects the client.
func (h *Handler) clientChannel(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originPatterns(h.allowedOrigins),
	})
	if err != nil {
		// Accept has already answered the request
		log.Warn().Err(err).Msg("websocket handshake failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "client channel closed")

	pageURL := r.URL.Query().Get("url")
	if pageURL == "" {
		pageURL = "/"
	}

	client := h.registration.Connect(pageURL)
	defer h.registration.Clients().Disconnect(client.ID())
	log = &logger.Logger{Logger: log.With().Str("client", client.ID()).Logger()}

	ctx := conn.CloseRead(r.Context())

	hello, _ := json.Marshal(models.HelloMessage{ClientID: client.ID()})
	if err = wsjson.Write(ctx, conn, models.ClientMessage{Type: MessageHello, Data: hello}); err != nil {
		log.Debug().Err(err).Msg("page left before hello")
		return
	}

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("page channel closed")
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case msg := <-client.Outbox():
			if err = wsjson.Write(ctx, conn, msg); err != nil {
				if !errors.Is(err, ctx.Err()) {
					log.Warn().Err(err).Str("type", msg.Type).Msg("failed to write to page")
				}
				return
			}
		}
	}
}
