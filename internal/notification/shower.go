package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MKhiriev/go-fit-offline/internal/logger"
	"github.com/MKhiriev/go-fit-offline/models"
)

// MessageShowNotification carries a notification to open pages.
const MessageShowNotification = "show-notification"

// broadcaster is the part of the client registry a [ClientShower] needs.
type broadcaster interface {
	MatchAll(ctx context.Context) []models.ClientInfo
	PostMessage(ctx context.Context, id string, msg models.ClientMessage) error
}

// ClientShower renders notifications by posting them to every open page.
// Pages that cannot take the message are skipped.
type ClientShower struct {
	clients broadcaster
	logger  *logger.Logger
}

func NewClientShower(clients broadcaster, log *logger.Logger) *ClientShower {
	return &ClientShower{clients: clients, logger: log.WithComponent("shower")}
}

func (s *ClientShower) Show(ctx context.Context, n models.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	msg := models.ClientMessage{Type: MessageShowNotification, Data: data}
	for _, c := range s.clients.MatchAll(ctx) {
		if err = s.clients.PostMessage(ctx, c.ID, msg); err != nil {
			s.logger.Warn().Err(err).Str("client", c.ID).Msg("client missed notification")
		}
	}
	return nil
}
