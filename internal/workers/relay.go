package workers

import (
	"context"
	"encoding/json"

	"github.com/MKhiriev/go-fit-offline/internal/logger"
	"github.com/MKhiriev/go-fit-offline/models"
)

// MessageMutationDropped tells open pages that a queued write was given up on.
const MessageMutationDropped = "mutation-dropped"

// Broadcaster is the part of the client registry the relay posts through.
type Broadcaster interface {
	MatchAll(ctx context.Context) []models.ClientInfo
	PostMessage(ctx context.Context, id string, msg models.ClientMessage) error
}

// DroppedRelay forwards dropped-mutation events from the reconciler to every
// open page, so the UI can tell the user which change was lost.
type DroppedRelay struct {
	source  <-chan models.DroppedMutation
	clients Broadcaster
	logger  *logger.Logger
}

func NewDroppedRelay(source <-chan models.DroppedMutation, clients Broadcaster, logger *logger.Logger) *DroppedRelay {
	return &DroppedRelay{source: source, clients: clients, logger: logger.WithComponent("dropped-relay")}
}

func (r *DroppedRelay) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-r.source:
			if !ok {
				return nil
			}
			r.relay(ctx, d)
		}
	}
}

func (r *DroppedRelay) relay(ctx context.Context, d models.DroppedMutation) {
	// the body may hold personal data
	d.Mutation.Body = nil

	data, err := json.Marshal(d)
	if err != nil {
		r.logger.Err(err).Str("id", d.Mutation.ID).Msg("failed to encode dropped mutation")
		return
	}

	msg := models.ClientMessage{Type: MessageMutationDropped, Data: data}
	for _, c := range r.clients.MatchAll(ctx) {
		if err = r.clients.PostMessage(ctx, c.ID, msg); err != nil {
			r.logger.Debug().Err(err).Str("client", c.ID).Msg("page missed dropped-mutation message")
		}
	}
}
