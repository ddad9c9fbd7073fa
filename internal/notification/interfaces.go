package notification

import (
	"context"

	"github.com/MKhiriev/go-fit-offline/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/notification_mock.go -package=mock

// Shower displays a built notification.
type Shower interface {
	Show(ctx context.Context, n models.Notification) error
}

// ClientFinder is the view of open pages needed for click handling.
// [proxy.Clients] satisfies it.
type ClientFinder interface {
	MatchAll(ctx context.Context) []models.ClientInfo
	Focus(ctx context.Context, id string) error
	PostMessage(ctx context.Context, id string, msg models.ClientMessage) error
	OpenWindow(ctx context.Context, url string) error
}
