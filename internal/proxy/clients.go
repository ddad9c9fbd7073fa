package proxy

import (
	"context"
	"sync"

	"github.com/MKhiriev/go-fit-offline/internal/logger"
	"github.com/MKhiriev/go-fit-offline/internal/utils"
	"github.com/MKhiriev/go-fit-offline/models"
)

// Message types posted to pages by the background context.
const (
	MessageControllerChange = "controllerchange"
	MessageFocus            = "focus"
	MessageNavigate         = "navigate"
	MessageNotificationData = "notification-click"
)

// Client is an open page. Messages for it are buffered on Outbox until the
// connection that owns the page writes them out. The connection calls
// [Clients.Disconnect] when it ends.
type Client struct {
	info   models.ClientInfo
	outbox chan models.ClientMessage
}

// Outbox is read by the page connection.
func (c *Client) Outbox() <-chan models.ClientMessage { return c.outbox }

func (c *Client) ID() string { return c.info.ID }

// WindowOpener opens a new page at url when no page is open.
type WindowOpener func(ctx context.Context, url string) error

// Clients tracks open pages in connection order.
type Clients struct {
	mu      sync.Mutex
	list    []*Client
	ids     *utils.UUIDGenerator
	buf     int
	opener  WindowOpener
	release func()
	logger  *logger.Logger
}

// NewClients returns an empty registry. opener may be nil, in which case
// open requests are only logged.
func NewClients(opener WindowOpener, log *logger.Logger) *Clients {
	return &Clients{
		ids:    utils.NewUUIDGenerator(),
		buf:    16,
		opener: opener,
		logger: log.WithComponent("clients"),
	}
}

// onRelease sets the hook called after a page disconnects.
func (c *Clients) onRelease(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.release = fn
}

// Connect registers a page at url, controlled by controller (may be empty).
func (c *Clients) Connect(url, controller string) *Client {
	client := &Client{
		info: models.ClientInfo{
			ID:         c.ids.Generate(),
			URL:        url,
			Controller: controller,
		},
		outbox: make(chan models.ClientMessage, c.buf),
	}

	c.mu.Lock()
	c.list = append(c.list, client)
	c.mu.Unlock()

	c.logger.Debug().Str("client", client.info.ID).Str("url", url).Msg("client connected")
	return client
}

// Disconnect removes a page. Its outbox is left open and simply stops
// receiving messages.
func (c *Clients) Disconnect(id string) {
	c.mu.Lock()
	var removed *Client
	for i, client := range c.list {
		if client.info.ID == id {
			removed = client
			c.list = append(c.list[:i], c.list[i+1:]...)
			break
		}
	}
	release := c.release
	c.mu.Unlock()

	if removed == nil {
		return
	}
	c.logger.Debug().Str("client", id).Msg("client disconnected")

	if release != nil {
		release()
	}
}

// MatchAll returns every open page, oldest first.
func (c *Clients) MatchAll(_ context.Context) []models.ClientInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]models.ClientInfo, 0, len(c.list))
	for _, client := range c.list {
		out = append(out, client.info)
	}
	return out
}

// Len is the number of open pages.
func (c *Clients) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.list)
}

// ControlledBy counts pages controlled by version.
func (c *Clients) ControlledBy(version string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, client := range c.list {
		if client.info.Controller == version {
			n++
		}
	}
	return n
}

// Claim makes version the controller of every open page and tells each page.
func (c *Clients) Claim(version string) {
	c.mu.Lock()
	claimed := make([]*Client, 0, len(c.list))
	for _, client := range c.list {
		if client.info.Controller != version {
			client.info.Controller = version
			claimed = append(claimed, client)
		}
	}
	c.mu.Unlock()

	for _, client := range claimed {
		c.deliver(client, models.ClientMessage{Type: MessageControllerChange, Data: mustJSONString(version)})
	}
}

// Focus marks id as the focused page and asks it to take focus.
func (c *Clients) Focus(_ context.Context, id string) error {
	c.mu.Lock()
	var target *Client
	for _, client := range c.list {
		client.info.Focused = client.info.ID == id
		if client.info.ID == id {
			target = client
		}
	}
	c.mu.Unlock()

	if target == nil {
		return ErrClientNotFound
	}
	return c.deliver(target, models.ClientMessage{Type: MessageFocus})
}

// PostMessage queues msg for page id.
func (c *Clients) PostMessage(_ context.Context, id string, msg models.ClientMessage) error {
	c.mu.Lock()
	var target *Client
	for _, client := range c.list {
		if client.info.ID == id {
			target = client
			break
		}
	}
	c.mu.Unlock()

	if target == nil {
		return ErrClientNotFound
	}
	return c.deliver(target, msg)
}

// OpenWindow opens a new page at url.
func (c *Clients) OpenWindow(ctx context.Context, url string) error {
	c.logger.Info().Str("url", url).Msg("opening window")
	if c.opener == nil {
		return nil
	}
	return c.opener(ctx, url)
}

// deliver never blocks: a page that stopped reading loses the message.
func (c *Clients) deliver(client *Client, msg models.ClientMessage) error {
	select {
	case client.outbox <- msg:
		return nil
	default:
		c.logger.Warn().Str("client", client.info.ID).Str("type", msg.Type).Msg("client outbox full, message dropped")
		return ErrClientGone
	}
}
