package chat

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"
)

// Client owns the mautrix.Client lifecycle: password login, plain text
// sends, and the sync loop that feeds timeline messages to a handler.
// Room state and history live on the server; the SDK keeps the sync
// cursor in its in-memory store.
//
// Login is expected to happen once before Run; the client is otherwise
// safe to share between the sync loop and senders.
type Client struct {
	api *mautrix.Client
	log zerolog.Logger

	mu        sync.RWMutex
	onMessage func(roomID string, msg Message)
}

// NewClient validates the homeserver URL and returns an
// unauthenticated client. No network I/O happens here.
func NewClient(homeserverURL string, logger zerolog.Logger) (*Client, error) {
	u, err := url.Parse(homeserverURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid homeserver URL %q", homeserverURL)
	}
	api, err := mautrix.NewClient(homeserverURL, "", "")
	if err != nil {
		return nil, fmt.Errorf("matrix client: %w", err)
	}
	api.Log = logger

	c := &Client{api: api, log: logger}
	syncer := api.Syncer.(*mautrix.DefaultSyncer)
	syncer.OnEventType(event.EventMessage, c.handleMessage)
	return c, nil
}

// UserID returns the authenticated user's ID, empty before login.
func (c *Client) UserID() string { return c.api.UserID.String() }

// DeviceID returns the server-assigned device ID, empty before login.
func (c *Client) DeviceID() string { return c.api.DeviceID.String() }

// AccessToken returns the bearer token, empty before login.
func (c *Client) AccessToken() string { return c.api.AccessToken }

// Homeserver returns the normalized homeserver base URL.
func (c *Client) Homeserver() string { return c.api.HomeserverURL.String() }

// OnMessage registers a handler invoked for each timeline message seen
// during sync. Register it before calling Run. The logged-in user's
// own messages are not dispatched.
func (c *Client) OnMessage(fn func(roomID string, msg Message)) {
	c.mu.Lock()
	c.onMessage = fn
	c.mu.Unlock()
}

// Login authenticates with m.login.password. The SDK stores the
// returned credentials and sends the bearer token on every later
// request.
func (c *Client) Login(ctx context.Context, username, password string) error {
	resp, err := c.api.Login(ctx, &mautrix.ReqLogin{
		Type: mautrix.AuthTypePassword,
		Identifier: mautrix.UserIdentifier{
			Type: mautrix.IdentifierTypeUser,
			User: username,
		},
		Password:                 password,
		InitialDeviceDisplayName: "gamechat",
		StoreCredentials:         true,
	})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	c.log.Info().Str("user_id", resp.UserID.String()).Msg("Logged in")
	return nil
}

// SendMessage posts a plain text message to a room and returns the
// event ID. A fresh transaction ID per call keeps server-side retries
// idempotent.
func (c *Client) SendMessage(ctx context.Context, roomID, body string) (string, error) {
	if c.api.AccessToken == "" {
		return "", fmt.Errorf("not logged in")
	}
	resp, err := c.api.SendMessageEvent(ctx, id.RoomID(roomID), event.EventMessage,
		&event.MessageEventContent{MsgType: event.MsgText, Body: body},
		mautrix.ReqSendEvent{TransactionID: uuid.NewString()})
	if err != nil {
		return "", fmt.Errorf("send message failed: %w", err)
	}
	return resp.EventID.String(), nil
}

// Run syncs until ctx is cancelled. The SDK's syncer backs off and
// retries transient failures instead of ending the loop.
func (c *Client) Run(ctx context.Context) error {
	if c.api.AccessToken == "" {
		return fmt.Errorf("not logged in")
	}
	return c.api.SyncWithContext(ctx)
}

// handleMessage runs inside the sync loop for each m.room.message
// timeline event.
func (c *Client) handleMessage(_ context.Context, evt *event.Event) {
	if evt.Sender == c.api.UserID {
		return
	}
	c.mu.RLock()
	fn := c.onMessage
	c.mu.RUnlock()
	if fn == nil {
		return
	}
	content := evt.Content.AsMessage()
	if content == nil {
		return
	}
	fn(evt.RoomID.String(), Message{
		ID:        evt.ID.String(),
		Sender:    evt.Sender.String(),
		Content:   content.Body,
		Schema:    messageTypeFor(content.MsgType),
		Timestamp: uint64(evt.Timestamp),
	})
}

func messageTypeFor(msgtype event.MessageType) MessageType {
	switch msgtype {
	case event.MsgImage:
		return MessageImage
	case event.MsgFile:
		return MessageFile
	default:
		return MessageText
	}
}
