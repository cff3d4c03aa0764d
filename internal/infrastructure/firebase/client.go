package firebase

import (
	"context"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"

	"horizon/internal/domain/linking"
	"horizon/internal/shared/messages"
)

// EventAccountsChanged is the "event" data value of account change messages.
const EventAccountsChanged = "accounts_changed"

type sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// Client publishes account change events to a per-user FCM topic.
// Subscribed clients reload their dashboards when one arrives.
type Client struct {
	msgClient sender
	text      *messages.MessageText
}

var _ linking.ChangeNotifier = (*Client)(nil)

// NewClient initializes a Firebase app and returns an FCM client. When text
// is nil messages are data-only.
func NewClient(ctx context.Context, credentialsFile string, text *messages.MessageText) (*Client, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	msgClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase messaging client: %w", err)
	}

	return &Client{msgClient: msgClient, text: text}, nil
}

// Topic returns the FCM topic a user's devices subscribe to.
func Topic(userID string) string {
	return "user-" + userID
}

func (c *Client) AccountsChanged(ctx context.Context, userID string) error {
	msg := &messaging.Message{
		Topic: Topic(userID),
		Data: map[string]string{
			"event":      EventAccountsChanged,
			"user_id":    userID,
			"changed_at": time.Now().UTC().Format(time.RFC3339),
		},
	}
	if c.text != nil && c.text.Title != "" {
		msg.Notification = &messaging.Notification{
			Title: c.text.Title,
			Body:  c.text.Body,
		}
	}

	id, err := c.msgClient.Send(ctx, msg)
	if err != nil {
		if messaging.IsInvalidArgument(err) {
			return fmt.Errorf("invalid FCM message for topic %s: %w", msg.Topic, err)
		}
		return fmt.Errorf("failed to send FCM message: %w", err)
	}

	log.Debug().Str("topic", msg.Topic).Str("message_id", id).Msg("accounts changed message sent")
	return nil
}
