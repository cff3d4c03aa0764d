package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"horizon/internal/domain/linking"
)

// AccountsChangedChannel is the NOTIFY channel for bank account changes.
const AccountsChangedChannel = "bank_accounts_changed"

// AccountsChangedPayload is the JSON body of an AccountsChangedChannel notification.
type AccountsChangedPayload struct {
	UserID    string    `json:"user_id"`
	ChangedAt time.Time `json:"changed_at"`
}

// Notifier publishes account changes to other replicas through pg_notify.
type Notifier struct {
	db *DB
}

var _ linking.ChangeNotifier = (*Notifier)(nil)

func NewNotifier(db *DB) *Notifier {
	return &Notifier{db: db}
}

func (n *Notifier) AccountsChanged(ctx context.Context, userID string) error {
	payload, err := json.Marshal(AccountsChangedPayload{UserID: userID, ChangedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	if _, err := n.db.ExecContext(ctx, `SELECT pg_notify($1, $2)`, AccountsChangedChannel, string(payload)); err != nil {
		return fmt.Errorf("failed to notify %s: %w", AccountsChangedChannel, err)
	}
	return nil
}
