package linking

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Notifiers fans a change out to every notifier in order. A failing
// notifier is logged and does not stop the others.
type Notifiers []ChangeNotifier

func (n Notifiers) AccountsChanged(ctx context.Context, userID string) error {
	for _, notifier := range n {
		if notifier == nil {
			continue
		}
		if err := notifier.AccountsChanged(ctx, userID); err != nil {
			log.Warn().Err(err).Str("user_id", userID).Type("notifier", notifier).Msg("accounts changed notification failed")
		}
	}
	return nil
}

// NotifierFunc adapts a function to ChangeNotifier.
type NotifierFunc func(ctx context.Context, userID string) error

func (f NotifierFunc) AccountsChanged(ctx context.Context, userID string) error {
	return f(ctx, userID)
}
