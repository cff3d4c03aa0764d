package scheduler

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"horizon/internal/domain/linking"
)

// SessionPurger deletes expired sessions.
type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

// SessionPurgeJob removes expired sessions from the local identity store.
type SessionPurgeJob struct {
	purger SessionPurger
}

func NewSessionPurgeJob(purger SessionPurger) *SessionPurgeJob {
	return &SessionPurgeJob{purger: purger}
}

func (j *SessionPurgeJob) Execute(ctx context.Context) error {
	n, err := j.purger.PurgeExpiredSessions(ctx)
	if err != nil {
		return fmt.Errorf("purge sessions: %w", err)
	}
	log.Info().Int64("deleted", n).Msg("expired sessions purged")
	return nil
}

func (j *SessionPurgeJob) UserID() string      { return "" }
func (j *SessionPurgeJob) Description() string { return "session purge" }

// NotifyJob delivers one accounts-changed signal.
type NotifyJob struct {
	notifier linking.ChangeNotifier
	userID   string
}

func (j *NotifyJob) Execute(ctx context.Context) error {
	return j.notifier.AccountsChanged(ctx, j.userID)
}

func (j *NotifyJob) UserID() string { return j.userID }

func (j *NotifyJob) Description() string {
	return fmt.Sprintf("accounts changed notification (%T)", j.notifier)
}

// AsyncNotifier hands notifications to the worker pool so slow remote
// notifiers do not hold up the request that caused the change.
type AsyncNotifier struct {
	pool     *WorkerPool
	notifier linking.ChangeNotifier
}

var _ linking.ChangeNotifier = (*AsyncNotifier)(nil)

func NewAsyncNotifier(pool *WorkerPool, notifier linking.ChangeNotifier) *AsyncNotifier {
	return &AsyncNotifier{pool: pool, notifier: notifier}
}

func (n *AsyncNotifier) AccountsChanged(_ context.Context, userID string) error {
	return n.pool.Submit(&NotifyJob{notifier: n.notifier, userID: userID})
}
