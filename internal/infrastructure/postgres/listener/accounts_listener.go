package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"horizon/internal/domain/linking"
	"horizon/internal/infrastructure/postgres"
)

const (
	reconnectInterval = 5 * time.Second
	pingInterval      = 90 * time.Second
)

// AccountsListener receives bank_accounts_changed notifications from other
// replicas and forwards them to a local notifier, typically the dashboard
// cache.
type AccountsListener struct {
	connStr    string
	handler    linking.ChangeNotifier
	shutdownCh chan struct{}
	done       chan struct{}
}

func NewAccountsListener(connStr string, handler linking.ChangeNotifier) *AccountsListener {
	return &AccountsListener{
		connStr:    connStr,
		handler:    handler,
		shutdownCh: make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start begins listening in a background goroutine.
func (l *AccountsListener) Start(ctx context.Context) {
	go l.listen(ctx)
	log.Info().Str("channel", postgres.AccountsChangedChannel).Msg("accounts listener started")
}

// Stop blocks until the listener goroutine has exited.
func (l *AccountsListener) Stop() {
	close(l.shutdownCh)
	<-l.done
	log.Info().Msg("accounts listener stopped")
}

func (l *AccountsListener) listen(ctx context.Context) {
	defer close(l.done)

	for {
		select {
		case <-l.shutdownCh:
			return
		case <-ctx.Done():
			return
		default:
			l.connectAndListen(ctx)
		}

		select {
		case <-l.shutdownCh:
			return
		case <-ctx.Done():
			return
		case <-time.After(reconnectInterval):
			log.Info().Msg("reconnecting accounts listener")
		}
	}
}

func (l *AccountsListener) connectAndListen(ctx context.Context) {
	listener := pq.NewListener(l.connStr, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnected:
			log.Debug().Msg("accounts listener connected")
		case pq.ListenerEventDisconnected:
			log.Warn().Err(err).Msg("accounts listener disconnected")
		case pq.ListenerEventReconnected:
			log.Info().Msg("accounts listener reconnected")
		case pq.ListenerEventConnectionAttemptFailed:
			log.Error().Err(err).Msg("accounts listener connection attempt failed")
		}
	})
	defer listener.Close()

	if err := listener.Listen(postgres.AccountsChangedChannel); err != nil {
		log.Error().Err(err).Str("channel", postgres.AccountsChangedChannel).Msg("failed to listen")
		return
	}

	for {
		select {
		case <-l.shutdownCh:
			return
		case <-ctx.Done():
			return
		case n := <-listener.Notify:
			if n == nil {
				// connection lost
				return
			}
			l.handle(context.Background(), n.Extra)
		case <-time.After(pingInterval):
			go func() {
				if err := listener.Ping(); err != nil {
					log.Warn().Err(err).Msg("accounts listener ping failed")
				}
			}()
		}
	}
}

func (l *AccountsListener) handle(ctx context.Context, extra string) {
	var payload postgres.AccountsChangedPayload
	if err := json.Unmarshal([]byte(extra), &payload); err != nil {
		log.Warn().Err(err).Msg("invalid accounts changed payload")
		return
	}
	if payload.UserID == "" {
		log.Warn().Msg("accounts changed payload without user id")
		return
	}

	if err := l.handler.AccountsChanged(ctx, payload.UserID); err != nil {
		log.Warn().Err(err).Str("user_id", payload.UserID).Msg("failed to apply accounts change")
	}
}
