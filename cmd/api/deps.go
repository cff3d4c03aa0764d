package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"horizon/internal/domain/bankaccount"
	"horizon/internal/domain/dashboard"
	"horizon/internal/domain/linking"
	"horizon/internal/domain/user"
	"horizon/internal/infrastructure/appwrite"
	"horizon/internal/infrastructure/crypto"
	"horizon/internal/infrastructure/dwolla"
	"horizon/internal/infrastructure/firebase"
	"horizon/internal/infrastructure/plaid"
	"horizon/internal/infrastructure/postgres"
	"horizon/internal/infrastructure/postgres/listener"
	httphandlers "horizon/internal/interfaces/http"
	"horizon/internal/interfaces/scheduler"
	"horizon/internal/shared/config"
	"horizon/internal/shared/messages"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB *postgres.DB

	UserService *user.Service

	// Handlers
	AuthHandler     *httphandlers.AuthHandler
	LinkHandler     *httphandlers.LinkHandler
	AccountsHandler *httphandlers.AccountsHandler
	HealthHandler   *httphandlers.HealthHandler

	// Background work
	WorkerPool       *scheduler.WorkerPool
	Scheduler        *scheduler.Scheduler
	AccountsListener *listener.AccountsListener
}

// NewDependencies initializes all application dependencies. The identity
// backend decides where users, sessions and bank account records live.
func NewDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	deps := &Dependencies{}

	encryptor, err := crypto.NewEncryptor(cfg.Encryption.Key)
	if err != nil {
		return nil, err
	}

	plaidClient, err := plaid.NewClient(plaid.Config{
		ClientID:    cfg.Plaid.ClientID,
		Secret:      cfg.Plaid.Secret,
		Environment: cfg.Plaid.Environment,
	})
	if err != nil {
		return nil, err
	}

	dwollaClient, err := dwolla.NewClient(dwolla.Config{
		Key:         cfg.Dwolla.Key,
		Secret:      cfg.Dwolla.Secret,
		Environment: cfg.Dwolla.Environment,
	})
	if err != nil {
		return nil, err
	}

	deps.WorkerPool = scheduler.NewWorkerPool(cfg.Scheduler.WorkerCount, cfg.Scheduler.QueueSize)

	var (
		identity user.IdentityProvider
		users    user.Repository
		records  bankaccount.Repository
	)

	switch cfg.Identity.Backend {
	case config.IdentityBackendPostgres:
		db, err := postgres.New(cfg.Database.ConnectionString())
		if err != nil {
			return nil, err
		}
		deps.DB = db
		log.Info().Str("host", cfg.Database.Host).Str("database", cfg.Database.DBName).Msg("connected to database")

		if err := db.Migrate(ctx); err != nil {
			deps.Close()
			return nil, err
		}

		store := postgres.NewIdentityStore(db)
		identity = store
		users = postgres.NewUserRepository(db)
		records = postgres.NewBankAccountRepository(db, encryptor)

		deps.Scheduler, err = scheduler.NewScheduler(deps.WorkerPool, cfg.Scheduler.ScheduleTimes,
			func(ctx context.Context) ([]scheduler.Job, error) {
				return []scheduler.Job{scheduler.NewSessionPurgeJob(store)}, nil
			})
		if err != nil {
			deps.Close()
			return nil, err
		}

	case config.IdentityBackendAppwrite:
		client := appwrite.NewClient(appwrite.Config{
			Endpoint:         cfg.Identity.Endpoint,
			ProjectID:        cfg.Identity.ProjectID,
			APIKey:           cfg.Identity.APIKey,
			DatabaseID:       cfg.Identity.DatabaseID,
			UserCollectionID: cfg.Identity.UserCollectionID,
			BankCollectionID: cfg.Identity.BankCollectionID,
		})
		identity = appwrite.NewIdentityProvider(client)
		users = appwrite.NewUserRepository(client)
		records = appwrite.NewBankAccountRepository(client)

	default:
		return nil, fmt.Errorf("unsupported identity backend %q", cfg.Identity.Backend)
	}

	dashboardService := dashboard.NewService(records, plaidClient, encryptor, dashboard.DefaultCacheTTL)

	// The local cache is invalidated in the request; everything that leaves
	// the process goes through the worker pool.
	notifiers := linking.Notifiers{dashboardService}
	if deps.DB != nil {
		notifiers = append(notifiers, scheduler.NewAsyncNotifier(deps.WorkerPool, postgres.NewNotifier(deps.DB)))
		deps.AccountsListener = listener.NewAccountsListener(cfg.Database.ConnectionString(), dashboardService)
	}
	if cfg.Firebase.Enabled {
		fcm, err := newFirebaseNotifier(ctx, cfg)
		if err != nil {
			deps.Close()
			return nil, err
		}
		notifiers = append(notifiers, scheduler.NewAsyncNotifier(deps.WorkerPool, fcm))
	}

	deps.UserService = user.NewService(identity, users, dwollaClient)
	linkingService := linking.NewService(plaidClient, dwollaClient, records, encryptor, notifiers)

	deps.AuthHandler = httphandlers.NewAuthHandler(deps.UserService)
	deps.LinkHandler = httphandlers.NewLinkHandler(linkingService)
	deps.AccountsHandler = httphandlers.NewAccountsHandler(dashboardService)
	if deps.DB != nil {
		deps.HealthHandler = httphandlers.NewHealthHandler(deps.DB)
	} else {
		deps.HealthHandler = httphandlers.NewHealthHandler(nil)
	}

	return deps, nil
}

func newFirebaseNotifier(ctx context.Context, cfg *config.Config) (*firebase.Client, error) {
	var text *messages.MessageText
	msgs, err := messages.Load(cfg.Messages.Path)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.Messages.Path).Msg("notification texts unavailable, sending data-only messages")
	} else {
		text = &msgs.AccountsLinked
	}

	client, err := firebase.NewClient(ctx, cfg.Firebase.CredentialsFile, text)
	if err != nil {
		return nil, err
	}
	log.Info().Msg("firebase messaging enabled")
	return client, nil
}

// Start launches background workers.
func (d *Dependencies) Start(ctx context.Context) {
	d.WorkerPool.Start()
	if d.Scheduler != nil {
		d.Scheduler.Start()
	}
	if d.AccountsListener != nil {
		d.AccountsListener.Start(ctx)
	}
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
