package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"horizon/internal/shared/config"
	"horizon/internal/shared/logging"
	"horizon/internal/shared/telemetry"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("application error")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Setup(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Telemetry.Enabled {
		shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
			ServiceName:  cfg.Telemetry.ServiceName,
			Environment:  cfg.Server.Environment,
			OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
			MetricsPort:  cfg.Telemetry.MetricsPort,
		})
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTelemetry(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("telemetry shutdown failed")
			}
		}()
	}

	deps, err := NewDependencies(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	// Background workers get their own context so shutdown can drain them
	// after the servers stop.
	deps.Start(context.Background())

	handler := SetupRoutes(deps, cfg)
	srv, redirectSrv, errCh := StartServers(NewServerConfigFromConfig(handler, cfg))

	log.Info().
		Str("env", cfg.Server.Environment).
		Str("identity_backend", cfg.Identity.Backend).
		Msg("horizon api started")

	select {
	case <-ctx.Done():
	case err = <-errCh:
		log.Error().Err(err).Msg("server failed")
	}

	GracefulShutdown(srv, redirectSrv, deps, shutdownTimeout)
	return err
}
