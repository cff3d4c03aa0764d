package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"horizon/internal/shared/config"
	"horizon/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Telemetry(cfg.Telemetry.ServiceName))
	r.Use(middleware.Tracing)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	if cfg.TLS.Enabled {
		r.Use(middleware.HSTS, middleware.SecureCookies)
		log.Info().Msg("TLS security middleware enabled (HSTS + SecureCookies)")
	}

	r.Get("/health", deps.HealthHandler.HandleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/sign-up", deps.AuthHandler.HandleSignUp)
		r.Post("/auth/sign-in", deps.AuthHandler.HandleSignIn)
		r.Post("/auth/logout", deps.AuthHandler.HandleLogout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Session(deps.UserService))

			r.Get("/users/me", deps.AuthHandler.HandleMe)
			r.Post("/link/token", deps.LinkHandler.HandleCreateLinkToken)
			r.Post("/link/exchange", deps.LinkHandler.HandleExchange)
			r.Get("/accounts", deps.AccountsHandler.HandleListAccounts)
			r.Get("/accounts/{sharableId}", deps.AccountsHandler.HandleGetAccount)
		})
	})

	return r
}
