package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"horizon/internal/domain/user"
	httphandlers "horizon/internal/interfaces/http"
	"horizon/internal/interfaces/scheduler"
	"horizon/internal/shared/config"
)

type rejectingIdentity struct{}

func (rejectingIdentity) CreateAccount(ctx context.Context, id, email, password, name string) (*user.Account, error) {
	return nil, user.ErrEmailTaken
}

func (rejectingIdentity) CreateSession(ctx context.Context, email, password string) (*user.Session, error) {
	return nil, user.ErrInvalidCredentials
}

func (rejectingIdentity) GetAccount(ctx context.Context, sessionSecret string) (*user.Account, error) {
	return nil, user.ErrInvalidSession
}

func (rejectingIdentity) DeleteSession(ctx context.Context, sessionSecret string) error {
	return user.ErrInvalidSession
}

func testDeps() *Dependencies {
	users := user.NewService(rejectingIdentity{}, nil, nil)
	return &Dependencies{
		UserService:     users,
		AuthHandler:     httphandlers.NewAuthHandler(users),
		LinkHandler:     httphandlers.NewLinkHandler(nil),
		AccountsHandler: httphandlers.NewAccountsHandler(nil),
		HealthHandler:   httphandlers.NewHealthHandler(nil),
		WorkerPool:      scheduler.NewWorkerPool(1, 1),
	}
}

func TestSetupRoutes(t *testing.T) {
	cfg := &config.Config{}
	cfg.Telemetry.ServiceName = "horizon-test"
	handler := SetupRoutes(testDeps(), cfg)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/api/users/me", http.StatusUnauthorized},
		{http.MethodPost, "/api/link/token", http.StatusUnauthorized},
		{http.MethodPost, "/api/link/exchange", http.StatusUnauthorized},
		{http.MethodGet, "/api/accounts", http.StatusUnauthorized},
		{http.MethodGet, "/api/accounts/abc", http.StatusUnauthorized},
		{http.MethodPost, "/api/auth/logout", http.StatusNoContent},
		{http.MethodGet, "/api/auth/sign-in", http.StatusMethodNotAllowed},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestSetupRoutes_TLSHeaders(t *testing.T) {
	cfg := &config.Config{}
	cfg.TLS.Enabled = true
	handler := SetupRoutes(testDeps(), cfg)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, rr.Header().Get("Strict-Transport-Security"))
}

func TestCreateRedirectServer(t *testing.T) {
	srv := createRedirectServer([]string{"horizon.example.com"})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "http://horizon.example.com/api/accounts?x=1", nil)
	srv.Handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMovedPermanently, rr.Code)
	assert.Equal(t, "https://horizon.example.com/api/accounts?x=1", rr.Header().Get("Location"))

	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "http://evil.example.com/", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGracefulShutdown(t *testing.T) {
	deps := testDeps()
	deps.Start(context.Background())

	srv := &http.Server{Addr: "127.0.0.1:0"}
	assert.NotPanics(t, func() {
		GracefulShutdown(srv, nil, deps, time.Second)
	})
}
