package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func TestTracing_PassesThroughStatus(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	rr := httptest.NewRecorder()
	Tracing(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusAccepted, rr.Code)
}

func TestRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	var got string
	r.Get("/api/accounts/{sharableId}", func(w http.ResponseWriter, req *http.Request) {
		got = routePattern(req)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/accounts/abc123", nil))
	assert.Equal(t, "/api/accounts/{sharableId}", got)

	plain := httptest.NewRequest(http.MethodGet, "/plain", nil)
	assert.Equal(t, "/plain", routePattern(plain))
}
