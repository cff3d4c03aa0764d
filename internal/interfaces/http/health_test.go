package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type MockPinger struct {
	err error
}

func (m *MockPinger) PingContext(ctx context.Context) error { return m.err }

func TestHandleHealth(t *testing.T) {
	tests := []struct {
		name           string
		db             Pinger
		expectedStatus int
		expectedBody   string
	}{
		{"No Database", nil, http.StatusOK, `{"status":"ok"}`},
		{"Database Up", &MockPinger{}, http.StatusOK, `{"status":"ok","database":"ok"}`},
		{"Database Down", &MockPinger{err: errors.New("refused")}, http.StatusServiceUnavailable, `{"status":"degraded","database":"unreachable"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			NewHealthHandler(tt.db).HandleHealth(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.JSONEq(t, tt.expectedBody, rr.Body.String())
		})
	}
}
