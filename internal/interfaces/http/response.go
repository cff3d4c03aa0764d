package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"horizon/internal/domain/dashboard"
	"horizon/internal/domain/linking"
	"horizon/internal/domain/user"
)

const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("failed to encode response")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

// writeError maps a domain failure to a status code. Only the kind and a
// generic message reach the client; the cause is logged.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := classify(err)

	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).Str("path", r.URL.Path).Str("kind", kind).Int("status", status).Msg("request failed")

	writeJSON(w, status, ErrorResponse{Error: message(status, err), Kind: kind})
}

func classify(err error) (int, string) {
	var userErr *user.Error
	if errors.As(err, &userErr) {
		switch {
		case errors.Is(err, user.ErrInvalidInput):
			return http.StatusBadRequest, string(userErr.Kind)
		case errors.Is(err, user.ErrEmailTaken):
			return http.StatusConflict, string(userErr.Kind)
		}
		switch userErr.Kind {
		case user.KindInvalidIdentity:
			return http.StatusUnauthorized, string(userErr.Kind)
		case user.KindExternalServiceError:
			return http.StatusBadGateway, string(userErr.Kind)
		default:
			return http.StatusInternalServerError, string(userErr.Kind)
		}
	}

	if kind := linking.KindOf(err); kind != "" {
		switch {
		case errors.Is(err, linking.ErrMissingPublicToken):
			return http.StatusBadRequest, string(kind)
		case errors.Is(err, linking.ErrMissingCustomer):
			return http.StatusConflict, string(kind)
		}
		switch kind {
		case linking.KindInvalidIdentity:
			return http.StatusUnauthorized, string(kind)
		case linking.KindPersistenceFailed:
			return http.StatusInternalServerError, string(kind)
		default:
			return http.StatusBadGateway, string(kind)
		}
	}

	if errors.Is(err, dashboard.ErrAccountNotFound) {
		return http.StatusNotFound, ""
	}
	return http.StatusInternalServerError, ""
}

func message(status int, err error) string {
	switch {
	case errors.Is(err, user.ErrInvalidInput):
		var userErr *user.Error
		if errors.As(err, &userErr) && userErr.Err != nil {
			// errors.Join puts the validation detail after the sentinel
			return strings.TrimPrefix(userErr.Err.Error(), user.ErrInvalidInput.Error()+"\n")
		}
		return user.ErrInvalidInput.Error()
	case errors.Is(err, user.ErrEmailTaken):
		return user.ErrEmailTaken.Error()
	case errors.Is(err, user.ErrInvalidCredentials):
		return user.ErrInvalidCredentials.Error()
	case errors.Is(err, linking.ErrMissingPublicToken):
		return linking.ErrMissingPublicToken.Error()
	case errors.Is(err, linking.ErrMissingCustomer):
		return linking.ErrMissingCustomer.Error()
	case errors.Is(err, dashboard.ErrAccountNotFound):
		return dashboard.ErrAccountNotFound.Error()
	}
	return http.StatusText(status)
}
