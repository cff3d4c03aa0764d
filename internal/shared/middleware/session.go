package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"horizon/internal/domain/user"
)

// SessionCookie carries the identity session secret.
const SessionCookie = "appwrite-session"

type contextKey string

const (
	userKey          contextKey = "user"
	sessionSecretKey contextKey = "session_secret"
)

// UserResolver resolves the user bound to a session secret.
type UserResolver interface {
	GetLoggedInUser(ctx context.Context, sessionSecret string) (*user.User, error)
}

// Session rejects requests without a valid session and stores the resolved
// user in the request context. Browsers send the session cookie; API
// clients may send "Authorization: Bearer <secret>" instead.
func Session(resolver UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			secret := SessionSecret(r)
			if secret == "" {
				unauthorized(w, "authentication required")
				return
			}

			u, err := resolver.GetLoggedInUser(r.Context(), secret)
			if err != nil {
				if !errors.Is(err, user.ErrInvalidSession) {
					log.Warn().Err(err).Msg("session lookup failed")
				}
				unauthorized(w, "invalid or expired session")
				return
			}

			ctx := context.WithValue(r.Context(), userKey, u)
			ctx = context.WithValue(ctx, sessionSecretKey, secret)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionSecret returns the session secret sent with the request, or "".
func SessionSecret(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if ok && scheme == "Bearer" {
		return strings.TrimSpace(token)
	}
	return ""
}

// UserFromContext returns the user stored by Session.
func UserFromContext(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(userKey).(*user.User)
	return u, ok && u != nil
}

// SessionSecretFromContext returns the secret that authenticated the request.
func SessionSecretFromContext(ctx context.Context) string {
	s, _ := ctx.Value(sessionSecretKey).(string)
	return s
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg, "kind": "Unauthorized"})
}
