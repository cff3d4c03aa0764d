package http

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"horizon/internal/domain/user"
	"horizon/internal/shared/middleware"
)

// UserService is the subset of user.Service the auth endpoints use.
type UserService interface {
	SignUp(ctx context.Context, params user.SignUpParams) (*user.User, *user.Session, error)
	SignIn(ctx context.Context, email, password string) (*user.Session, error)
	GetLoggedInUser(ctx context.Context, sessionSecret string) (*user.User, error)
	Logout(ctx context.Context, sessionSecret string) error
}

type AuthHandler struct {
	users UserService
}

func NewAuthHandler(users UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignUpResponse struct {
	User      *user.User `json:"user"`
	ExpiresAt time.Time  `json:"expiresAt"`
}

// HandleSignUp creates the user and starts a session.
func (h *AuthHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var req user.SignUpParams
	if !decodeJSON(w, r, &req) {
		return
	}

	u, session, err := h.users.SignUp(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	setSessionCookie(w, session)
	writeJSON(w, http.StatusCreated, SignUpResponse{User: u, ExpiresAt: session.ExpiresAt})
}

// HandleSignIn starts a session for email and password credentials.
func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := h.users.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	setSessionCookie(w, session)
	writeJSON(w, http.StatusOK, session)
}

// HandleLogout revokes the session and always clears the cookie.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Logout(r.Context(), middleware.SessionSecret(r)); err != nil {
		log.Warn().Err(err).Msg("session not revoked on logout")
	}

	clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe returns the user resolved by the session middleware.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return
	}

	writeJSON(w, http.StatusOK, u)
}

func setSessionCookie(w http.ResponseWriter, session *user.Session) {
	cookie := &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    session.Secret,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
	if !session.ExpiresAt.IsZero() {
		cookie.Expires = session.ExpiresAt
	}
	http.SetCookie(w, cookie)
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
}
