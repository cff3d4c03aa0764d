package appwrite

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"horizon/internal/domain/user"
)

// IdentityProvider implements user.IdentityProvider with Appwrite accounts.
type IdentityProvider struct {
	client *Client
}

var _ user.IdentityProvider = (*IdentityProvider)(nil)

func NewIdentityProvider(client *Client) *IdentityProvider {
	return &IdentityProvider{client: client}
}

type accountResponse struct {
	ID    string `json:"$id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type sessionResponse struct {
	ID     string    `json:"$id"`
	UserID string    `json:"userId"`
	Secret string    `json:"secret"`
	Expire time.Time `json:"expire"`
}

func (p *IdentityProvider) CreateAccount(ctx context.Context, id, email, password, name string) (*user.Account, error) {
	var resp accountResponse
	err := p.client.do(ctx, http.MethodPost, "/account", nil, asServer, map[string]string{
		"userId":   id,
		"email":    email,
		"password": password,
		"name":     name,
	}, &resp)
	if err != nil {
		return nil, mapAccountError(err)
	}
	return &user.Account{ID: resp.ID, Email: resp.Email, Name: resp.Name}, nil
}

// CreateSession creates an email/password session. Called with the server
// key, Appwrite includes the session secret in the response.
func (p *IdentityProvider) CreateSession(ctx context.Context, email, password string) (*user.Session, error) {
	var resp sessionResponse
	err := p.client.do(ctx, http.MethodPost, "/account/sessions/email", nil, asServer, map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, mapAccountError(err)
	}
	if resp.Secret == "" {
		return nil, fmt.Errorf("appwrite session %s returned without a secret", resp.ID)
	}
	return &user.Session{ID: resp.ID, UserID: resp.UserID, Secret: resp.Secret, ExpiresAt: resp.Expire}, nil
}

func (p *IdentityProvider) GetAccount(ctx context.Context, sessionSecret string) (*user.Account, error) {
	var resp accountResponse
	if err := p.client.do(ctx, http.MethodGet, "/account", nil, asSession(sessionSecret), nil, &resp); err != nil {
		return nil, mapAccountError(err)
	}
	return &user.Account{ID: resp.ID, Email: resp.Email, Name: resp.Name}, nil
}

func (p *IdentityProvider) DeleteSession(ctx context.Context, sessionSecret string) error {
	if err := p.client.do(ctx, http.MethodDelete, "/account/sessions/current", nil, asSession(sessionSecret), nil, nil); err != nil {
		return mapAccountError(err)
	}
	return nil
}

func mapAccountError(err error) error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.Type == "user_already_exists" || apiErr.StatusCode == http.StatusConflict:
		return fmt.Errorf("%w: %v", user.ErrEmailTaken, err)
	case apiErr.Type == "user_invalid_credentials":
		return fmt.Errorf("%w: %v", user.ErrInvalidCredentials, err)
	case apiErr.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: %v", user.ErrInvalidSession, err)
	}
	return err
}
