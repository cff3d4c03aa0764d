package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Service implements sign-up, sign-in, session lookup and logout on top of
// an identity provider, the user record store and the payments processor.
type Service struct {
	identity  IdentityProvider
	repo      Repository
	customers CustomerCreator
	newID     func() string
}

func NewService(identity IdentityProvider, repo Repository, customers CustomerCreator) *Service {
	return &Service{
		identity:  identity,
		repo:      repo,
		customers: customers,
		newID:     uuid.NewString,
	}
}

// SignIn creates a session for the given credentials.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fail(KindInvalidIdentity, "sign-in", ErrInvalidCredentials)
	}

	session, err := s.identity.CreateSession(ctx, email, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return nil, fail(KindInvalidIdentity, "sign-in", err)
		}
		return nil, fail(KindExternalServiceError, "sign-in", err)
	}
	return session, nil
}

// SignUp creates the identity account, the payments customer and the user
// record, then signs the new user in. Nothing is rolled back when a later
// step fails; the error names the step that did.
func (s *Service) SignUp(ctx context.Context, params SignUpParams) (*User, *Session, error) {
	if err := params.Validate(); err != nil {
		return nil, nil, fail(KindInvalidIdentity, "sign-up", err)
	}
	params.Email = strings.TrimSpace(params.Email)

	account, err := s.identity.CreateAccount(ctx, s.newID(), params.Email, params.Password,
		strings.TrimSpace(params.FirstName+" "+params.LastName))
	if err != nil {
		if errors.Is(err, ErrEmailTaken) || errors.Is(err, ErrInvalidInput) {
			return nil, nil, fail(KindInvalidIdentity, "sign-up", err)
		}
		return nil, nil, fail(KindExternalServiceError, "sign-up", fmt.Errorf("create account: %w", err))
	}

	customerURL, err := s.customers.CreateCustomer(ctx, NewCustomer{
		FirstName:   params.FirstName,
		LastName:    params.LastName,
		Email:       params.Email,
		Type:        CustomerTypePersonal,
		Address1:    params.Address1,
		City:        params.City,
		State:       params.State,
		PostalCode:  params.PostalCode,
		DateOfBirth: params.DateOfBirth,
		SSN:         params.SSN,
	})
	if err == nil && customerURL == "" {
		err = errors.New("empty customer url")
	}
	if err != nil {
		log.Error().Err(err).Str("user_id", account.ID).Msg("payments customer creation failed after account was created")
		return nil, nil, fail(KindExternalServiceError, "sign-up", fmt.Errorf("create payments customer: %w", err))
	}

	u := &User{
		ID:                  account.ID,
		Email:               params.Email,
		Name:                account.Name,
		FirstName:           params.FirstName,
		LastName:            params.LastName,
		Address1:            params.Address1,
		City:                params.City,
		State:               params.State,
		PostalCode:          params.PostalCode,
		DateOfBirth:         params.DateOfBirth,
		SSN:                 params.SSN,
		PaymentsCustomerID:  CustomerIDFromURL(customerURL),
		PaymentsCustomerURL: customerURL,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		log.Error().Err(err).Str("user_id", u.ID).Str("customer_url", customerURL).Msg("user record not persisted")
		return nil, nil, fail(KindPersistenceFailed, "sign-up", err)
	}

	session, err := s.identity.CreateSession(ctx, params.Email, params.Password)
	if err != nil {
		return nil, nil, fail(KindExternalServiceError, "sign-up", fmt.Errorf("create session: %w", err))
	}

	log.Info().Str("user_id", u.ID).Str("customer_id", u.PaymentsCustomerID).Msg("user signed up")
	return u, session, nil
}

// GetLoggedInUser resolves the session secret to its user. When the user
// record is missing the identity account fields alone are returned.
func (s *Service) GetLoggedInUser(ctx context.Context, sessionSecret string) (*User, error) {
	if sessionSecret == "" {
		return nil, fail(KindInvalidIdentity, "get-logged-in-user", ErrInvalidSession)
	}

	account, err := s.identity.GetAccount(ctx, sessionSecret)
	if err != nil {
		if errors.Is(err, ErrInvalidSession) {
			return nil, fail(KindInvalidIdentity, "get-logged-in-user", err)
		}
		return nil, fail(KindExternalServiceError, "get-logged-in-user", err)
	}
	if account == nil || account.ID == "" {
		return nil, fail(KindInvalidIdentity, "get-logged-in-user", errors.New("no identity bound to session"))
	}

	u, err := s.repo.GetByUserID(ctx, account.ID)
	switch {
	case errors.Is(err, ErrNotFound):
		log.Warn().Str("user_id", account.ID).Msg("identity has no user record")
		return &User{ID: account.ID, Email: account.Email, Name: account.Name}, nil
	case err != nil:
		return nil, fail(KindPersistenceFailed, "get-logged-in-user", err)
	}

	u.ID = account.ID
	if u.Email == "" {
		u.Email = account.Email
	}
	if u.Name == "" {
		u.Name = account.Name
	}
	return u, nil
}

// Logout revokes the session server-side. Callers clear the cookie
// regardless of the result.
func (s *Service) Logout(ctx context.Context, sessionSecret string) error {
	if sessionSecret == "" {
		return nil
	}
	if err := s.identity.DeleteSession(ctx, sessionSecret); err != nil {
		return fail(KindExternalServiceError, "logout", err)
	}
	return nil
}
