package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockIdentityProvider struct {
	CreateAccountFunc func(ctx context.Context, id, email, password, name string) (*Account, error)
	CreateSessionFunc func(ctx context.Context, email, password string) (*Session, error)
	GetAccountFunc    func(ctx context.Context, sessionSecret string) (*Account, error)
	DeleteSessionFunc func(ctx context.Context, sessionSecret string) error
}

func (m *MockIdentityProvider) CreateAccount(ctx context.Context, id, email, password, name string) (*Account, error) {
	if m.CreateAccountFunc != nil {
		return m.CreateAccountFunc(ctx, id, email, password, name)
	}
	return &Account{ID: id, Email: email, Name: name}, nil
}

func (m *MockIdentityProvider) CreateSession(ctx context.Context, email, password string) (*Session, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, email, password)
	}
	return &Session{ID: "sess-1", Secret: "secret-1"}, nil
}

func (m *MockIdentityProvider) GetAccount(ctx context.Context, sessionSecret string) (*Account, error) {
	if m.GetAccountFunc != nil {
		return m.GetAccountFunc(ctx, sessionSecret)
	}
	return nil, ErrInvalidSession
}

func (m *MockIdentityProvider) DeleteSession(ctx context.Context, sessionSecret string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionSecret)
	}
	return nil
}

type MockRepository struct {
	CreateFunc      func(ctx context.Context, u *User) error
	GetByUserIDFunc func(ctx context.Context, userID string) (*User, error)
}

func (m *MockRepository) Create(ctx context.Context, u *User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, u)
	}
	return nil
}

func (m *MockRepository) GetByUserID(ctx context.Context, userID string) (*User, error) {
	if m.GetByUserIDFunc != nil {
		return m.GetByUserIDFunc(ctx, userID)
	}
	return nil, ErrNotFound
}

type MockCustomerCreator struct {
	CreateCustomerFunc func(ctx context.Context, c NewCustomer) (string, error)
}

func (m *MockCustomerCreator) CreateCustomer(ctx context.Context, c NewCustomer) (string, error) {
	if m.CreateCustomerFunc != nil {
		return m.CreateCustomerFunc(ctx, c)
	}
	return "https://api-sandbox.dwolla.com/customers/cust-1", nil
}

func validSignUp() SignUpParams {
	return SignUpParams{
		Email:       "ada@example.com",
		Password:    "correct-horse",
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Address1:    "1 Main St",
		City:        "New York",
		State:       "NY",
		PostalCode:  "10001",
		DateOfBirth: "1990-01-01",
		SSN:         "1234",
	}
}

func TestSignUp_Success(t *testing.T) {
	var (
		created  *User
		customer NewCustomer
		calls    []string
	)
	identity := &MockIdentityProvider{
		CreateAccountFunc: func(ctx context.Context, id, email, password, name string) (*Account, error) {
			calls = append(calls, "account")
			assert.Equal(t, "fixed-id", id)
			assert.Equal(t, "Ada Lovelace", name)
			return &Account{ID: id, Email: email, Name: name}, nil
		},
		CreateSessionFunc: func(ctx context.Context, email, password string) (*Session, error) {
			calls = append(calls, "session")
			return &Session{ID: "sess-1", UserID: "fixed-id", Secret: "secret-1"}, nil
		},
	}
	repo := &MockRepository{CreateFunc: func(ctx context.Context, u *User) error {
		calls = append(calls, "record")
		created = u
		return nil
	}}
	customers := &MockCustomerCreator{CreateCustomerFunc: func(ctx context.Context, c NewCustomer) (string, error) {
		calls = append(calls, "customer")
		customer = c
		return "https://api-sandbox.dwolla.com/customers/cust-1", nil
	}}

	svc := NewService(identity, repo, customers)
	svc.newID = func() string { return "fixed-id" }

	u, session, err := svc.SignUp(context.Background(), validSignUp())
	require.NoError(t, err)

	assert.Equal(t, []string{"account", "customer", "record", "session"}, calls)
	assert.Equal(t, "secret-1", session.Secret)
	assert.Equal(t, "fixed-id", u.ID)
	assert.Equal(t, "cust-1", u.PaymentsCustomerID)
	assert.Equal(t, "https://api-sandbox.dwolla.com/customers/cust-1", u.PaymentsCustomerURL)
	assert.Same(t, created, u)
	assert.Equal(t, CustomerTypePersonal, customer.Type)
	assert.Equal(t, "1234", customer.SSN)
	assert.Equal(t, "10001", customer.PostalCode)
}

func TestSignUp_InvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *SignUpParams)
	}{
		{"missing email", func(p *SignUpParams) { p.Email = "" }},
		{"malformed email", func(p *SignUpParams) { p.Email = "ada" }},
		{"short password", func(p *SignUpParams) { p.Password = "short" }},
		{"missing last name", func(p *SignUpParams) { p.LastName = " " }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity := &MockIdentityProvider{
				CreateAccountFunc: func(ctx context.Context, id, email, password, name string) (*Account, error) {
					t.Fatal("identity provider must not be called")
					return nil, nil
				},
			}
			svc := NewService(identity, &MockRepository{}, &MockCustomerCreator{})

			params := validSignUp()
			tt.mutate(&params)
			_, _, err := svc.SignUp(context.Background(), params)

			assert.ErrorIs(t, err, KindInvalidIdentity)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestSignUp_EmailTaken(t *testing.T) {
	identity := &MockIdentityProvider{
		CreateAccountFunc: func(ctx context.Context, id, email, password, name string) (*Account, error) {
			return nil, ErrEmailTaken
		},
	}
	svc := NewService(identity, &MockRepository{}, &MockCustomerCreator{})

	_, _, err := svc.SignUp(context.Background(), validSignUp())
	assert.ErrorIs(t, err, KindInvalidIdentity)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignUp_CustomerFailureStopsBeforeRecord(t *testing.T) {
	for name, customers := range map[string]*MockCustomerCreator{
		"error": {CreateCustomerFunc: func(ctx context.Context, c NewCustomer) (string, error) {
			return "", errors.New("dwolla down")
		}},
		"empty url": {CreateCustomerFunc: func(ctx context.Context, c NewCustomer) (string, error) {
			return "", nil
		}},
	} {
		t.Run(name, func(t *testing.T) {
			repo := &MockRepository{CreateFunc: func(ctx context.Context, u *User) error {
				t.Fatal("record must not be written")
				return nil
			}}
			svc := NewService(&MockIdentityProvider{}, repo, customers)

			_, _, err := svc.SignUp(context.Background(), validSignUp())
			assert.ErrorIs(t, err, KindExternalServiceError)
		})
	}
}

func TestSignUp_RecordFailure(t *testing.T) {
	repo := &MockRepository{CreateFunc: func(ctx context.Context, u *User) error {
		return errors.New("insert failed")
	}}
	identity := &MockIdentityProvider{
		CreateSessionFunc: func(ctx context.Context, email, password string) (*Session, error) {
			t.Fatal("no session after failed record write")
			return nil, nil
		},
	}
	svc := NewService(identity, repo, &MockCustomerCreator{})

	_, _, err := svc.SignUp(context.Background(), validSignUp())
	assert.ErrorIs(t, err, KindPersistenceFailed)

	var uerr *Error
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, "sign-up", uerr.Op)
}

func TestSignIn(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		provErr  error
		wantKind Kind
	}{
		{name: "success", email: "ada@example.com", password: "pw"},
		{name: "missing password", email: "ada@example.com", wantKind: KindInvalidIdentity},
		{name: "bad credentials", email: "ada@example.com", password: "pw", provErr: ErrInvalidCredentials, wantKind: KindInvalidIdentity},
		{name: "provider down", email: "ada@example.com", password: "pw", provErr: errors.New("timeout"), wantKind: KindExternalServiceError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity := &MockIdentityProvider{
				CreateSessionFunc: func(ctx context.Context, email, password string) (*Session, error) {
					if tt.provErr != nil {
						return nil, tt.provErr
					}
					return &Session{Secret: "secret-1"}, nil
				},
			}
			svc := NewService(identity, &MockRepository{}, &MockCustomerCreator{})

			session, err := svc.SignIn(context.Background(), tt.email, tt.password)
			if tt.wantKind == "" {
				require.NoError(t, err)
				assert.Equal(t, "secret-1", session.Secret)
				return
			}
			assert.ErrorIs(t, err, tt.wantKind)
			assert.Nil(t, session)
		})
	}
}

func TestGetLoggedInUser(t *testing.T) {
	record := &User{
		DocumentID:         "doc-1",
		FirstName:          "Ada",
		LastName:           "Lovelace",
		PaymentsCustomerID: "cust-1",
	}

	t.Run("merges account and record", func(t *testing.T) {
		identity := &MockIdentityProvider{GetAccountFunc: func(ctx context.Context, secret string) (*Account, error) {
			assert.Equal(t, "secret-1", secret)
			return &Account{ID: "u1", Email: "ada@example.com", Name: "Ada Lovelace"}, nil
		}}
		repo := &MockRepository{GetByUserIDFunc: func(ctx context.Context, userID string) (*User, error) {
			assert.Equal(t, "u1", userID)
			cp := *record
			return &cp, nil
		}}
		svc := NewService(identity, repo, &MockCustomerCreator{})

		u, err := svc.GetLoggedInUser(context.Background(), "secret-1")
		require.NoError(t, err)
		assert.Equal(t, "u1", u.ID)
		assert.Equal(t, "ada@example.com", u.Email)
		assert.Equal(t, "cust-1", u.PaymentsCustomerID)
		assert.Equal(t, "Ada Lovelace", u.FullName())
	})

	t.Run("no record falls back to account", func(t *testing.T) {
		identity := &MockIdentityProvider{GetAccountFunc: func(ctx context.Context, secret string) (*Account, error) {
			return &Account{ID: "u1", Email: "ada@example.com"}, nil
		}}
		svc := NewService(identity, &MockRepository{}, &MockCustomerCreator{})

		u, err := svc.GetLoggedInUser(context.Background(), "secret-1")
		require.NoError(t, err)
		assert.Equal(t, "u1", u.ID)
		assert.Empty(t, u.PaymentsCustomerID)
	})

	t.Run("empty secret", func(t *testing.T) {
		svc := NewService(&MockIdentityProvider{}, &MockRepository{}, &MockCustomerCreator{})

		_, err := svc.GetLoggedInUser(context.Background(), "")
		assert.ErrorIs(t, err, KindInvalidIdentity)
	})

	t.Run("expired session", func(t *testing.T) {
		svc := NewService(&MockIdentityProvider{}, &MockRepository{}, &MockCustomerCreator{})

		_, err := svc.GetLoggedInUser(context.Background(), "stale")
		assert.ErrorIs(t, err, KindInvalidIdentity)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("account without id", func(t *testing.T) {
		identity := &MockIdentityProvider{GetAccountFunc: func(ctx context.Context, secret string) (*Account, error) {
			return &Account{}, nil
		}}
		svc := NewService(identity, &MockRepository{}, &MockCustomerCreator{})

		_, err := svc.GetLoggedInUser(context.Background(), "secret-1")
		assert.ErrorIs(t, err, KindInvalidIdentity)
	})

	t.Run("record lookup fails", func(t *testing.T) {
		identity := &MockIdentityProvider{GetAccountFunc: func(ctx context.Context, secret string) (*Account, error) {
			return &Account{ID: "u1"}, nil
		}}
		repo := &MockRepository{GetByUserIDFunc: func(ctx context.Context, userID string) (*User, error) {
			return nil, errors.New("connection reset")
		}}
		svc := NewService(identity, repo, &MockCustomerCreator{})

		_, err := svc.GetLoggedInUser(context.Background(), "secret-1")
		assert.ErrorIs(t, err, KindPersistenceFailed)
	})
}

func TestLogout(t *testing.T) {
	t.Run("deletes session", func(t *testing.T) {
		var deleted string
		identity := &MockIdentityProvider{DeleteSessionFunc: func(ctx context.Context, secret string) error {
			deleted = secret
			return nil
		}}
		svc := NewService(identity, &MockRepository{}, &MockCustomerCreator{})

		require.NoError(t, svc.Logout(context.Background(), "secret-1"))
		assert.Equal(t, "secret-1", deleted)
	})

	t.Run("no session is a no-op", func(t *testing.T) {
		identity := &MockIdentityProvider{DeleteSessionFunc: func(ctx context.Context, secret string) error {
			t.Fatal("should not be called")
			return nil
		}}
		svc := NewService(identity, &MockRepository{}, &MockCustomerCreator{})

		assert.NoError(t, svc.Logout(context.Background(), ""))
	})

	t.Run("provider failure is reported", func(t *testing.T) {
		identity := &MockIdentityProvider{DeleteSessionFunc: func(ctx context.Context, secret string) error {
			return errors.New("boom")
		}}
		svc := NewService(identity, &MockRepository{}, &MockCustomerCreator{})

		assert.ErrorIs(t, svc.Logout(context.Background(), "secret-1"), KindExternalServiceError)
	})
}

func TestCustomerIDFromURL(t *testing.T) {
	tests := map[string]string{
		"https://api-sandbox.dwolla.com/customers/FC451A7A-AE30-4404-AB95-E3553FCD733F": "FC451A7A-AE30-4404-AB95-E3553FCD733F",
		"https://api.dwolla.com/customers/abc/":                                         "abc",
		"cust-1":                                                                         "cust-1",
		"":                                                                               "",
	}
	for in, want := range tests {
		assert.Equal(t, want, CustomerIDFromURL(in), in)
	}
}
