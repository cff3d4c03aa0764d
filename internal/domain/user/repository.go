package user

import "context"

// IdentityProvider manages identity accounts and their sessions.
type IdentityProvider interface {
	CreateAccount(ctx context.Context, id, email, password, name string) (*Account, error)
	CreateSession(ctx context.Context, email, password string) (*Session, error)
	// GetAccount returns the account bound to the session secret, or
	// ErrInvalidSession when the session is unknown or expired.
	GetAccount(ctx context.Context, sessionSecret string) (*Account, error)
	DeleteSession(ctx context.Context, sessionSecret string) error
}

// Repository persists user records.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByUserID(ctx context.Context, userID string) (*User, error)
}

// CustomerCreator creates customers at the payments processor and returns
// the new customer's URL.
type CustomerCreator interface {
	CreateCustomer(ctx context.Context, c NewCustomer) (string, error)
}
