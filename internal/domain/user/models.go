package user

import (
	"errors"
	"strings"
	"time"
)

// Domain errors reported by identity providers and repositories.
var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidSession     = errors.New("session is missing, expired or revoked")
	ErrInvalidInput       = errors.New("invalid input")
)

// CustomerTypePersonal is the payments customer type created at sign-up.
const CustomerTypePersonal = "personal"

// Account is an identity account as the identity backend knows it.
type Account struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Session is an authenticated session. Secret is the opaque value carried
// by the caller's cookie and is never serialized.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Secret    string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// User is the identity enriched with the persisted user record.
type User struct {
	ID                  string    `json:"id"`
	DocumentID          string    `json:"documentId,omitempty"`
	Email               string    `json:"email"`
	Name                string    `json:"name"`
	FirstName           string    `json:"firstName"`
	LastName            string    `json:"lastName"`
	Address1            string    `json:"address1,omitempty"`
	City                string    `json:"city,omitempty"`
	State               string    `json:"state,omitempty"`
	PostalCode          string    `json:"postalCode,omitempty"`
	DateOfBirth         string    `json:"dateOfBirth,omitempty"`
	SSN                 string    `json:"-"`
	PaymentsCustomerID  string    `json:"dwollaCustomerId,omitempty"`
	PaymentsCustomerURL string    `json:"dwollaCustomerUrl,omitempty"`
	CreatedAt           time.Time `json:"createdAt,omitzero"`
}

// FullName returns "First Last", falling back to the account name.
func (u *User) FullName() string {
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	return u.Name
}

type SignUpParams struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Address1    string `json:"address1"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postalCode"`
	DateOfBirth string `json:"dateOfBirth"`
	SSN         string `json:"ssn"`
}

// Validate checks the fields the identity backend and the payments
// customer cannot do without.
func (p SignUpParams) Validate() error {
	switch {
	case strings.TrimSpace(p.Email) == "" || !strings.Contains(p.Email, "@"):
		return errors.Join(ErrInvalidInput, errors.New("a valid email is required"))
	case len(p.Password) < 8:
		return errors.Join(ErrInvalidInput, errors.New("password must be at least 8 characters"))
	case strings.TrimSpace(p.FirstName) == "" || strings.TrimSpace(p.LastName) == "":
		return errors.Join(ErrInvalidInput, errors.New("first and last name are required"))
	}
	return nil
}

// NewCustomer is the payload for creating a payments customer.
type NewCustomer struct {
	FirstName   string
	LastName    string
	Email       string
	Type        string
	Address1    string
	City        string
	State       string
	PostalCode  string
	DateOfBirth string
	SSN         string
}

// CustomerIDFromURL extracts the customer id from a payments customer URL,
// which is its last path segment.
func CustomerIDFromURL(customerURL string) string {
	trimmed := strings.TrimRight(customerURL, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}
