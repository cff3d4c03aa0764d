// Package auth holds password hashing for the postgres identity backend.
package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrPasswordMismatch is returned when a password does not match its hash.
	ErrPasswordMismatch = errors.New("password does not match")
	// ErrPasswordTooLong is returned for passwords bcrypt would silently truncate.
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
)

const maxPasswordBytes = 72

// dummyHash is compared against when no identity exists for an email, so
// unknown and known emails take the same time to reject.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("horizon-dummy-password"), bcrypt.DefaultCost)

func HashPassword(password string) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword checks password against a bcrypt hash.
func VerifyPassword(hashedPassword, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}

// RejectUnknown burns a bcrypt comparison and always fails.
func RejectUnknown(password string) error {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
	return ErrPasswordMismatch
}
