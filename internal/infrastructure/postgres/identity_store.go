package postgres

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"horizon/internal/domain/user"
	"horizon/internal/shared/auth"
)

// SessionTTL is how long a session stays valid after sign-in.
const SessionTTL = 30 * 24 * time.Hour

// IdentityStore keeps identity accounts and sessions in Postgres. Only a
// SHA-256 of each session secret is stored.
type IdentityStore struct {
	db  *DB
	now func() time.Time
}

var _ user.IdentityProvider = (*IdentityStore)(nil)

func NewIdentityStore(db *DB) *IdentityStore {
	return &IdentityStore{db: db, now: time.Now}
}

func (s *IdentityStore) CreateAccount(ctx context.Context, id, email, password, name string) (*user.Account, error) {
	hash, err := auth.HashPassword(password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return nil, errors.Join(user.ErrInvalidInput, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	query := `
		INSERT INTO identities (id, email, name, password_hash)
		VALUES ($1, lower($2), $3, $4)
		RETURNING id, email, name
	`

	var acc user.Account
	err = s.db.QueryRowContext(ctx, query, id, email, name, hash).Scan(&acc.ID, &acc.Email, &acc.Name)
	if isUniqueViolation(err) {
		return nil, user.ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create identity: %w", err)
	}

	return &acc, nil
}

func (s *IdentityStore) CreateSession(ctx context.Context, email, password string) (*user.Session, error) {
	var identityID, hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, password_hash FROM identities WHERE email = lower($1)`, email,
	).Scan(&identityID, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		_ = auth.RejectUnknown(password)
		return nil, user.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up identity: %w", err)
	}

	if err := auth.VerifyPassword(hash, password); err != nil {
		return nil, user.ErrInvalidCredentials
	}

	secret, err := newSecret()
	if err != nil {
		return nil, err
	}

	session := &user.Session{
		ID:        uuid.NewString(),
		UserID:    identityID,
		Secret:    secret,
		ExpiresAt: s.now().Add(SessionTTL).UTC(),
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, identity_id, secret_hash, expires_at) VALUES ($1, $2, $3, $4)`,
		session.ID, session.UserID, hashSecret(secret), session.ExpiresAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

func (s *IdentityStore) GetAccount(ctx context.Context, sessionSecret string) (*user.Account, error) {
	if sessionSecret == "" {
		return nil, user.ErrInvalidSession
	}

	query := `
		SELECT i.id, i.email, i.name
		FROM sessions s
		JOIN identities i ON i.id = s.identity_id
		WHERE s.secret_hash = $1 AND s.expires_at > $2
	`

	var acc user.Account
	err := s.db.QueryRowContext(ctx, query, hashSecret(sessionSecret), s.now().UTC()).Scan(&acc.ID, &acc.Email, &acc.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, user.ErrInvalidSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}

	return &acc, nil
}

func (s *IdentityStore) DeleteSession(ctx context.Context, sessionSecret string) error {
	if sessionSecret == "" {
		return user.ErrInvalidSession
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE secret_hash = $1`, hashSecret(sessionSecret))
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return user.ErrInvalidSession
	}
	return nil
}

// PurgeExpiredSessions removes sessions past their expiry and reports how
// many were deleted.
func (s *IdentityStore) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	return result.RowsAffected()
}

func newSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
