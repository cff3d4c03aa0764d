package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"horizon/internal/domain/user"
)

type UserRepository struct {
	db *DB
}

var _ user.Repository = (*UserRepository)(nil)

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (
			id, user_id, email, first_name, last_name, address1, city, state,
			postal_code, date_of_birth, ssn, dwolla_customer_id, dwolla_customer_url
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		uuid.NewString(), u.ID, u.Email, u.FirstName, u.LastName,
		nullString(u.Address1), nullString(u.City), nullString(u.State),
		nullString(u.PostalCode), nullString(u.DateOfBirth), nullString(u.SSN),
		nullString(u.PaymentsCustomerID), nullString(u.PaymentsCustomerURL),
	).Scan(&u.DocumentID, &u.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *UserRepository) GetByUserID(ctx context.Context, userID string) (*user.User, error) {
	query := `
		SELECT u.id, u.user_id, u.email, COALESCE(i.name, ''), u.first_name, u.last_name,
		       u.address1, u.city, u.state, u.postal_code, u.date_of_birth, u.ssn,
		       u.dwolla_customer_id, u.dwolla_customer_url, u.created_at
		FROM users u
		LEFT JOIN identities i ON i.id = u.user_id
		WHERE u.user_id = $1
	`

	var u user.User
	var address1, city, state, postalCode, dob, ssn, customerID, customerURL sql.NullString
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&u.DocumentID, &u.ID, &u.Email, &u.Name, &u.FirstName, &u.LastName,
		&address1, &city, &state, &postalCode, &dob, &ssn,
		&customerID, &customerURL, &u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, user.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	u.Address1 = address1.String
	u.City = city.String
	u.State = state.String
	u.PostalCode = postalCode.String
	u.DateOfBirth = dob.String
	u.SSN = ssn.String
	u.PaymentsCustomerID = customerID.String
	u.PaymentsCustomerURL = customerURL.String

	return &u, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
