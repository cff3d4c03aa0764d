package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"horizon/internal/domain/bankaccount"
)

// Cipher encrypts access tokens before they are written.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

type BankAccountRepository struct {
	db     *DB
	cipher Cipher
}

var _ bankaccount.Repository = (*BankAccountRepository)(nil)

func NewBankAccountRepository(db *DB, cipher Cipher) *BankAccountRepository {
	return &BankAccountRepository{db: db, cipher: cipher}
}

const bankAccountColumns = `id, user_id, bank_id, account_id, access_token, funding_source_url, sharable_id, created_at`

func (r *BankAccountRepository) Create(ctx context.Context, params bankaccount.CreateParams) (*bankaccount.Record, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	encrypted, err := r.cipher.Encrypt(params.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt access token: %w", err)
	}

	query := `
		INSERT INTO bank_accounts (id, user_id, bank_id, account_id, access_token, funding_source_url, sharable_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + bankAccountColumns

	return r.scan(r.db.QueryRowContext(ctx, query,
		uuid.NewString(), params.UserID, params.BankID, params.AccountID,
		encrypted, params.FundingSourceURL, params.SharableID,
	))
}

func (r *BankAccountRepository) ListByUserID(ctx context.Context, userID string) ([]*bankaccount.Record, error) {
	query := `SELECT ` + bankAccountColumns + ` FROM bank_accounts WHERE user_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bank accounts: %w", err)
	}
	defer rows.Close()

	var records []*bankaccount.Record
	for rows.Next() {
		rec, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bank accounts: %w", err)
	}

	return records, nil
}

func (r *BankAccountRepository) GetByAccountID(ctx context.Context, userID, accountID string) (*bankaccount.Record, error) {
	query := `SELECT ` + bankAccountColumns + ` FROM bank_accounts WHERE user_id = $1 AND account_id = $2 ORDER BY created_at DESC LIMIT 1`

	rec, err := r.scan(r.db.QueryRowContext(ctx, query, userID, accountID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, bankaccount.ErrNotFound
	}
	return rec, err
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *BankAccountRepository) scan(row scanner) (*bankaccount.Record, error) {
	var rec bankaccount.Record
	var encrypted string
	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.BankID, &rec.AccountID, &encrypted,
		&rec.FundingSourceURL, &rec.SharableID, &rec.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan bank account: %w", err)
	}

	rec.AccessToken, err = r.cipher.Decrypt(encrypted)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt access token for %s: %w", rec.ID, err)
	}

	return &rec, nil
}
