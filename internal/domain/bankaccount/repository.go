package bankaccount

import "context"

// Repository persists bank account records. Implementations return
// ErrNotFound for missing records.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Record, error)
	ListByUserID(ctx context.Context, userID string) ([]*Record, error)
	GetByAccountID(ctx context.Context, userID, accountID string) (*Record, error)
}

// AccountLister fetches the accounts of a linked item from the aggregator.
type AccountLister interface {
	GetAccounts(ctx context.Context, accessToken string) ([]ExternalAccount, error)
}
