package linking

import (
	"context"

	"horizon/internal/domain/bankaccount"
)

// Aggregator is the bank-data aggregation service.
type Aggregator interface {
	bankaccount.AccountLister
	CreateLinkToken(ctx context.Context, req LinkTokenRequest) (string, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (*TokenExchange, error)
	CreateProcessorToken(ctx context.Context, accessToken, accountID, processor string) (string, error)
}

// Payments is the payments processor. AddFundingSource returns the URL of
// the new funding source.
type Payments interface {
	AddFundingSource(ctx context.Context, req FundingSourceRequest) (string, error)
}

// RecordWriter persists bank account records.
type RecordWriter interface {
	Create(ctx context.Context, params bankaccount.CreateParams) (*bankaccount.Record, error)
}

// Encryptor derives sharable ids from account ids.
type Encryptor interface {
	Encrypt(plaintext string) (string, error)
}

// ChangeNotifier is told when a user's set of linked accounts changes.
type ChangeNotifier interface {
	AccountsChanged(ctx context.Context, userID string) error
}
