package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"horizon/internal/domain/bankaccount"
)

type MockRepository struct {
	ListByUserIDFunc   func(ctx context.Context, userID string) ([]*bankaccount.Record, error)
	GetByAccountIDFunc func(ctx context.Context, userID, accountID string) (*bankaccount.Record, error)
	listCalls          int
}

func (m *MockRepository) Create(ctx context.Context, params bankaccount.CreateParams) (*bankaccount.Record, error) {
	return nil, errors.New("not used")
}

func (m *MockRepository) ListByUserID(ctx context.Context, userID string) ([]*bankaccount.Record, error) {
	m.listCalls++
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockRepository) GetByAccountID(ctx context.Context, userID, accountID string) (*bankaccount.Record, error) {
	if m.GetByAccountIDFunc != nil {
		return m.GetByAccountIDFunc(ctx, userID, accountID)
	}
	return nil, bankaccount.ErrNotFound
}

type MockAccountLister struct {
	GetAccountsFunc func(ctx context.Context, accessToken string) ([]bankaccount.ExternalAccount, error)
}

func (m *MockAccountLister) GetAccounts(ctx context.Context, accessToken string) ([]bankaccount.ExternalAccount, error) {
	return m.GetAccountsFunc(ctx, accessToken)
}

// reverseDecryptor treats "enc:<id>" as the encryption of <id>.
type reverseDecryptor struct{}

func (reverseDecryptor) Decrypt(ciphertext string) (string, error) {
	if len(ciphertext) < 4 || ciphertext[:4] != "enc:" {
		return "", errors.New("bad ciphertext")
	}
	return ciphertext[4:], nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func twoBanks() *MockRepository {
	return &MockRepository{
		ListByUserIDFunc: func(ctx context.Context, userID string) ([]*bankaccount.Record, error) {
			return []*bankaccount.Record{
				{ID: "rec-1", UserID: userID, BankID: "item-1", AccountID: "acc-1", AccessToken: "at-1", SharableID: "enc:acc-1"},
				{ID: "rec-2", UserID: userID, BankID: "item-2", AccountID: "acc-2", AccessToken: "at-2", SharableID: "enc:acc-2"},
			}, nil
		},
	}
}

func lister() *MockAccountLister {
	available := dec("100.00")
	return &MockAccountLister{GetAccountsFunc: func(ctx context.Context, accessToken string) ([]bankaccount.ExternalAccount, error) {
		switch accessToken {
		case "at-1":
			return []bankaccount.ExternalAccount{
				{ID: "acc-0", Name: "Other", CurrentBalance: dec("999")},
				{ID: "acc-1", Name: "Checking", Mask: "0000", Type: "depository", Subtype: "checking", CurrentBalance: dec("123.50"), AvailableBalance: &available},
			}, nil
		case "at-2":
			return []bankaccount.ExternalAccount{{ID: "acc-2", Name: "Savings", CurrentBalance: dec("500.21")}}, nil
		}
		return nil, errors.New("unknown access token")
	}}
}

func TestGetAccounts_Totals(t *testing.T) {
	svc := NewService(twoBanks(), lister(), reverseDecryptor{}, time.Minute)

	summary, err := svc.GetAccounts(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalBanks)
	assert.True(t, dec("623.71").Equal(summary.TotalCurrentBalance), "got %s", summary.TotalCurrentBalance)
	require.Len(t, summary.Accounts, 2)

	first := summary.Accounts[0]
	assert.Equal(t, "acc-1", first.AccountID)
	assert.Equal(t, "Checking", first.Name)
	assert.Equal(t, "0000", first.Mask)
	assert.Equal(t, "enc:acc-1", first.SharableID)
	require.NotNil(t, first.AvailableBalance)
	assert.True(t, dec("100").Equal(*first.AvailableBalance))
	assert.Nil(t, summary.Accounts[1].AvailableBalance)
}

func TestGetAccounts_NoLinkedBanks(t *testing.T) {
	svc := NewService(&MockRepository{}, lister(), reverseDecryptor{}, time.Minute)

	summary, err := svc.GetAccounts(context.Background(), "u1")
	require.NoError(t, err)
	assert.Zero(t, summary.TotalBanks)
	assert.True(t, summary.TotalCurrentBalance.IsZero())
	assert.NotNil(t, summary.Accounts)
}

func TestGetAccounts_CachedUntilInvalidated(t *testing.T) {
	repo := twoBanks()
	svc := NewService(repo, lister(), reverseDecryptor{}, time.Minute)
	ctx := context.Background()

	_, err := svc.GetAccounts(ctx, "u1")
	require.NoError(t, err)
	_, err = svc.GetAccounts(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls)

	require.NoError(t, svc.AccountsChanged(ctx, "u1"))
	_, err = svc.GetAccounts(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls)
}

func TestGetAccounts_CacheExpires(t *testing.T) {
	repo := twoBanks()
	svc := NewService(repo, lister(), reverseDecryptor{}, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.cache.now = func() time.Time { return now }

	_, _ = svc.GetAccounts(context.Background(), "u1")
	now = now.Add(2 * time.Minute)
	_, _ = svc.GetAccounts(context.Background(), "u1")

	assert.Equal(t, 2, repo.listCalls)
}

func TestGetAccounts_AggregatorFailure(t *testing.T) {
	failing := &MockAccountLister{GetAccountsFunc: func(ctx context.Context, accessToken string) ([]bankaccount.ExternalAccount, error) {
		return nil, errors.New("ITEM_LOGIN_REQUIRED")
	}}
	svc := NewService(twoBanks(), failing, reverseDecryptor{}, time.Minute)

	_, err := svc.GetAccounts(context.Background(), "u1")
	assert.Error(t, err)

	_, ok := svc.cache.get("u1")
	assert.False(t, ok, "failures are not cached")
}

func TestGetAccounts_AccountGoneAtAggregator(t *testing.T) {
	empty := &MockAccountLister{GetAccountsFunc: func(ctx context.Context, accessToken string) ([]bankaccount.ExternalAccount, error) {
		return nil, nil
	}}
	svc := NewService(twoBanks(), empty, reverseDecryptor{}, time.Minute)

	summary, err := svc.GetAccounts(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalBanks)
	assert.True(t, summary.TotalCurrentBalance.IsZero())
}

func TestGetAccountBySharableID(t *testing.T) {
	repo := &MockRepository{
		GetByAccountIDFunc: func(ctx context.Context, userID, accountID string) (*bankaccount.Record, error) {
			if userID == "u1" && accountID == "acc-2" {
				return &bankaccount.Record{ID: "rec-2", UserID: "u1", BankID: "item-2", AccountID: "acc-2", AccessToken: "at-2", SharableID: "enc:acc-2"}, nil
			}
			return nil, bankaccount.ErrNotFound
		},
	}
	svc := NewService(repo, lister(), reverseDecryptor{}, time.Minute)

	t.Run("found", func(t *testing.T) {
		acc, err := svc.GetAccountBySharableID(context.Background(), "u1", "enc:acc-2")
		require.NoError(t, err)
		assert.Equal(t, "Savings", acc.Name)
		assert.True(t, dec("500.21").Equal(acc.CurrentBalance))
	})

	t.Run("other user", func(t *testing.T) {
		_, err := svc.GetAccountBySharableID(context.Background(), "u2", "enc:acc-2")
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})

	t.Run("garbage id", func(t *testing.T) {
		_, err := svc.GetAccountBySharableID(context.Background(), "u1", "acc-2")
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})
}
