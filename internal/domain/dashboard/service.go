package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"horizon/internal/domain/bankaccount"
)

// DefaultCacheTTL bounds how stale a cached summary can get when no
// change signal arrives, for instance balance movements at the bank.
const DefaultCacheTTL = 5 * time.Minute

// Decryptor reverses sharable ids back to account ids.
type Decryptor interface {
	Decrypt(ciphertext string) (string, error)
}

// Service builds the balance overview of a user's linked accounts.
type Service struct {
	records   bankaccount.Repository
	accounts  bankaccount.AccountLister
	decryptor Decryptor
	cache     *cache
}

func NewService(records bankaccount.Repository, accounts bankaccount.AccountLister, decryptor Decryptor, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Service{
		records:   records,
		accounts:  accounts,
		decryptor: decryptor,
		cache:     newCache(ttl),
	}
}

// GetAccounts returns every linked account of the user with balances from
// the aggregator, the number of linked banks and the sum of current balances.
func (s *Service) GetAccounts(ctx context.Context, userID string) (*Summary, error) {
	if summary, ok := s.cache.get(userID); ok {
		return summary, nil
	}

	records, err := s.records.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bank accounts: %w", err)
	}

	summary := &Summary{
		Accounts:            make([]Account, 0, len(records)),
		TotalBanks:          len(records),
		TotalCurrentBalance: decimal.Zero,
	}
	for _, rec := range records {
		acc, err := s.resolve(ctx, rec)
		if err != nil {
			return nil, err
		}
		summary.Accounts = append(summary.Accounts, *acc)
		summary.TotalCurrentBalance = summary.TotalCurrentBalance.Add(acc.CurrentBalance)
	}

	s.cache.put(userID, summary)
	return summary, nil
}

// GetAccountBySharableID returns the user's account behind a sharable id.
// Ids that do not decrypt, or that belong to another user, are not found.
func (s *Service) GetAccountBySharableID(ctx context.Context, userID, sharableID string) (*Account, error) {
	accountID, err := s.decryptor.Decrypt(sharableID)
	if err != nil || accountID == "" {
		return nil, ErrAccountNotFound
	}

	rec, err := s.records.GetByAccountID(ctx, userID, accountID)
	if errors.Is(err, bankaccount.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get bank account: %w", err)
	}

	return s.resolve(ctx, rec)
}

// AccountsChanged drops the cached summary of the user.
func (s *Service) AccountsChanged(_ context.Context, userID string) error {
	s.cache.delete(userID)
	log.Debug().Str("user_id", userID).Msg("dashboard cache invalidated")
	return nil
}

func (s *Service) resolve(ctx context.Context, rec *bankaccount.Record) (*Account, error) {
	external, err := s.accounts.GetAccounts(ctx, rec.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("get accounts for item %s: %w", rec.BankID, err)
	}

	for _, ext := range external {
		if ext.ID == rec.AccountID {
			return &Account{
				ID:               rec.ID,
				AccountID:        rec.AccountID,
				BankID:           rec.BankID,
				Name:             ext.Name,
				OfficialName:     ext.OfficialName,
				Mask:             ext.Mask,
				Type:             ext.Type,
				Subtype:          ext.Subtype,
				CurrentBalance:   ext.CurrentBalance,
				AvailableBalance: ext.AvailableBalance,
				SharableID:       rec.SharableID,
			}, nil
		}
	}

	log.Warn().Str("user_id", rec.UserID).Str("item_id", rec.BankID).Str("account_id", rec.AccountID).
		Msg("linked account no longer reported by aggregator")
	return &Account{
		ID:             rec.ID,
		AccountID:      rec.AccountID,
		BankID:         rec.BankID,
		CurrentBalance: decimal.Zero,
		SharableID:     rec.SharableID,
	}, nil
}
