package appwrite

import (
	"context"
	"fmt"

	"horizon/internal/domain/bankaccount"
)

// BankAccountRepository stores bank account records in the banks collection.
type BankAccountRepository struct {
	client *Client
}

var _ bankaccount.Repository = (*BankAccountRepository)(nil)

func NewBankAccountRepository(client *Client) *BankAccountRepository {
	return &BankAccountRepository{client: client}
}

type bankData struct {
	UserID           string `json:"userId"`
	BankID           string `json:"bankId"`
	AccountID        string `json:"accountId"`
	AccessToken      string `json:"accessToken"`
	FundingSourceURL string `json:"fundingSourceUrl"`
	SharableID       string `json:"sharableId"`
}

type bankDocument struct {
	document
	bankData
}

func (d bankDocument) toDomain() *bankaccount.Record {
	return &bankaccount.Record{
		ID:               d.ID,
		UserID:           d.UserID,
		BankID:           d.BankID,
		AccountID:        d.AccountID,
		AccessToken:      d.AccessToken,
		FundingSourceURL: d.FundingSourceURL,
		SharableID:       d.SharableID,
		CreatedAt:        d.CreatedAt,
	}
}

func (r *BankAccountRepository) Create(ctx context.Context, params bankaccount.CreateParams) (*bankaccount.Record, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var doc bankDocument
	err := createDocument(ctx, r.client, r.client.cfg.BankCollectionID, bankData{
		UserID:           params.UserID,
		BankID:           params.BankID,
		AccountID:        params.AccountID,
		AccessToken:      params.AccessToken,
		FundingSourceURL: params.FundingSourceURL,
		SharableID:       params.SharableID,
	}, &doc)
	if err != nil {
		return nil, fmt.Errorf("create bank document: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *BankAccountRepository) ListByUserID(ctx context.Context, userID string) ([]*bankaccount.Record, error) {
	docs, err := listDocuments[bankDocument](ctx, r.client, r.client.cfg.BankCollectionID, equal("userId", userID))
	if err != nil {
		return nil, fmt.Errorf("list bank documents: %w", err)
	}

	records := make([]*bankaccount.Record, 0, len(docs))
	for _, d := range docs {
		records = append(records, d.toDomain())
	}
	return records, nil
}

func (r *BankAccountRepository) GetByAccountID(ctx context.Context, userID, accountID string) (*bankaccount.Record, error) {
	docs, err := listDocuments[bankDocument](ctx, r.client, r.client.cfg.BankCollectionID,
		equal("userId", userID), equal("accountId", accountID), limit(1))
	if err != nil {
		return nil, fmt.Errorf("list bank documents: %w", err)
	}
	if len(docs) == 0 {
		return nil, bankaccount.ErrNotFound
	}
	return docs[0].toDomain(), nil
}
