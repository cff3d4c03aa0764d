package appwrite

import (
	"context"
	"fmt"

	"horizon/internal/domain/user"
)

// UserRepository stores user records in the users collection.
type UserRepository struct {
	client *Client
}

var _ user.Repository = (*UserRepository)(nil)

func NewUserRepository(client *Client) *UserRepository {
	return &UserRepository{client: client}
}

type userData struct {
	UserID            string `json:"userId"`
	Email             string `json:"email"`
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	Address1          string `json:"address1"`
	City              string `json:"city"`
	State             string `json:"state"`
	PostalCode        string `json:"postalCode"`
	DateOfBirth       string `json:"dateOfBirth"`
	SSN               string `json:"ssn"`
	DwollaCustomerID  string `json:"dwollaCustomerId"`
	DwollaCustomerURL string `json:"dwollaCustomerUrl"`
}

type userDocument struct {
	document
	userData
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	var doc userDocument
	err := createDocument(ctx, r.client, r.client.cfg.UserCollectionID, userData{
		UserID:            u.ID,
		Email:             u.Email,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		Address1:          u.Address1,
		City:              u.City,
		State:             u.State,
		PostalCode:        u.PostalCode,
		DateOfBirth:       u.DateOfBirth,
		SSN:               u.SSN,
		DwollaCustomerID:  u.PaymentsCustomerID,
		DwollaCustomerURL: u.PaymentsCustomerURL,
	}, &doc)
	if err != nil {
		return fmt.Errorf("create user document: %w", err)
	}

	u.DocumentID = doc.ID
	u.CreatedAt = doc.CreatedAt
	return nil
}

func (r *UserRepository) GetByUserID(ctx context.Context, userID string) (*user.User, error) {
	docs, err := listDocuments[userDocument](ctx, r.client, r.client.cfg.UserCollectionID, equal("userId", userID), limit(1))
	if err != nil {
		return nil, fmt.Errorf("list user documents: %w", err)
	}
	if len(docs) == 0 {
		return nil, user.ErrNotFound
	}

	d := docs[0]
	return &user.User{
		ID:                  d.UserID,
		DocumentID:          d.ID,
		Email:               d.Email,
		FirstName:           d.FirstName,
		LastName:            d.LastName,
		Address1:            d.Address1,
		City:                d.City,
		State:               d.State,
		PostalCode:          d.PostalCode,
		DateOfBirth:         d.DateOfBirth,
		SSN:                 d.SSN,
		PaymentsCustomerID:  d.DwollaCustomerID,
		PaymentsCustomerURL: d.DwollaCustomerURL,
		CreatedAt:           d.CreatedAt,
	}, nil
}
