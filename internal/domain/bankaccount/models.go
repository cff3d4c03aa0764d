package bankaccount

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("bank account not found")

// Record is a linked bank account. It is written once per successful
// linking run and never updated.
type Record struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	BankID           string    `json:"bankId"` // aggregator item id
	AccountID        string    `json:"accountId"`
	AccessToken      string    `json:"-"`
	FundingSourceURL string    `json:"fundingSourceUrl"`
	SharableID       string    `json:"sharableId"`
	CreatedAt        time.Time `json:"createdAt,omitzero"`
}

// CreateParams carries the fields of a new Record.
type CreateParams struct {
	UserID           string
	BankID           string
	AccountID        string
	AccessToken      string
	FundingSourceURL string
	SharableID       string
}

func (p CreateParams) Validate() error {
	switch {
	case p.UserID == "":
		return errors.New("user id is required")
	case p.BankID == "" || p.AccountID == "":
		return errors.New("bank id and account id are required")
	case p.AccessToken == "":
		return errors.New("access token is required")
	case p.FundingSourceURL == "":
		return errors.New("funding source url is required")
	case p.SharableID == "":
		return errors.New("sharable id is required")
	}
	return nil
}

// ExternalAccount is an account as reported by the aggregator.
type ExternalAccount struct {
	ID               string           `json:"accountId"`
	Name             string           `json:"name"`
	OfficialName     string           `json:"officialName,omitempty"`
	Mask             string           `json:"mask,omitempty"`
	Type             string           `json:"type"`
	Subtype          string           `json:"subtype,omitempty"`
	CurrentBalance   decimal.Decimal  `json:"currentBalance"`
	AvailableBalance *decimal.Decimal `json:"availableBalance,omitempty"`
	Currency         string           `json:"currency,omitempty"`
}
