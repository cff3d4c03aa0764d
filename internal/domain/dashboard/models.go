package dashboard

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrAccountNotFound = errors.New("account not found")

// Account is one linked account with its live balances.
type Account struct {
	ID               string           `json:"id"`
	AccountID        string           `json:"accountId"`
	BankID           string           `json:"bankId"`
	Name             string           `json:"name"`
	OfficialName     string           `json:"officialName,omitempty"`
	Mask             string           `json:"mask,omitempty"`
	Type             string           `json:"type"`
	Subtype          string           `json:"subtype,omitempty"`
	CurrentBalance   decimal.Decimal  `json:"currentBalance"`
	AvailableBalance *decimal.Decimal `json:"availableBalance,omitempty"`
	SharableID       string           `json:"sharableId"`
}

type Summary struct {
	Accounts            []Account       `json:"data"`
	TotalBanks          int             `json:"totalBanks"`
	TotalCurrentBalance decimal.Decimal `json:"totalCurrentBalance"`
}
