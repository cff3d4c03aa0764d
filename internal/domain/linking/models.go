package linking

// ProcessorDwolla identifies the payments processor when requesting a
// processor token from the aggregator.
const ProcessorDwolla = "dwolla"

// ExchangeComplete is the success marker returned by ExchangePublicToken.
const ExchangeComplete = "complete"

var (
	linkProducts     = []string{"auth"}
	linkCountryCodes = []string{"US"}
)

const linkLanguage = "en"

type LinkTokenRequest struct {
	ClientUserID string
	ClientName   string
	Products     []string
	Language     string
	CountryCodes []string
}

type TokenExchange struct {
	AccessToken string
	ItemID      string
}

type FundingSourceRequest struct {
	CustomerID     string
	ProcessorToken string
	BankName       string
}

type ExchangeResult struct {
	PublicTokenExchange string `json:"publicTokenExchange"`
}
