// Package plaid is a client for the Plaid REST API covering link tokens,
// public token exchange, account listing and processor tokens.
package plaid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"horizon/internal/domain/bankaccount"
	"horizon/internal/domain/linking"
)

const (
	defaultTimeout = 30 * time.Second

	linkTokenCreatePath     = "/link/token/create"
	publicTokenExchangePath = "/item/public_token/exchange"
	accountsGetPath         = "/accounts/get"
	processorTokenPath      = "/processor/token/create"
)

var environments = map[string]string{
	"sandbox":     "https://sandbox.plaid.com",
	"development": "https://development.plaid.com",
	"production":  "https://production.plaid.com",
}

type Config struct {
	ClientID    string
	Secret      string
	Environment string
	// BaseURL overrides the environment host, for tests.
	BaseURL string
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	clientID   string
	secret     string
}

var _ linking.Aggregator = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		var ok bool
		if baseURL, ok = environments[cfg.Environment]; !ok {
			return nil, fmt.Errorf("unknown plaid environment %q", cfg.Environment)
		}
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL:  baseURL,
		clientID: cfg.ClientID,
		secret:   cfg.Secret,
	}, nil
}

// APIError is the error body Plaid returns with every non-2xx response.
type APIError struct {
	StatusCode     int    `json:"-"`
	ErrorType      string `json:"error_type"`
	ErrorCode      string `json:"error_code"`
	ErrorMessage   string `json:"error_message"`
	DisplayMessage string `json:"display_message"`
	RequestID      string `json:"request_id"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("plaid %s/%s (status %d, request %s): %s",
		e.ErrorType, e.ErrorCode, e.StatusCode, e.RequestID, e.ErrorMessage)
}

type linkTokenUser struct {
	ClientUserID string `json:"client_user_id"`
}

type linkTokenCreateRequest struct {
	User         linkTokenUser `json:"user"`
	ClientName   string        `json:"client_name"`
	Products     []string      `json:"products"`
	Language     string        `json:"language"`
	CountryCodes []string      `json:"country_codes"`
}

type linkTokenCreateResponse struct {
	LinkToken  string `json:"link_token"`
	Expiration string `json:"expiration"`
	RequestID  string `json:"request_id"`
}

func (c *Client) CreateLinkToken(ctx context.Context, req linking.LinkTokenRequest) (string, error) {
	var resp linkTokenCreateResponse
	err := c.post(ctx, linkTokenCreatePath, linkTokenCreateRequest{
		User:         linkTokenUser{ClientUserID: req.ClientUserID},
		ClientName:   req.ClientName,
		Products:     req.Products,
		Language:     req.Language,
		CountryCodes: req.CountryCodes,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.LinkToken, nil
}

type publicTokenExchangeResponse struct {
	AccessToken string `json:"access_token"`
	ItemID      string `json:"item_id"`
	RequestID   string `json:"request_id"`
}

func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (*linking.TokenExchange, error) {
	var resp publicTokenExchangeResponse
	if err := c.post(ctx, publicTokenExchangePath, map[string]string{"public_token": publicToken}, &resp); err != nil {
		return nil, err
	}
	return &linking.TokenExchange{AccessToken: resp.AccessToken, ItemID: resp.ItemID}, nil
}

// Account is an account entry of /accounts/get.
type Account struct {
	AccountID    string   `json:"account_id"`
	Name         string   `json:"name"`
	OfficialName *string  `json:"official_name"`
	Mask         *string  `json:"mask"`
	Type         string   `json:"type"`
	Subtype      *string  `json:"subtype"`
	Balances     Balances `json:"balances"`
}

type Balances struct {
	Available       *decimal.Decimal `json:"available"`
	Current         *decimal.Decimal `json:"current"`
	ISOCurrencyCode *string          `json:"iso_currency_code"`
}

type accountsGetResponse struct {
	Accounts  []Account `json:"accounts"`
	RequestID string    `json:"request_id"`
}

func (c *Client) GetAccounts(ctx context.Context, accessToken string) ([]bankaccount.ExternalAccount, error) {
	var resp accountsGetResponse
	if err := c.post(ctx, accountsGetPath, map[string]string{"access_token": accessToken}, &resp); err != nil {
		return nil, err
	}

	accounts := make([]bankaccount.ExternalAccount, 0, len(resp.Accounts))
	for _, a := range resp.Accounts {
		accounts = append(accounts, a.toDomain())
	}
	return accounts, nil
}

func (a Account) toDomain() bankaccount.ExternalAccount {
	ext := bankaccount.ExternalAccount{
		ID:               a.AccountID,
		Name:             a.Name,
		OfficialName:     deref(a.OfficialName),
		Mask:             deref(a.Mask),
		Type:             a.Type,
		Subtype:          deref(a.Subtype),
		CurrentBalance:   decimal.Zero,
		AvailableBalance: a.Balances.Available,
		Currency:         deref(a.Balances.ISOCurrencyCode),
	}
	if a.Balances.Current != nil {
		ext.CurrentBalance = *a.Balances.Current
	}
	return ext
}

type processorTokenResponse struct {
	ProcessorToken string `json:"processor_token"`
	RequestID      string `json:"request_id"`
}

func (c *Client) CreateProcessorToken(ctx context.Context, accessToken, accountID, processor string) (string, error) {
	var resp processorTokenResponse
	err := c.post(ctx, processorTokenPath, map[string]string{
		"access_token": accessToken,
		"account_id":   accountID,
		"processor":    processor,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.ProcessorToken, nil
}

// post sends body as JSON with the client credentials headers and decodes
// a 200 response into out. Other statuses decode into *APIError.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("PLAID-CLIENT-ID", c.clientID)
	req.Header.Set("PLAID-SECRET", c.secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(respBody, apiErr); err != nil || apiErr.ErrorCode == "" {
			return fmt.Errorf("plaid request %s failed with status %d: %s", path, resp.StatusCode, truncate(respBody))
		}
		return apiErr
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s response: %w", path, err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func truncate(b []byte) string {
	const limit = 512
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
