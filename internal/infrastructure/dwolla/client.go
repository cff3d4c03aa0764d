// Package dwolla is a client for the Dwolla payments API: customers,
// on-demand authorizations and funding sources. Requests authenticate with
// an application token obtained through the OAuth2 client credentials grant.
package dwolla

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"horizon/internal/domain/linking"
	"horizon/internal/domain/user"
)

const (
	defaultTimeout = 30 * time.Second
	mediaType      = "application/vnd.dwolla.v1.hal+json"
)

var environments = map[string]string{
	"sandbox":    "https://api-sandbox.dwolla.com",
	"production": "https://api.dwolla.com",
}

type Config struct {
	Key         string
	Secret      string
	Environment string
	// BaseURL overrides the environment host, for tests.
	BaseURL string
}

type Client struct {
	httpClient *http.Client
	baseURL    string
}

var (
	_ user.CustomerCreator = (*Client)(nil)
	_ linking.Payments     = (*Client)(nil)
)

func NewClient(cfg Config) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		var ok bool
		if baseURL, ok = environments[cfg.Environment]; !ok {
			return nil, fmt.Errorf("unknown dwolla environment %q", cfg.Environment)
		}
	}
	baseURL = strings.TrimRight(baseURL, "/")

	tokenSource := clientcredentials.Config{
		ClientID:     cfg.Key,
		ClientSecret: cfg.Secret,
		TokenURL:     baseURL + "/token",
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	base := &http.Client{
		Timeout:   defaultTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	httpClient := tokenSource.Client(context.WithValue(context.Background(), oauth2.HTTPClient, base))
	httpClient.Timeout = defaultTimeout

	return &Client{httpClient: httpClient, baseURL: baseURL}, nil
}

// APIError is Dwolla's HAL error body.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Embedded   struct {
		Errors []struct {
			Code    string `json:"code"`
			Message string `json:"message"`
			Path    string `json:"path"`
		} `json:"errors"`
	} `json:"_embedded"`
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("dwolla %s (status %d): %s", e.Code, e.StatusCode, e.Message)
	for _, fe := range e.Embedded.Errors {
		msg += fmt.Sprintf("; %s %s", fe.Path, fe.Message)
	}
	return msg
}

type link struct {
	Href string `json:"href"`
}

type customerRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Type        string `json:"type"`
	Address1    string `json:"address1,omitempty"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
	PostalCode  string `json:"postalCode,omitempty"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	SSN         string `json:"ssn,omitempty"`
}

// CreateCustomer creates a customer and returns its URL.
func (c *Client) CreateCustomer(ctx context.Context, nc user.NewCustomer) (string, error) {
	resp, err := c.do(ctx, "/customers", customerRequest{
		FirstName:   nc.FirstName,
		LastName:    nc.LastName,
		Email:       nc.Email,
		Type:        nc.Type,
		Address1:    nc.Address1,
		City:        nc.City,
		State:       nc.State,
		PostalCode:  nc.PostalCode,
		DateOfBirth: nc.DateOfBirth,
		SSN:         nc.SSN,
	})
	if err != nil {
		return "", fmt.Errorf("create customer: %w", err)
	}
	return resp.Header.Get("Location"), nil
}

type onDemandAuthorization struct {
	Links struct {
		Self link `json:"self"`
	} `json:"_links"`
	BodyText   string `json:"bodyText"`
	ButtonText string `json:"buttonText"`
}

type fundingSourceRequest struct {
	Name       string          `json:"name"`
	PlaidToken string          `json:"plaidToken"`
	Links      map[string]link `json:"_links"`
}

// AddFundingSource authorizes on-demand transfers and attaches the bank
// account behind the processor token to the customer. It returns the URL
// of the new funding source.
func (c *Client) AddFundingSource(ctx context.Context, req linking.FundingSourceRequest) (string, error) {
	authResp, err := c.do(ctx, "/on-demand-authorizations", nil)
	if err != nil {
		return "", fmt.Errorf("create on-demand authorization: %w", err)
	}
	var auth onDemandAuthorization
	if err := json.Unmarshal(authResp.body, &auth); err != nil {
		return "", fmt.Errorf("decode on-demand authorization: %w", err)
	}
	if auth.Links.Self.Href == "" {
		return "", fmt.Errorf("on-demand authorization has no self link")
	}

	resp, err := c.do(ctx, "/customers/"+req.CustomerID+"/funding-sources", fundingSourceRequest{
		Name:       req.BankName,
		PlaidToken: req.ProcessorToken,
		Links:      map[string]link{"on-demand-authorization": {Href: auth.Links.Self.Href}},
	})
	if err != nil {
		return "", fmt.Errorf("create funding source: %w", err)
	}
	return resp.Header.Get("Location"), nil
}

type response struct {
	Header http.Header
	body   []byte
}

// do POSTs body (or an empty body when nil) to path and returns the
// response for 2xx statuses. Other statuses decode into *APIError.
func (c *Client) do(ctx context.Context, path string, body any) (*response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", mediaType)
	req.Header.Set("Content-Type", mediaType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(respBody, apiErr); err != nil || apiErr.Code == "" {
			return nil, fmt.Errorf("dwolla request failed with status %d: %s", resp.StatusCode, string(respBody))
		}
		return nil, apiErr
	}

	return &response{Header: resp.Header, body: respBody}, nil
}
