// Package appwrite talks to the Appwrite REST API: email/password accounts
// and sessions, plus the documents of the user and bank-account collections.
package appwrite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultTimeout = 15 * time.Second

type Config struct {
	Endpoint         string // e.g. https://cloud.appwrite.io/v1
	ProjectID        string
	APIKey           string
	DatabaseID       string
	UserCollectionID string
	BankCollectionID string
}

type Client struct {
	httpClient *http.Client
	cfg        Config
}

func NewClient(cfg Config) *Client {
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	return &Client{
		httpClient: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		cfg: cfg,
	}
}

// APIError is the error body Appwrite returns.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	Code       int    `json:"code"`
	Type       string `json:"type"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("appwrite %s (status %d): %s", e.Type, e.StatusCode, e.Message)
}

// credentials selects how a request authenticates: with the server API
// key, or as the user owning a session secret.
type credentials struct {
	session string
}

var asServer = credentials{}

func asSession(secret string) credentials { return credentials{session: secret} }

func (c *Client) do(ctx context.Context, method, path string, query url.Values, creds credentials, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	target := c.cfg.Endpoint + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Appwrite-Project", c.cfg.ProjectID)
	if creds.session != "" {
		req.Header.Set("X-Appwrite-Session", creds.session)
	} else {
		req.Header.Set("X-Appwrite-Key", c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(respBody, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(respBody))
		}
		return apiErr
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
