package appwrite

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// document holds the system attributes Appwrite adds to every document.
type document struct {
	ID        string    `json:"$id"`
	CreatedAt time.Time `json:"$createdAt"`
}

type documentList[T any] struct {
	Total     int `json:"total"`
	Documents []T `json:"documents"`
}

type createDocumentRequest struct {
	DocumentID string `json:"documentId"`
	Data       any    `json:"data"`
}

// query is an Appwrite query in its JSON form.
type query struct {
	Method    string `json:"method"`
	Attribute string `json:"attribute,omitempty"`
	Values    []any  `json:"values,omitempty"`
}

func equal(attribute string, value any) query {
	return query{Method: "equal", Attribute: attribute, Values: []any{value}}
}

func limit(n int) query {
	return query{Method: "limit", Values: []any{n}}
}

func collectionPath(databaseID, collectionID string) string {
	return "/databases/" + url.PathEscape(databaseID) + "/collections/" + url.PathEscape(collectionID) + "/documents"
}

// createDocument stores data under a fresh unique id and decodes the
// stored document into out.
func createDocument(ctx context.Context, c *Client, collectionID string, data, out any) error {
	return c.do(ctx, http.MethodPost, collectionPath(c.cfg.DatabaseID, collectionID), nil, asServer,
		createDocumentRequest{DocumentID: uuid.NewString(), Data: data}, out)
}

func listDocuments[T any](ctx context.Context, c *Client, collectionID string, queries ...query) ([]T, error) {
	values := url.Values{}
	for _, q := range queries {
		encoded, err := json.Marshal(q)
		if err != nil {
			return nil, fmt.Errorf("failed to encode query: %w", err)
		}
		values.Add("queries[]", string(encoded))
	}

	var list documentList[T]
	if err := c.do(ctx, http.MethodGet, collectionPath(c.cfg.DatabaseID, collectionID), values, asServer, nil, &list); err != nil {
		return nil, err
	}
	return list.Documents, nil
}
