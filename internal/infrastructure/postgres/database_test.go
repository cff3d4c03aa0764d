package postgres

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestSanitizeQuery(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{"placeholders kept", "SELECT * FROM users WHERE user_id = $1", "SELECT * FROM users WHERE user_id = $1"},
		{"string literal", "SELECT * FROM identities WHERE email = 'a@b.com'", "SELECT * FROM identities WHERE email = '?'"},
		{"escaped quote", "SELECT 'it''s' FROM t", "SELECT '?' FROM t"},
		{"numeric literal", "SELECT * FROM t LIMIT 10", "SELECT * FROM t LIMIT ?"},
		{"decimal literal", "SELECT 3.14", "SELECT ?"},
		{"digits in identifiers", "SELECT address1 FROM users", "SELECT address1 FROM users"},
		{"whitespace collapsed", "SELECT id\n\t\tFROM   users", "SELECT id FROM users"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeQuery(tt.query))
		})
	}
}

func TestSanitizeQuery_Truncates(t *testing.T) {
	q := "SELECT " + strings.Repeat("column_name, ", 40) + "id FROM t"
	got := sanitizeQuery(q)
	assert.Len(t, got, 259)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestExtractSQLVerb(t *testing.T) {
	assert.Equal(t, "SELECT", extractSQLVerb("  select 1"))
	assert.Equal(t, "INSERT", extractSQLVerb("\n\t\tINSERT INTO users"))
	assert.Equal(t, "", extractSQLVerb("   "))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("other")))
	assert.False(t, isUniqueViolation(nil))
}

func TestSchemaDefinesTables(t *testing.T) {
	for _, table := range []string{"identities", "sessions", "users", "bank_accounts"} {
		assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS "+table+" ")
	}
}

func TestHashSecret(t *testing.T) {
	h := hashSecret("secret")
	assert.Len(t, h, 64)
	assert.Equal(t, h, hashSecret("secret"))
	assert.NotEqual(t, h, hashSecret("secret2"))
}

func TestNewSecret_Unique(t *testing.T) {
	a, err := newSecret()
	assert.NoError(t, err)
	b, err := newSecret()
	assert.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 43)
}
