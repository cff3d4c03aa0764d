package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "01234567890123456789012345678901"

func TestRun_Usage(t *testing.T) {
	var out bytes.Buffer

	assert.ErrorIs(t, run(nil, &out), errUsage)
	assert.Contains(t, out.String(), "Horizon Admin CLI")

	out.Reset()
	assert.NoError(t, run([]string{"help"}, &out))

	out.Reset()
	assert.ErrorIs(t, run([]string{"bogus"}, &out), errUsage)
	assert.Contains(t, out.String(), "Unknown command: bogus")
}

func TestRun_SharableIDRoundTrip(t *testing.T) {
	t.Setenv("ENCRYPTION_KEY", testKey)

	var out bytes.Buffer
	require.NoError(t, run([]string{"sharable-id", "acc-1"}, &out))
	encoded := strings.TrimSpace(out.String())
	assert.NotEqual(t, "acc-1", encoded)

	out.Reset()
	require.NoError(t, run([]string{"sharable-id", "--decode", encoded}, &out))
	assert.Equal(t, "acc-1", strings.TrimSpace(out.String()))
}

func TestRun_SharableIDErrors(t *testing.T) {
	var out bytes.Buffer

	t.Setenv("ENCRYPTION_KEY", testKey)
	assert.ErrorIs(t, run([]string{"sharable-id"}, &out), errUsage)

	t.Setenv("ENCRYPTION_KEY", "short")
	assert.Error(t, run([]string{"sharable-id", "acc-1"}, &out))
}
