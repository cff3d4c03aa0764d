package crypto

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "01234567890123456789012345678901" // 32 bytes for AES-256

func TestNewEncryptor_ValidKey(t *testing.T) {
	enc, err := NewEncryptor(testKey)
	require.NoError(t, err)
	require.NotNil(t, enc)
}

func TestNewEncryptor_InvalidKeyLength(t *testing.T) {
	_, err := NewEncryptor("too-short")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidKey))
}

func TestNewEncryptor_EmptyKey(t *testing.T) {
	_, err := NewEncryptor("")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestEncryptDecrypt_Roundtrip(t *testing.T) {
	enc, _ := NewEncryptor(testKey)

	ciphertext, err := enc.Encrypt("acc-1")
	require.NoError(t, err)
	assert.NotEqual(t, "acc-1", ciphertext)

	plaintext, err := enc.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", plaintext)
}

func TestEncrypt_URLSafe(t *testing.T) {
	enc, _ := NewEncryptor(testKey)

	for i := 0; i < 50; i++ {
		ciphertext, err := enc.Encrypt("BxBXxLj1m4HMXBm9WZZmCWVbPjX16EHwv99vp")
		require.NoError(t, err)
		assert.False(t, strings.ContainsAny(ciphertext, "+/="), "ciphertext %q is not URL safe", ciphertext)
	}
}

func TestEncryptDecrypt_EmptyString(t *testing.T) {
	enc, _ := NewEncryptor(testKey)

	ciphertext, err := enc.Encrypt("")
	require.NoError(t, err)
	assert.Empty(t, ciphertext)

	plaintext, err := enc.Decrypt("")
	require.NoError(t, err)
	assert.Empty(t, plaintext)
}

func TestEncrypt_DifferentCiphertexts(t *testing.T) {
	enc, _ := NewEncryptor(testKey)

	c1, _ := enc.Encrypt("same text")
	c2, _ := enc.Encrypt("same text")

	assert.NotEqual(t, c1, c2, "nonce should differ between calls")
}

func TestDecrypt_TamperedCiphertext(t *testing.T) {
	enc, _ := NewEncryptor(testKey)

	ciphertext, _ := enc.Encrypt("secret data")
	mid := len(ciphertext) / 2
	replacement := byte('A')
	if ciphertext[mid] == 'A' {
		replacement = 'B'
	}
	tampered := ciphertext[:mid] + string(replacement) + ciphertext[mid+1:]

	_, err := enc.Decrypt(tampered)
	assert.Error(t, err)
}

func TestDecrypt_InvalidBase64(t *testing.T) {
	enc, _ := NewEncryptor(testKey)

	_, err := enc.Decrypt("not-valid-base64!!!")
	assert.Error(t, err)
}

func TestDecrypt_TooShortCiphertext(t *testing.T) {
	enc, _ := NewEncryptor(testKey)

	_, err := enc.Decrypt("YQ") // "a"
	assert.ErrorIs(t, err, ErrCiphertextTooShort)
}

func TestEncryptDecrypt_LongContent(t *testing.T) {
	enc, _ := NewEncryptor(testKey)

	plaintext := strings.Repeat("access-sandbox-", 500)
	ciphertext, err := enc.Encrypt(plaintext)
	require.NoError(t, err)

	decrypted, err := enc.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestDecrypt_WrongKey(t *testing.T) {
	enc1, _ := NewEncryptor(testKey)
	enc2, _ := NewEncryptor("98765432109876543210987654321098")

	ciphertext, _ := enc1.Encrypt("encrypted with key1")

	_, err := enc2.Decrypt(ciphertext)
	assert.Error(t, err)
}
