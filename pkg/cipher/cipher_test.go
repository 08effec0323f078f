package cipher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBase64_URLSafeAlphabet(t *testing.T) {
	normalized, err := NormalizeBase64("a-b_")
	require.NoError(t, err)
	assert.Equal(t, "a+b/", normalized)
}

func TestNormalizeBase64_SpacesBecomePlus(t *testing.T) {
	// '+' arrives as ' ' when the value passed through a query string
	normalized, err := NormalizeBase64("ab cd")
	require.NoError(t, err)
	assert.Contains(t, normalized, "+")
	assert.NotContains(t, normalized, " ")
}

func TestNormalizeBase64_PaddingRepair(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"abcd", "abcd"},
		{"abcdef", "abcdef=="},
		{"abcdefg", "abcdefg="},
	}

	for _, tt := range tests {
		normalized, err := NormalizeBase64(tt.input)
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.expected, normalized)
	}
}

func TestNormalizeBase64_InvalidLength(t *testing.T) {
	// 4n+1 characters can never be valid base64
	_, err := NormalizeBase64("abcde")
	assert.Error(t, err)
}

func TestNormalizeBase64_Empty(t *testing.T) {
	_, err := NormalizeBase64("")
	assert.Error(t, err)

	_, err = NormalizeBase64("   ")
	assert.Error(t, err)
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	keys := [][]byte{
		[]byte("0123456789abcdef"),
		[]byte("0123456789abcdef01234567"),
		[]byte("0123456789abcdef0123456789abcdef"),
	}

	for _, key := range keys {
		encrypted, err := Encrypt(key, "APT-2024-00123")
		require.NoError(t, err, "key length %d", len(key))

		decrypted, err := Decrypt(key, encrypted)
		require.NoError(t, err, "key length %d", len(key))
		assert.Equal(t, "APT-2024-00123", decrypted)
	}
}

func TestEncryptDecrypt_BlockBoundaryPlaintext(t *testing.T) {
	key := []byte("0123456789abcdef")

	// Exactly one block forces a full block of padding
	plaintext := "sixteen bytes!!!"
	require.Len(t, plaintext, 16)

	encrypted, err := Encrypt(key, plaintext)
	require.NoError(t, err)

	decrypted, err := Decrypt(key, encrypted)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestDecrypt_URLMangledCiphertext(t *testing.T) {
	key := []byte("0123456789abcdef")

	encrypted, err := Encrypt(key, `{"userid":"PAT123456"}`)
	require.NoError(t, err)

	mangled := strings.ReplaceAll(encrypted, "+", " ")
	mangled = strings.TrimRight(mangled, "=")

	decrypted, err := Decrypt(key, mangled)
	require.NoError(t, err)
	assert.Equal(t, `{"userid":"PAT123456"}`, decrypted)
}

func TestDecrypt_InvalidKeyLength(t *testing.T) {
	_, err := Decrypt([]byte("short"), "abcd")
	require.Error(t, err)

	var decErr *DecryptionError
	assert.ErrorAs(t, err, &decErr)
}

func TestDecrypt_InvalidBase64(t *testing.T) {
	key := []byte("0123456789abcdef")

	_, err := Decrypt(key, "!!!!")
	assert.Error(t, err)
}

func TestDecrypt_NotBlockAligned(t *testing.T) {
	key := []byte("0123456789abcdef")

	// 6 bytes of ciphertext, not a whole AES block
	_, err := Decrypt(key, "YWJjZGVm")
	assert.Error(t, err)
}
