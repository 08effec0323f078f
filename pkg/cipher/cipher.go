package cipher

import (
	"crypto/aes"
	cryptocipher "crypto/cipher"
	"encoding/base64"
	"fmt"
	"strings"
)

// DecryptionError indicates the ciphertext or key could not be processed.
// The message is safe to log server-side but must not reach clients verbatim.
type DecryptionError struct {
	Reason string
}

func (e *DecryptionError) Error() string {
	return fmt.Sprintf("decryption failed: %s", e.Reason)
}

// NormalizeBase64 maps URL-safe and space-mangled base64 back to the standard
// alphabet and repairs missing padding. A length of 4n+1 cannot be valid
// base64 and is rejected.
func NormalizeBase64(input string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", &DecryptionError{Reason: "cipher text must be a non-empty string"}
	}

	s = strings.NewReplacer(" ", "+", "-", "+", "_", "/").Replace(s)

	switch len(s) % 4 {
	case 2:
		s += "=="
	case 3:
		s += "="
	case 1:
		return "", &DecryptionError{Reason: "invalid base64 length"}
	}

	return s, nil
}

// Decrypt decodes a link parameter produced by the appointment-link generator.
// The key must be 16, 24 or 32 bytes, selecting AES-128/192/256. The generator
// uses CBC with an all-zero IV; that IV is an external compatibility
// constraint, not a pattern to copy (identical plaintext prefixes across
// values become distinguishable). Keep any change in lockstep with the
// link-generation side.
func Decrypt(key []byte, cipherText string) (string, error) {
	if l := len(key); l != 16 && l != 24 && l != 32 {
		return "", &DecryptionError{Reason: fmt.Sprintf("invalid key length: %d, must be 16, 24, or 32 bytes", l)}
	}

	normalized, err := NormalizeBase64(cipherText)
	if err != nil {
		return "", err
	}

	encrypted, err := base64.StdEncoding.DecodeString(normalized)
	if err != nil {
		return "", &DecryptionError{Reason: "invalid base64 payload"}
	}

	if len(encrypted) == 0 || len(encrypted)%aes.BlockSize != 0 {
		return "", &DecryptionError{Reason: "cipher text is not a whole number of blocks"}
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", &DecryptionError{Reason: err.Error()}
	}

	iv := make([]byte, aes.BlockSize)
	plaintext := make([]byte, len(encrypted))
	cryptocipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, encrypted)

	unpadded, err := stripPKCS7(plaintext)
	if err != nil {
		return "", err
	}

	return string(unpadded), nil
}

// Encrypt is the inverse of Decrypt, matching the link-generation side
// (zero IV, PKCS#7, standard base64). Used by fixtures and by tooling that
// produces consultation links.
func Encrypt(key []byte, plaintext string) (string, error) {
	if l := len(key); l != 16 && l != 24 && l != 32 {
		return "", &DecryptionError{Reason: fmt.Sprintf("invalid key length: %d, must be 16, 24, or 32 bytes", l)}
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", &DecryptionError{Reason: err.Error()}
	}

	padded := padPKCS7([]byte(plaintext), aes.BlockSize)
	iv := make([]byte, aes.BlockSize)
	encrypted := make([]byte, len(padded))
	cryptocipher.NewCBCEncrypter(block, iv).CryptBlocks(encrypted, padded)

	return base64.StdEncoding.EncodeToString(encrypted), nil
}

func padPKCS7(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

func stripPKCS7(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, &DecryptionError{Reason: "empty plaintext"}
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > aes.BlockSize || padLen > len(data) {
		return nil, &DecryptionError{Reason: "invalid padding"}
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, &DecryptionError{Reason: "invalid padding"}
		}
	}
	return data[:len(data)-padLen], nil
}
