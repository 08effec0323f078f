package service

import (
	"encoding/json"
	"strings"
	"testing"

	"teleconsult/config"
	"teleconsult/entity"
	"teleconsult/pkg/apierr"
	"teleconsult/pkg/cipher"
	"teleconsult/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDecryptService(t *testing.T) DecryptService {
	t.Helper()
	return NewDecryptService(config.Crypto{DecryptionKey: testDecryptionKey}, logger.NewNop())
}

func encryptValue(t *testing.T, plaintext string) string {
	t.Helper()
	encrypted, err := cipher.Encrypt([]byte(testDecryptionKey), plaintext)
	require.NoError(t, err)
	return encrypted
}

func TestDecryptOne_PlainString(t *testing.T) {
	svc := newTestDecryptService(t)

	decrypted, err := svc.DecryptOne(encryptValue(t, "Dr. Meenakshi"))
	require.NoError(t, err)
	assert.Equal(t, "Dr. Meenakshi", decrypted)
}

func TestDecryptOne_EmptyInput(t *testing.T) {
	svc := newTestDecryptService(t)

	_, err := svc.DecryptOne("")
	require.Error(t, err)
	assert.Equal(t, "invalid_input", apierr.From(err).Code)
}

func TestDecryptOne_InputTooLarge(t *testing.T) {
	svc := newTestDecryptService(t)

	_, err := svc.DecryptOne(strings.Repeat("A", MaxItemLength+1))
	require.Error(t, err)
	assert.Equal(t, "input_too_large", apierr.From(err).Code)
}

func TestDecryptOne_CorruptCiphertext(t *testing.T) {
	svc := newTestDecryptService(t)

	_, err := svc.DecryptOne("not-base64-at-all!")
	require.Error(t, err)
	assert.Equal(t, "decryption_failed", apierr.From(err).Code)
}

func TestDecryptBatch_MixedResults(t *testing.T) {
	svc := newTestDecryptService(t)

	items := []entity.BatchDecryptItem{
		{Key: "doctor", Text: encryptValue(t, "Dr. Meenakshi")},
		{Key: "speciality", Text: encryptValue(t, "Cardiology")},
		{Key: "broken", Text: "garbage!"},
	}

	results, errors, err := svc.DecryptBatch(items)
	require.NoError(t, err)

	assert.Equal(t, "Dr. Meenakshi", results["doctor"])
	assert.Equal(t, "Cardiology", results["speciality"])
	assert.NotContains(t, results, "broken")
	assert.Equal(t, "Invalid encrypted data", errors["broken"])
}

func TestDecryptBatch_EmptyAndOversizedItems(t *testing.T) {
	svc := newTestDecryptService(t)

	items := []entity.BatchDecryptItem{
		{Key: "empty", Text: ""},
		{Key: "huge", Text: strings.Repeat("A", MaxItemLength+1)},
	}

	results, errors, err := svc.DecryptBatch(items)
	require.NoError(t, err)

	assert.Empty(t, results)
	assert.Equal(t, "Invalid input", errors["empty"])
	assert.Equal(t, "Input too large", errors["huge"])
}

func TestDecryptBatch_TooManyItems(t *testing.T) {
	svc := newTestDecryptService(t)

	items := make([]entity.BatchDecryptItem, MaxBatchItems+1)
	for i := range items {
		items[i] = entity.BatchDecryptItem{Key: "k", Text: "v"}
	}

	_, _, err := svc.DecryptBatch(items)
	require.Error(t, err)
	assert.Equal(t, "too_many_items", apierr.From(err).Code)
}

func TestDecryptBatch_NilInput(t *testing.T) {
	svc := newTestDecryptService(t)

	_, _, err := svc.DecryptBatch(nil)
	require.Error(t, err)
	assert.Equal(t, "invalid_input", apierr.From(err).Code)
}

func TestMaskSensitivePayload_NonJSONPassesThrough(t *testing.T) {
	assert.Equal(t, "APT-2024-00123", MaskSensitivePayload("APT-2024-00123"))
	assert.Equal(t, "plain text", MaskSensitivePayload("plain text"))
}

func TestMaskSensitivePayload_DOBKeepsYearOnly(t *testing.T) {
	masked := MaskSensitivePayload(`{"dob":"15/08/1985"}`)

	var parsed map[string]string
	require.NoError(t, json.Unmarshal([]byte(masked), &parsed))
	assert.Equal(t, "**/**/1985", parsed["dob"])
}

func TestMaskSensitivePayload_DOBWithoutYear(t *testing.T) {
	masked := MaskSensitivePayload(`{"date_of_birth":"unknown"}`)

	var parsed map[string]string
	require.NoError(t, json.Unmarshal([]byte(masked), &parsed))
	assert.Equal(t, "**/**/****", parsed["date_of_birth"])
}

func TestMaskSensitivePayload_PatientIDKeepsLast4(t *testing.T) {
	masked := MaskSensitivePayload(`{"userid":"PAT9876543"}`)

	var parsed map[string]string
	require.NoError(t, json.Unmarshal([]byte(masked), &parsed))
	assert.Equal(t, "****6543", parsed["userid"])
}

func TestMaskSensitivePayload_ShortPatientIDUntouched(t *testing.T) {
	masked := MaskSensitivePayload(`{"userid":"1234"}`)

	var parsed map[string]string
	require.NoError(t, json.Unmarshal([]byte(masked), &parsed))
	assert.Equal(t, "1234", parsed["userid"])
}

func TestMaskSensitivePayload_PartialMaskWindow(t *testing.T) {
	masked := MaskSensitivePayload(`{"mobile":"9876543210","email":"jordan@example.com"}`)

	var parsed map[string]string
	require.NoError(t, json.Unmarshal([]byte(masked), &parsed))
	assert.Equal(t, "98****10", parsed["mobile"])
	assert.Equal(t, "jo****om", parsed["email"])
}

func TestMaskSensitivePayload_RemovalBlocklist(t *testing.T) {
	masked := MaskSensitivePayload(`{"name":"Jordan","credit_card_number":"4111111111111111","user_ssn_value":"123456789"}`)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(masked), &parsed))
	assert.Equal(t, "Jordan", parsed["name"])
	assert.NotContains(t, parsed, "credit_card_number")
	assert.NotContains(t, parsed, "user_ssn_value")
}

func TestDecryptOne_JSONPayloadGetsMasked(t *testing.T) {
	svc := newTestDecryptService(t)

	ciphertext := encryptValue(t, `{"userid":"PAT9876543","dob":"15/08/1985","name":"Jordan"}`)
	decrypted, err := svc.DecryptOne(ciphertext)
	require.NoError(t, err)

	var parsed map[string]string
	require.NoError(t, json.Unmarshal([]byte(decrypted), &parsed))
	assert.Equal(t, "****6543", parsed["userid"])
	assert.Equal(t, "**/**/1985", parsed["dob"])
	assert.Equal(t, "Jordan", parsed["name"])
}
