package service

import (
	"encoding/json"
	"regexp"
	"strings"

	"teleconsult/config"
	"teleconsult/entity"
	"teleconsult/pkg/apierr"
	"teleconsult/pkg/cipher"
	"teleconsult/pkg/logger"
)

const (
	// MaxItemLength caps a single ciphertext so decryption work stays bounded
	MaxItemLength = 1000
	// MaxBatchItems caps one batch request
	MaxBatchItems = 20
)

// fields masked down to a short prefix/suffix when present in decrypted JSON
var partialMaskFields = []string{"ssn", "aadhaar", "pan", "phone", "mobile", "email"}

// key substrings whose fields are removed from decrypted JSON entirely
var removeFieldSubstrings = []string{"ssn", "aadhaar", "pan", "credit_card", "card_number"}

var dobYearPattern = regexp.MustCompile(`\d{4}$`)

// DecryptService decrypts link parameters and masks sensitive sub-fields
// before anything reaches the client.
type DecryptService interface {
	DecryptOne(text string) (string, error)
	DecryptBatch(items []entity.BatchDecryptItem) (map[string]string, map[string]string, error)
}

type decryptService struct {
	key    []byte
	logger *logger.Logger
}

// NewDecryptService creates a new decrypt service instance
func NewDecryptService(cfg config.Crypto, log *logger.Logger) DecryptService {
	return &decryptService{
		key:    []byte(cfg.DecryptionKey),
		logger: log,
	}
}

// DecryptOne decrypts a single parameter. JSON-shaped plaintext is masked;
// plain strings (appointment numbers, doctor names) pass through untouched.
func (s *decryptService) DecryptOne(text string) (string, error) {
	if text == "" {
		return "", apierr.New("invalid_input", 400, "Encoded text is required and must be a string")
	}
	if len(text) > MaxItemLength {
		return "", apierr.New("input_too_large", 400, "Encoded text must be less than 1000 characters")
	}

	plaintext, err := cipher.Decrypt(s.key, text)
	if err != nil {
		s.logger.Warnw("Decryption failed", "error", err)
		return "", apierr.ErrDecryptionFailed.WithInternal(err)
	}

	return MaskSensitivePayload(plaintext), nil
}

// DecryptBatch decrypts up to MaxBatchItems parameters with per-item error
// isolation: a corrupt item lands in the errors map under its key and the
// rest of the batch still succeeds.
func (s *decryptService) DecryptBatch(items []entity.BatchDecryptItem) (map[string]string, map[string]string, error) {
	if items == nil {
		return nil, nil, apierr.New("invalid_input", 400, "texts must be an array of encrypted strings")
	}
	if len(items) > MaxBatchItems {
		return nil, nil, apierr.New("too_many_items", 400, "Maximum 20 items allowed per batch request")
	}

	results := make(map[string]string)
	errors := make(map[string]string)

	for _, item := range items {
		if item.Key == "" || item.Text == "" {
			errors[item.Key] = "Invalid input"
			continue
		}
		if len(item.Text) > MaxItemLength {
			errors[item.Key] = "Input too large"
			continue
		}

		plaintext, err := cipher.Decrypt(s.key, item.Text)
		if err != nil {
			errors[item.Key] = "Invalid encrypted data"
			continue
		}
		results[item.Key] = MaskSensitivePayload(plaintext)
	}

	return results, errors, nil
}

// MaskSensitivePayload applies the disclosure policy to one decrypted value.
// Non-JSON values are returned as-is. For JSON objects: date-of-birth keeps
// only the year, patient identifiers keep only the last 4 characters, the
// partial-mask list keeps a 2+2 character window, and the removal blocklist
// drops fields outright on a key-substring match.
func MaskSensitivePayload(decrypted string) string {
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(decrypted), &parsed); err != nil {
		return decrypted
	}

	for _, field := range []string{"dob", "date_of_birth", "dateOfBirth"} {
		if raw, ok := parsed[field]; ok {
			parsed[field] = maskDOB(asString(raw))
		}
	}

	for _, field := range []string{"userid", "patient_id", "patientId"} {
		if raw, ok := parsed[field]; ok {
			value := asString(raw)
			if len(value) > 4 {
				parsed[field] = "****" + value[len(value)-4:]
			}
		}
	}

	for _, field := range partialMaskFields {
		if raw, ok := parsed[field]; ok {
			value := asString(raw)
			if len(value) > 4 {
				parsed[field] = value[:2] + "****" + value[len(value)-2:]
			} else {
				parsed[field] = "****"
			}
		}
	}

	for key := range parsed {
		lower := strings.ToLower(key)
		for _, sub := range removeFieldSubstrings {
			if strings.Contains(lower, sub) {
				delete(parsed, key)
				break
			}
		}
	}

	masked, err := json.Marshal(parsed)
	if err != nil {
		return decrypted
	}
	return string(masked)
}

func maskDOB(dob string) string {
	if m := dobYearPattern.FindString(dob); m != "" {
		return "**/**/" + m
	}
	return "**/**/****"
}

func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
