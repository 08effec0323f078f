package service

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"teleconsult/config"
	"teleconsult/entity"
	"teleconsult/pkg/apierr"
	"teleconsult/pkg/cipher"
	"teleconsult/pkg/logger"
	"teleconsult/repository"

	"github.com/google/uuid"
)

// encrypted link fields that may carry the appointment number, tried in order
var encryptedAppointmentKeys = []string{"a", "app_no_enc"}

// plain legacy fields, tried after the encrypted candidates
var plainAppointmentKeys = []string{"app_no", "appointment", "appointmentNumber", "appointment_no"}

var mobilePattern = regexp.MustCompile(`^[0-9]{8,15}$`)

// OTPService drives the consultation access flow: precheck issues a
// challenge over SMS, Verify exchanges the code for a short-lived access
// token bound to the originating link.
type OTPService interface {
	Precheck(mobile string, params map[string]string) (*entity.PrecheckResponse, error)
	Verify(precheckID, otp string) (*entity.VerifyOTPResponse, error)
	SweepExpired() error
}

type otpService struct {
	otpStore    repository.OTPSessionStore
	accessStore repository.AccessSessionStore
	crm         CRMService
	sms         SMSService
	cfg         *config.Config
	logger      *logger.Logger
	now         func() time.Time
}

// NewOTPService creates a new OTP service instance
func NewOTPService(
	otpStore repository.OTPSessionStore,
	accessStore repository.AccessSessionStore,
	crm CRMService,
	sms SMSService,
	cfg *config.Config,
	log *logger.Logger,
) OTPService {
	return &otpService{
		otpStore:    otpStore,
		accessStore: accessStore,
		crm:         crm,
		sms:         sms,
		cfg:         cfg,
		logger:      log,
		now:         time.Now,
	}
}

// HashValue returns the hex sha256 of a value. One-way hashes stand in for
// every sensitive value the stores keep (mobile numbers, OTP codes).
func HashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

// MaskMobile keeps only the trailing 4 digits visible.
func MaskMobile(mobile string) string {
	if len(mobile) < 4 {
		return "****"
	}
	return strings.Repeat("*", len(mobile)-4) + mobile[len(mobile)-4:]
}

// AppointmentHint reduces an appointment number to a display-safe suffix.
func AppointmentHint(appointmentNumber string) string {
	if appointmentNumber == "" {
		return ""
	}
	if len(appointmentNumber) <= 4 {
		return "****" + appointmentNumber
	}
	return "****" + appointmentNumber[len(appointmentNumber)-4:]
}

// ValidateMobile checks the basic 8-15 digit shape.
func ValidateMobile(mobile string) bool {
	return mobilePattern.MatchString(strings.TrimSpace(mobile))
}

// ComputeLinkHash digests the full canonical parameter mapping. json.Marshal
// sorts map keys, so byte-identical parameter sets always produce the same
// hash regardless of the order they arrived in. This is the anti-replay
// binding between an access token and one specific consultation link.
func ComputeLinkHash(params map[string]string) (string, error) {
	canonical, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("failed to serialize link parameters: %w", err)
	}
	return HashValue(string(canonical)), nil
}

// ResolveAppointmentNumber extracts the appointment number from the link
// parameters: first present encrypted candidate wins, plain legacy keys are
// the fallback.
func (s *otpService) ResolveAppointmentNumber(params map[string]string) (string, error) {
	key := []byte(s.cfg.Crypto.DecryptionKey)
	for _, k := range encryptedAppointmentKeys {
		value, ok := params[k]
		if !ok || value == "" {
			continue
		}
		plaintext, err := cipher.Decrypt(key, value)
		if err != nil {
			s.logger.Warnw("Failed to decrypt appointment field", "field", k, "error", err)
			continue
		}
		return plaintext, nil
	}

	for _, k := range plainAppointmentKeys {
		if value, ok := params[k]; ok && value != "" {
			return value, nil
		}
	}

	return "", apierr.ErrInvalidLink
}

// GenerateOTPCode produces a numeric code of the given length with leading
// zeros preserved.
func GenerateOTPCode(length int) (string, error) {
	maxValue := big.NewInt(1)
	for i := 0; i < length; i++ {
		maxValue.Mul(maxValue, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, maxValue)
	if err != nil {
		return "", fmt.Errorf("failed to generate random number: %w", err)
	}

	return fmt.Sprintf(fmt.Sprintf("%%0%dd", length), n), nil
}

func randomHex(bytes int) (string, error) {
	buf := make([]byte, bytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Precheck validates the mobile number against the appointment behind the
// link and, when everything checks out, issues an OTP over SMS.
func (s *otpService) Precheck(mobile string, params map[string]string) (*entity.PrecheckResponse, error) {
	if len(params) == 0 {
		return nil, apierr.ErrInvalidPayload
	}
	if !ValidateMobile(mobile) {
		return nil, apierr.ErrInvalidMobile
	}

	appointmentNumber, err := s.ResolveAppointmentNumber(params)
	if err != nil {
		return nil, err
	}

	linkHash, err := ComputeLinkHash(params)
	if err != nil {
		return nil, apierr.ErrInvalidLinkHash.WithInternal(err)
	}

	normalizedMobile := strings.TrimSpace(mobile)
	valid, err := s.crm.VerifyAppointmentMobile(appointmentNumber, normalizedMobile)
	if err != nil {
		s.logger.Errorw("CRM verification failed", "appointment", appointmentNumber, "error", err)
		return nil, apierr.ErrCRMUnavailable.WithInternal(err)
	}
	if !valid {
		s.logger.Infow("Precheck mobile mismatch", "appointment", appointmentNumber)
		return nil, apierr.ErrMobileMismatch
	}

	now := s.now()
	mobileHash := HashValue(normalizedMobile)

	// Resend cooldown. The scan and the insert below are not atomic: two
	// concurrent prechecks for the same mobile can both pass the scan and
	// both send an SMS. Accepted - worst case is a duplicate SMS, and
	// serializing the whole flow around the upstream calls is not worth it.
	recent, err := s.otpStore.FindRecentByMobileHash(mobileHash, now.Add(-s.cfg.OTP.ResendCooldown))
	if err != nil {
		return nil, apierr.ErrPrecheckFailed.WithInternal(err)
	}
	if recent {
		s.logger.Infow("Precheck throttled by resend cooldown", "mobile", MaskMobile(normalizedMobile))
		return nil, apierr.ErrOTPThrottled
	}

	otpCode, err := GenerateOTPCode(s.cfg.OTP.Length)
	if err != nil {
		return nil, apierr.ErrPrecheckFailed.WithInternal(err)
	}
	otpSalt, err := randomHex(16)
	if err != nil {
		return nil, apierr.ErrPrecheckFailed.WithInternal(err)
	}

	precheckID := uuid.NewString()
	session := &entity.OTPSession{
		AppointmentNumber: appointmentNumber,
		MobileHash:        mobileHash,
		MaskedMobile:      MaskMobile(normalizedMobile),
		OTPHash:           HashValue(otpSalt + ":" + otpCode),
		OTPSalt:           otpSalt,
		LinkHash:          linkHash,
		Attempts:          0,
		CreatedAt:         now,
		ExpiresAt:         now.Add(s.cfg.OTP.TTL),
	}

	if err := s.otpStore.Put(precheckID, session); err != nil {
		return nil, apierr.ErrPrecheckFailed.WithInternal(err)
	}

	if err := s.sms.SendOTP(normalizedMobile, otpCode); err != nil {
		// No orphaned sessions for undelivered codes
		if delErr := s.otpStore.Delete(precheckID); delErr != nil {
			s.logger.Errorw("Failed to roll back OTP session after SMS failure", "error", delErr)
		}
		s.logger.Errorw("Precheck SMS dispatch failed",
			"appointment", appointmentNumber,
			"mobile", MaskMobile(normalizedMobile),
			"error", err,
		)
		return nil, apierr.ErrSMSDelivery.WithInternal(err)
	}

	s.logger.Infow("Precheck OK, OTP sent",
		"appointment", appointmentNumber,
		"mobile", MaskMobile(normalizedMobile),
	)

	return &entity.PrecheckResponse{
		Success:               true,
		PrecheckID:            precheckID,
		MaskedMobile:          session.MaskedMobile,
		LinkHash:              linkHash,
		ExpiresIn:             s.cfg.OTP.TTL.Milliseconds(),
		ResendCooldownSeconds: int(s.cfg.OTP.ResendCooldown.Seconds()),
		AppointmentHint:       AppointmentHint(appointmentNumber),
	}, nil
}

// Verify checks a submitted code against the pending challenge and on
// success mints a consultation access token. Expiry is checked before the
// attempts increment; a correct-but-late code reports expiry without
// consuming an attempt. The same otp_expired error covers both "never
// existed" and "expired" so precheck ids cannot be enumerated.
func (s *otpService) Verify(precheckID, otp string) (*entity.VerifyOTPResponse, error) {
	if precheckID == "" || otp == "" {
		return nil, apierr.ErrInvalidPayload
	}

	session, err := s.otpStore.Get(precheckID)
	if err != nil {
		return nil, apierr.ErrVerifyFailed.WithInternal(err)
	}
	if session == nil {
		return nil, apierr.ErrOTPExpired
	}

	now := s.now()
	if !session.ExpiresAt.After(now) {
		_ = s.otpStore.Delete(precheckID)
		return nil, apierr.ErrOTPExpired
	}

	// Attempts counts verification calls, not just failures
	session.Attempts++
	if session.Attempts > s.cfg.OTP.MaxAttempts {
		_ = s.otpStore.Delete(precheckID)
		s.logger.Warnw("OTP attempts exceeded", "appointment", session.AppointmentNumber)
		return nil, apierr.ErrOTPAttemptsExceeded
	}
	if err := s.otpStore.Update(precheckID, session); err != nil {
		return nil, apierr.ErrVerifyFailed.WithInternal(err)
	}

	submitted := HashValue(session.OTPSalt + ":" + otp)
	if subtle.ConstantTimeCompare([]byte(submitted), []byte(session.OTPHash)) != 1 {
		return nil, apierr.ErrOTPInvalid
	}

	// Single use: the challenge is gone the moment it succeeds
	if err := s.otpStore.Delete(precheckID); err != nil {
		return nil, apierr.ErrVerifyFailed.WithInternal(err)
	}

	accessToken, err := randomHex(48)
	if err != nil {
		return nil, apierr.ErrVerifyFailed.WithInternal(err)
	}

	access := &entity.AccessSession{
		AppointmentNumber: session.AppointmentNumber,
		MobileHash:        session.MobileHash,
		LinkHash:          session.LinkHash,
		ExpiresAt:         now.Add(s.cfg.Access.TokenTTL),
	}
	if err := s.accessStore.Put(accessToken, access); err != nil {
		return nil, apierr.ErrVerifyFailed.WithInternal(err)
	}

	s.logger.Infow("OTP verified", "appointment", session.AppointmentNumber)

	return &entity.VerifyOTPResponse{
		Success:         true,
		Token:           accessToken,
		ExpiresIn:       s.cfg.Access.TokenTTL.Milliseconds(),
		MaskedMobile:    session.MaskedMobile,
		AppointmentHint: AppointmentHint(session.AppointmentNumber),
	}, nil
}

// SweepExpired evicts expired entries from both session tables.
func (s *otpService) SweepExpired() error {
	now := s.now()

	otpRemoved, err := s.otpStore.Sweep(now)
	if err != nil {
		return fmt.Errorf("failed to sweep OTP sessions: %w", err)
	}
	accessRemoved, err := s.accessStore.Sweep(now)
	if err != nil {
		return fmt.Errorf("failed to sweep access sessions: %w", err)
	}

	if otpRemoved > 0 || accessRemoved > 0 {
		s.logger.Debugw("Session sweep completed",
			"otp_sessions_removed", otpRemoved,
			"access_sessions_removed", accessRemoved,
		)
	}
	return nil
}
