package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is the single error type crossing the service/controller boundary.
// Message is safe for clients; Internal carries upstream detail that is only
// logged (or exposed verbatim in development mode).
type Error struct {
	Code     string
	Status   int
	Message  string
	Internal error
}

func (e *Error) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Internal
}

// WithInternal returns a copy carrying the given internal cause.
func (e *Error) WithInternal(err error) *Error {
	clone := *e
	clone.Internal = err
	return &clone
}

// New builds an API error.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// From extracts an *Error from err, or wraps it as a generic 500.
func From(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &Error{
		Code:     "internal_error",
		Status:   http.StatusInternalServerError,
		Message:  "Something went wrong",
		Internal: err,
	}
}

// Precheck / verification flow errors. Messages are deliberately generic so
// the endpoints cannot be used as an oracle for crafting valid links or
// probing appointment existence.
var (
	ErrInvalidPayload  = New("invalid_payload", http.StatusBadRequest, "Encrypted parameters are required")
	ErrInvalidMobile   = New("invalid_mobile", http.StatusBadRequest, "Please provide a valid mobile number")
	ErrInvalidLink     = New("invalid_link", http.StatusBadRequest, "Unable to locate appointment number from link")
	ErrInvalidLinkHash = New("invalid_link_hash", http.StatusBadRequest, "Unable to validate encrypted link")
	ErrMobileMismatch  = New("mobile_mismatch", http.StatusBadRequest, "The entered mobile number does not match this appointment")
	ErrOTPThrottled    = New("otp_throttled", http.StatusTooManyRequests, "OTP already sent. Please wait before requesting again.")
	ErrSMSDelivery     = New("sms_delivery_failed", http.StatusInternalServerError, "Unable to initiate verification")
	ErrPrecheckFailed  = New("precheck_failed", http.StatusInternalServerError, "Unable to initiate verification")

	ErrOTPExpired          = New("otp_expired", http.StatusBadRequest, "OTP has expired. Please restart verification.")
	ErrOTPInvalid          = New("otp_invalid", http.StatusBadRequest, "Invalid OTP. Please try again.")
	ErrOTPAttemptsExceeded = New("otp_attempts_exceeded", http.StatusTooManyRequests, "Too many invalid attempts. Please request a new OTP.")
	ErrVerifyFailed        = New("otp_verification_failed", http.StatusInternalServerError, "Unable to verify OTP")

	ErrTokenRequired = New("consultation_token_required", http.StatusUnauthorized, "Consultation access token is required")
	ErrTokenInvalid  = New("consultation_token_invalid", http.StatusUnauthorized, "Consultation access token is invalid or expired")
	ErrTokenExpired  = New("consultation_token_expired", http.StatusUnauthorized, "Consultation access token is invalid or expired")
	ErrLinkMismatch  = New("consultation_link_mismatch", http.StatusForbidden, "Encrypted link verification failed")

	ErrRateLimited = New("rate_limited", http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")

	ErrCRMUnavailable = New("verification_unavailable", http.StatusInternalServerError, "Unable to initiate verification")

	ErrDecryptionFailed = New("decryption_failed", http.StatusInternalServerError, "Invalid encrypted data")
)
