package entity

import (
	"time"
)

// OTPSession is a pending verification challenge, keyed by an unguessable
// precheck id. The plaintext code and mobile number are never stored.
type OTPSession struct {
	AppointmentNumber string    `json:"appointment_number"`
	MobileHash        string    `json:"mobile_hash"`
	MaskedMobile      string    `json:"masked_mobile"`
	OTPHash           string    `json:"otp_hash"`
	OTPSalt           string    `json:"otp_salt"`
	LinkHash          string    `json:"link_hash"`
	Attempts          int       `json:"attempts"`
	CreatedAt         time.Time `json:"created_at"`
	ExpiresAt         time.Time `json:"expires_at"`
}

// AccessSession is a live consultation access grant, keyed by the opaque
// bearer token minted on successful OTP verification. It stays bound to the
// exact link parameters that initiated the flow via LinkHash.
type AccessSession struct {
	AppointmentNumber string    `json:"appointment_number"`
	MobileHash        string    `json:"mobile_hash"`
	LinkHash          string    `json:"link_hash"`
	ExpiresAt         time.Time `json:"expires_at"`
}

// PrecheckRequest starts the OTP flow for a consultation link.
type PrecheckRequest struct {
	Mobile string            `json:"mobile" validate:"required,mobile"`
	Params map[string]string `json:"params" validate:"required,min=1"`
}

// PrecheckResponse carries everything the client needs to drive the OTP
// screen. It never includes the code, the hash or the salt.
type PrecheckResponse struct {
	Success               bool   `json:"success"`
	PrecheckID            string `json:"precheckId"`
	MaskedMobile          string `json:"maskedMobile"`
	LinkHash              string `json:"linkHash"`
	ExpiresIn             int64  `json:"expiresIn"` // milliseconds
	ResendCooldownSeconds int    `json:"resendCooldownSeconds"`
	AppointmentHint       string `json:"appointmentHint,omitempty"`
}

// VerifyOTPRequest submits a code for a pending precheck.
type VerifyOTPRequest struct {
	PrecheckID string `json:"precheckId" validate:"required"`
	OTP        string `json:"otp" validate:"required,numeric"`
}

// VerifyOTPResponse returns the consultation access token.
type VerifyOTPResponse struct {
	Success         bool   `json:"success"`
	Token           string `json:"token"`
	ExpiresIn       int64  `json:"expiresIn"` // milliseconds
	MaskedMobile    string `json:"maskedMobile"`
	AppointmentHint string `json:"appointmentHint,omitempty"`
}

// DecryptRequest decrypts a single link parameter.
type DecryptRequest struct {
	Text string `json:"text" validate:"required,max=1000"`
}

// DecryptResponse carries a single decrypted (and masked) value.
type DecryptResponse struct {
	Success       bool      `json:"success"`
	DecryptedText string    `json:"decryptedText"`
	Timestamp     time.Time `json:"timestamp"`
}

// BatchDecryptItem is one keyed ciphertext within a batch request.
type BatchDecryptItem struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// BatchDecryptRequest decrypts up to the configured cap of items at once.
type BatchDecryptRequest struct {
	Texts []BatchDecryptItem `json:"texts" validate:"required"`
}

// BatchDecryptResponse isolates per-item failures: results and errors are
// parallel maps keyed the same way, so one corrupt item never aborts the rest.
type BatchDecryptResponse struct {
	Success   bool              `json:"success"`
	Results   map[string]string `json:"results"`
	Errors    map[string]string `json:"errors,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// RoomTokenRequest asks for a video-room join token. The room secret stays
// server-side; the client only ever sees the signed token.
type RoomTokenRequest struct {
	RoomID   string `json:"roomID" validate:"required"`
	UserID   string `json:"userID" validate:"required"`
	UserName string `json:"userName"`
}

// RoomTokenResponse returns the signed room token.
type RoomTokenResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	AppID   string `json:"appId"`
}

// RateLimitEntry tracks per-client decrypt usage for the sliding window
// limiter: a main window count plus recent burst timestamps.
type RateLimitEntry struct {
	Count         int         `json:"count"`
	FirstRequest  time.Time   `json:"first_request"`
	BlockedUntil  time.Time   `json:"blocked_until"`
	BurstRequests []time.Time `json:"burst_requests"`
}
