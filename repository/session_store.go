package repository

import (
	"time"

	"teleconsult/entity"
)

// OTPSessionStore holds pending OTP challenges keyed by precheck id.
// Both session tables are caches of ephemeral authorization facts, not
// systems of record: losing them on restart only forces clients back
// through precheck.
type OTPSessionStore interface {
	Get(precheckID string) (*entity.OTPSession, error)
	Put(precheckID string, session *entity.OTPSession) error
	Update(precheckID string, session *entity.OTPSession) error
	Delete(precheckID string) error
	// FindRecentByMobileHash reports whether any session for the mobile hash
	// was created after the cutoff. Drives the resend cooldown.
	FindRecentByMobileHash(mobileHash string, createdAfter time.Time) (bool, error)
	// Sweep evicts sessions expired as of now and returns the count removed.
	Sweep(now time.Time) (int, error)
}

// AccessSessionStore holds live consultation access grants keyed by the
// opaque bearer token.
type AccessSessionStore interface {
	Get(token string) (*entity.AccessSession, error)
	Put(token string, session *entity.AccessSession) error
	Delete(token string) error
	Sweep(now time.Time) (int, error)
}
