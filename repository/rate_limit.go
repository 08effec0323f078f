package repository

import (
	"time"

	"teleconsult/config"
	"teleconsult/entity"
)

// RateLimitRepository guards the decrypt endpoints per client IP with a
// sliding window plus a burst allowance. Allow records the request and
// reports whether it may proceed; retryAfter is only meaningful when the
// client is blocked.
type RateLimitRepository interface {
	Allow(clientID string, now time.Time) (allowed bool, retryAfter time.Duration, err error)
	Cleanup(olderThan time.Time) error
}

// applyRateLimit advances a client's window state by one request and reports
// whether the request is allowed. Shared by the in-memory and Redis
// implementations so the policy lives in one place.
//
// Policy, matching the original portal behavior: a hard block persists for
// BlockDuration once tripped; the burst tracker trips the block when more
// than BurstAllowance requests land within two seconds; the main window
// allows MaxRequests per WindowDuration and resets when the window ages out.
func applyRateLimit(e *entity.RateLimitEntry, cfg config.RateLimit, now time.Time) (allowed bool, retryAfter time.Duration) {
	if !e.BlockedUntil.IsZero() && now.Before(e.BlockedUntil) {
		return false, e.BlockedUntil.Sub(now)
	}

	recent := e.BurstRequests[:0]
	for _, ts := range e.BurstRequests {
		if now.Sub(ts) < cfg.BurstWindow {
			recent = append(recent, ts)
		}
	}
	e.BurstRequests = recent

	if len(e.BurstRequests) > cfg.BurstAllowance {
		burstAge := now.Sub(e.BurstRequests[0])
		if burstAge < 2*time.Second {
			e.BlockedUntil = now.Add(cfg.BlockDuration)
			return false, cfg.BlockDuration
		}
	}

	e.BurstRequests = append(e.BurstRequests, now)

	if now.Sub(e.FirstRequest) > cfg.WindowDuration {
		e.Count = 1
		e.FirstRequest = now
		e.BlockedUntil = time.Time{}
		e.BurstRequests = []time.Time{now}
	} else {
		e.Count++
	}

	if e.Count > cfg.MaxRequests {
		e.BlockedUntil = now.Add(cfg.BlockDuration)
		return false, cfg.BlockDuration
	}

	return true, 0
}
