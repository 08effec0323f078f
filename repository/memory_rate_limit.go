package repository

import (
	"sync"
	"time"

	"teleconsult/config"
	"teleconsult/entity"
)

// MemoryRateLimitRepository is the single-process decrypt rate limiter.
type MemoryRateLimitRepository struct {
	mu      sync.Mutex
	entries map[string]*entity.RateLimitEntry
	cfg     config.RateLimit
}

// NewMemoryRateLimitRepository creates an in-memory rate limit repository
func NewMemoryRateLimitRepository(cfg config.RateLimit) *MemoryRateLimitRepository {
	return &MemoryRateLimitRepository{
		entries: make(map[string]*entity.RateLimitEntry),
		cfg:     cfg,
	}
}

func (r *MemoryRateLimitRepository) Allow(clientID string, now time.Time) (bool, time.Duration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Opportunistic eviction once the table grows beyond ~1000 clients
	if len(r.entries) > 1000 {
		for id, e := range r.entries {
			if now.Sub(e.FirstRequest) > time.Hour {
				delete(r.entries, id)
			}
		}
	}

	e, ok := r.entries[clientID]
	if !ok {
		e = &entity.RateLimitEntry{
			Count:         1,
			FirstRequest:  now,
			BurstRequests: []time.Time{now},
		}
		r.entries[clientID] = e
		return true, 0, nil
	}

	allowed, retryAfter := applyRateLimit(e, r.cfg, now)
	return allowed, retryAfter, nil
}

func (r *MemoryRateLimitRepository) Cleanup(olderThan time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, e := range r.entries {
		if e.FirstRequest.Before(olderThan) && (e.BlockedUntil.IsZero() || e.BlockedUntil.Before(olderThan)) {
			delete(r.entries, id)
		}
	}
	return nil
}
