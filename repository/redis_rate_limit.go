package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"teleconsult/config"
	"teleconsult/entity"
	"teleconsult/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimitRepository shares the decrypt rate limiter across portal
// instances. State per client IP is a JSON blob whose TTL covers both the
// window and any active block.
type RedisRateLimitRepository struct {
	client *redis.Client
	ctx    context.Context
	cfg    config.RateLimit
	logger *logger.Logger
}

// NewRedisRateLimitRepository creates a Redis-backed rate limit repository
func NewRedisRateLimitRepository(client *redis.Client, cfg config.RateLimit, log *logger.Logger) *RedisRateLimitRepository {
	return &RedisRateLimitRepository{
		client: client,
		ctx:    context.Background(),
		cfg:    cfg,
		logger: log,
	}
}

func rateLimitKey(clientID string) string {
	return fmt.Sprintf("decrypt_rate_limit:%s", clientID)
}

func (r *RedisRateLimitRepository) Allow(clientID string, now time.Time) (bool, time.Duration, error) {
	key := rateLimitKey(clientID)

	var e entity.RateLimitEntry
	data, err := r.client.Get(r.ctx, key).Result()
	switch {
	case err == redis.Nil:
		e = entity.RateLimitEntry{
			Count:         1,
			FirstRequest:  now,
			BurstRequests: []time.Time{now},
		}
		if err := r.save(key, &e, now); err != nil {
			return false, 0, err
		}
		return true, 0, nil
	case err != nil:
		return false, 0, fmt.Errorf("failed to get rate limit entry: %w", err)
	}

	if err := json.Unmarshal([]byte(data), &e); err != nil {
		return false, 0, fmt.Errorf("failed to unmarshal rate limit entry: %w", err)
	}

	allowed, retryAfter := applyRateLimit(&e, r.cfg, now)
	if err := r.save(key, &e, now); err != nil {
		return false, 0, err
	}

	if !allowed {
		r.logger.Debugw("Decrypt rate limit hit",
			"client", clientID,
			"retry_after_seconds", int(retryAfter.Seconds()))
	}
	return allowed, retryAfter, nil
}

func (r *RedisRateLimitRepository) save(key string, e *entity.RateLimitEntry, now time.Time) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal rate limit entry: %w", err)
	}

	ttl := r.cfg.WindowDuration
	if !e.BlockedUntil.IsZero() && e.BlockedUntil.After(now) {
		if blockTTL := e.BlockedUntil.Sub(now); blockTTL > ttl {
			ttl = blockTTL
		}
	}
	if ttl < time.Minute {
		ttl = time.Minute
	}

	if err := r.client.Set(r.ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store rate limit entry: %w", err)
	}
	return nil
}

// Cleanup is a no-op for Redis: key TTLs already bound memory growth.
func (r *RedisRateLimitRepository) Cleanup(time.Time) error {
	return nil
}
