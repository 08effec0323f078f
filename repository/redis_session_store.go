package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"teleconsult/entity"
	"teleconsult/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// RedisOTPSessionStore keeps OTP sessions in Redis so multiple portal
// instances can share one challenge table. Values are JSON with the key TTL
// pinned to the session expiry; a marker key per mobile hash backs the
// resend-cooldown lookup without a keyspace scan.
type RedisOTPSessionStore struct {
	client *redis.Client
	ctx    context.Context
	logger *logger.Logger
}

// NewRedisOTPSessionStore creates a Redis-backed OTP session store
func NewRedisOTPSessionStore(client *redis.Client, log *logger.Logger) *RedisOTPSessionStore {
	return &RedisOTPSessionStore{
		client: client,
		ctx:    context.Background(),
		logger: log,
	}
}

func otpSessionKey(precheckID string) string {
	return fmt.Sprintf("otp_session:%s", precheckID)
}

func otpMobileKey(mobileHash string) string {
	return fmt.Sprintf("otp_mobile:%s", mobileHash)
}

func (s *RedisOTPSessionStore) Get(precheckID string) (*entity.OTPSession, error) {
	data, err := s.client.Get(s.ctx, otpSessionKey(precheckID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get OTP session: %w", err)
	}

	var session entity.OTPSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal OTP session: %w", err)
	}
	return &session, nil
}

func (s *RedisOTPSessionStore) Put(precheckID string, session *entity.OTPSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal OTP session: %w", err)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}

	pipe := s.client.Pipeline()
	pipe.Set(s.ctx, otpSessionKey(precheckID), data, ttl)
	pipe.Set(s.ctx, otpMobileKey(session.MobileHash), session.CreatedAt.Format(time.RFC3339Nano), ttl)
	if _, err := pipe.Exec(s.ctx); err != nil {
		return fmt.Errorf("failed to store OTP session: %w", err)
	}

	s.logger.Debugw("OTP session stored", "precheck_id", precheckID, "ttl_seconds", int(ttl.Seconds()))
	return nil
}

func (s *RedisOTPSessionStore) Update(precheckID string, session *entity.OTPSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal OTP session: %w", err)
	}

	// Preserve the remaining TTL rather than resetting it
	ttl, err := s.client.TTL(s.ctx, otpSessionKey(precheckID)).Result()
	if err != nil || ttl <= 0 {
		ttl = time.Until(session.ExpiresAt)
		if ttl <= 0 {
			ttl = time.Second
		}
	}

	if err := s.client.Set(s.ctx, otpSessionKey(precheckID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to update OTP session: %w", err)
	}
	return nil
}

// Delete removes the session and its cooldown marker, so the mobile can
// request a fresh OTP immediately, same as the in-memory store. A marker
// already overwritten by a newer session is left alone.
func (s *RedisOTPSessionStore) Delete(precheckID string) error {
	session, err := s.Get(precheckID)
	if err != nil {
		return err
	}

	keys := []string{otpSessionKey(precheckID)}
	if session != nil {
		marker, err := s.client.Get(s.ctx, otpMobileKey(session.MobileHash)).Result()
		if err == nil && marker == session.CreatedAt.Format(time.RFC3339Nano) {
			keys = append(keys, otpMobileKey(session.MobileHash))
		}
	}

	if err := s.client.Del(s.ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete OTP session: %w", err)
	}
	return nil
}

func (s *RedisOTPSessionStore) FindRecentByMobileHash(mobileHash string, createdAfter time.Time) (bool, error) {
	data, err := s.client.Get(s.ctx, otpMobileKey(mobileHash)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check recent OTP session: %w", err)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, data)
	if err != nil {
		return false, nil
	}
	return createdAt.After(createdAfter), nil
}

// Sweep is a no-op for Redis: key TTLs already bound memory growth.
func (s *RedisOTPSessionStore) Sweep(time.Time) (int, error) {
	return 0, nil
}

// RedisAccessSessionStore keeps consultation access grants in Redis.
type RedisAccessSessionStore struct {
	client *redis.Client
	ctx    context.Context
	logger *logger.Logger
}

// NewRedisAccessSessionStore creates a Redis-backed access session store
func NewRedisAccessSessionStore(client *redis.Client, log *logger.Logger) *RedisAccessSessionStore {
	return &RedisAccessSessionStore{
		client: client,
		ctx:    context.Background(),
		logger: log,
	}
}

func accessSessionKey(token string) string {
	return fmt.Sprintf("consultation_access:%s", token)
}

func (s *RedisAccessSessionStore) Get(token string) (*entity.AccessSession, error) {
	data, err := s.client.Get(s.ctx, accessSessionKey(token)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get access session: %w", err)
	}

	var session entity.AccessSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal access session: %w", err)
	}
	return &session, nil
}

func (s *RedisAccessSessionStore) Put(token string, session *entity.AccessSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal access session: %w", err)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}

	if err := s.client.Set(s.ctx, accessSessionKey(token), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store access session: %w", err)
	}

	s.logger.Debugw("Access session stored", "appointment", session.AppointmentNumber, "ttl_seconds", int(ttl.Seconds()))
	return nil
}

func (s *RedisAccessSessionStore) Delete(token string) error {
	if err := s.client.Del(s.ctx, accessSessionKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete access session: %w", err)
	}
	return nil
}

// Sweep is a no-op for Redis: key TTLs already bound memory growth.
func (s *RedisAccessSessionStore) Sweep(time.Time) (int, error) {
	return 0, nil
}
