package repository

import (
	"fmt"
	"testing"
	"time"

	"teleconsult/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rateLimitTestConfig() config.RateLimit {
	return config.RateLimit{
		MaxRequests:    20,
		WindowDuration: 15 * time.Minute,
		BlockDuration:  30 * time.Minute,
		BurstAllowance: 10,
		BurstWindow:    time.Minute,
	}
}

func TestRateLimit_AllowsWithinWindow(t *testing.T) {
	repo := NewMemoryRateLimitRepository(rateLimitTestConfig())
	now := time.Now()

	// Spread requests out so the burst tracker never trips
	for i := 0; i < 20; i++ {
		allowed, _, err := repo.Allow("client-1", now.Add(time.Duration(i)*10*time.Second))
		require.NoError(t, err)
		assert.True(t, allowed, "request %d", i+1)
	}
}

func TestRateLimit_BlocksOverWindowLimit(t *testing.T) {
	repo := NewMemoryRateLimitRepository(rateLimitTestConfig())
	now := time.Now()

	for i := 0; i < 20; i++ {
		allowed, _, err := repo.Allow("client-1", now.Add(time.Duration(i)*10*time.Second))
		require.NoError(t, err)
		require.True(t, allowed)
	}

	allowed, retryAfter, err := repo.Allow("client-1", now.Add(210*time.Second))
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 30*time.Minute, retryAfter)
}

func TestRateLimit_BlockPersists(t *testing.T) {
	repo := NewMemoryRateLimitRepository(rateLimitTestConfig())
	now := time.Now()

	for i := 0; i < 21; i++ {
		repo.Allow("client-1", now.Add(time.Duration(i)*10*time.Second))
	}

	// Still blocked well after the triggering request
	allowed, retryAfter, err := repo.Allow("client-1", now.Add(10*time.Minute))
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Greater(t, retryAfter, time.Duration(0))
}

func TestRateLimit_BlockExpires(t *testing.T) {
	repo := NewMemoryRateLimitRepository(rateLimitTestConfig())
	now := time.Now()

	for i := 0; i < 21; i++ {
		repo.Allow("client-1", now.Add(time.Duration(i)*10*time.Second))
	}

	// Past the block and the window, the client starts fresh
	allowed, _, err := repo.Allow("client-1", now.Add(45*time.Minute))
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimit_BurstTripsBlock(t *testing.T) {
	repo := NewMemoryRateLimitRepository(rateLimitTestConfig())
	now := time.Now()

	// 11 requests landing within one second exceed the burst allowance
	var lastAllowed bool
	for i := 0; i < 12; i++ {
		allowed, _, err := repo.Allow("client-1", now.Add(time.Duration(i)*50*time.Millisecond))
		require.NoError(t, err)
		lastAllowed = allowed
	}
	assert.False(t, lastAllowed)
}

func TestRateLimit_ClientsAreIndependent(t *testing.T) {
	repo := NewMemoryRateLimitRepository(rateLimitTestConfig())
	now := time.Now()

	for i := 0; i < 21; i++ {
		repo.Allow("greedy", now.Add(time.Duration(i)*10*time.Second))
	}

	allowed, _, err := repo.Allow("polite", now.Add(210*time.Second))
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimit_Cleanup(t *testing.T) {
	repo := NewMemoryRateLimitRepository(rateLimitTestConfig())
	now := time.Now()

	for i := 0; i < 5; i++ {
		repo.Allow(fmt.Sprintf("client-%d", i), now.Add(-2*time.Hour))
	}

	require.NoError(t, repo.Cleanup(now.Add(-time.Hour)))

	// Cleaned clients start over with a fresh window
	allowed, _, err := repo.Allow("client-0", now)
	require.NoError(t, err)
	assert.True(t, allowed)
}
