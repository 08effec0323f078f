package service

import (
	"testing"
	"time"

	"teleconsult/config"
	"teleconsult/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRoomSecret = "0123456789abcdef0123456789abcdef"

func TestRoomTokenService_Configured(t *testing.T) {
	svc := NewRoomTokenService(config.RoomToken{AppID: "app-1", Secret: testRoomSecret}, logger.NewNop())
	assert.True(t, svc.Configured())

	svc = NewRoomTokenService(config.RoomToken{}, logger.NewNop())
	assert.False(t, svc.Configured())

	svc = NewRoomTokenService(config.RoomToken{AppID: "app-1"}, logger.NewNop())
	assert.False(t, svc.Configured())
}

func TestRoomTokenService_GenerateToken(t *testing.T) {
	svc := NewRoomTokenService(config.RoomToken{
		AppID:  "app-1",
		Secret: testRoomSecret,
		TTL:    time.Hour,
	}, logger.NewNop())

	resp, err := svc.GenerateToken("room-7", "user-3", "Jordan")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "app-1", resp.AppID)

	claims := &RoomClaims{}
	parsed, err := jwt.ParseWithClaims(resp.Token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(testRoomSecret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	assert.Equal(t, "room-7", claims.RoomID)
	assert.Equal(t, "user-3", claims.UserID)
	assert.Equal(t, "Jordan", claims.UserName)
	assert.Equal(t, "teleconsult-portal", claims.Issuer)
	assert.Equal(t, "room:room-7", claims.Subject)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestRoomTokenService_WrongSecretLength(t *testing.T) {
	svc := NewRoomTokenService(config.RoomToken{
		AppID:  "app-1",
		Secret: "too-short",
		TTL:    time.Hour,
	}, logger.NewNop())

	_, err := svc.GenerateToken("room-7", "user-3", "")
	assert.Error(t, err)
}

func TestRoomTokenService_NotConfigured(t *testing.T) {
	svc := NewRoomTokenService(config.RoomToken{}, logger.NewNop())

	_, err := svc.GenerateToken("room-7", "user-3", "")
	assert.Error(t, err)
}
