package service

import (
	"fmt"
	"time"

	"teleconsult/config"
	"teleconsult/entity"
	"teleconsult/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
)

// RoomTokenService mints video-room join tokens server-side so the room
// secret never reaches the browser.
type RoomTokenService interface {
	GenerateToken(roomID, userID, userName string) (*entity.RoomTokenResponse, error)
	Configured() bool
}

type roomTokenService struct {
	cfg    config.RoomToken
	logger *logger.Logger
}

// RoomClaims are the signed claims inside a room token
type RoomClaims struct {
	RoomID   string `json:"room_id"`
	UserID   string `json:"user_id"`
	UserName string `json:"user_name,omitempty"`
	jwt.RegisteredClaims
}

// NewRoomTokenService creates a new room token service instance
func NewRoomTokenService(cfg config.RoomToken, log *logger.Logger) RoomTokenService {
	return &roomTokenService{
		cfg:    cfg,
		logger: log,
	}
}

func (s *roomTokenService) Configured() bool {
	return s.cfg.AppID != "" && s.cfg.Secret != ""
}

// GenerateToken signs a room-scoped HS256 token with the configured TTL.
func (s *roomTokenService) GenerateToken(roomID, userID, userName string) (*entity.RoomTokenResponse, error) {
	if !s.Configured() {
		return nil, fmt.Errorf("room token credentials are not configured")
	}
	if len(s.cfg.Secret) != 32 {
		return nil, fmt.Errorf("room server secret must be exactly 32 bytes")
	}

	now := time.Now()
	claims := RoomClaims{
		RoomID:   roomID,
		UserID:   userID,
		UserName: userName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "teleconsult-portal",
			Subject:   fmt.Sprintf("room:%s", roomID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		s.logger.Errorw("Failed to sign room token", "room_id", roomID, "error", err)
		return nil, fmt.Errorf("failed to generate room token: %w", err)
	}

	s.logger.Infow("Room token generated", "room_id", roomID, "user_id", userID)

	return &entity.RoomTokenResponse{
		Success: true,
		Token:   signed,
		AppID:   s.cfg.AppID,
	}, nil
}
