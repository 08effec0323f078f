package controller

import (
	"net/http"

	"teleconsult/config"
	"teleconsult/entity"
	"teleconsult/pkg/apierr"
	"teleconsult/pkg/logger"
	"teleconsult/service"
	"teleconsult/validator"

	"github.com/labstack/echo/v4"
)

// RoomTokenController issues video-room join tokens
type RoomTokenController struct {
	roomTokenService service.RoomTokenService
	validator        *validator.Validator
	logger           *logger.Logger
	dev              bool
}

// NewRoomTokenController creates a new room token controller instance
func NewRoomTokenController(roomTokenService service.RoomTokenService, v *validator.Validator, cfg *config.Config, log *logger.Logger) *RoomTokenController {
	return &RoomTokenController{
		roomTokenService: roomTokenService,
		validator:        v,
		logger:           log,
		dev:              cfg.Application.Environment == "development",
	}
}

// GenerateToken mints a room join token
// @Summary Generate a video-room token
// @Description Mint a signed room join token; the room secret never leaves the server
// @Tags Room
// @Accept json
// @Produce json
// @Param request body entity.RoomTokenRequest true "Room Token Request"
// @Success 200 {object} entity.RoomTokenResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /room-token [post]
func (c *RoomTokenController) GenerateToken(ctx echo.Context) error {
	if !c.roomTokenService.Configured() {
		return respondError(ctx, c.logger, c.dev,
			apierr.New("room_token_unavailable", http.StatusServiceUnavailable, "Room credentials are not configured on the server"))
	}

	var req entity.RoomTokenRequest
	if err := ctx.Bind(&req); err != nil {
		return respondError(ctx, c.logger, c.dev, apierr.ErrInvalidPayload.WithInternal(err))
	}
	if err := c.validator.ValidateStruct(&req); err != nil {
		return respondError(ctx, c.logger, c.dev,
			apierr.New("invalid_payload", http.StatusBadRequest, "roomID and userID are required").WithInternal(err))
	}

	response, err := c.roomTokenService.GenerateToken(req.RoomID, req.UserID, req.UserName)
	if err != nil {
		return respondError(ctx, c.logger, c.dev,
			apierr.New("room_token_failed", http.StatusInternalServerError, "Token generation failed").WithInternal(err))
	}

	return ctx.JSON(http.StatusOK, response)
}
