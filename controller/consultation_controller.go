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

// ConsultationController handles the OTP-gated consultation access flow
type ConsultationController struct {
	otpService service.OTPService
	validator  *validator.Validator
	logger     *logger.Logger
	dev        bool
}

// NewConsultationController creates a new consultation controller instance
func NewConsultationController(otpService service.OTPService, v *validator.Validator, cfg *config.Config, log *logger.Logger) *ConsultationController {
	return &ConsultationController{
		otpService: otpService,
		validator:  v,
		logger:     log,
		dev:        cfg.Application.Environment == "development",
	}
}

// Precheck validates the mobile number against the appointment and sends an OTP
// @Summary Consultation precheck
// @Description Validate mobile number against the appointment behind the link and send an OTP
// @Tags Consultation
// @Accept json
// @Produce json
// @Param request body entity.PrecheckRequest true "Precheck Request"
// @Success 200 {object} entity.PrecheckResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 429 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /consultation/precheck [post]
func (c *ConsultationController) Precheck(ctx echo.Context) error {
	var req entity.PrecheckRequest

	if err := ctx.Bind(&req); err != nil {
		return respondError(ctx, c.logger, c.dev, apierr.ErrInvalidPayload.WithInternal(err))
	}

	c.logger.Infow("Precheck request received", "mobile", service.MaskMobile(req.Mobile))

	if len(req.Params) == 0 {
		return respondError(ctx, c.logger, c.dev, apierr.ErrInvalidPayload)
	}
	if err := c.validator.ValidateStruct(&req); err != nil {
		return respondError(ctx, c.logger, c.dev, apierr.ErrInvalidMobile.WithInternal(err))
	}

	response, err := c.otpService.Precheck(req.Mobile, req.Params)
	if err != nil {
		return respondError(ctx, c.logger, c.dev, err)
	}

	return ctx.JSON(http.StatusOK, response)
}

// VerifyOTP exchanges a submitted code for a consultation access token
// @Summary Verify consultation OTP
// @Description Verify the OTP and mint a short-lived consultation access token
// @Tags Consultation
// @Accept json
// @Produce json
// @Param request body entity.VerifyOTPRequest true "Verify OTP Request"
// @Success 200 {object} entity.VerifyOTPResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 429 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /consultation/verify-otp [post]
func (c *ConsultationController) VerifyOTP(ctx echo.Context) error {
	var req entity.VerifyOTPRequest

	if err := ctx.Bind(&req); err != nil {
		return respondError(ctx, c.logger, c.dev, apierr.ErrInvalidPayload.WithInternal(err))
	}

	if err := c.validator.ValidateStruct(&req); err != nil {
		return respondError(ctx, c.logger, c.dev, apierr.ErrInvalidPayload.WithInternal(err))
	}

	response, err := c.otpService.Verify(req.PrecheckID, req.OTP)
	if err != nil {
		return respondError(ctx, c.logger, c.dev, err)
	}

	return ctx.JSON(http.StatusOK, response)
}
