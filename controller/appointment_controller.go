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

// AppointmentController persists appointments and call telemetry for MIS
// reporting. Every handler degrades to 503 when the database is not
// configured so the access flow keeps working without one.
type AppointmentController struct {
	appointmentService service.AppointmentService
	validator          *validator.Validator
	logger             *logger.Logger
	dev                bool
}

// NewAppointmentController creates a new appointment controller instance.
// appointmentService may be nil when no database is configured.
func NewAppointmentController(appointmentService service.AppointmentService, v *validator.Validator, cfg *config.Config, log *logger.Logger) *AppointmentController {
	return &AppointmentController{
		appointmentService: appointmentService,
		validator:          v,
		logger:             log,
		dev:                cfg.Application.Environment == "development",
	}
}

func (c *AppointmentController) unavailable(ctx echo.Context) error {
	return respondError(ctx, c.logger, c.dev,
		apierr.New("database_unavailable", http.StatusServiceUnavailable, "Appointment storage is not configured on the server"))
}

// StoreAppointment upserts an appointment record
// @Summary Store an appointment
// @Description Create or update the appointment mirrored from the consultation link
// @Tags Appointment
// @Accept json
// @Produce json
// @Param request body entity.StoreAppointmentRequest true "Appointment"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /appointments [post]
func (c *AppointmentController) StoreAppointment(ctx echo.Context) error {
	if c.appointmentService == nil {
		return c.unavailable(ctx)
	}

	var req entity.StoreAppointmentRequest
	if err := ctx.Bind(&req); err != nil {
		return respondError(ctx, c.logger, c.dev, apierr.ErrInvalidPayload.WithInternal(err))
	}
	if err := c.validator.ValidateStruct(&req); err != nil {
		return respondError(ctx, c.logger, c.dev,
			apierr.New("invalid_payload", http.StatusBadRequest, "app_no, username and userid are required").WithInternal(err))
	}

	id, message, err := c.appointmentService.StoreAppointment(&req)
	if err != nil {
		return respondError(ctx, c.logger, c.dev,
			apierr.New("storage_failed", http.StatusInternalServerError, "Failed to store appointment").WithInternal(err))
	}

	return ctx.JSON(http.StatusOK, map[string]interface{}{
		"success":        true,
		"appointment_id": id,
		"message":        message,
	})
}

// GetAppointment fetches a stored appointment by appointment number
// @Summary Get an appointment
// @Description Fetch a stored appointment by appointment number
// @Tags Appointment
// @Produce json
// @Param app_no path string true "Appointment Number"
// @Success 200 {object} entity.Appointment
// @Failure 404 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /appointments/{app_no} [get]
func (c *AppointmentController) GetAppointment(ctx echo.Context) error {
	if c.appointmentService == nil {
		return c.unavailable(ctx)
	}

	appointment, err := c.appointmentService.GetAppointment(ctx.Param("app_no"))
	if err != nil {
		return respondError(ctx, c.logger, c.dev,
			apierr.New("storage_failed", http.StatusInternalServerError, "Failed to fetch appointment").WithInternal(err))
	}
	if appointment == nil {
		return respondError(ctx, c.logger, c.dev,
			apierr.New("appointment_not_found", http.StatusNotFound, "Appointment not found"))
	}

	return ctx.JSON(http.StatusOK, map[string]interface{}{
		"success":     true,
		"appointment": appointment,
	})
}

// StoreVideoCallEvent records a call event against an appointment
// @Summary Record a video call event
// @Description Store one tracked event from a video call against its appointment
// @Tags Appointment
// @Accept json
// @Produce json
// @Param request body entity.StoreVideoCallEventRequest true "Call Event"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /video-call-events [post]
func (c *AppointmentController) StoreVideoCallEvent(ctx echo.Context) error {
	if c.appointmentService == nil {
		return c.unavailable(ctx)
	}

	var req entity.StoreVideoCallEventRequest
	if err := ctx.Bind(&req); err != nil {
		return respondError(ctx, c.logger, c.dev, apierr.ErrInvalidPayload.WithInternal(err))
	}
	if err := c.validator.ValidateStruct(&req); err != nil {
		return respondError(ctx, c.logger, c.dev,
			apierr.New("invalid_payload", http.StatusBadRequest, "appointment_id, event_type, roomID, user_id and username are required").WithInternal(err))
	}

	appointmentID, err := c.appointmentService.StoreVideoCallEvent(&req)
	if err != nil {
		return respondError(ctx, c.logger, c.dev,
			apierr.New("storage_failed", http.StatusInternalServerError, "Failed to store call event").WithInternal(err))
	}

	return ctx.JSON(http.StatusOK, map[string]interface{}{
		"success":        true,
		"appointment_id": appointmentID,
	})
}

// StartCallSession begins a call session for an appointment
// @Summary Start a call session
// @Description Open a call session, closing any previous one still marked active
// @Tags Appointment
// @Accept json
// @Produce json
// @Param request body entity.StartCallSessionRequest true "Session Start"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /call-sessions/start [post]
func (c *AppointmentController) StartCallSession(ctx echo.Context) error {
	if c.appointmentService == nil {
		return c.unavailable(ctx)
	}

	var req entity.StartCallSessionRequest
	if err := ctx.Bind(&req); err != nil {
		return respondError(ctx, c.logger, c.dev, apierr.ErrInvalidPayload.WithInternal(err))
	}
	if err := c.validator.ValidateStruct(&req); err != nil {
		return respondError(ctx, c.logger, c.dev,
			apierr.New("invalid_payload", http.StatusBadRequest, "appointment_id, roomID, user_id and username are required").WithInternal(err))
	}

	appointmentID, err := c.appointmentService.StartCallSession(&req)
	if err != nil {
		return respondError(ctx, c.logger, c.dev,
			apierr.New("storage_failed", http.StatusInternalServerError, "Failed to start call session").WithInternal(err))
	}

	return ctx.JSON(http.StatusOK, map[string]interface{}{
		"success":        true,
		"appointment_id": appointmentID,
	})
}

// EndCallSession closes the active call session for an appointment
// @Summary End a call session
// @Description Close the active call session and record its duration
// @Tags Appointment
// @Accept json
// @Produce json
// @Param request body entity.EndCallSessionRequest true "Session End"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /call-sessions/end [post]
func (c *AppointmentController) EndCallSession(ctx echo.Context) error {
	if c.appointmentService == nil {
		return c.unavailable(ctx)
	}

	var req entity.EndCallSessionRequest
	if err := ctx.Bind(&req); err != nil {
		return respondError(ctx, c.logger, c.dev, apierr.ErrInvalidPayload.WithInternal(err))
	}
	if err := c.validator.ValidateStruct(&req); err != nil {
		return respondError(ctx, c.logger, c.dev,
			apierr.New("invalid_payload", http.StatusBadRequest, "appointment_id is required").WithInternal(err))
	}

	appointmentID, err := c.appointmentService.EndCallSession(&req)
	if err != nil {
		return respondError(ctx, c.logger, c.dev,
			apierr.New("storage_failed", http.StatusInternalServerError, "Failed to end call session").WithInternal(err))
	}

	return ctx.JSON(http.StatusOK, map[string]interface{}{
		"success":        true,
		"appointment_id": appointmentID,
	})
}
