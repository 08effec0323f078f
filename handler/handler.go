package handler

import (
	"teleconsult/config"
	"teleconsult/controller"
	_ "teleconsult/docs" // Import for swagger docs
	"teleconsult/pkg/logger"
	"teleconsult/repository"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// RegisterRoutes registers all HTTP routes and middleware
func RegisterRoutes(
	e *echo.Echo,
	consultationController *controller.ConsultationController,
	decryptController *controller.DecryptController,
	roomTokenController *controller.RoomTokenController,
	appointmentController *controller.AppointmentController,
	healthController *controller.HealthController,
	accessStore repository.AccessSessionStore,
	rateLimitRepo repository.RateLimitRepository,
	cfg *config.Config,
	logger *logger.Logger,
) {
	// Add common middleware
	e.Use(middleware.Recover())
	e.Use(CORSMiddleware())
	e.Use(SecurityHeadersMiddleware())
	e.Use(RequestLoggerMiddleware(logger))

	// System endpoints
	e.GET("/health", healthController.HealthCheck)
	e.GET("/", healthController.ServiceInfo)

	// Swagger documentation
	if cfg.Swagger.Enabled {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
		e.GET("/docs/*", echoSwagger.WrapHandler)
	}

	api := e.Group("/api")

	// Consultation access flow (public)
	consultationGroup := api.Group("/consultation")
	consultationGroup.POST("/precheck", consultationController.Precheck)
	consultationGroup.POST("/verify-otp", consultationController.VerifyOTP)

	// Decrypt endpoints, gated behind a verified consultation token and
	// rate limited per client
	accessGate := ConsultationAccessMiddleware(accessStore, cfg, logger)
	rateLimit := DecryptRateLimitMiddleware(rateLimitRepo, logger)
	api.POST("/consultation/decrypt", decryptController.DecryptSingle, accessGate, rateLimit)
	api.POST("/consultation/decrypt/batch", decryptController.DecryptBatch, accessGate, rateLimit)

	// Legacy decrypt routes kept for older links; rate limited but not gated
	api.POST("/decrypt", decryptController.DecryptSingle, rateLimit)
	api.POST("/decrypt/batch", decryptController.DecryptBatch, rateLimit)

	// Video room token, minted only for callers holding a consultation token
	api.POST("/room-token", roomTokenController.GenerateToken, accessGate)

	// Appointment persistence and call telemetry
	api.POST("/appointments", appointmentController.StoreAppointment)
	api.GET("/appointments/:app_no", appointmentController.GetAppointment)
	api.POST("/video-call-events", appointmentController.StoreVideoCallEvent)
	api.POST("/call-sessions/start", appointmentController.StartCallSession)
	api.POST("/call-sessions/end", appointmentController.EndCallSession)
}
