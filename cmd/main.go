package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"teleconsult/config"
	"teleconsult/controller"
	_ "teleconsult/docs" // Import for swagger
	"teleconsult/handler"
	"teleconsult/migrations"
	"teleconsult/pkg/logger"
	"teleconsult/repository"
	"teleconsult/service"
	"teleconsult/validator"

	"github.com/redis/go-redis/v9"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	_ "github.com/lib/pq"
)

// @title Teleconsultation Access Service API
// @version 1.0
// @description OTP-gated access control and link decryption for teleconsultation joins
// @contact.name API Support
// @contact.email support@example.com
// @host localhost:3001
// @BasePath /api
// @schemes http https
// @securityDefinitions.apiKey ConsultationToken
// @in header
// @name X-Consultation-Token
// @description Consultation access token minted by /consultation/verify-otp
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(cfg.Logger.Level, cfg.Logger.Mode)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Infow("Starting Teleconsultation Access Service",
		"version", "1.0.0",
		"port", cfg.HTTPServer.Port,
		"log_level", cfg.Logger.Level,
		"log_mode", cfg.Logger.Mode,
		"access_gate", cfg.Access.Enabled,
	)

	// Session stores and rate limiter default to in-memory; Redis takes over
	// when enabled so multiple instances share state
	var (
		otpStore      repository.OTPSessionStore
		accessStore   repository.AccessSessionStore
		rateLimitRepo repository.RateLimitRepository
	)

	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalw("Failed to connect to Redis", "error", err)
		}

		log.Infow("Redis connected successfully", "host", cfg.Redis.Host, "port", cfg.Redis.Port)

		otpStore = repository.NewRedisOTPSessionStore(redisClient, log)
		accessStore = repository.NewRedisAccessSessionStore(redisClient, log)
		rateLimitRepo = repository.NewRedisRateLimitRepository(redisClient, cfg.RateLimit, log)
	} else {
		otpStore = repository.NewMemoryOTPSessionStore()
		accessStore = repository.NewMemoryAccessSessionStore()
		rateLimitRepo = repository.NewMemoryRateLimitRepository(cfg.RateLimit)
	}

	// Appointment persistence is optional; the access flow works without it
	var appointmentService service.AppointmentService
	if cfg.Database.Enabled {
		db, err := connectDB(cfg)
		if err != nil {
			log.Fatalw("Failed to connect to database", "error", err)
		}
		defer db.Close()

		log.Infow("Database connected successfully",
			"host", cfg.Database.Host,
			"port", cfg.Database.Port,
			"database", cfg.Database.Name,
		)

		if err := migrations.RunMigrations(db.DB, "./migrations"); err != nil {
			log.Fatalw("Failed to run database migrations", "error", err)
		}

		log.Infow("Database migrations completed successfully")

		appointmentService = service.NewAppointmentService(repository.NewAppointmentRepository(db), log)
	} else {
		log.Infow("Database disabled, appointment endpoints will report unavailable")
	}

	// Initialize validator
	v := validator.New()

	// Initialize services
	crmService := service.NewCRMService(cfg.CRM, log)
	smsService := service.NewSMSService(cfg.SMS, log)
	otpService := service.NewOTPService(otpStore, accessStore, crmService, smsService, cfg, log)
	decryptService := service.NewDecryptService(cfg.Crypto, log)
	roomTokenService := service.NewRoomTokenService(cfg.RoomToken, log)

	// Initialize controllers
	consultationController := controller.NewConsultationController(otpService, v, cfg, log)
	decryptController := controller.NewDecryptController(decryptService, cfg, log)
	roomTokenController := controller.NewRoomTokenController(roomTokenService, v, cfg, log)
	appointmentController := controller.NewAppointmentController(appointmentService, v, cfg, log)
	healthController := controller.NewHealthController()

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true

	// Register routes
	handler.RegisterRoutes(e,
		consultationController,
		decryptController,
		roomTokenController,
		appointmentController,
		healthController,
		accessStore,
		rateLimitRepo,
		cfg,
		log,
	)

	// Start cleanup routine in background
	go startCleanupRoutine(otpService, log)

	// Start server in a goroutine
	serverAddr := fmt.Sprintf(":%d", cfg.HTTPServer.Port)
	go func() {
		log.Infow("Starting HTTP server", "address", serverAddr)
		if err := e.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalw("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Infow("Shutting down server gracefully...")

	// Create a deadline for graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Application.GracefulShutdownTimeout)
	defer shutdownCancel()

	// Attempt graceful shutdown
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Failed to shutdown server gracefully", "error", err)
		os.Exit(1)
	}

	log.Infow("Server shutdown completed successfully")
}

func connectDB(cfg *config.Config) (*sqlx.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)

	var db *sqlx.DB
	var err error

	// Retry connection up to 30 times with 1 second delay
	for i := 0; i < 30; i++ {
		db, err = sqlx.Connect("postgres", connStr)
		if err == nil {
			if err = db.Ping(); err == nil {
				break
			}
			db.Close()
		}

		if i == 0 {
			fmt.Printf("Waiting for database to be ready...\n")
		}
		fmt.Printf("Database connection attempt %d/30 failed: %v\n", i+1, err)
		time.Sleep(1 * time.Second)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after 30 attempts: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

// startCleanupRoutine periodically evicts expired OTP and access sessions
func startCleanupRoutine(otpService service.OTPService, logger *logger.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		if err := otpService.SweepExpired(); err != nil {
			logger.Errorw("Failed to sweep expired sessions", "error", err)
		}
	}
}
