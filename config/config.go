package config

import (
	"os"
	"strconv"
	"time"
)

type Application struct {
	Environment             string // development or production
	GracefulShutdownTimeout time.Duration
}

type HTTPServer struct {
	Port int
}

type Logger struct {
	Level string
	Mode  string // development or production
}

type Swagger struct {
	Enabled bool
}

type Crypto struct {
	DecryptionKey string
}

type CRM struct {
	TokenURL       string
	VerifyURL      string
	Username       string
	Password       string
	GrantType      string
	RequestTimeout time.Duration
}

type SMS struct {
	URL             string
	CustomerID      string
	User            string
	Password        string
	SourceAddress   string
	TemplateID      string
	EntityID        string
	MessageType     string
	MessageTemplate string
	Timeout         time.Duration
}

type OTP struct {
	Length         int
	TTL            time.Duration
	ResendCooldown time.Duration
	MaxAttempts    int
}

type Access struct {
	Enabled  bool
	TokenTTL time.Duration
}

type RateLimit struct {
	MaxRequests    int
	WindowDuration time.Duration
	BlockDuration  time.Duration
	BurstAllowance int
	BurstWindow    time.Duration
}

type Redis struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type Database struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RoomToken struct {
	AppID  string
	Secret string
	TTL    time.Duration
}

type Config struct {
	Application Application
	HTTPServer  HTTPServer
	Logger      Logger
	Swagger     Swagger
	Crypto      Crypto
	CRM         CRM
	SMS         SMS
	OTP         OTP
	Access      Access
	RateLimit   RateLimit
	Redis       Redis
	Database    Database
	RoomToken   RoomToken
}

// Load reads configuration from the environment. Defaults are safe:
// short TTLs, small attempt counts, access gate enabled.
func Load() (*Config, error) {
	cfg := &Config{
		Application: Application{
			Environment:             getEnvWithDefault("APP_ENV", "production"),
			GracefulShutdownTimeout: parseDurationWithDefault("APPLICATION_GRACEFUL_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		HTTPServer: HTTPServer{
			Port: parseIntWithDefault("HTTP_SERVER_PORT", 3001),
		},
		Logger: Logger{
			Level: getEnvWithDefault("LOGGER_LEVEL", "info"),
			Mode:  getEnvWithDefault("LOGGER_MODE", "production"),
		},
		Swagger: Swagger{
			Enabled: getEnvBoolWithDefault("SWAGGER_ENABLED", true),
		},
		Crypto: Crypto{
			DecryptionKey: getEnvWithDefault("DECRYPTION_KEY", ""),
		},
		CRM: CRM{
			TokenURL:       getEnvWithDefault("CRM_TOKEN_URL", ""),
			VerifyURL:      getEnvWithDefault("CRM_TELE_MOBILE_URL", ""),
			Username:       getEnvWithDefault("CRM_USERNAME", ""),
			Password:       getEnvWithDefault("CRM_PASSWORD", ""),
			GrantType:      getEnvWithDefault("CRM_GRANT_TYPE", "password"),
			RequestTimeout: parseDurationWithDefault("CRM_REQUEST_TIMEOUT", 7*time.Second),
		},
		SMS: SMS{
			URL:             getEnvWithDefault("OTP_SMS_URL", ""),
			CustomerID:      getEnvWithDefault("OTP_SMS_CUSTOMER_ID", ""),
			User:            getEnvWithDefault("OTP_SMS_USER", ""),
			Password:        getEnvWithDefault("OTP_SMS_PASSWORD", ""),
			SourceAddress:   getEnvWithDefault("OTP_SMS_SOURCE_ADDRESS", "KAUVRY"),
			TemplateID:      getEnvWithDefault("OTP_SMS_TEMPLATE_ID", ""),
			EntityID:        getEnvWithDefault("OTP_SMS_ENTITY_ID", ""),
			MessageType:     getEnvWithDefault("OTP_SMS_MESSAGE_TYPE", "SERVICE_IMPLICIT"),
			MessageTemplate: getEnvWithDefault("OTP_SMS_MESSAGE", "Welcome! Use OTP {#var#} to verify your identity and join your Teleconsultation video session.\n\nThis code is confidential and valid for a short time only.\n\nkauvery hospital"),
			Timeout:         parseDurationWithDefault("OTP_SMS_TIMEOUT", 30*time.Second),
		},
		OTP: OTP{
			Length:         parseIntWithDefault("CONSULTATION_OTP_LENGTH", 6),
			TTL:            parseDurationWithDefault("CONSULTATION_OTP_TTL", 5*time.Minute),
			ResendCooldown: parseDurationWithDefault("CONSULTATION_OTP_RESEND_COOLDOWN", 30*time.Second),
			MaxAttempts:    parseIntWithDefault("CONSULTATION_OTP_MAX_ATTEMPTS", 5),
		},
		Access: Access{
			Enabled:  getEnvBoolWithDefault("ENABLE_CONSULTATION_ACCESS", true),
			TokenTTL: parseDurationWithDefault("CONSULTATION_ACCESS_TOKEN_TTL", 15*time.Minute),
		},
		RateLimit: RateLimit{
			MaxRequests:    parseIntWithDefault("DECRYPT_RATE_LIMIT_MAX_REQUESTS", 20),
			WindowDuration: parseDurationWithDefault("DECRYPT_RATE_LIMIT_WINDOW", 15*time.Minute),
			BlockDuration:  parseDurationWithDefault("DECRYPT_RATE_LIMIT_BLOCK_DURATION", 30*time.Minute),
			BurstAllowance: parseIntWithDefault("DECRYPT_RATE_LIMIT_BURST_ALLOWANCE", 10),
			BurstWindow:    parseDurationWithDefault("DECRYPT_RATE_LIMIT_BURST_WINDOW", time.Minute),
		},
		Redis: Redis{
			Enabled:  getEnvBoolWithDefault("REDIS_ENABLED", false),
			Host:     getEnvWithDefault("REDIS_HOST", "redis"),
			Port:     parseIntWithDefault("REDIS_PORT", 6379),
			Password: getEnvWithDefault("REDIS_PASSWORD", ""),
			DB:       parseIntWithDefault("REDIS_DB", 0),
		},
		Database: Database{
			Enabled:  getEnvBoolWithDefault("DATABASE_ENABLED", false),
			Host:     getEnvWithDefault("DATABASE_HOST", "db"),
			Port:     parseIntWithDefault("DATABASE_PORT", 5432),
			User:     getEnvWithDefault("DATABASE_USER", "teleconsult"),
			Password: getEnvWithDefault("DATABASE_PASSWORD", "teleconsult"),
			Name:     getEnvWithDefault("DATABASE_NAME", "teleconsult"),
			SSLMode:  getEnvWithDefault("DATABASE_SSL_MODE", "disable"),
		},
		RoomToken: RoomToken{
			AppID:  getEnvWithDefault("ROOM_APP_ID", ""),
			Secret: getEnvWithDefault("ROOM_SERVER_SECRET", ""),
			TTL:    parseDurationWithDefault("ROOM_TOKEN_TTL", time.Hour),
		},
	}

	// Legacy variable kept from the original deployment
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.HTTPServer.Port = p
		}
	}

	return cfg, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func parseDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
