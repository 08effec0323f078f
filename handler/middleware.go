package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"teleconsult/config"
	"teleconsult/entity"
	"teleconsult/pkg/apierr"
	"teleconsult/pkg/logger"
	"teleconsult/repository"

	"github.com/labstack/echo/v4"
)

// AccessSessionContextKey is where the gate middleware stores the verified
// access session for downstream handlers.
const AccessSessionContextKey = "consultation_session"

// accessErrorBody mirrors the controller error envelope so gated and
// ungated failures look identical to clients.
type accessErrorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func rejectAccess(c echo.Context, err *apierr.Error) error {
	return c.JSON(err.Status, accessErrorBody{
		Success: false,
		Error:   err.Code,
		Message: err.Message,
	})
}

// extractAccessToken reads the consultation token from X-Consultation-Token
// or, failing that, a Bearer Authorization header.
func extractAccessToken(c echo.Context) string {
	if token := strings.TrimSpace(c.Request().Header.Get("X-Consultation-Token")); token != "" {
		return token
	}

	authHeader := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}

// ConsultationAccessMiddleware gates decrypt endpoints behind a verified
// consultation access token. A token minted for a link is bound to that
// link's hash: the caller must present the same hash in X-Consultation-Link,
// so a token from one consultation link cannot unlock another.
func ConsultationAccessMiddleware(store repository.AccessSessionStore, cfg *config.Config, logger *logger.Logger) echo.MiddlewareFunc {
	return consultationAccessMiddleware(store, cfg, logger, time.Now)
}

func consultationAccessMiddleware(store repository.AccessSessionStore, cfg *config.Config, logger *logger.Logger, now func() time.Time) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Access.Enabled {
				return next(c)
			}

			token := extractAccessToken(c)
			if token == "" {
				logger.Warnw("Consultation token missing", "path", c.Request().URL.Path, "remote_addr", c.RealIP())
				return rejectAccess(c, apierr.ErrTokenRequired)
			}

			session, err := store.Get(token)
			if err != nil {
				logger.Errorw("Access session lookup failed", "error", err)
				return rejectAccess(c, apierr.ErrTokenInvalid)
			}
			if session == nil {
				logger.Warnw("Unknown consultation token", "path", c.Request().URL.Path, "remote_addr", c.RealIP())
				return rejectAccess(c, apierr.ErrTokenInvalid)
			}

			if !session.ExpiresAt.After(now()) {
				if err := store.Delete(token); err != nil {
					logger.Errorw("Failed to delete expired access session", "error", err)
				}
				return rejectAccess(c, apierr.ErrTokenExpired)
			}

			if session.LinkHash != "" {
				linkHash := strings.TrimSpace(c.Request().Header.Get("X-Consultation-Link"))
				if linkHash != session.LinkHash {
					logger.Warnw("Consultation link mismatch",
						"appointment", session.AppointmentNumber,
						"remote_addr", c.RealIP(),
					)
					return rejectAccess(c, apierr.ErrLinkMismatch)
				}
			}

			c.Set(AccessSessionContextKey, session)
			return next(c)
		}
	}
}

// SessionFromContext returns the access session stored by the gate
// middleware, or nil on ungated routes.
func SessionFromContext(c echo.Context) *entity.AccessSession {
	session, _ := c.Get(AccessSessionContextKey).(*entity.AccessSession)
	return session
}

// DecryptRateLimitMiddleware applies the per-client decrypt rate limit.
// Rejections carry a Retry-After header in whole seconds.
func DecryptRateLimitMiddleware(repo repository.RateLimitRepository, logger *logger.Logger) echo.MiddlewareFunc {
	return decryptRateLimitMiddleware(repo, logger, time.Now)
}

func decryptRateLimitMiddleware(repo repository.RateLimitRepository, logger *logger.Logger, now func() time.Time) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			allowed, retryAfter, err := repo.Allow(c.RealIP(), now())
			if err != nil {
				// The limiter failing must not take decryption down with it.
				logger.Errorw("Rate limiter unavailable, allowing request", "error", err)
				return next(c)
			}

			if !allowed {
				seconds := int(retryAfter / time.Second)
				if seconds < 1 {
					seconds = 1
				}
				c.Response().Header().Set("Retry-After", fmt.Sprintf("%d", seconds))

				logger.Warnw("Decrypt rate limit exceeded",
					"remote_addr", c.RealIP(),
					"retry_after_seconds", seconds,
				)
				return rejectAccess(c, apierr.ErrRateLimited)
			}

			return next(c)
		}
	}
}

// CORSMiddleware creates a CORS middleware
func CORSMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set("Access-Control-Allow-Origin", "*")
			c.Response().Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Response().Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, X-Consultation-Token, X-Consultation-Link")

			if c.Request().Method == "OPTIONS" {
				return c.NoContent(http.StatusNoContent)
			}

			return next(c)
		}
	}
}

// SecurityHeadersMiddleware sets response headers for endpoints that handle
// decrypted patient data.
func SecurityHeadersMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Cache-Control", "no-store")
			return next(c)
		}
	}
}

// RequestLoggerMiddleware creates a request logging middleware
func RequestLoggerMiddleware(logger *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			logger.Infow("HTTP Request",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"remote_addr", c.RealIP(),
				"duration_ms", time.Since(start).Milliseconds(),
			)

			return err
		}
	}
}
