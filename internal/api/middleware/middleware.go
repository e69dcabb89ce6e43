package middleware

import (
	"strings"
	"time"

	"noit-gateway/internal/config"
	"noit-gateway/internal/models"
	"noit-gateway/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Locals keys shared with the gateway handlers.
const (
	SessionKey   = "session"
	RequestIDKey = "request_id"
)

// Recover converts panics into the uniform 500 envelope. Nothing may reach
// the platform's default error page.
func Recover(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered",
					zap.Any("error", r),
					zap.String("path", c.Path()),
				)
				err = c.Status(fiber.StatusInternalServerError).JSON(models.ErrorEnvelope{
					Error:     "Error interno del servidor",
					Timestamp: time.Now().UTC().Format(time.RFC3339),
				})
			}
		}()
		return c.Next()
	}
}

// RequestID tags every request with a fresh identifier, echoed back as
// X-Request-ID and attached to error envelopes.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := uuid.NewString()
		c.Locals(RequestIDKey, id)
		c.Set("X-Request-ID", id)
		return c.Next()
	}
}

// RequestLogger logs every inbound request.
func RequestLogger(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		started := time.Now()
		err := c.Next()
		log.Info("request handled",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("elapsed", time.Since(started)),
		)
		return err
	}
}

// Session extracts the cookie-held session once per request and stashes it
// for the handlers, so no handler re-parses the Cookie header.
func Session() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(SessionKey, session.Parse(c.Get(fiber.HeaderCookie)))
		return c.Next()
	}
}

// CORS answers preflights and sets the response headers from config. With
// no configured origins the inbound Origin is echoed, credentials included.
func CORS(cfg *config.Config) fiber.Handler {
	allowed := cfg.CORS.AllowedOrigins
	methods := strings.Join(cfg.CORS.AllowedMethods, ",")
	headers := strings.Join(cfg.CORS.AllowedHeaders, ",")

	return func(c *fiber.Ctx) error {
		origin := c.Get(fiber.HeaderOrigin)
		if origin != "" && originAllowed(origin, allowed) {
			c.Set(fiber.HeaderAccessControlAllowOrigin, origin)
			if cfg.CORS.AllowCredentials {
				c.Set(fiber.HeaderAccessControlAllowCredentials, "true")
			}
			c.Set(fiber.HeaderAccessControlAllowMethods, methods)
			c.Set(fiber.HeaderAccessControlAllowHeaders, headers)
		}

		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusOK)
		}
		return c.Next()
	}
}

func originAllowed(origin string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == origin || a == "*" {
			return true
		}
	}
	return false
}
