package middleware

import (
	"sync"

	"noit-gateway/internal/config"
	"noit-gateway/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// IPRateLimiter holds one token bucket per client IP.
type IPRateLimiter struct {
	ips map[string]*rate.Limiter
	mu  sync.Mutex
	r   rate.Limit
	b   int
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		ips: make(map[string]*rate.Limiter),
		r:   r,
		b:   b,
	}
}

func (i *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	limiter, exists := i.ips[ip]
	if !exists {
		limiter = rate.NewLimiter(i.r, i.b)
		i.ips[ip] = limiter
	}

	return limiter
}

// RateLimit rejects clients exceeding the per-IP budget with 429.
func RateLimit(cfg *config.Config) fiber.Handler {
	limiter := NewIPRateLimiter(
		rate.Limit(float64(cfg.RateLimit.RequestsPerMinute)/60.0),
		cfg.RateLimit.BurstSize,
	)

	return func(c *fiber.Ctx) error {
		if !limiter.getLimiter(c.IP()).Allow() {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorEnvelope{
				Error: "Demasiadas solicitudes, intenta más tarde",
			})
		}
		return c.Next()
	}
}
