package handler

import (
	"time"

	"noit-gateway/internal/models"
	"noit-gateway/internal/upstream"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type HealthHandler struct {
	upstream *upstream.Client
	logger   *zap.Logger
}

func NewHealthHandler(up *upstream.Client, log *zap.Logger) *HealthHandler {
	return &HealthHandler{
		upstream: up,
		logger:   log,
	}
}

// Health reports gateway liveness and the upstream circuit state.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(models.HealthCheckResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Upstream:  h.upstream.State(),
	})
}
