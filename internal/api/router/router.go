package router

import (
	"noit-gateway/internal/api/handler"
	"noit-gateway/internal/api/middleware"
	"noit-gateway/internal/auth"
	"noit-gateway/internal/config"
	"noit-gateway/internal/gateway"
	"noit-gateway/internal/upstream"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SetupRouter wires middleware and every route onto the app.
func SetupRouter(app *fiber.App, cfg *config.Config, log *zap.Logger, up *upstream.Client) {
	setupCoreMiddleware(app, cfg, log)

	health := handler.NewHealthHandler(up, log)
	app.Get("/health", health.Health)

	authHandler := handler.NewAuthHandler(cfg, up, log)
	app.Post("/api/auth/login", authHandler.Login)
	app.Post("/api/auth/logout", authHandler.Logout)

	g := gateway.New(up, auth.NewTokenInspector(log), log)
	for _, ep := range gateway.Endpoints() {
		app.Add(ep.Method, ep.Route, g.Handler(ep))
	}
}

func setupCoreMiddleware(app *fiber.App, cfg *config.Config, log *zap.Logger) {
	app.Use(middleware.Recover(log))
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger(log))
	app.Use(middleware.CORS(cfg))

	if cfg.RateLimit.Enabled {
		app.Use(middleware.RateLimit(cfg))
	}

	app.Use(middleware.Session())
}
