package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"noit-gateway/internal/config"
	"noit-gateway/internal/gateway"
	"noit-gateway/internal/models"
	"noit-gateway/internal/upstream"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHandler owns the two routes that write the session cookie. The rest
// of the gateway only ever reads it.
type AuthHandler struct {
	cfg      *config.Config
	upstream *upstream.Client
	logger   *zap.Logger
}

func NewAuthHandler(cfg *config.Config, up *upstream.Client, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		cfg:      cfg,
		upstream: up,
		logger:   log,
	}
}

// Login forwards the credentials to the upstream login endpoint and, on
// success, sets the HTTP-only token cookie from the upstream-issued token.
// Credentials are never logged or stored.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var creds models.LoginRequest
	if err := json.Unmarshal(c.Body(), &creds); err != nil {
		return relayError(c, gateway.BadRequest("Cuerpo de la solicitud inválido: se esperaba JSON"))
	}
	if creds.Email == "" {
		return relayError(c, gateway.MissingParam("El correo es requerido", "email", `{"email": "<valor>"}`))
	}
	if creds.Password == "" {
		return relayError(c, gateway.MissingParam("La contraseña es requerida", "password", `{"password": "<valor>"}`))
	}

	resp, err := h.upstream.Do(c.UserContext(), upstream.Request{
		Method: http.MethodPost,
		Path:   "/api/v1/auth/login",
		Body:   c.Body(),
	})
	if err != nil {
		return relayError(c, gateway.Unavailable())
	}

	if resp.Status == http.StatusUnauthorized {
		return relayError(c, &gateway.Error{
			Status:   http.StatusUnauthorized,
			Envelope: models.ErrorEnvelope{Error: "Credenciales inválidas"},
		})
	}
	if resp.Status < 200 || resp.Status >= 300 {
		return relayError(c, gateway.FromUpstreamStatus("la sesión", "", resp.Status, resp.Body))
	}

	var doc map[string]any
	if err := json.Unmarshal(resp.Body, &doc); err != nil {
		return relayError(c, gateway.InvalidShape("login response was not valid JSON"))
	}

	token := tokenFrom(doc)
	if token == "" {
		return relayError(c, gateway.InvalidShape("login response carried no token"))
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.Session.CookieName,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.cfg.Session.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	h.logger.Info("session established")

	out := fiber.Map{"success": true}
	if user, ok := doc["user"]; ok {
		out["user"] = user
	}
	return c.Status(fiber.StatusOK).JSON(out)
}

// Logout expires the cookie locally; the upstream session is left to its
// own expiry.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.Session.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.cfg.Session.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

func tokenFrom(doc map[string]any) string {
	for _, key := range []string{"access_token", "token"} {
		if s, ok := doc[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func relayError(c *fiber.Ctx, gerr *gateway.Error) error {
	return c.Status(gerr.Status).JSON(gerr.Envelope)
}
