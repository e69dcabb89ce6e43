package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"noit-gateway/internal/config"
	"noit-gateway/internal/upstream"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newAuthApp(t *testing.T, upstreamHandler http.HandlerFunc) (*fiber.App, func()) {
	t.Helper()

	server := httptest.NewServer(upstreamHandler)

	cfg := &config.Config{
		Upstream: config.UpstreamConfig{
			BaseURL:   server.URL,
			Timeout:   5,
			UserAgent: "noit-gateway-test/1.0",
		},
		Session: config.SessionConfig{
			CookieName:   "token",
			CookieSecure: false,
		},
	}

	log := zaptest.NewLogger(t)
	h := NewAuthHandler(cfg, upstream.NewClient(cfg, log), log)

	app := fiber.New()
	app.Post("/api/auth/login", h.Login)
	app.Post("/api/auth/logout", h.Logout)

	return app, server.Close
}

func postJSON(t *testing.T, app *fiber.App, target, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestLoginSetsTokenCookie(t *testing.T) {
	app, stop := newAuthApp(t, func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "ana@example.com", creds["email"])
		w.Write([]byte(`{"access_token": "tok-42", "user": {"name": "Ana"}}`))
	})
	defer stop()

	resp := postJSON(t, app, "/api/auth/login", `{"email": "ana@example.com", "password": "secreta"}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var tokenCookie *http.Cookie
	for _, ck := range resp.Cookies() {
		if ck.Name == "token" {
			tokenCookie = ck
		}
	}
	require.NotNil(t, tokenCookie)
	assert.Equal(t, "tok-42", tokenCookie.Value)
	assert.True(t, tokenCookie.HttpOnly)

	var doc map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Equal(t, true, doc["success"])
	assert.Equal(t, "Ana", doc["user"].(map[string]any)["name"])
}

func TestLoginMissingCredentials(t *testing.T) {
	app, stop := newAuthApp(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("upstream must not be called without credentials")
	})
	defer stop()

	resp := postJSON(t, app, "/api/auth/login", `{"email": "ana@example.com"}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var doc map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Equal(t, "La contraseña es requerida", doc["error"])
}

func TestLoginBadCredentials(t *testing.T) {
	app, stop := newAuthApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	defer stop()

	resp := postJSON(t, app, "/api/auth/login", `{"email": "ana@example.com", "password": "mala"}`)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var doc map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Equal(t, "Credenciales inválidas", doc["error"])
}

func TestLoginResponseWithoutToken(t *testing.T) {
	app, stop := newAuthApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"user": {"name": "Ana"}}`))
	})
	defer stop()

	resp := postJSON(t, app, "/api/auth/login", `{"email": "a@b.c", "password": "x"}`)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestLogoutExpiresCookie(t *testing.T) {
	app, stop := newAuthApp(t, func(w http.ResponseWriter, r *http.Request) {})
	defer stop()

	resp := postJSON(t, app, "/api/auth/logout", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var tokenCookie *http.Cookie
	for _, ck := range resp.Cookies() {
		if ck.Name == "token" {
			tokenCookie = ck
		}
	}
	require.NotNil(t, tokenCookie)
	assert.Empty(t, tokenCookie.Value)
	assert.True(t, tokenCookie.Expires.Before(time.Now()))
}
