package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"noit-gateway/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testConfig(baseURL string, timeoutSec int) *config.Config {
	return &config.Config{
		Upstream: config.UpstreamConfig{
			BaseURL:   baseURL,
			Timeout:   timeoutSec,
			UserAgent: "noit-gateway-test/1.0",
		},
	}
}

func TestDoSendsAuthAndHeaders(t *testing.T) {
	var got http.Header
	var gotURL *url.URL
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		gotURL = r.URL
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	c := NewClient(testConfig(server.URL, 5), zaptest.NewLogger(t))

	resp, err := c.Do(context.Background(), Request{
		Method: http.MethodGet,
		Path:   "/api/v1/business-idea",
		Query:  url.Values{"business_id": {"b1"}},
		Token:  "tok-123",
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "application/json", resp.ContentType)
	assert.JSONEq(t, `{"ok": true}`, string(resp.Body))

	assert.Equal(t, "Bearer tok-123", got.Get("Authorization"))
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Equal(t, "noit-gateway-test/1.0", got.Get("User-Agent"))
	assert.Equal(t, "/api/v1/business-idea", gotURL.Path)
	assert.Equal(t, "b1", gotURL.Query().Get("business_id"))
}

func TestDoOmitsAuthWithoutToken(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := NewClient(testConfig(server.URL, 5), zaptest.NewLogger(t))

	_, err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/api/v1/auth/login", Body: []byte(`{}`)})
	require.NoError(t, err)

	assert.Empty(t, got.Get("Authorization"))
}

func TestDoForwardsBody(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"reply": "ok"}`))
	}))
	defer server.Close()

	c := NewClient(testConfig(server.URL, 5), zaptest.NewLogger(t))

	_, err := c.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/api/v1/business-model/s1/chat",
		Token:  "tok",
		Body:   []byte(`{"message": "hola"}`),
	})
	require.NoError(t, err)

	assert.Equal(t, "hola", gotBody["message"])
}

func TestDoCapturesNon2xxWithoutError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("not found"))
	}))
	defer server.Close()

	c := NewClient(testConfig(server.URL, 5), zaptest.NewLogger(t))

	resp, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/x", Token: "tok"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.Equal(t, "not found", string(resp.Body))
}

func TestDoTimesOutWithinBudget(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	c := NewClient(testConfig(server.URL, 1), zaptest.NewLogger(t))

	started := time.Now()
	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/slow", Token: "tok"})
	elapsed := time.Since(started)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, elapsed, 3*time.Second)
}

func TestDoSingleAttemptPerRequest(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewClient(testConfig(server.URL, 5), zaptest.NewLogger(t))

	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/x", Token: "tok"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), calls.Load())
}

func TestDoReportsUnavailableOnConnectFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listening anymore

	c := NewClient(testConfig(server.URL, 1), zaptest.NewLogger(t))

	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/x", Token: "tok"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestStateReportsBreaker(t *testing.T) {
	c := NewClient(testConfig("http://127.0.0.1:1", 1), zaptest.NewLogger(t))
	assert.Equal(t, "closed", c.State())
}
