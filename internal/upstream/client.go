package upstream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"noit-gateway/internal/config"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

var (
	// ErrTimeout marks an upstream call aborted by the request deadline.
	ErrTimeout = errors.New("upstream request timed out")

	// ErrUnavailable marks transport failures and an open circuit breaker.
	ErrUnavailable = errors.New("upstream unavailable")
)

// Client issues authenticated calls against the upstream analytics host.
// One client is shared across all requests; it holds no per-request state.
type Client struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker
	logger    *zap.Logger
}

// Request describes one upstream call. Path must already have its
// parameters expanded. Token may be empty for unauthenticated calls
// (login); Body may be nil.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Token  string
	Body   []byte
}

// Response captures the upstream result without interpreting it. The body
// is not assumed to be JSON; upstream failures sometimes return plain text,
// so parsing is the validator's job.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

func NewClient(cfg *config.Config, log *zap.Logger) *Client {
	settings := gobreaker.Settings{
		Name:        "upstream",
		MaxRequests: 10,
		Interval:    time.Second,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.Upstream.BaseURL, "/"),
		userAgent: cfg.Upstream.UserAgent,
		timeout:   time.Duration(cfg.Upstream.Timeout) * time.Second,
		breaker:   gobreaker.NewCircuitBreaker(settings),
		logger:    log,
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				MaxConnsPerHost:     10,
			},
		},
	}
}

// Do performs exactly one upstream attempt. There is no retry: a failed
// inbound request stays failed, the browser decides whether to try again.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build upstream request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.execute(httpReq)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.logger.Warn("upstream circuit open, failing fast",
				zap.String("path", req.Path),
			)
			return nil, fmt.Errorf("%w: circuit breaker open", ErrUnavailable)
		}
		if ctx.Err() != nil || isTimeout(err) {
			return nil, fmt.Errorf("%w after %s", ErrTimeout, c.timeout)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return result.(*Response), nil
}

func (c *Client) execute(req *http.Request) (*Response, error) {
	started := time.Now()

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read upstream body: %w", err)
	}

	c.logger.Debug("upstream call completed",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Int("response_size", len(body)),
		zap.Duration("elapsed", time.Since(started)),
	)

	return &Response{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// State reports the circuit breaker state for health reporting.
func (c *Client) State() string {
	return c.breaker.State().String()
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Timeout()
	}
	return false
}
