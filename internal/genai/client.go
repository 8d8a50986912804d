package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/kode4food/kubetour/pkg/api"
	"github.com/kode4food/kubetour/pkg/log"
)

type (
	// Generator turns a composed prompt into generated text
	Generator interface {
		Generate(ctx context.Context, prompt string) (string, error)
	}

	// Config holds the endpoint, credential and retry policy of a Client
	Config struct {
		APIKey   string
		Endpoint string
		Timeout  time.Duration
		Retry    RetryConfig
	}

	// Client is the HTTP implementation of Generator
	Client struct {
		httpClient *http.Client
		config     Config
		sleep      SleepFunc
	}

	// Option customizes a Client
	Option func(*Client)
)

const (
	APIKeyHeader    = "x-goog-api-key"
	DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta/" +
		"models/gemini-2.0-flash:generateContent"
	DefaultTimeout = 30 * time.Second

	textPath    = "candidates.0.content.parts.0.text"
	messagePath = "error.message"

	maxResponseBytes = 1 << 20
)

var _ Generator = (*Client)(nil)

// NewClient creates a Client. Zero-valued config fields fall back to the
// package defaults
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	cfg.Retry = withRetryDefaults(cfg.Retry)
	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		config:     cfg,
		sleep:      Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// withRetryDefaults fills only the unset fields of rc, so an explicit
// MaxRetries of zero still means a single attempt
func withRetryDefaults(rc RetryConfig) RetryConfig {
	if rc == (RetryConfig{}) {
		return DefaultRetryConfig()
	}
	if rc.MaxRetries < 0 {
		rc.MaxRetries = 0
	}
	if rc.InitBackoff <= 0 {
		rc.InitBackoff = DefaultInitBackoff
	}
	if rc.MaxBackoff <= 0 {
		rc.MaxBackoff = max(DefaultMaxBackoff, rc.InitBackoff)
	}
	if rc.BackoffType == "" {
		rc.BackoffType = BackoffTypeExponential
	}
	return rc
}

// WithSleep replaces the function used to wait between attempts
func WithSleep(fn SleepFunc) Option {
	return func(c *Client) {
		c.sleep = fn
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// Attempts returns the maximum number of requests one call may issue
func (c *Client) Attempts() int {
	return max(c.config.Retry.MaxRetries, 0) + 1
}

// Generate sends prompt to the endpoint, retrying transient failures
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.config.APIKey == "" {
		return "", ErrMissingCredential
	}

	body, err := json.Marshal(api.NewGenerateRequest(prompt))
	if err != nil {
		return "", err
	}

	attempts := c.Attempts()
	var lastErr error
	for attempt := range attempts {
		if attempt > 0 {
			delay := c.config.Retry.Delay(attempt)
			slog.Warn("Retrying text generation",
				log.Attempt(attempt+1),
				slog.Duration("delay", delay),
				log.Error(lastErr))
			if err := c.sleep(ctx, delay); err != nil {
				return "", err
			}
		}

		text, err := c.send(ctx, body)
		if err == nil {
			return text, nil
		}
		if !isTransient(err) {
			return "", err
		}
		lastErr = err
	}

	slog.Error("Text generation retries exhausted",
		log.Attempt(attempts),
		log.Error(lastErr))
	return "", fmt.Errorf("%w after %d attempts: %s",
		ErrExhausted, attempts, lastErr)
}

func (c *Client) send(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body),
	)
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Kubetour/1.0")
	req.Header.Set(APIKeyHeader, c.config.APIKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	dur := time.Since(start)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		slog.Warn("Text generation request failed",
			slog.Duration("duration", dur),
			log.Error(err))
		return "", &transientError{err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", &transientError{err: err}
	}

	return classify(resp.StatusCode, respBody)
}

func classify(status int, body []byte) (string, error) {
	switch {
	case status >= 200 && status < 300:
		text := gjson.GetBytes(body, textPath)
		if !text.Exists() || text.String() == "" {
			return "", ErrEmptyResponse
		}
		return text.String(), nil

	case status == http.StatusTooManyRequests:
		slog.Warn("Text generation rate limited",
			slog.Int("status_code", status))
		return "", fmt.Errorf("%w: %s", ErrRateLimited,
			serverMessage(status, body))

	case status >= 500:
		return "", &transientError{
			err: fmt.Errorf("%w: %s", ErrServer, serverMessage(status, body)),
		}

	default:
		slog.Error("Text generation request rejected",
			slog.Int("status_code", status),
			slog.String("response_body", string(body)))
		return "", fmt.Errorf("%w: %s", ErrRequestRejected,
			serverMessage(status, body))
	}
}

func serverMessage(status int, body []byte) string {
	if msg := gjson.GetBytes(body, messagePath); msg.Exists() {
		if s := msg.String(); s != "" {
			return s
		}
	}
	return fmt.Sprintf("HTTP %d", status)
}
