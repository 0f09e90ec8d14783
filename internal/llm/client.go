// Package llm implements the resilient chat-completions client used for
// recipe rewriting. It validates and sanitizes everything that crosses the
// network boundary, retries transient upstream failures with capped
// exponential backoff, and raises classified errors from the point of
// detection instead of inferring them from error text downstream.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sync"
	"time"

	"github.com/dishcraft/dishcraft/internal/domain"
	"github.com/dishcraft/dishcraft/internal/observability"
)

const (
	minCredentialLength = 20
	maxCredentialLength = 256
)

var modelIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// apiResponse is the upstream response shape the client consumes.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// Client calls the model endpoint. Configuration is mutable through the
// explicit reconfiguration methods only; SendMessage snapshots it once at the
// top of each call, so a call in flight never observes a half-applied change.
type Client struct {
	mu            sync.Mutex
	cfg           Config
	defaults      Params
	systemMessage string
	lastResult    *domain.Completion

	retry            RetryPolicy
	httpClient       *http.Client
	pinnedHTTPClient bool
}

// Option customizes a client beyond its configuration.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client derived from the configured
// timeout. The replacement is kept across reconfiguration.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
		c.pinnedHTTPClient = true
	}
}

// WithRetryPolicy replaces the default retry policy.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(c *Client) {
		c.retry = policy
	}
}

// NewClient constructs and configures a client. The HTTP client carries a
// per-attempt timeout so a hung connection cannot stall the retry loop.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	c := &Client{
		defaults:      DefaultParams(),
		systemMessage: "You are a helpful culinary assistant.",
		retry:         NewRetryPolicy(),
	}
	if err := c.Configure(cfg); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Configure validates and fully replaces the client configuration.
func (c *Client) Configure(cfg Config) error {
	if n := len(cfg.APIKey); n < minCredentialLength || n > maxCredentialLength {
		return fmt.Errorf("API key length %d out of range [%d, %d]", n, minCredentialLength, maxCredentialLength)
	}

	endpoint, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid endpoint URL: %w", err)
	}
	if endpoint.Scheme != "https" {
		return fmt.Errorf("endpoint must use https, got %q", endpoint.Scheme)
	}

	if cfg.Model != "" && !modelIDPattern.MatchString(cfg.Model) {
		return fmt.Errorf("invalid model identifier %q", cfg.Model)
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	if cfg.Timeout <= 0 {
		timeout = 60 * time.Second
	}

	c.mu.Lock()
	c.cfg = cfg
	if !c.pinnedHTTPClient {
		c.httpClient = &http.Client{Timeout: timeout}
	}
	c.mu.Unlock()

	return nil
}

// SetSystemMessage validates, sanitizes, and replaces the system message used
// on every subsequent call.
func (c *Client) SetSystemMessage(text string) error {
	if !ValidateMessage(text) {
		return fmt.Errorf("%w: system message is empty or exceeds %d characters", domain.ErrInvalidInput, MaxMessageLength)
	}

	c.mu.Lock()
	c.systemMessage = Sanitize(text)
	c.mu.Unlock()

	return nil
}

// ConfigureModel switches the active model and merges parameter overrides
// into the client defaults.
func (c *Client) ConfigureModel(modelID string, overrides Params) error {
	if !modelIDPattern.MatchString(modelID) {
		return fmt.Errorf("invalid model identifier %q", modelID)
	}
	if err := overrides.Validate(); err != nil {
		return fmt.Errorf("invalid model parameters: %w", err)
	}

	c.mu.Lock()
	c.cfg.Model = modelID
	c.defaults = MergeParams(c.defaults, overrides)
	c.mu.Unlock()

	return nil
}

// Model returns the identifier of the currently configured model.
func (c *Client) Model() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.Model
}

// LastResult returns the most recent successful completion, or nil.
func (c *Client) LastResult() *domain.Completion {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastResult
}

// SendMessage sanitizes text, builds the request payload, and performs the
// call under the retry policy. Implements domain.Completer.
func (c *Client) SendMessage(ctx context.Context, text string, overrides *domain.GenerationOverrides) (*domain.Completion, error) {
	c.mu.Lock()
	cfg := c.cfg
	defaults := c.defaults
	systemMessage := c.systemMessage
	httpClient := c.httpClient
	c.mu.Unlock()

	if !ValidateMessage(text) {
		return nil, fmt.Errorf("%w: message is empty or exceeds %d characters", domain.ErrInvalidInput, MaxMessageLength)
	}

	params := defaults
	if overrides != nil {
		override := Params{Temperature: overrides.Temperature, MaxTokens: overrides.MaxTokens}
		if err := override.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		params = MergeParams(defaults, override)
	}

	payload, err := NewPayload(cfg.Model, systemMessage, Sanitize(text), params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	result, err := c.send(ctx, httpClient, cfg, payload)
	if err != nil {
		observability.FromContext(ctx).Error("model call failed",
			observability.Time("failed_at", time.Now()),
			observability.String("endpoint", cfg.BaseURL),
			observability.String("model", cfg.Model),
			observability.Error(err),
		)
		return nil, err
	}

	c.mu.Lock()
	c.lastResult = result
	c.mu.Unlock()

	return result, nil
}

// send runs the sequential retry loop. Attempts are never parallel; the only
// suspension points are the call itself and the backoff sleep.
func (c *Client) send(ctx context.Context, httpClient *http.Client, cfg Config, payload *Payload) (*domain.Completion, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	logger := observability.FromContext(ctx)

	for attempt := 0; ; attempt++ {
		result, status, attemptErr := c.attempt(ctx, httpClient, cfg, body)
		if attemptErr == nil && status == http.StatusOK {
			return result, nil
		}

		switch {
		case attemptErr != nil && c.retry.ShouldRetryError(attemptErr, attempt):
		case attemptErr == nil && c.retry.ShouldRetryStatus(status, attempt):
		case attemptErr != nil && c.retry.ShouldRetryError(attemptErr, 0):
			// Transient by vocabulary but out of attempts.
			return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, attemptErr)
		default:
			return nil, classifyFailure(status, attemptErr)
		}

		logger.Warn("retrying model call",
			observability.Int("attempt", attempt),
			observability.Int("status", status),
			observability.Duration("backoff", c.retry.DelayFor(attempt)),
			observability.Error(attemptErr),
		)

		if sleepErr := c.retry.Sleep(ctx, attempt); sleepErr != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, sleepErr)
		}
	}
}

// attempt performs exactly one HTTP call. A non-nil error is transport-level;
// otherwise the status tells the caller what happened.
func (c *Client) attempt(ctx context.Context, httpClient *http.Client, cfg Config, body []byte) (*domain.Completion, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	req.Header.Set("HTTP-Referer", cfg.Referer)
	req.Header.Set("X-Title", cfg.Title)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused across retries.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, resp.StatusCode, nil
	}

	var decoded apiResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&decoded); decodeErr != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to decode response: %w", decodeErr)
	}

	// A 200 with no usable choice is a broken upstream contract, not a
	// transient condition; it must not re-enter the retry loop.
	if len(decoded.Choices) == 0 {
		return nil, resp.StatusCode, fmt.Errorf("%w: response contained no choices", domain.ErrEmptyCompletion)
	}
	if decoded.Choices[0].Message.Content == "" {
		return nil, resp.StatusCode, fmt.Errorf("%w: choice carried no message content", domain.ErrEmptyCompletion)
	}

	return &domain.Completion{
		Content:     decoded.Choices[0].Message.Content,
		TotalTokens: decoded.Usage.TotalTokens,
	}, resp.StatusCode, nil
}

// classifyFailure tags the terminal failure of a send. Transport errors that
// did not match the transient vocabulary, and statuses outside the taxonomy,
// stay unclassified and default to code 500 downstream.
func classifyFailure(status int, err error) error {
	if err != nil {
		if errors.Is(err, domain.ErrEmptyCompletion) {
			return err
		}
		return fmt.Errorf("model call failed: %w", err)
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: endpoint returned status %d", domain.ErrUpstreamAuth, status)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: endpoint returned status %d", domain.ErrRateLimited, status)
	case status == http.StatusBadRequest:
		return fmt.Errorf("%w: endpoint rejected the request", domain.ErrInvalidInput)
	case status >= http.StatusInternalServerError:
		return fmt.Errorf("%w: endpoint returned server error %d", domain.ErrUpstreamUnavailable, status)
	default:
		return fmt.Errorf("model call failed with status %d", status)
	}
}

// Enforce the interface at compile time.
var _ domain.Completer = (*Client)(nil)
