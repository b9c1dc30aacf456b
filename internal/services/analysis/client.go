package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/InonELGABSI/housescanner/internal/interfaces"
)

const (
	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 2 * time.Minute

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 5

	// DefaultMaxRetries is the fixed retry count for failed submissions.
	DefaultMaxRetries = 3

	// DefaultRetryBackoff is the delay between retries.
	DefaultRetryBackoff = 2 * time.Second
)

// Client submits scans to the external AI-analysis service.
type Client struct {
	baseURL      string
	apiKey       string
	httpClient   *http.Client
	logger       arbor.ILogger
	limiter      *rate.Limiter
	maxRetries   int
	retryBackoff time.Duration
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithRetries sets the retry count and backoff for failed submissions.
func WithRetries(maxRetries int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.retryBackoff = backoff
	}
}

// NewClient creates a new analysis service client.
func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter:      rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		maxRetries:   DefaultMaxRetries,
		retryBackoff: DefaultRetryBackoff,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Analyze submits one scan for analysis. Transport errors and 5xx responses
// are retried up to the fixed retry count; 4xx responses fail immediately.
func (c *Client) Analyze(ctx context.Context, req *interfaces.AnalyzeRequest) (*interfaces.AnalyzeResponse, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		result, err := c.post(ctx, "/v1/analyze", req)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if apiErr, ok := err.(*APIError); ok && !apiErr.Retryable() {
			return nil, err
		}

		if c.logger != nil {
			c.logger.Warn().
				Err(err).
				Str("scan_id", req.ScanID).
				Int("attempt", attempt).
				Int("max_retries", c.maxRetries).
				Msg("Analysis request failed")
		}

		if attempt < c.maxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryBackoff):
			}
		}
	}

	return nil, fmt.Errorf("analysis failed after %d attempts: %w", c.maxRetries, lastErr)
}

// post performs a single POST request to the API.
func (c *Client) post(ctx context.Context, path string, payload *interfaces.AnalyzeRequest) (*interfaces.AnalyzeResponse, error) {
	// Wait for rate limiter
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait cancelled: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	if c.logger != nil {
		c.logger.Debug().
			Str("url", c.baseURL+path).
			Str("scan_id", payload.ScanID).
			Msg("Analysis API request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
			Endpoint:   path,
		}
	}

	var result interfaces.AnalyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}
