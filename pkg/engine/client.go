// Package engine talks to the external risk-scoring engine: an HTTP client, a
// circuit-breaking wrapper and a two-tier result cache.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/hcc-raf-server/internal/domain"
)

// calculatePath is appended to the engine base URL
const calculatePath = "/calculate"

// maxErrorBody caps how much of a failed response is read for its message
const maxErrorBody = 64 << 10

// Config represents configuration for the engine HTTP client
type Config struct {
	BaseURL   string        `json:"base_url"`
	Timeout   time.Duration `json:"timeout"`
	RateLimit int           `json:"rate_limit"` // requests per second
	Burst     int           `json:"burst"`
}

// Error is a failure reported by the engine itself. Message is the engine's own text
// and is what callers see.
type Error struct {
	StatusCode int
	Message    string
}

// Error implements the error interface
func (e *Error) Error() string {
	return e.Message
}

// IsClientError reports whether the engine rejected the input rather than failed
func (e *Error) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// Is matches domain.ErrEngineUnavailable for gateway statuses, where the engine
// never produced an answer of its own
func (e *Error) Is(target error) bool {
	if target != domain.ErrEngineUnavailable {
		return false
	}
	switch e.StatusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// HTTPClient calls the engine's calculate endpoint
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	rateLimit  *rate.Limiter
}

// NewHTTPClient creates a new engine client
func NewHTTPClient(config Config) *HTTPClient {
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = 50
	}
	if config.Burst == 0 {
		config.Burst = config.RateLimit
	}

	return &HTTPClient{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimit: rate.NewLimiter(rate.Limit(config.RateLimit), config.Burst),
	}
}

type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// Calculate sends one calculation to the engine
func (c *HTTPClient) Calculate(ctx context.Context, req *domain.EngineRequest) (*domain.RawModelResult, error) {
	if err := c.rateLimit.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode engine request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+calculatePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create engine request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, fmt.Errorf("engine request failed: %w", err)
		}
		// Refused connections, DNS failures and timeouts all mean no answer
		return nil, fmt.Errorf("%w: %v", domain.ErrEngineUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, readError(resp)
	}

	var result domain.RawModelResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode engine response: %w", err)
	}
	return &result, nil
}

func readError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body errorBody
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Error != "" {
			return &Error{StatusCode: resp.StatusCode, Message: body.Error}
		}
		if body.Detail != "" {
			return &Error{StatusCode: resp.StatusCode, Message: body.Detail}
		}
	}

	msg := strings.TrimSpace(string(data))
	if msg == "" {
		msg = fmt.Sprintf("engine returned status %d", resp.StatusCode)
	}
	return &Error{StatusCode: resp.StatusCode, Message: msg}
}
