// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini provides the HTTP client for the Gemini generateContent API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the Gemini client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeTimeout
	ErrTypeUnauthorized
	ErrTypeRateLimited
	ErrTypeBlocked
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrTimeout      = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrUnauthorized = &ClientError{Type: ErrTypeUnauthorized, Message: "invalid or missing API key"}
	ErrRateLimited  = &ClientError{Type: ErrTypeRateLimited, Message: "rate limited by the API"}
	ErrBlocked      = &ClientError{Type: ErrTypeBlocked, Message: "prompt blocked by safety filters"}
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the Gemini client.
type ClientConfig struct {
	// BaseURL is the API base URL (default: https://generativelanguage.googleapis.com)
	BaseURL string

	// APIKey authenticates requests. Required.
	APIKey string

	// Model to generate with (default: "gemini-2.5-flash")
	Model string

	// Timeout for requests (default: 120s; section generation is slow)
	Timeout time.Duration

	// MaxRetries for transient failures (default: 3)
	MaxRetries int

	// RetryDelay between retries (default: 1s, doubled each attempt)
	RetryDelay time.Duration

	// RequestsPerMinute throttles outgoing calls (default: 30)
	RequestsPerMinute int
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:           "https://generativelanguage.googleapis.com",
		Model:             "gemini-2.5-flash",
		Timeout:           120 * time.Second,
		MaxRetries:        3,
		RetryDelay:        1 * time.Second,
		RequestsPerMinute: 30,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the Gemini API.
//
// The Client is thread-safe for concurrent use. Outgoing requests are
// throttled by a local limiter so bursts of section generation do not trip
// the provider's quota.
//
// Example:
//
//	client := gemini.NewClient("api-key")
//	text, err := client.GenerateText(ctx, "Write an overview of TLS")
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new Gemini client with default configuration.
func NewClient(apiKey string) *Client {
	cfg := DefaultConfig()
	cfg.APIKey = apiKey
	return NewClientWithConfig(cfg)
}

// NewClientWithConfig creates a new Gemini client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if config.Model == "" {
		config.Model = "gemini-2.5-flash"
	}
	if config.Timeout == 0 {
		config.Timeout = 120 * time.Second
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = 1 * time.Second
	}
	if config.RequestsPerMinute == 0 {
		config.RequestsPerMinute = 30
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(float64(config.RequestsPerMinute)/60.0), 1),
	}
}

// GetConfig returns the client configuration.
func (c *Client) GetConfig() *ClientConfig {
	return c.config
}

// SetModel changes the model used for generation.
func (c *Client) SetModel(model string) {
	c.config.Model = model
}

// =============================================================================
// GENERATION
// =============================================================================

// GenerateText produces free-form markdown for a prompt.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	req := &GenerateRequest{
		Contents: []Content{{Role: "user", Parts: []Part{{Text: prompt}}}},
	}
	return c.generate(ctx, req)
}

// GenerateStructured produces a JSON response for a prompt. The request
// declares application/json output with the outline schema, which makes the
// model return a bare JSON array instead of fenced prose.
func (c *Client) GenerateStructured(ctx context.Context, prompt string) (string, error) {
	req := &GenerateRequest{
		Contents: []Content{{Role: "user", Parts: []Part{{Text: prompt}}}},
		GenerationConfig: &GenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   PlanSchema(),
		},
	}
	return c.generate(ctx, req)
}

// generate sends a generateContent request with throttling and retries.
// Only transient failures (connection errors, 429, 5xx) are retried.
func (c *Client) generate(ctx context.Context, req *GenerateRequest) (string, error) {
	if c.config.APIKey == "" {
		return "", ErrUnauthorized
	}

	var lastErr error
	delay := c.config.RetryDelay
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}

		text, err := c.doGenerate(ctx, req)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !isTransient(err) {
			return "", err
		}
	}
	return "", lastErr
}

func (c *Client) doGenerate(ctx context.Context, req *GenerateRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.config.BaseURL, c.config.Model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.config.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", ErrTimeout
		}
		return "", &ClientError{Type: ErrTypeConnection, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.errorFromStatus(resp)
	}

	var result GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}

	if result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
		return "", &ClientError{
			Type:    ErrTypeBlocked,
			Message: "prompt blocked: " + result.PromptFeedback.BlockReason,
		}
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "response has no candidates"}
	}

	text := ""
	for _, part := range result.Candidates[0].Content.Parts {
		text += part.Text
	}
	if text == "" {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "response candidate is empty"}
	}
	return text, nil
}

// errorFromStatus maps an HTTP error response to a ClientError.
func (c *Client) errorFromStatus(resp *http.Response) error {
	msg := "unexpected status: " + resp.Status
	var envelope apiError
	if b, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024)); err == nil {
		if json.Unmarshal(b, &envelope) == nil && envelope.Error.Message != "" {
			msg = envelope.Error.Message
		}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &ClientError{Type: ErrTypeUnauthorized, Message: msg}
	case resp.StatusCode == http.StatusTooManyRequests:
		return &ClientError{Type: ErrTypeRateLimited, Message: msg}
	case resp.StatusCode >= 500:
		return &ClientError{Type: ErrTypeConnection, Message: msg}
	default:
		return &ClientError{Type: ErrTypeInvalidResponse, Message: msg}
	}
}

// isTransient reports whether an error is worth retrying.
func isTransient(err error) bool {
	var cerr *ClientError
	if !errors.As(err, &cerr) {
		return false
	}
	return cerr.Type == ErrTypeConnection || cerr.Type == ErrTypeRateLimited || cerr.Type == ErrTypeTimeout
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsUnauthorized returns true if the error indicates a bad API key.
func IsUnauthorized(err error) bool {
	var cerr *ClientError
	return errors.As(err, &cerr) && cerr.Type == ErrTypeUnauthorized
}

// IsRateLimited returns true if the error indicates provider throttling.
func IsRateLimited(err error) bool {
	var cerr *ClientError
	return errors.As(err, &cerr) && cerr.Type == ErrTypeRateLimited
}

// IsBlocked returns true if the prompt was rejected by safety filters.
func IsBlocked(err error) bool {
	var cerr *ClientError
	return errors.As(err, &cerr) && cerr.Type == ErrTypeBlocked
}

// IsTimeout returns true if the error indicates a timeout.
func IsTimeout(err error) bool {
	var cerr *ClientError
	return errors.As(err, &cerr) && cerr.Type == ErrTypeTimeout
}
