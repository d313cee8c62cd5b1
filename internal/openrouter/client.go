// Package openrouter is a small client for the OpenRouter chat API.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/syntaxai/cargo-syntax/pkg/config"
)

// APIKeyEnv names the environment variable holding the API key.
const APIKeyEnv = "OPENROUTER_API_KEY"

// DefaultBaseURL is the OpenRouter v1 API root.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// ErrNoAPIKey is returned when no API key is configured.
var ErrNoAPIKey = errors.New(APIKeyEnv + " not set - get one at https://openrouter.ai/keys")

// ErrEmptyResponse is returned when a completion has no choices.
var ErrEmptyResponse = errors.New("empty response from OpenRouter")

// APIError is a non-200 response or an error object in a 200 response.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return "OpenRouter API error: " + e.Body
	}
	return fmt.Sprintf("OpenRouter API error (HTTP %d): %s", e.Status, e.Body)
}

// Retryable reports whether the request may succeed if sent again.
func (e *APIError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// Client talks to the chat completions and models endpoints.
type Client struct {
	baseURL    string
	apiKey     string
	http       *http.Client
	maxRetries int
	backoff    func() backoff.BackOff
}

// Option is a functional option for Client.
type Option func(*Client)

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithAPIKey sets the bearer token.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithMaxRetries bounds retries of 429 and 5xx responses.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithBackOff sets the retry schedule.
func WithBackOff(fn func() backoff.BackOff) Option {
	return func(c *Client) {
		c.backoff = fn
	}
}

func defaultBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.MaxElapsedTime = 2 * time.Minute
	return bo
}

// New creates a client. The API key defaults to $OPENROUTER_API_KEY.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     os.Getenv(APIKeyEnv),
		http:       &http.Client{Timeout: 120 * time.Second},
		maxRetries: 3,
		backoff:    defaultBackOff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FromConfig creates a client from the llm section of cfg.
func FromConfig(cfg *config.Config, opts ...Option) *Client {
	base := []Option{
		WithBaseURL(cfg.LLM.BaseURL),
		WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.LLM.Timeout) * time.Second}),
		WithMaxRetries(cfg.LLM.MaxRetries),
	}
	return New(append(base, opts...)...)
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *jsonSchema `json:"json_schema,omitempty"`
}

type jsonSchema struct {
	Name   string          `json:"name"`
	Strict bool            `json:"strict"`
	Schema json.RawMessage `json:"schema"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []message       `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Chat sends a system and user message and returns the reply text.
func (c *Client) Chat(ctx context.Context, model, system, prompt string) (string, error) {
	return c.complete(ctx, chatRequest{
		Model: model,
		Messages: []message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
	})
}

func (c *Client) complete(ctx context.Context, req chatRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	data, err := c.do(ctx, http.MethodPost, "/chat/completions", body)
	if err != nil {
		return "", err
	}

	var resp chatResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("decoding completion: %w", err)
	}
	if resp.Error != nil {
		return "", &APIError{Body: resp.Error.Message}
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// do sends one request, retrying retryable API errors and transport
// failures. Other errors stop immediately.
func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	var out []byte
	op := func() error {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Title", "cargo-syntax")

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			apiErr := &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
			if apiErr.Retryable() {
				return apiErr
			}
			return backoff.Permanent(apiErr)
		}
		out = data
		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(c.backoff(), uint64(max(c.maxRetries, 0))), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return nil, err
	}
	return out, nil
}
