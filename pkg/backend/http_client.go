package backend

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

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// ChatPath is the endpoint that answers user messages
	ChatPath = "/chat"
	// ClearDatabasePath is the endpoint that wipes the backend's document store
	ClearDatabasePath = "/clear_db"

	// RequestIDHeader carries a per-request correlation ID
	RequestIDHeader = "X-Request-ID"
)

// DefaultBaseURL is where the backend listens when run locally
const DefaultBaseURL = "http://localhost:5000"

// HTTPClient talks to the backend over JSON/HTTP
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// Option configures an HTTPClient
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		c.httpClient = hc
	}
}

// WithTimeout bounds each request. Zero leaves requests unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger used for request diagnostics
func WithLogger(l zerolog.Logger) Option {
	return func(c *HTTPClient) {
		c.logger = l
	}
}

// NewHTTPClient creates a client for the backend at baseURL
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend address requests are sent to
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// Chat posts message to /chat and returns the bot's reply
func (c *HTTPClient) Chat(ctx context.Context, message string) (string, error) {
	var resp ChatResponse
	status, err := c.post(ctx, ChatPath, ChatRequest{Message: message}, &resp)
	if err != nil {
		return "", err
	}
	if !isOK(status) {
		return "", &StatusError{Endpoint: ChatPath, StatusCode: status, Message: resp.Response}
	}
	return resp.Response, nil
}

// ClearDatabase posts an empty object to /clear_db
func (c *HTTPClient) ClearDatabase(ctx context.Context) (ClearResult, error) {
	var resp ClearResult
	status, err := c.post(ctx, ClearDatabasePath, struct{}{}, &resp)
	if err != nil {
		return ClearResult{}, err
	}
	if !isOK(status) {
		return resp, &StatusError{Endpoint: ClearDatabasePath, StatusCode: status, Message: resp.Message}
	}
	return resp, nil
}

// post sends body as JSON and decodes the JSON reply into out regardless of
// status. A body that is not JSON is a transport failure.
func (c *HTTPClient) post(ctx context.Context, endpoint string, body, out interface{}) (int, error) {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, &TransportError{Endpoint: endpoint, Err: fmt.Errorf("failed to send request: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, &TransportError{Endpoint: endpoint, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("backend request finished")

	if err := json.Unmarshal(respBody, out); err != nil {
		return resp.StatusCode, &TransportError{
			Endpoint: endpoint,
			Err:      fmt.Errorf("failed to parse response (status %d): %w", resp.StatusCode, err),
		}
	}

	return resp.StatusCode, nil
}

func isOK(status int) bool {
	return status >= 200 && status < 300
}

// IsTransport reports whether err is a transport failure
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
