package backend

import (
	"context"
	"fmt"
)

// Client is the interface for talking to the chat backend
type Client interface {
	// Chat posts a user message and returns the bot's reply
	Chat(ctx context.Context, message string) (string, error)

	// ClearDatabase asks the backend to wipe its document store
	ClearDatabase(ctx context.Context) (ClearResult, error)
}

// ChatRequest is the body of POST /chat
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the body returned by POST /chat, on success and on error
type ChatResponse struct {
	Response string `json:"response"`
}

// ClearResult is the body returned by POST /clear_db
type ClearResult struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

// Clear status values reported by the backend
const (
	ClearSuccess = "success"
	ClearWarning = "warning"
	ClearFailed  = "error"
)

// StatusError is returned when the backend answers with a non-2xx status and
// a JSON payload. Message carries the server-provided text and may be empty.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: backend returned status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s: backend returned status %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

// TransportError is returned when a request could not complete or its
// response could not be decoded.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
