// Package transport defines the contract between the engine and the external
// backend collaborator that actually executes inference calls, plus the
// helpers needed to parse its event framing and classify its failures. The
// collaborator implementation itself lives with the caller.
package transport

import (
	"context"
	"encoding/json"
	"net/http"

	"modelbridge/internal/core"
)

// EventStream is a lazy, finite, forward-only sequence of raw backend
// events. Next blocks until the backend delivers the next event, the context
// is cancelled, or the stream ends; it returns io.EOF after the final event.
// Close releases backend-side resources and must be safe to call at any time,
// including mid-stream on consumer disconnect.
type EventStream interface {
	Next(ctx context.Context) ([]byte, error)
	Close() error
}

// Invoker is the external collaborator executing one inference call. The
// engine builds the request body and decodes what comes back; everything in
// between (signing, connection handling, timeouts) belongs to the Invoker.
type Invoker interface {
	// Invoke executes a non-streaming call and returns the complete raw
	// response value.
	Invoke(ctx context.Context, backendID string, body core.RequestBody) ([]byte, error)

	// InvokeStream executes a streaming call and returns the raw event
	// sequence. The caller owns the stream and must Close it.
	InvokeStream(ctx context.Context, backendID string, body core.RequestBody) (EventStream, error)
}

// ClassifyStatus maps a backend HTTP status and error body onto the bridge
// error taxonomy, extracting a human-readable message when the body carries
// one. The classification is only as fine as callers need to decide retry
// versus fail; no retrying happens here.
func ClassifyStatus(model string, statusCode int, body []byte) *core.Error {
	message := string(body)

	var nested struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &nested); err == nil {
		if nested.Error.Message != "" {
			message = nested.Error.Message
		} else if nested.Message != "" {
			message = nested.Message
		}
	}

	switch {
	case statusCode == http.StatusTooManyRequests:
		return core.NewTransportError(core.KindThrottled, model, message, nil)
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return core.NewTransportError(core.KindUnauthorized, model, message, nil)
	case statusCode >= 400 && statusCode < 500:
		return core.NewTransportError(core.KindMalformed, model, message, nil)
	default:
		return core.NewTransportError(core.KindUnavailable, model, message, nil)
	}
}
