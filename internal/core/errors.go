package core

import (
	"fmt"
	"net/http"
)

// ErrorKind classifies a bridge error for the HTTP layer.
type ErrorKind string

const (
	// KindNotFound indicates an unknown model name (404).
	KindNotFound ErrorKind = "model_not_found"
	// KindValidation indicates a malformed message sequence or parameters (400).
	KindValidation ErrorKind = "validation_error"
	// KindDecode indicates a response-shape mismatch while decoding (502).
	KindDecode ErrorKind = "decode_error"
	// KindThrottled indicates the backend rejected the request for rate limiting (429).
	KindThrottled ErrorKind = "throttled"
	// KindUnauthorized indicates the backend rejected the credentials (401).
	KindUnauthorized ErrorKind = "unauthorized"
	// KindUnavailable indicates a backend-side failure (502).
	KindUnavailable ErrorKind = "backend_unavailable"
	// KindMalformed indicates the backend rejected the built request (400).
	KindMalformed ErrorKind = "malformed_request"
)

// Error is the typed error returned by every bridge operation. It carries
// enough structure for the HTTP layer to map it to a protocol status; the
// core never retries on its own.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Model   string    `json:"model,omitempty"`
	// Original error for debugging (not exposed to clients)
	Err error `json:"-"`
}

func (e *Error) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Model, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatusCode returns the status the HTTP layer should report for this error.
func (e *Error) HTTPStatusCode() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation, KindMalformed:
		return http.StatusBadRequest
	case KindThrottled:
		return http.StatusTooManyRequests
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindDecode, KindUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether the caller may reasonably retry the request.
// Retry policy itself lives with the caller, never in this core.
func (e *Error) Retryable() bool {
	return e.Kind == KindThrottled || e.Kind == KindUnavailable
}

// ToJSON converts the error to the wire shape the HTTP layer emits.
func (e *Error) ToJSON() map[string]any {
	return map[string]any{
		"error": map[string]any{
			"type":    e.Kind,
			"message": e.Message,
		},
	}
}

// NewNotFoundError reports an unknown model name.
func NewNotFoundError(model string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("model %q is not in the catalog", model),
		Model:   model,
	}
}

// NewValidationError reports a malformed message sequence or parameters.
func NewValidationError(message string, err error) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: message,
		Err:     err,
	}
}

// NewDecodeError reports a response-shape mismatch for the given model.
func NewDecodeError(model, message string, err error) *Error {
	return &Error{
		Kind:    KindDecode,
		Message: message,
		Model:   model,
		Err:     err,
	}
}

// NewTransportError reports a classified failure from the backend collaborator.
func NewTransportError(kind ErrorKind, model, message string, err error) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Model:   model,
		Err:     err,
	}
}
