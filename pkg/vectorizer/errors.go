package vectorizer

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidDimensions indicates invalid dimensions for the model.
	ErrInvalidDimensions = errors.New("invalid dimensions for model")

	// ErrModelNotSupported indicates the model is not supported.
	ErrModelNotSupported = errors.New("model not supported")

	// ErrBatchTooLarge indicates the batch size exceeds the limit.
	ErrBatchTooLarge = errors.New("batch size exceeds limit")

	// ErrInvalidAPIKey indicates an invalid or missing API key.
	ErrInvalidAPIKey = errors.New("invalid or missing API key")

	// ErrEmbeddingCountMismatch indicates the number of embeddings returned doesn't match the input.
	ErrEmbeddingCountMismatch = errors.New("embedding count mismatch")

	// ErrInvalidIndex indicates a result index outside the input range.
	ErrInvalidIndex = errors.New("embedding index out of range")

	// ErrEmptyEmbedding indicates an empty embedding was returned.
	ErrEmptyEmbedding = errors.New("empty embedding returned")

	// ErrUnknownProvider indicates an unsupported EMBEDDING_PROVIDER value.
	ErrUnknownProvider = errors.New("unknown embedding provider")
)

// Failure types reported in Error.Type.
const (
	TypeHTTP     = "http"
	TypeNetwork  = "network"
	TypeResponse = "response"
)

// ErrorCode is the error code exposed to API clients.
const ErrorCode = "EMBEDDING_ERROR"

// Error describes a failed embedding call.
// It renders as a 502 EMBEDDING_ERROR response.
type Error struct {
	Provider  string
	Status    int
	Detail    string
	Attempts  int
	Retryable bool
	Type      string
	Err       error
}

func (e *Error) Error() string {
	switch e.Type {
	case TypeNetwork:
		return fmt.Sprintf("%s API network error: %s", e.Provider, e.Detail)
	case TypeResponse:
		return fmt.Sprintf("%s API invalid response: %s", e.Provider, e.Detail)
	default:
		return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.Status, e.Detail)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code returns EMBEDDING_ERROR.
func (e *Error) Code() string { return ErrorCode }

// StatusCode returns 502 regardless of the upstream status.
func (e *Error) StatusCode() int { return http.StatusBadGateway }

// Details returns the diagnostic fields for the error envelope.
func (e *Error) Details() map[string]any {
	d := map[string]any{
		"provider":  e.Provider,
		"attempts":  e.Attempts,
		"retryable": e.Retryable,
	}
	if e.Status > 0 {
		d["status"] = e.Status
	}
	if e.Detail != "" {
		d["detail"] = e.Detail
	}
	if e.Type != "" && e.Type != TypeHTTP {
		d["type"] = e.Type
	}
	return d
}

// IsRetryableStatus reports whether an upstream status is worth retrying.
func IsRetryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// IsRetryable reports whether the failure was transient.
func (e *Error) IsRetryable() bool { return e.Retryable }
