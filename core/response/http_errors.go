package response

import (
	"maps"
	"net/http"
)

// Error codes returned in the "code" field of the error envelope.
const (
	CodeInvalidRequest        = "INVALID_REQUEST"
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeForbidden             = "FORBIDDEN"
	CodeNotFound              = "NOT_FOUND"
	CodeMethodNotAllowed      = "METHOD_NOT_ALLOWED"
	CodeConflict              = "CONFLICT"
	CodeDuplicateContribution = "DUPLICATE_CONTRIBUTION"
	CodeRateLimited           = "RATE_LIMITED"
	CodeEmbedding             = "EMBEDDING_ERROR"
	CodeServiceUnavailable    = "SERVICE_UNAVAILABLE"
	CodeInternal              = "INTERNAL_ERROR"
)

// HTTPError is the typed application error. Services return it (or a value
// implementing the same methods) and the error-mapping middleware renders it.
type HTTPError struct {
	Status  int            `json:"-"`                 // HTTP status code (not in JSON)
	Code    string         `json:"code"`              // Machine-readable error kind
	Message string         `json:"message"`           // Human-readable message
	Details map[string]any `json:"details,omitempty"` // Optional context
}

// Error implements the error interface.
func (e HTTPError) Error() string {
	return e.Message
}

// StatusCode returns the HTTP status code for the error.
func (e HTTPError) StatusCode() int {
	return e.Status
}

// WithMessage returns a copy of the error with a custom message.
func (e HTTPError) WithMessage(message string) HTTPError {
	e.Message = message
	return e
}

// WithDetails returns a copy of the error with details merged over the existing ones.
func (e HTTPError) WithDetails(details map[string]any) HTTPError {
	merged := make(map[string]any, len(e.Details)+len(details))
	maps.Copy(merged, e.Details)
	maps.Copy(merged, details)
	e.Details = merged
	return e
}

// Is reports whether target carries the same code, so errors.Is(err, ErrNotFound)
// matches regardless of message or details.
func (e HTTPError) Is(target error) bool {
	t, ok := target.(HTTPError)
	return ok && t.Code == e.Code && t.Status == e.Status
}

var (
	ErrInvalidRequest = HTTPError{
		Status:  http.StatusBadRequest,
		Code:    CodeInvalidRequest,
		Message: "Invalid request",
	}

	ErrPayloadTooLarge = HTTPError{
		Status:  http.StatusRequestEntityTooLarge,
		Code:    CodeInvalidRequest,
		Message: "Request body too large",
	}

	ErrUnauthorized = HTTPError{
		Status:  http.StatusUnauthorized,
		Code:    CodeUnauthorized,
		Message: "Invalid or missing API key",
	}

	ErrForbidden = HTTPError{
		Status:  http.StatusForbidden,
		Code:    CodeForbidden,
		Message: http.StatusText(http.StatusForbidden),
	}

	ErrNotFound = HTTPError{
		Status:  http.StatusNotFound,
		Code:    CodeNotFound,
		Message: http.StatusText(http.StatusNotFound),
	}

	ErrMethodNotAllowed = HTTPError{
		Status:  http.StatusMethodNotAllowed,
		Code:    CodeMethodNotAllowed,
		Message: http.StatusText(http.StatusMethodNotAllowed),
	}

	ErrConflict = HTTPError{
		Status:  http.StatusConflict,
		Code:    CodeConflict,
		Message: http.StatusText(http.StatusConflict),
	}

	ErrDuplicateContribution = HTTPError{
		Status:  http.StatusConflict,
		Code:    CodeDuplicateContribution,
		Message: "A near-identical contribution already exists",
	}

	ErrRateLimited = HTTPError{
		Status:  http.StatusTooManyRequests,
		Code:    CodeRateLimited,
		Message: "Rate limit exceeded",
	}

	ErrEmbedding = HTTPError{
		Status:  http.StatusBadGateway,
		Code:    CodeEmbedding,
		Message: "Embedding provider error",
	}

	ErrServiceUnavailable = HTTPError{
		Status:  http.StatusServiceUnavailable,
		Code:    CodeServiceUnavailable,
		Message: http.StatusText(http.StatusServiceUnavailable),
	}

	ErrInternal = HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternal,
		Message: "Internal server error",
	}
)

// httpErrorsByStatus maps bare status codes to their default error kind.
var httpErrorsByStatus = map[int]HTTPError{
	http.StatusBadRequest:            ErrInvalidRequest,
	http.StatusRequestEntityTooLarge: ErrPayloadTooLarge,
	http.StatusUnauthorized:          ErrUnauthorized,
	http.StatusForbidden:             ErrForbidden,
	http.StatusNotFound:              ErrNotFound,
	http.StatusMethodNotAllowed:      ErrMethodNotAllowed,
	http.StatusConflict:              ErrConflict,
	http.StatusTooManyRequests:       ErrRateLimited,
	http.StatusBadGateway:            ErrEmbedding,
	http.StatusServiceUnavailable:    ErrServiceUnavailable,
	http.StatusInternalServerError:   ErrInternal,
}

// InvalidRequest returns a 400 INVALID_REQUEST error with the given message.
func InvalidRequest(message string) HTTPError {
	return ErrInvalidRequest.WithMessage(message)
}

// NotFound returns a 404 NOT_FOUND error with the given message.
func NotFound(message string) HTTPError {
	return ErrNotFound.WithMessage(message)
}

// Forbidden returns a 403 FORBIDDEN error with the given message.
func Forbidden(message string) HTTPError {
	return ErrForbidden.WithMessage(message)
}

// Conflict returns a 409 error with a specific conflict code.
func Conflict(code, message string, details map[string]any) HTTPError {
	err := ErrConflict
	if code != "" {
		err.Code = code
	}
	err.Message = message
	if len(details) > 0 {
		err = err.WithDetails(details)
	}
	return err
}

// RateLimited returns a 429 RATE_LIMITED error carrying retryAfter seconds.
func RateLimited(retryAfter int64) HTTPError {
	return ErrRateLimited.WithDetails(map[string]any{"retryAfter": retryAfter})
}
