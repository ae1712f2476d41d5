package binder

import "errors"

var (
	// ErrUnsupportedMediaType is returned when Content-Type is set to
	// something other than application/json.
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrFailedToParseJSON is returned for malformed or mistyped JSON bodies.
	ErrFailedToParseJSON = errors.New("failed to parse JSON request body")

	// ErrFailedToParseQuery is returned when a query value does not convert
	// to its field type.
	ErrFailedToParseQuery = errors.New("failed to parse query parameters")
)
