package handler

import (
	"context"
	"net/http"
)

// Context is the per-request state threaded through the middleware chain.
// Implementations embed the request's context.Context so they can be passed
// straight to stores and outbound clients.
type Context interface {
	context.Context
	Request() *http.Request
	ResponseWriter() http.ResponseWriter
	Param(key string) string
	SetValue(key, val any)
}
