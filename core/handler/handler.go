package handler

import "net/http"

// Response is a function that renders HTTP responses.
// It sets headers, status code, and writes the response body.
// A returned error is handed to the error-mapping middleware or the router's error handler.
type Response func(w http.ResponseWriter, r *http.Request) error

// HandlerFunc is a type-safe HTTP request handler with custom context support.
type HandlerFunc[C Context] func(ctx C) Response

// ErrorHandler handles errors during request processing.
type ErrorHandler[C Context] func(ctx C, err error)

// Middleware wraps handlers to add cross-cutting functionality.
type Middleware[C Context] func(next HandlerFunc[C]) HandlerFunc[C]

// Chain composes middlewares into a single middleware.
// The first middleware is the outermost one: Chain(a, b, c)(h) == a(b(c(h))).
// Nil entries are skipped.
func Chain[C Context](middlewares ...Middleware[C]) Middleware[C] {
	return func(next HandlerFunc[C]) HandlerFunc[C] {
		h := next
		for i := len(middlewares) - 1; i >= 0; i-- {
			if middlewares[i] == nil {
				continue
			}
			h = middlewares[i](h)
		}
		return h
	}
}

// Compose wraps h with the given middlewares in declaration order.
// It is shorthand for Chain(middlewares...)(h).
func Compose[C Context](h HandlerFunc[C], middlewares ...Middleware[C]) HandlerFunc[C] {
	return Chain(middlewares...)(h)
}
