package response

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/sharedcontext/core/handler"
)

// statusCoder, coder and detailer let typed errors from other packages
// describe themselves without importing this package.
type statusCoder interface {
	StatusCode() int
}

type coder interface {
	Code() string
}

type detailer interface {
	Details() map[string]any
}

// Envelope is the wire shape of every error response.
type Envelope struct {
	Error HTTPError `json:"error"`
}

// Convert maps any error to an HTTPError.
// The second return value is false when err is not part of the typed
// taxonomy and was mapped to a generic 500.
func Convert(err error) (HTTPError, bool) {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr, true
	}

	var sc statusCoder
	if !errors.As(err, &sc) {
		return ErrInternal, false
	}

	status := sc.StatusCode()
	base, ok := httpErrorsByStatus[status]
	if !ok {
		base = ErrInternal
		base.Status = status
	}

	var c coder
	if errors.As(err, &c) && c.Code() != "" {
		base.Code = c.Code()
	}

	base.Message = err.Error()

	var d detailer
	if errors.As(err, &d) {
		if details := d.Details(); len(details) > 0 {
			base = base.WithDetails(details)
		}
	}

	return base, true
}

// JSONError renders err as the JSON error envelope.
func JSONError(err error) handler.Response {
	httpErr, _ := Convert(err)
	return JSONWithStatus(Envelope{Error: httpErr}, httpErr.Status)
}

// JSONErrorHandler renders errors as the JSON error envelope.
// It is installed as the router's fallback error handler.
func JSONErrorHandler[C handler.Context](ctx C, err error) {
	if w, ok := ctx.ResponseWriter().(interface{ Written() bool }); ok && w.Written() {
		return
	}
	if err := JSONError(err)(ctx.ResponseWriter(), ctx.Request()); err != nil {
		http.Error(ctx.ResponseWriter(), http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
