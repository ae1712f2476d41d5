package router

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/sharedcontext/core/handler"
	"github.com/dmitrymomot/sharedcontext/core/logger"
)

// shared holds the settings every sub-router inherits.
type shared[C handler.Context] struct {
	errorHandler handler.ErrorHandler[C]
	newContext   func(http.ResponseWriter, *http.Request, map[string]string) C
	logger       *slog.Logger
}

// mux implements Router on top of chi. chi matches paths while handler
// chains are composed once, at registration, from the middlewares in scope.
type mux[C handler.Context] struct {
	chi         chi.Router
	shared      *shared[C]
	middlewares []handler.Middleware[C]
	hasRoutes   bool
}

func newMux[C handler.Context](opts ...Option[C]) *mux[C] {
	m := &mux[C]{
		chi: chi.NewRouter(),
		shared: &shared[C]{
			errorHandler: defaultErrorHandler[C],
			logger:       logger.Nop(),
		},
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.shared.newContext == nil {
		m.shared.newContext = func(w http.ResponseWriter, r *http.Request, params map[string]string) C {
			var zero C
			if _, ok := any(zero).(*Context); ok {
				return any(NewContext(w, r, params)).(C)
			}
			panic(ErrNoContextFactory)
		}
	}

	m.chi.NotFound(m.serveError(ErrNotFound))
	m.chi.MethodNotAllowed(m.serveError(ErrMethodNotAllowed))

	return m
}

// ServeHTTP implements http.Handler.
func (m *mux[C]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.chi.ServeHTTP(w, r)
}

func (m *mux[C]) Get(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodGet, pattern, h)
}

func (m *mux[C]) Post(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodPost, pattern, h)
}

func (m *mux[C]) Put(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodPut, pattern, h)
}

func (m *mux[C]) Delete(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodDelete, pattern, h)
}

func (m *mux[C]) Patch(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodPatch, pattern, h)
}

func (m *mux[C]) Head(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodHead, pattern, h)
}

func (m *mux[C]) Options(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodOptions, pattern, h)
}

// Handle registers h for every HTTP method.
func (m *mux[C]) Handle(pattern string, h handler.HandlerFunc[C]) {
	m.handle("", pattern, h)
}

// Method registers h for one or more specific HTTP methods.
func (m *mux[C]) Method(pattern string, h handler.HandlerFunc[C], methods ...string) {
	if len(methods) == 0 {
		panic(fmt.Errorf("%w: no methods provided", ErrInvalidMethod))
	}

	seen := make(map[string]bool, len(methods))
	for _, method := range methods {
		method = strings.ToUpper(method)
		if !validMethod(method) {
			panic(fmt.Errorf("%w: %s", ErrInvalidMethod, method))
		}
		if seen[method] {
			continue
		}
		seen[method] = true
		m.handle(method, pattern, h)
	}
}

// Use appends middleware. It must be called before any route is registered.
func (m *mux[C]) Use(middlewares ...handler.Middleware[C]) {
	if m.hasRoutes {
		panic("router: all middlewares must be defined before routes on a mux")
	}
	m.middlewares = append(m.middlewares, middlewares...)
}

// With returns an inline router that adds middlewares to the current ones.
func (m *mux[C]) With(middlewares ...handler.Middleware[C]) Router[C] {
	return &mux[C]{
		chi:         m.chi,
		shared:      m.shared,
		middlewares: append(slices.Clone(m.middlewares), middlewares...),
	}
}

// Group runs fn against an inline router sharing the current path prefix.
func (m *mux[C]) Group(fn func(r Router[C])) Router[C] {
	im := m.With()
	if fn != nil {
		fn(im)
	}
	return im
}

// Route creates a sub-router mounted at pattern.
func (m *mux[C]) Route(pattern string, fn func(r Router[C])) Router[C] {
	if fn == nil {
		panic(fmt.Errorf("%w on '%s'", ErrNilSubrouter, pattern))
	}

	var sub *mux[C]
	m.chi.Route(pattern, func(cr chi.Router) {
		sub = &mux[C]{
			chi:         cr,
			shared:      m.shared,
			middlewares: slices.Clone(m.middlewares),
		}
		cr.NotFound(m.serveError(ErrNotFound))
		cr.MethodNotAllowed(m.serveError(ErrMethodNotAllowed))
		fn(sub)
	})
	return sub
}

// Mount attaches a plain http.Handler, such as the metrics endpoint.
func (m *mux[C]) Mount(pattern string, h http.Handler) {
	if h == nil {
		panic(fmt.Errorf("%w on '%s'", ErrNilSubrouter, pattern))
	}
	m.chi.Mount(pattern, h)
}

// Routes returns all registered routes.
func (m *mux[C]) Routes() []Route {
	var routes []Route
	_ = chi.Walk(m.chi, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, Route{Method: method, Pattern: route})
		return nil
	})
	return routes
}

func (m *mux[C]) handle(method, pattern string, fn handler.HandlerFunc[C]) {
	if pattern == "" || pattern[0] != '/' {
		panic(fmt.Errorf("%w: '%s'", ErrInvalidPattern, pattern))
	}
	m.hasRoutes = true

	h := m.adapt(handler.Compose(fn, m.middlewares...))
	if method == "" {
		m.chi.Handle(pattern, h)
		return
	}
	m.chi.Method(method, pattern, h)
}

// adapt turns a composed chain into an http.Handler. A fresh context is
// created per request and panics are recovered into the error handler.
func (m *mux[C]) adapt(fn handler.HandlerFunc[C]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ww := newResponseWriter(w)
		ctx := m.shared.newContext(ww, r, urlParams(r))

		defer func() {
			p := recover()
			if p == nil {
				return
			}
			if p == http.ErrAbortHandler {
				panic(p)
			}
			perr := &panicError{value: p, stack: debug.Stack()}
			m.shared.logger.ErrorContext(r.Context(), "handler panicked",
				logger.Component("router"),
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
				logger.Error(perr),
				slog.String("stack", string(perr.stack)))
			if !ww.Written() {
				m.shared.errorHandler(ctx, perr)
			}
		}()

		response := fn(ctx)
		if response == nil {
			m.shared.errorHandler(ctx, ErrNilResponse)
			return
		}
		if err := response(ww, ctx.Request()); err != nil {
			m.shared.errorHandler(ctx, err)
		}
	}
}

func (m *mux[C]) serveError(err error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ww := newResponseWriter(w)
		ctx := m.shared.newContext(ww, r, nil)
		m.shared.errorHandler(ctx, err)
	}
}

func urlParams(r *http.Request) map[string]string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || len(rctx.URLParams.Keys) == 0 {
		return nil
	}
	params := make(map[string]string, len(rctx.URLParams.Keys))
	for i, key := range rctx.URLParams.Keys {
		if i < len(rctx.URLParams.Values) {
			params[key] = rctx.URLParams.Values[i]
		}
	}
	return params
}

func validMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch,
		http.MethodDelete, http.MethodConnect, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}
