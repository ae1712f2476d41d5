package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sharedcontext/core/handler"
)

type testContext struct {
	context.Context
	w http.ResponseWriter
	r *http.Request
}

func (c *testContext) Request() *http.Request              { return c.r }
func (c *testContext) ResponseWriter() http.ResponseWriter { return c.w }
func (c *testContext) Param(string) string                 { return "" }
func (c *testContext) SetValue(key, val any)               {}

func newTestContext() *testContext {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	return &testContext{Context: r.Context(), w: httptest.NewRecorder(), r: r}
}

func marker(name string, trace *[]string) handler.Middleware[*testContext] {
	return func(next handler.HandlerFunc[*testContext]) handler.HandlerFunc[*testContext] {
		return func(ctx *testContext) handler.Response {
			*trace = append(*trace, "in:"+name)
			resp := next(ctx)
			*trace = append(*trace, "out:"+name)
			return func(w http.ResponseWriter, r *http.Request) error {
				*trace = append(*trace, "render-in:"+name)
				err := resp(w, r)
				*trace = append(*trace, "render-out:"+name)
				return err
			}
		}
	}
}

func TestChain(t *testing.T) {
	t.Parallel()

	t.Run("runs markers in declaration order and unwinds in reverse", func(t *testing.T) {
		t.Parallel()

		var trace []string
		terminal := func(ctx *testContext) handler.Response {
			trace = append(trace, "handler")
			return func(w http.ResponseWriter, r *http.Request) error {
				trace = append(trace, "render")
				return nil
			}
		}

		h := handler.Chain(marker("a", &trace), marker("b", &trace), marker("c", &trace))(terminal)
		ctx := newTestContext()
		require.NoError(t, h(ctx)(ctx.w, ctx.r))

		assert.Equal(t, []string{
			"in:a", "in:b", "in:c",
			"handler",
			"out:c", "out:b", "out:a",
			"render-in:a", "render-in:b", "render-in:c",
			"render",
			"render-out:c", "render-out:b", "render-out:a",
		}, trace)
	})

	t.Run("short-circuit skips downstream stages", func(t *testing.T) {
		t.Parallel()

		var trace []string
		stop := func(next handler.HandlerFunc[*testContext]) handler.HandlerFunc[*testContext] {
			return func(ctx *testContext) handler.Response {
				trace = append(trace, "stop")
				return func(w http.ResponseWriter, r *http.Request) error {
					w.WriteHeader(http.StatusTeapot)
					return nil
				}
			}
		}
		terminal := func(ctx *testContext) handler.Response {
			trace = append(trace, "handler")
			return nil
		}

		h := handler.Compose(terminal, marker("a", &trace), stop, marker("b", &trace))
		ctx := newTestContext()
		rec := httptest.NewRecorder()
		require.NoError(t, h(ctx)(rec, ctx.r))

		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.Equal(t, []string{"in:a", "stop", "out:a", "render-in:a", "render-out:a"}, trace)
	})

	t.Run("empty chain returns the terminal handler", func(t *testing.T) {
		t.Parallel()

		called := false
		terminal := func(ctx *testContext) handler.Response {
			called = true
			return func(w http.ResponseWriter, r *http.Request) error { return nil }
		}

		ctx := newTestContext()
		h := handler.Chain[*testContext]()(terminal)
		require.NoError(t, h(ctx)(ctx.w, ctx.r))
		assert.True(t, called)
	})

	t.Run("nil middleware entries are skipped", func(t *testing.T) {
		t.Parallel()

		var trace []string
		terminal := func(ctx *testContext) handler.Response {
			trace = append(trace, "handler")
			return func(w http.ResponseWriter, r *http.Request) error { return nil }
		}

		ctx := newTestContext()
		h := handler.Compose(terminal, nil, marker("a", &trace), nil)
		require.NoError(t, h(ctx)(ctx.w, ctx.r))
		assert.Equal(t, []string{"in:a", "handler", "out:a", "render-in:a", "render-out:a"}, trace)
	})
}
