package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sharedcontext/core/handler"
	"github.com/dmitrymomot/sharedcontext/core/response"
	"github.com/dmitrymomot/sharedcontext/core/router"
	"github.com/dmitrymomot/sharedcontext/internal/model"
	"github.com/dmitrymomot/sharedcontext/middleware"
)

type agentCtx struct {
	*router.Context
	agent *model.Agent
}

func (c *agentCtx) SetAgent(a *model.Agent) {
	if c.agent == nil {
		c.agent = a
	}
}

func newAgentRouter() router.Router[*agentCtx] {
	return router.New[*agentCtx](
		router.WithContextFactory(func(w http.ResponseWriter, r *http.Request, params map[string]string) *agentCtx {
			return &agentCtx{Context: router.NewContext(w, r, params)}
		}),
		router.WithErrorHandler(response.JSONErrorHandler[*agentCtx]),
	)
}

var keyring = middleware.AuthenticatorFunc(func(_ context.Context, key string) (*model.Agent, error) {
	switch key {
	case "sc_key_good":
		return &model.Agent{ID: "bot-1a2b3c4d", DisplayName: "Bot"}, nil
	case "sc_key_broken":
		return nil, errors.New("db unavailable")
	}
	return nil, response.ErrUnauthorized
})

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		headers map[string]string
		status  int
		code    string
	}{
		{name: "bearer", headers: map[string]string{"Authorization": "Bearer sc_key_good"}, status: http.StatusOK},
		{name: "bearer scheme is case insensitive", headers: map[string]string{"Authorization": "bearer sc_key_good"}, status: http.StatusOK},
		{name: "api key header", headers: map[string]string{"X-API-Key": "sc_key_good"}, status: http.StatusOK},
		{name: "non bearer authorization falls back", headers: map[string]string{"Authorization": "Basic abc", "X-API-Key": "sc_key_good"}, status: http.StatusOK},
		{name: "missing", status: http.StatusUnauthorized, code: response.CodeUnauthorized},
		{name: "empty bearer", headers: map[string]string{"Authorization": "Bearer  "}, status: http.StatusUnauthorized, code: response.CodeUnauthorized},
		{name: "unknown key", headers: map[string]string{"X-API-Key": "sc_key_nope"}, status: http.StatusUnauthorized, code: response.CodeUnauthorized},
		{name: "lookup failure", headers: map[string]string{"X-API-Key": "sc_key_broken"}, status: http.StatusInternalServerError, code: response.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := newAgentRouter()
			r.Use(
				middleware.ErrorMapping[*agentCtx](),
				middleware.Authenticate[*agentCtx](keyring),
			)
			r.Get("/agents/me", func(ctx *agentCtx) handler.Response {
				require.NotNil(t, ctx.agent)
				id, found := middleware.GetAgentID(ctx)
				require.True(t, found)
				assert.Equal(t, ctx.agent.ID, id)
				return response.JSON(ctx.agent)
			})

			req := httptest.NewRequest(http.MethodGet, "/agents/me", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.code != "" {
				assert.Contains(t, rec.Body.String(), `"code":"`+tt.code+`"`)
			} else {
				assert.Contains(t, rec.Body.String(), `"id":"bot-1a2b3c4d"`)
			}
		})
	}
}

func TestAuthenticate_NilAuthenticatorPanics(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { middleware.Authenticate[*agentCtx](nil) })
}

func TestAPIKey(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, middleware.APIKey(req))

	req.Header.Set("X-API-Key", " k2 ")
	assert.Equal(t, "k2", middleware.APIKey(req))

	req.Header.Set("Authorization", "Bearer k1")
	assert.Equal(t, "k1", middleware.APIKey(req))
}
