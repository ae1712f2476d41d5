package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrymomot/sharedcontext/core/handler"
	"github.com/dmitrymomot/sharedcontext/core/response"
	"github.com/dmitrymomot/sharedcontext/internal/model"
)

type agentIDContextKey struct{}

// Authenticator resolves an API key to its agent.
// Unknown keys must yield an error that maps to 401.
type Authenticator interface {
	Authenticate(ctx context.Context, apiKey string) (*model.Agent, error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(ctx context.Context, apiKey string) (*model.Agent, error)

func (f AuthenticatorFunc) Authenticate(ctx context.Context, apiKey string) (*model.Agent, error) {
	return f(ctx, apiKey)
}

// AgentContext is a request context able to carry the authenticated agent.
type AgentContext interface {
	handler.Context
	SetAgent(agent *model.Agent)
}

// Authenticate resolves the caller from "Authorization: Bearer <key>" or
// "X-API-Key: <key>" and attaches the agent to the context. A missing key
// short-circuits with 401 UNAUTHORIZED; lookup errors are returned as-is so
// the error mapper decides their status.
func Authenticate[C AgentContext](auth Authenticator) handler.Middleware[C] {
	if auth == nil {
		panic("authenticate middleware: authenticator is required")
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			key := APIKey(ctx.Request())
			if key == "" {
				return response.Error(response.ErrUnauthorized)
			}

			agent, err := auth.Authenticate(ctx, key)
			if err != nil {
				return response.Error(err)
			}
			if agent == nil {
				return response.Error(response.ErrUnauthorized)
			}

			ctx.SetAgent(agent)
			ctx.SetValue(agentIDContextKey{}, agent.ID)
			return next(ctx)
		}
	}
}

// APIKey extracts the caller's key. The Bearer scheme is matched
// case-insensitively and takes precedence over X-API-Key.
func APIKey(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			if token = strings.TrimSpace(token); token != "" {
				return token
			}
		}
	}
	return strings.TrimSpace(r.Header.Get("X-API-Key"))
}

// GetAgentID returns the id of the authenticated agent, if any.
func GetAgentID(ctx handler.Context) (string, bool) {
	id, ok := ctx.Value(agentIDContextKey{}).(string)
	return id, ok && id != ""
}
