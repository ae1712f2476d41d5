package platform

import (
	"net/http"

	"github.com/dmitrymomot/sharedcontext/core/router"
	"github.com/dmitrymomot/sharedcontext/internal/model"
)

// Context is the request context of every API handler. It carries the
// authenticated agent once the Authenticate middleware ran.
type Context struct {
	*router.Context
	agent *model.Agent
}

func newContext(w http.ResponseWriter, r *http.Request, params map[string]string) *Context {
	return &Context{Context: router.NewContext(w, r, params)}
}

// SetAgent attaches the authenticated agent. Only the first call has effect.
func (c *Context) SetAgent(agent *model.Agent) {
	if c.agent == nil {
		c.agent = agent
	}
}

// Agent returns the authenticated agent, or nil on public routes.
func (c *Context) Agent() *model.Agent {
	return c.agent
}

// AgentID returns the authenticated agent's id, or "".
func (c *Context) AgentID() string {
	if c.agent == nil {
		return ""
	}
	return c.agent.ID
}
