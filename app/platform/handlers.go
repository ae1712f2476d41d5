package platform

import (
	"errors"

	"github.com/dmitrymomot/sharedcontext/core/binder"
	"github.com/dmitrymomot/sharedcontext/core/handler"
	"github.com/dmitrymomot/sharedcontext/core/response"
	"github.com/dmitrymomot/sharedcontext/internal/model"
	"github.com/dmitrymomot/sharedcontext/internal/repository"
	"github.com/dmitrymomot/sharedcontext/internal/service"
)

type pageParams struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

type listResponse[T any] struct {
	Items  []T `json:"items"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func decode(ctx *Context, v any) error {
	if err := binder.JSON()(ctx.Request(), v); err != nil {
		if errors.Is(err, binder.ErrUnsupportedMediaType) {
			return response.InvalidRequest("Content-Type must be application/json")
		}
		return response.InvalidRequest("Invalid JSON body")
	}
	return nil
}

func (a *App) registerAgent(ctx *Context) handler.Response {
	var in service.RegisterInput
	if err := decode(ctx, &in); err != nil {
		return response.Error(err)
	}
	agent, err := a.agentService.Register(ctx, in)
	if err != nil {
		return response.Error(err)
	}
	return response.Created(agent)
}

func (a *App) currentAgent(ctx *Context) handler.Response {
	profile, err := a.agentService.Get(ctx, ctx.AgentID())
	if err != nil {
		return response.Error(err)
	}
	return response.JSON(profile)
}

func (a *App) getAgent(ctx *Context) handler.Response {
	profile, err := a.agentService.Get(ctx, ctx.Param("id"))
	if err != nil {
		return response.Error(err)
	}
	return response.JSON(profile)
}

func (a *App) listAgentContributions(ctx *Context) handler.Response {
	var p pageParams
	if err := binder.Query()(ctx.Request(), &p); err != nil {
		return response.Error(response.InvalidRequest("limit and offset must be integers"))
	}
	page := service.ClampPage(repository.Page{Limit: p.Limit, Offset: p.Offset})

	items, err := a.contributionService.ListByAgent(ctx, ctx.Param("id"), page)
	if err != nil {
		return response.Error(err)
	}
	return response.JSON(listResponse[model.Contribution]{Items: items, Limit: page.Limit, Offset: page.Offset})
}

func (a *App) createContribution(ctx *Context) handler.Response {
	var in service.ContributionInput
	if err := decode(ctx, &in); err != nil {
		return response.Error(err)
	}
	c, err := a.contributionService.Create(ctx, ctx.AgentID(), in)
	if err != nil {
		return response.Error(err)
	}
	return response.Created(c)
}

func (a *App) getContribution(ctx *Context) handler.Response {
	c, err := a.contributionService.Get(ctx, ctx.Param("id"))
	if err != nil {
		return response.Error(err)
	}
	return response.JSON(c)
}

func (a *App) updateContribution(ctx *Context) handler.Response {
	var patch service.ContributionPatch
	if err := decode(ctx, &patch); err != nil {
		return response.Error(err)
	}
	c, err := a.contributionService.Update(ctx, ctx.AgentID(), ctx.Param("id"), patch)
	if err != nil {
		return response.Error(err)
	}
	return response.JSON(c)
}

func (a *App) deleteContribution(ctx *Context) handler.Response {
	if err := a.contributionService.Delete(ctx, ctx.AgentID(), ctx.Param("id")); err != nil {
		return response.Error(err)
	}
	return response.NoContent()
}

func (a *App) query(ctx *Context) handler.Response {
	var in service.QueryInput
	if err := decode(ctx, &in); err != nil {
		return response.Error(err)
	}
	res, err := a.queryService.Query(ctx, in)
	if err != nil {
		return response.Error(err)
	}
	return response.JSON(res)
}

func (a *App) submitFeedback(ctx *Context) handler.Response {
	var in service.FeedbackInput
	if err := decode(ctx, &in); err != nil {
		return response.Error(err)
	}
	f, err := a.feedbackService.Submit(ctx, ctx.AgentID(), in)
	if err != nil {
		return response.Error(err)
	}
	return response.Created(f)
}

func (a *App) stats(ctx *Context) handler.Response {
	st, err := a.statsService.Stats(ctx)
	if err != nil {
		return response.Error(err)
	}
	return response.JSON(st)
}
