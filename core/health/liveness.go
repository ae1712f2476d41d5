package health

import (
	"github.com/dmitrymomot/sharedcontext/core/handler"
	"github.com/dmitrymomot/sharedcontext/core/response"
)

// Liveness reports that the process is up. It never checks dependencies.
//
//	r.Get("/health/live", health.Liveness[*platform.Context])
func Liveness[C handler.Context](C) handler.Response {
	return response.JSON(map[string]string{"status": "alive"})
}
