// Package handler defines the request processing primitives shared by the
// router, the middleware package and the application handlers.
//
// A handler receives a typed request context and returns a Response, a
// deferred render function. Middleware decorate handlers and are composed once
// at route registration time:
//
//	create := handler.Compose(
//		contributions.Create,
//		middleware.BodyLimit[*platform.Context](51200),
//		middleware.Logging[*platform.Context](log),
//		middleware.ErrorMapping[*platform.Context](log),
//		middleware.Authenticate[*platform.Context](agents),
//		middleware.RateLimit[*platform.Context](store, presets.CreateContribution),
//	)
//
// Middlewares run outside-in in the order they are declared, and each one may
// short-circuit by returning its own Response instead of calling next. Code
// that runs after next returns, or inside a wrapping Response, executes in
// reverse order on the way out.
//
// Errors travel as return values: a handler returns response.Error(err) and
// the error-mapping middleware turns it into the JSON error envelope.
package handler
