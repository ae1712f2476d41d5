// Package router provides a generic HTTP router whose handlers receive a
// typed request context instead of (http.ResponseWriter, *http.Request).
//
// Path matching is delegated to chi. Handler chains are composed once when a
// route is registered, from the middlewares in scope (Use, With, Group and
// Route), so there is no per-request composition cost.
//
//	r := router.New[*platform.Context](
//		router.WithContextFactory(platform.NewContext),
//		router.WithErrorHandler(response.JSONErrorHandler[*platform.Context]),
//	)
//	r.Route("/api/v1", func(r router.Router[*platform.Context]) {
//		r.With(auth).Get("/agents/me", getMe)
//	})
//
// A handler returns a handler.Response. If rendering it fails, or no route
// matches, the error handler receives the error. Panics are recovered, logged
// with their stack and passed to the error handler as PanicError.
package router
