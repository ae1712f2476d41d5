// Package middleware provides the request pipeline stages used by every API
// endpoint. Each stage is a generic handler.Middleware, composed once at
// route registration.
//
// The endpoint order is fixed:
//
//	handler.Compose(h,
//		middleware.BodyLimitWithSize[C](cfg.BodyLimit), // 413 before anything is parsed
//		middleware.LoggingWithLogger[C](log),           // access log with the final status
//		middleware.ErrorMappingWithLogger[C](log),      // the only place errors become envelopes
//		middleware.Authenticate[C](agents),             // Bearer or X-API-Key
//		middleware.RateLimit[C](rateCfg),               // fixed windows, 429 with retryAfter
//		middleware.ValidateBody[C](schema),             // 400 with details.field
//	)
//
// Context helpers (GetRequestID, GetClientIP, GetAgentID) read values stored
// by earlier stages.
//
// Rate limit responses carry X-RateLimit-Limit, X-RateLimit-Remaining and
// X-RateLimit-Reset; rejected requests also get Retry-After.
package middleware
