// Package logger builds slog loggers and provides attribute helpers with
// consistent key names across the service.
//
//	log := logger.New(
//		logger.WithProduction("sharedcontext"),
//		logger.WithContextExtractors(middleware.RequestIDExtractor),
//	)
//	log.InfoContext(ctx, "contribution created",
//		logger.Component("contributions"),
//		logger.AgentID(agent.ID),
//	)
//
// Helpers return an empty slog.Attr for nil errors and empty identifiers,
// which slog drops.
package logger
