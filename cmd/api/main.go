// Command api serves the knowledge-sharing HTTP API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/sharedcontext/app/platform"
	"github.com/dmitrymomot/sharedcontext/core/config"
	"github.com/dmitrymomot/sharedcontext/core/logger"
	"github.com/dmitrymomot/sharedcontext/middleware"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg platform.Config
	config.MustLoad(&cfg)

	logOpts := []logger.Option{
		logger.WithLevelString(cfg.LogLevel),
		logger.WithAttr(logger.Key("service", cfg.AppName), logger.Key("env", cfg.Env)),
		logger.WithContextExtractors(middleware.RequestIDExtractor),
	}
	if cfg.LogFormat == "text" {
		logOpts = append(logOpts, logger.WithTextFormatter())
	} else {
		logOpts = append(logOpts, logger.WithJSONFormatter())
	}
	log := logger.New(logOpts...)
	logger.SetAsDefault(log)

	app, err := platform.New(ctx, cfg, platform.WithLogger(log))
	if err != nil {
		log.Error("Failed to initialize application", logger.Component("app"), logger.Error(err))
		os.Exit(1)
	}
	defer app.Close()

	log.Info("Starting API",
		logger.Component("app"),
		logger.Key("store_backend", cfg.StoreBackend),
		logger.Key("embedding_provider", cfg.Embedding.Provider),
		logger.Key("addr", cfg.Server.Addr))

	if err := app.Run(ctx); err != nil {
		log.Error("Server stopped with error", logger.Component("app"), logger.Error(err))
		app.Close()
		os.Exit(1)
	}

	log.Info("Application stopped")
}
