package cmd

import (
	"context"

	"github.com/templui/folio/internal/app"
	"github.com/templui/folio/internal/config"
	"github.com/templui/folio/internal/logger"
)

// openApp loads config and wires the application for a one-shot command.
func openApp(ctx context.Context, skipMigrations bool) (*app.App, error) {
	cfg := config.Load()
	logger.Init(logger.Options{
		Development: cfg.IsDevelopment(),
		Level:       cfg.LogLevel,
		SentryDSN:   cfg.SentryDSN,
		Environment: cfg.AppEnv,
	})
	return app.New(ctx, cfg, skipMigrations)
}
