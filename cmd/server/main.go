package main

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/plumekit/plume/internal/app"
	"github.com/plumekit/plume/internal/config"
	"github.com/plumekit/plume/internal/logger"
	"github.com/plumekit/plume/internal/routes"
)

func main() {
	cfg := config.Load()

	logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)

	app, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		panic(err)
	}
	defer func() {
		closeErr := app.Close()
		if closeErr != nil {
			slog.Error("failed to close app", "error", closeErr)
		}
	}()

	// Background sweeper for expired durable cache rows. Reads never depend
	// on it; it just keeps the table small.
	if cfg.CacheSweep > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go app.CacheService.RunSweeper(ctx, cfg.CacheSweep)
	}

	handler := routes.SetupRoutes(app)
	slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv, "url", "http://localhost:"+cfg.Port)

	err = http.ListenAndServe(":"+cfg.Port, handler)
	if err != nil {
		slog.Error("server failed", "error", err)
		panic(err)
	}
}
