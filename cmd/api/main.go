package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/appshelf/appshelf/internal/config"
	"github.com/appshelf/appshelf/internal/server"
	"github.com/appshelf/appshelf/internal/telemetry"
)

func main() {
	logger := newLogger()
	slog.SetDefault(logger)
	ctx := context.Background()

	shutdownTelemetry, err := telemetry.Init(ctx, "appshelf-api")
	if err != nil {
		logger.Error("Failed to init telemetry", slog.String("err", err.Error()))
		os.Exit(1)
	}

	app, err := server.NewApp(ctx, logger)
	if err != nil {
		logger.Error("Failed to create app", slog.String("err", err.Error()))
		os.Exit(1)
	}

	go func() {
		logger.Info("API server starting", slog.String("addr", app.Addr()))
		if err := app.ListenAndServe(); err != nil {
			logger.Error("Server error", slog.String("err", err.Error()))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down API server...")

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)

	code := 0
	if err := app.Shutdown(sctx); err != nil {
		logger.Error("Shutdown error", slog.String("err", err.Error()))
		code = 1
	}
	if err := shutdownTelemetry(sctx); err != nil {
		logger.Warn("Telemetry shutdown error", slog.String("err", err.Error()))
	}
	cancel()

	logger.Info("API server exited properly")
	os.Exit(code)
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	switch os.Getenv(config.ENV_KEY_LOG_LEVEL) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	}

	jsonHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(telemetry.NewTraceHandler(jsonHandler))
}
