package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/appshelf/appshelf/internal/config"
	"github.com/appshelf/appshelf/internal/queue"
	"github.com/appshelf/appshelf/internal/telemetry"
)

func main() {
	logger := newLogger()
	ctx := context.Background()

	shutdownTelemetry, err := telemetry.Init(ctx, "appshelf-worker")
	if err != nil {
		logger.Error("Failed to init telemetry", slog.String("err", err.Error()))
		os.Exit(1)
	}

	worker, err := queue.NewWorker(ctx, logger)
	if err != nil {
		logger.Error("Failed to create worker", slog.String("err", err.Error()))
		os.Exit(1)
	}

	go func() {
		logger.Info("Starting Asynq worker...")
		if err := worker.Start(); err != nil {
			logger.Error("Worker error", slog.String("err", err.Error()))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	worker.Stop()

	tctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTelemetry(tctx); err != nil {
		logger.Warn("Telemetry shutdown error", slog.String("err", err.Error()))
	}
	logger.Info("Worker exited properly")
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
