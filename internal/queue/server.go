package queue

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/appshelf/appshelf/internal/config"
	"github.com/appshelf/appshelf/internal/database"
	"github.com/appshelf/appshelf/internal/filestorage"
	"github.com/appshelf/appshelf/internal/queue/handlers"
	"github.com/appshelf/appshelf/internal/usecase"
	"github.com/hibiken/asynq"
	_ "github.com/joho/godotenv/autoload"
)

const defaultWorkerConcurrency = 10

// Worker processes queued tasks with its own database and storage handles.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	repo   usecase.Repository
	logger *slog.Logger
}

func NewWorker(ctx context.Context, logger *slog.Logger) (*Worker, error) {
	logger.InfoContext(ctx, "initializing worker dependencies")

	gormDB, err := database.Open(logger)
	if err != nil {
		return nil, err
	}
	repo, err := database.New(gormDB)
	if err != nil {
		return nil, fmt.Errorf("failed to create repository: %w", err)
	}

	fsp, err := filestorage.NewFromEnv(ctx)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to create storage provider: %w", err)
	}

	// the worker never re-enqueues; exhausted tasks go to asynq's archive
	uc := usecase.New(repo, fsp, nil, nil, logger)

	workerConcurrency := defaultWorkerConcurrency
	if n, err := strconv.Atoi(os.Getenv(config.ENV_KEY_WORKER_CONCURRENCY)); err == nil && n > 0 {
		workerConcurrency = n
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     redisAddr(),
			Password: os.Getenv(config.ENV_KEY_REDIS_PASSWORD),
		},
		asynq.Config{
			Concurrency: workerConcurrency,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			Logger: asynqLogger{logger: logger},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.ErrorContext(ctx, "task failed",
					slog.String("type", task.Type()),
					slog.String("err", err.Error()),
				)
			}),
		},
	)

	h := handlers.NewHandlers(uc, logger)

	mux := asynq.NewServeMux()
	mux.HandleFunc(config.TASK_CLEANUP_ORPHANS, h.HandleCleanupOrphans)

	logger.InfoContext(ctx, "worker registered handlers",
		slog.Any("tasks", []string{config.TASK_CLEANUP_ORPHANS}),
	)

	return &Worker{
		server: srv,
		mux:    mux,
		repo:   repo,
		logger: logger,
	}, nil
}

func (w *Worker) Start() error {
	w.logger.Info("worker started")
	return w.server.Start(w.mux)
}

// Stop drains in-flight tasks and closes the database.
func (w *Worker) Stop() {
	w.logger.Info("stopping worker")
	w.server.Shutdown()

	if err := w.repo.Close(); err != nil {
		w.logger.Error("error closing database", slog.String("err", err.Error()))
	}
}
