package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/appshelf/appshelf/internal/config"
	"github.com/appshelf/appshelf/internal/queue/handlers"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

const (
	cleanupMaxRetry = 10
	cleanupDelay    = time.Minute
)

// Client wraps asynq.Client for enqueuing tasks
type Client struct {
	client *asynq.Client
	rdb    redis.UniversalClient
	logger *slog.Logger
}

// NewClient enqueues over rdb; closing the Client leaves rdb open.
func NewClient(rdb redis.UniversalClient, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		client: asynq.NewClientFromRedisClient(rdb),
		rdb:    rdb,
		logger: logger,
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// EnqueueOrphans schedules a delayed cleanup task for keys whose delete failed.
func (c *Client) EnqueueOrphans(ctx context.Context, keys []string, reason string) error {
	if len(keys) == 0 {
		return nil
	}

	task, err := newCleanupTask(keys, reason)
	if err != nil {
		return err
	}

	info, err := c.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	c.logger.InfoContext(ctx, "enqueued orphan cleanup",
		slog.String("task_id", info.ID),
		slog.String("queue", info.Queue),
		slog.Int("count", len(keys)),
		slog.String("reason", reason),
	)
	return nil
}

func newCleanupTask(keys []string, reason string) (*asynq.Task, error) {
	b, err := json.Marshal(handlers.CleanupOrphansPayload{
		Keys:   keys,
		Reason: reason,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task payload: %w", err)
	}
	return asynq.NewTask(config.TASK_CLEANUP_ORPHANS, b,
		asynq.Queue("low"),
		asynq.MaxRetry(cleanupMaxRetry),
		asynq.ProcessIn(cleanupDelay),
	), nil
}
