package queue

import (
	"fmt"
	"os"

	"github.com/appshelf/appshelf/internal/config"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
)

func redisAddr() string {
	return fmt.Sprintf("%s:%s",
		os.Getenv(config.ENV_KEY_REDIS_HOST),
		os.Getenv(config.ENV_KEY_REDIS_PORT),
	)
}

// NewRedisClient returns a traced and metered redis client shared by the
// task client and health checks.
func NewRedisClient() (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     redisAddr(),
		Password: os.Getenv(config.ENV_KEY_REDIS_PASSWORD),
	})
	if err := redisotel.InstrumentTracing(rdb); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis tracing: %w", err)
	}
	if err := redisotel.InstrumentMetrics(rdb); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis metrics: %w", err)
	}
	return rdb, nil
}
