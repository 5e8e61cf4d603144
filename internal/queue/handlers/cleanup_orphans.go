package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
)

type CleanupOrphansPayload struct {
	Keys   []string `json:"keys"`
	Reason string   `json:"reason"`
}

// HandleCleanupOrphans retries object deletes. Returning an error hands the
// task back to asynq's retry schedule; malformed payloads are never retried.
func (h *Handlers) HandleCleanupOrphans(ctx context.Context, task *asynq.Task) error {
	var payload CleanupOrphansPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		h.logger.ErrorContext(ctx, "invalid cleanup payload", slog.String("err", err.Error()))
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	if len(payload.Keys) == 0 {
		return fmt.Errorf("no keys in payload: %w", asynq.SkipRetry)
	}

	outcomes, err := h.cleaner.CleanupOrphans(ctx, payload.Keys)
	if err != nil {
		h.logger.WarnContext(ctx, "orphan cleanup incomplete",
			slog.String("reason", payload.Reason),
			slog.Int("deleted", outcomes.Succeeded()),
			slog.Any("failed", outcomes.FailedKeys()),
		)
		if retried, ok := asynq.GetRetryCount(ctx); ok {
			if maxRetry, ok := asynq.GetMaxRetry(ctx); ok && retried >= maxRetry {
				h.logger.ErrorContext(ctx, "giving up on orphaned objects",
					slog.Any("keys", outcomes.FailedKeys()),
				)
			}
		}
		return err
	}

	h.logger.InfoContext(ctx, "orphan cleanup completed",
		slog.String("reason", payload.Reason),
		slog.Int("deleted", outcomes.Succeeded()),
	)
	return nil
}

