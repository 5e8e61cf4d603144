package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Reasons attached to deletes and orphan reports.
const (
	ReasonSuperseded    = "superseded"
	ReasonAbortedUpload = "aborted_upload"
	ReasonOwnerDeleted  = "owner_deleted"
	ReasonRetry         = "retry"
)

type DeleteOutcome struct {
	Key string
	Err error
}

func (o DeleteOutcome) OK() bool {
	return o.Err == nil
}

type DeleteOutcomes []DeleteOutcome

func (o DeleteOutcomes) Succeeded() int {
	var n int
	for _, v := range o {
		if v.OK() {
			n++
		}
	}
	return n
}

func (o DeleteOutcomes) FailedKeys() []string {
	var keys []string
	for _, v := range o {
		if !v.OK() {
			keys = append(keys, v.Key)
		}
	}
	return keys
}

// deleteObjects issues one delete per key concurrently and never aborts the
// batch; every key gets exactly one attempt.
func (u Usecase) deleteObjects(ctx context.Context, keys []string) DeleteOutcomes {
	if len(keys) == 0 {
		return nil
	}

	outcomes := make(DeleteOutcomes, len(keys))

	var wg sync.WaitGroup
	for i, key := range keys {
		wg.Go(func() {
			outcomes[i] = DeleteOutcome{
				Key: key,
				Err: u.fileStorageProvider.DeleteObject(ctx, key),
			}
		})
	}
	wg.Wait()

	return outcomes
}

// reportOrphans logs every failed delete, counts it, and hands the keys to
// the orphan queue when one is configured.
func (u Usecase) reportOrphans(ctx context.Context, outcomes DeleteOutcomes, reason string, attrs ...any) {
	if n := outcomes.Succeeded(); n > 0 {
		u.metrics.ObjectsDeleted(reason, n)
	}

	failed := outcomes.FailedKeys()
	if len(failed) == 0 {
		return
	}

	for _, o := range outcomes {
		if o.OK() {
			continue
		}
		args := append([]any{
			slog.String("key", o.Key),
			slog.String("reason", reason),
			slog.String("err", o.Err.Error()),
		}, attrs...)
		u.logger.WarnContext(ctx, "could not delete object", args...)
	}
	u.metrics.ObjectsOrphaned(reason, len(failed))

	if u.orphanQueue == nil {
		return
	}
	if err := u.orphanQueue.EnqueueOrphans(ctx, failed, reason); err != nil {
		u.logger.ErrorContext(ctx, "could not enqueue orphaned objects",
			slog.Int("count", len(failed)),
			slog.String("reason", reason),
			slog.String("err", err.Error()),
		)
	}
}

// CleanupOrphans re-attempts deletes for keys previously reported as
// orphaned. It is driven by the queue worker; an error makes the task
// eligible for the queue's own retry policy.
func (u Usecase) CleanupOrphans(ctx context.Context, keys []string) (DeleteOutcomes, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	outcomes := u.deleteObjects(ctx, keys)
	if n := outcomes.Succeeded(); n > 0 {
		u.metrics.ObjectsDeleted(ReasonRetry, n)
	}

	failed := outcomes.FailedKeys()
	if len(failed) == 0 {
		return outcomes, nil
	}

	errs := make([]error, 0, len(failed))
	for _, o := range outcomes {
		if !o.OK() {
			errs = append(errs, fmt.Errorf("%s: %w", o.Key, o.Err))
		}
	}
	return outcomes, fmt.Errorf("cleanup of %d/%d object(s) failed: %w",
		len(failed), len(keys), errors.Join(errs...))
}
