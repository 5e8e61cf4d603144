package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupOrphans(t *testing.T) {
	h := newHarness()
	h.store.deleteErr = func(key string) error {
		if key == "b" {
			return errors.New("still locked")
		}
		return nil
	}

	outcomes, err := h.uc.CleanupOrphans(context.Background(), []string{"a", "b", "c"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1/3")
	assert.Equal(t, 2, outcomes.Succeeded())
	assert.Equal(t, []string{"b"}, outcomes.FailedKeys())
	assert.Equal(t, 2, h.metrics.deleted[ReasonRetry])
	// retries go back through the queue's own policy, not the orphan queue
	assert.Empty(t, h.queue.keys)

	h.store.deleteErr = nil
	outcomes, err = h.uc.CleanupOrphans(context.Background(), []string{"b"})
	require.NoError(t, err)
	assert.Equal(t, 1, outcomes.Succeeded())
}

func TestCleanupOrphansEmpty(t *testing.T) {
	h := newHarness()

	outcomes, err := h.uc.CleanupOrphans(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, outcomes)
	assert.Empty(t, h.store.deletes)
}

func TestReportOrphansEnqueueFailureIsLogged(t *testing.T) {
	h := newHarness()
	h.queue.err = errors.New("redis down")

	h.uc.reportOrphans(context.Background(), DeleteOutcomes{
		{Key: "a"},
		{Key: "b", Err: errors.New("denied")},
	}, ReasonSuperseded)

	assert.Equal(t, []string{"b"}, h.queue.keys)
	assert.Equal(t, 1, h.metrics.deleted[ReasonSuperseded])
	assert.Equal(t, 1, h.metrics.orphaned[ReasonSuperseded])
}
