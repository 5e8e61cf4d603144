package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/appshelf/appshelf/internal/usecase"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCleaner struct {
	calls [][]string
	fail  map[string]bool
}

func (f *fakeCleaner) CleanupOrphans(_ context.Context, keys []string) (usecase.DeleteOutcomes, error) {
	f.calls = append(f.calls, keys)
	out := make(usecase.DeleteOutcomes, len(keys))
	var failed bool
	for i, k := range keys {
		out[i] = usecase.DeleteOutcome{Key: k}
		if f.fail[k] {
			out[i].Err = errors.New("store unavailable")
			failed = true
		}
	}
	if failed {
		return out, errors.New("cleanup failed")
	}
	return out, nil
}

func newTask(t *testing.T, p CleanupOrphansPayload) *asynq.Task {
	t.Helper()
	b, err := json.Marshal(p)
	require.NoError(t, err)
	return asynq.NewTask("cleanup:orphans", b)
}

func TestHandleCleanupOrphans(t *testing.T) {
	c := &fakeCleaner{}
	h := NewHandlers(c, nil)

	err := h.HandleCleanupOrphans(context.Background(), newTask(t, CleanupOrphansPayload{
		Keys:   []string{"apps/a/icon/1.png", "apps/a/screenshots/2.png"},
		Reason: usecase.ReasonSuperseded,
	}))
	require.NoError(t, err)
	require.Len(t, c.calls, 1)
	assert.Equal(t, []string{"apps/a/icon/1.png", "apps/a/screenshots/2.png"}, c.calls[0])
}

func TestHandleCleanupOrphansPartialFailureIsRetried(t *testing.T) {
	c := &fakeCleaner{fail: map[string]bool{"k2": true}}
	h := NewHandlers(c, nil)

	err := h.HandleCleanupOrphans(context.Background(), newTask(t, CleanupOrphansPayload{
		Keys:   []string{"k1", "k2"},
		Reason: usecase.ReasonOwnerDeleted,
	}))
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}

func TestHandleCleanupOrphansBadPayload(t *testing.T) {
	c := &fakeCleaner{}
	h := NewHandlers(c, nil)

	err := h.HandleCleanupOrphans(context.Background(), asynq.NewTask("cleanup:orphans", []byte("{")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))

	err = h.HandleCleanupOrphans(context.Background(), newTask(t, CleanupOrphansPayload{Reason: "x"}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
	assert.Empty(t, c.calls)
}
