package handlers

import (
	"context"
	"log/slog"

	"github.com/appshelf/appshelf/internal/usecase"
)

type OrphanCleaner interface {
	CleanupOrphans(ctx context.Context, keys []string) (usecase.DeleteOutcomes, error)
}

// Handlers contains all queue task handlers
type Handlers struct {
	cleaner OrphanCleaner
	logger  *slog.Logger
}

func NewHandlers(c OrphanCleaner, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		cleaner: c,
		logger:  logger,
	}
}
