package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

func New(
	repo Repository,
	fsp FileStorageProvider,
	oq OrphanQueue,
	m Metrics,
	logger *slog.Logger,
) Usecase {
	if m == nil {
		m = noopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return Usecase{
		repo:                repo,
		fileStorageProvider: fsp,
		orphanQueue:         oq,
		metrics:             m,
		logger:              logger,
	}
}

type Repository interface {
	Health() map[string]string
	Close() error

	GetAppByID(context.Context, uuid.UUID) (App, error)

	GetAppAssetByAppID(context.Context, uuid.UUID) (AppAsset, error)
	CreateAppAsset(context.Context, AppAsset) (AppAsset, error)
	UpdateAppAsset(context.Context, AppAsset) (AppAsset, error)
	DeleteAppAsset(context.Context, uuid.UUID) error

	ListProfileImages(context.Context, string) ([]ProfileImage, error)
	GetProfileImageByUserID(context.Context, string) (ProfileImage, error)
	CreateProfileImage(context.Context, ProfileImage) (ProfileImage, error)
	UpdateProfileImage(context.Context, ProfileImage) (ProfileImage, error)
}

// FileStorageProvider is the object store gateway. DeleteObject must treat a
// missing key as success; HeadObject reports false, nil for a missing key.
type FileStorageProvider interface {
	PutObject(ctx context.Context, key string, f File) (StoredObject, error)
	DeleteObject(ctx context.Context, key string) error
	GetPresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	HeadObject(ctx context.Context, key string) (bool, error)
}

// OrphanQueue receives keys whose best-effort delete failed so they can be
// cleaned up out of band.
type OrphanQueue interface {
	EnqueueOrphans(ctx context.Context, keys []string, reason string) error
}

type Metrics interface {
	ObjectUploaded(slot string)
	ObjectsDeleted(reason string, n int)
	ObjectsOrphaned(reason string, n int)
	PersistenceFailed(kind string)
}

type noopMetrics struct{}

func (noopMetrics) ObjectUploaded(string) {}
func (noopMetrics) ObjectsDeleted(string, int) {}
func (noopMetrics) ObjectsOrphaned(string, int) {}
func (noopMetrics) PersistenceFailed(string) {}

type Usecase struct {
	repo                Repository
	fileStorageProvider FileStorageProvider
	orphanQueue         OrphanQueue
	metrics             Metrics
	logger              *slog.Logger
}

func (u Usecase) Health() map[string]string {
	return u.repo.Health()
}

func (u Usecase) Close() error {
	return u.repo.Close()
}
