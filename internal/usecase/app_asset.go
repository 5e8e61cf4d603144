package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/appshelf/appshelf/internal/config"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type uploadJob struct {
	slot string
	key  string
	file File
}

// UpsertAppAssets uploads the supplied slots for an app and replaces what
// they held before. The first call for an app must supply every slot.
//
// New objects are uploaded before anything else changes. The record is then
// saved, and only after the save are the superseded objects deleted, best
// effort. A failed upload leaves the record and its objects untouched.
func (u Usecase) UpsertAppAssets(ctx context.Context, appID uuid.UUID, actorID string, slots AssetSlots) (AppAsset, error) {
	if err := slots.Validate(); err != nil {
		return AppAsset{}, err
	}

	if _, err := u.AuthorizeMutation(ctx, appID, actorID); err != nil {
		return AppAsset{}, err
	}

	current, exists, err := u.findAppAsset(ctx, appID)
	if err != nil {
		return AppAsset{}, err
	}
	if !exists {
		if err := slots.requireAll(); err != nil {
			return AppAsset{}, err
		}
		// not persisted until the first save completes
		current = AppAsset{AppID: appID}
	}

	jobs := slotJobs(appID, slots)
	stored, err := u.uploadAll(ctx, appID, jobs)
	if err != nil {
		return AppAsset{}, err
	}

	var (
		next       = current.clone()
		superseded []string
		i          int
	)
	if len(slots.Icon) > 0 {
		if !current.Icon.IsZero() {
			superseded = append(superseded, current.Icon.Key)
		}
		next.Icon = stored[i]
		next.IconContentType = slots.Icon[0].ContentType
		next.IconColors = u.iconColors(ctx, appID, slots.Icon[0])
		i++
	}
	if len(slots.Binary) > 0 {
		if !current.Binary.IsZero() {
			superseded = append(superseded, current.Binary.Key)
		}
		next.Binary = stored[i]
		next.BinarySize = int64(len(slots.Binary[0].Data))
		next.BinaryContentType = slots.Binary[0].ContentType
		i++
	}
	if len(slots.Screenshots) > 0 {
		// full replace: every previous screenshot goes, whatever the new count
		for _, s := range current.Screenshots {
			if !s.IsZero() {
				superseded = append(superseded, s.Key)
			}
		}
		next.Screenshots = append([]StoredObject(nil), stored[i:]...)
	}

	now := time.Now()
	next.UpdatedAt = now

	var saved AppAsset
	if exists {
		saved, err = u.repo.UpdateAppAsset(ctx, next)
	} else {
		next.CreatedAt = now
		saved, err = u.repo.CreateAppAsset(ctx, next)
	}
	if err != nil {
		keys := make([]string, 0, len(stored))
		for _, o := range stored {
			keys = append(keys, o.Key)
		}
		u.metrics.PersistenceFailed("app_asset")
		u.logger.ErrorContext(ctx, "app assets uploaded but record not saved",
			slog.String("app_id", appID.String()),
			slog.Any("keys", keys),
			slog.String("err", err.Error()),
		)
		return AppAsset{}, ErrPersistenceFailedAfterUpload{Keys: keys, Err: err}
	}

	outcomes := u.deleteObjects(ctx, superseded)
	u.reportOrphans(ctx, outcomes, ReasonSuperseded, slog.String("app_id", appID.String()))

	return saved, nil
}

// slotJobs flattens the supplied slots in icon, binary, screenshots order.
// Screenshot order is display order and is preserved.
func slotJobs(appID uuid.UUID, slots AssetSlots) []uploadJob {
	jobs := make([]uploadJob, 0, slots.Count())
	add := func(slot string, files []File) {
		for _, f := range files {
			jobs = append(jobs, uploadJob{
				slot: slot,
				key:  appAssetKey(appID, slot, f),
				file: f,
			})
		}
	}
	add(config.SLOT_ICON, slots.Icon)
	add(config.SLOT_BINARY, slots.Binary)
	add(config.SLOT_SCREENSHOTS, slots.Screenshots)
	return jobs
}

// uploadAll puts every job concurrently. If any put fails, the objects this
// call already stored are deleted best effort and ErrUploadFailed is
// returned.
func (u Usecase) uploadAll(ctx context.Context, appID uuid.UUID, jobs []uploadJob) ([]StoredObject, error) {
	stored := make([]StoredObject, len(jobs))

	// siblings are not cancelled on failure so every stored object is known
	// to the cleanup below
	var g errgroup.Group
	for i, job := range jobs {
		g.Go(func() error {
			obj, err := u.fileStorageProvider.PutObject(ctx, job.key, job.file)
			if err != nil {
				return ErrUploadFailed{Slot: job.slot, Err: err}
			}
			if obj.Key == "" || obj.Location == "" {
				if obj.Key != "" {
					stored[i] = obj
				}
				return ErrUploadFailed{Slot: job.slot, Err: errors.New("object store returned no location or key")}
			}
			stored[i] = obj
			u.metrics.ObjectUploaded(job.slot)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		var keys []string
		for _, o := range stored {
			if !o.IsZero() {
				keys = append(keys, o.Key)
			}
		}
		outcomes := u.deleteObjects(ctx, keys)
		u.reportOrphans(ctx, outcomes, ReasonAbortedUpload, slog.String("app_id", appID.String()))
		return nil, err
	}

	return stored, nil
}

func (u Usecase) iconColors(ctx context.Context, appID uuid.UUID, f File) []byte {
	colors, err := ExtractColors(f.Data)
	if err != nil {
		u.logger.DebugContext(ctx, "icon colors not extracted",
			slog.String("app_id", appID.String()),
			slog.String("err", err.Error()),
		)
		return nil
	}
	return colors
}

func (u Usecase) findAppAsset(ctx context.Context, appID uuid.UUID) (AppAsset, bool, error) {
	asset, err := u.repo.GetAppAssetByAppID(ctx, appID)
	if err != nil {
		var nf ErrNotFound
		if errors.As(err, &nf) {
			return AppAsset{}, false, nil
		}
		return AppAsset{}, false, err
	}
	return asset, true, nil
}

type DeleteAppAssetsResult struct {
	Attempted int
	Deleted   int
	Failed    []string
}

// DeleteAppAssets removes every object referenced by an app's asset record
// and then the record itself. Individual delete failures are logged and do
// not stop the batch or the record removal.
func (u Usecase) DeleteAppAssets(ctx context.Context, appID uuid.UUID, actorID string) (DeleteAppAssetsResult, error) {
	if _, err := u.AuthorizeMutation(ctx, appID, actorID); err != nil {
		return DeleteAppAssetsResult{}, err
	}

	asset, exists, err := u.findAppAsset(ctx, appID)
	if err != nil {
		return DeleteAppAssetsResult{}, err
	}
	if !exists {
		u.logger.InfoContext(ctx, "no app assets to delete", slog.String("app_id", appID.String()))
		return DeleteAppAssetsResult{}, nil
	}

	keys := asset.Keys()
	outcomes := u.deleteObjects(ctx, keys)
	u.reportOrphans(ctx, outcomes, ReasonOwnerDeleted, slog.String("app_id", appID.String()))

	u.logger.InfoContext(ctx, "app asset objects deleted",
		slog.String("app_id", appID.String()),
		slog.Int("attempted", len(keys)),
		slog.Int("deleted", outcomes.Succeeded()),
	)

	if err := u.repo.DeleteAppAsset(ctx, asset.ID); err != nil {
		return DeleteAppAssetsResult{}, err
	}

	return DeleteAppAssetsResult{
		Attempted: len(keys),
		Deleted:   outcomes.Succeeded(),
		Failed:    outcomes.FailedKeys(),
	}, nil
}

// GetAppAssets resolves every stored key of an app's assets to a presigned
// URL. Keys are never returned. Screenshots whose URL could not be minted
// are left out.
func (u Usecase) GetAppAssets(ctx context.Context, appID uuid.UUID) (AppAssetURLs, error) {
	asset, err := u.repo.GetAppAssetByAppID(ctx, appID)
	if err != nil {
		return AppAssetURLs{}, err
	}

	var (
		wg          sync.WaitGroup
		iconURL     *string
		binaryURL   *string
		screenshots = make([]*string, len(asset.Screenshots))
	)
	wg.Go(func() { iconURL = u.presign(ctx, asset.Icon.Key) })
	wg.Go(func() { binaryURL = u.presign(ctx, asset.Binary.Key) })
	for i, s := range asset.Screenshots {
		wg.Go(func() { screenshots[i] = u.presign(ctx, s.Key) })
	}
	wg.Wait()

	urls := make([]string, 0, len(screenshots))
	for _, s := range screenshots {
		if s != nil {
			urls = append(urls, *s)
		}
	}

	return AppAssetURLs{
		AppID:          asset.AppID,
		IconURL:        iconURL,
		IconColors:     asset.IconColors,
		BinaryURL:      binaryURL,
		BinarySize:     asset.BinarySize,
		ScreenshotURLs: urls,
		UploadedAt:     asset.UpdatedAt,
	}, nil
}

// presign returns nil for an empty key or when the gateway fails.
func (u Usecase) presign(ctx context.Context, key string) *string {
	if key == "" {
		return nil
	}
	url, err := u.fileStorageProvider.GetPresignedURL(ctx, key, config.PRESIGN_URL_EXPIRE_SECONDS*time.Second)
	if err != nil {
		u.logger.WarnContext(ctx, "could not presign object",
			slog.String("key", key),
			slog.String("err", err.Error()),
		)
		return nil
	}
	return &url
}
