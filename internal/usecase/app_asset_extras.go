package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/appshelf/appshelf/internal/config"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

// GetAppInstallQR renders a PNG QR code pointing at a presigned URL of the
// app's binary.
func (u Usecase) GetAppInstallQR(ctx context.Context, appID uuid.UUID, size int) ([]byte, error) {
	asset, err := u.repo.GetAppAssetByAppID(ctx, appID)
	if err != nil {
		return nil, err
	}
	if asset.Binary.IsZero() {
		return nil, ErrNotFound{
			ID:      appID,
			Code:    "app_binary_not_found",
			Message: "app " + appID.String() + " has no binary",
		}
	}

	url, err := u.fileStorageProvider.GetPresignedURL(ctx, asset.Binary.Key, config.PRESIGN_URL_EXPIRE_SECONDS*time.Second)
	if err != nil {
		return nil, fmt.Errorf("presign app binary: %w", err)
	}

	if size <= 0 {
		size = 256
	}
	return qrcode.Encode(url, qrcode.Medium, size)
}

type ObjectStatus string

const (
	ObjectPresent ObjectStatus = "present"
	ObjectMissing ObjectStatus = "missing"
	ObjectUnknown ObjectStatus = "unknown"
)

// SlotAudit describes one referenced object without exposing its key.
type SlotAudit struct {
	Slot     string
	Position int
	Status   ObjectStatus
}

type AppAssetAudit struct {
	AppID   uuid.UUID
	Objects []SlotAudit
}

func (a AppAssetAudit) Missing() int {
	var n int
	for _, o := range a.Objects {
		if o.Status == ObjectMissing {
			n++
		}
	}
	return n
}

// AuditAppAssets checks that every object referenced by the app's asset
// record still exists in the object store. Only the app's developer may run
// it.
func (u Usecase) AuditAppAssets(ctx context.Context, appID uuid.UUID, actorID string) (AppAssetAudit, error) {
	if _, err := u.AuthorizeMutation(ctx, appID, actorID); err != nil {
		return AppAssetAudit{}, err
	}

	asset, err := u.repo.GetAppAssetByAppID(ctx, appID)
	if err != nil {
		return AppAssetAudit{}, err
	}

	type ref struct {
		slot string
		pos  int
		key  string
	}
	refs := []ref{
		{config.SLOT_ICON, 0, asset.Icon.Key},
		{config.SLOT_BINARY, 0, asset.Binary.Key},
	}
	for i, s := range asset.Screenshots {
		refs = append(refs, ref{config.SLOT_SCREENSHOTS, i, s.Key})
	}

	objects := make([]SlotAudit, len(refs))

	var wg sync.WaitGroup
	for i, r := range refs {
		wg.Go(func() {
			status := ObjectMissing
			if r.key != "" {
				ok, err := u.fileStorageProvider.HeadObject(ctx, r.key)
				switch {
				case err != nil:
					u.logger.WarnContext(ctx, "could not head object",
						slog.String("app_id", appID.String()),
						slog.String("key", r.key),
						slog.String("err", err.Error()),
					)
					status = ObjectUnknown
				case ok:
					status = ObjectPresent
				}
			}
			objects[i] = SlotAudit{Slot: r.slot, Position: r.pos, Status: status}
		})
	}
	wg.Wait()

	return AppAssetAudit{AppID: appID, Objects: objects}, nil
}
