package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/appshelf/appshelf/internal/config"
)

// UploadProfileImage stores a new profile image for userID and points the
// user's record at it. The previous image object is deleted best effort
// after the record is saved.
func (u Usecase) UploadProfileImage(ctx context.Context, userID string, f File) (ProfileImageURL, error) {
	userID = normalizeID(userID)
	if userID == "" {
		return ProfileImageURL{}, ErrValidation{Field: "user_id", Message: "user id is required"}
	}
	if err := validateFile(config.SLOT_PROFILE, f); err != nil {
		return ProfileImageURL{}, err
	}

	prior, err := u.repo.GetProfileImageByUserID(ctx, userID)
	exists := err == nil
	if err != nil {
		var nf ErrNotFound
		if !errors.As(err, &nf) {
			return ProfileImageURL{}, err
		}
	}

	obj, err := u.fileStorageProvider.PutObject(ctx, profileImageKey(userID, f), f)
	if err != nil {
		return ProfileImageURL{}, ErrUploadFailed{Slot: config.SLOT_PROFILE, Err: err}
	}
	if obj.Key == "" || obj.Location == "" {
		return ProfileImageURL{}, ErrUploadFailed{
			Slot: config.SLOT_PROFILE,
			Err:  errors.New("object store returned no location or key"),
		}
	}
	u.metrics.ObjectUploaded(config.SLOT_PROFILE)

	img := ProfileImage{
		UserID:      userID,
		Key:         obj.Key,
		Location:    obj.Location,
		ContentType: f.ContentType,
		Size:        int64(len(f.Data)),
	}

	var saved ProfileImage
	if exists {
		img.ID = prior.ID
		img.CreatedAt = prior.CreatedAt
		saved, err = u.repo.UpdateProfileImage(ctx, img)
	} else {
		saved, err = u.repo.CreateProfileImage(ctx, img)
	}
	if err != nil {
		u.metrics.PersistenceFailed("profile_image")
		u.logger.ErrorContext(ctx, "profile image uploaded but record not saved",
			slog.String("user_id", userID),
			slog.String("key", obj.Key),
			slog.String("err", err.Error()),
		)
		return ProfileImageURL{}, ErrPersistenceFailedAfterUpload{Keys: []string{obj.Key}, Err: err}
	}

	if exists && prior.Key != "" && prior.Key != obj.Key {
		outcomes := u.deleteObjects(ctx, []string{prior.Key})
		u.reportOrphans(ctx, outcomes, ReasonSuperseded, slog.String("user_id", userID))
	}

	res := u.profileImageURL(ctx, saved)
	res.Created = !exists
	return res, nil
}

// ListProfileImages returns the user's image pointers with freshly minted
// URLs. An entry whose URL could not be minted is returned with a nil URL.
func (u Usecase) ListProfileImages(ctx context.Context, userID string) ([]ProfileImageURL, error) {
	images, err := u.repo.ListProfileImages(ctx, normalizeID(userID))
	if err != nil {
		return nil, err
	}

	list := make([]ProfileImageURL, len(images))

	var wg sync.WaitGroup
	for i, img := range images {
		wg.Go(func() {
			list[i] = u.profileImageURL(ctx, img)
		})
	}
	wg.Wait()

	return list, nil
}

// GetProfileImageURL returns a presigned URL for the user's current profile
// image.
func (u Usecase) GetProfileImageURL(ctx context.Context, userID string) (ProfileImageURL, error) {
	img, err := u.repo.GetProfileImageByUserID(ctx, normalizeID(userID))
	if err != nil {
		return ProfileImageURL{}, err
	}

	url, err := u.fileStorageProvider.GetPresignedURL(ctx, img.Key, config.PRESIGN_URL_EXPIRE_SECONDS*time.Second)
	if err != nil {
		return ProfileImageURL{}, fmt.Errorf("presign profile image: %w", err)
	}

	return ProfileImageURL{
		ID:          img.ID,
		URL:         &url,
		ContentType: img.ContentType,
		Size:        img.Size,
		UploadedAt:  img.UpdatedAt,
	}, nil
}

func (u Usecase) profileImageURL(ctx context.Context, img ProfileImage) ProfileImageURL {
	uploadedAt := img.UpdatedAt
	if uploadedAt.IsZero() {
		uploadedAt = img.CreatedAt
	}
	return ProfileImageURL{
		ID:          img.ID,
		URL:         u.presign(ctx, img.Key),
		ContentType: img.ContentType,
		Size:        img.Size,
		UploadedAt:  uploadedAt,
	}
}
