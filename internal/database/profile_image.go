package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/appshelf/appshelf/internal/usecase"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileImage struct {
	ID          uuid.UUID `gorm:"column:id;primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID      string    `gorm:"column:user_id;type:varchar(128);not null;uniqueIndex"`
	Key         string    `gorm:"column:object_key;type:varchar(512);not null"`
	URL         string    `gorm:"column:url;type:text;not null"`
	ContentType string    `gorm:"column:content_type;type:varchar(255)"`
	Size        int64     `gorm:"column:size;type:bigint;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (ProfileImage) TableName() string {
	return "profile_images"
}

func (s *service) ListProfileImages(ctx context.Context, userID string) ([]usecase.ProfileImage, error) {
	var images []ProfileImage
	if err := s.db.
		WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&images).Error; err != nil {
		return nil, err
	}

	list := make([]usecase.ProfileImage, 0, len(images))
	for _, img := range images {
		list = append(list, img.ConvertToUsecase())
	}
	return list, nil
}

func (s *service) GetProfileImageByUserID(ctx context.Context, userID string) (usecase.ProfileImage, error) {
	var img ProfileImage
	if err := s.db.
		WithContext(ctx).
		First(&img, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return usecase.ProfileImage{}, usecase.ErrNotFound{
				Code:    "profile_image_not_found",
				Message: "profile image not found for user " + userID,
			}
		}
		return usecase.ProfileImage{}, err
	}
	return img.ConvertToUsecase(), nil
}

// CreateProfileImage refuses to insert a second record for the same user.
func (s *service) CreateProfileImage(ctx context.Context, pi usecase.ProfileImage) (usecase.ProfileImage, error) {
	img := ProfileImage{
		UserID:      pi.UserID,
		Key:         pi.Key,
		URL:         pi.Location,
		ContentType: pi.ContentType,
		Size:        pi.Size,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.
			Model(&ProfileImage{}).
			Where("user_id = ?", pi.UserID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("profile image already exists for user %s", pi.UserID)
		}
		return tx.Clauses(clause.Returning{}).Create(&img).Error
	})
	if err != nil {
		return usecase.ProfileImage{}, err
	}

	return img.ConvertToUsecase(), nil
}

func (s *service) UpdateProfileImage(ctx context.Context, pi usecase.ProfileImage) (usecase.ProfileImage, error) {
	var img ProfileImage
	res := s.db.
		WithContext(ctx).
		Model(&img).
		Clauses(clause.Returning{}).
		Where("id = ?", pi.ID).
		Updates(map[string]any{
			"object_key":   pi.Key,
			"url":          pi.Location,
			"content_type": pi.ContentType,
			"size":         pi.Size,
			"updated_at":   time.Now(),
		})
	if res.Error != nil {
		return usecase.ProfileImage{}, res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ProfileImage{}, usecase.ErrNotFound{
			ID:      pi.ID,
			Code:    "profile_image_not_found",
			Message: "profile image " + pi.ID.String() + " not found",
		}
	}

	return img.ConvertToUsecase(), nil
}

// Convert core model to usecase model
func (p ProfileImage) ConvertToUsecase() usecase.ProfileImage {
	return usecase.ProfileImage{
		ID:          p.ID,
		UserID:      p.UserID,
		Key:         p.Key,
		Location:    p.URL,
		ContentType: p.ContentType,
		Size:        p.Size,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
