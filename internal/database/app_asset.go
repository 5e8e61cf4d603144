package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/appshelf/appshelf/internal/usecase"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AppAsset holds pointers to the objects of one app. Rows are hard deleted so
// the unique app_id index never collides with a tombstone.
type AppAsset struct {
	ID                uuid.UUID      `gorm:"column:id;primaryKey;type:uuid;default:gen_random_uuid()"`
	AppID             uuid.UUID      `gorm:"column:app_id;type:uuid;not null;uniqueIndex"`
	IconURL           string         `gorm:"column:icon_url;type:text"`
	IconKey           string         `gorm:"column:icon_key;type:varchar(512)"`
	IconContentType   string         `gorm:"column:icon_content_type;type:varchar(255)"`
	IconColors        datatypes.JSON `gorm:"column:icon_colors"`
	BinaryURL         string         `gorm:"column:binary_url;type:text"`
	BinaryKey         string         `gorm:"column:binary_key;type:varchar(512)"`
	BinarySize        int64          `gorm:"column:binary_size;type:bigint;default:0"`
	BinaryContentType string         `gorm:"column:binary_content_type;type:varchar(255)"`
	Screenshots       datatypes.JSON `gorm:"column:screenshots"`
	CreatedAt         time.Time      `gorm:"column:created_at"`
	UpdatedAt         time.Time      `gorm:"column:updated_at"`
}

func (AppAsset) TableName() string {
	return "app_assets"
}

type screenshot struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

func (s *service) GetAppAssetByAppID(ctx context.Context, appID uuid.UUID) (usecase.AppAsset, error) {
	var a AppAsset
	if err := s.db.
		WithContext(ctx).
		First(&a, "app_id = ?", appID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return usecase.AppAsset{}, usecase.ErrNotFound{
				ID:      appID,
				Code:    "app_asset_not_found",
				Message: "app files not found for app " + appID.String(),
			}
		}
		return usecase.AppAsset{}, err
	}

	return a.ConvertToUsecase()
}

func (s *service) CreateAppAsset(ctx context.Context, asset usecase.AppAsset) (usecase.AppAsset, error) {
	a, err := convertAppAssetFrom(asset)
	if err != nil {
		return usecase.AppAsset{}, err
	}

	if err := s.db.
		WithContext(ctx).
		Clauses(clause.Returning{}).
		Create(&a).Error; err != nil {
		return usecase.AppAsset{}, err
	}

	return a.ConvertToUsecase()
}

// UpdateAppAsset writes the whole document; the last writer wins.
func (s *service) UpdateAppAsset(ctx context.Context, asset usecase.AppAsset) (usecase.AppAsset, error) {
	a, err := convertAppAssetFrom(asset)
	if err != nil {
		return usecase.AppAsset{}, err
	}

	res := s.db.
		WithContext(ctx).
		Model(&AppAsset{}).
		Where("id = ?", a.ID).
		Select("*").
		Omit("id", "app_id", "created_at").
		Updates(&a)
	if res.Error != nil {
		return usecase.AppAsset{}, res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.AppAsset{}, usecase.ErrNotFound{
			ID:      a.AppID,
			Code:    "app_asset_not_found",
			Message: "app files not found for app " + a.AppID.String(),
		}
	}

	return a.ConvertToUsecase()
}

func (s *service) DeleteAppAsset(ctx context.Context, id uuid.UUID) error {
	return s.db.
		WithContext(ctx).
		Delete(&AppAsset{}, "id = ?", id).Error
}

func convertAppAssetFrom(a usecase.AppAsset) (AppAsset, error) {
	shots := make([]screenshot, 0, len(a.Screenshots))
	for _, s := range a.Screenshots {
		shots = append(shots, screenshot{URL: s.Location, Key: s.Key})
	}
	b, err := json.Marshal(shots)
	if err != nil {
		return AppAsset{}, fmt.Errorf("marshal screenshots: %w", err)
	}

	return AppAsset{
		ID:                a.ID,
		AppID:             a.AppID,
		IconURL:           a.Icon.Location,
		IconKey:           a.Icon.Key,
		IconContentType:   a.IconContentType,
		IconColors:        datatypes.JSON(a.IconColors),
		BinaryURL:         a.Binary.Location,
		BinaryKey:         a.Binary.Key,
		BinarySize:        a.BinarySize,
		BinaryContentType: a.BinaryContentType,
		Screenshots:       datatypes.JSON(b),
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}, nil
}

// Convert core model to usecase model
func (a AppAsset) ConvertToUsecase() (usecase.AppAsset, error) {
	var shots []screenshot
	if len(a.Screenshots) > 0 {
		if err := json.Unmarshal(a.Screenshots, &shots); err != nil {
			return usecase.AppAsset{}, fmt.Errorf("unmarshal screenshots of app %s: %w", a.AppID, err)
		}
	}

	objects := make([]usecase.StoredObject, 0, len(shots))
	for _, s := range shots {
		objects = append(objects, usecase.StoredObject{Location: s.URL, Key: s.Key})
	}

	return usecase.AppAsset{
		ID:                a.ID,
		AppID:             a.AppID,
		Icon:              usecase.StoredObject{Location: a.IconURL, Key: a.IconKey},
		IconContentType:   a.IconContentType,
		IconColors:        a.IconColors,
		Binary:            usecase.StoredObject{Location: a.BinaryURL, Key: a.BinaryKey},
		BinarySize:        a.BinarySize,
		BinaryContentType: a.BinaryContentType,
		Screenshots:       objects,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}, nil
}
