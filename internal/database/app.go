package database

import (
	"context"
	"errors"
	"time"

	"github.com/appshelf/appshelf/internal/usecase"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// App is the owner record of app assets. It is managed by the catalogue
// service; this service only reads it.
type App struct {
	ID          uuid.UUID       `gorm:"column:id;primaryKey;type:uuid;default:gen_random_uuid()"`
	Name        string          `gorm:"column:name;type:varchar(255);not null"`
	DeveloperID string          `gorm:"column:developer_id;type:varchar(128);not null;index"`
	CreatedAt   time.Time       `gorm:"column:created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at"`
	DeletedAt   *gorm.DeletedAt `gorm:"column:deleted_at"`
}

func (App) TableName() string {
	return "apps"
}

func (s *service) GetAppByID(ctx context.Context, id uuid.UUID) (usecase.App, error) {
	var app App
	if err := s.db.
		WithContext(ctx).
		First(&app, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return usecase.App{}, usecase.ErrNotFound{
				ID:      id,
				Code:    "app_not_found",
				Message: "app " + id.String() + " not found",
			}
		}
		return usecase.App{}, err
	}

	return app.ConvertToUsecase(), nil
}

// Convert core model to usecase model
func (a App) ConvertToUsecase() usecase.App {
	return usecase.App{
		ID:          a.ID,
		Name:        a.Name,
		DeveloperID: a.DeveloperID,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}
