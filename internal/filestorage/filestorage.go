package filestorage

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/appshelf/appshelf/internal/config"
	"github.com/appshelf/appshelf/internal/usecase"
)

// NewFromEnv builds the gateway named by STORAGE_PROVIDER (minio by default).
func NewFromEnv(ctx context.Context) (usecase.FileStorageProvider, error) {
	switch p := os.Getenv(config.ENV_KEY_STORAGE_PROVIDER); p {
	case "", config.STORAGE_PROVIDER_MINIO:
		secure, err := strconv.ParseBool(os.Getenv(config.ENV_KEY_MINIO_USE_SSL))
		if err != nil {
			secure = true
		}
		return NewMinIOStorage(
			os.Getenv(config.ENV_KEY_MINIO_BUCKET),
			os.Getenv(config.ENV_KEY_MINIO_ENDPOINT),
			os.Getenv(config.ENV_KEY_MINIO_ACCESS_KEY),
			os.Getenv(config.ENV_KEY_MINIO_SECRET_KEY),
			secure,
		)
	case config.STORAGE_PROVIDER_S3:
		return NewS3Storage(ctx,
			os.Getenv(config.ENV_KEY_S3_BUCKET),
			os.Getenv(config.ENV_KEY_S3_PUBLIC_BASEURL),
		)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", p)
	}
}

func contentType(f usecase.File) string {
	if f.ContentType != "" {
		return f.ContentType
	}
	return http.DetectContentType(f.Data)
}
