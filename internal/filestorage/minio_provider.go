package filestorage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/appshelf/appshelf/internal/usecase"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

func NewMinIOStorage(bucket, endpoint, accessKeyID, secretAccessKey string, secure bool) (*MinIOStorage, error) {
	m, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &MinIOStorage{
		client: m,
		bucket: bucket,
	}, nil
}

type MinIOStorage struct {
	client *minio.Client
	bucket string
}

func (f *MinIOStorage) PutObject(ctx context.Context, key string, file usecase.File) (usecase.StoredObject, error) {
	_, err := f.client.PutObject(ctx, f.bucket, key,
		bytes.NewReader(file.Data), int64(len(file.Data)),
		minio.PutObjectOptions{ContentType: contentType(file)},
	)
	if err != nil {
		return usecase.StoredObject{}, err
	}
	return usecase.StoredObject{
		Location: fmt.Sprintf("%s/%s/%s", f.client.EndpointURL(), f.bucket, key),
		Key:      key,
	}, nil
}

func (f *MinIOStorage) DeleteObject(ctx context.Context, key string) error {
	err := f.client.RemoveObject(ctx, f.bucket, key, minio.RemoveObjectOptions{})
	if err != nil && !isMinIONotFound(err) {
		return err
	}
	return nil
}

func (f *MinIOStorage) GetPresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	u, err := f.client.PresignedGetObject(ctx, f.bucket, key, ttl, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (f *MinIOStorage) HeadObject(ctx context.Context, key string) (bool, error) {
	_, err := f.client.StatObject(ctx, f.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isMinIONotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func isMinIONotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}
