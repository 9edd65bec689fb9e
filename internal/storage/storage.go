// Package storage provides object storage for gallery photos with
// interchangeable MinIO and GCS backends.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/RainersCode/rugby-team-portal/config"
)

// PhotoStore defines the object operations the gallery service needs.
type PhotoStore interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Bucket() string
}

// New selects a backend from config.
func New(ctx context.Context, cfg config.StorageConfig) (PhotoStore, error) {
	switch cfg.Backend {
	case "minio", "":
		return NewMinioStore(cfg.Minio)
	case "gcs":
		return NewGCSStore(ctx, cfg.GCS)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// PhotoKey builds the object key for a photo.
func PhotoKey(galleryID, photoID string) string {
	return fmt.Sprintf("galleries/%s/%s", galleryID, photoID)
}
