package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/RainersCode/rugby-team-portal/internal/storage"
	"github.com/RainersCode/rugby-team-portal/types"
	"github.com/google/uuid"
)

// GalleryRepository defines persistence operations for galleries and photos.
type GalleryRepository interface {
	List(ctx context.Context, offset, limit int) ([]types.Gallery, int, error)
	Get(ctx context.Context, id string) (types.Gallery, error)
	Create(ctx context.Context, gallery types.Gallery) (types.Gallery, error)
	Update(ctx context.Context, gallery types.Gallery) (types.Gallery, error)
	Delete(ctx context.Context, id string) error
	ListPhotos(ctx context.Context, galleryID string) ([]types.Photo, error)
	GetPhoto(ctx context.Context, id string) (types.Photo, error)
	AddPhoto(ctx context.Context, photo types.Photo) (types.Photo, error)
	DeletePhoto(ctx context.Context, id string) error
}

// GalleryService encapsulates gallery use-cases. Photo bytes live in object
// storage; the repository holds only metadata and the object key.
type GalleryService struct {
	repo   GalleryRepository
	photos storage.PhotoStore
}

func NewGalleryService(repo GalleryRepository, photos storage.PhotoStore) *GalleryService {
	return &GalleryService{repo: repo, photos: photos}
}

func (s *GalleryService) List(ctx context.Context, offset, limit int) ([]types.Gallery, int, error) {
	return s.repo.List(ctx, offset, limit)
}

func (s *GalleryService) Get(ctx context.Context, id string) (types.Gallery, error) {
	return s.repo.Get(ctx, id)
}

func (s *GalleryService) Create(ctx context.Context, gallery types.Gallery) (types.Gallery, error) {
	gallery.ID = uuid.New().String()
	return s.repo.Create(ctx, gallery)
}

func (s *GalleryService) Update(ctx context.Context, gallery types.Gallery) (types.Gallery, error) {
	return s.repo.Update(ctx, gallery)
}

func (s *GalleryService) Delete(ctx context.Context, id string) error {
	photos, err := s.repo.ListPhotos(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	// Objects are removed after the row delete; a failed removal leaves an
	// orphan object, not a dangling row.
	for _, photo := range photos {
		if err := s.photos.Delete(ctx, photo.ObjectKey); err != nil {
			slog.Error("failed to delete photo object",
				slog.String("object_key", photo.ObjectKey),
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}

func (s *GalleryService) Photos(ctx context.Context, galleryID string) ([]types.Photo, error) {
	return s.repo.ListPhotos(ctx, galleryID)
}

// AddPhoto uploads the image bytes and records the photo metadata.
func (s *GalleryService) AddPhoto(ctx context.Context, galleryID, caption, contentType string, r io.Reader, size int64) (types.Photo, error) {
	if _, err := s.repo.Get(ctx, galleryID); err != nil {
		return types.Photo{}, err
	}

	photo := types.Photo{
		ID:          uuid.New().String(),
		GalleryID:   galleryID,
		ContentType: contentType,
		Caption:     caption,
	}
	photo.ObjectKey = storage.PhotoKey(galleryID, photo.ID)

	if err := s.photos.Put(ctx, photo.ObjectKey, r, size, contentType); err != nil {
		return types.Photo{}, fmt.Errorf("upload photo: %w", err)
	}

	created, err := s.repo.AddPhoto(ctx, photo)
	if err != nil {
		if cleanupErr := s.photos.Delete(ctx, photo.ObjectKey); cleanupErr != nil {
			slog.Error("failed to clean up photo object",
				slog.String("object_key", photo.ObjectKey),
				slog.String("error", cleanupErr.Error()),
			)
		}
		return types.Photo{}, err
	}
	return created, nil
}

// OpenPhoto returns the photo metadata and a reader for its bytes.
func (s *GalleryService) OpenPhoto(ctx context.Context, photoID string) (types.Photo, io.ReadCloser, error) {
	photo, err := s.repo.GetPhoto(ctx, photoID)
	if err != nil {
		return types.Photo{}, nil, err
	}
	reader, err := s.photos.Get(ctx, photo.ObjectKey)
	if err != nil {
		return types.Photo{}, nil, fmt.Errorf("open photo object: %w", err)
	}
	return photo, reader, nil
}

func (s *GalleryService) DeletePhoto(ctx context.Context, photoID string) error {
	photo, err := s.repo.GetPhoto(ctx, photoID)
	if err != nil {
		return err
	}
	if err := s.repo.DeletePhoto(ctx, photoID); err != nil {
		return err
	}
	if err := s.photos.Delete(ctx, photo.ObjectKey); err != nil {
		slog.Error("failed to delete photo object",
			slog.String("object_key", photo.ObjectKey),
			slog.String("error", err.Error()),
		)
	}
	return nil
}
