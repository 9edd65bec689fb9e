package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/RainersCode/rugby-team-portal/types"
)

// GalleryRepository handles persistence for galleries and their photos.
type GalleryRepository struct {
	db *sql.DB
}

func NewGalleryRepository(db *sql.DB) *GalleryRepository {
	return &GalleryRepository{db: db}
}

const galleryColumns = `id, title, description, event_date, created_at, updated_at`
const photoColumns = `id, gallery_id, object_key, content_type, caption, position, created_at`

func (r *GalleryRepository) List(ctx context.Context, offset, limit int) ([]types.Gallery, int, error) {
	const query = `SELECT ` + galleryColumns + ` FROM galleries ORDER BY event_date DESC OFFSET $1 LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	galleries := make([]types.Gallery, 0, limit)
	for rows.Next() {
		var gallery types.Gallery
		if err := rows.Scan(
			&gallery.ID, &gallery.Title, &gallery.Description,
			&gallery.EventDate, &gallery.CreatedAt, &gallery.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		galleries = append(galleries, gallery)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM galleries`).Scan(&total); err != nil {
		return nil, 0, err
	}
	return galleries, total, nil
}

func (r *GalleryRepository) Get(ctx context.Context, id string) (types.Gallery, error) {
	const query = `SELECT ` + galleryColumns + ` FROM galleries WHERE id = $1`
	var gallery types.Gallery
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&gallery.ID, &gallery.Title, &gallery.Description,
		&gallery.EventDate, &gallery.CreatedAt, &gallery.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Gallery{}, ErrNotFound
		}
		return types.Gallery{}, err
	}
	return gallery, nil
}

func (r *GalleryRepository) Create(ctx context.Context, gallery types.Gallery) (types.Gallery, error) {
	now := time.Now()
	gallery.CreatedAt = now
	gallery.UpdatedAt = now

	const query = `
		INSERT INTO galleries (id, title, description, event_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.db.ExecContext(ctx, query,
		gallery.ID, gallery.Title, gallery.Description, gallery.EventDate, gallery.CreatedAt, gallery.UpdatedAt,
	); err != nil {
		return types.Gallery{}, err
	}
	return gallery, nil
}

func (r *GalleryRepository) Update(ctx context.Context, gallery types.Gallery) (types.Gallery, error) {
	gallery.UpdatedAt = time.Now()

	const query = `
		UPDATE galleries
		SET title = $1,
			description = $2,
			event_date = $3,
			updated_at = $4
		WHERE id = $5`
	result, err := r.db.ExecContext(ctx, query,
		gallery.Title, gallery.Description, gallery.EventDate, gallery.UpdatedAt, gallery.ID,
	)
	if err != nil {
		return types.Gallery{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Gallery{}, err
	}
	if affected == 0 {
		return types.Gallery{}, ErrNotFound
	}
	return gallery, nil
}

func (r *GalleryRepository) Delete(ctx context.Context, id string) error {
	return execExpectingRow(ctx, r.db, `DELETE FROM galleries WHERE id = $1`, id)
}

func (r *GalleryRepository) ListPhotos(ctx context.Context, galleryID string) ([]types.Photo, error) {
	const query = `SELECT ` + photoColumns + ` FROM photos WHERE gallery_id = $1 ORDER BY position, created_at`

	rows, err := r.db.QueryContext(ctx, query, galleryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []types.Photo
	for rows.Next() {
		var photo types.Photo
		if err := rows.Scan(
			&photo.ID, &photo.GalleryID, &photo.ObjectKey, &photo.ContentType,
			&photo.Caption, &photo.Position, &photo.CreatedAt,
		); err != nil {
			return nil, err
		}
		photos = append(photos, photo)
	}
	return photos, rows.Err()
}

func (r *GalleryRepository) GetPhoto(ctx context.Context, id string) (types.Photo, error) {
	const query = `SELECT ` + photoColumns + ` FROM photos WHERE id = $1`
	var photo types.Photo
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&photo.ID, &photo.GalleryID, &photo.ObjectKey, &photo.ContentType,
		&photo.Caption, &photo.Position, &photo.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Photo{}, ErrNotFound
		}
		return types.Photo{}, err
	}
	return photo, nil
}

func (r *GalleryRepository) AddPhoto(ctx context.Context, photo types.Photo) (types.Photo, error) {
	photo.CreatedAt = time.Now()

	const query = `
		INSERT INTO photos (id, gallery_id, object_key, content_type, caption, position, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(ctx, query,
		photo.ID, photo.GalleryID, photo.ObjectKey, photo.ContentType,
		photo.Caption, photo.Position, photo.CreatedAt,
	); err != nil {
		return types.Photo{}, err
	}
	return photo, nil
}

func (r *GalleryRepository) DeletePhoto(ctx context.Context, id string) error {
	return execExpectingRow(ctx, r.db, `DELETE FROM photos WHERE id = $1`, id)
}
