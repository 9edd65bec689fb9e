package types

import "time"

// Gallery groups photos from a club event.
type Gallery struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	EventDate   time.Time `json:"event_date" db:"event_date"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Photo is a single gallery image. ObjectKey locates the bytes in object
// storage; the key is never exposed as a public URL directly.
type Photo struct {
	ID          string    `json:"id" db:"id"`
	GalleryID   string    `json:"gallery_id" db:"gallery_id"`
	ObjectKey   string    `json:"-" db:"object_key"`
	ContentType string    `json:"content_type" db:"content_type"`
	Caption     string    `json:"caption" db:"caption"`
	Position    int       `json:"position" db:"position"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
