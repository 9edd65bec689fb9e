package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/RainersCode/rugby-team-portal/internal/services"
	"github.com/RainersCode/rugby-team-portal/types"
	"github.com/go-chi/chi/v5"
)

const (
	maxPhotoBytes      = 16 << 20
	maxMultipartMemory = 8 << 20

	formFieldPhoto   = "photo"
	formFieldCaption = "caption"
)

// GalleryHandler provides HTTP handlers for photo galleries.
type GalleryHandler struct {
	galleryService *services.GalleryService
}

func NewGalleryHandler(galleryService *services.GalleryService) *GalleryHandler {
	return &GalleryHandler{galleryService: galleryService}
}

// GalleryRouter registers gallery routes. Photo bytes are streamed from
// object storage through the photo route.
func GalleryRouter(r chi.Router, galleryService *services.GalleryService, requireAdmin func(http.Handler) http.Handler) {
	handler := NewGalleryHandler(galleryService)

	r.Get("/", handler.List)
	r.Get("/{galleryID}", handler.Get)
	r.Get("/{galleryID}/photos", handler.ListPhotos)
	r.Get("/photos/{photoID}", handler.ServePhoto)

	r.Group(func(r chi.Router) {
		r.Use(requireAdmin)
		r.Post("/", handler.Create)
		r.Put("/{galleryID}", handler.Update)
		r.Delete("/{galleryID}", handler.Delete)
		r.Post("/{galleryID}/photos", handler.UploadPhoto)
		r.Delete("/photos/{photoID}", handler.DeletePhoto)
	})
}

func (h *GalleryHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := h.galleryService.List(r.Context(), offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list galleries")
		return
	}
	writeJSON(w, http.StatusOK, ListResponse[types.Gallery]{Items: items, Page: page, Limit: limit, Total: total})
}

func (h *GalleryHandler) Get(w http.ResponseWriter, r *http.Request) {
	gallery, err := h.galleryService.Get(r.Context(), chi.URLParam(r, "galleryID"))
	if err != nil {
		writeStoreError(w, err, "gallery not found", "failed to fetch gallery")
		return
	}
	writeJSON(w, http.StatusOK, gallery)
}

func (h *GalleryHandler) Create(w http.ResponseWriter, r *http.Request) {
	gallery, err := parseGalleryRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.galleryService.Create(r.Context(), gallery)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create gallery")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *GalleryHandler) Update(w http.ResponseWriter, r *http.Request) {
	gallery, err := parseGalleryRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	gallery.ID = chi.URLParam(r, "galleryID")

	updated, err := h.galleryService.Update(r.Context(), gallery)
	if err != nil {
		writeStoreError(w, err, "gallery not found", "failed to update gallery")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *GalleryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.galleryService.Delete(r.Context(), chi.URLParam(r, "galleryID")); err != nil {
		writeStoreError(w, err, "gallery not found", "failed to delete gallery")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GalleryHandler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	galleryID := chi.URLParam(r, "galleryID")
	if _, err := h.galleryService.Get(r.Context(), galleryID); err != nil {
		writeStoreError(w, err, "gallery not found", "failed to fetch gallery")
		return
	}

	photos, err := h.galleryService.Photos(r.Context(), galleryID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list photos")
		return
	}
	writeJSON(w, http.StatusOK, photos)
}

// UploadPhoto accepts a multipart image upload capped at 16 MiB.
func (h *GalleryHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBytes)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form or file too large")
		return
	}

	file, header, err := r.FormFile(formFieldPhoto)
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing photo file")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		writeError(w, http.StatusBadRequest, "photo must be an image")
		return
	}

	caption := r.FormValue(formFieldCaption)
	photo, err := h.galleryService.AddPhoto(r.Context(), chi.URLParam(r, "galleryID"), caption, contentType, file, header.Size)
	if err != nil {
		writeStoreError(w, err, "gallery not found", "failed to upload photo")
		return
	}
	writeJSON(w, http.StatusCreated, photo)
}

// ServePhoto streams the image bytes from object storage.
func (h *GalleryHandler) ServePhoto(w http.ResponseWriter, r *http.Request) {
	photo, reader, err := h.galleryService.OpenPhoto(r.Context(), chi.URLParam(r, "photoID"))
	if err != nil {
		writeStoreError(w, err, "photo not found", "failed to open photo")
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", photo.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, reader); err != nil {
		slog.Error("failed to stream photo",
			slog.String("photo_id", photo.ID),
			slog.String("error", err.Error()),
		)
	}
}

func (h *GalleryHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	if err := h.galleryService.DeletePhoto(r.Context(), chi.URLParam(r, "photoID")); err != nil {
		writeStoreError(w, err, "photo not found", "failed to delete photo")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type GalleryRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	EventDate   time.Time `json:"event_date"`
}

func parseGalleryRequest(r *http.Request) (types.Gallery, error) {
	var req GalleryRequest
	if err := decodeBody(r, &req); err != nil {
		return types.Gallery{}, errInvalidRequest
	}
	if strings.TrimSpace(req.Title) == "" {
		return types.Gallery{}, errMissingFields
	}
	return types.Gallery{
		Title:       req.Title,
		Description: req.Description,
		EventDate:   req.EventDate,
	}, nil
}
