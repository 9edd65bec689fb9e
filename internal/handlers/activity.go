package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/RainersCode/rugby-team-portal/internal/services"
	"github.com/RainersCode/rugby-team-portal/types"
	"github.com/go-chi/chi/v5"
)

// ActivityHandler provides HTTP handlers for club activities.
type ActivityHandler struct {
	activityService *services.ActivityService
}

func NewActivityHandler(activityService *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// ActivityRouter registers activity routes.
func ActivityRouter(r chi.Router, activityService *services.ActivityService, requireAdmin func(http.Handler) http.Handler) {
	handler := NewActivityHandler(activityService)

	r.Get("/", handler.List)
	r.Get("/{activityID}", handler.Get)

	r.Group(func(r chi.Router) {
		r.Use(requireAdmin)
		r.Post("/", handler.Create)
		r.Put("/{activityID}", handler.Update)
		r.Delete("/{activityID}", handler.Delete)
	})
}

func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	upcoming := r.URL.Query().Get("upcoming") == "true"
	items, total, err := h.activityService.List(r.Context(), upcoming, offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list activities")
		return
	}
	writeJSON(w, http.StatusOK, ListResponse[types.Activity]{Items: items, Page: page, Limit: limit, Total: total})
}

func (h *ActivityHandler) Get(w http.ResponseWriter, r *http.Request) {
	activity, err := h.activityService.Get(r.Context(), chi.URLParam(r, "activityID"))
	if err != nil {
		writeStoreError(w, err, "activity not found", "failed to fetch activity")
		return
	}
	writeJSON(w, http.StatusOK, activity)
}

func (h *ActivityHandler) Create(w http.ResponseWriter, r *http.Request) {
	activity, err := parseActivityRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.activityService.Create(r.Context(), activity)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create activity")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *ActivityHandler) Update(w http.ResponseWriter, r *http.Request) {
	activity, err := parseActivityRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	activity.ID = chi.URLParam(r, "activityID")

	updated, err := h.activityService.Update(r.Context(), activity)
	if err != nil {
		writeStoreError(w, err, "activity not found", "failed to update activity")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *ActivityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.activityService.Delete(r.Context(), chi.URLParam(r, "activityID")); err != nil {
		writeStoreError(w, err, "activity not found", "failed to delete activity")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type ActivityRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"starts_at"`
	Capacity    int       `json:"capacity"`
}

func parseActivityRequest(r *http.Request) (types.Activity, error) {
	var req ActivityRequest
	if err := decodeBody(r, &req); err != nil {
		return types.Activity{}, errInvalidRequest
	}
	if strings.TrimSpace(req.Title) == "" || req.StartsAt.IsZero() {
		return types.Activity{}, errMissingFields
	}
	return types.Activity{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		Capacity:    req.Capacity,
	}, nil
}
