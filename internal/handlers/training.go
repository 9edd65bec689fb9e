package handlers

import (
	"net/http"
	"strings"

	"github.com/RainersCode/rugby-team-portal/internal/services"
	"github.com/RainersCode/rugby-team-portal/types"
	"github.com/go-chi/chi/v5"
)

// TrainingHandler provides HTTP handlers for training programs.
type TrainingHandler struct {
	trainingService *services.TrainingService
}

func NewTrainingHandler(trainingService *services.TrainingService) *TrainingHandler {
	return &TrainingHandler{trainingService: trainingService}
}

// TrainingRouter registers training program routes. Reading programs
// requires a session; writes require admin.
func TrainingRouter(r chi.Router, trainingService *services.TrainingService, requireAdmin func(http.Handler) http.Handler) {
	handler := NewTrainingHandler(trainingService)

	r.Get("/", handler.ListPublished)
	r.Get("/{programID}", handler.Get)

	r.Group(func(r chi.Router) {
		r.Use(requireAdmin)
		r.Get("/drafts", handler.ListAll)
		r.Post("/", handler.Create)
		r.Put("/{programID}", handler.Update)
		r.Delete("/{programID}", handler.Delete)
	})
}

func (h *TrainingHandler) ListPublished(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

func (h *TrainingHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

func (h *TrainingHandler) list(w http.ResponseWriter, r *http.Request, publishedOnly bool) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := h.trainingService.List(r.Context(), publishedOnly, offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list training programs")
		return
	}
	writeJSON(w, http.StatusOK, ListResponse[types.TrainingProgram]{Items: items, Page: page, Limit: limit, Total: total})
}

func (h *TrainingHandler) Get(w http.ResponseWriter, r *http.Request) {
	program, err := h.trainingService.Get(r.Context(), chi.URLParam(r, "programID"))
	if err != nil {
		writeStoreError(w, err, "training program not found", "failed to fetch training program")
		return
	}
	writeJSON(w, http.StatusOK, program)
}

func (h *TrainingHandler) Create(w http.ResponseWriter, r *http.Request) {
	program, err := parseTrainingRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.trainingService.Create(r.Context(), program)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create training program")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *TrainingHandler) Update(w http.ResponseWriter, r *http.Request) {
	program, err := parseTrainingRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	program.ID = chi.URLParam(r, "programID")

	updated, err := h.trainingService.Update(r.Context(), program)
	if err != nil {
		writeStoreError(w, err, "training program not found", "failed to update training program")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *TrainingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.trainingService.Delete(r.Context(), chi.URLParam(r, "programID")); err != nil {
		writeStoreError(w, err, "training program not found", "failed to delete training program")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type TrainingRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Level       string `json:"level"`
	Weeks       int    `json:"weeks"`
	Published   bool   `json:"published"`
}

func parseTrainingRequest(r *http.Request) (types.TrainingProgram, error) {
	var req TrainingRequest
	if err := decodeBody(r, &req); err != nil {
		return types.TrainingProgram{}, errInvalidRequest
	}
	if strings.TrimSpace(req.Title) == "" {
		return types.TrainingProgram{}, errMissingFields
	}
	return types.TrainingProgram{
		Title:       req.Title,
		Description: req.Description,
		Level:       req.Level,
		Weeks:       req.Weeks,
		Published:   req.Published,
	}, nil
}
