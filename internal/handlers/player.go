package handlers

import (
	"net/http"
	"strings"

	"github.com/RainersCode/rugby-team-portal/internal/services"
	"github.com/RainersCode/rugby-team-portal/types"
	"github.com/go-chi/chi/v5"
)

// PlayerHandler provides HTTP handlers for the team roster.
type PlayerHandler struct {
	playerService *services.PlayerService
}

func NewPlayerHandler(playerService *services.PlayerService) *PlayerHandler {
	return &PlayerHandler{playerService: playerService}
}

// PlayerRouter registers roster routes.
func PlayerRouter(r chi.Router, playerService *services.PlayerService, requireAdmin func(http.Handler) http.Handler) {
	handler := NewPlayerHandler(playerService)

	r.Get("/", handler.List)
	r.Get("/{playerID}", handler.Get)

	r.Group(func(r chi.Router) {
		r.Use(requireAdmin)
		r.Post("/", handler.Create)
		r.Put("/{playerID}", handler.Update)
		r.Delete("/{playerID}", handler.Delete)
	})
}

func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	squad := r.URL.Query().Get("squad")
	items, total, err := h.playerService.List(r.Context(), squad, offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list players")
		return
	}
	writeJSON(w, http.StatusOK, ListResponse[types.Player]{Items: items, Page: page, Limit: limit, Total: total})
}

func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	player, err := h.playerService.Get(r.Context(), chi.URLParam(r, "playerID"))
	if err != nil {
		writeStoreError(w, err, "player not found", "failed to fetch player")
		return
	}
	writeJSON(w, http.StatusOK, player)
}

func (h *PlayerHandler) Create(w http.ResponseWriter, r *http.Request) {
	player, err := parsePlayerRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.playerService.Create(r.Context(), player)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create player")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *PlayerHandler) Update(w http.ResponseWriter, r *http.Request) {
	player, err := parsePlayerRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	player.ID = chi.URLParam(r, "playerID")

	updated, err := h.playerService.Update(r.Context(), player)
	if err != nil {
		writeStoreError(w, err, "player not found", "failed to update player")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *PlayerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.playerService.Delete(r.Context(), chi.URLParam(r, "playerID")); err != nil {
		writeStoreError(w, err, "player not found", "failed to delete player")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type PlayerRequest struct {
	Name     string `json:"name"`
	Position string `json:"position"`
	Squad    string `json:"squad"`
	Number   int    `json:"number"`
	HeightCm int    `json:"height_cm"`
	WeightKg int    `json:"weight_kg"`
	PhotoURL string `json:"photo_url"`
}

func parsePlayerRequest(r *http.Request) (types.Player, error) {
	var req PlayerRequest
	if err := decodeBody(r, &req); err != nil {
		return types.Player{}, errInvalidRequest
	}
	if strings.TrimSpace(req.Name) == "" {
		return types.Player{}, errMissingFields
	}
	return types.Player{
		Name:     req.Name,
		Position: req.Position,
		Squad:    req.Squad,
		Number:   req.Number,
		HeightCm: req.HeightCm,
		WeightKg: req.WeightKg,
		PhotoURL: req.PhotoURL,
	}, nil
}
