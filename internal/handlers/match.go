package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/RainersCode/rugby-team-portal/internal/services"
	"github.com/RainersCode/rugby-team-portal/types"
	"github.com/go-chi/chi/v5"
)

// MatchHandler provides HTTP handlers for the fixture list.
type MatchHandler struct {
	matchService *services.MatchService
}

func NewMatchHandler(matchService *services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

// MatchRouter registers match routes.
func MatchRouter(r chi.Router, matchService *services.MatchService, requireAdmin func(http.Handler) http.Handler) {
	handler := NewMatchHandler(matchService)

	r.Get("/", handler.List)
	r.Get("/{matchID}", handler.Get)

	r.Group(func(r chi.Router) {
		r.Use(requireAdmin)
		r.Post("/", handler.Create)
		r.Put("/{matchID}", handler.Update)
		r.Patch("/{matchID}/result", handler.RecordResult)
		r.Delete("/{matchID}", handler.Delete)
	})
}

func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	upcoming := r.URL.Query().Get("upcoming") == "true"
	items, total, err := h.matchService.List(r.Context(), upcoming, offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list matches")
		return
	}
	writeJSON(w, http.StatusOK, ListResponse[types.Match]{Items: items, Page: page, Limit: limit, Total: total})
}

func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	match, err := h.matchService.Get(r.Context(), chi.URLParam(r, "matchID"))
	if err != nil {
		writeStoreError(w, err, "match not found", "failed to fetch match")
		return
	}
	writeJSON(w, http.StatusOK, match)
}

func (h *MatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, err := parseMatchRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.matchService.Create(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create match")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *MatchHandler) Update(w http.ResponseWriter, r *http.Request) {
	req, err := parseMatchRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.ID = chi.URLParam(r, "matchID")

	updated, err := h.matchService.Update(r.Context(), req)
	if err != nil {
		writeStoreError(w, err, "match not found", "failed to update match")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// RecordResult finalizes a fixture with its score.
func (h *MatchHandler) RecordResult(w http.ResponseWriter, r *http.Request) {
	var req MatchResultRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.HomeScore < 0 || req.AwayScore < 0 {
		writeError(w, http.StatusBadRequest, "scores must not be negative")
		return
	}

	updated, err := h.matchService.RecordResult(r.Context(), chi.URLParam(r, "matchID"), req.HomeScore, req.AwayScore)
	if err != nil {
		writeStoreError(w, err, "match not found", "failed to record result")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *MatchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.matchService.Delete(r.Context(), chi.URLParam(r, "matchID")); err != nil {
		writeStoreError(w, err, "match not found", "failed to delete match")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type MatchRequest struct {
	Competition string    `json:"competition"`
	Opponent    string    `json:"opponent"`
	Venue       string    `json:"venue"`
	KickoffAt   time.Time `json:"kickoff_at"`
	Home        bool      `json:"home"`
	Status      string    `json:"status"`
}

type MatchResultRequest struct {
	HomeScore int `json:"home_score"`
	AwayScore int `json:"away_score"`
}

func parseMatchRequest(r *http.Request) (types.Match, error) {
	var req MatchRequest
	if err := decodeBody(r, &req); err != nil {
		return types.Match{}, errInvalidRequest
	}
	if strings.TrimSpace(req.Opponent) == "" || req.KickoffAt.IsZero() {
		return types.Match{}, errMissingFields
	}
	status := req.Status
	if status == "" {
		status = types.MatchScheduled
	}
	return types.Match{
		Competition: req.Competition,
		Opponent:    req.Opponent,
		Venue:       req.Venue,
		KickoffAt:   req.KickoffAt,
		Home:        req.Home,
		Status:      status,
	}, nil
}
