package handlers

import (
	"net/http"
	"strings"

	"github.com/RainersCode/rugby-team-portal/internal/services"
	"github.com/RainersCode/rugby-team-portal/types"
	"github.com/go-chi/chi/v5"
)

// ArticleHandler provides HTTP handlers for news articles.
type ArticleHandler struct {
	articleService *services.ArticleService
}

func NewArticleHandler(articleService *services.ArticleService) *ArticleHandler {
	return &ArticleHandler{articleService: articleService}
}

// ArticleRouter registers article routes. Public routes see published
// articles only; the admin middleware guards writes and draft listing.
func ArticleRouter(r chi.Router, articleService *services.ArticleService, requireAdmin func(http.Handler) http.Handler) {
	handler := NewArticleHandler(articleService)

	r.Get("/", handler.ListPublished)
	r.Get("/slug/{slug}", handler.GetBySlug)
	r.Get("/{articleID}", handler.Get)

	r.Group(func(r chi.Router) {
		r.Use(requireAdmin)
		r.Get("/drafts", handler.ListAll)
		r.Post("/", handler.Create)
		r.Put("/{articleID}", handler.Update)
		r.Delete("/{articleID}", handler.Delete)
	})
}

func (h *ArticleHandler) ListPublished(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

func (h *ArticleHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

func (h *ArticleHandler) list(w http.ResponseWriter, r *http.Request, publishedOnly bool) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := h.articleService.List(r.Context(), publishedOnly, offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list articles")
		return
	}
	writeJSON(w, http.StatusOK, ListResponse[types.Article]{Items: items, Page: page, Limit: limit, Total: total})
}

func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	article, err := h.articleService.Get(r.Context(), chi.URLParam(r, "articleID"))
	if err != nil {
		writeStoreError(w, err, "article not found", "failed to fetch article")
		return
	}
	writeJSON(w, http.StatusOK, article)
}

func (h *ArticleHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	article, err := h.articleService.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeStoreError(w, err, "article not found", "failed to fetch article")
		return
	}
	writeJSON(w, http.StatusOK, article)
}

func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ArticleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	authorID, _ := authorFromContext(r)
	created, err := h.articleService.Create(r.Context(), types.Article{
		Title:     req.Title,
		Slug:      req.Slug,
		Summary:   req.Summary,
		Content:   req.Content,
		ImageURL:  req.ImageURL,
		Published: req.Published,
		AuthorID:  authorID,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create article")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req ArticleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	updated, err := h.articleService.Update(r.Context(), types.Article{
		ID:        chi.URLParam(r, "articleID"),
		Title:     req.Title,
		Slug:      req.Slug,
		Summary:   req.Summary,
		Content:   req.Content,
		ImageURL:  req.ImageURL,
		Published: req.Published,
	})
	if err != nil {
		writeStoreError(w, err, "article not found", "failed to update article")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.articleService.Delete(r.Context(), chi.URLParam(r, "articleID")); err != nil {
		writeStoreError(w, err, "article not found", "failed to delete article")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type ArticleRequest struct {
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Summary   string `json:"summary"`
	Content   string `json:"content"`
	ImageURL  string `json:"image_url"`
	Published bool   `json:"published"`
}
