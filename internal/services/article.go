package services

import (
	"context"
	"regexp"
	"strings"

	"github.com/RainersCode/rugby-team-portal/internal/events"
	"github.com/RainersCode/rugby-team-portal/internal/security"
	"github.com/RainersCode/rugby-team-portal/types"
	"github.com/google/uuid"
)

// ArticleRepository defines persistence operations for articles.
type ArticleRepository interface {
	List(ctx context.Context, publishedOnly bool, offset, limit int) ([]types.Article, int, error)
	Get(ctx context.Context, id string) (types.Article, error)
	GetBySlug(ctx context.Context, slug string) (types.Article, error)
	Create(ctx context.Context, article types.Article) (types.Article, error)
	Update(ctx context.Context, article types.Article) (types.Article, error)
	Delete(ctx context.Context, id string) error
}

// ArticleService encapsulates news article use-cases. Bodies are sanitized
// on every write; publishing emits a content event.
type ArticleService struct {
	repo      ArticleRepository
	sanitizer *security.Sanitizer
	publisher *events.Publisher
}

func NewArticleService(repo ArticleRepository, sanitizer *security.Sanitizer, publisher *events.Publisher) *ArticleService {
	return &ArticleService{repo: repo, sanitizer: sanitizer, publisher: publisher}
}

func (s *ArticleService) List(ctx context.Context, publishedOnly bool, offset, limit int) ([]types.Article, int, error) {
	return s.repo.List(ctx, publishedOnly, offset, limit)
}

func (s *ArticleService) Get(ctx context.Context, id string) (types.Article, error) {
	return s.repo.Get(ctx, id)
}

func (s *ArticleService) GetBySlug(ctx context.Context, slug string) (types.Article, error) {
	return s.repo.GetBySlug(ctx, slug)
}

func (s *ArticleService) Create(ctx context.Context, article types.Article) (types.Article, error) {
	article.ID = uuid.New().String()
	article.Content = s.sanitizer.Sanitize(article.Content)
	if article.Slug == "" {
		article.Slug = Slugify(article.Title)
	}

	created, err := s.repo.Create(ctx, article)
	if err != nil {
		return types.Article{}, err
	}
	if created.Published {
		s.publisher.ArticlePublished(ctx, created.ID, created.Slug)
	}
	return created, nil
}

func (s *ArticleService) Update(ctx context.Context, article types.Article) (types.Article, error) {
	article.Content = s.sanitizer.Sanitize(article.Content)

	previous, err := s.repo.Get(ctx, article.ID)
	if err != nil {
		return types.Article{}, err
	}

	updated, err := s.repo.Update(ctx, article)
	if err != nil {
		return types.Article{}, err
	}
	if updated.Published && !previous.Published {
		s.publisher.ArticlePublished(ctx, updated.ID, updated.Slug)
	}
	return updated, nil
}

func (s *ArticleService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL slug from a title.
func Slugify(title string) string {
	slug := slugStrip.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}
