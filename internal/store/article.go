package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/RainersCode/rugby-team-portal/types"
)

// ArticleRepository handles persistence for news articles.
type ArticleRepository struct {
	db *sql.DB
}

func NewArticleRepository(db *sql.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

const articleColumns = `id, title, slug, summary, content, image_url, published, author_id, created_at, updated_at`

// List returns articles newest-first. When publishedOnly is set, drafts are
// excluded.
func (r *ArticleRepository) List(ctx context.Context, publishedOnly bool, offset, limit int) ([]types.Article, int, error) {
	query := `SELECT ` + articleColumns + ` FROM articles`
	countQuery := `SELECT COUNT(*) FROM articles`
	if publishedOnly {
		query += ` WHERE published = TRUE`
		countQuery += ` WHERE published = TRUE`
	}
	query += ` ORDER BY created_at DESC OFFSET $1 LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	articles := make([]types.Article, 0, limit)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, 0, err
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

func (r *ArticleRepository) Get(ctx context.Context, id string) (types.Article, error) {
	const query = `SELECT ` + articleColumns + ` FROM articles WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *ArticleRepository) GetBySlug(ctx context.Context, slug string) (types.Article, error) {
	const query = `SELECT ` + articleColumns + ` FROM articles WHERE slug = $1`
	return r.getOne(ctx, query, slug)
}

func (r *ArticleRepository) Create(ctx context.Context, article types.Article) (types.Article, error) {
	now := time.Now()
	article.CreatedAt = now
	article.UpdatedAt = now

	const query = `
		INSERT INTO articles (id, title, slug, summary, content, image_url, published, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := r.db.ExecContext(ctx, query,
		article.ID, article.Title, article.Slug, article.Summary, article.Content,
		article.ImageURL, article.Published, article.AuthorID, article.CreatedAt, article.UpdatedAt,
	); err != nil {
		return types.Article{}, err
	}
	return article, nil
}

func (r *ArticleRepository) Update(ctx context.Context, article types.Article) (types.Article, error) {
	article.UpdatedAt = time.Now()

	const query = `
		UPDATE articles
		SET title = $1,
			slug = $2,
			summary = $3,
			content = $4,
			image_url = $5,
			published = $6,
			updated_at = $7
		WHERE id = $8`
	result, err := r.db.ExecContext(ctx, query,
		article.Title, article.Slug, article.Summary, article.Content,
		article.ImageURL, article.Published, article.UpdatedAt, article.ID,
	)
	if err != nil {
		return types.Article{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Article{}, err
	}
	if affected == 0 {
		return types.Article{}, ErrNotFound
	}
	return article, nil
}

func (r *ArticleRepository) Delete(ctx context.Context, id string) error {
	return execExpectingRow(ctx, r.db, `DELETE FROM articles WHERE id = $1`, id)
}

func (r *ArticleRepository) getOne(ctx context.Context, query string, arg any) (types.Article, error) {
	article, err := scanArticle(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Article{}, ErrNotFound
		}
		return types.Article{}, err
	}
	return article, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanArticle(row scanner) (types.Article, error) {
	var article types.Article
	err := row.Scan(
		&article.ID,
		&article.Title,
		&article.Slug,
		&article.Summary,
		&article.Content,
		&article.ImageURL,
		&article.Published,
		&article.AuthorID,
		&article.CreatedAt,
		&article.UpdatedAt,
	)
	return article, err
}

// execExpectingRow runs a statement that must affect exactly one row and
// maps zero affected rows to ErrNotFound.
func execExpectingRow(ctx context.Context, db *sql.DB, query string, args ...any) error {
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
