package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/paywall-reader/internal/entity"
	"github.com/user/paywall-reader/internal/repository"
)

// ArticleRepoImpl provides a concrete implementation for the ArticleRepository interface using PostgreSQL.
type ArticleRepoImpl struct {
	db *pgxpool.Pool
}

// NewArticleRepo creates a new instance of ArticleRepoImpl.
func NewArticleRepo(db *pgxpool.Pool) *ArticleRepoImpl {
	return &ArticleRepoImpl{db: db}
}

// Save stores or updates the article for a URL and method.
func (r *ArticleRepoImpl) Save(ctx context.Context, a *entity.Article) error {
	query := `
		INSERT INTO articles (source_url, method, bypass_url, title, author, published, body, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (source_url, method) DO UPDATE SET
			bypass_url = EXCLUDED.bypass_url,
			title = EXCLUDED.title,
			author = EXCLUDED.author,
			published = EXCLUDED.published,
			body = EXCLUDED.body,
			fetched_at = EXCLUDED.fetched_at;
	`

	_, err := r.db.Exec(ctx, query,
		a.SourceURL,
		a.Method,
		a.BypassURL,
		a.Title,
		a.Author,
		a.Date,
		a.Body,
		a.FetchedAt,
	)
	return err
}

// FindLatest retrieves the most recently fetched article for a source URL.
func (r *ArticleRepoImpl) FindLatest(ctx context.Context, sourceURL string) (*entity.Article, error) {
	query := `
		SELECT source_url, method, bypass_url, title, author, published, body, fetched_at
		FROM articles
		WHERE source_url = $1
		ORDER BY fetched_at DESC
		LIMIT 1;
	`
	row := r.db.QueryRow(ctx, query, sourceURL)

	var a entity.Article
	err := row.Scan(
		&a.SourceURL,
		&a.Method,
		&a.BypassURL,
		&a.Title,
		&a.Author,
		&a.Date,
		&a.Body,
		&a.FetchedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *ArticleRepoImpl) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
