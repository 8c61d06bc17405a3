package repository

import (
	"context"

	"github.com/user/paywall-reader/internal/entity"
)

// ArticleRepository defines the interface for archiving fetched articles.
type ArticleRepository interface {
	// Save stores the article. An existing row for the same URL and method is updated.
	Save(ctx context.Context, article *entity.Article) error
	// FindLatest retrieves the most recently fetched article for a source URL.
	// It returns ErrNotFound when nothing was archived.
	FindLatest(ctx context.Context, sourceURL string) (*entity.Article, error)
	Ping(ctx context.Context) error
}
