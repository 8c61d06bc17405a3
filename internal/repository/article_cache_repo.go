package repository

import (
	"context"
	"time"

	"github.com/user/paywall-reader/internal/entity"
)

// ArticleCacheRepository defines the interface for caching successful reads.
type ArticleCacheRepository interface {
	// Get returns the cached article for the URL and method, if any.
	Get(ctx context.Context, sourceURL string, method int) (*entity.Article, bool, error)
	// Set caches the article with a specific expiry time.
	Set(ctx context.Context, article *entity.Article, expiry time.Duration) error
	Ping(ctx context.Context) error
}
