package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/user/paywall-reader/internal/entity"
	"github.com/user/paywall-reader/pkg/utils"
)

const articleKeyPrefix = "article:"

// ArticleCacheRepoImpl provides a concrete implementation for the ArticleCacheRepository interface using Redis.
type ArticleCacheRepoImpl struct {
	client *redis.Client
}

// NewArticleCacheRepo creates a new instance of ArticleCacheRepoImpl.
func NewArticleCacheRepo(client *redis.Client) *ArticleCacheRepoImpl {
	return &ArticleCacheRepoImpl{client: client}
}

// generateKey creates a consistent Redis key for a URL and method by hashing the URL.
func (r *ArticleCacheRepoImpl) generateKey(sourceURL string, method int) string {
	return fmt.Sprintf("%s%d:%s", articleKeyPrefix, method, utils.HashURL(sourceURL))
}

// Get returns the cached article. A missing key is reported as found == false, not as an error.
func (r *ArticleCacheRepoImpl) Get(ctx context.Context, sourceURL string, method int) (*entity.Article, bool, error) {
	raw, err := r.client.Get(ctx, r.generateKey(sourceURL, method)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var article entity.Article
	if err := json.Unmarshal(raw, &article); err != nil {
		return nil, false, fmt.Errorf("corrupt cache entry for %s: %w", sourceURL, err)
	}
	return &article, true, nil
}

// Set stores the article as JSON with the given expiry.
func (r *ArticleCacheRepoImpl) Set(ctx context.Context, article *entity.Article, expiry time.Duration) error {
	raw, err := json.Marshal(article)
	if err != nil {
		return err
	}
	// SET with expiry is atomic.
	return r.client.Set(ctx, r.generateKey(article.SourceURL, article.Method), raw, expiry).Err()
}

func (r *ArticleCacheRepoImpl) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
