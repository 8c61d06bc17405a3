package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/user/paywall-reader/internal/bypass"
	"github.com/user/paywall-reader/internal/entity"
	"github.com/user/paywall-reader/internal/extractor"
	"github.com/user/paywall-reader/internal/repository"
	"github.com/user/paywall-reader/pkg/metrics"
	"github.com/user/paywall-reader/pkg/utils"
	"go.uber.org/zap"
)

var (
	// ErrNoContent is returned when no bypass method produced acceptable content.
	ErrNoContent = errors.New("no bypass method returned acceptable content")
	// ErrArchiveDisabled is returned by Archived when no archive is configured.
	ErrArchiveDisabled = errors.New("article archive is not configured")
)

// Reader defines the interface for fetching articles through bypass mirrors.
type Reader interface {
	// Read performs a single attempt with the given method and returns whatever was extracted.
	Read(ctx context.Context, articleURL string, method bypass.Method) (*entity.Article, error)
	// ReadAny tries every method in order and returns the first successful result.
	ReadAny(ctx context.Context, articleURL string) (*entity.Article, error)
	// Archived returns the most recent archived article for the URL.
	Archived(ctx context.Context, articleURL string) (*entity.Article, error)
}

type readerUseCase struct {
	browser   repository.BrowserRepository
	extractor *extractor.Extractor
	logger    *zap.Logger

	cache    repository.ArticleCacheRepository
	cacheTTL time.Duration
	archive  repository.ArticleRepository
	failed   repository.FailedFetchRepository

	now func() time.Time

	// sessions is a one-slot semaphore so two browser sessions never coexist.
	sessions chan struct{}
}

// Option configures optional stores on the reader.
type Option func(*readerUseCase)

// WithCache caches successful results for ttl.
func WithCache(cache repository.ArticleCacheRepository, ttl time.Duration) Option {
	return func(uc *readerUseCase) {
		uc.cache = cache
		uc.cacheTTL = ttl
	}
}

// WithArchive records every extracted article and every failed attempt.
func WithArchive(archive repository.ArticleRepository, failed repository.FailedFetchRepository) Option {
	return func(uc *readerUseCase) {
		uc.archive = archive
		uc.failed = failed
	}
}

// NewReader creates a new instance of the reader use case.
func NewReader(browser repository.BrowserRepository, ext *extractor.Extractor, logger *zap.Logger, opts ...Option) Reader {
	uc := &readerUseCase{
		browser:   browser,
		extractor: ext,
		logger:    logger,
		now:       time.Now,
		sessions:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *readerUseCase) Read(ctx context.Context, articleURL string, method bypass.Method) (*entity.Article, error) {
	if !method.Valid() {
		method = bypass.Default
	}
	return uc.attempt(ctx, articleURL, method)
}

func (uc *readerUseCase) ReadAny(ctx context.Context, articleURL string) (*entity.Article, error) {
	uc.logger.Info("Trying all bypass methods", zap.String("url", articleURL))

	for _, method := range bypass.All() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		uc.logger.Info("Attempting method", zap.Stringer("method", method))

		article, err := uc.attempt(ctx, articleURL, method)
		if err == nil && article.Succeeded() {
			uc.logger.Info("Method worked", zap.Int("method", int(method)))
			return article, nil
		}
		uc.logger.Warn("Method failed or returned insufficient content",
			zap.Int("method", int(method)),
			zap.Error(err),
		)
	}

	return nil, ErrNoContent
}

func (uc *readerUseCase) Archived(ctx context.Context, articleURL string) (*entity.Article, error) {
	if uc.archive == nil {
		return nil, ErrArchiveDisabled
	}
	return uc.archive.FindLatest(ctx, articleURL)
}

// attempt runs one browser session for one method, consulting the cache first.
func (uc *readerUseCase) attempt(ctx context.Context, articleURL string, method bypass.Method) (*entity.Article, error) {
	methodLabel := fmt.Sprint(int(method))

	if cached, ok := uc.cached(ctx, articleURL, method); ok {
		return cached, nil
	}

	bypassURL := bypass.BuildURL(articleURL, method)
	uc.logger.Info("Fetching article",
		zap.Stringer("method", method),
		zap.String("bypass_url", bypassURL),
	)

	startTime := time.Now()
	page, err := uc.render(ctx, bypassURL)
	metrics.FetchDuration.WithLabelValues(methodLabel).Observe(time.Since(startTime).Seconds())

	if err != nil {
		metrics.FetchAttemptsTotal.WithLabelValues(methodLabel, "failure", errorType(err)).Inc()
		uc.logger.Error("Error fetching article",
			zap.String("bypass_url", bypassURL),
			zap.String("domain", utils.Hostname(articleURL)),
			zap.Error(err),
		)
		uc.recordFailure(ctx, articleURL, method, err)
		return nil, err
	}

	fields, err := uc.extractor.Extract(page)
	if err != nil {
		metrics.FetchAttemptsTotal.WithLabelValues(methodLabel, "failure", "extraction").Inc()
		uc.recordFailure(ctx, articleURL, method, err)
		return nil, err
	}

	article := &entity.Article{
		SourceURL: articleURL,
		Method:    int(method),
		BypassURL: bypassURL,
		Title:     fields.Title,
		Author:    fields.Author,
		Date:      fields.Date,
		Body:      fields.Body,
		FetchedAt: uc.now().UTC(),
	}

	status := "insufficient"
	if article.Succeeded() {
		status = "success"
	}
	metrics.FetchAttemptsTotal.WithLabelValues(methodLabel, status, "").Inc()

	uc.store(ctx, article)
	return article, nil
}

func (uc *readerUseCase) render(ctx context.Context, url string) (*entity.RenderedPage, error) {
	select {
	case uc.sessions <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-uc.sessions }()

	// the slot may have been won in the same instant ctx was cancelled
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return uc.browser.Render(ctx, url)
}

func (uc *readerUseCase) cached(ctx context.Context, articleURL string, method bypass.Method) (*entity.Article, bool) {
	if uc.cache == nil {
		return nil, false
	}
	article, found, err := uc.cache.Get(ctx, articleURL, int(method))
	switch {
	case err != nil:
		metrics.CacheLookupsTotal.WithLabelValues("error").Inc()
		// This is not a critical error, just log it.
		uc.logger.Warn("Article cache lookup failed", zap.String("url", articleURL), zap.Error(err))
		return nil, false
	case !found:
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
		return nil, false
	}
	metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
	uc.logger.Info("Serving article from cache", zap.String("url", articleURL), zap.Int("method", int(method)))
	return article, true
}

// store persists the result. Store failures never fail the read.
func (uc *readerUseCase) store(ctx context.Context, article *entity.Article) {
	if uc.cache != nil && article.Succeeded() {
		if err := uc.cache.Set(ctx, article, uc.cacheTTL); err != nil {
			uc.logger.Warn("Failed to cache article", zap.String("url", article.SourceURL), zap.Error(err))
		}
	}
	if uc.archive != nil {
		if err := uc.archive.Save(ctx, article); err != nil {
			uc.logger.Warn("Failed to archive article", zap.String("url", article.SourceURL), zap.Error(err))
		}
	}
	if uc.failed != nil && article.Succeeded() {
		// If the method previously failed for this URL, clear the record.
		if err := uc.failed.Delete(ctx, article.SourceURL, article.Method); err != nil {
			uc.logger.Warn("Failed to delete failed fetch record", zap.String("url", article.SourceURL), zap.Error(err))
		}
	}
}

func (uc *readerUseCase) recordFailure(ctx context.Context, articleURL string, method bypass.Method, fetchErr error) {
	if uc.failed == nil {
		return
	}
	failed := &entity.FailedFetch{
		SourceURL:     articleURL,
		Method:        int(method),
		Reason:        fetchErr.Error(),
		LastAttemptAt: uc.now().UTC(),
	}
	if err := uc.failed.SaveOrUpdate(ctx, failed); err != nil {
		uc.logger.Warn("Failed to record failed fetch", zap.String("url", articleURL), zap.Error(err))
	}
}

func errorType(err error) string {
	switch {
	case errors.Is(err, repository.ErrPageLoadTimeout):
		return "timeout"
	case errors.Is(err, repository.ErrBrowserLaunch):
		return "launch"
	case errors.Is(err, repository.ErrNavigationFailed):
		return "navigation"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "unknown"
	}
}
