package cli

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/user/paywall-reader/internal/adapter/chromedp_browser"
	"github.com/user/paywall-reader/internal/adapter/postgres"
	redis_adapter "github.com/user/paywall-reader/internal/adapter/redis"
	"github.com/user/paywall-reader/internal/delivery/http/handler"
	"github.com/user/paywall-reader/internal/extractor"
	"github.com/user/paywall-reader/internal/proxy"
	"github.com/user/paywall-reader/internal/usecase"
	"github.com/user/paywall-reader/pkg/config"
	"go.uber.org/zap"
)

// App is a fully wired reader plus the stores it was given.
type App struct {
	Reader usecase.Reader
	// Stores holds the configured stores for health checks, keyed by name.
	Stores map[string]handler.Pinger

	closers []func()
}

// Close releases store connections in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// AppFactory builds an App from configuration.
type AppFactory func(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error)

// NewApp wires the browser, extractor and any configured stores into a Reader.
func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	app := &App{Stores: make(map[string]handler.Pinger)}

	agents := proxy.NewManager(cfg.Browser.Proxies, cfg.Browser.UserAgents, cfg.Browser.UserAgent)
	browser := chromedp_browser.NewChromedpBrowser(chromedp_browser.Options{
		Headless:           cfg.Browser.Headless,
		AcceptLanguage:     cfg.Browser.AcceptLanguage,
		WindowWidth:        cfg.Browser.WindowWidth,
		WindowHeight:       cfg.Browser.WindowHeight,
		PageLoadTimeout:    cfg.Browser.PageLoadTimeout,
		SettleTimeout:      cfg.Browser.SettleTimeout,
		SettlePollInterval: cfg.Browser.SettlePollInterval,
	}, agents, logger)

	var opts []usecase.Option

	if cfg.CacheEnabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		app.closers = append(app.closers, func() { _ = rdb.Close() })
		if err := rdb.Ping(ctx).Err(); err != nil {
			app.Close()
			return nil, fmt.Errorf("unable to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		logger.Info("Redis connection established", zap.String("addr", cfg.Redis.Addr))

		cache := redis_adapter.NewArticleCacheRepo(rdb)
		app.Stores["redis"] = cache
		opts = append(opts, usecase.WithCache(cache, cfg.Redis.CacheTTL))
	}

	if cfg.ArchiveEnabled() {
		pool, err := postgres.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.closers = append(app.closers, pool.Close)
		logger.Info("PostgreSQL connection pool established")

		archive := postgres.NewArticleRepo(pool)
		app.Stores["postgres"] = archive
		opts = append(opts, usecase.WithArchive(archive, postgres.NewFailedFetchRepo(pool)))
	}

	ext := extractor.New(cfg.Selectors)
	rules := ext.Rules()
	logger.Debug("Extractor rules loaded",
		zap.Strings("title", rules.Title),
		zap.Strings("author", rules.Author),
		zap.Strings("date", rules.Date),
		zap.Strings("body", rules.Body),
	)

	app.Reader = usecase.NewReader(browser, ext, logger, opts...)
	return app, nil
}
