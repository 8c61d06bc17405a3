package chromedp_browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/user/paywall-reader/internal/entity"
	"github.com/user/paywall-reader/internal/proxy"
	"github.com/user/paywall-reader/internal/repository"
	"go.uber.org/zap"
)

const visibleTextScript = `document.body ? document.body.innerText : ""`

// Options configures every browser session started by ChromedpBrowser.
type Options struct {
	Headless           bool
	AcceptLanguage     string
	WindowWidth        int
	WindowHeight       int
	PageLoadTimeout    time.Duration
	SettleTimeout      time.Duration
	SettlePollInterval time.Duration
}

// ChromedpBrowser renders pages in a fresh Chromium process per call.
type ChromedpBrowser struct {
	opts   Options
	agents *proxy.Manager
	logger *zap.Logger
}

// NewChromedpBrowser creates a new browser implementation using chromedp.
func NewChromedpBrowser(opts Options, agents *proxy.Manager, logger *zap.Logger) *ChromedpBrowser {
	return &ChromedpBrowser{
		opts:   opts,
		agents: agents,
		logger: logger,
	}
}

func (b *ChromedpBrowser) allocatorOptions(userAgent, proxyServer string) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(b.opts.WindowWidth, b.opts.WindowHeight),
	)
	if userAgent != "" {
		opts = append(opts, chromedp.UserAgent(userAgent))
	}
	if proxyServer != "" {
		opts = append(opts, chromedp.ProxyServer(proxyServer))
	}
	return opts
}

// Render loads url and returns the settled DOM. Allocator and browser contexts
// are cancelled before returning, which terminates the Chromium process.
func (b *ChromedpBrowser) Render(ctx context.Context, url string) (*entity.RenderedPage, error) {
	ctx, cancel := context.WithTimeout(ctx, b.opts.PageLoadTimeout+b.opts.SettleTimeout)
	defer cancel()

	userAgent := b.agents.GetUserAgent()
	proxyServer := b.agents.GetProxy()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, b.allocatorOptions(userAgent, proxyServer)...)
	defer cancelAlloc()

	sugar := b.logger.Sugar()
	taskCtx, cancelTask := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(sugar.Debugf),
		chromedp.WithErrorf(sugar.Debugf),
	)
	defer cancelTask()

	// An empty Run starts the browser.
	if err := chromedp.Run(taskCtx); err != nil {
		return nil, classify(ctx, err, repository.ErrBrowserLaunch)
	}

	start := time.Now()
	b.logger.Debug("navigating", zap.String("url", url), zap.String("proxy", proxyServer))

	actions := chromedp.Tasks{network.Enable()}
	if b.opts.AcceptLanguage != "" {
		actions = append(actions, network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": b.opts.AcceptLanguage}))
	}
	actions = append(actions,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err := chromedp.Run(taskCtx, actions); err != nil {
		return nil, classify(ctx, err, repository.ErrNavigationFailed)
	}

	settled := b.waitSettled(taskCtx)

	page := &entity.RenderedPage{RequestedURL: url}
	err := chromedp.Run(taskCtx,
		chromedp.Location(&page.FinalURL),
		chromedp.OuterHTML("html", &page.HTML, chromedp.ByQuery),
		chromedp.Evaluate(visibleTextScript, &page.VisibleText),
	)
	if err != nil {
		return nil, classify(ctx, err, repository.ErrNavigationFailed)
	}

	b.logger.Debug("page rendered",
		zap.String("url", url),
		zap.String("final_url", page.FinalURL),
		zap.Bool("settled", settled),
		zap.Int("html_bytes", len(page.HTML)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return page, nil
}

// waitSettled polls the page until it looks finished or the settle timeout
// expires. It never fails the session; false means the timeout was hit.
func (b *ChromedpBrowser) waitSettled(ctx context.Context) bool {
	deadline := time.NewTimer(b.opts.SettleTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(b.opts.SettlePollInterval)
	defer ticker.Stop()

	var tracker settleTracker
	for {
		var state pageState
		if err := chromedp.Run(ctx, chromedp.Evaluate(settleProbeScript, &state)); err == nil {
			if tracker.observe(state) {
				return true
			}
		}

		select {
		case <-ctx.Done():
			return false
		case <-deadline.C:
			return false
		case <-ticker.C:
		}
	}
}

// classify maps a chromedp error onto the repository sentinel errors.
func classify(ctx context.Context, err error, kind error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", repository.ErrPageLoadTimeout, err)
	}
	return fmt.Errorf("%w: %v", kind, err)
}
