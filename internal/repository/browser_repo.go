package repository

import (
	"context"

	"github.com/user/paywall-reader/internal/entity"
)

// BrowserRepository defines the contract for rendering a page in an automated browser.
type BrowserRepository interface {
	// Render launches a browser session, loads url, waits for it to settle and
	// returns a snapshot of the DOM. The session is terminated before Render returns.
	Render(ctx context.Context, url string) (*entity.RenderedPage, error)
}
