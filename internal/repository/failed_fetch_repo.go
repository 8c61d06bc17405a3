package repository

import (
	"context"

	"github.com/user/paywall-reader/internal/entity"
)

// FailedFetchRepository defines the interface for recording session-level failures.
type FailedFetchRepository interface {
	// SaveOrUpdate creates or updates a record for a failed attempt.
	SaveOrUpdate(ctx context.Context, failed *entity.FailedFetch) error
	// Delete removes the record, typically after a successful fetch.
	Delete(ctx context.Context, sourceURL string, method int) error
}
