package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/paywall-reader/internal/entity"
)

// FailedFetchRepoImpl provides a concrete implementation for the FailedFetchRepository interface using PostgreSQL.
type FailedFetchRepoImpl struct {
	db *pgxpool.Pool
}

// NewFailedFetchRepo creates a new instance of FailedFetchRepoImpl.
func NewFailedFetchRepo(db *pgxpool.Pool) *FailedFetchRepoImpl {
	return &FailedFetchRepoImpl{db: db}
}

// SaveOrUpdate creates or updates a record for a failed attempt.
// It increments attempt_count on conflict.
func (r *FailedFetchRepoImpl) SaveOrUpdate(ctx context.Context, f *entity.FailedFetch) error {
	query := `
		INSERT INTO failed_fetches (source_url, method, reason, last_attempt_at, attempt_count)
		VALUES ($1, $2, $3, $4, 1)
		ON CONFLICT (source_url, method) DO UPDATE SET
			reason = EXCLUDED.reason,
			last_attempt_at = EXCLUDED.last_attempt_at,
			attempt_count = failed_fetches.attempt_count + 1;
	`
	_, err := r.db.Exec(ctx, query,
		f.SourceURL,
		f.Method,
		f.Reason,
		f.LastAttemptAt,
	)
	return err
}

// Delete removes a failed fetch record, typically after a successful fetch.
func (r *FailedFetchRepoImpl) Delete(ctx context.Context, sourceURL string, method int) error {
	query := `DELETE FROM failed_fetches WHERE source_url = $1 AND method = $2;`
	_, err := r.db.Exec(ctx, query, sourceURL, method)
	return err
}
