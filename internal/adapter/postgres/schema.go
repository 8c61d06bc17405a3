package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS articles (
	id          BIGSERIAL PRIMARY KEY,
	source_url  TEXT        NOT NULL,
	method      SMALLINT    NOT NULL,
	bypass_url  TEXT        NOT NULL,
	title       TEXT        NOT NULL DEFAULT '',
	author      TEXT        NOT NULL DEFAULT '',
	published   TEXT        NOT NULL DEFAULT '',
	body        TEXT        NOT NULL DEFAULT '',
	fetched_at  TIMESTAMPTZ NOT NULL,
	UNIQUE (source_url, method)
);

CREATE INDEX IF NOT EXISTS articles_source_url_fetched_at_idx ON articles (source_url, fetched_at DESC);

CREATE TABLE IF NOT EXISTS failed_fetches (
	id              BIGSERIAL PRIMARY KEY,
	source_url      TEXT        NOT NULL,
	method          SMALLINT    NOT NULL,
	reason          TEXT        NOT NULL,
	last_attempt_at TIMESTAMPTZ NOT NULL,
	attempt_count   INTEGER     NOT NULL DEFAULT 1,
	UNIQUE (source_url, method)
);
`

// Connect opens a pool and makes sure the archive tables exist.
func Connect(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to create archive schema: %w", err)
	}
	return pool, nil
}
