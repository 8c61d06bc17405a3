package entity

import "time"

// FailedFetch mirrors the `failed_fetches` PostgreSQL table schema.
type FailedFetch struct {
	ID            int64
	SourceURL     string
	Method        int
	Reason        string
	LastAttemptAt time.Time
	AttemptCount  int
}
