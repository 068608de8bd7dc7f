// Package storage defines the query log store.
package storage

import (
	"context"
	"time"
)

// Query statuses recorded in the log.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// QueryRecord is one logged search.
type QueryRecord struct {
	ID             string        `db:"id"`
	Query          string        `db:"query"`
	Answer         string        `db:"answer"`
	SourceCount    int           `db:"source_count"`
	Status         string        `db:"status"`
	ErrorMessage   string        `db:"error_message"`
	PromptTokens   int           `db:"prompt_tokens"`
	ResponseTokens int           `db:"response_tokens"`
	TotalTokens    int           `db:"total_tokens"`
	Duration       time.Duration `db:"duration_ns"`
	CreatedAt      time.Time     `db:"created_at"`
}

// QueryStore persists and lists search records.
type QueryStore interface {
	RecordQuery(ctx context.Context, rec *QueryRecord) error
	RecentQueries(ctx context.Context, limit int) ([]*QueryRecord, error)
	Close() error
}

// NopStore discards everything. Used when no storage path is configured.
type NopStore struct{}

func (NopStore) RecordQuery(context.Context, *QueryRecord) error { return nil }

func (NopStore) RecentQueries(context.Context, int) ([]*QueryRecord, error) { return nil, nil }

func (NopStore) Close() error { return nil }
