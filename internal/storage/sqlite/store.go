// Package sqlite is the SQLite implementation of the query log.
package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/kueblaw/belex/internal/storage"
)

// Store is a SQLite implementation of storage.QueryStore.
type Store struct {
	db *sqlx.DB
}

var _ storage.QueryStore = (*Store)(nil)

// New opens (or creates) the query log database at dbPath.
func New(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &Store{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS queries (
			id TEXT PRIMARY KEY,
			query TEXT NOT NULL,
			answer TEXT,
			source_count INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			error_message TEXT,
			prompt_tokens INTEGER NOT NULL DEFAULT 0,
			response_tokens INTEGER NOT NULL DEFAULT 0,
			total_tokens INTEGER NOT NULL DEFAULT 0,
			duration_ns INTEGER,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_queries_created ON queries(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_queries_status ON queries(status)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}

// RecordQuery inserts one search record. A zero CreatedAt is filled with the
// current time.
func (s *Store) RecordQuery(ctx context.Context, rec *storage.QueryRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO queries (id, query, answer, source_count, status, error_message,
			prompt_tokens, response_tokens, total_tokens, duration_ns, created_at)
		VALUES (:id, :query, :answer, :source_count, :status, :error_message,
			:prompt_tokens, :response_tokens, :total_tokens, :duration_ns, :created_at)`,
		rec)
	if err != nil {
		return fmt.Errorf("failed to record query: %w", err)
	}

	return nil
}

// RecentQueries returns the most recent records, newest first.
func (s *Store) RecentQueries(ctx context.Context, limit int) ([]*storage.QueryRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	var records []*storage.QueryRecord
	err := s.db.SelectContext(ctx, &records, `
		SELECT id, query, answer, source_count, status, error_message,
			prompt_tokens, response_tokens, total_tokens, duration_ns, created_at
		FROM queries
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list queries: %w", err)
	}

	return records, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
