// Package persistence implements the summary store the pipeline hands
// completed runs to. The pipeline treats persistence as best-effort; the
// store itself is strict and reports real errors to its caller.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/caseymrobbins/personal-ai-sub001/internal/logging"
	"github.com/caseymrobbins/personal-ai-sub001/pkg/types"
)

// SQLiteStore persists run summaries to a local SQLite database
type SQLiteStore struct {
	db     *sql.DB
	logger logging.Logger
}

// NewSQLiteStore opens (or creates) the database at path and ensures the
// schema exists. Use ":memory:" for an ephemeral store.
func NewSQLiteStore(path string, logger logging.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = logging.NewNoop()
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open summary store: %w", err)
	}
	store := &SQLiteStore{db: db, logger: logger.WithComponent("persistence")}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS run_summaries (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		run_id     TEXT NOT NULL UNIQUE,
		type       TEXT NOT NULL,
		question   TEXT NOT NULL,
		answer_id  TEXT NOT NULL,
		quality    REAL NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_run_summaries_user ON run_summaries(user_id, created_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("migrate summary store: %w", err)
	}
	return nil
}

// PersistSummary stores one run summary and returns the stored row's ID.
// Re-persisting the same run ID updates the existing row.
func (s *SQLiteStore) PersistSummary(ctx context.Context, userID, runID string, summary *types.RunSummary) (string, error) {
	if summary == nil {
		return "", fmt.Errorf("persistence: summary is required")
	}
	if runID == "" {
		return "", fmt.Errorf("persistence: run ID is required")
	}
	id := "summary-" + runID
	created := summary.Timestamp
	if created.IsZero() {
		created = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO run_summaries (id, user_id, run_id, type, question, answer_id, quality, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			type = excluded.type,
			question = excluded.question,
			answer_id = excluded.answer_id,
			quality = excluded.quality`,
		id, userID, runID, summary.Type, summary.Question, summary.AnswerID, summary.Quality, created)
	if err != nil {
		return "", fmt.Errorf("persist run summary: %w", err)
	}

	s.logger.Debug("persisted run summary", "run_id", runID, "user_id", userID)
	return id, nil
}

// RecentSummaries returns the newest summaries for a user, newest first
func (s *SQLiteStore) RecentSummaries(ctx context.Context, userID string, limit int) ([]types.RunSummary, error) {
	if limit < 1 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT type, question, answer_id, quality, created_at
		FROM run_summaries WHERE user_id = ?
		ORDER BY created_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query run summaries: %w", err)
	}
	defer rows.Close()

	var summaries []types.RunSummary
	for rows.Next() {
		var summary types.RunSummary
		if err := rows.Scan(&summary.Type, &summary.Question, &summary.AnswerID, &summary.Quality, &summary.Timestamp); err != nil {
			return nil, fmt.Errorf("scan run summary: %w", err)
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

// Close releases the underlying database handle
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// NoopStore discards summaries, for configurations without persistence
type NoopStore struct{}

func (NoopStore) PersistSummary(_ context.Context, _, runID string, _ *types.RunSummary) (string, error) {
	return "noop-" + runID, nil
}
