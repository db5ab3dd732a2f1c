// Package store persists crawl results to a local SQLite database so
// runs can be compared over time without re-crawling.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/bbachinco/yeoshin/pkg/models"
)

const dbFile = "yeoshin.db"

// Store wraps the results database. SQLite supports one writer, so the
// connection pool is pinned to a single connection.
type Store struct {
	db   *sql.DB
	path string
}

// DefaultDir returns the per-user data directory for the results database.
func DefaultDir() string {
	return filepath.Join(xdg.DataHome, "yeoshin")
}

// Open opens or creates the database under the given directory. An empty
// dir selects the default per-user data directory.
func Open(dir string) (*Store, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	path := filepath.Join(dir, dbFile)

	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, path: path}
	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		keyword TEXT NOT NULL,
		started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		row_count INTEGER NOT NULL,
		truncated INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_keyword ON runs(keyword);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	CREATE TABLE IF NOT EXISTS option_rows (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		provider TEXT NOT NULL,
		location TEXT NOT NULL,
		event TEXT NOT NULL,
		option TEXT NOT NULL,
		price TEXT NOT NULL,
		rating TEXT NOT NULL,
		reviews TEXT NOT NULL,
		scraps TEXT NOT NULL,
		inquiries TEXT NOT NULL,
		detail_url TEXT,
		description TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_rows_run ON option_rows(run_id);
	`
	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun persists one crawl result table and returns the new run ID.
// Rows are written in a single transaction so a failed save leaves no
// partial run behind.
func (s *Store) SaveRun(ctx context.Context, table *models.ResultTable) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	truncated := 0
	if table.Truncated {
		truncated = 1
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (keyword, row_count, truncated) VALUES (?, ?, ?)`,
		table.Keyword, table.Len(), truncated)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO option_rows
			(run_id, position, provider, location, event, option, price,
			 rating, reviews, scraps, inquiries, detail_url, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare row insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range table.Rows {
		row := r.Row()
		detailURL, _ := r.Event.DetailURL.Value()
		description, _ := r.Event.Description.Value()
		_, err := stmt.ExecContext(ctx, runID, r.Event.Position,
			row[0], row[1], row[2], row[3], row[4],
			row[5], row[6], row[7], row[8],
			detailURL, description)
		if err != nil {
			return 0, fmt.Errorf("failed to insert row for position %d: %w", r.Event.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}

// RunSummary is one stored run.
type RunSummary struct {
	ID        int64
	Keyword   string
	StartedAt time.Time
	RowCount  int
	Truncated bool
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, keyword, started_at, row_count, truncated
		FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		var truncated int
		if err := rows.Scan(&r.ID, &r.Keyword, &r.StartedAt, &r.RowCount, &truncated); err != nil {
			return nil, err
		}
		r.Truncated = truncated != 0
		out = append(out, r)
	}
	return out, rows.Err()
}
