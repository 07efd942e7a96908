// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive persists generation run history in a SQLite database so
// past issues and their verification outcomes can be reviewed.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/newsletter-engine/pkg/types"
)

const dbFile = "archive.db"

// Store manages the run history SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// Run is one recorded generation run.
type Run struct {
	ID               int64
	CreatedAt        time.Time
	Success          bool
	Error            string
	Title            string
	Sections         int
	SourcesFetched   int
	SourcesAllocated int
	DiversityScore   float64
	Retries          int
	TotalMillis      int64
}

// NewStore opens or creates the archive database at cfg.Dir/archive.db,
// creating the schema if it does not exist.
func NewStore(cfg types.ArchiveConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at TEXT NOT NULL,
			success INTEGER NOT NULL,
			error TEXT,
			title TEXT,
			sections INTEGER,
			sources_fetched INTEGER,
			sources_allocated INTEGER,
			diversity_score REAL,
			retries INTEGER,
			total_ms INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts one run into the archive and returns its row id. Failed
// runs are recorded too; the error column distinguishes them.
func (s *Store) Record(ctx context.Context, result types.Result) (int64, error) {
	title := ""
	sections := 0
	if result.Newsletter != nil {
		title = result.Newsletter.Title
		sections = len(result.Newsletter.Sections)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (created_at, success, error, title, sections,
			sources_fetched, sources_allocated, diversity_score, retries, total_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339Nano),
		result.Success, result.Error, title, sections,
		result.Metrics.SourcesFetched, result.Metrics.SourcesAllocated,
		result.Metrics.DiversityScore, result.Metrics.Retries,
		result.Metrics.TotalTime.Milliseconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	return res.LastInsertId()
}

// List returns the most recent runs, newest first, capped at the store's
// configured maximum.
func (s *Store) List(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, success, error, title, sections,
			sources_fetched, sources_allocated, diversity_score, retries, total_ms
		 FROM runs ORDER BY id DESC LIMIT ?`, s.maxResults)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var createdAt string
		if err := rows.Scan(&r.ID, &createdAt, &r.Success, &r.Error, &r.Title,
			&r.Sections, &r.SourcesFetched, &r.SourcesAllocated,
			&r.DiversityScore, &r.Retries, &r.TotalMillis); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
