// Package store persists scrape results to sqlite. The table is append-only
// from the orchestrator's perspective: every scrape inserts exactly one row
// and nothing ever updates or deletes existing rows.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/use-agent/podium/models"
)

//go:embed schema.sql
var schema string

// ErrNoRecords is returned by Latest when nothing has been persisted yet.
var ErrNoRecords = errors.New("store: no scrape results recorded")

// Store is the durable scrape-result collaborator.
type Store interface {
	Append(ctx context.Context, result *models.ScrapeResult) error
	Latest(ctx context.Context) (*models.ScrapeResult, error)
	History(ctx context.Context, limit int) ([]models.HistoryRecord, error)
}

// SQLite implements Store on a sqlite database.
type SQLite struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %q: %w", path, err)
	}
	// A single writer keeps sqlite happy under concurrent API reads.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Append inserts one scrape result.
func (s *SQLite) Append(ctx context.Context, result *models.ScrapeResult) error {
	entries, err := json.Marshal(result.Entries)
	if err != nil {
		return fmt.Errorf("store: marshal entries: %w", err)
	}
	metadata, err := json.Marshal(result.Metadata)
	if err != nil {
		return fmt.Errorf("store: marshal metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO scrape_results (scraped_at, source_url, total_entries, entries, metadata)
		VALUES (?, ?, ?, ?, ?)`,
		result.ScrapedAt.Unix(), result.SourceURL, result.TotalEntries,
		string(entries), string(metadata),
	)
	if err != nil {
		return fmt.Errorf("store: insert scrape result: %w", err)
	}
	return nil
}

// Latest returns the most recently persisted scrape result, or ErrNoRecords.
func (s *SQLite) Latest(ctx context.Context) (*models.ScrapeResult, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT scraped_at, source_url, total_entries, entries, metadata
		FROM scrape_results
		ORDER BY scraped_at DESC, id DESC
		LIMIT 1`)

	var (
		scrapedAt         int64
		sourceURL         string
		totalEntries      int
		entries, metadata string
	)
	if err := row.Scan(&scrapedAt, &sourceURL, &totalEntries, &entries, &metadata); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoRecords
		}
		return nil, fmt.Errorf("store: query latest: %w", err)
	}

	result := &models.ScrapeResult{
		ScrapedAt:    time.Unix(scrapedAt, 0).UTC(),
		SourceURL:    sourceURL,
		TotalEntries: totalEntries,
	}
	if err := json.Unmarshal([]byte(entries), &result.Entries); err != nil {
		return nil, fmt.Errorf("store: unmarshal entries: %w", err)
	}
	if err := json.Unmarshal([]byte(metadata), &result.Metadata); err != nil {
		return nil, fmt.Errorf("store: unmarshal metadata: %w", err)
	}
	return result, nil
}

// History returns summaries of the most recent limit results, newest first.
// The entries payload is deliberately not loaded.
func (s *SQLite) History(ctx context.Context, limit int) ([]models.HistoryRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, scraped_at, source_url, total_entries, metadata
		FROM scrape_results
		ORDER BY scraped_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: query history: %w", err)
	}
	defer rows.Close()

	var records []models.HistoryRecord
	for rows.Next() {
		var (
			rec       models.HistoryRecord
			scrapedAt int64
			metadata  string
		)
		if err := rows.Scan(&rec.ID, &scrapedAt, &rec.SourceURL, &rec.TotalEntries, &metadata); err != nil {
			return nil, fmt.Errorf("store: scan history row: %w", err)
		}
		rec.ScrapedAt = time.Unix(scrapedAt, 0).UTC()
		if err := json.Unmarshal([]byte(metadata), &rec.Metadata); err != nil {
			return nil, fmt.Errorf("store: unmarshal metadata: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
