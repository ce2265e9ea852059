// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sink

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/chronam/pkg/types"
)

// SQLite stores records in a local database keyed by page ID and phrase.
// Re-running a search updates rows in place.
type SQLite struct {
	db     *sql.DB
	insert *sql.Stmt
	phrase string
}

// OpenSQLite opens or creates the database at path and its schema.
func OpenSQLite(path, phrase string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLite{db: db, phrase: phrase}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	s.insert, err = db.Prepare(`INSERT OR REPLACE INTO pages
		(id, phrase, year, month, day, date, title, place, text, stored_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("preparing insert: %w", err)
	}
	return s, nil
}

func (s *SQLite) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS pages (
			id TEXT NOT NULL,
			phrase TEXT NOT NULL,
			year INTEGER NOT NULL,
			month INTEGER NOT NULL,
			day INTEGER NOT NULL,
			date TEXT NOT NULL,
			title TEXT,
			place TEXT,
			text TEXT,
			stored_at TEXT,
			PRIMARY KEY (id, phrase)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pages_year ON pages(year)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Emit upserts rec.
func (s *SQLite) Emit(rec types.Record) error {
	_, err := s.insert.Exec(rec.ID, s.phrase, rec.Year, rec.Month, rec.Day, rec.Date,
		rec.Title, rec.Place, rec.Text, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("storing record %s: %w", rec.ID, err)
	}
	return nil
}

// Records returns the stored records for the sink's phrase ordered by
// date, or for every phrase when the phrase is empty.
func (s *SQLite) Records(ctx context.Context) ([]types.Record, error) {
	query := `SELECT id, year, month, day, date, title, place, text FROM pages`
	var args []any
	if s.phrase != "" {
		query += ` WHERE phrase = ?`
		args = append(args, s.phrase)
	}
	query += ` ORDER BY date, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying pages: %w", err)
	}
	defer rows.Close()

	var out []types.Record
	for rows.Next() {
		var r types.Record
		var title, place, text sql.NullString
		if err := rows.Scan(&r.ID, &r.Year, &r.Month, &r.Day, &r.Date, &title, &place, &text); err != nil {
			return nil, fmt.Errorf("scanning page row: %w", err)
		}
		r.Title, r.Place, r.Text = title.String, place.String, text.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close releases the database.
func (s *SQLite) Close() error {
	s.insert.Close()
	return s.db.Close()
}
