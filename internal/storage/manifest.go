// Package storage tracks which source files have been ingested.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SourceRecord describes one ingested source file.
type SourceRecord struct {
	Path       string
	Domain     string
	Hash       string
	ChunkCount int
	IngestedAt time.Time
}

// Manifest records the content hash of every ingested file so that unchanged
// files can be skipped on re-ingest.
type Manifest struct {
	db *sql.DB
}

// OpenManifest opens or creates the manifest database at dbPath. Parent
// directories are created if they do not exist.
func OpenManifest(dbPath string) (*Manifest, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Manifest{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS sources (
		path TEXT PRIMARY KEY,
		domain TEXT NOT NULL,
		hash TEXT NOT NULL,
		chunk_count INTEGER NOT NULL,
		ingested_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sources_domain ON sources(domain);
	`
	_, err := db.Exec(schema)
	return err
}

// Get returns the record for path, or nil when the file was never ingested.
func (m *Manifest) Get(ctx context.Context, path string) (*SourceRecord, error) {
	var rec SourceRecord
	err := m.db.QueryRowContext(ctx,
		`SELECT path, domain, hash, chunk_count, ingested_at
		 FROM sources WHERE path = ?`, path,
	).Scan(&rec.Path, &rec.Domain, &rec.Hash, &rec.ChunkCount, &rec.IngestedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Put inserts or replaces the record for rec.Path.
func (m *Manifest) Put(ctx context.Context, rec SourceRecord) error {
	if rec.IngestedAt.IsZero() {
		rec.IngestedAt = time.Now()
	}
	_, err := m.db.ExecContext(ctx,
		`INSERT INTO sources (path, domain, hash, chunk_count, ingested_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET
			domain = excluded.domain,
			hash = excluded.hash,
			chunk_count = excluded.chunk_count,
			ingested_at = excluded.ingested_at`,
		rec.Path, rec.Domain, rec.Hash, rec.ChunkCount, rec.IngestedAt,
	)
	return err
}

// List returns every record ordered by path.
func (m *Manifest) List(ctx context.Context) ([]SourceRecord, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT path, domain, hash, chunk_count, ingested_at
		 FROM sources ORDER BY path`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []SourceRecord
	for rows.Next() {
		var rec SourceRecord
		if err := rows.Scan(&rec.Path, &rec.Domain, &rec.Hash, &rec.ChunkCount, &rec.IngestedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CountByDomain returns the number of ingested files per domain.
func (m *Manifest) CountByDomain(ctx context.Context) (map[string]int, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT domain, COUNT(*) FROM sources GROUP BY domain`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var domain string
		var n int
		if err := rows.Scan(&domain, &n); err != nil {
			return nil, err
		}
		counts[domain] = n
	}
	return counts, rows.Err()
}

// Delete removes the record for path.
func (m *Manifest) Delete(ctx context.Context, path string) error {
	_, err := m.db.ExecContext(ctx, `DELETE FROM sources WHERE path = ?`, path)
	return err
}

// Close closes the database connection.
func (m *Manifest) Close() error {
	return m.db.Close()
}
