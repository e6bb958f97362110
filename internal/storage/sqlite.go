// Package storage persists the crawl manifest: which pages were visited,
// which assets were downloaded and what failed, for reporting after a run.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/habibjh88/html-copier/internal/crawler"
	// SQLite database driver (CGO-free)
	_ "modernc.org/sqlite"
)

// SQLiteManifest implements the crawler.Manifest interface using SQLite
type SQLiteManifest struct {
	db *sql.DB
}

// NewSQLiteManifest creates a new SQLite manifest instance
func NewSQLiteManifest(dbPath string) (*SQLiteManifest, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single connection: the crawl loop is sequential and this prevents
	// lock conflicts.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	m := &SQLiteManifest{db: db}

	if err := m.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return m, nil
}

// initSchema creates the database schema
func (m *SQLiteManifest) initSchema() error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA busy_timeout = 30000",
	}

	for _, pragma := range pragmas {
		if _, err := m.db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute pragma %s: %w", pragma, err)
		}
	}

	if _, err := m.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// RecordPage stores the outcome of one page visit
func (m *SQLiteManifest) RecordPage(page *crawler.PageRecord) error {
	_, err := m.db.Exec(`
		INSERT OR REPLACE INTO pages
			(url, local_path, status, asset_count, render_time_ms, size_bytes, error_message, visited_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, page.URL, page.LocalPath, page.Status, page.AssetCount,
		page.RenderTime.Milliseconds(), page.Size, page.ErrorMessage, page.VisitedAt)
	if err != nil {
		return fmt.Errorf("failed to record page %s: %w", page.URL, err)
	}
	return nil
}

// RecordAsset stores the outcome of one asset download attempt
func (m *SQLiteManifest) RecordAsset(asset *crawler.AssetRecord) error {
	_, err := m.db.Exec(`
		INSERT OR REPLACE INTO assets
			(url, local_path, status, content_type, size_bytes, error_message, downloaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, asset.URL, asset.LocalPath, asset.Status, asset.ContentType,
		asset.Size, asset.ErrorMessage, asset.DownloadedAt)
	if err != nil {
		return fmt.Errorf("failed to record asset %s: %w", asset.URL, err)
	}
	return nil
}

// RecordError appends one entry to the error log
func (m *SQLiteManifest) RecordError(crawlErr *crawler.CrawlError) error {
	_, err := m.db.Exec(`
		INSERT INTO crawl_errors (url, error_type, error_message, occurred_at)
		VALUES (?, ?, ?, ?)
	`, crawlErr.URL, crawlErr.ErrorType, crawlErr.ErrorMessage, crawlErr.OccurredAt)
	if err != nil {
		return fmt.Errorf("failed to record error for %s: %w", crawlErr.URL, err)
	}
	return nil
}

// Counts returns the number of successfully visited pages and downloaded assets
func (m *SQLiteManifest) Counts() (pages int, assets int, err error) {
	row := m.db.QueryRow(`SELECT COUNT(*) FROM pages WHERE status = 'ok'`)
	if err := row.Scan(&pages); err != nil {
		return 0, 0, fmt.Errorf("failed to count pages: %w", err)
	}

	row = m.db.QueryRow(`SELECT COUNT(*) FROM assets WHERE status = 'ok'`)
	if err := row.Scan(&assets); err != nil {
		return 0, 0, fmt.Errorf("failed to count assets: %w", err)
	}

	return pages, assets, nil
}

// GetMeta retrieves a metadata value by key; missing keys return ""
func (m *SQLiteManifest) GetMeta(key string) (string, error) {
	var value string
	err := m.db.QueryRow(`SELECT value FROM crawl_meta WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get meta %s: %w", key, err)
	}
	return value, nil
}

// SetMeta stores a metadata key-value pair
func (m *SQLiteManifest) SetMeta(key, value string) error {
	_, err := m.db.Exec(`
		INSERT OR REPLACE INTO crawl_meta (key, value) VALUES (?, ?)
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set meta %s: %w", key, err)
	}
	return nil
}

// Close closes the database connection
func (m *SQLiteManifest) Close() error {
	return m.db.Close()
}
