package storage

const schemaSQL = `
-- One row per visited page. INSERT OR REPLACE keeps the latest outcome
-- when the same URL is recorded again in a later run.
CREATE TABLE IF NOT EXISTS pages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    url TEXT UNIQUE NOT NULL,
    local_path TEXT,
    status TEXT NOT NULL CHECK (status IN ('ok', 'error')),
    asset_count INTEGER DEFAULT 0,
    render_time_ms INTEGER,
    size_bytes INTEGER,
    error_message TEXT,
    visited_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_pages_status ON pages(status);

-- One row per asset download attempt
CREATE TABLE IF NOT EXISTS assets (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    url TEXT UNIQUE NOT NULL,
    local_path TEXT,
    status TEXT NOT NULL CHECK (status IN ('ok', 'error')),
    content_type TEXT,
    size_bytes INTEGER,
    error_message TEXT,
    downloaded_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_assets_status ON assets(status);

-- Detailed error log
CREATE TABLE IF NOT EXISTS crawl_errors (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    url TEXT NOT NULL,
    error_type TEXT NOT NULL,
    error_message TEXT,
    occurred_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_errors_url ON crawl_errors(url);
CREATE INDEX IF NOT EXISTS idx_errors_type ON crawl_errors(error_type);

-- Crawl meta table stores metadata as key-value pairs
CREATE TABLE IF NOT EXISTS crawl_meta (
    key TEXT PRIMARY KEY NOT NULL,
    value TEXT NOT NULL
);
`
