package crawler

import "time"

// Page status values recorded in the manifest
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// PageRecord represents one visited page
type PageRecord struct {
	URL          string        // Normalized page URL
	LocalPath    string        // Mirror-root-relative path of the saved HTML
	Status       string        // 'ok' or 'error'
	AssetCount   int           // Assets discovered on this page
	RenderTime   time.Duration // Navigation + settle + capture time
	Size         int64         // Saved HTML size in bytes
	ErrorMessage string        // Failure detail when Status is 'error'
	VisitedAt    time.Time     // Timestamp when visited (UTC)
}

// AssetRecord represents one downloaded asset
type AssetRecord struct {
	URL          string    // Asset URL
	LocalPath    string    // Mirror-root-relative path on disk
	Status       string    // 'ok' or 'error'
	ContentType  string    // HTTP Content-Type header
	Size         int64     // Bytes written
	ErrorMessage string    // Failure detail when Status is 'error'
	DownloadedAt time.Time // Timestamp when downloaded (UTC)
}

// CrawlError represents crawling errors
type CrawlError struct {
	URL          string    // URL where error occurred
	ErrorType    string    // Error type (render_error, fetch_error, bad_status, etc.)
	ErrorMessage string    // Detailed error message
	OccurredAt   time.Time // Error occurrence timestamp (UTC)
}

// CrawlStats represents mirroring statistics
type CrawlStats struct {
	PagesVisited     int
	AssetsDownloaded int
	AssetsSkipped    int
	ErrorCount       int
	BytesWritten     int64
	StartTime        time.Time
	Duration         time.Duration
}
