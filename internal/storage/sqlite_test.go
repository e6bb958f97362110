package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/habibjh88/html-copier/internal/crawler"
)

func newTestManifest(t *testing.T) *SQLiteManifest {
	t.Helper()

	dbFile := filepath.Join(t.TempDir(), "test_mirror.db")
	m, err := NewSQLiteManifest(dbFile)
	if err != nil {
		t.Fatalf("Failed to create manifest: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestSQLiteManifest(t *testing.T) {
	m := newTestManifest(t)

	t.Run("RecordPagesAndAssets", func(t *testing.T) {
		pages := []*crawler.PageRecord{
			{
				URL:        "https://example.test/app/",
				LocalPath:  "app/index.html",
				Status:     crawler.StatusOK,
				AssetCount: 3,
				RenderTime: 1200 * time.Millisecond,
				Size:       2048,
				VisitedAt:  time.Now().UTC(),
			},
			{
				URL:          "https://example.test/app/broken/",
				Status:       crawler.StatusError,
				ErrorMessage: "render timeout",
				VisitedAt:    time.Now().UTC(),
			},
		}
		for _, p := range pages {
			if err := m.RecordPage(p); err != nil {
				t.Fatalf("RecordPage failed: %v", err)
			}
		}

		assets := []*crawler.AssetRecord{
			{
				URL:          "https://example.test/app/img/a.png",
				LocalPath:    "app/img/a.png",
				Status:       crawler.StatusOK,
				ContentType:  "image/png",
				Size:         512,
				DownloadedAt: time.Now().UTC(),
			},
			{
				URL:          "https://example.test/app/missing.js",
				Status:       crawler.StatusError,
				ErrorMessage: "status 404",
				DownloadedAt: time.Now().UTC(),
			},
		}
		for _, a := range assets {
			if err := m.RecordAsset(a); err != nil {
				t.Fatalf("RecordAsset failed: %v", err)
			}
		}

		pageCount, assetCount, err := m.Counts()
		if err != nil {
			t.Fatalf("Counts failed: %v", err)
		}
		if pageCount != 1 {
			t.Errorf("Counts pages = %d, want 1 (errors excluded)", pageCount)
		}
		if assetCount != 1 {
			t.Errorf("Counts assets = %d, want 1 (errors excluded)", assetCount)
		}
	})

	t.Run("RecordPageTwiceKeepsLatest", func(t *testing.T) {
		page := &crawler.PageRecord{
			URL:       "https://example.test/app/again/",
			LocalPath: "app/again/index.html",
			Status:    crawler.StatusOK,
			VisitedAt: time.Now().UTC(),
		}
		if err := m.RecordPage(page); err != nil {
			t.Fatalf("RecordPage failed: %v", err)
		}
		pageCount, _, err := m.Counts()
		if err != nil {
			t.Fatalf("Counts failed: %v", err)
		}
		if pageCount != 2 {
			t.Errorf("Counts pages = %d, want 2", pageCount)
		}

		// Re-recording the same URL replaces the row instead of adding one
		page.Status = crawler.StatusError
		page.ErrorMessage = "second run failed"
		if err := m.RecordPage(page); err != nil {
			t.Fatalf("Repeat RecordPage failed: %v", err)
		}
		pageCount, _, err = m.Counts()
		if err != nil {
			t.Fatalf("Counts failed: %v", err)
		}
		if pageCount != 1 {
			t.Errorf("Counts pages = %d after replacement, want 1", pageCount)
		}
	})

	t.Run("RecordError", func(t *testing.T) {
		crawlErr := &crawler.CrawlError{
			URL:          "https://example.test/app/broken/",
			ErrorType:    "render_error",
			ErrorMessage: "navigation timed out",
			OccurredAt:   time.Now().UTC(),
		}
		if err := m.RecordError(crawlErr); err != nil {
			t.Fatalf("RecordError failed: %v", err)
		}
	})

	t.Run("Meta", func(t *testing.T) {
		if err := m.SetMeta("start_url", "https://example.test/app/"); err != nil {
			t.Fatalf("SetMeta failed: %v", err)
		}
		got, err := m.GetMeta("start_url")
		if err != nil {
			t.Fatalf("GetMeta failed: %v", err)
		}
		if got != "https://example.test/app/" {
			t.Errorf("GetMeta = %q", got)
		}

		missing, err := m.GetMeta("no_such_key")
		if err != nil {
			t.Fatalf("GetMeta on missing key failed: %v", err)
		}
		if missing != "" {
			t.Errorf("GetMeta on missing key = %q, want empty", missing)
		}
	})
}
