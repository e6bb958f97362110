package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// cssURLPattern matches url(...) references inside stylesheet text,
// with or without surrounding quotes.
var cssURLPattern = regexp.MustCompile(`url\(\s*['"]?([^'")]+?)['"]?\s*\)`)

// AssetPipeline downloads each discovered asset exactly once, resolving
// CSS-embedded references recursively. All state is owned by the pipeline
// value; the crawl loop is sequential so no locking is needed.
type AssetPipeline struct {
	fetcher   Fetcher
	limiter   *RateLimiter
	manifest  Manifest
	outputDir string

	downloaded map[string]string // URL -> local path of completed downloads
	failed     map[string]bool   // URL -> fetch already failed once
	inProgress map[string]bool   // cycle guard for recursive CSS descent

	downloads int
	skips     int
	bytes     int64
}

// NewAssetPipeline creates an asset pipeline writing under outputDir.
// The manifest may be nil when no crawl record is wanted.
func NewAssetPipeline(fetcher Fetcher, limiter *RateLimiter, manifest Manifest, outputDir string) *AssetPipeline {
	return &AssetPipeline{
		fetcher:    fetcher,
		limiter:    limiter,
		manifest:   manifest,
		outputDir:  outputDir,
		downloaded: make(map[string]string),
		failed:     make(map[string]bool),
		inProgress: make(map[string]bool),
	}
}

// EnsureDownloaded makes sure the resource behind rawURL exists in the
// mirror and returns its mirror-root-relative path. Each URL is fetched at
// most once per run; a file already on disk from an earlier run is reused
// without fetching. data: URIs and previously failed URLs are rejected.
func (p *AssetPipeline) EnsureDownloaded(ctx context.Context, rawURL string) (string, error) {
	if strings.HasPrefix(rawURL, "data:") {
		return "", ErrUnsupportedScheme
	}

	if local, ok := p.downloaded[rawURL]; ok {
		return local, nil
	}
	if p.failed[rawURL] {
		return "", ErrAlreadyFailed
	}

	local, err := AssetPath(rawURL)
	if err != nil {
		return "", err
	}

	// A stylesheet chain can loop back to a URL whose download is still on
	// the stack. The mapping is already decided at this point, so returning
	// it keeps the reference correct while breaking the recursion.
	if p.inProgress[rawURL] {
		return local, nil
	}
	p.inProgress[rawURL] = true
	defer delete(p.inProgress, rawURL)

	fullPath := filepath.Join(p.outputDir, filepath.FromSlash(local))
	if info, err := os.Stat(fullPath); err == nil && !info.IsDir() {
		slog.Debug("Asset already on disk", "url", rawURL, "path", local)
		p.downloaded[rawURL] = local
		p.skips++
		return local, nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid asset URL %q: %w", rawURL, err)
	}
	if err := p.limiter.Wait(ctx, u.Host); err != nil {
		return "", err
	}

	resp, err := p.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		p.recordFailure(rawURL, local, "fetch_error", err.Error())
		return "", fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := fmt.Sprintf("status %d", resp.StatusCode)
		p.recordFailure(rawURL, local, "bad_status", msg)
		return "", fmt.Errorf("fetch %s: %w: %d", rawURL, ErrBadStatus, resp.StatusCode)
	}

	data := resp.Body
	if isStylesheet(local, resp.ContentType) {
		data = p.resolveStylesheet(ctx, data, rawURL, local)
	}

	if err := writeFile(fullPath, data); err != nil {
		return "", err
	}

	p.downloaded[rawURL] = local
	p.downloads++
	p.bytes += int64(len(data))

	if p.manifest != nil {
		rec := &AssetRecord{
			URL:          rawURL,
			LocalPath:    local,
			Status:       StatusOK,
			ContentType:  resp.ContentType,
			Size:         int64(len(data)),
			DownloadedAt: time.Now().UTC(),
		}
		if err := p.manifest.RecordAsset(rec); err != nil {
			slog.Error("Failed to record asset", "url", rawURL, "error", err)
		}
	}

	slog.Info("Downloaded asset", "url", rawURL, "path", local, "bytes", len(data))
	return local, nil
}

// resolveStylesheet downloads every url(...) reference inside stylesheet
// text and rewrites each to a path relative to the stylesheet's own
// directory. References are resolved against the stylesheet's URL, not the
// page that linked it. References that cannot be downloaded are left as-is.
func (p *AssetPipeline) resolveStylesheet(ctx context.Context, data []byte, cssURL, cssLocal string) []byte {
	base, err := url.Parse(cssURL)
	if err != nil {
		return data
	}
	cssDir := filepath.ToSlash(filepath.Dir(filepath.FromSlash(cssLocal)))

	rewritten := cssURLPattern.ReplaceAllStringFunc(string(data), func(match string) string {
		parts := cssURLPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		ref := strings.TrimSpace(parts[1])
		if ref == "" || strings.HasPrefix(ref, "data:") || strings.HasPrefix(ref, "#") {
			return match
		}

		refURL, err := url.Parse(ref)
		if err != nil {
			return match
		}
		target := base.ResolveReference(refURL).String()

		local, err := p.EnsureDownloaded(ctx, target)
		if err != nil {
			slog.Warn("Skipping stylesheet reference", "stylesheet", cssURL, "ref", ref, "error", err)
			return match
		}

		rel, err := RelativePath(cssDir, local)
		if err != nil {
			return match
		}
		return fmt.Sprintf("url('%s')", rel)
	})

	return []byte(rewritten)
}

// Downloaded returns the local path a URL resolved to, if it completed.
func (p *AssetPipeline) Downloaded(rawURL string) (string, bool) {
	local, ok := p.downloaded[rawURL]
	return local, ok
}

// Stats reports download, skip and byte counters for the run so far.
func (p *AssetPipeline) Stats() (downloads, skips int, bytes int64) {
	return p.downloads, p.skips, p.bytes
}

func (p *AssetPipeline) recordFailure(rawURL, local, errType, msg string) {
	p.failed[rawURL] = true

	if p.manifest == nil {
		return
	}
	rec := &AssetRecord{
		URL:          rawURL,
		LocalPath:    local,
		Status:       StatusError,
		ErrorMessage: msg,
		DownloadedAt: time.Now().UTC(),
	}
	if err := p.manifest.RecordAsset(rec); err != nil {
		slog.Error("Failed to record asset error", "url", rawURL, "error", err)
	}
	crawlErr := &CrawlError{
		URL:          rawURL,
		ErrorType:    errType,
		ErrorMessage: msg,
		OccurredAt:   time.Now().UTC(),
	}
	if err := p.manifest.RecordError(crawlErr); err != nil {
		slog.Error("Failed to record crawl error", "url", rawURL, "error", err)
	}
}

// isStylesheet reports whether an asset should get CSS reference resolution
func isStylesheet(localPath, contentType string) bool {
	if strings.HasSuffix(strings.ToLower(localPath), ".css") {
		return true
	}
	return strings.HasPrefix(contentType, "text/css")
}

// writeFile persists bytes, creating parent directories as needed.
// Filesystem failures propagate: a mirror that cannot write is fatal
// for the operation.
func writeFile(fullPath string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(fullPath), 0750); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", fullPath, err)
	}
	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", fullPath, err)
	}
	return nil
}
