// Package crawler implements the site-mirroring engine: a sequential,
// queue-driven crawl that renders pages, downloads their assets once each,
// and rewrites references so the saved tree is browsable offline.
package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"time"

	"github.com/habibjh88/html-copier/internal/config"
	"github.com/habibjh88/html-copier/internal/parser"
)

// Crawler owns all mutable crawl state: the frontier, the asset pipeline's
// dedup sets and the run statistics. One Crawler value drives one run; the
// control loop is strictly sequential, so none of the state needs locking.
type Crawler struct {
	cfg      *config.MirrorConfig
	renderer Renderer
	pipeline *AssetPipeline
	frontier *Frontier
	limiter  *RateLimiter
	manifest Manifest
	stats    CrawlStats
}

// New creates a crawler for the configured start URL. The fetch and render
// capabilities are mandatory: a crawler without either is a configuration
// error, detected here before any crawl activity.
func New(cfg *config.MirrorConfig, renderer Renderer, fetcher Fetcher, manifest Manifest) (*Crawler, error) {
	if fetcher == nil {
		return nil, ErrNoFetcher
	}
	if renderer == nil {
		return nil, ErrNoRenderer
	}

	start, err := url.Parse(cfg.StartURL)
	if err != nil {
		return nil, fmt.Errorf("invalid start URL: %w", err)
	}

	limiter := NewRateLimiter(cfg.RequestDelay)

	return &Crawler{
		cfg:      cfg,
		renderer: renderer,
		pipeline: NewAssetPipeline(fetcher, limiter, manifest, cfg.OutputDir),
		frontier: NewFrontier(start.Hostname(), cfg.PathPrefix),
		limiter:  limiter,
		manifest: manifest,
		stats:    CrawlStats{StartTime: time.Now()},
	}, nil
}

// Run executes the crawl: pop a page, render it, mirror its assets, save the
// rewritten HTML, admit its outbound links, repeat. Termination comes from
// an empty frontier, the page cap, or context cancellation, whichever first.
func (c *Crawler) Run(ctx context.Context) (*CrawlStats, error) {
	if !c.frontier.Admit(c.cfg.StartURL) {
		return nil, fmt.Errorf("start URL %q not admissible with prefix %q", c.cfg.StartURL, c.cfg.PathPrefix)
	}

	if c.manifest != nil {
		if prev, err := c.manifest.GetMeta("start_url"); err == nil && prev != "" && prev != c.cfg.StartURL {
			slog.Warn("Manifest belongs to a different start URL, records will mix",
				"previous", prev, "current", c.cfg.StartURL)
		}
		if err := c.manifest.SetMeta("start_url", c.cfg.StartURL); err != nil {
			slog.Warn("Failed to record start URL", "error", err)
		}
	}

	slog.Info("Starting mirror", "start_url", c.cfg.StartURL, "prefix", c.cfg.PathPrefix, "max_pages", c.cfg.MaxPages)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Mirror cancelled")
			return c.finish(), ctx.Err()
		default:
		}

		if c.cfg.MaxPages > 0 && c.frontier.VisitedCount() >= c.cfg.MaxPages {
			slog.Info("Page cap reached", "max_pages", c.cfg.MaxPages)
			break
		}

		pageURL, ok := c.frontier.Pop()
		if !ok {
			break
		}

		if err := c.visitPage(ctx, pageURL); err != nil {
			// Per-page failures are isolated: log, record, continue.
			slog.Error("Failed to process page", "url", pageURL, "error", err)
			c.stats.ErrorCount++
			c.recordPageFailure(pageURL, err)
		}
	}

	return c.finish(), nil
}

// visitPage fully processes one page before returning: render, mirror
// assets, rewrite, persist, discover links.
func (c *Crawler) visitPage(ctx context.Context, pageURL string) error {
	started := time.Now()

	u, err := url.Parse(pageURL)
	if err != nil {
		return fmt.Errorf("invalid page URL: %w", err)
	}
	if err := c.limiter.Wait(ctx, u.Host); err != nil {
		return err
	}

	renderCtx, cancel := context.WithTimeout(ctx, c.cfg.RenderTimeout)
	defer cancel()

	htmlText, err := c.renderer.Render(renderCtx, pageURL)
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	renderTime := time.Since(started)

	extractor, err := parser.NewExtractor(pageURL)
	if err != nil {
		return err
	}

	assets, err := extractor.Assets(htmlText)
	if err != nil {
		return fmt.Errorf("asset extraction failed: %w", err)
	}

	// One asset at a time; failures leave the original absolute URL in the
	// saved HTML rather than a broken local reference.
	urlToLocal := make(map[string]string, len(assets))
	for _, asset := range assets {
		local, err := c.pipeline.EnsureDownloaded(ctx, asset)
		if err != nil {
			slog.Debug("Asset not mirrored", "page", pageURL, "asset", asset, "error", err)
			continue
		}
		urlToLocal[asset] = local
	}

	pagePath, err := PagePath(pageURL)
	if err != nil {
		return err
	}

	rewritten := Rewrite(htmlText, urlToLocal, pagePath, pageURL)
	if err := writeFile(filepath.Join(c.cfg.OutputDir, filepath.FromSlash(pagePath)), []byte(rewritten)); err != nil {
		return err
	}
	c.stats.BytesWritten += int64(len(rewritten))

	links, err := extractor.Links(htmlText)
	if err != nil {
		return fmt.Errorf("link extraction failed: %w", err)
	}
	admitted := 0
	for _, link := range links {
		if c.frontier.Admit(link) {
			admitted++
		}
	}

	if c.manifest != nil {
		rec := &PageRecord{
			URL:        pageURL,
			LocalPath:  pagePath,
			Status:     StatusOK,
			AssetCount: len(assets),
			RenderTime: renderTime,
			Size:       int64(len(rewritten)),
			VisitedAt:  time.Now().UTC(),
		}
		if err := c.manifest.RecordPage(rec); err != nil {
			slog.Error("Failed to record page", "url", pageURL, "error", err)
		}
	}

	slog.Info("Processed page", "url", pageURL, "path", pagePath,
		"assets", len(urlToLocal), "new_links", admitted, "pending", c.frontier.PendingCount())
	return nil
}

// recordPageFailure marks a failed page in the manifest. The page stays
// visited, so it is never retried within the run.
func (c *Crawler) recordPageFailure(pageURL string, visitErr error) {
	if c.manifest == nil {
		return
	}

	rec := &PageRecord{
		URL:          pageURL,
		Status:       StatusError,
		ErrorMessage: visitErr.Error(),
		VisitedAt:    time.Now().UTC(),
	}
	if err := c.manifest.RecordPage(rec); err != nil {
		slog.Error("Failed to record page error", "url", pageURL, "error", err)
	}
	crawlErr := &CrawlError{
		URL:          pageURL,
		ErrorType:    "render_error",
		ErrorMessage: visitErr.Error(),
		OccurredAt:   time.Now().UTC(),
	}
	if err := c.manifest.RecordError(crawlErr); err != nil {
		slog.Error("Failed to record crawl error", "url", pageURL, "error", err)
	}
}

// finish freezes and returns run statistics
func (c *Crawler) finish() *CrawlStats {
	downloads, skips, bytes := c.pipeline.Stats()
	c.stats.PagesVisited = c.frontier.VisitedCount()
	c.stats.AssetsDownloaded = downloads
	c.stats.AssetsSkipped = skips
	c.stats.BytesWritten += bytes
	c.stats.Duration = time.Since(c.stats.StartTime)

	slog.Info("Mirror finished", "pages", c.stats.PagesVisited,
		"assets", c.stats.AssetsDownloaded, "skipped", c.stats.AssetsSkipped,
		"errors", c.stats.ErrorCount, "duration", c.stats.Duration)
	return &c.stats
}

// Stats returns the statistics collected so far
func (c *Crawler) Stats() CrawlStats {
	return c.stats
}
