package crawler

import (
	"context"
)

// Renderer loads a page in a browser context and returns its rendered HTML.
// Implementations are expected to wait for the DOM to settle before
// capturing; the context bounds the whole navigation.
type Renderer interface {
	Render(ctx context.Context, pageURL string) (string, error)
	Close() error
}

// Fetcher retrieves a single remote resource.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*FetchResult, error)
}

// FetchResult contains the response of a resource fetch
type FetchResult struct {
	StatusCode  int
	Body        []byte
	ContentType string
	FinalURL    string // After following redirects
}

// Manifest records crawl results for reporting
type Manifest interface {
	RecordPage(page *PageRecord) error
	RecordAsset(asset *AssetRecord) error
	RecordError(crawlErr *CrawlError) error

	// Final report
	Counts() (pages int, assets int, err error)

	// Meta-data management
	GetMeta(key string) (string, error)
	SetMeta(key, value string) error

	Close() error
}
