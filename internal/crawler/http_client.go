package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPClient fetches assets over HTTP. It follows redirects and sends a
// browser-like User-Agent so asset servers treat the crawler as the browser
// that rendered the referencing page.
type HTTPClient struct {
	client        *http.Client
	userAgent     string
	customHeaders map[string]string
}

// NewHTTPClient creates a new HTTP client
func NewHTTPClient(userAgent string, timeout time.Duration) *HTTPClient {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}

	return &HTTPClient{
		client:        client,
		userAgent:     userAgent,
		customHeaders: make(map[string]string),
	}
}

// SetCustomHeaders sets extra HTTP headers sent with every fetch
func (h *HTTPClient) SetCustomHeaders(headers map[string]string) {
	for k, v := range headers {
		h.customHeaders[k] = v
	}
}

// Fetch performs an HTTP GET for a single resource and returns its body.
// Redirects are followed; the returned FinalURL reflects the last hop.
// A non-2xx status is not an error here: the caller decides how to treat it.
func (h *HTTPClient) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", h.userAgent)
	req.Header.Set("Accept", "*/*")
	for name, value := range h.customHeaders {
		req.Header.Set(name, value)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &FetchResult{
		StatusCode:  resp.StatusCode,
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    resp.Request.URL.String(),
	}, nil
}

// Close closes idle connections held by the client
func (h *HTTPClient) Close() {
	h.client.CloseIdleConnections()
}
