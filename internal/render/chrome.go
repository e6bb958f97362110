// Package render drives a headless Chrome instance to produce fully
// rendered page HTML, including DOM built by client-side JavaScript.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// ChromeRenderer renders pages through a shared headless-Chrome allocator.
// One browser process serves the whole crawl; each Render call gets its own
// tab context so a timed-out page does not poison the next one.
type ChromeRenderer struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	settleDelay time.Duration
	headers     network.Headers
}

// NewChromeRenderer starts the browser allocator as a child of ctx, so
// cancelling the crawl tears the browser down as well. Extra headers are
// sent with every request the browser issues while rendering.
func NewChromeRenderer(ctx context.Context, userAgent string, settleDelay time.Duration, headers map[string]string) *ChromeRenderer {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.UserAgent(userAgent),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)

	var extra network.Headers
	if len(headers) > 0 {
		extra = make(network.Headers, len(headers))
		for name, value := range headers {
			extra[name] = value
		}
	}

	return &ChromeRenderer{
		allocCtx:    allocCtx,
		allocCancel: cancel,
		settleDelay: settleDelay,
		headers:     extra,
	}
}

// Render navigates to pageURL, waits the settle delay for late-building DOM,
// and returns the document's outer HTML. The caller's context bounds the
// whole navigation; on timeout the tab is abandoned.
func (r *ChromeRenderer) Render(ctx context.Context, pageURL string) (string, error) {
	taskCtx, cancel := chromedp.NewContext(r.allocCtx)
	defer cancel()

	if deadline, ok := ctx.Deadline(); ok {
		taskCtx, cancel = context.WithDeadline(taskCtx, deadline)
		defer cancel()
	}

	slog.Debug("Rendering page", "url", pageURL)

	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(1920, 1080),
	}
	if r.headers != nil {
		tasks = append(tasks, network.Enable(), network.SetExtraHTTPHeaders(r.headers))
	}

	var outerHTML string
	tasks = append(tasks,
		chromedp.Navigate(pageURL),
		chromedp.Sleep(r.settleDelay),
		chromedp.OuterHTML("html", &outerHTML),
	)

	err := chromedp.Run(taskCtx, tasks)
	if err != nil {
		return "", fmt.Errorf("chrome navigation failed: %w", err)
	}

	return outerHTML, nil
}

// Close shuts down the browser allocator
func (r *ChromeRenderer) Close() error {
	r.allocCancel()
	return nil
}
