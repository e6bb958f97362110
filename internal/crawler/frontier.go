package crawler

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// Frontier holds the pending page queue and the visited set for one crawl.
// Admission is restricted to the start URL's hostname and a path prefix.
// The queue is strictly FIFO: insertion order is discovery order.
type Frontier struct {
	host    string
	prefix  string
	pending []string
	visited map[string]bool
}

// NewFrontier creates a frontier scoped to the given hostname and path prefix.
func NewFrontier(host, prefix string) *Frontier {
	return &Frontier{
		host:    host,
		prefix:  prefix,
		visited: make(map[string]bool),
	}
}

// NormalizePageURL converts a raw href into canonical page-URL form: the
// fragment is dropped, repeated trailing slashes collapse to one, and an
// extensionless path gains a trailing slash. The slash canonicalization
// makes /app/page2 and /app/page2/ one page; both map to the same saved
// file, so admitting them separately would render the page twice and let
// the second write overwrite the first.
func NormalizePageURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid page URL %q: %w", rawURL, err)
	}

	u.Fragment = ""

	p := u.Path
	for strings.HasSuffix(p, "//") {
		p = p[:len(p)-1]
	}
	if p == "" || (!strings.HasSuffix(p, "/") && path.Ext(p) == "") {
		p += "/"
	}
	u.Path = p

	return u.String(), nil
}

// Admit normalizes a candidate URL and appends it to the pending queue if it
// passes every admission check: same hostname, in-prefix path, not visited,
// not already pending. It reports whether the URL was enqueued.
func (f *Frontier) Admit(rawURL string) bool {
	normalized, err := NormalizePageURL(rawURL)
	if err != nil {
		return false
	}

	u, err := url.Parse(normalized)
	if err != nil {
		return false
	}

	if u.Hostname() != f.host {
		return false
	}
	if !strings.HasPrefix(u.Path, f.prefix) {
		return false
	}
	if f.visited[normalized] {
		return false
	}
	for _, queued := range f.pending {
		if queued == normalized {
			return false
		}
	}

	f.pending = append(f.pending, normalized)
	return true
}

// Pop removes and returns the oldest pending URL, marking it visited.
// Visited is terminal whether the visit later succeeds or fails, so a
// failing page can never be re-enqueued. The second return value is false
// when the queue is empty.
func (f *Frontier) Pop() (string, bool) {
	if len(f.pending) == 0 {
		return "", false
	}

	next := f.pending[0]
	f.pending = f.pending[1:]
	f.visited[next] = true
	return next, true
}

// VisitedCount returns the number of URLs popped so far.
func (f *Frontier) VisitedCount() int {
	return len(f.visited)
}

// PendingCount returns the number of URLs waiting in the queue.
func (f *Frontier) PendingCount() int {
	return len(f.pending)
}
