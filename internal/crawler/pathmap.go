package crawler

import (
	"crypto/sha256"
	"fmt"
	"net/url"
	"path"
	"strings"
)

// AssetPath maps a remote URL to a local path relative to the mirror root.
// The mapping is a pure function of the URL: the same URL always yields the
// same path, which enables skip-if-exists downloads and relative-reference
// computation. Percent-encoding in the path is decoded, directory-style URLs
// gain an "index" segment, and an extensionless path with a query string gains
// a short hash of the query so distinct resources never collide on one file.
func AssetPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid asset URL %q: %w", rawURL, err)
	}

	p := u.Path
	if decoded, err := url.PathUnescape(p); err == nil {
		p = decoded
	}

	if p == "" || strings.HasSuffix(p, "/") {
		p += "index"
	}
	p = strings.TrimPrefix(p, "/")

	if path.Ext(p) == "" && u.RawQuery != "" {
		p += "_" + querySuffix(u.RawQuery)
	}

	return p, nil
}

// PagePath maps a page URL to the local path of its saved HTML.
// Root and trailing-slash paths map to an index.html file; extensionless
// paths get an index.html inside a directory named after the last segment,
// so sibling pages and their subpages never collide.
func PagePath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid page URL %q: %w", rawURL, err)
	}

	p := u.Path
	if decoded, err := url.PathUnescape(p); err == nil {
		p = decoded
	}

	switch {
	case p == "" || strings.HasSuffix(p, "/"):
		p += "index.html"
	case path.Ext(p) == "":
		p += "/index.html"
	}

	return strings.TrimPrefix(p, "/"), nil
}

// querySuffix derives a deterministic 8-hex-digit tag from a raw query string.
func querySuffix(rawQuery string) string {
	sum := sha256.Sum256([]byte(rawQuery))
	return fmt.Sprintf("%x", sum[:4])
}
