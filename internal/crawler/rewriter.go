package crawler

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Rewrite replaces every literal occurrence of each mapped asset URL in text
// with a path relative to the referencing file's directory. Three spellings
// of each URL are handled: the absolute form, the protocol-relative variant
// (//host/path, no scheme) and, for assets on the page's own host, the
// root-relative form (/path?query) that rendered attributes usually keep.
//
// urlToLocal maps absolute URLs to mirror-root-relative paths; fromPath is
// the mirror-root-relative path of the file being rewritten; pageURL is the
// URL the text was served from. Output paths always use forward slashes so
// the saved HTML and CSS stay portable.
//
// This is deliberately a whole-text substitution, not a DOM-aware rewrite.
// Substitution runs in two passes through placeholder tokens, longest
// spelling first, so a shorter spelling can never re-match inside an
// already replaced longer one, and a written relative path can never be
// re-matched as some URL's root-relative spelling.
func Rewrite(text string, urlToLocal map[string]string, fromPath, pageURL string) string {
	fromDir := path.Dir(fromPath)

	var pageBase *url.URL
	if u, err := url.Parse(pageURL); err == nil {
		pageBase = u
	}

	type spelling struct {
		literal string
		token   string
	}
	var spellings []spelling
	tokenToRel := make(map[string]string)

	n := 0
	add := func(literal, rel string) {
		token := fmt.Sprintf("\x00%d\x00", n)
		n++
		spellings = append(spellings, spelling{literal: literal, token: token})
		tokenToRel[token] = rel
	}

	for abs, local := range urlToLocal {
		rel, err := RelativePath(fromDir, local)
		if err != nil {
			continue
		}

		add(abs, rel)

		u, err := url.Parse(abs)
		if err != nil || u.Scheme == "" {
			continue
		}

		add(strings.TrimPrefix(abs, u.Scheme+":"), rel)

		if pageBase != nil && u.Host == pageBase.Host {
			if rootRel := u.RequestURI(); len(rootRel) > 1 {
				add(rootRel, rel)
			}
		}
	}

	sort.Slice(spellings, func(i, j int) bool {
		return len(spellings[i].literal) > len(spellings[j].literal)
	})

	for _, s := range spellings {
		text = strings.ReplaceAll(text, s.literal, s.token)
	}
	for token, rel := range tokenToRel {
		text = strings.ReplaceAll(text, token, rel)
	}

	return text
}

// RelativePath computes the forward-slash relative path from a directory to
// a target file, both given relative to the mirror root.
func RelativePath(fromDir, target string) (string, error) {
	rel, err := filepath.Rel(filepath.FromSlash(fromDir), filepath.FromSlash(target))
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}
