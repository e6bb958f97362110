// Package parser extracts asset references and outbound links from rendered
// HTML documents.
package parser

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// attrRule names one tag attribute that can carry an asset reference.
// A non-empty rel restricts the rule to link tags whose rel attribute
// contains that token (e.g. "stylesheet", "icon").
type attrRule struct {
	tag  string
	attr string
	rel  string
}

// assetRules is the declarative extraction surface: every attribute the
// extractor reads is enumerated here, except the two special cases
// (og:image meta content and url(...) inside inline style attributes).
var assetRules = []attrRule{
	{tag: "img", attr: "src"},
	{tag: "img", attr: "data-src"},
	{tag: "script", attr: "src"},
	{tag: "link", attr: "href", rel: "stylesheet"},
	{tag: "link", attr: "href", rel: "icon"},
	{tag: "source", attr: "src"},
	{tag: "video", attr: "src"},
	{tag: "video", attr: "poster"},
	{tag: "audio", attr: "src"},
	{tag: "iframe", attr: "src"},
}

// inlineURLPattern matches url(...) references inside inline style attributes
var inlineURLPattern = regexp.MustCompile(`url\(\s*['"]?([^'")]+?)['"]?\s*\)`)

// Extractor resolves references found in one rendered document against the
// document's own base URL.
type Extractor struct {
	base *url.URL
}

// NewExtractor creates an extractor for a document served from pageURL
func NewExtractor(pageURL string) (*Extractor, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	return &Extractor{base: base}, nil
}

// Assets returns every asset URL referenced by the document, resolved to
// absolute form, in document order and deduplicated. Unfetchable references
// (data:, javascript:, fragments) are dropped.
func (e *Extractor) Assets(htmlText string) ([]string, error) {
	doc, err := html.Parse(strings.NewReader(htmlText))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var found []string
	seen := make(map[string]bool)
	add := func(ref string) {
		abs, ok := e.resolve(ref)
		if !ok || seen[abs] {
			return
		}
		seen[abs] = true
		found = append(found, abs)
	}

	e.walk(doc, func(n *html.Node) {
		for _, rule := range assetRules {
			if n.Data != rule.tag {
				continue
			}
			if rule.rel != "" && !relContains(attrValue(n, "rel"), rule.rel) {
				continue
			}
			if v := attrValue(n, rule.attr); v != "" {
				add(v)
			}
		}

		if n.Data == "meta" && strings.EqualFold(attrValue(n, "property"), "og:image") {
			if v := attrValue(n, "content"); v != "" {
				add(v)
			}
		}

		if style := attrValue(n, "style"); style != "" {
			for _, m := range inlineURLPattern.FindAllStringSubmatch(style, -1) {
				add(strings.TrimSpace(m[1]))
			}
		}
	})

	return found, nil
}

// Links returns the absolute form of every anchor href in the document,
// in document order and deduplicated.
func (e *Extractor) Links(htmlText string) ([]string, error) {
	doc, err := html.Parse(strings.NewReader(htmlText))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var links []string
	seen := make(map[string]bool)

	e.walk(doc, func(n *html.Node) {
		if n.Data != "a" {
			return
		}
		abs, ok := e.resolve(attrValue(n, "href"))
		if !ok || seen[abs] {
			return
		}
		seen[abs] = true
		links = append(links, abs)
	})

	return links, nil
}

// walk visits every element node in the tree
func (e *Extractor) walk(n *html.Node, visit func(*html.Node)) {
	if n.Type == html.ElementNode {
		visit(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		e.walk(c, visit)
	}
}

// resolve converts a raw reference to absolute http(s) form against the base
// URL. It reports false for empty, fragment-only and non-fetchable schemes.
func (e *Extractor) resolve(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" || shouldSkipRef(ref) {
		return "", false
	}

	u, err := url.Parse(ref)
	if err != nil {
		return "", false
	}

	abs := e.base.ResolveReference(u)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}
	return abs.String(), true
}

// shouldSkipRef filters schemes that never resolve to downloadable resources
func shouldSkipRef(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "#") ||
		strings.HasPrefix(lower, "data:") ||
		strings.HasPrefix(lower, "about:") ||
		strings.HasPrefix(lower, "javascript:") ||
		strings.HasPrefix(lower, "mailto:") ||
		strings.HasPrefix(lower, "tel:") ||
		strings.HasPrefix(lower, "sms:") ||
		strings.HasPrefix(lower, "chrome:")
}

// attrValue returns the value of the named attribute, or ""
func attrValue(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// relContains reports whether a space-separated rel attribute value contains
// a token that includes the wanted name ("shortcut icon" matches "icon").
func relContains(rel, want string) bool {
	for _, token := range strings.Fields(strings.ToLower(rel)) {
		if strings.Contains(token, want) {
			return true
		}
	}
	return false
}
