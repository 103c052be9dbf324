package crawler

import (
	"io"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/astridwanja/sitecheck/internal/urlutil"
)

// Extractor pulls link and image references out of a page's HTML.
// References are resolved against the page's own URL and normalized, so
// the engine only ever sees absolute, canonical targets.
//
// Design decision: We use golang.org/x/net/html rather than regex because
// it tolerates the malformed markup common on real sites and gives us a
// proper parse tree to walk. Malformed HTML never raises; at worst it
// yields fewer references.
type Extractor struct {
	// base is the URL of the page being parsed, used to resolve
	// relative references.
	base *url.URL
}

// PageRefs holds the references extracted from one page.
// Both slices are deduplicated and sorted, so the engine's check order
// is deterministic for a fixed page.
type PageRefs struct {
	// Links are the normalized targets of all anchor hrefs.
	Links []string

	// Images are the normalized targets of all img srcs.
	Images []string
}

// NewExtractor creates an Extractor for the page at pageURL.
func NewExtractor(pageURL string) (*Extractor, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}
	return &Extractor{base: base}, nil
}

// Extract parses the HTML and collects anchor and image targets.
// Duplicates on the same page collapse; empty references and the bare
// "#" anchor are skipped. A named fragment such as "#top" resolves to
// the page's own URL and is kept as a self-link. Scheme filtering is
// left to the caller.
func (e *Extractor) Extract(content io.Reader) *PageRefs {
	links := make(map[string]struct{})
	images := make(map[string]struct{})

	doc, err := html.Parse(content)
	if err != nil {
		// html.Parse only fails on reader errors; treat a truncated
		// page as having no references.
		return &PageRefs{Links: []string{}, Images: []string{}}
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "a":
				if target := e.resolve(getAttr(n, "href")); target != "" {
					links[target] = struct{}{}
				}
			case "img":
				if target := e.resolve(getAttr(n, "src")); target != "" {
					images[target] = struct{}{}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return &PageRefs{
		Links:  sortedKeys(links),
		Images: sortedKeys(images),
	}
}

// resolve turns a raw attribute value into a normalized absolute URL.
// Returns the empty string for references that cannot become targets.
func (e *Extractor) resolve(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || ref == "#" {
		return ""
	}

	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}

	return urlutil.Normalize(e.base.ResolveReference(u).String())
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// sortedKeys returns the map keys in sorted order.
func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
